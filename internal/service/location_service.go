package service

import (
	"fmt"
	"time"

	"practice-service/internal/activity"
	"practice-service/internal/export"
	"practice-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocationService owns location CRUD, status changes, activity history
// and export
type LocationService struct {
	db       *gorm.DB
	clock    Clock
	registry *activity.Registry
}

func NewLocationService(db *gorm.DB, clock Clock) *LocationService {
	registry := activity.NewRegistry().
		Register(int(model.LocationCreatedEvent), 1, activity.CreatedDecoder("Location")).
		Register(int(model.LocationUpdatedEvent), 1, activity.UpdatedDecoder("Location")).
		Register(int(model.LocationDeactivatedEvent), 1, activity.StatusDecoder("Location")).
		Register(int(model.LocationReactivatedEvent), 1, activity.StatusDecoder("Location"))

	return &LocationService{db: db, clock: clock, registry: registry}
}

// LocationInput carries the editable fields of a location
type LocationInput struct {
	AccountID uuid.UUID  `json:"account_id"`
	Name      string     `json:"name"`
	Code      string     `json:"code"`
	Type      string     `json:"type"`
	Country   string     `json:"country"`
	State     string     `json:"state"`
	County    string     `json:"county"`
	City      string     `json:"city"`
	Address   string     `json:"address"`
	Zip       string     `json:"zip"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type locationSnapshot struct {
	Name      string     `json:"name"`
	Code      string     `json:"code"`
	Type      string     `json:"type"`
	Country   string     `json:"country"`
	State     string     `json:"state"`
	County    string     `json:"county"`
	City      string     `json:"city"`
	Address   string     `json:"address"`
	Zip       string     `json:"zip"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

func (s *LocationService) snapshot(l *model.Location) locationSnapshot {
	return locationSnapshot{
		Name:      l.Name,
		Code:      l.Code,
		Type:      l.Type,
		Country:   l.Country,
		State:     l.State,
		County:    l.County,
		City:      l.City,
		Address:   l.Address,
		Zip:       l.Zip,
		StartDate: l.StartDate,
		EndDate:   l.EndDate,
	}
}

// checkAccount verifies the linked account exists within the tenant
func (s *LocationService) checkAccount(tenantID, accountID uuid.UUID) error {
	var count int64
	err := s.db.Model(&model.Account{}).
		Where("id = ? AND tenant_id = ?", accountID, tenantID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// checkUnique enforces name-per-account and code-per-tenant uniqueness
func (s *LocationService) checkUnique(tenantID uuid.UUID, in LocationInput, excludeID uuid.UUID) error {
	var count int64
	if err := s.db.Model(&model.Location{}).
		Where("account_id = ? AND name = ? AND id != ?", in.AccountID, in.Name, excludeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: location name %q", ErrDuplicate, in.Name)
	}

	if err := s.db.Model(&model.Location{}).
		Where("tenant_id = ? AND code = ? AND id != ?", tenantID, in.Code, excludeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: location code %q", ErrDuplicate, in.Code)
	}
	return nil
}

// validDates requires the end date to not precede the start date
func validDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("location end date must not precede the start date")
	}
	return nil
}

// List returns the tenant's locations, newest first
func (s *LocationService) List(tenantID uuid.UUID, page, limit int) ([]model.Location, int64, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.Model(&model.Location{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var locations []model.Location
	err := query.
		Preload("Account").
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&locations).Error
	if err != nil {
		return nil, 0, err
	}

	return locations, total, nil
}

// Get returns one location scoped to the tenant
func (s *LocationService) Get(tenantID, id uuid.UUID) (*model.Location, error) {
	var location model.Location
	err := s.db.
		Preload("Account").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&location).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &location, nil
}

// Create inserts a location and its created event in one transaction
func (s *LocationService) Create(tenantID uuid.UUID, actor Actor, in LocationInput) (*model.Location, error) {
	if err := validDates(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	if err := s.checkAccount(tenantID, in.AccountID); err != nil {
		return nil, err
	}
	if err := s.checkUnique(tenantID, in, uuid.Nil); err != nil {
		return nil, err
	}

	location := model.Location{
		TenantID:  tenantID,
		AccountID: in.AccountID,
		Name:      in.Name,
		Code:      in.Code,
		Type:      in.Type,
		Country:   in.Country,
		State:     in.State,
		County:    in.County,
		City:      in.City,
		Address:   in.Address,
		Zip:       in.Zip,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Status:    model.LocationStatusActive,
	}

	now := s.clock.Now()
	raw, err := activity.Encode(activity.EntityCreatedEvent{
		EventBase:   eventBase(actor, now),
		CreatedName: in.Name,
	})
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&location).Error; err != nil {
			return err
		}
		return tx.Create(&model.LocationActivityLog{
			TenantID:   tenantID,
			LocationID: location.ID,
			Date:       now,
			EventType:  int(model.LocationCreatedEvent),
			Revision:   1,
			Event:      raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(tenantID, location.ID)
}

// Update applies field changes and appends the updated event atomically
func (s *LocationService) Update(tenantID uuid.UUID, actor Actor, id uuid.UUID, in LocationInput) (*model.Location, error) {
	var location model.Location
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&location).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	if err := validDates(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	if err := s.checkAccount(tenantID, in.AccountID); err != nil {
		return nil, err
	}
	if err := s.checkUnique(tenantID, in, id); err != nil {
		return nil, err
	}

	previous, err := activity.Encode(s.snapshot(&location))
	if err != nil {
		return nil, err
	}

	location.AccountID = in.AccountID
	location.Name = in.Name
	location.Code = in.Code
	location.Type = in.Type
	location.Country = in.Country
	location.State = in.State
	location.County = in.County
	location.City = in.City
	location.Address = in.Address
	location.Zip = in.Zip
	location.StartDate = in.StartDate
	location.EndDate = in.EndDate

	current, err := activity.Encode(s.snapshot(&location))
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	raw, err := activity.Encode(activity.EntityUpdatedEvent{
		EventBase:      eventBase(actor, now),
		PreviousValues: previous,
		CurrentValues:  current,
	})
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&location).Error; err != nil {
			return err
		}
		return tx.Create(&model.LocationActivityLog{
			TenantID:   tenantID,
			LocationID: location.ID,
			Date:       now,
			EventType:  int(model.LocationUpdatedEvent),
			Revision:   1,
			Event:      raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(tenantID, id)
}

// UpdateStatus deactivates or reactivates a location and records the change
func (s *LocationService) UpdateStatus(tenantID uuid.UUID, actor Actor, id uuid.UUID, status string) (*model.Location, error) {
	if status != model.LocationStatusActive && status != model.LocationStatusDeactivated {
		return nil, fmt.Errorf("invalid location status %q", status)
	}

	var location model.Location
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&location).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	now := s.clock.Now()

	eventType := model.LocationReactivatedEvent
	if status == model.LocationStatusDeactivated {
		eventType = model.LocationDeactivatedEvent
		location.DeactivatedAt = &now
	} else {
		location.DeactivatedAt = nil
	}
	location.Status = status

	raw, err := activity.Encode(activity.StatusChangedEvent{
		EventBase: eventBase(actor, now),
		Status:    status,
	})
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&location).Error; err != nil {
			return err
		}
		return tx.Create(&model.LocationActivityLog{
			TenantID:   tenantID,
			LocationID: location.ID,
			Date:       now,
			EventType:  int(eventType),
			Revision:   1,
			Event:      raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &location, nil
}

// ActivityHistory returns the decoded audit trail, newest first
func (s *LocationService) ActivityHistory(tenantID, id uuid.UUID, page, pageSize int) (*activity.Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	var location model.Location
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&location).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	logs := s.db.Model(&model.LocationActivityLog{}).
		Where("tenant_id = ? AND location_id = ?", tenantID, id)

	var count int64
	if err := logs.Count(&count).Error; err != nil {
		return nil, err
	}

	var rows []model.LocationActivityLog
	err = logs.
		Order("date desc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]activity.Item, 0, len(rows))
	for _, row := range rows {
		item, err := s.registry.Decode(row.EventType, row.Revision, row.Event)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return &activity.Page{Count: pageCount(count, pageSize), Items: items}, nil
}

// Export builds the export projection and delegates to the converter
func (s *LocationService) Export(tenantID uuid.UUID, fileType export.FileType) ([]byte, error) {
	var locations []model.Location
	err := s.db.
		Preload("Account").
		Where("tenant_id = ?", tenantID).
		Order("name").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Headers: []string{"Name", "Location ID", "Account", "Type", "Country", "State", "City", "Status", "Creation date"},
	}
	for _, l := range locations {
		table.Rows = append(table.Rows, []string{
			l.Name, l.Code, l.Account.Name, l.Type, l.Country, l.State, l.City,
			l.Status, l.CreatedAt.Format("01/02/2006"),
		})
	}

	return export.Convert(fileType, table)
}
