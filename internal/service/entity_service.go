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

// EntityService owns legal entity CRUD, status changes, activity history
// and export
type EntityService struct {
	db       *gorm.DB
	clock    Clock
	registry *activity.Registry
}

func NewEntityService(db *gorm.DB, clock Clock) *EntityService {
	registry := activity.NewRegistry().
		Register(int(model.EntityCreatedEvent), 1, activity.CreatedDecoder("Entity")).
		Register(int(model.EntityUpdatedEvent), 1, activity.UpdatedDecoder("Entity")).
		Register(int(model.EntityDeactivatedEvent), 1, activity.StatusDecoder("Entity")).
		Register(int(model.EntityReactivatedEvent), 1, activity.StatusDecoder("Entity"))

	return &EntityService{db: db, clock: clock, registry: registry}
}

// EntityInput carries the editable fields of a legal entity
type EntityInput struct {
	AccountID           uuid.UUID  `json:"account_id"`
	Name                string     `json:"name"`
	Code                string     `json:"code"`
	DoingBusinessAs     string     `json:"doing_business_as"`
	Type                string     `json:"type"`
	Country             string     `json:"country"`
	State               string     `json:"state"`
	County              string     `json:"county"`
	City                string     `json:"city"`
	Address             string     `json:"address"`
	Zip                 string     `json:"zip"`
	Fein                string     `json:"fein"`
	TaxYearEndType      string     `json:"tax_year_end_type"`
	DateOfIncorporation *time.Time `json:"date_of_incorporation,omitempty"`
}

type entitySnapshot struct {
	Name                string     `json:"name"`
	Code                string     `json:"code"`
	DoingBusinessAs     string     `json:"doing_business_as"`
	Type                string     `json:"type"`
	Country             string     `json:"country"`
	State               string     `json:"state"`
	County              string     `json:"county"`
	City                string     `json:"city"`
	Address             string     `json:"address"`
	Zip                 string     `json:"zip"`
	Fein                string     `json:"fein"`
	TaxYearEndType      string     `json:"tax_year_end_type"`
	DateOfIncorporation *time.Time `json:"date_of_incorporation,omitempty"`
}

func (s *EntityService) snapshot(e *model.Entity) entitySnapshot {
	return entitySnapshot{
		Name:                e.Name,
		Code:                e.Code,
		DoingBusinessAs:     e.DoingBusinessAs,
		Type:                e.Type,
		Country:             e.Country,
		State:               e.State,
		County:              e.County,
		City:                e.City,
		Address:             e.Address,
		Zip:                 e.Zip,
		Fein:                e.Fein,
		TaxYearEndType:      e.TaxYearEndType,
		DateOfIncorporation: e.DateOfIncorporation,
	}
}

// checkAccount verifies the linked account exists within the tenant
func (s *EntityService) checkAccount(tenantID, accountID uuid.UUID) error {
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
func (s *EntityService) checkUnique(tenantID uuid.UUID, in EntityInput, excludeID uuid.UUID) error {
	var count int64
	if err := s.db.Model(&model.Entity{}).
		Where("account_id = ? AND name = ? AND id != ?", in.AccountID, in.Name, excludeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: entity name %q", ErrDuplicate, in.Name)
	}

	if err := s.db.Model(&model.Entity{}).
		Where("tenant_id = ? AND code = ? AND id != ?", tenantID, in.Code, excludeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: entity code %q", ErrDuplicate, in.Code)
	}
	return nil
}

// List returns the tenant's entities, newest first
func (s *EntityService) List(tenantID uuid.UUID, page, limit int) ([]model.Entity, int64, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.Model(&model.Entity{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []model.Entity
	err := query.
		Preload("Account").
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	return entities, total, nil
}

// Get returns one entity scoped to the tenant
func (s *EntityService) Get(tenantID, id uuid.UUID) (*model.Entity, error) {
	var entity model.Entity
	err := s.db.
		Preload("Account").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&entity).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &entity, nil
}

// Create inserts an entity and its created event in one transaction
func (s *EntityService) Create(tenantID uuid.UUID, actor Actor, in EntityInput) (*model.Entity, error) {
	if err := s.checkAccount(tenantID, in.AccountID); err != nil {
		return nil, err
	}
	if err := s.checkUnique(tenantID, in, uuid.Nil); err != nil {
		return nil, err
	}

	entity := model.Entity{
		TenantID:            tenantID,
		AccountID:           in.AccountID,
		Name:                in.Name,
		Code:                in.Code,
		DoingBusinessAs:     in.DoingBusinessAs,
		Type:                in.Type,
		Country:             in.Country,
		State:               in.State,
		County:              in.County,
		City:                in.City,
		Address:             in.Address,
		Zip:                 in.Zip,
		Fein:                in.Fein,
		TaxYearEndType:      in.TaxYearEndType,
		DateOfIncorporation: in.DateOfIncorporation,
		Status:              model.EntityStatusActive,
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
		if err := tx.Create(&entity).Error; err != nil {
			return err
		}
		return tx.Create(&model.EntityActivityLog{
			TenantID:  tenantID,
			EntityID:  entity.ID,
			Date:      now,
			EventType: int(model.EntityCreatedEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(tenantID, entity.ID)
}

// Update applies field changes and appends the updated event atomically
func (s *EntityService) Update(tenantID uuid.UUID, actor Actor, id uuid.UUID, in EntityInput) (*model.Entity, error) {
	var entity model.Entity
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&entity).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	if err := s.checkAccount(tenantID, in.AccountID); err != nil {
		return nil, err
	}
	if err := s.checkUnique(tenantID, in, id); err != nil {
		return nil, err
	}

	previous, err := activity.Encode(s.snapshot(&entity))
	if err != nil {
		return nil, err
	}

	entity.AccountID = in.AccountID
	entity.Name = in.Name
	entity.Code = in.Code
	entity.DoingBusinessAs = in.DoingBusinessAs
	entity.Type = in.Type
	entity.Country = in.Country
	entity.State = in.State
	entity.County = in.County
	entity.City = in.City
	entity.Address = in.Address
	entity.Zip = in.Zip
	entity.Fein = in.Fein
	entity.TaxYearEndType = in.TaxYearEndType
	entity.DateOfIncorporation = in.DateOfIncorporation

	current, err := activity.Encode(s.snapshot(&entity))
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
		if err := tx.Save(&entity).Error; err != nil {
			return err
		}
		return tx.Create(&model.EntityActivityLog{
			TenantID:  tenantID,
			EntityID:  entity.ID,
			Date:      now,
			EventType: int(model.EntityUpdatedEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(tenantID, id)
}

// UpdateStatus deactivates or reactivates an entity and records the change
func (s *EntityService) UpdateStatus(tenantID uuid.UUID, actor Actor, id uuid.UUID, status string) (*model.Entity, error) {
	if status != model.EntityStatusActive && status != model.EntityStatusDeactivated {
		return nil, fmt.Errorf("invalid entity status %q", status)
	}

	var entity model.Entity
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&entity).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	now := s.clock.Now()

	eventType := model.EntityReactivatedEvent
	if status == model.EntityStatusDeactivated {
		eventType = model.EntityDeactivatedEvent
		entity.DeactivatedAt = &now
	} else {
		entity.DeactivatedAt = nil
	}
	entity.Status = status

	raw, err := activity.Encode(activity.StatusChangedEvent{
		EventBase: eventBase(actor, now),
		Status:    status,
	})
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&entity).Error; err != nil {
			return err
		}
		return tx.Create(&model.EntityActivityLog{
			TenantID:  tenantID,
			EntityID:  entity.ID,
			Date:      now,
			EventType: int(eventType),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &entity, nil
}

// ActivityHistory returns the decoded audit trail, newest first
func (s *EntityService) ActivityHistory(tenantID, id uuid.UUID, page, pageSize int) (*activity.Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	var entity model.Entity
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&entity).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	logs := s.db.Model(&model.EntityActivityLog{}).
		Where("tenant_id = ? AND entity_id = ?", tenantID, id)

	var count int64
	if err := logs.Count(&count).Error; err != nil {
		return nil, err
	}

	var rows []model.EntityActivityLog
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
func (s *EntityService) Export(tenantID uuid.UUID, fileType export.FileType) ([]byte, error) {
	var entities []model.Entity
	err := s.db.
		Preload("Account").
		Where("tenant_id = ?", tenantID).
		Order("name").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Headers: []string{"Name", "Entity ID", "Account", "Type", "Country", "State", "FEIN", "Status", "Creation date"},
	}
	for _, e := range entities {
		table.Rows = append(table.Rows, []string{
			e.Name, e.Code, e.Account.Name, e.Type, e.Country, e.State, e.Fein,
			e.Status, e.CreatedAt.Format("01/02/2006"),
		})
	}

	return export.Convert(fileType, table)
}
