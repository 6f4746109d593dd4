package service

import (
	"fmt"

	"practice-service/internal/activity"
	"practice-service/internal/export"
	"practice-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DivisionService owns division CRUD, activity history and export
type DivisionService struct {
	db       *gorm.DB
	clock    Clock
	registry *activity.Registry
}

func NewDivisionService(db *gorm.DB, clock Clock) *DivisionService {
	registry := activity.NewRegistry().
		Register(int(model.DivisionCreatedEvent), 1, activity.CreatedDecoder("Division")).
		Register(int(model.DivisionUpdatedEvent), 1, activity.UpdatedDecoder("Division"))

	return &DivisionService{db: db, clock: clock, registry: registry}
}

// DivisionInput carries the editable fields of a division
type DivisionInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List returns the tenant's divisions, newest first
func (s *DivisionService) List(tenantID uuid.UUID, page, limit int) ([]model.Division, int64, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.Model(&model.Division{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var divisions []model.Division
	err := query.
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&divisions).Error
	if err != nil {
		return nil, 0, err
	}

	return divisions, total, nil
}

// Get returns one division scoped to the tenant
func (s *DivisionService) Get(tenantID, id uuid.UUID) (*model.Division, error) {
	var division model.Division
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&division).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &division, nil
}

// Create inserts a division and its created event in one transaction
func (s *DivisionService) Create(tenantID uuid.UUID, actor Actor, in DivisionInput) (*model.Division, error) {
	var count int64
	if err := s.db.Model(&model.Division{}).
		Where("tenant_id = ? AND name = ?", tenantID, in.Name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: division name %q", ErrDuplicate, in.Name)
	}

	division := model.Division{
		TenantID:    tenantID,
		Name:        in.Name,
		Description: in.Description,
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
		if err := tx.Create(&division).Error; err != nil {
			return err
		}
		return tx.Create(&model.DivisionActivityLog{
			TenantID:   tenantID,
			DivisionID: division.ID,
			Date:       now,
			EventType:  int(model.DivisionCreatedEvent),
			Revision:   1,
			Event:      raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &division, nil
}

// Update applies field changes and appends the updated event atomically
func (s *DivisionService) Update(tenantID uuid.UUID, actor Actor, id uuid.UUID, in DivisionInput) (*model.Division, error) {
	var division model.Division
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&division).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	if in.Name != division.Name {
		var count int64
		if err := s.db.Model(&model.Division{}).
			Where("tenant_id = ? AND name = ? AND id != ?", tenantID, in.Name, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: division name %q", ErrDuplicate, in.Name)
		}
	}

	previous, err := activity.Encode(DivisionInput{Name: division.Name, Description: division.Description})
	if err != nil {
		return nil, err
	}
	current, err := activity.Encode(in)
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

	division.Name = in.Name
	division.Description = in.Description

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&division).Error; err != nil {
			return err
		}
		return tx.Create(&model.DivisionActivityLog{
			TenantID:   tenantID,
			DivisionID: division.ID,
			Date:       now,
			EventType:  int(model.DivisionUpdatedEvent),
			Revision:   1,
			Event:      raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &division, nil
}

// ActivityHistory returns the decoded audit trail, newest first
func (s *DivisionService) ActivityHistory(tenantID, id uuid.UUID, page, pageSize int) (*activity.Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	var division model.Division
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&division).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	logs := s.db.Model(&model.DivisionActivityLog{}).
		Where("tenant_id = ? AND division_id = ?", tenantID, id)

	var count int64
	if err := logs.Count(&count).Error; err != nil {
		return nil, err
	}

	var rows []model.DivisionActivityLog
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
func (s *DivisionService) Export(tenantID uuid.UUID, fileType export.FileType) ([]byte, error) {
	var divisions []model.Division
	err := s.db.Where("tenant_id = ?", tenantID).Order("name").Find(&divisions).Error
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Headers: []string{"Name", "Description", "Creation date"},
	}
	for _, d := range divisions {
		table.Rows = append(table.Rows, []string{
			d.Name, d.Description, d.CreatedAt.Format("01/02/2006"),
		})
	}

	return export.Convert(fileType, table)
}
