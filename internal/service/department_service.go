package service

import (
	"fmt"

	"practice-service/internal/activity"
	"practice-service/internal/export"
	"practice-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DepartmentService owns department CRUD, activity history and export
type DepartmentService struct {
	db       *gorm.DB
	clock    Clock
	registry *activity.Registry
}

func NewDepartmentService(db *gorm.DB, clock Clock) *DepartmentService {
	registry := activity.NewRegistry().
		Register(int(model.DepartmentCreatedEvent), 1, activity.CreatedDecoder("Department")).
		Register(int(model.DepartmentUpdatedEvent), 1, activity.UpdatedDecoder("Department"))

	return &DepartmentService{db: db, clock: clock, registry: registry}
}

// DepartmentInput carries the editable fields of a department
type DepartmentInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DivisionID  *uuid.UUID `json:"division_id,omitempty"`
}

// List returns the tenant's departments, newest first
func (s *DepartmentService) List(tenantID uuid.UUID, page, limit int) ([]model.Department, int64, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.Model(&model.Department{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var departments []model.Department
	err := query.
		Preload("Division").
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&departments).Error
	if err != nil {
		return nil, 0, err
	}

	return departments, total, nil
}

// Get returns one department scoped to the tenant
func (s *DepartmentService) Get(tenantID, id uuid.UUID) (*model.Department, error) {
	var department model.Department
	err := s.db.
		Preload("Division").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&department).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &department, nil
}

// Create inserts a department and its created event in one transaction
func (s *DepartmentService) Create(tenantID uuid.UUID, actor Actor, in DepartmentInput) (*model.Department, error) {
	if err := s.checkDivision(tenantID, in.DivisionID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&model.Department{}).
		Where("tenant_id = ? AND name = ?", tenantID, in.Name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: department name %q", ErrDuplicate, in.Name)
	}

	department := model.Department{
		TenantID:    tenantID,
		Name:        in.Name,
		Description: in.Description,
		DivisionID:  in.DivisionID,
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
		if err := tx.Create(&department).Error; err != nil {
			return err
		}
		return tx.Create(&model.DepartmentActivityLog{
			TenantID:     tenantID,
			DepartmentID: department.ID,
			Date:         now,
			EventType:    int(model.DepartmentCreatedEvent),
			Revision:     1,
			Event:        raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(tenantID, department.ID)
}

// Update applies field changes and appends the updated event atomically
func (s *DepartmentService) Update(tenantID uuid.UUID, actor Actor, id uuid.UUID, in DepartmentInput) (*model.Department, error) {
	var department model.Department
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&department).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	if err := s.checkDivision(tenantID, in.DivisionID); err != nil {
		return nil, err
	}

	if in.Name != department.Name {
		var count int64
		if err := s.db.Model(&model.Department{}).
			Where("tenant_id = ? AND name = ? AND id != ?", tenantID, in.Name, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: department name %q", ErrDuplicate, in.Name)
		}
	}

	previous, err := activity.Encode(DepartmentInput{
		Name:        department.Name,
		Description: department.Description,
		DivisionID:  department.DivisionID,
	})
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

	department.Name = in.Name
	department.Description = in.Description
	department.DivisionID = in.DivisionID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&department).Error; err != nil {
			return err
		}
		return tx.Create(&model.DepartmentActivityLog{
			TenantID:     tenantID,
			DepartmentID: department.ID,
			Date:         now,
			EventType:    int(model.DepartmentUpdatedEvent),
			Revision:     1,
			Event:        raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(tenantID, id)
}

// ActivityHistory returns the decoded audit trail, newest first
func (s *DepartmentService) ActivityHistory(tenantID, id uuid.UUID, page, pageSize int) (*activity.Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	var department model.Department
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&department).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	logs := s.db.Model(&model.DepartmentActivityLog{}).
		Where("tenant_id = ? AND department_id = ?", tenantID, id)

	var count int64
	if err := logs.Count(&count).Error; err != nil {
		return nil, err
	}

	var rows []model.DepartmentActivityLog
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
func (s *DepartmentService) Export(tenantID uuid.UUID, fileType export.FileType) ([]byte, error) {
	var departments []model.Department
	err := s.db.
		Preload("Division").
		Where("tenant_id = ?", tenantID).
		Order("name").
		Find(&departments).Error
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Headers: []string{"Name", "Description", "Division", "Creation date"},
	}
	for _, d := range departments {
		division := ""
		if d.Division != nil {
			division = d.Division.Name
		}
		table.Rows = append(table.Rows, []string{
			d.Name, d.Description, division, d.CreatedAt.Format("01/02/2006"),
		})
	}

	return export.Convert(fileType, table)
}

// checkDivision verifies a linked division exists within the tenant
func (s *DepartmentService) checkDivision(tenantID uuid.UUID, divisionID *uuid.UUID) error {
	if divisionID == nil {
		return nil
	}
	var division model.Division
	err := s.db.Where("id = ? AND tenant_id = ?", *divisionID, tenantID).First(&division).Error
	return notFoundOr(err)
}
