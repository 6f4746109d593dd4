package service

import (
	"fmt"

	"practice-service/internal/activity"
	"practice-service/internal/export"
	"practice-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceAreaService owns service area CRUD, activity history and export
type ServiceAreaService struct {
	db       *gorm.DB
	clock    Clock
	registry *activity.Registry
}

// NewServiceAreaService creates the service and its decoder registry.
// Registered (event type, revision) pairs are permanent: add new
// revisions, never change a shipped decoder.
func NewServiceAreaService(db *gorm.DB, clock Clock) *ServiceAreaService {
	registry := activity.NewRegistry().
		Register(int(model.ServiceAreaCreatedEvent), 1, activity.CreatedDecoder("Service area")).
		Register(int(model.ServiceAreaUpdatedEvent), 1, activity.UpdatedDecoder("Service area"))

	return &ServiceAreaService{db: db, clock: clock, registry: registry}
}

// ServiceAreaInput carries the editable fields of a service area
type ServiceAreaInput struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
}

type serviceAreaSnapshot struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
}

// List returns the tenant's service areas, newest first
func (s *ServiceAreaService) List(tenantID uuid.UUID, page, limit int) ([]model.ServiceArea, int64, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.Model(&model.ServiceArea{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var serviceAreas []model.ServiceArea
	err := query.
		Preload("Department").
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&serviceAreas).Error
	if err != nil {
		return nil, 0, err
	}

	return serviceAreas, total, nil
}

// Get returns one service area scoped to the tenant
func (s *ServiceAreaService) Get(tenantID, id uuid.UUID) (*model.ServiceArea, error) {
	var serviceArea model.ServiceArea
	err := s.db.
		Preload("Department").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&serviceArea).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &serviceArea, nil
}

// Create inserts a service area and its created event in one transaction
func (s *ServiceAreaService) Create(tenantID uuid.UUID, actor Actor, in ServiceAreaInput) (*model.ServiceArea, error) {
	if err := s.checkDepartment(tenantID, in.DepartmentID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&model.ServiceArea{}).
		Where("tenant_id = ? AND name = ?", tenantID, in.Name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: service area name %q", ErrDuplicate, in.Name)
	}

	serviceArea := model.ServiceArea{
		TenantID:     tenantID,
		Name:         in.Name,
		Description:  in.Description,
		DepartmentID: in.DepartmentID,
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
		if err := tx.Create(&serviceArea).Error; err != nil {
			return err
		}
		return tx.Create(&model.ServiceAreaActivityLog{
			TenantID:      tenantID,
			ServiceAreaID: serviceArea.ID,
			Date:          now,
			EventType:     int(model.ServiceAreaCreatedEvent),
			Revision:      1,
			Event:         raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(tenantID, serviceArea.ID)
}

// Update applies field changes and appends the updated event in the
// same transaction, so both commit or neither does
func (s *ServiceAreaService) Update(tenantID uuid.UUID, actor Actor, id uuid.UUID, in ServiceAreaInput) (*model.ServiceArea, error) {
	var serviceArea model.ServiceArea
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&serviceArea).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	if err := s.checkDepartment(tenantID, in.DepartmentID); err != nil {
		return nil, err
	}

	if in.Name != serviceArea.Name {
		var count int64
		if err := s.db.Model(&model.ServiceArea{}).
			Where("tenant_id = ? AND name = ? AND id != ?", tenantID, in.Name, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: service area name %q", ErrDuplicate, in.Name)
		}
	}

	previous, err := activity.Encode(serviceAreaSnapshot{
		Name:         serviceArea.Name,
		Description:  serviceArea.Description,
		DepartmentID: serviceArea.DepartmentID,
	})
	if err != nil {
		return nil, err
	}
	current, err := activity.Encode(serviceAreaSnapshot(in))
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

	serviceArea.Name = in.Name
	serviceArea.Description = in.Description
	serviceArea.DepartmentID = in.DepartmentID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&serviceArea).Error; err != nil {
			return err
		}
		return tx.Create(&model.ServiceAreaActivityLog{
			TenantID:      tenantID,
			ServiceAreaID: serviceArea.ID,
			Date:          now,
			EventType:     int(model.ServiceAreaUpdatedEvent),
			Revision:      1,
			Event:         raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(tenantID, id)
}

// ActivityHistory returns the decoded audit trail, newest first.
// A service area outside the tenant is reported as not found, never as
// an empty history.
func (s *ServiceAreaService) ActivityHistory(tenantID, id uuid.UUID, page, pageSize int) (*activity.Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	var serviceArea model.ServiceArea
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&serviceArea).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	logs := s.db.Model(&model.ServiceAreaActivityLog{}).
		Where("tenant_id = ? AND service_area_id = ?", tenantID, id)

	var count int64
	if err := logs.Count(&count).Error; err != nil {
		return nil, err
	}

	var rows []model.ServiceAreaActivityLog
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
func (s *ServiceAreaService) Export(tenantID uuid.UUID, fileType export.FileType) ([]byte, error) {
	var serviceAreas []model.ServiceArea
	err := s.db.
		Preload("Department").
		Where("tenant_id = ?", tenantID).
		Order("name").
		Find(&serviceAreas).Error
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Headers: []string{"Name", "Description", "Department", "Creation date"},
	}
	for _, sa := range serviceAreas {
		department := ""
		if sa.Department != nil {
			department = sa.Department.Name
		}
		table.Rows = append(table.Rows, []string{
			sa.Name, sa.Description, department, sa.CreatedAt.Format("01/02/2006"),
		})
	}

	return export.Convert(fileType, table)
}

// checkDepartment verifies a linked department exists within the tenant
func (s *ServiceAreaService) checkDepartment(tenantID uuid.UUID, departmentID *uuid.UUID) error {
	if departmentID == nil {
		return nil
	}
	var department model.Department
	err := s.db.Where("id = ? AND tenant_id = ?", *departmentID, tenantID).First(&department).Error
	return notFoundOr(err)
}
