package service

import (
	"fmt"

	"practice-service/internal/activity"
	"practice-service/internal/export"
	"practice-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobTitleService owns job title CRUD, activity history and export
type JobTitleService struct {
	db       *gorm.DB
	clock    Clock
	registry *activity.Registry
}

func NewJobTitleService(db *gorm.DB, clock Clock) *JobTitleService {
	registry := activity.NewRegistry().
		Register(int(model.JobTitleCreatedEvent), 1, activity.CreatedDecoder("Job title")).
		Register(int(model.JobTitleUpdatedEvent), 1, activity.UpdatedDecoder("Job title"))

	return &JobTitleService{db: db, clock: clock, registry: registry}
}

// JobTitleInput carries the editable fields of a job title
type JobTitleInput struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
}

// List returns the tenant's job titles, newest first
func (s *JobTitleService) List(tenantID uuid.UUID, page, limit int) ([]model.JobTitle, int64, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.Model(&model.JobTitle{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobTitles []model.JobTitle
	err := query.
		Preload("Department").
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&jobTitles).Error
	if err != nil {
		return nil, 0, err
	}

	return jobTitles, total, nil
}

// Get returns one job title scoped to the tenant
func (s *JobTitleService) Get(tenantID, id uuid.UUID) (*model.JobTitle, error) {
	var jobTitle model.JobTitle
	err := s.db.
		Preload("Department").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&jobTitle).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &jobTitle, nil
}

// Create inserts a job title and its created event in one transaction
func (s *JobTitleService) Create(tenantID uuid.UUID, actor Actor, in JobTitleInput) (*model.JobTitle, error) {
	if err := s.checkDepartment(tenantID, in.DepartmentID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&model.JobTitle{}).
		Where("tenant_id = ? AND name = ?", tenantID, in.Name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: job title name %q", ErrDuplicate, in.Name)
	}

	jobTitle := model.JobTitle{
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
		if err := tx.Create(&jobTitle).Error; err != nil {
			return err
		}
		return tx.Create(&model.JobTitleActivityLog{
			TenantID:   tenantID,
			JobTitleID: jobTitle.ID,
			Date:       now,
			EventType:  int(model.JobTitleCreatedEvent),
			Revision:   1,
			Event:      raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(tenantID, jobTitle.ID)
}

// Update applies field changes and appends the updated event atomically
func (s *JobTitleService) Update(tenantID uuid.UUID, actor Actor, id uuid.UUID, in JobTitleInput) (*model.JobTitle, error) {
	var jobTitle model.JobTitle
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&jobTitle).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	if err := s.checkDepartment(tenantID, in.DepartmentID); err != nil {
		return nil, err
	}

	if in.Name != jobTitle.Name {
		var count int64
		if err := s.db.Model(&model.JobTitle{}).
			Where("tenant_id = ? AND name = ? AND id != ?", tenantID, in.Name, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: job title name %q", ErrDuplicate, in.Name)
		}
	}

	previous, err := activity.Encode(JobTitleInput{
		Name:         jobTitle.Name,
		Description:  jobTitle.Description,
		DepartmentID: jobTitle.DepartmentID,
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

	jobTitle.Name = in.Name
	jobTitle.Description = in.Description
	jobTitle.DepartmentID = in.DepartmentID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&jobTitle).Error; err != nil {
			return err
		}
		return tx.Create(&model.JobTitleActivityLog{
			TenantID:   tenantID,
			JobTitleID: jobTitle.ID,
			Date:       now,
			EventType:  int(model.JobTitleUpdatedEvent),
			Revision:   1,
			Event:      raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(tenantID, id)
}

// ActivityHistory returns the decoded audit trail, newest first
func (s *JobTitleService) ActivityHistory(tenantID, id uuid.UUID, page, pageSize int) (*activity.Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	var jobTitle model.JobTitle
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&jobTitle).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	logs := s.db.Model(&model.JobTitleActivityLog{}).
		Where("tenant_id = ? AND job_title_id = ?", tenantID, id)

	var count int64
	if err := logs.Count(&count).Error; err != nil {
		return nil, err
	}

	var rows []model.JobTitleActivityLog
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
func (s *JobTitleService) Export(tenantID uuid.UUID, fileType export.FileType) ([]byte, error) {
	var jobTitles []model.JobTitle
	err := s.db.
		Preload("Department").
		Where("tenant_id = ?", tenantID).
		Order("name").
		Find(&jobTitles).Error
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Headers: []string{"Name", "Description", "Department", "Creation date"},
	}
	for _, jt := range jobTitles {
		department := ""
		if jt.Department != nil {
			department = jt.Department.Name
		}
		table.Rows = append(table.Rows, []string{
			jt.Name, jt.Description, department, jt.CreatedAt.Format("01/02/2006"),
		})
	}

	return export.Convert(fileType, table)
}

// checkDepartment verifies a linked department exists within the tenant
func (s *JobTitleService) checkDepartment(tenantID uuid.UUID, departmentID *uuid.UUID) error {
	if departmentID == nil {
		return nil
	}
	var department model.Department
	err := s.db.Where("id = ? AND tenant_id = ?", *departmentID, tenantID).First(&department).Error
	return notFoundOr(err)
}
