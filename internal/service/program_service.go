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

// ProgramService owns program CRUD, status changes, activity history and export
type ProgramService struct {
	db       *gorm.DB
	clock    Clock
	registry *activity.Registry
}

func NewProgramService(db *gorm.DB, clock Clock) *ProgramService {
	registry := activity.NewRegistry().
		Register(int(model.ProgramCreatedEvent), 1, activity.CreatedDecoder("Program")).
		Register(int(model.ProgramUpdatedEvent), 1, activity.UpdatedDecoder("Program")).
		Register(int(model.ProgramDeactivatedEvent), 1, activity.StatusDecoder("Program")).
		Register(int(model.ProgramReactivatedEvent), 1, activity.StatusDecoder("Program"))

	return &ProgramService{db: db, clock: clock, registry: registry}
}

// ProgramInput carries the editable fields of a program
type ProgramInput struct {
	Name           string     `json:"name"`
	Reference      string     `json:"reference"`
	Overview       string     `json:"overview"`
	LegalAuthority string     `json:"legal_authority"`
	Agency         string     `json:"agency"`
	Jurisdiction   string     `json:"jurisdiction"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
}

// List returns the tenant's programs, newest first
func (s *ProgramService) List(tenantID uuid.UUID, page, limit int) ([]model.Program, int64, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.Model(&model.Program{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var programs []model.Program
	err := query.
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&programs).Error
	if err != nil {
		return nil, 0, err
	}

	return programs, total, nil
}

// Get returns one program scoped to the tenant
func (s *ProgramService) Get(tenantID, id uuid.UUID) (*model.Program, error) {
	var program model.Program
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&program).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &program, nil
}

// Create inserts a program and its created event in one transaction
func (s *ProgramService) Create(tenantID uuid.UUID, actor Actor, in ProgramInput) (*model.Program, error) {
	var count int64
	if err := s.db.Model(&model.Program{}).
		Where("tenant_id = ? AND name = ?", tenantID, in.Name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: program name %q", ErrDuplicate, in.Name)
	}

	program := model.Program{
		TenantID:       tenantID,
		Name:           in.Name,
		Reference:      in.Reference,
		Overview:       in.Overview,
		LegalAuthority: in.LegalAuthority,
		Agency:         in.Agency,
		Jurisdiction:   in.Jurisdiction,
		Status:         model.ProgramStatusActive,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
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
		if err := tx.Create(&program).Error; err != nil {
			return err
		}
		return tx.Create(&model.ProgramActivityLog{
			TenantID:  tenantID,
			ProgramID: program.ID,
			Date:      now,
			EventType: int(model.ProgramCreatedEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &program, nil
}

// Update applies field changes and appends the updated event atomically
func (s *ProgramService) Update(tenantID uuid.UUID, actor Actor, id uuid.UUID, in ProgramInput) (*model.Program, error) {
	var program model.Program
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&program).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	if in.Name != program.Name {
		var count int64
		if err := s.db.Model(&model.Program{}).
			Where("tenant_id = ? AND name = ? AND id != ?", tenantID, in.Name, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: program name %q", ErrDuplicate, in.Name)
		}
	}

	previous, err := activity.Encode(ProgramInput{
		Name:           program.Name,
		Reference:      program.Reference,
		Overview:       program.Overview,
		LegalAuthority: program.LegalAuthority,
		Agency:         program.Agency,
		Jurisdiction:   program.Jurisdiction,
		StartDate:      program.StartDate,
		EndDate:        program.EndDate,
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

	program.Name = in.Name
	program.Reference = in.Reference
	program.Overview = in.Overview
	program.LegalAuthority = in.LegalAuthority
	program.Agency = in.Agency
	program.Jurisdiction = in.Jurisdiction
	program.StartDate = in.StartDate
	program.EndDate = in.EndDate

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&program).Error; err != nil {
			return err
		}
		return tx.Create(&model.ProgramActivityLog{
			TenantID:  tenantID,
			ProgramID: program.ID,
			Date:      now,
			EventType: int(model.ProgramUpdatedEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &program, nil
}

// UpdateStatus deactivates or reactivates a program and records the change
func (s *ProgramService) UpdateStatus(tenantID uuid.UUID, actor Actor, id uuid.UUID, status string) (*model.Program, error) {
	if status != model.ProgramStatusActive && status != model.ProgramStatusDeactivated {
		return nil, fmt.Errorf("invalid program status %q", status)
	}

	var program model.Program
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&program).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	now := s.clock.Now()

	eventType := model.ProgramReactivatedEvent
	if status == model.ProgramStatusDeactivated {
		eventType = model.ProgramDeactivatedEvent
		program.DeactivatedAt = &now
	} else {
		program.DeactivatedAt = nil
	}
	program.Status = status

	raw, err := activity.Encode(activity.StatusChangedEvent{
		EventBase: eventBase(actor, now),
		Status:    status,
	})
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&program).Error; err != nil {
			return err
		}
		return tx.Create(&model.ProgramActivityLog{
			TenantID:  tenantID,
			ProgramID: program.ID,
			Date:      now,
			EventType: int(eventType),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &program, nil
}

// ActivityHistory returns the decoded audit trail, newest first
func (s *ProgramService) ActivityHistory(tenantID, id uuid.UUID, page, pageSize int) (*activity.Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	var program model.Program
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&program).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	logs := s.db.Model(&model.ProgramActivityLog{}).
		Where("tenant_id = ? AND program_id = ?", tenantID, id)

	var count int64
	if err := logs.Count(&count).Error; err != nil {
		return nil, err
	}

	var rows []model.ProgramActivityLog
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
func (s *ProgramService) Export(tenantID uuid.UUID, fileType export.FileType) ([]byte, error) {
	var programs []model.Program
	err := s.db.Where("tenant_id = ?", tenantID).Order("name").Find(&programs).Error
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Headers: []string{"Name", "Reference", "Jurisdiction", "Agency", "Status", "Creation date"},
	}
	for _, p := range programs {
		table.Rows = append(table.Rows, []string{
			p.Name, p.Reference, p.Jurisdiction, p.Agency, p.Status, p.CreatedAt.Format("01/02/2006"),
		})
	}

	return export.Convert(fileType, table)
}
