package service

import (
	"fmt"

	"practice-service/internal/activity"
	"practice-service/internal/export"
	"practice-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamService owns team CRUD, activity history and export
type TeamService struct {
	db       *gorm.DB
	clock    Clock
	registry *activity.Registry
}

func NewTeamService(db *gorm.DB, clock Clock) *TeamService {
	registry := activity.NewRegistry().
		Register(int(model.TeamCreatedEvent), 1, activity.CreatedDecoder("Team")).
		Register(int(model.TeamUpdatedEvent), 1, activity.UpdatedDecoder("Team"))

	return &TeamService{db: db, clock: clock, registry: registry}
}

// TeamInput carries the editable fields of a team
type TeamInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List returns the tenant's teams, newest first
func (s *TeamService) List(tenantID uuid.UUID, page, limit int) ([]model.Team, int64, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.Model(&model.Team{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var teams []model.Team
	err := query.
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&teams).Error
	if err != nil {
		return nil, 0, err
	}

	return teams, total, nil
}

// Get returns one team scoped to the tenant
func (s *TeamService) Get(tenantID, id uuid.UUID) (*model.Team, error) {
	var team model.Team
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&team).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &team, nil
}

// Create inserts a team and its created event in one transaction
func (s *TeamService) Create(tenantID uuid.UUID, actor Actor, in TeamInput) (*model.Team, error) {
	var count int64
	if err := s.db.Model(&model.Team{}).
		Where("tenant_id = ? AND name = ?", tenantID, in.Name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: team name %q", ErrDuplicate, in.Name)
	}

	team := model.Team{
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
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		return tx.Create(&model.TeamActivityLog{
			TenantID:  tenantID,
			TeamID:    team.ID,
			Date:      now,
			EventType: int(model.TeamCreatedEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &team, nil
}

// Update applies field changes and appends the updated event atomically
func (s *TeamService) Update(tenantID uuid.UUID, actor Actor, id uuid.UUID, in TeamInput) (*model.Team, error) {
	var team model.Team
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&team).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	if in.Name != team.Name {
		var count int64
		if err := s.db.Model(&model.Team{}).
			Where("tenant_id = ? AND name = ? AND id != ?", tenantID, in.Name, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: team name %q", ErrDuplicate, in.Name)
		}
	}

	previous, err := activity.Encode(TeamInput{Name: team.Name, Description: team.Description})
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

	team.Name = in.Name
	team.Description = in.Description

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&team).Error; err != nil {
			return err
		}
		return tx.Create(&model.TeamActivityLog{
			TenantID:  tenantID,
			TeamID:    team.ID,
			Date:      now,
			EventType: int(model.TeamUpdatedEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &team, nil
}

// ActivityHistory returns the decoded audit trail, newest first
func (s *TeamService) ActivityHistory(tenantID, id uuid.UUID, page, pageSize int) (*activity.Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	var team model.Team
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&team).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	logs := s.db.Model(&model.TeamActivityLog{}).
		Where("tenant_id = ? AND team_id = ?", tenantID, id)

	var count int64
	if err := logs.Count(&count).Error; err != nil {
		return nil, err
	}

	var rows []model.TeamActivityLog
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
func (s *TeamService) Export(tenantID uuid.UUID, fileType export.FileType) ([]byte, error) {
	var teams []model.Team
	err := s.db.Where("tenant_id = ?", tenantID).Order("name").Find(&teams).Error
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Headers: []string{"Name", "Description", "Creation date"},
	}
	for _, t := range teams {
		table.Rows = append(table.Rows, []string{
			t.Name, t.Description, t.CreatedAt.Format("01/02/2006"),
		})
	}

	return export.Convert(fileType, table)
}
