package service

import (
	"fmt"

	"practice-service/internal/activity"
	"practice-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantService owns tenant lifecycle, membership lookups and the
// tenant-level audit trail.
type TenantService struct {
	db       *gorm.DB
	clock    Clock
	registry *activity.Registry
}

func NewTenantService(db *gorm.DB, clock Clock) *TenantService {
	registry := activity.NewRegistry().
		Register(int(model.TenantEnteredEvent), 1, activity.TenantAccessDecoder()).
		Register(int(model.TenantExitedEvent), 1, activity.TenantAccessDecoder()).
		Register(int(model.TenantUpdatedEvent), 1, activity.UpdatedDecoder("Tenant"))

	return &TenantService{db: db, clock: clock, registry: registry}
}

// TenantInput carries the editable fields of a tenant
type TenantInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListForUser returns the tenants a user belongs to
func (s *TenantService) ListForUser(userID uuid.UUID) ([]model.TenantUser, error) {
	var memberships []model.TenantUser
	err := s.db.Preload("Tenant").
		Where("user_id = ? AND active = ?", userID, true).
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// Membership returns the user's membership row for one tenant
func (s *TenantService) Membership(tenantID, userID uuid.UUID) (*model.TenantUser, error) {
	var membership model.TenantUser
	err := s.db.Preload("Tenant").
		Where("tenant_id = ? AND user_id = ? AND active = ?", tenantID, userID, true).
		First(&membership).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &membership, nil
}

// Get returns one tenant the user belongs to
func (s *TenantService) Get(id, userID uuid.UUID) (*model.Tenant, error) {
	if _, err := s.Membership(id, userID); err != nil {
		return nil, err
	}
	var tenant model.Tenant
	if err := s.db.First(&tenant, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &tenant, nil
}

// Create provisions a tenant with the creator as owner and default member
func (s *TenantService) Create(ownerID uuid.UUID, in TenantInput) (*model.Tenant, error) {
	var count int64
	if err := s.db.Model(&model.Tenant{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: tenant name %q", ErrDuplicate, in.Name)
	}

	tenant := model.Tenant{
		Name:        in.Name,
		Description: in.Description,
		Status:      model.TenantStatusActive,
		OwnerID:     ownerID,
	}

	var hasDefault int64
	if err := s.db.Model(&model.TenantUser{}).
		Where("user_id = ? AND is_default = ?", ownerID, true).
		Count(&hasDefault).Error; err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		return tx.Create(&model.TenantUser{
			TenantID:  tenant.ID,
			UserID:    ownerID,
			IsDefault: hasDefault == 0,
			Active:    true,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &tenant, nil
}

// Update applies field changes and appends the updated event atomically.
// Only the owner may update a tenant.
func (s *TenantService) Update(id uuid.UUID, actor Actor, in TenantInput) (*model.Tenant, error) {
	var tenant model.Tenant
	err := s.db.Where("id = ? AND owner_id = ?", id, actor.ID).First(&tenant).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	if in.Name != tenant.Name {
		var count int64
		if err := s.db.Model(&model.Tenant{}).
			Where("name = ? AND id != ?", in.Name, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: tenant name %q", ErrDuplicate, in.Name)
		}
	}

	previous, err := activity.Encode(TenantInput{
		Name:        tenant.Name,
		Description: tenant.Description,
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

	tenant.Name = in.Name
	tenant.Description = in.Description

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&tenant).Error; err != nil {
			return err
		}
		return tx.Create(&model.TenantActivityLog{
			TenantID:  tenant.ID,
			Date:      now,
			EventType: int(model.TenantUpdatedEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &tenant, nil
}

// RecordAccess appends an entered or exited event for a tenant switch
func (s *TenantService) RecordAccess(tenantID uuid.UUID, actor Actor, entered bool) error {
	now := s.clock.Now()
	raw, err := activity.Encode(activity.TenantAccessEvent{
		EventBase: eventBase(actor, now),
		Entered:   entered,
	})
	if err != nil {
		return err
	}

	eventType := model.TenantExitedEvent
	if entered {
		eventType = model.TenantEnteredEvent
	}

	return s.db.Create(&model.TenantActivityLog{
		TenantID:  tenantID,
		Date:      now,
		EventType: int(eventType),
		Revision:  1,
		Event:     raw,
	}).Error
}

// ActivityHistory returns the decoded tenant audit trail, newest first
func (s *TenantService) ActivityHistory(id, userID uuid.UUID, page, pageSize int) (*activity.Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	if _, err := s.Membership(id, userID); err != nil {
		return nil, err
	}

	logs := s.db.Model(&model.TenantActivityLog{}).Where("tenant_id = ?", id)

	var count int64
	if err := logs.Count(&count).Error; err != nil {
		return nil, err
	}

	var rows []model.TenantActivityLog
	err := logs.
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
