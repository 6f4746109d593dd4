package service

import (
	"errors"
	"fmt"

	"practice-service/internal/activity"
	"practice-service/internal/export"
	"practice-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService owns tenant user management: membership, profile, status,
// role assignment, activity history and export.
type UserService struct {
	db       *gorm.DB
	clock    Clock
	registry *activity.Registry
}

func NewUserService(db *gorm.DB, clock Clock) *UserService {
	registry := activity.NewRegistry().
		Register(int(model.UserCreatedEvent), 1, activity.CreatedDecoder("User")).
		Register(int(model.UserUpdatedEvent), 1, activity.UpdatedDecoder("User")).
		Register(int(model.UserDeactivatedEvent), 1, activity.StatusDecoder("User")).
		Register(int(model.UserReactivatedEvent), 1, activity.StatusDecoder("User")).
		Register(int(model.UserRolesAssignEvent), 1, activity.RolesDecoder()).
		Register(int(model.UserRolesUnassignEvent), 1, activity.RolesDecoder())

	return &UserService{db: db, clock: clock, registry: registry}
}

// UserInput carries the editable profile fields of a tenant user
type UserInput struct {
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	DivisionID    *uuid.UUID `json:"division_id,omitempty"`
	DepartmentID  *uuid.UUID `json:"department_id,omitempty"`
	ServiceAreaID *uuid.UUID `json:"service_area_id,omitempty"`
	TeamID        *uuid.UUID `json:"team_id,omitempty"`
	JobTitleID    *uuid.UUID `json:"job_title_id,omitempty"`
}

// checkMembership verifies the user belongs to the tenant
func (s *UserService) checkMembership(tenantID, userID uuid.UUID) error {
	var count int64
	err := s.db.Model(&model.TenantUser{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return nil
}

// checkOrgLinks verifies every referenced org unit belongs to the tenant
func (s *UserService) checkOrgLinks(tenantID uuid.UUID, in UserInput) error {
	links := []struct {
		id    *uuid.UUID
		table string
	}{
		{in.DivisionID, "divisions"},
		{in.DepartmentID, "departments"},
		{in.ServiceAreaID, "service_areas"},
		{in.TeamID, "teams"},
		{in.JobTitleID, "job_titles"},
	}
	for _, link := range links {
		if link.id == nil {
			continue
		}
		var count int64
		err := s.db.Table(link.table).
			Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", *link.id, tenantID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: %s %s", ErrNotFound, link.table, *link.id)
		}
	}
	return nil
}

// List returns the tenant's users, newest first
func (s *UserService) List(tenantID uuid.UUID, page, limit int) ([]model.User, int64, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.Model(&model.User{}).
		Joins("JOIN tenant_users ON tenant_users.user_id = users.id").
		Where("tenant_users.tenant_id = ? AND tenant_users.deleted_at IS NULL", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := query.
		Order("users.created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Get returns one user scoped to the tenant
func (s *UserService) Get(tenantID, id uuid.UUID) (*model.User, error) {
	if err := s.checkMembership(tenantID, id); err != nil {
		return nil, err
	}
	var user model.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &user, nil
}

// Roles returns the user's role names within the tenant
func (s *UserService) Roles(tenantID, userID uuid.UUID) ([]string, error) {
	var userRoles []model.UserRole
	err := s.db.Preload("Role").
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Find(&userRoles).Error
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(userRoles))
	for _, ur := range userRoles {
		names = append(names, ur.Role.Name)
	}
	return names, nil
}

// Create adds a user to the tenant. An existing account with the same
// email is enrolled instead of duplicated; an existing member is a conflict.
func (s *UserService) Create(tenantID uuid.UUID, actor Actor, in UserInput) (*model.User, error) {
	if err := s.checkOrgLinks(tenantID, in); err != nil {
		return nil, err
	}

	var user model.User
	err := s.db.Where("email = ?", in.Email).First(&user).Error
	switch {
	case err == nil:
		var count int64
		if err := s.db.Model(&model.TenantUser{}).
			Where("tenant_id = ? AND user_id = ?", tenantID, user.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: user email %q", ErrDuplicate, in.Email)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = model.User{
			Email:     in.Email,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Status:    model.UserStatusActive,
		}
	default:
		return nil, err
	}

	user.DivisionID = in.DivisionID
	user.DepartmentID = in.DepartmentID
	user.ServiceAreaID = in.ServiceAreaID
	user.TeamID = in.TeamID
	user.JobTitleID = in.JobTitleID

	now := s.clock.Now()
	raw, encErr := activity.Encode(activity.EntityCreatedEvent{
		EventBase:   eventBase(actor, now),
		CreatedName: user.FullName(),
	})
	if encErr != nil {
		return nil, encErr
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.TenantUser{
			TenantID: tenantID,
			UserID:   user.ID,
			Active:   true,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&model.UserActivityLog{
			TenantID:  tenantID,
			UserID:    user.ID,
			Date:      now,
			EventType: int(model.UserCreatedEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	return &user, nil
}

// Update applies profile changes and appends the updated event atomically
func (s *UserService) Update(tenantID uuid.UUID, actor Actor, id uuid.UUID, in UserInput) (*model.User, error) {
	user, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOrgLinks(tenantID, in); err != nil {
		return nil, err
	}

	previous, err := activity.Encode(UserInput{
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		DivisionID:    user.DivisionID,
		DepartmentID:  user.DepartmentID,
		ServiceAreaID: user.ServiceAreaID,
		TeamID:        user.TeamID,
		JobTitleID:    user.JobTitleID,
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

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.DivisionID = in.DivisionID
	user.DepartmentID = in.DepartmentID
	user.ServiceAreaID = in.ServiceAreaID
	user.TeamID = in.TeamID
	user.JobTitleID = in.JobTitleID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		return tx.Create(&model.UserActivityLog{
			TenantID:  tenantID,
			UserID:    user.ID,
			Date:      now,
			EventType: int(model.UserUpdatedEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateStatus deactivates or reactivates a tenant user
func (s *UserService) UpdateStatus(tenantID uuid.UUID, actor Actor, id uuid.UUID, status string) (*model.User, error) {
	if status != model.UserStatusActive && status != model.UserStatusDeactivated {
		return nil, fmt.Errorf("invalid user status %q", status)
	}

	user, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	eventType := model.UserReactivatedEvent
	active := true
	if status == model.UserStatusDeactivated {
		eventType = model.UserDeactivatedEvent
		active = false
		user.DeactivatedAt = &now
	} else {
		user.DeactivatedAt = nil
	}
	user.Status = status

	raw, err := activity.Encode(activity.StatusChangedEvent{
		EventBase: eventBase(actor, now),
		Status:    status,
	})
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		err := tx.Model(&model.TenantUser{}).
			Where("tenant_id = ? AND user_id = ?", tenantID, id).
			Update("active", active).Error
		if err != nil {
			return err
		}
		return tx.Create(&model.UserActivityLog{
			TenantID:  tenantID,
			UserID:    user.ID,
			Date:      now,
			EventType: int(eventType),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// AssignRoles grants the named roles, creating tenant roles on first use
func (s *UserService) AssignRoles(tenantID uuid.UUID, actor Actor, id uuid.UUID, roleNames []string) error {
	if err := s.checkMembership(tenantID, id); err != nil {
		return err
	}
	if len(roleNames) == 0 {
		return nil
	}

	now := s.clock.Now()
	raw, err := activity.Encode(activity.RolesChangedEvent{
		EventBase: eventBase(actor, now),
		Roles:     roleNames,
		Assigned:  true,
	})
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, name := range roleNames {
			var role model.Role
			err := tx.Where("tenant_id = ? AND name = ?", tenantID, name).
				FirstOrCreate(&role, model.Role{TenantID: tenantID, Name: name}).Error
			if err != nil {
				return err
			}

			var count int64
			err = tx.Model(&model.UserRole{}).
				Where("tenant_id = ? AND user_id = ? AND role_id = ?", tenantID, id, role.ID).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			err = tx.Create(&model.UserRole{
				TenantID: tenantID,
				UserID:   id,
				RoleID:   role.ID,
			}).Error
			if err != nil {
				return err
			}
		}

		return tx.Create(&model.UserActivityLog{
			TenantID:  tenantID,
			UserID:    id,
			Date:      now,
			EventType: int(model.UserRolesAssignEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
}

// UnassignRoles revokes the named roles; unknown names are ignored
func (s *UserService) UnassignRoles(tenantID uuid.UUID, actor Actor, id uuid.UUID, roleNames []string) error {
	if err := s.checkMembership(tenantID, id); err != nil {
		return err
	}
	if len(roleNames) == 0 {
		return nil
	}

	now := s.clock.Now()
	raw, err := activity.Encode(activity.RolesChangedEvent{
		EventBase: eventBase(actor, now),
		Roles:     roleNames,
		Assigned:  false,
	})
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var roles []model.Role
		err := tx.Where("tenant_id = ? AND name IN ?", tenantID, roleNames).Find(&roles).Error
		if err != nil {
			return err
		}

		roleIDs := make([]uuid.UUID, 0, len(roles))
		for _, role := range roles {
			roleIDs = append(roleIDs, role.ID)
		}
		if len(roleIDs) > 0 {
			err = tx.Where("tenant_id = ? AND user_id = ? AND role_id IN ?", tenantID, id, roleIDs).
				Delete(&model.UserRole{}).Error
			if err != nil {
				return err
			}
		}

		return tx.Create(&model.UserActivityLog{
			TenantID:  tenantID,
			UserID:    id,
			Date:      now,
			EventType: int(model.UserRolesUnassignEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
}

// ActivityHistory returns the decoded audit trail, newest first
func (s *UserService) ActivityHistory(tenantID, id uuid.UUID, page, pageSize int) (*activity.Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	if err := s.checkMembership(tenantID, id); err != nil {
		return nil, err
	}

	logs := s.db.Model(&model.UserActivityLog{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, id)

	var count int64
	if err := logs.Count(&count).Error; err != nil {
		return nil, err
	}

	var rows []model.UserActivityLog
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

// Export builds the export projection and delegates to the converter
func (s *UserService) Export(tenantID uuid.UUID, fileType export.FileType) ([]byte, error) {
	var users []model.User
	err := s.db.Model(&model.User{}).
		Joins("JOIN tenant_users ON tenant_users.user_id = users.id").
		Where("tenant_users.tenant_id = ? AND tenant_users.deleted_at IS NULL", tenantID).
		Order("users.last_name, users.first_name").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Headers: []string{"Name", "Email", "Status", "Creation date"},
	}
	for _, u := range users {
		table.Rows = append(table.Rows, []string{
			u.FullName(), u.Email, u.Status, u.CreatedAt.Format("01/02/2006"),
		})
	}

	return export.Convert(fileType, table)
}
