package service

import (
	"fmt"

	"practice-service/internal/activity"
	"practice-service/internal/export"
	"practice-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactService owns contact CRUD, activity history and export
type ContactService struct {
	db       *gorm.DB
	clock    Clock
	registry *activity.Registry
}

func NewContactService(db *gorm.DB, clock Clock) *ContactService {
	registry := activity.NewRegistry().
		Register(int(model.ContactCreatedEvent), 1, activity.CreatedDecoder("Contact")).
		Register(int(model.ContactUpdatedEvent), 1, activity.UpdatedDecoder("Contact"))

	return &ContactService{db: db, clock: clock, registry: registry}
}

// ContactInput carries the editable fields of a contact
type ContactInput struct {
	AccountID uuid.UUID `json:"account_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	JobTitle  string    `json:"job_title"`
}

// checkAccount verifies the linked account belongs to the same tenant
func (s *ContactService) checkAccount(tenantID, accountID uuid.UUID) error {
	var count int64
	err := s.db.Model(&model.Account{}).
		Where("id = ? AND tenant_id = ?", accountID, tenantID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: account %s", ErrNotFound, accountID)
	}
	return nil
}

// List returns the tenant's contacts, newest first
func (s *ContactService) List(tenantID uuid.UUID, page, limit int) ([]model.Contact, int64, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.Model(&model.Contact{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contacts []model.Contact
	err := query.
		Preload("Account").
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&contacts).Error
	if err != nil {
		return nil, 0, err
	}

	return contacts, total, nil
}

// Get returns one contact scoped to the tenant
func (s *ContactService) Get(tenantID, id uuid.UUID) (*model.Contact, error) {
	var contact model.Contact
	err := s.db.Preload("Account").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&contact).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &contact, nil
}

// Create inserts a contact and its created event in one transaction
func (s *ContactService) Create(tenantID uuid.UUID, actor Actor, in ContactInput) (*model.Contact, error) {
	if err := s.checkAccount(tenantID, in.AccountID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&model.Contact{}).
		Where("tenant_id = ? AND email = ?", tenantID, in.Email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: contact email %q", ErrDuplicate, in.Email)
	}

	contact := model.Contact{
		TenantID:  tenantID,
		AccountID: in.AccountID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		JobTitle:  in.JobTitle,
	}

	now := s.clock.Now()
	raw, err := activity.Encode(activity.EntityCreatedEvent{
		EventBase:   eventBase(actor, now),
		CreatedName: contact.FullName(),
	})
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&contact).Error; err != nil {
			return err
		}
		return tx.Create(&model.ContactActivityLog{
			TenantID:  tenantID,
			ContactID: contact.ID,
			Date:      now,
			EventType: int(model.ContactCreatedEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(tenantID, contact.ID)
}

// Update applies field changes and appends the updated event atomically
func (s *ContactService) Update(tenantID uuid.UUID, actor Actor, id uuid.UUID, in ContactInput) (*model.Contact, error) {
	var contact model.Contact
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&contact).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	if err := s.checkAccount(tenantID, in.AccountID); err != nil {
		return nil, err
	}

	if in.Email != contact.Email {
		var count int64
		if err := s.db.Model(&model.Contact{}).
			Where("tenant_id = ? AND email = ? AND id != ?", tenantID, in.Email, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: contact email %q", ErrDuplicate, in.Email)
		}
	}

	previous, err := activity.Encode(ContactInput{
		AccountID: contact.AccountID,
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
		Phone:     contact.Phone,
		JobTitle:  contact.JobTitle,
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

	contact.AccountID = in.AccountID
	contact.FirstName = in.FirstName
	contact.LastName = in.LastName
	contact.Email = in.Email
	contact.Phone = in.Phone
	contact.JobTitle = in.JobTitle

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&contact).Error; err != nil {
			return err
		}
		return tx.Create(&model.ContactActivityLog{
			TenantID:  tenantID,
			ContactID: contact.ID,
			Date:      now,
			EventType: int(model.ContactUpdatedEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(tenantID, contact.ID)
}

// ActivityHistory returns the decoded audit trail, newest first
func (s *ContactService) ActivityHistory(tenantID, id uuid.UUID, page, pageSize int) (*activity.Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	var contact model.Contact
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&contact).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	logs := s.db.Model(&model.ContactActivityLog{}).
		Where("tenant_id = ? AND contact_id = ?", tenantID, id)

	var count int64
	if err := logs.Count(&count).Error; err != nil {
		return nil, err
	}

	var rows []model.ContactActivityLog
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
func (s *ContactService) Export(tenantID uuid.UUID, fileType export.FileType) ([]byte, error) {
	var contacts []model.Contact
	err := s.db.Preload("Account").
		Where("tenant_id = ?", tenantID).
		Order("last_name, first_name").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Headers: []string{"Name", "Email", "Account", "Job title", "Phone", "Creation date"},
	}
	for _, c := range contacts {
		table.Rows = append(table.Rows, []string{
			c.FullName(), c.Email, c.Account.Name, c.JobTitle, c.Phone, c.CreatedAt.Format("01/02/2006"),
		})
	}

	return export.Convert(fileType, table)
}
