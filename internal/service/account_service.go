package service

import (
	"fmt"

	"practice-service/internal/activity"
	"practice-service/internal/export"
	"practice-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountService owns client account CRUD, activity history and export
type AccountService struct {
	db       *gorm.DB
	clock    Clock
	registry *activity.Registry
}

func NewAccountService(db *gorm.DB, clock Clock) *AccountService {
	registry := activity.NewRegistry().
		Register(int(model.AccountCreatedEvent), 1, activity.CreatedDecoder("Account")).
		Register(int(model.AccountProfileUpdatedEvent), 1, activity.UpdatedDecoder("Account"))

	return &AccountService{db: db, clock: clock, registry: registry}
}

// AccountInput carries the editable profile fields of an account
type AccountInput struct {
	Name            string `json:"name"`
	DoingBusinessAs string `json:"doing_business_as"`
	Website         string `json:"website"`
	Country         string `json:"country"`
	State           string `json:"state"`
	County          string `json:"county"`
	City            string `json:"city"`
	Address         string `json:"address"`
	PostalCode      string `json:"postal_code"`
	Phone           string `json:"phone"`
}

// List returns the tenant's accounts, newest first
func (s *AccountService) List(tenantID uuid.UUID, page, limit int) ([]model.Account, int64, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.Model(&model.Account{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []model.Account
	err := query.
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&accounts).Error
	if err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

// Get returns one account scoped to the tenant
func (s *AccountService) Get(tenantID, id uuid.UUID) (*model.Account, error) {
	var account model.Account
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&account).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &account, nil
}

// Create inserts an account and its created event in one transaction
func (s *AccountService) Create(tenantID uuid.UUID, actor Actor, in AccountInput) (*model.Account, error) {
	var count int64
	if err := s.db.Model(&model.Account{}).
		Where("tenant_id = ? AND name = ?", tenantID, in.Name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: account name %q", ErrDuplicate, in.Name)
	}

	account := model.Account{
		TenantID:        tenantID,
		Name:            in.Name,
		DoingBusinessAs: in.DoingBusinessAs,
		Website:         in.Website,
		Country:         in.Country,
		State:           in.State,
		County:          in.County,
		City:            in.City,
		Address:         in.Address,
		PostalCode:      in.PostalCode,
		Phone:           in.Phone,
		CreatedBy:       actor.ID,
		UpdatedBy:       actor.ID,
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
		if err := tx.Create(&account).Error; err != nil {
			return err
		}
		return tx.Create(&model.AccountActivityLog{
			TenantID:  tenantID,
			AccountID: account.ID,
			Date:      now,
			EventType: int(model.AccountCreatedEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// Update applies profile changes and appends the updated event atomically
func (s *AccountService) Update(tenantID uuid.UUID, actor Actor, id uuid.UUID, in AccountInput) (*model.Account, error) {
	var account model.Account
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&account).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	if in.Name != account.Name {
		var count int64
		if err := s.db.Model(&model.Account{}).
			Where("tenant_id = ? AND name = ? AND id != ?", tenantID, in.Name, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: account name %q", ErrDuplicate, in.Name)
		}
	}

	previous, err := activity.Encode(accountSnapshot(&account))
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

	account.Name = in.Name
	account.DoingBusinessAs = in.DoingBusinessAs
	account.Website = in.Website
	account.Country = in.Country
	account.State = in.State
	account.County = in.County
	account.City = in.City
	account.Address = in.Address
	account.PostalCode = in.PostalCode
	account.Phone = in.Phone
	account.UpdatedBy = actor.ID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&account).Error; err != nil {
			return err
		}
		return tx.Create(&model.AccountActivityLog{
			TenantID:  tenantID,
			AccountID: account.ID,
			Date:      now,
			EventType: int(model.AccountProfileUpdatedEvent),
			Revision:  1,
			Event:     raw,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &account, nil
}

func accountSnapshot(a *model.Account) AccountInput {
	return AccountInput{
		Name:            a.Name,
		DoingBusinessAs: a.DoingBusinessAs,
		Website:         a.Website,
		Country:         a.Country,
		State:           a.State,
		County:          a.County,
		City:            a.City,
		Address:         a.Address,
		PostalCode:      a.PostalCode,
		Phone:           a.Phone,
	}
}

// ActivityHistory returns the decoded audit trail, newest first
func (s *AccountService) ActivityHistory(tenantID, id uuid.UUID, page, pageSize int) (*activity.Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	var account model.Account
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&account).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	logs := s.db.Model(&model.AccountActivityLog{}).
		Where("tenant_id = ? AND account_id = ?", tenantID, id)

	var count int64
	if err := logs.Count(&count).Error; err != nil {
		return nil, err
	}

	var rows []model.AccountActivityLog
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
func (s *AccountService) Export(tenantID uuid.UUID, fileType export.FileType) ([]byte, error) {
	var accounts []model.Account
	err := s.db.Where("tenant_id = ?", tenantID).Order("name").Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Headers: []string{"Name", "Doing business as", "Country", "State", "City", "Phone", "Creation date"},
	}
	for _, a := range accounts {
		table.Rows = append(table.Rows, []string{
			a.Name, a.DoingBusinessAs, a.Country, a.State, a.City, a.Phone, a.CreatedAt.Format("01/02/2006"),
		})
	}

	return export.Convert(fileType, table)
}
