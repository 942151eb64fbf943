package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub/internal/model"
)

// AccountFilter narrows an account listing.
type AccountFilter struct {
	Role *model.Role
	Page Page
}

// AccountSearch describes a substring search over accounts.
type AccountSearch struct {
	Query   string
	Roles   []model.Role
	Exclude uuid.UUID // uuid.Nil excludes nobody
}

// AccountRepository defines account persistence operations.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	Update(ctx context.Context, account *model.Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	// EmailTaken reports whether another account than exclude holds email.
	EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	List(ctx context.Context, filter AccountFilter) ([]model.Account, int64, error)
	Search(ctx context.Context, search AccountSearch) ([]model.Account, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new account.
func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	account.Email = model.NormalizeEmail(account.Email)
	return translateError(r.db.WithContext(ctx).Create(account).Error)
}

// Update updates an existing account.
func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	account.Email = model.NormalizeEmail(account.Email)
	return translateError(r.db.WithContext(ctx).Save(account).Error)
}

// Delete removes an account.
func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Account{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID finds an account by ID.
func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByEmail finds an account by email, case-insensitively.
func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("email = ?", model.NormalizeEmail(email)).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Account{}).Where("email = ?", model.NormalizeEmail(email))
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns one page of accounts, newest first, with the total match count.
func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]model.Account, int64, error) {
	page := filter.Page.Normalize()
	q := r.db.WithContext(ctx).Model(&model.Account{})
	if filter.Role != nil {
		q = q.Where("role = ?", *filter.Role)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var accounts []model.Account
	if err := q.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// Search matches the query against first name, last name, full name and email.
func (r *accountRepository) Search(ctx context.Context, search AccountSearch) ([]model.Account, error) {
	p := likePattern(search.Query)
	q := r.db.WithContext(ctx).
		Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(CONCAT(first_name, ' ', last_name)) LIKE ?", p, p, p, p)
	if len(search.Roles) > 0 {
		q = q.Where("role IN ?", search.Roles)
	}
	if search.Exclude != uuid.Nil {
		q = q.Where("id <> ?", search.Exclude)
	}

	var accounts []model.Account
	if err := q.Order("first_name, last_name").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}
