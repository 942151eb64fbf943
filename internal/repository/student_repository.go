package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub/internal/model"
)

// StudentFilter narrows a student listing.
type StudentFilter struct {
	Search string
	Class  string
	Status model.StudentStatus
	Page   Page
}

// StudentRepository persists student profiles.
type StudentRepository interface {
	Create(ctx context.Context, profile *model.StudentProfile) error
	Update(ctx context.Context, profile *model.StudentProfile) error
	DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*model.StudentProfile, error)
	// RollNumberTaken reports whether a student other than exclude holds rollNumber.
	RollNumberTaken(ctx context.Context, rollNumber string, exclude uuid.UUID) (bool, error)
	List(ctx context.Context, filter StudentFilter) ([]model.StudentProfile, int64, error)
	Count(ctx context.Context) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student profile repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, profile *model.StudentProfile) error {
	return translateError(r.db.WithContext(ctx).Omit("Account").Create(profile).Error)
}

func (r *studentRepository) Update(ctx context.Context, profile *model.StudentProfile) error {
	return translateError(r.db.WithContext(ctx).Omit("Account").Save(profile).Error)
}

func (r *studentRepository) DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&model.StudentProfile{}).Error
}

func (r *studentRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	if err := r.db.WithContext(ctx).Preload("Account").Where("account_id = ?", accountID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *studentRepository) RollNumberTaken(ctx context.Context, rollNumber string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.StudentProfile{}).Where("roll_number = ?", rollNumber)
	if exclude != uuid.Nil {
		q = q.Where("account_id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns one page of students with their accounts, newest first.
func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]model.StudentProfile, int64, error) {
	page := filter.Page.Normalize()
	q := r.db.WithContext(ctx).Model(&model.StudentProfile{}).
		Joins("JOIN accounts ON accounts.id = student_profiles.account_id")
	if filter.Class != "" {
		q = q.Where("student_profiles.class = ?", filter.Class)
	}
	if filter.Status != "" {
		q = q.Where("student_profiles.status = ?", filter.Status)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where("LOWER(accounts.first_name) LIKE ? OR LOWER(accounts.last_name) LIKE ? OR LOWER(accounts.email) LIKE ?", p, p, p)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var profiles []model.StudentProfile
	if err := q.Preload("Account").
		Order("student_profiles.created_at DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.StudentProfile{}).Count(&count).Error
	return count, err
}
