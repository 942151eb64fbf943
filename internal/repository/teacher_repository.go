package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub/internal/model"
)

// TeacherFilter narrows a teacher listing.
type TeacherFilter struct {
	Search         string
	Specialization string
	Status         model.TeacherStatus
	Page           Page
}

// SpecializationCount is one bucket of the teacher distribution.
type SpecializationCount struct {
	Specialization string `json:"specialization"`
	Count          int64  `json:"count"`
}

// TeacherRepository persists teacher profiles.
type TeacherRepository interface {
	Create(ctx context.Context, profile *model.TeacherProfile) error
	Update(ctx context.Context, profile *model.TeacherProfile) error
	DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*model.TeacherProfile, error)
	// EmployeeIDTaken reports whether a teacher other than exclude holds employeeID.
	EmployeeIDTaken(ctx context.Context, employeeID string, exclude uuid.UUID) (bool, error)
	List(ctx context.Context, filter TeacherFilter) ([]model.TeacherProfile, int64, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.TeacherStatus) (int64, error)
	CountBySpecialization(ctx context.Context) ([]SpecializationCount, error)
}

type teacherRepository struct {
	db *gorm.DB
}

// NewTeacherRepository creates a new teacher profile repository.
func NewTeacherRepository(db *gorm.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) Create(ctx context.Context, profile *model.TeacherProfile) error {
	return translateError(r.db.WithContext(ctx).Omit("Account").Create(profile).Error)
}

func (r *teacherRepository) Update(ctx context.Context, profile *model.TeacherProfile) error {
	return translateError(r.db.WithContext(ctx).Omit("Account").Save(profile).Error)
}

func (r *teacherRepository) DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&model.TeacherProfile{}).Error
}

func (r *teacherRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*model.TeacherProfile, error) {
	var profile model.TeacherProfile
	if err := r.db.WithContext(ctx).Preload("Account").Where("account_id = ?", accountID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *teacherRepository) EmployeeIDTaken(ctx context.Context, employeeID string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.TeacherProfile{}).Where("employee_id = ?", employeeID)
	if exclude != uuid.Nil {
		q = q.Where("account_id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns one page of teachers with their accounts, newest first. The
// search term also matches employee id, qualification and specialization.
func (r *teacherRepository) List(ctx context.Context, filter TeacherFilter) ([]model.TeacherProfile, int64, error) {
	page := filter.Page.Normalize()
	q := r.db.WithContext(ctx).Model(&model.TeacherProfile{}).
		Joins("JOIN accounts ON accounts.id = teacher_profiles.account_id")
	if filter.Specialization != "" {
		q = q.Where("LOWER(teacher_profiles.specialization) LIKE ?", likePattern(filter.Specialization))
	}
	if filter.Status != "" {
		q = q.Where("teacher_profiles.status = ?", filter.Status)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where(
			"LOWER(accounts.first_name) LIKE ? OR LOWER(accounts.last_name) LIKE ? OR LOWER(accounts.email) LIKE ? OR "+
				"LOWER(teacher_profiles.employee_id) LIKE ? OR LOWER(teacher_profiles.qualification) LIKE ? OR LOWER(teacher_profiles.specialization) LIKE ?",
			p, p, p, p, p, p)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var profiles []model.TeacherProfile
	if err := q.Preload("Account").
		Order("teacher_profiles.created_at DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *teacherRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TeacherProfile{}).Count(&count).Error
	return count, err
}

func (r *teacherRepository) CountByStatus(ctx context.Context, status model.TeacherStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TeacherProfile{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// CountBySpecialization groups teachers by specialization, largest group first.
func (r *teacherRepository) CountBySpecialization(ctx context.Context) ([]SpecializationCount, error) {
	var rows []SpecializationCount
	err := r.db.WithContext(ctx).Model(&model.TeacherProfile{}).
		Select("specialization, COUNT(*) AS count").
		Group("specialization").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}
