package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub/internal/model"
)

// CourseRepository exposes the course lookups the identity core depends on.
type CourseRepository interface {
	CountByTeacher(ctx context.Context, teacherID uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) CountByTeacher(ctx context.Context, teacherID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Course{}).Where("teacher_id = ?", teacherID).Count(&count).Error
	return count, err
}

func (r *courseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Course{}).Count(&count).Error
	return count, err
}
