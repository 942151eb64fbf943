package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "schoolhub/internal/errors"
	"schoolhub/internal/model"
	"schoolhub/internal/repository"
)

// Cache is the read-through cache the services consult. Misses and backend
// failures look the same.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, keys ...string) error
}

// CacheTTL sets how long cached projections live.
type CacheTTL struct {
	Stats   time.Duration
	Account time.Duration
}

const (
	adminStatsKey   = "stats:admin"
	teacherStatsKey = "stats:teachers"
)

func accountKey(id uuid.UUID) string {
	return "account:" + id.String()
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User    model.Summary `json:"user"`
	Profile model.Profile `json:"profile,omitempty"`
	Token   string        `json:"token"`
}

// AccountView is an account together with its profile, if its role has one.
type AccountView struct {
	User    *model.Account `json:"user"`
	Profile model.Profile  `json:"profile,omitempty"`
}

// cachedAccountView is the JSON shape of an AccountView in the cache. The
// profile interface is split into its concrete variants.
type cachedAccountView struct {
	User    *model.Account        `json:"user"`
	Student *model.StudentProfile `json:"student,omitempty"`
	Teacher *model.TeacherProfile `json:"teacher,omitempty"`
}

func toCached(v *AccountView) cachedAccountView {
	c := cachedAccountView{User: v.User}
	switch p := v.Profile.(type) {
	case *model.StudentProfile:
		c.Student = p
	case *model.TeacherProfile:
		c.Teacher = p
	}
	return c
}

func (c cachedAccountView) view() *AccountView {
	v := &AccountView{User: c.User}
	switch {
	case c.Student != nil:
		v.Profile = c.Student
	case c.Teacher != nil:
		v.Profile = c.Teacher
	}
	return v
}

// SelfView is the caller's own account. Students and teachers get their
// profile; admins get the aggregate counts instead.
type SelfView struct {
	User    *model.Account `json:"user"`
	Profile model.Profile  `json:"profile,omitempty"`
	Stats   *AdminStats    `json:"stats,omitempty"`
}

// AdminStats is the aggregate shown to admins in place of a profile.
type AdminStats struct {
	StudentCount int64 `json:"studentCount"`
	TeacherCount int64 `json:"teacherCount"`
	CourseCount  int64 `json:"courseCount"`
}

// TeacherStats summarizes the teaching staff.
type TeacherStats struct {
	Total            int64                            `json:"total"`
	Active           int64                            `json:"active"`
	OnLeave          int64                            `json:"onLeave"`
	BySpecialization []repository.SpecializationCount `json:"bySpecialization"`
}

// Page is one window of a listing.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

// Pages is the number of pages needed to hold Total items.
func (p *Page[T]) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

func newPage[T any](items []T, total int64, page repository.Page) *Page[T] {
	page = page.Normalize()
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Page: page.Number, Limit: page.Limit}
}

// loadProfile returns the profile of account, or nil for roles without one.
func loadProfile(ctx context.Context, store repository.Store, account *model.Account) (model.Profile, error) {
	switch account.Role {
	case model.RoleStudent:
		p, err := store.Students().FindByAccountID(ctx, account.ID)
		if err != nil {
			return nil, profileLookupError(err)
		}
		return p, nil
	case model.RoleTeacher:
		p, err := store.Teachers().FindByAccountID(ctx, account.ID)
		if err != nil {
			return nil, profileLookupError(err)
		}
		return p, nil
	default:
		return nil, nil
	}
}

var errProfileMissing = apperrors.NotFound("Profile not found")

func profileLookupError(err error) error {
	if repository.IsNotFound(err) {
		return errProfileMissing
	}
	return fmt.Errorf("find profile: %w", err)
}

func findAccount(ctx context.Context, store repository.Store, id uuid.UUID) (*model.Account, error) {
	account, err := store.Accounts().FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

func loadAdminStats(ctx context.Context, store repository.Store, cache Cache, ttl time.Duration) (*AdminStats, error) {
	var stats AdminStats
	if cache.GetJSON(ctx, adminStatsKey, &stats) {
		return &stats, nil
	}

	var err error
	if stats.StudentCount, err = store.Students().Count(ctx); err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	if stats.TeacherCount, err = store.Teachers().Count(ctx); err != nil {
		return nil, fmt.Errorf("count teachers: %w", err)
	}
	if stats.CourseCount, err = store.Courses().Count(ctx); err != nil {
		return nil, fmt.Errorf("count courses: %w", err)
	}
	cache.SetJSON(ctx, adminStatsKey, stats, ttl)
	return &stats, nil
}

// writeError converts a unique-index violation into the matching business
// failure and wraps everything else.
func writeError(op string, err error) error {
	var dup *repository.DuplicateKeyError
	if !errors.As(err, &dup) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch dup.Field {
	case "email":
		return apperrors.DuplicateEmail()
	case "employeeId":
		return apperrors.Conflict("Employee ID already exists")
	case "rollNumber":
		return apperrors.Conflict("Roll number already exists")
	case "accountId":
		return apperrors.Conflict("Profile already exists for this user")
	default:
		return apperrors.Conflict("Record already exists")
	}
}
