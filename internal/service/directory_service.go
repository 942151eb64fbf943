package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"schoolhub/internal/auth"
	apperrors "schoolhub/internal/errors"
	"schoolhub/internal/model"
	"schoolhub/internal/repository"
)

// DirectoryService serves the read-only projections over accounts and
// profiles. Password hashes never leave the model's JSON encoding.
type DirectoryService interface {
	ListAccounts(ctx context.Context, role string, page repository.Page) (*Page[model.Account], error)
	SearchPeers(ctx context.Context, caller auth.Principal, query string, excludeSelf bool) ([]model.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*AccountView, error)
	ListStudents(ctx context.Context, filter repository.StudentFilter) (*Page[model.StudentProfile], error)
	GetStudent(ctx context.Context, accountID uuid.UUID) (*model.StudentProfile, error)
	ListTeachers(ctx context.Context, filter repository.TeacherFilter) (*Page[model.TeacherProfile], error)
	GetTeacher(ctx context.Context, accountID uuid.UUID) (*model.TeacherProfile, error)
	TeacherStats(ctx context.Context) (*TeacherStats, error)
}

type directoryService struct {
	store repository.Store
	cache Cache
	ttl   CacheTTL
}

// NewDirectoryService creates the read-side service.
func NewDirectoryService(store repository.Store, cache Cache, ttl CacheTTL) DirectoryService {
	return &directoryService{store: store, cache: cache, ttl: ttl}
}

func (s *directoryService) ListAccounts(ctx context.Context, role string, page repository.Page) (*Page[model.Account], error) {
	filter := repository.AccountFilter{Page: page}
	if role != "" {
		r, ok := model.ParseRole(role)
		if !ok {
			return nil, apperrors.Validation("Role must be one of admin, teacher, student")
		}
		filter.Role = &r
	}

	accounts, total, err := s.store.Accounts().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return newPage(accounts, total, page), nil
}

// SearchPeers finds accounts the caller is allowed to discover: students
// see teachers, teachers see students, admins see both.
func (s *directoryService) SearchPeers(ctx context.Context, caller auth.Principal, query string, excludeSelf bool) ([]model.Account, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Validation("Please provide a search query")
	}
	roles := caller.Role.Peers()
	if len(roles) == 0 {
		return []model.Account{}, nil
	}

	search := repository.AccountSearch{Query: query, Roles: roles}
	if excludeSelf {
		search.Exclude = caller.AccountID
	}
	accounts, err := s.store.Accounts().Search(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	if accounts == nil {
		accounts = []model.Account{}
	}
	return accounts, nil
}

func (s *directoryService) GetAccount(ctx context.Context, id uuid.UUID) (*AccountView, error) {
	var cached cachedAccountView
	if s.cache.GetJSON(ctx, accountKey(id), &cached) && cached.User != nil {
		return cached.view(), nil
	}

	account, err := findAccount(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	profile, err := loadProfile(ctx, s.store, account)
	if err != nil {
		return nil, err
	}

	view := &AccountView{User: account, Profile: profile}
	s.cache.SetJSON(ctx, accountKey(id), toCached(view), s.ttl.Account)
	return view, nil
}

func (s *directoryService) ListStudents(ctx context.Context, filter repository.StudentFilter) (*Page[model.StudentProfile], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.Validation("Status must be one of active, inactive, graduated, suspended")
	}
	profiles, total, err := s.store.Students().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return newPage(profiles, total, filter.Page), nil
}

func (s *directoryService) GetStudent(ctx context.Context, accountID uuid.UUID) (*model.StudentProfile, error) {
	p, err := s.store.Students().FindByAccountID(ctx, accountID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NotFound("Student not found")
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return p, nil
}

func (s *directoryService) ListTeachers(ctx context.Context, filter repository.TeacherFilter) (*Page[model.TeacherProfile], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.Validation("Status must be one of active, inactive, on-leave, resigned")
	}
	profiles, total, err := s.store.Teachers().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return newPage(profiles, total, filter.Page), nil
}

func (s *directoryService) GetTeacher(ctx context.Context, accountID uuid.UUID) (*model.TeacherProfile, error) {
	p, err := s.store.Teachers().FindByAccountID(ctx, accountID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NotFound("Teacher not found")
		}
		return nil, fmt.Errorf("find teacher: %w", err)
	}
	return p, nil
}

func (s *directoryService) TeacherStats(ctx context.Context) (*TeacherStats, error) {
	var stats TeacherStats
	if s.cache.GetJSON(ctx, teacherStatsKey, &stats) {
		return &stats, nil
	}

	teachers := s.store.Teachers()
	var err error
	if stats.Total, err = teachers.Count(ctx); err != nil {
		return nil, fmt.Errorf("count teachers: %w", err)
	}
	if stats.Active, err = teachers.CountByStatus(ctx, model.TeacherActive); err != nil {
		return nil, fmt.Errorf("count active teachers: %w", err)
	}
	if stats.OnLeave, err = teachers.CountByStatus(ctx, model.TeacherOnLeave); err != nil {
		return nil, fmt.Errorf("count teachers on leave: %w", err)
	}
	if stats.BySpecialization, err = teachers.CountBySpecialization(ctx); err != nil {
		return nil, fmt.Errorf("group teachers: %w", err)
	}
	if stats.BySpecialization == nil {
		stats.BySpecialization = []repository.SpecializationCount{}
	}

	s.cache.SetJSON(ctx, teacherStatsKey, stats, s.ttl.Stats)
	return &stats, nil
}
