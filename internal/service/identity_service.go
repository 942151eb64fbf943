package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolhub/internal/auth"
	apperrors "schoolhub/internal/errors"
	"schoolhub/internal/model"
	"schoolhub/internal/repository"
)

// LoginInput carries login credentials and an optional role hint.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

// CreateResult is returned by AdminCreate. TemporaryPassword is set only
// when the password was generated.
type CreateResult struct {
	User              *model.Account `json:"user"`
	Profile           model.Profile  `json:"profile,omitempty"`
	TemporaryPassword string         `json:"temporaryPassword,omitempty"`
}

// IdentityService coordinates every write that spans accounts and profiles.
type IdentityService interface {
	Register(ctx context.Context, f Fields) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	GetSelf(ctx context.Context, accountID uuid.UUID) (*SelfView, error)
	AdminCreate(ctx context.Context, role model.Role, f Fields) (*CreateResult, error)
	AdminUpdate(ctx context.Context, accountID uuid.UUID, f Fields) (*AccountView, error)
	AdminDelete(ctx context.Context, accountID uuid.UUID) error
}

type identityService struct {
	store  repository.Store
	tokens auth.TokenService
	cache  Cache
	ttl    CacheTTL
	now    func() time.Time
}

// NewIdentityService creates the identity lifecycle orchestrator.
func NewIdentityService(store repository.Store, tokens auth.TokenService, cache Cache, ttl CacheTTL) IdentityService {
	return &identityService{
		store:  store,
		tokens: tokens,
		cache:  cache,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Register creates an account (and its profile) and signs the caller in.
func (s *identityService) Register(ctx context.Context, f Fields) (*AuthResult, error) {
	f.omitBlankDefaults()
	role := model.RoleStudent
	if f.Role != nil {
		r, ok := model.ParseRole(*f.Role)
		if !ok {
			return nil, apperrors.Validation("Role must be one of admin, teacher, student")
		}
		role = r
	}
	if err := f.validateCreate(role, true); err != nil {
		return nil, err
	}

	account, profile, err := s.create(ctx, role, &f, *f.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(auth.IdentityOf(account))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: account.Summary(), Profile: profile, Token: token}, nil
}

// Login verifies credentials and returns a fresh token.
func (s *identityService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	account, err := s.store.Accounts().FindByEmail(ctx, in.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.Unauthenticated("Invalid email")
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	if err := auth.CheckPassword(account.PasswordHash, in.Password); err != nil {
		return nil, apperrors.Unauthenticated("Invalid password")
	}

	if hint := strings.TrimSpace(in.Role); hint != "" && model.Role(hint) != account.Role {
		return nil, apperrors.Unauthenticated("Invalid role for this account")
	}

	profile, err := loadProfile(ctx, s.store, account)
	if err != nil && !errors.Is(err, errProfileMissing) {
		return nil, err
	}

	token, err := s.tokens.Issue(auth.IdentityOf(account))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: account.Summary(), Profile: profile, Token: token}, nil
}

// GetSelf returns the caller's account with its profile, or the admin
// aggregate for admins. A token whose account is gone is unauthenticated.
func (s *identityService) GetSelf(ctx context.Context, accountID uuid.UUID) (*SelfView, error) {
	account, err := findAccount(ctx, s.store, accountID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.Unauthenticated("User not found")
		}
		return nil, err
	}

	view := &SelfView{User: account}
	if account.Role == model.RoleAdmin {
		view.Stats, err = loadAdminStats(ctx, s.store, s.cache, s.ttl.Stats)
		if err != nil {
			return nil, err
		}
		return view, nil
	}

	view.Profile, err = loadProfile(ctx, s.store, account)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AdminCreate creates an account on someone's behalf. A password is
// generated when none is supplied.
func (s *identityService) AdminCreate(ctx context.Context, role model.Role, f Fields) (*CreateResult, error) {
	if !role.Valid() {
		return nil, apperrors.Validation("Role must be one of admin, teacher, student")
	}
	f.omitBlankDefaults()
	if f.Role != nil && model.Role(*f.Role) != role {
		return nil, apperrors.Validation("Role must be %s", role)
	}
	if err := f.validateCreate(role, false); err != nil {
		return nil, err
	}

	result := &CreateResult{}
	password := ""
	if f.Password != nil {
		password = *f.Password
	} else {
		generated, err := auth.GeneratePassword()
		if err != nil {
			return nil, fmt.Errorf("generate password: %w", err)
		}
		password = generated
		result.TemporaryPassword = generated
	}

	account, profile, err := s.create(ctx, role, &f, password)
	if err != nil {
		return nil, err
	}
	result.User = account
	result.Profile = profile
	return result, nil
}

// create writes the account and its profile in one transaction.
func (s *identityService) create(ctx context.Context, role model.Role, f *Fields, password string) (*model.Account, model.Profile, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	account := &model.Account{Role: role, PasswordHash: hash}
	f.applyAccount(account)

	var profile model.Profile
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := checkUnique(ctx, tx, f, uuid.Nil, ""); err != nil {
			return err
		}
		if err := tx.Accounts().Create(ctx, account); err != nil {
			return writeError("create account", err)
		}

		switch role {
		case model.RoleStudent:
			p := newStudentProfile(account.ID, f, s.now())
			if err := tx.Students().Create(ctx, p); err != nil {
				return writeError("create student profile", err)
			}
			profile = p
		case model.RoleTeacher:
			p := newTeacherProfile(account.ID, f, s.now())
			if err := tx.Teachers().Create(ctx, p); err != nil {
				return writeError("create teacher profile", err)
			}
			profile = p
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.invalidate(ctx, uuid.Nil)
	return account, profile, nil
}

// AdminUpdate routes account fields to the account and everything else to
// the profile, committing both or neither.
func (s *identityService) AdminUpdate(ctx context.Context, accountID uuid.UUID, f Fields) (*AccountView, error) {
	var view *AccountView
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		account, err := findAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if err := f.validateUpdate(account.Role); err != nil {
			return err
		}
		if err := checkUnique(ctx, tx, &f, accountID, account.Email); err != nil {
			return err
		}

		if f.touchesAccount() {
			f.applyAccount(account)
			if err := tx.Accounts().Update(ctx, account); err != nil {
				return writeError("update account", err)
			}
		}

		profile, err := loadProfile(ctx, tx, account)
		if err != nil {
			return err
		}
		if f.touchesProfile() {
			switch p := profile.(type) {
			case *model.StudentProfile:
				f.applyStudent(p)
				p.Account = nil
				if err := tx.Students().Update(ctx, p); err != nil {
					return writeError("update student profile", err)
				}
			case *model.TeacherProfile:
				f.applyTeacher(p)
				p.Account = nil
				if err := tx.Teachers().Update(ctx, p); err != nil {
					return writeError("update teacher profile", err)
				}
			}
		}

		view = &AccountView{User: account, Profile: profile}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, accountID)
	return view, nil
}

// AdminDelete removes the profile and then the account. Teachers who still
// instruct a course cannot be deleted.
func (s *identityService) AdminDelete(ctx context.Context, accountID uuid.UUID) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		account, err := findAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}

		switch account.Role {
		case model.RoleTeacher:
			courses, err := tx.Courses().CountByTeacher(ctx, account.ID)
			if err != nil {
				return fmt.Errorf("count courses: %w", err)
			}
			if courses > 0 {
				return apperrors.Conflict("Cannot delete teacher with assigned courses. Please reassign or delete the courses first.")
			}
			if err := tx.Teachers().DeleteByAccountID(ctx, account.ID); err != nil {
				return fmt.Errorf("delete teacher profile: %w", err)
			}
		case model.RoleStudent:
			if err := tx.Students().DeleteByAccountID(ctx, account.ID); err != nil {
				return fmt.Errorf("delete student profile: %w", err)
			}
		}

		if err := tx.Accounts().Delete(ctx, account.ID); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, accountID)
	return nil
}

// checkUnique re-checks every unique attribute f changes against all other
// records. The unique indexes remain the final arbiter for racing writers.
func checkUnique(ctx context.Context, tx repository.Store, f *Fields, self uuid.UUID, currentEmail string) error {
	if f.Email != nil {
		email := model.NormalizeEmail(*f.Email)
		if email != currentEmail {
			taken, err := tx.Accounts().EmailTaken(ctx, email, self)
			if err != nil {
				return fmt.Errorf("check email: %w", err)
			}
			if taken {
				return apperrors.DuplicateEmail()
			}
		}
	}
	if f.EmployeeID != nil {
		taken, err := tx.Teachers().EmployeeIDTaken(ctx, strings.TrimSpace(*f.EmployeeID), self)
		if err != nil {
			return fmt.Errorf("check employee id: %w", err)
		}
		if taken {
			return apperrors.Conflict("Employee ID already exists")
		}
	}
	if f.RollNumber != nil {
		if roll := rollNumber(*f.RollNumber); roll != nil {
			taken, err := tx.Students().RollNumberTaken(ctx, *roll, self)
			if err != nil {
				return fmt.Errorf("check roll number: %w", err)
			}
			if taken {
				return apperrors.Conflict("Roll number already exists")
			}
		}
	}
	return nil
}

// invalidate drops cached projections after a write. uuid.Nil touches only
// the aggregates.
func (s *identityService) invalidate(ctx context.Context, accountID uuid.UUID) {
	keys := []string{adminStatsKey, teacherStatsKey}
	if accountID != uuid.Nil {
		keys = append(keys, accountKey(accountID))
	}
	_ = s.cache.Delete(ctx, keys...)
}
