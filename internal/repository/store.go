package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Store groups the account and profile repositories so multi-record writes
// can share one transaction.
type Store interface {
	Accounts() AccountRepository
	Students() StudentRepository
	Teachers() TeacherRepository
	Courses() CourseRepository
	// WithTransaction runs fn against a Store bound to a single transaction.
	// The transaction commits only if fn returns nil.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Accounts() AccountRepository { return NewAccountRepository(s.db) }
func (s *gormStore) Students() StudentRepository { return NewStudentRepository(s.db) }
func (s *gormStore) Teachers() TeacherRepository { return NewTeacherRepository(s.db) }
func (s *gormStore) Courses() CourseRepository   { return NewCourseRepository(s.db) }

// WithTransaction executes a function within a database transaction.
func (s *gormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormStore{db: tx})
	})
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Page selects a window of a listing, 1-based.
type Page struct {
	Number int
	Limit  int
}

// Normalize clamps the page into range.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Limit
}

// likePattern turns a user query into a case-insensitive substring pattern.
func likePattern(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
	return "%" + q + "%"
}
