package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub/internal/model"
	"schoolhub/internal/repository"
)

// memStore is an in-memory repository.Store. Transactions snapshot the maps
// and restore them when fn fails.
type memStore struct {
	accounts map[uuid.UUID]model.Account
	students map[uuid.UUID]model.StudentProfile
	teachers map[uuid.UUID]model.TeacherProfile
	courses  []model.Course
	clock    time.Time

	failTeacherCreate error
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[uuid.UUID]model.Account{},
		students: map[uuid.UUID]model.StudentProfile{},
		teachers: map[uuid.UUID]model.TeacherProfile{},
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) Accounts() repository.AccountRepository { return memAccounts{s} }
func (s *memStore) Students() repository.StudentRepository { return memStudents{s} }
func (s *memStore) Teachers() repository.TeacherRepository { return memTeachers{s} }
func (s *memStore) Courses() repository.CourseRepository   { return memCourses{s} }

func (s *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	accounts, students, teachers := cloneMap(s.accounts), cloneMap(s.students), cloneMap(s.teachers)
	if err := fn(ctx, s); err != nil {
		s.accounts, s.students, s.teachers = accounts, students, teachers
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) addCourse(teacherID uuid.UUID) {
	s.courses = append(s.courses, model.Course{ID: uuid.New(), Code: "C" + uuid.NewString()[:4], Name: "Course", TeacherID: teacherID})
}

func paginate[T any](items []T, page repository.Page) []T {
	page = page.Normalize()
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

type memAccounts struct{ s *memStore }

func (r memAccounts) emailHolder(email string) (uuid.UUID, bool) {
	for id, a := range r.s.accounts {
		if a.Email == model.NormalizeEmail(email) {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (r memAccounts) Create(_ context.Context, a *model.Account) error {
	a.Email = model.NormalizeEmail(a.Email)
	if _, taken := r.emailHolder(a.Email); taken {
		return &repository.DuplicateKeyError{Field: "email", Err: gorm.ErrDuplicatedKey}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = r.s.tick()
	a.UpdatedAt = a.CreatedAt
	r.s.accounts[a.ID] = *a
	return nil
}

func (r memAccounts) Update(_ context.Context, a *model.Account) error {
	a.Email = model.NormalizeEmail(a.Email)
	if holder, taken := r.emailHolder(a.Email); taken && holder != a.ID {
		return &repository.DuplicateKeyError{Field: "email", Err: gorm.ErrDuplicatedKey}
	}
	a.UpdatedAt = r.s.tick()
	r.s.accounts[a.ID] = *a
	return nil
}

func (r memAccounts) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.s.accounts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.accounts, id)
	return nil
}

func (r memAccounts) FindByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r memAccounts) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	id, ok := r.emailHolder(email)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

func (r memAccounts) EmailTaken(_ context.Context, email string, exclude uuid.UUID) (bool, error) {
	holder, taken := r.emailHolder(email)
	return taken && holder != exclude, nil
}

func (r memAccounts) sorted() []model.Account {
	out := make([]model.Account, 0, len(r.s.accounts))
	for _, a := range r.s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memAccounts) List(_ context.Context, f repository.AccountFilter) ([]model.Account, int64, error) {
	var matched []model.Account
	for _, a := range r.sorted() {
		if f.Role == nil || a.Role == *f.Role {
			matched = append(matched, a)
		}
	}
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (r memAccounts) Search(_ context.Context, q repository.AccountSearch) ([]model.Account, error) {
	var matched []model.Account
	for _, a := range r.sorted() {
		if q.Exclude != uuid.Nil && a.ID == q.Exclude {
			continue
		}
		roleOK := len(q.Roles) == 0
		for _, role := range q.Roles {
			roleOK = roleOK || a.Role == role
		}
		if !roleOK {
			continue
		}
		if contains(a.FirstName, q.Query) || contains(a.LastName, q.Query) ||
			contains(a.Email, q.Query) || contains(a.FullName(), q.Query) {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

type memStudents struct{ s *memStore }

func (r memStudents) Create(_ context.Context, p *model.StudentProfile) error {
	if _, exists := r.s.students[p.AccountID]; exists {
		return &repository.DuplicateKeyError{Field: "accountId", Err: gorm.ErrDuplicatedKey}
	}
	if p.RollNumber != nil {
		if taken, _ := r.RollNumberTaken(context.Background(), *p.RollNumber, uuid.Nil); taken {
			return &repository.DuplicateKeyError{Field: "rollNumber", Err: gorm.ErrDuplicatedKey}
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.s.tick()
	stored := *p
	stored.Account = nil
	r.s.students[p.AccountID] = stored
	return nil
}

func (r memStudents) Update(_ context.Context, p *model.StudentProfile) error {
	stored := *p
	stored.Account = nil
	r.s.students[p.AccountID] = stored
	return nil
}

func (r memStudents) DeleteByAccountID(_ context.Context, accountID uuid.UUID) error {
	delete(r.s.students, accountID)
	return nil
}

func (r memStudents) FindByAccountID(_ context.Context, accountID uuid.UUID) (*model.StudentProfile, error) {
	p, ok := r.s.students[accountID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if a, ok := r.s.accounts[accountID]; ok {
		p.Account = &a
	}
	return &p, nil
}

func (r memStudents) RollNumberTaken(_ context.Context, roll string, exclude uuid.UUID) (bool, error) {
	for id, p := range r.s.students {
		if p.RollNumber != nil && *p.RollNumber == roll && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r memStudents) List(ctx context.Context, f repository.StudentFilter) ([]model.StudentProfile, int64, error) {
	var matched []model.StudentProfile
	for id := range r.s.students {
		p, _ := r.FindByAccountID(ctx, id)
		if f.Class != "" && p.Class != f.Class {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Search != "" && !(contains(p.Account.FirstName, f.Search) || contains(p.Account.LastName, f.Search) || contains(p.Account.Email, f.Search)) {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (r memStudents) Count(context.Context) (int64, error) {
	return int64(len(r.s.students)), nil
}

type memTeachers struct{ s *memStore }

func (r memTeachers) Create(_ context.Context, p *model.TeacherProfile) error {
	if r.s.failTeacherCreate != nil {
		return r.s.failTeacherCreate
	}
	if _, exists := r.s.teachers[p.AccountID]; exists {
		return &repository.DuplicateKeyError{Field: "accountId", Err: gorm.ErrDuplicatedKey}
	}
	if taken, _ := r.EmployeeIDTaken(context.Background(), p.EmployeeID, uuid.Nil); taken {
		return &repository.DuplicateKeyError{Field: "employeeId", Err: gorm.ErrDuplicatedKey}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.s.tick()
	stored := *p
	stored.Account = nil
	r.s.teachers[p.AccountID] = stored
	return nil
}

func (r memTeachers) Update(_ context.Context, p *model.TeacherProfile) error {
	stored := *p
	stored.Account = nil
	r.s.teachers[p.AccountID] = stored
	return nil
}

func (r memTeachers) DeleteByAccountID(_ context.Context, accountID uuid.UUID) error {
	delete(r.s.teachers, accountID)
	return nil
}

func (r memTeachers) FindByAccountID(_ context.Context, accountID uuid.UUID) (*model.TeacherProfile, error) {
	p, ok := r.s.teachers[accountID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if a, ok := r.s.accounts[accountID]; ok {
		p.Account = &a
	}
	return &p, nil
}

func (r memTeachers) EmployeeIDTaken(_ context.Context, employeeID string, exclude uuid.UUID) (bool, error) {
	for id, p := range r.s.teachers {
		if p.EmployeeID == employeeID && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r memTeachers) List(ctx context.Context, f repository.TeacherFilter) ([]model.TeacherProfile, int64, error) {
	var matched []model.TeacherProfile
	for id := range r.s.teachers {
		p, _ := r.FindByAccountID(ctx, id)
		if f.Specialization != "" && !contains(p.Specialization, f.Specialization) {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Search != "" && !(contains(p.Account.FirstName, f.Search) || contains(p.Account.LastName, f.Search) ||
			contains(p.Account.Email, f.Search) || contains(p.EmployeeID, f.Search)) {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (r memTeachers) Count(context.Context) (int64, error) {
	return int64(len(r.s.teachers)), nil
}

func (r memTeachers) CountByStatus(_ context.Context, status model.TeacherStatus) (int64, error) {
	var n int64
	for _, p := range r.s.teachers {
		if p.Status == status {
			n++
		}
	}
	return n, nil
}

func (r memTeachers) CountBySpecialization(context.Context) ([]repository.SpecializationCount, error) {
	counts := map[string]int64{}
	for _, p := range r.s.teachers {
		counts[p.Specialization]++
	}
	out := make([]repository.SpecializationCount, 0, len(counts))
	for spec, n := range counts {
		out = append(out, repository.SpecializationCount{Specialization: spec, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Specialization < out[j].Specialization
	})
	return out, nil
}

type memCourses struct{ s *memStore }

func (r memCourses) CountByTeacher(_ context.Context, teacherID uuid.UUID) (int64, error) {
	var n int64
	for _, c := range r.s.courses {
		if c.TeacherID == teacherID {
			n++
		}
	}
	return n, nil
}

func (r memCourses) Count(context.Context) (int64, error) {
	return int64(len(r.s.courses)), nil
}

// memCache is a Cache backed by a map of JSON payloads.
type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, out any) bool {
	data, ok := c.entries[key]
	return ok && json.Unmarshal(data, out) == nil
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) {
	data, err := json.Marshal(value)
	if err == nil {
		c.entries[key] = data
	}
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}
