package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "schoolhub/internal/errors"
	"schoolhub/internal/model"
)

var validate = validator.New()

// Date accepts either a calendar date ("2006-01-02") or an RFC 3339 timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// Fields is the flat input of register, create and update. A nil field was
// not supplied. Account-owned fields and profile-owned fields share the
// struct; the orchestrator routes each to its store.
type Fields struct {
	// Account
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Role      *string `json:"role"`

	// Shared by both profile variants
	DateOfBirth   *Date          `json:"dateOfBirth"`
	Gender        *model.Gender  `json:"gender"`
	ContactNumber *string        `json:"contactNumber"`
	Address       *model.Address `json:"address"`
	Status        *string        `json:"status"`

	// Student
	Class         *string `json:"class"`
	Section       *string `json:"section"`
	RollNumber    *string `json:"rollNumber"`
	ParentName    *string `json:"parentName"`
	ParentContact *string `json:"parentContact"`
	AdmissionDate *Date   `json:"admissionDate"`

	// Teacher
	EmployeeID       *string `json:"employeeId"`
	Qualification    *string `json:"qualification"`
	Specialization   *string `json:"specialization"`
	Experience       *int    `json:"experience"`
	EmergencyContact *string `json:"emergencyContact"`
	JoiningDate      *Date   `json:"joiningDate"`
	Bio              *string `json:"bio"`
}

func (f *Fields) touchesAccount() bool {
	return f.FirstName != nil || f.LastName != nil || f.Email != nil
}

func (f *Fields) sharedProfileFields() []string {
	var set []string
	if f.DateOfBirth != nil {
		set = append(set, "dateOfBirth")
	}
	if f.Gender != nil {
		set = append(set, "gender")
	}
	if f.ContactNumber != nil {
		set = append(set, "contactNumber")
	}
	if f.Address != nil {
		set = append(set, "address")
	}
	if f.Status != nil {
		set = append(set, "status")
	}
	return set
}

func (f *Fields) studentFields() []string {
	var set []string
	if f.Class != nil {
		set = append(set, "class")
	}
	if f.Section != nil {
		set = append(set, "section")
	}
	if f.RollNumber != nil {
		set = append(set, "rollNumber")
	}
	if f.ParentName != nil {
		set = append(set, "parentName")
	}
	if f.ParentContact != nil {
		set = append(set, "parentContact")
	}
	if f.AdmissionDate != nil {
		set = append(set, "admissionDate")
	}
	return set
}

func (f *Fields) teacherFields() []string {
	var set []string
	if f.EmployeeID != nil {
		set = append(set, "employeeId")
	}
	if f.Qualification != nil {
		set = append(set, "qualification")
	}
	if f.Specialization != nil {
		set = append(set, "specialization")
	}
	if f.Experience != nil {
		set = append(set, "experience")
	}
	if f.EmergencyContact != nil {
		set = append(set, "emergencyContact")
	}
	if f.JoiningDate != nil {
		set = append(set, "joiningDate")
	}
	if f.Bio != nil {
		set = append(set, "bio")
	}
	return set
}

// adminOnlyFields lists the supplied profile fields that record enrolment or
// employment facts rather than personal details.
func (f *Fields) adminOnlyFields() []string {
	var set []string
	if f.Status != nil {
		set = append(set, "status")
	}
	if f.Class != nil {
		set = append(set, "class")
	}
	if f.Section != nil {
		set = append(set, "section")
	}
	if f.RollNumber != nil {
		set = append(set, "rollNumber")
	}
	if f.AdmissionDate != nil {
		set = append(set, "admissionDate")
	}
	if f.EmployeeID != nil {
		set = append(set, "employeeId")
	}
	if f.Qualification != nil {
		set = append(set, "qualification")
	}
	if f.Specialization != nil {
		set = append(set, "specialization")
	}
	if f.Experience != nil {
		set = append(set, "experience")
	}
	if f.JoiningDate != nil {
		set = append(set, "joiningDate")
	}
	return set
}

// RestrictToSelfService rejects fields that only an administrator may set.
// Account owners can change their name, email and personal profile details.
func (f *Fields) RestrictToSelfService() error {
	if restricted := f.adminOnlyFields(); len(restricted) > 0 {
		return apperrors.Forbidden("Field %s can only be changed by an administrator", restricted[0])
	}
	return nil
}

// omitBlankDefaults treats empty values of defaulted create fields as not
// supplied, so the defaults apply.
func (f *Fields) omitBlankDefaults() {
	for _, s := range []**string{&f.Role, &f.Class, &f.EmployeeID, &f.Qualification, &f.Specialization, &f.ContactNumber} {
		if *s != nil && strings.TrimSpace(**s) == "" {
			*s = nil
		}
	}
}

func (f *Fields) touchesProfile() bool {
	return len(f.sharedProfileFields())+len(f.studentFields())+len(f.teacherFields()) > 0
}

// checkVariant rejects profile fields that do not belong to role.
func (f *Fields) checkVariant(role model.Role) error {
	var foreign []string
	switch role {
	case model.RoleStudent:
		foreign = f.teacherFields()
	case model.RoleTeacher:
		foreign = f.studentFields()
	case model.RoleAdmin:
		foreign = append(append(f.sharedProfileFields(), f.studentFields()...), f.teacherFields()...)
	}
	if len(foreign) > 0 {
		return apperrors.Validation("Field %s does not apply to %s accounts", foreign[0], role)
	}
	return nil
}

// validateCreate checks a complete new account of the given role.
func (f *Fields) validateCreate(role model.Role, passwordRequired bool) error {
	if f.FirstName == nil || strings.TrimSpace(*f.FirstName) == "" {
		return apperrors.Validation("Please provide first name")
	}
	if f.LastName == nil || strings.TrimSpace(*f.LastName) == "" {
		return apperrors.Validation("Please provide last name")
	}
	if f.Email == nil || strings.TrimSpace(*f.Email) == "" {
		return apperrors.Validation("Please provide an email")
	}
	if passwordRequired && f.Password == nil {
		return apperrors.Validation("Please provide a password")
	}
	if f.Password != nil {
		if err := checkPassword(*f.Password); err != nil {
			return err
		}
	}
	return f.validateCommon(role)
}

// validateUpdate checks a partial update of an existing account of the given role.
func (f *Fields) validateUpdate(role model.Role) error {
	if f.Role != nil {
		return apperrors.Validation("Role cannot be changed")
	}
	if f.Password != nil {
		return apperrors.Validation("Password cannot be updated through this endpoint")
	}
	if !f.touchesAccount() && !f.touchesProfile() {
		return apperrors.Validation("No fields to update")
	}
	return f.validateCommon(role)
}

func (f *Fields) validateCommon(role model.Role) error {
	if err := f.checkVariant(role); err != nil {
		return err
	}
	if f.FirstName != nil {
		if err := checkName("First name", *f.FirstName); err != nil {
			return err
		}
	}
	if f.LastName != nil {
		if err := checkName("Last name", *f.LastName); err != nil {
			return err
		}
	}
	if f.Email != nil {
		if err := checkEmail(*f.Email); err != nil {
			return err
		}
	}
	if f.Gender != nil && !f.Gender.Valid() {
		return apperrors.Validation("Gender must be one of male, female, other")
	}
	if f.Status != nil {
		switch role {
		case model.RoleStudent:
			if !model.StudentStatus(*f.Status).Valid() {
				return apperrors.Validation("Status must be one of active, inactive, graduated, suspended")
			}
		case model.RoleTeacher:
			if !model.TeacherStatus(*f.Status).Valid() {
				return apperrors.Validation("Status must be one of active, inactive, on-leave, resigned")
			}
		}
	}
	if f.RollNumber != nil && *f.RollNumber != "" {
		if err := validate.Var(*f.RollNumber, "alphanum,max=50"); err != nil {
			return apperrors.Validation("Roll number must be alphanumeric")
		}
	}
	if f.EmployeeID != nil && strings.TrimSpace(*f.EmployeeID) == "" {
		return apperrors.Validation("Employee ID cannot be empty")
	}
	if f.Experience != nil && *f.Experience < 0 {
		return apperrors.Validation("Experience cannot be negative")
	}
	if f.Class != nil && strings.TrimSpace(*f.Class) == "" {
		return apperrors.Validation("Class cannot be empty")
	}
	return nil
}

func checkName(label, name string) error {
	if err := validate.Var(strings.TrimSpace(name), "min=2,max=50"); err != nil {
		return apperrors.Validation("%s must be between 2 and 50 characters", label)
	}
	return nil
}

func checkEmail(email string) error {
	email = model.NormalizeEmail(email)
	if err := validate.Var(email, "max=100"); err != nil {
		return apperrors.Validation("Email cannot be more than 100 characters")
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return apperrors.Validation("Please provide a valid email")
	}
	return nil
}

func checkPassword(password string) error {
	if err := validate.Var(password, "min=6"); err != nil {
		return apperrors.Validation("Password must be at least 6 characters long")
	}
	return nil
}

func (f *Fields) applyAccount(a *model.Account) {
	if f.FirstName != nil {
		a.FirstName = strings.TrimSpace(*f.FirstName)
	}
	if f.LastName != nil {
		a.LastName = strings.TrimSpace(*f.LastName)
	}
	if f.Email != nil {
		a.Email = model.NormalizeEmail(*f.Email)
	}
}

func (f *Fields) applyStudent(p *model.StudentProfile) {
	if f.DateOfBirth != nil {
		p.DateOfBirth = f.DateOfBirth.ptr()
	}
	if f.Gender != nil {
		p.Gender = *f.Gender
	}
	if f.ContactNumber != nil {
		p.ContactNumber = *f.ContactNumber
	}
	if f.Address != nil {
		p.Address = *f.Address
	}
	if f.Status != nil {
		p.Status = model.StudentStatus(*f.Status)
	}
	if f.Class != nil {
		p.Class = strings.TrimSpace(*f.Class)
	}
	if f.Section != nil {
		p.Section = *f.Section
	}
	if f.RollNumber != nil {
		p.RollNumber = rollNumber(*f.RollNumber)
	}
	if f.ParentName != nil {
		p.ParentName = *f.ParentName
	}
	if f.ParentContact != nil {
		p.ParentContact = *f.ParentContact
	}
	if f.AdmissionDate != nil && !f.AdmissionDate.IsZero() {
		p.AdmissionDate = f.AdmissionDate.Time
	}
}

func (f *Fields) applyTeacher(p *model.TeacherProfile) {
	if f.DateOfBirth != nil {
		p.DateOfBirth = f.DateOfBirth.ptr()
	}
	if f.Gender != nil {
		p.Gender = *f.Gender
	}
	if f.ContactNumber != nil {
		p.ContactNumber = *f.ContactNumber
	}
	if f.Address != nil {
		p.Address = *f.Address
	}
	if f.Status != nil {
		p.Status = model.TeacherStatus(*f.Status)
	}
	if f.EmployeeID != nil {
		p.EmployeeID = strings.TrimSpace(*f.EmployeeID)
	}
	if f.Qualification != nil {
		p.Qualification = *f.Qualification
	}
	if f.Specialization != nil {
		p.Specialization = *f.Specialization
	}
	if f.Experience != nil {
		p.Experience = *f.Experience
	}
	if f.EmergencyContact != nil {
		p.EmergencyContact = *f.EmergencyContact
	}
	if f.JoiningDate != nil && !f.JoiningDate.IsZero() {
		p.JoiningDate = f.JoiningDate.Time
	}
	if f.Bio != nil {
		p.Bio = *f.Bio
	}
}

// rollNumber maps an empty roll number to NULL so it never collides.
func rollNumber(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

const (
	defaultClass         = "Not Assigned"
	defaultNotSpecified  = "Not Specified"
	defaultContactNumber = "Not Provided"
)

func newStudentProfile(accountID uuid.UUID, f *Fields, now time.Time) *model.StudentProfile {
	p := &model.StudentProfile{
		AccountID:     accountID,
		Class:         defaultClass,
		AdmissionDate: now,
		Status:        model.StudentActive,
	}
	f.applyStudent(p)
	return p
}

func newTeacherProfile(accountID uuid.UUID, f *Fields, now time.Time) *model.TeacherProfile {
	p := &model.TeacherProfile{
		AccountID:      accountID,
		EmployeeID:     generateEmployeeID(),
		Qualification:  defaultNotSpecified,
		Specialization: defaultNotSpecified,
		ContactNumber:  defaultContactNumber,
		JoiningDate:    now,
		Status:         model.TeacherActive,
	}
	f.applyTeacher(p)
	return p
}

func generateEmployeeID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TCH-" + strings.ToUpper(id[:8])
}
