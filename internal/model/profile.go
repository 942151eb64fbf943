package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the role-specific extension of an Account. It is either a
// *StudentProfile or a *TeacherProfile; admin accounts have none (nil).
type Profile interface {
	// ProfileRole is the account role this variant belongs to.
	ProfileRole() Role
	// OwnerID is the id of the owning Account.
	OwnerID() uuid.UUID

	isProfile()
}

// Gender of a student or teacher.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is a known gender value.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	default:
		return false
	}
}

// Address is stored inline on the owning profile.
type Address struct {
	Street  string `json:"street,omitempty" gorm:"size:255"`
	City    string `json:"city,omitempty" gorm:"size:100"`
	State   string `json:"state,omitempty" gorm:"size:100"`
	ZipCode string `json:"zipCode,omitempty" gorm:"size:20"`
	Country string `json:"country,omitempty" gorm:"size:100"`
}

// StudentStatus represents the enrolment state of a student.
type StudentStatus string

const (
	StudentActive    StudentStatus = "active"
	StudentInactive  StudentStatus = "inactive"
	StudentGraduated StudentStatus = "graduated"
	StudentSuspended StudentStatus = "suspended"
)

// Valid reports whether s is a known student status.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentActive, StudentInactive, StudentGraduated, StudentSuspended:
		return true
	default:
		return false
	}
}

// StudentProfile extends a student Account.
type StudentProfile struct {
	ID            uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	AccountID     uuid.UUID     `json:"accountId" gorm:"type:char(36);not null;uniqueIndex:idx_student_profiles_account_id"`
	Class         string        `json:"class" gorm:"size:100;not null;index"`
	Section       string        `json:"section,omitempty" gorm:"size:20"`
	RollNumber    *string       `json:"rollNumber,omitempty" gorm:"size:50;uniqueIndex:idx_student_profiles_roll_number"` // NULL when unset, so uniqueness stays sparse
	DateOfBirth   *time.Time    `json:"dateOfBirth,omitempty"`
	Gender        Gender        `json:"gender,omitempty" gorm:"size:10"`
	ContactNumber string        `json:"contactNumber" gorm:"size:30"`
	Address       Address       `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	ParentName    string        `json:"parentName" gorm:"size:100"`
	ParentContact string        `json:"parentContact" gorm:"size:30"`
	AdmissionDate time.Time     `json:"admissionDate"`
	Status        StudentStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`

	// Relations
	Account *Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *StudentProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *StudentProfile) ProfileRole() Role  { return RoleStudent }
func (p *StudentProfile) OwnerID() uuid.UUID { return p.AccountID }
func (p *StudentProfile) isProfile()         {}

// TeacherStatus represents the employment state of a teacher.
type TeacherStatus string

const (
	TeacherActive   TeacherStatus = "active"
	TeacherInactive TeacherStatus = "inactive"
	TeacherOnLeave  TeacherStatus = "on-leave"
	TeacherResigned TeacherStatus = "resigned"
)

// Valid reports whether s is a known teacher status.
func (s TeacherStatus) Valid() bool {
	switch s {
	case TeacherActive, TeacherInactive, TeacherOnLeave, TeacherResigned:
		return true
	default:
		return false
	}
}

// TeacherProfile extends a teacher Account.
type TeacherProfile struct {
	ID               uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	AccountID        uuid.UUID     `json:"accountId" gorm:"type:char(36);not null;uniqueIndex:idx_teacher_profiles_account_id"`
	EmployeeID       string        `json:"employeeId" gorm:"size:50;not null;uniqueIndex:idx_teacher_profiles_employee_id"`
	Qualification    string        `json:"qualification" gorm:"size:255;not null"`
	Specialization   string        `json:"specialization" gorm:"size:255;not null;index"`
	Experience       int           `json:"experience" gorm:"not null;default:0"`
	DateOfBirth      *time.Time    `json:"dateOfBirth,omitempty"`
	Gender           Gender        `json:"gender,omitempty" gorm:"size:10"`
	ContactNumber    string        `json:"contactNumber" gorm:"size:30;not null"`
	EmergencyContact string        `json:"emergencyContact,omitempty" gorm:"size:30"`
	Address          Address       `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	JoiningDate      time.Time     `json:"joiningDate"`
	Status           TeacherStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	Bio              string        `json:"bio,omitempty" gorm:"type:text"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`

	// Relations
	Account *Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *TeacherProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *TeacherProfile) ProfileRole() Role  { return RoleTeacher }
func (p *TeacherProfile) OwnerID() uuid.UUID { return p.AccountID }
func (p *TeacherProfile) isProfile()         {}
