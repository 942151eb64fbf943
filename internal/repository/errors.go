package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// DuplicateKeyError is returned when a write loses against a unique index.
type DuplicateKeyError struct {
	// Field names the violated unique attribute (email, employeeId,
	// rollNumber, accountId) or is empty when it cannot be determined.
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("duplicate key: %v", e.Err)
	}
	return fmt.Sprintf("duplicate %s: %v", e.Field, e.Err)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

var uniqueIndexFields = map[string]string{
	"idx_accounts_email":               "email",
	"idx_student_profiles_roll_number": "rollNumber",
	"idx_teacher_profiles_employee_id": "employeeId",
	"idx_student_profiles_account_id":  "accountId",
	"idx_teacher_profiles_account_id":  "accountId",
}

// translateError converts a unique-constraint violation into a
// *DuplicateKeyError and passes every other error through.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return &DuplicateKeyError{Field: fieldForMessage(myErr.Message), Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateKeyError{Err: err}
	}
	return err
}

func fieldForMessage(msg string) string {
	for index, field := range uniqueIndexFields {
		if strings.Contains(msg, index) {
			return field
		}
	}
	return ""
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
