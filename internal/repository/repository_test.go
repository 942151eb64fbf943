package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantField string
		duplicate bool
	}{
		{
			name:      "email index",
			err:       &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ann@x.com' for key 'accounts.idx_accounts_email'"},
			wantField: "email",
			duplicate: true,
		},
		{
			name:      "employee id index",
			err:       fmt.Errorf("exec: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'T1' for key 'teacher_profiles.idx_teacher_profiles_employee_id'"}),
			wantField: "employeeId",
			duplicate: true,
		},
		{
			name:      "roll number index",
			err:       &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'R7' for key 'idx_student_profiles_roll_number'"},
			wantField: "rollNumber",
			duplicate: true,
		},
		{
			name:      "gorm translated",
			err:       gorm.ErrDuplicatedKey,
			duplicate: true,
		},
		{
			name: "other mysql error",
			err:  &mysql.MySQLError{Number: 1213, Message: "Deadlock found"},
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)

			var dup *DuplicateKeyError
			if !tt.duplicate {
				assert.False(t, errors.As(got, &dup))
				assert.Equal(t, tt.err, got)
				return
			}
			assert.True(t, errors.As(got, &dup))
			assert.Equal(t, tt.wantField, dup.Field)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.NoError(t, translateError(nil))
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Number: 1, Limit: 10}, Page{}.Normalize())
	assert.Equal(t, Page{Number: 3, Limit: 100}, Page{Number: 3, Limit: 1000}.Normalize())
	assert.Equal(t, 20, Page{Number: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, Page{Number: -2, Limit: 5}.Offset())
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%ann%", likePattern("  Ann "))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("find: %w", gorm.ErrRecordNotFound)))
	assert.False(t, IsNotFound(errors.New("other")))
}
