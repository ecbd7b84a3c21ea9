package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	ID    string `csv:"student_id" validate:"required"`
	Email string `csv:"teacher_email" validate:"required"`
	Skip  string `csv:"-"`
}

func TestStruct(t *testing.T) {
	assert.Nil(t, Struct(sample{ID: "S1", Email: "t@x.edu"}))

	fields := Struct(sample{})
	assert.Equal(t, map[string]string{
		"student_id":    "student_id is a required field",
		"teacher_email": "teacher_email is a required field",
	}, fields)
	assert.Equal(t, "student_id is a required field; teacher_email is a required field", Join(fields))
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("teacher@school.edu"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("not an address"))
}
