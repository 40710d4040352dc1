package form

import (
	"testing"

	"github.com/evpower/recruit-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func validInput() model.ApplicationFormInput {
	return model.ApplicationFormInput{
		FirstName:  "Asha",
		LastName:   "Patil",
		Address:    "12 MG Road, Pune",
		Mobile:     "9876543210",
		Email:      "asha@example.com",
		Graduation: "B.Tech",
		CGPA:       "8.4",
		Position:   "Software Engineer",
		Resume:     &model.ResumeFile{Filename: "cv.pdf"},
	}
}

func TestValidateField_CGPA(t *testing.T) {
	cases := []struct {
		value string
		want  string
	}{
		{"10", ""},
		{"0", ""},
		{"7.25", ""},
		{"10.01", "CGPA must be between 0 and 10"},
		{"-1", "CGPA must be between 0 and 10"},
		{"abc", "CGPA must be between 0 and 10"},
		{"", "CGPA is required"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidateField(FieldCGPA, tc.value), "cgpa %q", tc.value)
	}
}

func TestValidateField_Mobile(t *testing.T) {
	assert.Empty(t, ValidateField(FieldMobile, "9876543210"))
	assert.Empty(t, ValidateField(FieldMobile, " 6000000000 "))
	assert.Equal(t, "Enter a valid 10-digit mobile number", ValidateField(FieldMobile, "5876543210"))
	assert.Equal(t, "Enter a valid 10-digit mobile number", ValidateField(FieldMobile, "98765432"))
	assert.Equal(t, "Enter a valid 10-digit mobile number", ValidateField(FieldMobile, "98765432101"))
	assert.Equal(t, "Mobile number is required", ValidateField(FieldMobile, "   "))
}

func TestValidateField_Email(t *testing.T) {
	assert.Empty(t, ValidateField(FieldEmail, "a@b.co"))
	assert.Equal(t, "Enter a valid email address", ValidateField(FieldEmail, "a@b"))
	assert.Equal(t, "Enter a valid email address", ValidateField(FieldEmail, "a b@c.com"))
	assert.Equal(t, "Enter a valid email address", ValidateField(FieldEmail, "a@@b.com"))
	assert.Equal(t, "Email is required", ValidateField(FieldEmail, ""))

	for _, space := range []string{"\u00a0", "\u2003", "\u3000", "\u2028", "\ufeff", "\v"} {
		assert.Equal(t, "Enter a valid email address", ValidateField(FieldEmail, "a"+space+"b@x.io"), "%q", space)
	}
	assert.Empty(t, ValidateField(FieldEmail, "ação@exemplo.com.br"))
}

func TestValidateField_TextLengths(t *testing.T) {
	assert.Equal(t, "Must be at least 2 characters", ValidateField(FieldFirstName, " A "))
	assert.Equal(t, "This field is required", ValidateField(FieldLastName, ""))
	assert.Equal(t, "Address must be at least 10 characters", ValidateField(FieldAddress, "short st"))
	assert.Empty(t, ValidateField(FieldAddress, "1234567890"))
	assert.Equal(t, "Graduation field is required", ValidateField(FieldGraduation, " "))
	assert.Equal(t, "Please select a position", ValidateField(FieldPosition, ""))
	assert.Empty(t, ValidateField("unknown", ""))
}

func TestValidateForm(t *testing.T) {
	ok, errs := ValidateForm(validInput())
	assert.True(t, ok)
	assert.True(t, NoStoredErrors(errs))
	assert.Len(t, errs, len(Fields))

	in := validInput()
	in.Resume = nil
	in.Mobile = "123"
	ok, errs = ValidateForm(in)
	assert.False(t, ok)
	assert.Equal(t, "Resume is required", errs[FieldResume])
	assert.Equal(t, "Enter a valid 10-digit mobile number", errs[FieldMobile])
	assert.Empty(t, errs[FieldEmail])
}

func TestSubmitEnabled_RequiresBothPredicates(t *testing.T) {
	in := validInput()
	assert.True(t, RawValuesValid(in))
	assert.True(t, SubmitEnabled(in, EmptyErrors()))

	// Raw values are fine but a stale stored error remains for one field.
	stale := EmptyErrors()
	stale[FieldEmail] = "Enter a valid email address"
	assert.True(t, RawValuesValid(in))
	assert.False(t, NoStoredErrors(stale))
	assert.False(t, SubmitEnabled(in, stale))

	// No stored errors, but the raw values are incomplete.
	in.Position = ""
	assert.False(t, SubmitEnabled(in, EmptyErrors()))
}

func TestSetAndValue(t *testing.T) {
	var in model.ApplicationFormInput
	for _, f := range Fields {
		if f == FieldResume {
			assert.False(t, Set(&in, f, "x"))
			continue
		}
		assert.True(t, Set(&in, f, f+"-v"))
		assert.Equal(t, f+"-v", Value(in, f))
	}
}
