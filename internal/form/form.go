// Package form implements the field rules of the job-application form.
//
// Every function here is pure. Validation failures are reported as
// human-readable messages keyed by field name and never as Go errors.
package form

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/evpower/recruit-backend/internal/model"
)

// Field names, in the order the form presents them.
const (
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldAddress    = "address"
	FieldMobile     = "mobile"
	FieldEmail      = "email"
	FieldGraduation = "graduation"
	FieldCGPA       = "cgpa"
	FieldPosition   = "position"
	FieldResume     = "resume"
)

// Fields lists every field of the application form.
var Fields = []string{
	FieldFirstName,
	FieldLastName,
	FieldAddress,
	FieldMobile,
	FieldEmail,
	FieldGraduation,
	FieldCGPA,
	FieldPosition,
	FieldResume,
}

var (
	mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	// notSpaceOrAt excludes every character a browser counts as whitespace,
	// not only the ASCII set matched by \s.
	notSpaceOrAt = `[^\s\x0B\p{Z}\x{FEFF}@]`
	emailPattern = regexp.MustCompile(`^` + notSpaceOrAt + `+@` + notSpaceOrAt + `+\.` + notSpaceOrAt + `+$`)
)

// Errors maps a field name to its stored error message ("" means valid).
type Errors map[string]string

// EmptyErrors returns an error map with every field present and clear.
func EmptyErrors() Errors {
	errs := make(Errors, len(Fields))
	for _, f := range Fields {
		errs[f] = ""
	}
	return errs
}

// ValidateField checks one text field and returns its error message, or ""
// when the value is acceptable. The resume is a file and is checked with
// ValidateResume; passing FieldResume here checks for a non-empty file name.
func ValidateField(name, value string) string {
	trimmed := strings.TrimSpace(value)

	switch name {
	case FieldFirstName, FieldLastName:
		if trimmed == "" {
			return "This field is required"
		}
		if len([]rune(trimmed)) < 2 {
			return "Must be at least 2 characters"
		}
	case FieldAddress:
		if trimmed == "" {
			return "Address is required"
		}
		if len([]rune(trimmed)) < 10 {
			return "Address must be at least 10 characters"
		}
	case FieldMobile:
		if trimmed == "" {
			return "Mobile number is required"
		}
		if !mobilePattern.MatchString(trimmed) {
			return "Enter a valid 10-digit mobile number"
		}
	case FieldEmail:
		if trimmed == "" {
			return "Email is required"
		}
		if !emailPattern.MatchString(trimmed) {
			return "Enter a valid email address"
		}
	case FieldGraduation:
		if trimmed == "" {
			return "Graduation field is required"
		}
		if len([]rune(trimmed)) < 2 {
			return "Must be at least 2 characters"
		}
	case FieldCGPA:
		if value == "" {
			return "CGPA is required"
		}
		if _, ok := parseCGPA(value); !ok {
			return "CGPA must be between 0 and 10"
		}
	case FieldPosition:
		if value == "" {
			return "Please select a position"
		}
	case FieldResume:
		if value == "" {
			return "Resume is required"
		}
	}
	return ""
}

// ValidateResume checks that a resume file was attached.
func ValidateResume(file *model.ResumeFile) string {
	if file == nil {
		return "Resume is required"
	}
	return ""
}

// ValidateInput runs the rule for one field of in.
func ValidateInput(in model.ApplicationFormInput, name string) string {
	if name == FieldResume {
		return ValidateResume(in.Resume)
	}
	return ValidateField(name, Value(in, name))
}

// ValidateForm re-runs every field rule and aggregates the messages.
func ValidateForm(in model.ApplicationFormInput) (bool, Errors) {
	errs := make(Errors, len(Fields))
	valid := true
	for _, f := range Fields {
		msg := ValidateInput(in, f)
		errs[f] = msg
		if msg != "" {
			valid = false
		}
	}
	return valid, errs
}

// RawValuesValid derives validity straight from the raw field values,
// independently of any stored errors.
func RawValuesValid(in model.ApplicationFormInput) bool {
	cgpaOK := false
	if in.CGPA != "" {
		_, cgpaOK = parseCGPA(in.CGPA)
	}
	return len([]rune(strings.TrimSpace(in.FirstName))) >= 2 &&
		len([]rune(strings.TrimSpace(in.LastName))) >= 2 &&
		len([]rune(strings.TrimSpace(in.Address))) >= 10 &&
		mobilePattern.MatchString(strings.TrimSpace(in.Mobile)) &&
		emailPattern.MatchString(strings.TrimSpace(in.Email)) &&
		len([]rune(strings.TrimSpace(in.Graduation))) >= 2 &&
		cgpaOK &&
		in.Position != "" &&
		in.Resume != nil
}

// NoStoredErrors reports whether every stored error message is empty.
func NoStoredErrors(errs Errors) bool {
	for _, msg := range errs {
		if msg != "" {
			return false
		}
	}
	return true
}

// SubmitEnabled gates the submit control: both predicates must hold.
func SubmitEnabled(in model.ApplicationFormInput, errs Errors) bool {
	return RawValuesValid(in) && NoStoredErrors(errs)
}

// ParseCGPA converts a validated CGPA string to its numeric value.
func ParseCGPA(value string) (float64, bool) {
	return parseCGPA(value)
}

// Value returns the raw text of a field.
func Value(in model.ApplicationFormInput, name string) string {
	switch name {
	case FieldFirstName:
		return in.FirstName
	case FieldLastName:
		return in.LastName
	case FieldAddress:
		return in.Address
	case FieldMobile:
		return in.Mobile
	case FieldEmail:
		return in.Email
	case FieldGraduation:
		return in.Graduation
	case FieldCGPA:
		return in.CGPA
	case FieldPosition:
		return in.Position
	case FieldResume:
		if in.Resume != nil {
			return in.Resume.Filename
		}
	}
	return ""
}

// Set writes a text field and reports whether the name was recognised.
func Set(in *model.ApplicationFormInput, name, value string) bool {
	switch name {
	case FieldFirstName:
		in.FirstName = value
	case FieldLastName:
		in.LastName = value
	case FieldAddress:
		in.Address = value
	case FieldMobile:
		in.Mobile = value
	case FieldEmail:
		in.Email = value
	case FieldGraduation:
		in.Graduation = value
	case FieldCGPA:
		in.CGPA = value
	case FieldPosition:
		in.Position = value
	default:
		return false
	}
	return true
}

// parseCGPA accepts the leading numeric prefix of value, like a browser
// number parse, and checks the [0,10] range.
func parseCGPA(value string) (float64, bool) {
	s := strings.TrimSpace(value)
	end := numericPrefix(s)
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	if v < 0 || v > 10 {
		return v, false
	}
	return v, true
}

// numericPrefix returns the length of the longest prefix of s that forms a
// decimal number (optional sign, digits, optional fraction, optional exponent).
func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return i
}
