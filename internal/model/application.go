package model

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// ResumeFile is the binary attachment of an application.
// Data is held in memory so a failed submission can be retried.
type ResumeFile struct {
	Filename    string
	ContentType string
	Data        []byte `json:"-"`
}

// NewResumeFile reads r fully into a ResumeFile.
func NewResumeFile(filename, contentType string, r io.Reader) (*ResumeFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &ResumeFile{Filename: filename, ContentType: contentType, Data: data}, nil
}

// Size returns the attachment length in bytes.
func (f *ResumeFile) Size() int64 { return int64(len(f.Data)) }

// Reader returns a fresh reader over the attachment.
func (f *ResumeFile) Reader() io.Reader { return bytes.NewReader(f.Data) }

// Ext returns the lower-cased file extension including the dot.
func (f *ResumeFile) Ext() string { return strings.ToLower(filepath.Ext(f.Filename)) }

// ApplicationFormInput is the candidate-entered intake data as typed.
// CGPA stays a raw string until submission so that the form can report
// parse errors the same way as the other fields.
type ApplicationFormInput struct {
	FirstName  string      `json:"firstName" form:"firstName"`
	LastName   string      `json:"lastName" form:"lastName"`
	Address    string      `json:"address" form:"address"`
	Mobile     string      `json:"mobile" form:"mobile"`
	Email      string      `json:"email" form:"email"`
	Graduation string      `json:"graduation" form:"graduation"`
	CGPA       string      `json:"cgpa" form:"cgpa"`
	Position   string      `json:"position" form:"position"`
	Resume     *ResumeFile `json:"-" form:"-"`
}

// Application is a stored job application.
type Application struct {
	ID         int       `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Address    string    `json:"address"`
	Mobile     string    `json:"mobile"`
	Email      string    `json:"email"`
	Graduation string    `json:"graduation"`
	CGPA       float64   `json:"cgpa"`
	Position   string    `json:"position"`
	ResumePath string    `json:"resumePath"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ApplicationAck is the acknowledgement returned by the intake endpoint.
type ApplicationAck struct {
	Message          string           `json:"message"`
	SavedApplication SavedApplication `json:"savedApplication"`
}

// SavedApplication summarises the stored application.
type SavedApplication struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Position  string `json:"position"`
}

// ListApplicationsQuery is the paging query of the staff application list.
type ListApplicationsQuery struct {
	Page    int `json:"page" form:"page" binding:"omitempty,min=1"`
	PerPage int `json:"per_page" form:"per_page" binding:"omitempty,min=1,max=200"`
}
