package model

import "time"

// DefaultPositions are the open roles offered by the application form.
var DefaultPositions = []string{
	"Electric Engineer",
	"Software Engineer",
	"EV Designer Engineer",
	"Data Analyst",
}

// JobPosition represents an open role.
type JobPosition struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateJobPositionRequest is the payload for creating a job position.
type CreateJobPositionRequest struct {
	Title       string  `json:"title" binding:"required,nonblank,min=2,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}
