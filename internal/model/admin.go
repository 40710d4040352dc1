package model

import "time"

// StaffUser represents an admin or HR account.
type StaffUser struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// StaffLoginRequest is the credential-exchange payload.
type StaffLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=3,max=128"`
	Role     Role   `json:"role" binding:"required,oneof=admin hr"`
}

// StaffLoginResponse is returned after a successful credential exchange.
type StaffLoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        Role   `json:"role"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
}

// AptitudeUser is the candidate login issued when an application is accepted.
type AptitudeUser struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CandidateLoginRequest is the payload for candidate authentication.
type CandidateLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// CandidateLoginResponse is returned after successful candidate login.
type CandidateLoginResponse struct {
	Success   bool   `json:"success"`
	AuthToken string `json:"authToken"`
}
