package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	IssuedAt  time.Time `json:"issued_at"`
	User      UserInfo  `json:"user"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// RegisterTeacherRequest creates an account plus teacher profile in one step.
type RegisterTeacherRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	DepartmentID string `json:"department_id" validate:"omitempty,uuid"`
}

// RegisterStudentRequest creates an account plus student profile in one step.
type RegisterStudentRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	RollNo   string `json:"roll_no" validate:"required"`
	Year     int    `json:"year" validate:"required,min=1"`
	ClassID  string `json:"class_id" validate:"omitempty,uuid"`
}

// JWTClaims represents the JWT payload for access tokens. The role is a
// capability snapshot taken at issuance; a role change on the account is not
// visible until the token expires and the user re-authenticates.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
