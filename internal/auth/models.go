package auth

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of login roles.
type Role string

const (
	RoleUser    Role = "user"
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// Roles lists every valid Role.
var Roles = []Role{RoleUser, RoleStudent, RoleFaculty, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	FirstName    string             `bson:"firstName" json:"firstName"`
	LastName     string             `bson:"lastName" json:"lastName"`
	MobileNumber string             `bson:"mobileNumber,omitempty" json:"mobileNumber,omitempty"`
	Role         Role               `bson:"role" json:"role"`
	Active       bool               `bson:"active" json:"active"`
	FirstLogin   bool               `bson:"firstLogin" json:"firstLogin"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Identity is what the authorization middleware attaches to a request: the
// verified token claims merged with the id and role read from the store.
type Identity struct {
	UserID primitive.ObjectID
	Role   Role
	Claims *Claims
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type SignupResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type Credential struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// PasswordPolicy adds caller-specific rules to a password change.
type PasswordPolicy struct {
	// Rejected lists passwords that may not be chosen, such as a known
	// default credential.
	Rejected        []string
	ClearFirstLogin bool
}

type UpdateUserRequest struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	MobileNumber *string `json:"mobileNumber"`
	Role         *Role   `json:"role"`
	Active       *bool   `json:"active"`
}
