package faculty

import (
	"time"

	"SchoolManager/internal/role"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Faculty is the operational profile of a staff member. FacultyID and
// EmployeeID are assigned once at registration and never change. Every
// Faculty has exactly one User with the same email.
type Faculty struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FacultyID    string             `bson:"facultyId" json:"facultyId"`
	EmployeeID   string             `bson:"employeeId" json:"employeeId"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	FirstName    string             `bson:"firstName" json:"firstName"`
	LastName     string             `bson:"lastName" json:"lastName"`
	Email        string             `bson:"email" json:"email"`
	MobileNumber string             `bson:"mobileNumber" json:"mobileNumber"`
	Gender       Gender             `bson:"gender" json:"gender"`
	Department   string             `bson:"department" json:"department"`
	RoleID       primitive.ObjectID `bson:"role" json:"roleId"`
	Active       bool               `bson:"active" json:"active"`
	CreatedBy    primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// View is a Faculty with its Role populated.
type View struct {
	*Faculty
	Role *role.Role `json:"role,omitempty"`
}

type RegisterRequest struct {
	FirstName    string `json:"firstName" validate:"required,max=50"`
	LastName     string `json:"lastName" validate:"required,max=50"`
	Email        string `json:"email" validate:"required,email"`
	MobileNumber string `json:"mobileNumber" validate:"required,mobile"`
	Gender       Gender `json:"gender" validate:"required,oneof=male female other"`
	Department   string `json:"department" validate:"required,department,max=100"`
	Role         string `json:"role" validate:"required"`
}

type UpdateRequest struct {
	FirstName    *string `json:"firstName" validate:"omitempty,max=50"`
	LastName     *string `json:"lastName" validate:"omitempty,max=50"`
	Email        *string `json:"email" validate:"omitempty,email"`
	MobileNumber *string `json:"mobileNumber" validate:"omitempty,mobile"`
	Gender       *Gender `json:"gender" validate:"omitempty,oneof=male female other"`
	Department   *string `json:"department" validate:"omitempty,department,max=100"`
	Role         *string `json:"role"`
}

type StatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// DefaultCredential is returned once, in the registration response.
type DefaultCredential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Faculty     *View             `json:"faculty"`
	Credentials DefaultCredential `json:"credentials"`
}

type LoginResponse struct {
	Token      string `json:"token"`
	Faculty    *View  `json:"faculty"`
	FirstLogin bool   `json:"firstLogin"`
}

type ListFilter struct {
	Department string
	Active     *bool
}
