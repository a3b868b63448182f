package student

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student is an enrollment profile linked to a User holding the student role.
type Student struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	FirstName    string             `bson:"firstName" json:"firstName"`
	LastName     string             `bson:"lastName" json:"lastName"`
	Email        string             `bson:"email" json:"email"`
	MobileNumber string             `bson:"mobileNumber" json:"mobileNumber"`
	Active       bool               `bson:"active" json:"active"`
	CreatedBy    primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CreateRequest struct {
	UserID       string `json:"userId" validate:"required,objectid"`
	FirstName    string `json:"firstName" validate:"required,max=50"`
	LastName     string `json:"lastName" validate:"required,max=50"`
	Email        string `json:"email" validate:"required,email"`
	MobileNumber string `json:"mobileNumber" validate:"required,mobile"`
}

type UpdateRequest struct {
	FirstName    *string `json:"firstName" validate:"omitempty,max=50"`
	LastName     *string `json:"lastName" validate:"omitempty,max=50"`
	Email        *string `json:"email" validate:"omitempty,email"`
	MobileNumber *string `json:"mobileNumber" validate:"omitempty,mobile"`
}

type StatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type LoginResponse struct {
	Token   string   `json:"token"`
	Student *Student `json:"student"`
}
