package class

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinCapacity = 1
	MaxCapacity = 100
)

// Class is an academic grouping. (Name, Section, AcademicYear) is unique,
// compared case-insensitively.
type Class struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Section      string             `bson:"section" json:"section"`
	AcademicYear string             `bson:"academicYear" json:"academicYear"`
	Capacity     int                `bson:"capacity" json:"capacity"`
	ClassTeacher primitive.ObjectID `bson:"classTeacher" json:"classTeacher"`
	CreatedBy    primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CreateRequest struct {
	Name         string `json:"name" validate:"required,max=50"`
	Section      string `json:"section" validate:"required,max=10"`
	AcademicYear string `json:"academicYear" validate:"required,academicyear"`
	Capacity     int    `json:"capacity" validate:"required,min=1,max=100"`
	ClassTeacher string `json:"classTeacher" validate:"required,objectid"`
}

type UpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=50"`
	Section      *string `json:"section" validate:"omitempty,max=10"`
	AcademicYear *string `json:"academicYear" validate:"omitempty,academicyear"`
	Capacity     *int    `json:"capacity" validate:"omitempty,min=1,max=100"`
	ClassTeacher *string `json:"classTeacher" validate:"omitempty,objectid"`
}

type ListFilter struct {
	AcademicYear string
	ClassTeacher primitive.ObjectID
}
