package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Age groups used for patient filtering. Thresholds are 18 and 65 years.
const (
	AgeGroupChildren = "children"
	AgeGroupAdult    = "adult"
	AgeGroupSenior   = "senior"
)

type Patient struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	DOB              time.Time          `bson:"dob,omitempty" json:"dob,omitempty"` // local midnight of the birth date
	Email            string             `bson:"email" json:"email"`
	Contact          string             `bson:"contact" json:"contact"`
	EmergencyContact string             `bson:"emergencyContact,omitempty" json:"emergencyContact,omitempty"`
	HealthInfo       string             `bson:"healthInfo,omitempty" json:"healthInfo,omitempty"`
	Address          string             `bson:"address,omitempty" json:"address,omitempty"`
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"`
	StudentID        primitive.ObjectID `bson:"studentId" json:"studentId"` // owning clinician, never reassigned
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PatientName is the id/name projection served to dropdowns.
type PatientName struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
}
