package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusScheduled = "Scheduled"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

func ValidStatus(status string) bool {
	return status == StatusScheduled || status == StatusCompleted || status == StatusCancelled
}

// Appointment is the canonical record behind both the /appointments and
// /incidents routes. ScheduledAt is the absolute local start time; EndAt is
// zero for appointments booked without an end time.
type Appointment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Comments    string             `bson:"comments,omitempty" json:"comments,omitempty"`
	ScheduledAt time.Time          `bson:"scheduledAt" json:"scheduledAt"`
	EndAt       time.Time          `bson:"endAt,omitempty" json:"endAt,omitempty"`
	Status      string             `bson:"status" json:"status"`
	Cost        float64            `bson:"cost,omitempty" json:"cost,omitempty"`
	Treatment   string             `bson:"treatment,omitempty" json:"treatment,omitempty"`
	Color       string             `bson:"color,omitempty" json:"color,omitempty"`
	PatientID   primitive.ObjectID `bson:"patientId" json:"patientId"`
	StudentID   primitive.ObjectID `bson:"studentId" json:"studentId"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
