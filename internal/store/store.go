package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dentasys/clinic-api/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Page is a normalized skip/take window.
type Page struct {
	Skip int
	Take int
}

// PatientFilter selects patients. Zero values mean "no restriction".
// AgeGroup is resolved against Now, which callers capture once per request.
type PatientFilter struct {
	StudentID primitive.ObjectID
	Search    string
	AgeGroup  string
	Now       time.Time
	SortDesc  bool
}

// AppointmentFilter selects appointments. From/To bound ScheduledAt as a
// half-open interval [From, To); either side may be zero.
type AppointmentFilter struct {
	StudentID primitive.ObjectID
	PatientID primitive.ObjectID
	Status    string
	Search    string
	From      time.Time
	To        time.Time
	SortDesc  bool
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type PatientStore interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error)
	List(ctx context.Context, filter PatientFilter, page Page) ([]models.Patient, error)
	Count(ctx context.Context, filter PatientFilter) (int64, error)
	Names(ctx context.Context, studentID primitive.ObjectID) ([]models.PatientName, error)
	Update(ctx context.Context, patient *models.Patient) error
	// DeleteCascade removes the patient and every appointment referencing it
	// in one transaction.
	DeleteCascade(ctx context.Context, id primitive.ObjectID) error
}

type AppointmentStore interface {
	Create(ctx context.Context, apt *models.Appointment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter, page Page) ([]models.Appointment, error)
	Count(ctx context.Context, filter AppointmentFilter) (int64, error)
	// First returns the earliest matching appointment by ScheduledAt, or
	// ErrNotFound.
	First(ctx context.Context, filter AppointmentFilter) (*models.Appointment, error)
	Update(ctx context.Context, apt *models.Appointment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Store bundles the per-entity gateways handed to the handlers.
type Store struct {
	Users        UserStore
	Patients     PatientStore
	Appointments AppointmentStore
}
