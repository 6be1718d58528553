package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dentasys/clinic-api/internal/models"
	"github.com/dentasys/clinic-api/internal/store"
)

var now = time.Date(2025, time.July, 21, 12, 0, 0, 0, time.Local)

func TestUserDuplicateEmail(t *testing.T) {
	st := New()
	ctx := context.Background()

	require.NoError(t, st.Users.Create(ctx, &models.User{Email: "a@b.c", Role: models.RoleStudent}))
	err := st.Users.Create(ctx, &models.User{Email: "a@b.c", Role: models.RoleStudent})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestPatientSearchIsCaseInsensitive(t *testing.T) {
	st := New()
	ctx := context.Background()

	require.NoError(t, st.Patients.Create(ctx, &models.Patient{Name: "John Smith", Email: "john@x.y"}))
	require.NoError(t, st.Patients.Create(ctx, &models.Patient{Name: "Jane Doe", Contact: "555-0147"}))

	got, err := st.Patients.List(ctx, store.PatientFilter{Search: "SMITH"}, store.Page{Take: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "John Smith", got[0].Name)

	// contact is searched too
	got, err = st.Patients.List(ctx, store.PatientFilter{Search: "0147"}, store.Page{Take: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Jane Doe", got[0].Name)
}

func TestAppointmentSearchMatchesPatientName(t *testing.T) {
	st := New()
	ctx := context.Background()

	patient := &models.Patient{Name: "Zebediah Quill"}
	require.NoError(t, st.Patients.Create(ctx, patient))
	other := &models.Patient{Name: "Jane Doe"}
	require.NoError(t, st.Patients.Create(ctx, other))

	require.NoError(t, st.Appointments.Create(ctx, &models.Appointment{Title: "Checkup", PatientID: patient.ID, ScheduledAt: now}))
	require.NoError(t, st.Appointments.Create(ctx, &models.Appointment{Title: "Cleaning", PatientID: other.ID, ScheduledAt: now}))

	got, err := st.Appointments.List(ctx, store.AppointmentFilter{Search: "zebediah"}, store.Page{Take: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Checkup", got[0].Title)

	n, err := st.Appointments.Count(ctx, store.AppointmentFilter{Search: "zebediah"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAppointmentHalfOpenInterval(t *testing.T) {
	st := New()
	ctx := context.Background()

	dayStart := time.Date(2025, time.July, 21, 0, 0, 0, 0, time.Local)
	dayEnd := dayStart.AddDate(0, 0, 1)

	inside := &models.Appointment{Title: "in", ScheduledAt: dayStart, Status: models.StatusScheduled}
	boundary := &models.Appointment{Title: "out", ScheduledAt: dayEnd, Status: models.StatusScheduled}
	require.NoError(t, st.Appointments.Create(ctx, inside))
	require.NoError(t, st.Appointments.Create(ctx, boundary))

	got, err := st.Appointments.List(ctx, store.AppointmentFilter{From: dayStart, To: dayEnd}, store.Page{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "in", got[0].Title)
}

func TestDeleteCascadeRemovesAppointments(t *testing.T) {
	st := New()
	ctx := context.Background()

	patient := &models.Patient{Name: "John Smith"}
	require.NoError(t, st.Patients.Create(ctx, patient))
	other := &models.Patient{Name: "Jane Doe"}
	require.NoError(t, st.Patients.Create(ctx, other))

	mine := &models.Appointment{Title: "exam", PatientID: patient.ID, ScheduledAt: now}
	theirs := &models.Appointment{Title: "cleaning", PatientID: other.ID, ScheduledAt: now}
	require.NoError(t, st.Appointments.Create(ctx, mine))
	require.NoError(t, st.Appointments.Create(ctx, theirs))

	require.NoError(t, st.Patients.DeleteCascade(ctx, patient.ID))

	_, err := st.Patients.GetByID(ctx, patient.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Appointments.GetByID(ctx, mine.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// the other patient's appointment is untouched
	_, err = st.Appointments.GetByID(ctx, theirs.ID)
	assert.NoError(t, err)
}

func TestDeleteCascadeUnknownPatient(t *testing.T) {
	st := New()
	err := st.Patients.DeleteCascade(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAppointmentFirstReturnsEarliest(t *testing.T) {
	st := New()
	ctx := context.Background()

	later := &models.Appointment{Title: "later", ScheduledAt: now.Add(48 * time.Hour), Status: models.StatusScheduled}
	sooner := &models.Appointment{Title: "sooner", ScheduledAt: now.Add(2 * time.Hour), Status: models.StatusScheduled}
	require.NoError(t, st.Appointments.Create(ctx, later))
	require.NoError(t, st.Appointments.Create(ctx, sooner))

	got, err := st.Appointments.First(ctx, store.AppointmentFilter{From: now})
	require.NoError(t, err)
	assert.Equal(t, "sooner", got.Title)

	_, err = st.Appointments.First(ctx, store.AppointmentFilter{From: now.AddDate(1, 0, 0)})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
