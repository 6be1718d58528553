package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dentasys/clinic-api/internal/models"
	"github.com/dentasys/clinic-api/internal/services"
	"github.com/dentasys/clinic-api/internal/store"
	"github.com/dentasys/clinic-api/internal/store/memstore"
	"github.com/dentasys/clinic-api/internal/utils"
)

// The request clock is pinned so date buckets are deterministic.
var testNow = time.Date(2025, time.July, 21, 12, 0, 0, 0, time.Local)

type fakeGoogle struct {
	identity *services.GoogleIdentity
	err      error
}

func (f *fakeGoogle) Verify(_ context.Context, _ string) (*services.GoogleIdentity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

type env struct {
	handler *Handler
	router  *gin.Engine
	store   *store.Store
	google  *fakeGoogle
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")

	st := memstore.New()
	google := &fakeGoogle{err: errors.New("no identity configured")}
	h := NewHandler(st, google, nil, zerolog.Nop())
	h.Now = func() time.Time { return testNow }

	return &env{
		handler: h,
		router:  NewRouter(h, zerolog.Nop(), []string{"http://localhost:3000"}),
		store:   st,
		google:  google,
	}
}

func (e *env) seedUser(t *testing.T, name, email, role string) (*models.User, string) {
	t.Helper()
	user := &models.User{Name: name, Email: email, Role: role, CreatedAt: testNow}
	require.NoError(t, e.store.Users.Create(context.Background(), user))
	token, err := utils.GenerateJWT(user.ID.Hex(), user.Role)
	require.NoError(t, err)
	return user, token
}

func (e *env) seedPatient(t *testing.T, owner *models.User, name string) *models.Patient {
	t.Helper()
	patient := &models.Patient{
		Name:      name,
		Email:     name + "@example.com",
		Contact:   "555-0100",
		StudentID: owner.ID,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(t, e.store.Patients.Create(context.Background(), patient))
	return patient
}

func (e *env) seedAppointment(t *testing.T, owner *models.User, patient *models.Patient, title string, at time.Time, status string) *models.Appointment {
	t.Helper()
	apt := &models.Appointment{
		Title:       title,
		ScheduledAt: at,
		Status:      status,
		PatientID:   patient.ID,
		StudentID:   owner.ID,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}
	require.NoError(t, e.store.Appointments.Create(context.Background(), apt))
	return apt
}

func (e *env) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}

// M is shorthand for JSON request bodies.
type M = map[string]interface{}
