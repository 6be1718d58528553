package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentasys/clinic-api/internal/models"
)

type patientListResponse struct {
	Patients           []models.Patient `json:"patients"`
	TotalCount         int64            `json:"totalCount"`
	FilteredTotalCount int64            `json:"filteredTotalCount"`
}

func TestPatientListIsScopedToStudent(t *testing.T) {
	e := newEnv(t)
	studentA, tokenA := e.seedUser(t, "Student A", "a@example.com", models.RoleStudent)
	studentB, _ := e.seedUser(t, "Student B", "b@example.com", models.RoleStudent)
	_, profToken := e.seedUser(t, "Prof", "p@example.com", models.RoleProfessor)

	e.seedPatient(t, studentA, "Alice")
	e.seedPatient(t, studentA, "Bob")
	e.seedPatient(t, studentB, "Carol")

	w := e.do(t, http.MethodGet, "/api/patients", tokenA, nil)
	requireStatus(t, w, http.StatusOK)
	var resp patientListResponse
	decode(t, w, &resp)
	require.Len(t, resp.Patients, 2)
	for _, p := range resp.Patients {
		assert.Equal(t, studentA.ID, p.StudentID)
	}
	assert.EqualValues(t, 2, resp.TotalCount)

	// professors see across students
	w = e.do(t, http.MethodGet, "/api/patients", profToken, nil)
	requireStatus(t, w, http.StatusOK)
	decode(t, w, &resp)
	assert.Len(t, resp.Patients, 3)
	assert.EqualValues(t, 3, resp.TotalCount)
}

func TestPatientPagination(t *testing.T) {
	e := newEnv(t)
	student, token := e.seedUser(t, "Student", "s@example.com", models.RoleStudent)
	for i := 1; i <= 25; i++ {
		e.seedPatient(t, student, fmt.Sprintf("Patient %02d", i))
	}

	w := e.do(t, http.MethodGet, "/api/patients?page=2&limit=10", token, nil)
	requireStatus(t, w, http.StatusOK)
	var resp patientListResponse
	decode(t, w, &resp)

	require.Len(t, resp.Patients, 10)
	assert.Equal(t, "Patient 11", resp.Patients[0].Name)
	assert.Equal(t, "Patient 20", resp.Patients[9].Name)
	assert.EqualValues(t, 25, resp.TotalCount)
	assert.EqualValues(t, 25, resp.FilteredTotalCount)

	// startIdx/endIdx addressing reaches the same window
	w = e.do(t, http.MethodGet, "/api/patients?startIdx=10&endIdx=20", token, nil)
	requireStatus(t, w, http.StatusOK)
	decode(t, w, &resp)
	require.Len(t, resp.Patients, 10)
	assert.Equal(t, "Patient 11", resp.Patients[0].Name)
}

func TestPatientSearch(t *testing.T) {
	e := newEnv(t)
	student, token := e.seedUser(t, "Student", "s@example.com", models.RoleStudent)
	e.seedPatient(t, student, "John Smith")
	e.seedPatient(t, student, "Jane Doe")

	w := e.do(t, http.MethodGet, "/api/patients?searchTerm=smith", token, nil)
	requireStatus(t, w, http.StatusOK)
	var resp patientListResponse
	decode(t, w, &resp)
	require.Len(t, resp.Patients, 1)
	assert.Equal(t, "John Smith", resp.Patients[0].Name)
	assert.EqualValues(t, 2, resp.TotalCount)
	assert.EqualValues(t, 1, resp.FilteredTotalCount)
}

func TestPatientAgeGroupFilter(t *testing.T) {
	e := newEnv(t)
	_, token := e.seedUser(t, "Student", "s@example.com", models.RoleStudent)

	mkPatient := func(name string, years int) {
		w := e.do(t, http.MethodPost, "/api/patients", token, M{
			"name": name, "email": name + "@example.com", "contact": "555",
			"dob": testNow.AddDate(-years, 0, 0).Format("2006-01-02"),
		})
		requireStatus(t, w, http.StatusCreated)
	}
	mkPatient("Kid", 17)
	mkPatient("Grown", 30)
	mkPatient("Elder", 70)

	cases := map[string]string{
		models.AgeGroupChildren: "Kid",
		models.AgeGroupAdult:    "Grown",
		models.AgeGroupSenior:   "Elder",
	}
	for group, want := range cases {
		w := e.do(t, http.MethodGet, "/api/patients?ageGroup="+group, token, nil)
		requireStatus(t, w, http.StatusOK)
		var resp patientListResponse
		decode(t, w, &resp)
		require.Len(t, resp.Patients, 1, "group %s", group)
		assert.Equal(t, want, resp.Patients[0].Name, "group %s", group)
	}

	requireStatus(t, e.do(t, http.MethodGet, "/api/patients?ageGroup=toddler", token, nil), http.StatusBadRequest)
}

func TestCreatePatientValidation(t *testing.T) {
	e := newEnv(t)
	_, token := e.seedUser(t, "Student", "s@example.com", models.RoleStudent)

	// contact missing
	w := e.do(t, http.MethodPost, "/api/patients", token, M{"name": "X", "email": "x@example.com"})
	requireStatus(t, w, http.StatusBadRequest)

	// malformed dob
	w = e.do(t, http.MethodPost, "/api/patients", token, M{
		"name": "X", "email": "x@example.com", "contact": "555", "dob": "10/06/2001",
	})
	requireStatus(t, w, http.StatusBadRequest)
}

func TestPatientDOBRoundTrip(t *testing.T) {
	e := newEnv(t)
	_, token := e.seedUser(t, "Student", "s@example.com", models.RoleStudent)

	w := e.do(t, http.MethodPost, "/api/patients", token, M{
		"name": "Jane Doe", "email": "jane@example.com", "contact": "555", "dob": "2001-06-10",
	})
	requireStatus(t, w, http.StatusCreated)
	var created models.Patient
	decode(t, w, &created)

	w = e.do(t, http.MethodGet, "/api/patients/"+created.ID.Hex(), token, nil)
	requireStatus(t, w, http.StatusOK)
	var fetched models.Patient
	decode(t, w, &fetched)

	dob := fetched.DOB.In(time.Local)
	assert.Equal(t, 2001, dob.Year())
	assert.Equal(t, time.June, dob.Month())
	assert.Equal(t, 10, dob.Day())
	assert.Equal(t, 0, dob.Hour())
}

func TestPatientOwnership(t *testing.T) {
	e := newEnv(t)
	studentA, _ := e.seedUser(t, "Student A", "a@example.com", models.RoleStudent)
	_, tokenB := e.seedUser(t, "Student B", "b@example.com", models.RoleStudent)
	_, profToken := e.seedUser(t, "Prof", "p@example.com", models.RoleProfessor)
	patient := e.seedPatient(t, studentA, "Alice")

	// a non-owning student can neither see, change nor delete the record
	requireStatus(t, e.do(t, http.MethodGet, "/api/patients/"+patient.ID.Hex(), tokenB, nil), http.StatusNotFound)
	requireStatus(t, e.do(t, http.MethodPut, "/api/patients/"+patient.ID.Hex(), tokenB, M{"name": "Hacked"}), http.StatusForbidden)
	requireStatus(t, e.do(t, http.MethodDelete, "/api/patients/"+patient.ID.Hex(), tokenB, nil), http.StatusForbidden)

	// a professor can
	w := e.do(t, http.MethodPut, "/api/patients/"+patient.ID.Hex(), profToken, M{"notes": "Reviewed"})
	requireStatus(t, w, http.StatusOK)
	var updated models.Patient
	decode(t, w, &updated)
	assert.Equal(t, "Reviewed", updated.Notes)
	assert.Equal(t, studentA.ID, updated.StudentID) // ownership never moves

	requireStatus(t, e.do(t, http.MethodDelete, "/api/patients/"+patient.ID.Hex(), profToken, nil), http.StatusOK)
}

func TestDeletePatientCascades(t *testing.T) {
	e := newEnv(t)
	student, token := e.seedUser(t, "Student", "s@example.com", models.RoleStudent)
	patient := e.seedPatient(t, student, "Alice")
	keepPatient := e.seedPatient(t, student, "Bob")

	a1 := e.seedAppointment(t, student, patient, "Exam", testNow.Add(24*time.Hour), models.StatusScheduled)
	a2 := e.seedAppointment(t, student, patient, "Cleaning", testNow.Add(48*time.Hour), models.StatusScheduled)
	keep := e.seedAppointment(t, student, keepPatient, "Filling", testNow.Add(72*time.Hour), models.StatusScheduled)

	requireStatus(t, e.do(t, http.MethodDelete, "/api/patients/"+patient.ID.Hex(), token, nil), http.StatusOK)

	requireStatus(t, e.do(t, http.MethodGet, "/api/patients/"+patient.ID.Hex(), token, nil), http.StatusNotFound)
	requireStatus(t, e.do(t, http.MethodGet, "/api/appointments/"+a1.ID.Hex(), token, nil), http.StatusNotFound)
	requireStatus(t, e.do(t, http.MethodGet, "/api/appointments/"+a2.ID.Hex(), token, nil), http.StatusNotFound)

	// unrelated records survive
	requireStatus(t, e.do(t, http.MethodGet, "/api/appointments/"+keep.ID.Hex(), token, nil), http.StatusOK)
}

func TestPatientNamesDropdown(t *testing.T) {
	e := newEnv(t)
	studentA, tokenA := e.seedUser(t, "Student A", "a@example.com", models.RoleStudent)
	studentB, _ := e.seedUser(t, "Student B", "b@example.com", models.RoleStudent)
	e.seedPatient(t, studentA, "Alice")
	e.seedPatient(t, studentB, "Carol")

	for _, path := range []string{"/api/patients/names", "/api/patients/dropdown"} {
		w := e.do(t, http.MethodGet, path, tokenA, nil)
		requireStatus(t, w, http.StatusOK)
		var names []models.PatientName
		decode(t, w, &names)
		require.Len(t, names, 1, "path %s", path)
		assert.Equal(t, "Alice", names[0].Name)
	}
}
