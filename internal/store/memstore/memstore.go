// Package memstore is an in-memory persistence gateway. It backs the handler
// tests and local development without a running mongod, and mirrors the
// filter semantics of the mongo implementation.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dentasys/clinic-api/internal/models"
	"github.com/dentasys/clinic-api/internal/query"
	"github.com/dentasys/clinic-api/internal/store"
)

type data struct {
	mu           sync.RWMutex
	users        map[primitive.ObjectID]models.User
	patients     map[primitive.ObjectID]models.Patient
	appointments map[primitive.ObjectID]models.Appointment
}

func New() *store.Store {
	d := &data{
		users:        make(map[primitive.ObjectID]models.User),
		patients:     make(map[primitive.ObjectID]models.Patient),
		appointments: make(map[primitive.ObjectID]models.Appointment),
	}
	return &store.Store{
		Users:        &users{d},
		Patients:     &patients{d},
		Appointments: &appointments{d},
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// --- users ---

type users struct{ d *data }

var _ store.UserStore = (*users)(nil)

func (s *users) Create(_ context.Context, user *models.User) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	for _, u := range s.d.users {
		if u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.d.users[user.ID] = *user
	return nil
}

func (s *users) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	u, ok := s.d.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	for _, u := range s.d.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

// --- patients ---

type patients struct{ d *data }

var _ store.PatientStore = (*patients)(nil)

func matchPatient(p models.Patient, f store.PatientFilter) bool {
	if !f.StudentID.IsZero() && p.StudentID != f.StudentID {
		return false
	}
	if f.Search != "" &&
		!containsFold(p.Name, f.Search) &&
		!containsFold(p.Email, f.Search) &&
		!containsFold(p.Contact, f.Search) {
		return false
	}
	if f.AgeGroup != "" && !query.MatchesAgeGroup(p.DOB, f.AgeGroup, f.Now) {
		return false
	}
	return true
}

func (s *patients) collect(f store.PatientFilter) []models.Patient {
	out := make([]models.Patient, 0)
	for _, p := range s.d.patients {
		if matchPatient(p, f) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if f.SortDesc {
			return out[i].Name > out[j].Name
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *patients) Create(_ context.Context, patient *models.Patient) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if patient.ID.IsZero() {
		patient.ID = primitive.NewObjectID()
	}
	s.d.patients[patient.ID] = *patient
	return nil
}

func (s *patients) GetByID(_ context.Context, id primitive.ObjectID) (*models.Patient, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	p, ok := s.d.patients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *patients) List(_ context.Context, f store.PatientFilter, page store.Page) ([]models.Patient, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	all := s.collect(f)
	if page.Skip >= len(all) {
		return []models.Patient{}, nil
	}
	all = all[page.Skip:]
	if page.Take > 0 && page.Take < len(all) {
		all = all[:page.Take]
	}
	return all, nil
}

func (s *patients) Count(_ context.Context, f store.PatientFilter) (int64, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	return int64(len(s.collect(f))), nil
}

func (s *patients) Names(_ context.Context, studentID primitive.ObjectID) ([]models.PatientName, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	names := make([]models.PatientName, 0)
	for _, p := range s.d.patients {
		if !studentID.IsZero() && p.StudentID != studentID {
			continue
		}
		names = append(names, models.PatientName{ID: p.ID, Name: p.Name})
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Name < names[j].Name })
	return names, nil
}

func (s *patients) Update(_ context.Context, patient *models.Patient) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.patients[patient.ID]; !ok {
		return store.ErrNotFound
	}
	s.d.patients[patient.ID] = *patient
	return nil
}

func (s *patients) DeleteCascade(_ context.Context, id primitive.ObjectID) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.patients[id]; !ok {
		return store.ErrNotFound
	}
	for aid, apt := range s.d.appointments {
		if apt.PatientID == id {
			delete(s.d.appointments, aid)
		}
	}
	delete(s.d.patients, id)
	return nil
}

// --- appointments ---

type appointments struct{ d *data }

var _ store.AppointmentStore = (*appointments)(nil)

func matchAppointment(a models.Appointment, f store.AppointmentFilter) bool {
	if !f.StudentID.IsZero() && a.StudentID != f.StudentID {
		return false
	}
	if !f.PatientID.IsZero() && a.PatientID != f.PatientID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && a.ScheduledAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !a.ScheduledAt.Before(f.To) {
		return false
	}
	return true
}

// matchesSearch checks title, description and the patient's name.
func (s *appointments) matchesSearch(a models.Appointment, search string) bool {
	if search == "" {
		return true
	}
	if containsFold(a.Title, search) || containsFold(a.Description, search) {
		return true
	}
	return containsFold(s.d.patients[a.PatientID].Name, search)
}

func (s *appointments) collect(f store.AppointmentFilter) []models.Appointment {
	out := make([]models.Appointment, 0)
	for _, a := range s.d.appointments {
		if matchAppointment(a, f) && s.matchesSearch(a, f.Search) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if f.SortDesc {
			return out[i].ScheduledAt.After(out[j].ScheduledAt)
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out
}

func (s *appointments) Create(_ context.Context, apt *models.Appointment) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if apt.ID.IsZero() {
		apt.ID = primitive.NewObjectID()
	}
	s.d.appointments[apt.ID] = *apt
	return nil
}

func (s *appointments) GetByID(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	a, ok := s.d.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *appointments) List(_ context.Context, f store.AppointmentFilter, page store.Page) ([]models.Appointment, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	all := s.collect(f)
	if page.Skip >= len(all) {
		return []models.Appointment{}, nil
	}
	all = all[page.Skip:]
	if page.Take > 0 && page.Take < len(all) {
		all = all[:page.Take]
	}
	return all, nil
}

func (s *appointments) Count(_ context.Context, f store.AppointmentFilter) (int64, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	return int64(len(s.collect(f))), nil
}

func (s *appointments) First(_ context.Context, f store.AppointmentFilter) (*models.Appointment, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	all := s.collect(f)
	if len(all) == 0 {
		return nil, store.ErrNotFound
	}
	first := all[0]
	return &first, nil
}

func (s *appointments) Update(_ context.Context, apt *models.Appointment) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.appointments[apt.ID]; !ok {
		return store.ErrNotFound
	}
	s.d.appointments[apt.ID] = *apt
	return nil
}

func (s *appointments) Delete(_ context.Context, id primitive.ObjectID) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.appointments[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.d.appointments, id)
	return nil
}
