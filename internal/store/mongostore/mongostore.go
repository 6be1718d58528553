// Package mongostore implements the persistence gateway on MongoDB.
package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dentasys/clinic-api/internal/models"
	"github.com/dentasys/clinic-api/internal/query"
	"github.com/dentasys/clinic-api/internal/store"
)

const (
	usersCollection        = "users"
	patientsCollection     = "patients"
	appointmentsCollection = "appointments"
)

func New(db *mongo.Database) *store.Store {
	return &store.Store{
		Users:        &users{db: db},
		Patients:     &patients{db: db},
		Appointments: &appointments{db: db},
	}
}

// EnsureIndexes creates the unique email index the register flow relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	}
	return err
}

func sortDir(desc bool) int {
	if desc {
		return -1
	}
	return 1
}

// --- users ---

type users struct{ db *mongo.Database }

var _ store.UserStore = (*users)(nil)

func (s *users) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := s.db.Collection(usersCollection).InsertOne(ctx, user)
	return mapErr(err)
}

func (s *users) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (s *users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

// --- patients ---

type patients struct{ db *mongo.Database }

var _ store.PatientStore = (*patients)(nil)

func patientQuery(f store.PatientFilter) bson.M {
	q := bson.M{}
	if !f.StudentID.IsZero() {
		q["studentId"] = f.StudentID
	}
	if f.Search != "" {
		rx := bson.M{"$regex": primitive.Regex{Pattern: f.Search, Options: "i"}}
		q["$or"] = bson.A{
			bson.M{"name": rx},
			bson.M{"email": rx},
			bson.M{"contact": rx},
		}
	}
	if f.AgeGroup != "" {
		after, notAfter, ok := query.AgeBounds(f.AgeGroup, f.Now)
		if ok {
			dob := bson.M{}
			if !after.IsZero() {
				dob["$gt"] = after
			}
			if !notAfter.IsZero() {
				dob["$lte"] = notAfter
			}
			if len(dob) > 0 {
				q["dob"] = dob
			}
		}
	}
	return q
}

func (s *patients) Create(ctx context.Context, patient *models.Patient) error {
	if patient.ID.IsZero() {
		patient.ID = primitive.NewObjectID()
	}
	_, err := s.db.Collection(patientsCollection).InsertOne(ctx, patient)
	return mapErr(err)
}

func (s *patients) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	var patient models.Patient
	err := s.db.Collection(patientsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&patient)
	if err != nil {
		return nil, mapErr(err)
	}
	return &patient, nil
}

func (s *patients) List(ctx context.Context, f store.PatientFilter, page store.Page) ([]models.Patient, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: sortDir(f.SortDesc)}}).
		SetSkip(int64(page.Skip))
	if page.Take > 0 {
		opts.SetLimit(int64(page.Take))
	}

	cursor, err := s.db.Collection(patientsCollection).Find(ctx, patientQuery(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	patients := make([]models.Patient, 0)
	if err := cursor.All(ctx, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

func (s *patients) Count(ctx context.Context, f store.PatientFilter) (int64, error) {
	return s.db.Collection(patientsCollection).CountDocuments(ctx, patientQuery(f))
}

func (s *patients) Names(ctx context.Context, studentID primitive.ObjectID) ([]models.PatientName, error) {
	q := bson.M{}
	if !studentID.IsZero() {
		q["studentId"] = studentID
	}
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "name": 1}).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := s.db.Collection(patientsCollection).Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	names := make([]models.PatientName, 0)
	if err := cursor.All(ctx, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (s *patients) Update(ctx context.Context, patient *models.Patient) error {
	res, err := s.db.Collection(patientsCollection).ReplaceOne(ctx, bson.M{"_id": patient.ID}, patient)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteCascade removes the patient's appointments and the patient itself in
// one session transaction, so a failure can never strand orphaned
// appointments.
func (s *patients) DeleteCascade(ctx context.Context, id primitive.ObjectID) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.db.Collection(appointmentsCollection).DeleteMany(sc, bson.M{"patientId": id}); err != nil {
			return nil, err
		}
		res, err := s.db.Collection(patientsCollection).DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, store.ErrNotFound
		}
		return nil, nil
	})
	return err
}

// --- appointments ---

type appointments struct{ db *mongo.Database }

var _ store.AppointmentStore = (*appointments)(nil)

// query builds the appointment filter. Free-text search matches title,
// description or the patient's name; the name clause is pre-resolved into a
// patientId $in because appointments carry no denormalized name.
func (s *appointments) query(ctx context.Context, f store.AppointmentFilter) (bson.M, error) {
	q := bson.M{}
	if !f.StudentID.IsZero() {
		q["studentId"] = f.StudentID
	}
	if !f.PatientID.IsZero() {
		q["patientId"] = f.PatientID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Search != "" {
		rx := bson.M{"$regex": primitive.Regex{Pattern: f.Search, Options: "i"}}
		or := bson.A{
			bson.M{"title": rx},
			bson.M{"description": rx},
		}
		ids, err := s.patientIDsByName(ctx, rx)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			or = append(or, bson.M{"patientId": bson.M{"$in": ids}})
		}
		q["$or"] = or
	}
	when := bson.M{}
	if !f.From.IsZero() {
		when["$gte"] = f.From
	}
	if !f.To.IsZero() {
		when["$lt"] = f.To
	}
	if len(when) > 0 {
		q["scheduledAt"] = when
	}
	return q, nil
}

func (s *appointments) patientIDsByName(ctx context.Context, rx bson.M) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := s.db.Collection(patientsCollection).Find(ctx, bson.M{"name": rx}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (s *appointments) Create(ctx context.Context, apt *models.Appointment) error {
	if apt.ID.IsZero() {
		apt.ID = primitive.NewObjectID()
	}
	_, err := s.db.Collection(appointmentsCollection).InsertOne(ctx, apt)
	return mapErr(err)
}

func (s *appointments) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	var apt models.Appointment
	err := s.db.Collection(appointmentsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&apt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &apt, nil
}

func (s *appointments) List(ctx context.Context, f store.AppointmentFilter, page store.Page) ([]models.Appointment, error) {
	q, err := s.query(ctx, f)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "scheduledAt", Value: sortDir(f.SortDesc)}}).
		SetSkip(int64(page.Skip))
	if page.Take > 0 {
		opts.SetLimit(int64(page.Take))
	}

	cursor, err := s.db.Collection(appointmentsCollection).Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	appointments := make([]models.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (s *appointments) Count(ctx context.Context, f store.AppointmentFilter) (int64, error) {
	q, err := s.query(ctx, f)
	if err != nil {
		return 0, err
	}
	return s.db.Collection(appointmentsCollection).CountDocuments(ctx, q)
}

func (s *appointments) First(ctx context.Context, f store.AppointmentFilter) (*models.Appointment, error) {
	q, err := s.query(ctx, f)
	if err != nil {
		return nil, err
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "scheduledAt", Value: 1}})
	var apt models.Appointment
	err = s.db.Collection(appointmentsCollection).FindOne(ctx, q, opts).Decode(&apt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &apt, nil
}

func (s *appointments) Update(ctx context.Context, apt *models.Appointment) error {
	res, err := s.db.Collection(appointmentsCollection).ReplaceOne(ctx, bson.M{"_id": apt.ID}, apt)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *appointments) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Collection(appointmentsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
