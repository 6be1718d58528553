// Package query builds store filters from the caller's role and the list
// parameters. Every date computation derives from a single "now" captured by
// the handler so bucket boundaries cannot skew within one request.
package query

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dentasys/clinic-api/internal/models"
	"github.com/dentasys/clinic-api/internal/store"
)

// Date bucket keywords accepted on list endpoints.
const (
	BucketToday    = "today"
	BucketTomorrow = "tomorrow"
	BucketWeek     = "week"
	BucketOverdue  = "overdue"
	BucketAll      = "all"
)

// ScopeAppointments restricts the filter to the caller's own records when the
// caller is a Student. Professors and admins see everything.
func ScopeAppointments(f store.AppointmentFilter, callerID primitive.ObjectID, role string) store.AppointmentFilter {
	if role == models.RoleStudent {
		f.StudentID = callerID
	}
	return f
}

func ScopePatients(f store.PatientFilter, callerID primitive.ObjectID, role string) store.PatientFilter {
	if role == models.RoleStudent {
		f.StudentID = callerID
	}
	return f
}

// DayStart returns local midnight of the day containing t.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ApplyBucket resolves a date-bucket keyword into [From, To) bounds on the
// filter. "all" and "" leave the filter untouched. The second return is false
// for unknown keywords.
func ApplyBucket(f store.AppointmentFilter, bucket string, now time.Time) (store.AppointmentFilter, bool) {
	switch bucket {
	case "", BucketAll:
	case BucketToday:
		f.From = DayStart(now)
		f.To = f.From.AddDate(0, 0, 1)
	case BucketTomorrow:
		f.From = DayStart(now).AddDate(0, 0, 1)
		f.To = f.From.AddDate(0, 0, 1)
	case BucketWeek:
		f.From = now
		f.To = now.AddDate(0, 0, 7)
	case BucketOverdue:
		f.To = now
		f.Status = models.StatusScheduled
	default:
		return f, false
	}
	return f, true
}

// AgeBounds maps an age-group keyword to date-of-birth bounds: after is an
// exclusive lower bound, notAfter an inclusive upper bound, zero meaning
// unbounded. children = age < 18, adult = 18 <= age < 65, senior = age >= 65.
func AgeBounds(group string, now time.Time) (after, notAfter time.Time, ok bool) {
	adultCut := now.AddDate(-18, 0, 0)
	seniorCut := now.AddDate(-65, 0, 0)
	switch group {
	case models.AgeGroupChildren:
		return adultCut, time.Time{}, true
	case models.AgeGroupAdult:
		return seniorCut, adultCut, true
	case models.AgeGroupSenior:
		return time.Time{}, seniorCut, true
	case "":
		return time.Time{}, time.Time{}, true
	}
	return time.Time{}, time.Time{}, false
}

// MatchesAgeGroup reports whether a date of birth falls in the group at now.
func MatchesAgeGroup(dob time.Time, group string, now time.Time) bool {
	after, notAfter, ok := AgeBounds(group, now)
	if !ok {
		return false
	}
	if !after.IsZero() && !dob.After(after) {
		return false
	}
	if !notAfter.IsZero() && dob.After(notAfter) {
		return false
	}
	return true
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

// PageFromNumber converts page/limit parameters into a skip/take window.
func PageFromNumber(page, limit int) store.Page {
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if page < 1 {
		page = 1
	}
	return store.Page{Skip: (page - 1) * limit, Take: limit}
}

// PageFromWindow converts startIdx/endIdx parameters into a skip/take window.
func PageFromWindow(startIdx, endIdx int) store.Page {
	if startIdx < 0 {
		startIdx = 0
	}
	take := endIdx - startIdx
	if take < 1 {
		take = defaultLimit
	}
	if take > maxLimit {
		take = maxLimit
	}
	return store.Page{Skip: startIdx, Take: take}
}
