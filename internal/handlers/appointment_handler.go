package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/dentasys/clinic-api/internal/models"
	"github.com/dentasys/clinic-api/internal/query"
	"github.com/dentasys/clinic-api/internal/store"
	"github.com/dentasys/clinic-api/internal/utils"
)

type AppointmentRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Comments    string  `json:"comments"`
	PatientID   string  `json:"patientId" binding:"required"`
	Status      string  `json:"status"`
	Cost        float64 `json:"cost"`
	Treatment   string  `json:"treatment"`
	Color       string  `json:"color"`

	// Either an absolute timestamp or a local date with optional clock
	// times; the two payload shapes in the wild.
	AppointmentDate string `json:"appointmentDate"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
}

// schedule resolves the request's date/time fields into ScheduledAt/EndAt.
func (r *AppointmentRequest) schedule() (scheduledAt, endAt time.Time, err error) {
	if r.AppointmentDate != "" {
		scheduledAt, err = time.Parse(time.RFC3339, r.AppointmentDate)
		return scheduledAt, endAt, err
	}
	if r.StartTime != "" {
		scheduledAt, err = utils.CombineLocal(r.Date, r.StartTime)
	} else {
		scheduledAt, err = utils.ParseLocalDate(r.Date)
	}
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if r.EndTime != "" {
		endAt, err = utils.CombineLocal(r.Date, r.EndTime)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return scheduledAt, endAt, nil
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and patientId are required"})
		return
	}

	patientID, err := primitive.ObjectIDFromHex(req.PatientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}

	scheduledAt, endAt, err := req.schedule()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date or time"})
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusScheduled
	}
	if !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	patient, err := h.Store.Patients.GetByID(c.Request.Context(), patientID)
	if err != nil {
		h.storeError(c, err, "Patient not found")
		return
	}
	if caller.Role == models.RoleStudent && patient.StudentID != caller.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this patient record"})
		return
	}

	now := h.Now()
	apt := &models.Appointment{
		Title:       req.Title,
		Description: req.Description,
		Comments:    req.Comments,
		ScheduledAt: scheduledAt,
		EndAt:       endAt,
		Status:      status,
		Cost:        req.Cost,
		Treatment:   req.Treatment,
		Color:       req.Color,
		PatientID:   patientID,
		StudentID:   caller.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Store.Appointments.Create(c.Request.Context(), apt); err != nil {
		h.storeError(c, err, "Appointment not found")
		return
	}

	c.JSON(http.StatusCreated, apt)
}

// GetAppointments lists appointments with status/search/date-bucket filters
// and returns the dashboard aggregates alongside the page. All aggregate
// reads derive from one captured "now" and run concurrently.
func (h *Handler) GetAppointments(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	now := h.Now()

	base := query.ScopeAppointments(store.AppointmentFilter{}, caller.ID, caller.Role)

	filtered := base
	if status := c.Query("status"); status != "" && status != "all" {
		if !models.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		filtered.Status = status
	}
	if search := c.Query("search"); search != "" {
		filtered.Search = search
	} else {
		filtered.Search = c.Query("searchTerm")
	}
	filtered.SortDesc = strings.EqualFold(c.Query("order"), "desc") || strings.EqualFold(c.Query("sort"), "desc")

	filtered, bucketOK := query.ApplyBucket(filtered, c.Query("date"), now)
	if !bucketOK {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date filter, expected today|tomorrow|week|overdue|all"})
		return
	}

	var page store.Page
	if c.Query("startIdx") != "" || c.Query("endIdx") != "" {
		page = query.PageFromWindow(intQuery(c, "startIdx", 0), intQuery(c, "endIdx", 10))
	} else {
		limit := intQuery(c, "pageSize", intQuery(c, "limit", 10))
		page = query.PageFromNumber(intQuery(c, "page", 1), limit)
	}

	completed := base
	completed.Status = models.StatusCompleted

	overdue := base
	overdue.To = now
	overdue.Status = models.StatusScheduled

	today, _ := query.ApplyBucket(base, query.BucketToday, now)

	upcoming := base
	upcoming.From = now

	var (
		appointments  []models.Appointment
		totalCount    int64
		filteredCount int64
		completedN    int64
		overdueN      int64
		todayItems    []models.Appointment
		upcomingItems []models.Appointment
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		appointments, err = h.Store.Appointments.List(ctx, filtered, page)
		return err
	})
	g.Go(func() (err error) {
		totalCount, err = h.Store.Appointments.Count(ctx, base)
		return err
	})
	g.Go(func() (err error) {
		filteredCount, err = h.Store.Appointments.Count(ctx, filtered)
		return err
	})
	g.Go(func() (err error) {
		completedN, err = h.Store.Appointments.Count(ctx, completed)
		return err
	})
	g.Go(func() (err error) {
		overdueN, err = h.Store.Appointments.Count(ctx, overdue)
		return err
	})
	g.Go(func() (err error) {
		todayItems, err = h.Store.Appointments.List(ctx, today, store.Page{})
		return err
	})
	g.Go(func() (err error) {
		upcomingItems, err = h.Store.Appointments.List(ctx, upcoming, store.Page{Take: 5})
		return err
	})
	if err := g.Wait(); err != nil {
		h.storeError(c, err, "Appointment not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"appointments":         appointments,
		"totalCount":           totalCount,
		"filteredTotalCount":   filteredCount,
		"completedCount":       completedN,
		"overdueCount":         overdueN,
		"todayAppointments":    todayItems,
		"upcomingAppointments": upcomingItems,
	})
}

func (h *Handler) GetAppointment(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}

	apt, err := h.Store.Appointments.GetByID(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "Appointment not found")
		return
	}
	if caller.Role == models.RoleStudent && apt.StudentID != caller.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}

	c.JSON(http.StatusOK, apt)
}

// GetAppointmentsByRange serves the calendar feed. endDate is inclusive by
// day: the interval is [startDate, endDate+24h).
func (h *Handler) GetAppointmentsByRange(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	from, err := utils.ParseLocalDate(c.Query("startDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate, expected YYYY-MM-DD"})
		return
	}
	endDay, err := utils.ParseLocalDate(c.Query("endDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate, expected YYYY-MM-DD"})
		return
	}

	filter := query.ScopeAppointments(store.AppointmentFilter{
		From: from,
		To:   endDay.AddDate(0, 0, 1),
	}, caller.ID, caller.Role)

	appointments, err := h.Store.Appointments.List(c.Request.Context(), filter, store.Page{})
	if err != nil {
		h.storeError(c, err, "Appointment not found")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// GetPatientAppointments returns per-patient stats: how many appointments
// the patient has and when the next scheduled one starts.
func (h *Handler) GetPatientAppointments(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	patientID, err := primitive.ObjectIDFromHex(c.Param("patientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}

	now := h.Now()
	base := query.ScopeAppointments(store.AppointmentFilter{PatientID: patientID}, caller.ID, caller.Role)

	total, err := h.Store.Appointments.Count(c.Request.Context(), base)
	if err != nil {
		h.storeError(c, err, "Appointment not found")
		return
	}

	next := base
	next.From = now
	next.Status = models.StatusScheduled

	var nextScheduled *time.Time
	if apt, err := h.Store.Appointments.First(c.Request.Context(), next); err == nil {
		nextScheduled = &apt.ScheduledAt
	} else if !errors.Is(err, store.ErrNotFound) {
		h.storeError(c, err, "Appointment not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalIncidents":           total,
		"nextScheduledAppointment": nextScheduled,
	})
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}

	var req AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and patientId are required"})
		return
	}

	apt, err := h.Store.Appointments.GetByID(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "Appointment not found")
		return
	}
	if caller.Role == models.RoleStudent && apt.StudentID != caller.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this appointment"})
		return
	}

	patientID, err := primitive.ObjectIDFromHex(req.PatientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}
	if patientID != apt.PatientID {
		patient, err := h.Store.Patients.GetByID(c.Request.Context(), patientID)
		if err != nil {
			h.storeError(c, err, "Patient not found")
			return
		}
		if caller.Role == models.RoleStudent && patient.StudentID != caller.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this patient record"})
			return
		}
	}

	scheduledAt, endAt, err := req.schedule()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date or time"})
		return
	}

	status := req.Status
	if status == "" {
		status = apt.Status
	}
	if !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	apt.Title = req.Title
	apt.Description = req.Description
	apt.Comments = req.Comments
	apt.ScheduledAt = scheduledAt
	apt.EndAt = endAt
	apt.Status = status
	apt.Cost = req.Cost
	apt.Treatment = req.Treatment
	apt.Color = req.Color
	apt.PatientID = patientID
	apt.UpdatedAt = h.Now()

	if err := h.Store.Appointments.Update(c.Request.Context(), apt); err != nil {
		h.storeError(c, err, "Appointment not found")
		return
	}

	c.JSON(http.StatusOK, apt)
}

// UpdateAppointmentStatus is the status-only update behind
// PUT /incidents/status/:id.
func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	apt, err := h.Store.Appointments.GetByID(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "Appointment not found")
		return
	}
	if caller.Role == models.RoleStudent && apt.StudentID != caller.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this appointment"})
		return
	}

	apt.Status = req.Status
	apt.UpdatedAt = h.Now()
	if err := h.Store.Appointments.Update(c.Request.Context(), apt); err != nil {
		h.storeError(c, err, "Appointment not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "appointment": apt})
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}

	apt, err := h.Store.Appointments.GetByID(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "Appointment not found")
		return
	}
	if caller.Role == models.RoleStudent && apt.StudentID != caller.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this appointment"})
		return
	}

	if err := h.Store.Appointments.Delete(c.Request.Context(), id); err != nil {
		h.storeError(c, err, "Appointment not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}
