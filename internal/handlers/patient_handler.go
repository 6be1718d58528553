package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/dentasys/clinic-api/internal/models"
	"github.com/dentasys/clinic-api/internal/query"
	"github.com/dentasys/clinic-api/internal/store"
	"github.com/dentasys/clinic-api/internal/utils"
)

type CreatePatientRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Contact          string `json:"contact" binding:"required"`
	DOB              string `json:"dob"`
	EmergencyContact string `json:"emergencyContact"`
	HealthInfo       string `json:"healthInfo"`
	Address          string `json:"address"`
	Notes            string `json:"notes"`
}

func (h *Handler) CreatePatient(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, email, and contact are required."})
		return
	}

	now := h.Now()
	patient := &models.Patient{
		Name:             req.Name,
		Email:            req.Email,
		Contact:          req.Contact,
		EmergencyContact: req.EmergencyContact,
		HealthInfo:       req.HealthInfo,
		Address:          req.Address,
		Notes:            req.Notes,
		StudentID:        caller.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.DOB != "" {
		dob, err := utils.ParseLocalDate(req.DOB)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dob, expected YYYY-MM-DD"})
			return
		}
		patient.DOB = dob
	}

	if err := h.Store.Patients.Create(c.Request.Context(), patient); err != nil {
		h.storeError(c, err, "Patient not found")
		return
	}

	c.JSON(http.StatusCreated, patient)
}

// GetPatients lists the caller's patients with search, age-group filtering
// and pagination. The list, the scoped total and the filtered total are
// independent reads issued concurrently.
func (h *Handler) GetPatients(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	now := h.Now()

	base := query.ScopePatients(store.PatientFilter{Now: now}, caller.ID, caller.Role)
	filtered := base
	filtered.Search = c.Query("searchTerm")
	filtered.SortDesc = strings.EqualFold(c.Query("sort"), "desc")

	if group := c.Query("ageGroup"); group != "" && group != "all" {
		if _, _, ok := query.AgeBounds(group, now); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ageGroup, expected children|adult|senior"})
			return
		}
		filtered.AgeGroup = group
	}

	var page store.Page
	if c.Query("page") != "" || c.Query("limit") != "" {
		page = query.PageFromNumber(intQuery(c, "page", 1), intQuery(c, "limit", 10))
	} else {
		page = query.PageFromWindow(intQuery(c, "startIdx", 0), intQuery(c, "endIdx", 10))
	}

	var (
		patients      []models.Patient
		totalCount    int64
		filteredCount int64
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		patients, err = h.Store.Patients.List(ctx, filtered, page)
		return err
	})
	g.Go(func() (err error) {
		totalCount, err = h.Store.Patients.Count(ctx, base)
		return err
	})
	g.Go(func() (err error) {
		filteredCount, err = h.Store.Patients.Count(ctx, filtered)
		return err
	})
	if err := g.Wait(); err != nil {
		h.storeError(c, err, "Patient not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patients":           patients,
		"totalCount":         totalCount,
		"filteredTotalCount": filteredCount,
	})
}

// GetPatientNames serves the id/name pairs used by dropdowns.
func (h *Handler) GetPatientNames(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var studentID primitive.ObjectID
	if caller.Role == models.RoleStudent {
		studentID = caller.ID
	}
	names, err := h.Store.Patients.Names(c.Request.Context(), studentID)
	if err != nil {
		h.storeError(c, err, "Patient not found")
		return
	}

	c.JSON(http.StatusOK, names)
}

func (h *Handler) GetPatient(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}

	patient, err := h.Store.Patients.GetByID(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "Patient not found")
		return
	}
	// A student asking for another student's patient learns nothing, not
	// even that the record exists.
	if caller.Role == models.RoleStudent && patient.StudentID != caller.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	c.JSON(http.StatusOK, patient)
}

type UpdatePatientRequest struct {
	Name             *string `json:"name"`
	Email            *string `json:"email"`
	Contact          *string `json:"contact"`
	DOB              *string `json:"dob"`
	EmergencyContact *string `json:"emergencyContact"`
	HealthInfo       *string `json:"healthInfo"`
	Address          *string `json:"address"`
	Notes            *string `json:"notes"`
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}

	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	patient, err := h.Store.Patients.GetByID(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "Patient not found")
		return
	}
	if caller.Role == models.RoleStudent && patient.StudentID != caller.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this patient record"})
		return
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Contact != nil {
		patient.Contact = *req.Contact
	}
	if req.DOB != nil {
		dob, err := utils.ParseLocalDate(*req.DOB)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dob, expected YYYY-MM-DD"})
			return
		}
		patient.DOB = dob
	}
	if req.EmergencyContact != nil {
		patient.EmergencyContact = *req.EmergencyContact
	}
	if req.HealthInfo != nil {
		patient.HealthInfo = *req.HealthInfo
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.Notes != nil {
		patient.Notes = *req.Notes
	}
	patient.UpdatedAt = h.Now()

	if err := h.Store.Patients.Update(c.Request.Context(), patient); err != nil {
		h.storeError(c, err, "Patient not found")
		return
	}

	c.JSON(http.StatusOK, patient)
}

// DeletePatient removes the patient together with every appointment that
// references it, atomically.
func (h *Handler) DeletePatient(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}

	patient, err := h.Store.Patients.GetByID(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "Patient not found")
		return
	}
	if caller.Role == models.RoleStudent && patient.StudentID != caller.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this patient record"})
		return
	}

	if err := h.Store.Patients.DeleteCascade(c.Request.Context(), id); err != nil {
		h.storeError(c, err, "Patient not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Patient and appointments deleted successfully"})
}
