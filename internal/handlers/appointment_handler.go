package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medibook/booking-api/internal/models"
	"github.com/medibook/booking-api/internal/services"
	"github.com/medibook/booking-api/internal/store"
	"github.com/medibook/booking-api/internal/ws"
)

// --- BOOK APPOINTMENT (patient flow) ---
func (h *Handler) BookAppointment(c *gin.Context) {
	var req struct {
		DoctorID     string `json:"doctorId" binding:"required"`
		PatientID    string `json:"patientId" binding:"required"`
		PatientName  string `json:"patientName" binding:"required"`
		PatientPhone string `json:"patientPhone" binding:"required"`
		Date         string `json:"date" binding:"required"`
		Time         string `json:"time" binding:"required"`
		Notes        string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	doctorID, err1 := primitive.ObjectIDFromHex(req.DoctorID)
	patientID, err2 := primitive.ObjectIDFromHex(req.PatientID)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor or patient ID"})
		return
	}
	if !validSlot(req.Date, req.Time) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date or time, use YYYY-MM-DD and HH:MM"})
		return
	}

	apt, err := h.Allocator.Book(c.Request.Context(), services.BookingRequest{
		DoctorID:     doctorID,
		PatientID:    patientID,
		PatientName:  req.PatientName,
		PatientPhone: req.PatientPhone,
		Date:         req.Date,
		Time:         req.Time,
		Notes:        req.Notes,
	})
	if err != nil {
		h.writeAllocationError(c, err)
		return
	}

	h.Hub.BroadcastQueueUpdate(ws.QueueUpdate{
		DoctorID:    apt.DoctorID.Hex(),
		Date:        apt.Date,
		Time:        apt.Time,
		QueueNumber: apt.QueueNumber,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Appointment booked successfully",
		"appointment": apt,
	})
}

// --- REGISTER WALK-IN (front-desk flow) ---
func (h *Handler) RegisterWalkIn(c *gin.Context) {
	var req struct {
		DoctorID     string `json:"doctorId" binding:"required"`
		PatientName  string `json:"patientName" binding:"required"`
		PatientPhone string `json:"patientPhone" binding:"required"`
		Date         string `json:"date" binding:"required"`
		Time         string `json:"time" binding:"required"`
		Notes        string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	doctorID, err := primitive.ObjectIDFromHex(req.DoctorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
		return
	}
	if !validSlot(req.Date, req.Time) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date or time, use YYYY-MM-DD and HH:MM"})
		return
	}

	apt, err := h.Allocator.RegisterWalkIn(c.Request.Context(), services.WalkInRequest{
		DoctorID:     doctorID,
		PatientName:  req.PatientName,
		PatientPhone: req.PatientPhone,
		Date:         req.Date,
		Time:         req.Time,
		Notes:        req.Notes,
	})
	if err != nil {
		h.writeAllocationError(c, err)
		return
	}

	h.Hub.BroadcastQueueUpdate(ws.QueueUpdate{
		DoctorID:    apt.DoctorID.Hex(),
		Date:        apt.Date,
		Time:        apt.Time,
		QueueNumber: apt.QueueNumber,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Walk-in registered successfully",
		"appointment": apt,
	})
}

// --- RESCHEDULE (re-enters queue allocation for the new slot) ---
func (h *Handler) RescheduleAppointment(c *gin.Context) {
	appointmentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}

	var req struct {
		NewDate string `json:"newDate" binding:"required"`
		NewTime string `json:"newTime" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !validSlot(req.NewDate, req.NewTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date or time, use YYYY-MM-DD and HH:MM"})
		return
	}

	apt, err := h.Allocator.Reschedule(c.Request.Context(), appointmentID, req.NewDate, req.NewTime)
	if err != nil {
		h.writeAllocationError(c, err)
		return
	}

	h.Hub.BroadcastQueueUpdate(ws.QueueUpdate{
		DoctorID:    apt.DoctorID.Hex(),
		Date:        apt.Date,
		Time:        apt.Time,
		QueueNumber: apt.QueueNumber,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":     "Appointment rescheduled successfully",
		"appointment": apt,
	})
}

// --- CANCEL (queue number stays allocated) ---
func (h *Handler) CancelAppointment(c *gin.Context) {
	appointmentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := h.Allocator.Cancel(c.Request.Context(), appointmentID, req.Reason); err != nil {
		h.writeAllocationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled successfully"})
}

// --- DOCTOR APPOINTMENTS (ordered queue listing for dashboards) ---
func (h *Handler) GetDoctorAppointments(c *gin.Context) {
	doctorID, err := primitive.ObjectIDFromHex(c.Param("doctorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
		return
	}

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, use YYYY-MM-DD"})
		return
	}

	appointments, err := h.Store.ListAppointments(c.Request.Context(), doctorID, date, c.Query("time"))
	if err != nil {
		h.Log.WithError(err).Error("list appointments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if appointments == nil {
		appointments = make([]models.Appointment, 0)
	}

	c.JSON(http.StatusOK, appointments)
}

// writeAllocationError maps allocator failures onto distinguishable HTTP
// shapes: a transient booking failure the user should retry is not a
// validation error and not a not-found.
func (h *Handler) writeAllocationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrQueueAssignmentExhausted):
		c.JSON(http.StatusConflict, gin.H{"error": "Could not complete booking, please try again"})
	case errors.Is(err, services.ErrScopeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
	case errors.Is(err, services.ErrNotReschedulable), errors.Is(err, services.ErrNotCancellable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.Log.WithError(err).Error("allocation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func validSlot(date, timeSlot string) bool {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return false
	}
	if _, err := time.Parse("15:04", timeSlot); err != nil {
		return false
	}
	return true
}
