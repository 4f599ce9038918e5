package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- QUEUE STATUS (read side) ---
// GET /api/queue-status/:doctorId?date=YYYY-MM-DD&time=HH:MM&appointmentId=...
//
// Position and wait are recomputed from the stored queue numbers on every
// call; two calls without an intervening write return the same answer.
func (h *Handler) GetQueueStatus(c *gin.Context) {
	doctorID, err := primitive.ObjectIDFromHex(c.Param("doctorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
		return
	}

	date := c.Query("date")
	timeSlot := c.Query("time")
	if date == "" || timeSlot == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and time query parameters are required"})
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, use YYYY-MM-DD"})
		return
	}

	// Target is optional: without it the caller is treated as last in line.
	var target primitive.ObjectID
	if hex := c.Query("appointmentId"); hex != "" {
		target, err = primitive.ObjectIDFromHex(hex)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
			return
		}
	}

	appointments, err := h.Store.ListAppointments(c.Request.Context(), doctorID, date, timeSlot)
	if err != nil {
		h.Log.WithError(err).Error("list appointments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	estimate := h.Estimator.EstimatePosition(appointments, target, timeSlot)
	c.JSON(http.StatusOK, gin.H{
		"doctorId":  c.Param("doctorId"),
		"date":      date,
		"time":      timeSlot,
		"queueSize": len(appointments),
		"estimate":  estimate,
	})
}
