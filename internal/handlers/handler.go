package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/medibook/booking-api/internal/services"
	"github.com/medibook/booking-api/internal/store"
	"github.com/medibook/booking-api/internal/ws"
)

type Handler struct {
	Store     store.AppointmentStore
	Allocator *services.QueueAllocator
	Estimator *services.QueueEstimator
	Hub       *ws.Hub
	Log       *logrus.Logger
}

func NewHandler(st store.AppointmentStore, allocator *services.QueueAllocator, estimator *services.QueueEstimator, hub *ws.Hub, log *logrus.Logger) *Handler {
	return &Handler{
		Store:     st,
		Allocator: allocator,
		Estimator: estimator,
		Hub:       hub,
		Log:       log,
	}
}
