package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medibook/booking-api/internal/handlers"
	"github.com/medibook/booking-api/internal/middleware"
	"github.com/medibook/booking-api/internal/services"
	"github.com/medibook/booking-api/internal/store"
	"github.com/medibook/booking-api/internal/ws"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment variables.")
	}

	// --- Database Connection ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(os.Getenv("MONGO_URI")))
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(ctx)
	db := client.Database(os.Getenv("MONGO_DATABASE"))
	log.Info("Successfully connected to MongoDB")

	// The unique queue-number index must exist before any booking is served;
	// without it concurrent bookings could be assigned duplicate numbers.
	mongoStore := store.NewMongoStore(db)
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Fatal("Failed to create appointment indexes")
	}

	// --- Initialize Services ---
	allocator := services.NewQueueAllocator(mongoStore, log)
	estimator := services.NewQueueEstimator(minutesPerPatient())

	hub := ws.NewHub(log)
	go hub.Run()

	// --- Initialize Handlers ---
	h := handlers.NewHandler(mongoStore, allocator, estimator, hub, log)

	// --- Gin Router ---
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	// --- Routes ---
	apiRoutes := r.Group("/api")
	{
		apiRoutes.POST("/appointments", h.BookAppointment)
		apiRoutes.POST("/walk-ins", h.RegisterWalkIn)
		apiRoutes.PUT("/appointments/:id/reschedule", h.RescheduleAppointment)
		apiRoutes.PUT("/appointments/:id/cancel", h.CancelAppointment)
		apiRoutes.GET("/doctor-appointments/:doctorId", h.GetDoctorAppointments)
		apiRoutes.GET("/queue-status/:doctorId", h.GetQueueStatus)
	}
	r.GET("/ws/queue", ws.ServeWS(hub))

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("Starting server")
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func minutesPerPatient() int {
	raw := os.Getenv("QUEUE_MINUTES_PER_PATIENT")
	if raw == "" {
		return 0 // estimator falls back to its default
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
