package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hotel-reservation/config"
	"hotel-reservation/controllers"
	"hotel-reservation/models"
	"hotel-reservation/routes"
	"hotel-reservation/services"
	"hotel-reservation/utils"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("❌ ERROR: JWT_SECRET environment variable is not set. Cannot issue or verify tokens.")
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("❌ config.DB is nil after ConnectDatabase()")
	}
	log.Println("✅ Database connection established and migrations applied.")

	redisClient, err := config.NewRedisClient()
	if err != nil {
		log.Fatalf("❌ Redis connect failed: %v", err)
	}
	log.Println("✅ Redis connection established.")

	// Initialize services
	availabilityService := services.NewAvailabilityService(db)
	reservationService := services.NewReservationService(db, availabilityService)

	paymentWindow := utils.EnvDuration("PAYMENT_WINDOW", 5*time.Minute)
	paymentStore := services.NewRedisPaymentStore(redisClient, paymentWindow)
	paymentMachine := services.NewPaymentMachine(paymentStore, reservationService, notifyBookingConfirmed)

	// Initialize controllers
	authController := controllers.NewAuthController(jwtSecret)
	bookingController := controllers.NewBookingController(reservationService, availabilityService)
	paymentController := controllers.NewPaymentController(paymentMachine)

	router := routes.SetupRouter(authController, bookingController, paymentController, jwtSecret)

	addr := ":" + utils.EnvOrDefault("PORT", "8080")

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
		// useful timeouts; the SSE watch stream needs the write timeout to
		// outlive the payment window
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      paymentWindow + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

// notifyBookingConfirmed is the fire-and-forget follow-up after a confirmed
// payment allocated its rooms. Email failure never affects the reservations.
func notifyBookingConfirmed(req services.AllocationRequest, reservations []models.Reservation) {
	_ = utils.SendBookingConfirmedEmail(utils.BookingEmailData{
		To:            req.Email,
		UserName:      req.Name,
		RoomType:      req.RoomType,
		NumberOfRooms: len(reservations),
		CheckinDate:   req.CheckinDate.Format("2006-01-02"),
		CheckoutDate:  req.CheckoutDate.Format("2006-01-02"),
		TotalPrice:    req.TotalPrice,
		DepositPaid:   req.DepositPaid,
		IsDeposit:     req.DepositPaid > 0 && req.DepositPaid < req.TotalPrice,
	})
}
