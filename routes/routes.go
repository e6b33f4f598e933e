package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hotel-reservation/controllers"
	"hotel-reservation/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires the controller instances onto the gin engine.
func SetupRouter(
	ac *controllers.AuthController,
	bc *controllers.BookingController,
	pc *controllers.PaymentController,
	jwtSecret string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(), middleware.Metrics())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", ac.Login)
		}

		// catalog reads (pass-through, no business logic)
		api.GET("/hotels", controllers.GetHotels)
		api.GET("/room-types", controllers.GetRoomTypes)
		api.GET("/rooms", controllers.GetRooms)
		api.PATCH("/rooms/:id/status", middleware.RequireAuth(jwtSecret), controllers.UpdateRoomStatus)

		// availability is public: no side effects
		api.POST("/check-available-rooms", bc.CheckAvailableRooms)

		api.POST("/booking", middleware.RequireAuth(jwtSecret), bc.CreateBooking)

		bookings := api.Group("/bookings", middleware.RequireAuth(jwtSecret))
		{
			bookings.GET("", bc.GetBookings)
			bookings.GET("/user/:id", bc.GetUserBookings)
			bookings.DELETE("/:id", bc.CancelBooking)
		}

		payments := api.Group("/payment-sessions")
		{
			payments.POST("", middleware.RequireAuth(jwtSecret), pc.CreateSession)

			// read/confirm/watch only require the session id: the QR payload
			// is the shareable capability for the second device
			payments.GET("/:id", pc.GetSession)
			payments.PATCH("/:id", pc.UpdateStatus)
			payments.GET("/:id/watch", pc.WatchSession)
		}
	}

	return r
}
