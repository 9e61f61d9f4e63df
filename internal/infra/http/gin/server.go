package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"hotelbook/internal/infra/config"
	"hotelbook/internal/infra/obs"
)

type HotelHTTP interface {
	Search(c *gin.Context)
	Get(c *gin.Context)
	RoomAvailability(c *gin.Context)
	RoomComments(c *gin.Context)
}

type ReservationHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Cancel(c *gin.Context)
	Mine(c *gin.Context)
	AddComment(c *gin.Context)
	Comments(c *gin.Context)
}

type AdminHTTP interface {
	ListReservations(c *gin.Context)
	UpdateReservation(c *gin.Context)
	DeleteReservation(c *gin.Context)
	ExportReservations(c *gin.Context)
	CreateHotel(c *gin.Context)
	UpdateHotel(c *gin.Context)
	DeleteHotel(c *gin.Context)
	ListRooms(c *gin.Context)
	CreateRoom(c *gin.Context)
	UpdateRoom(c *gin.Context)
	DeleteRoom(c *gin.Context)
	ListClients(c *gin.Context)
	DeleteClient(c *gin.Context)
}

type Handlers struct {
	Auth           AuthHTTP
	Hotels         HotelHTTP
	Reservations   ReservationHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
	// RateLimit guards the endpoints that create accounts and reservations.
	RateLimit gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the gin engine without touching the global gin mode.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}
	limited := h.RateLimit
	if limited == nil {
		limited = func(c *gin.Context) { c.Next() }
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", limited, h.Auth.Register)
		api.POST("/auth/login", limited, h.Auth.Login)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Hotels != nil {
		api.GET("/hotels", h.Hotels.Search)
		api.GET("/hotels/:id", h.Hotels.Get)
		api.GET("/rooms/:id/availability", h.Hotels.RoomAvailability)
		api.GET("/rooms/:id/comments", h.Hotels.RoomComments)
	}
	if h.Reservations != nil {
		api.POST("/reservations", limited, h.Reservations.Create)
		api.GET("/reservations/:id", h.Reservations.Get)
		api.DELETE("/reservations/:id", h.Reservations.Cancel)
		api.GET("/reservations/:id/comments", h.Reservations.Comments)
		api.POST("/reservations/:id/comments", h.Reservations.AddComment)
		api.GET("/me/reservations", h.Reservations.Mine)
	}
	if h.Admin != nil {
		admin := api.Group("/admin")
		admin.GET("/reservations", h.Admin.ListReservations)
		admin.POST("/reservations/export", h.Admin.ExportReservations)
		admin.PUT("/reservations/:id", h.Admin.UpdateReservation)
		admin.DELETE("/reservations/:id", h.Admin.DeleteReservation)
		admin.POST("/hotels", h.Admin.CreateHotel)
		admin.PUT("/hotels/:id", h.Admin.UpdateHotel)
		admin.DELETE("/hotels/:id", h.Admin.DeleteHotel)
		admin.POST("/hotels/:id/rooms", h.Admin.CreateRoom)
		admin.GET("/rooms", h.Admin.ListRooms)
		admin.PUT("/rooms/:id", h.Admin.UpdateRoom)
		admin.DELETE("/rooms/:id", h.Admin.DeleteRoom)
		admin.GET("/clients", h.Admin.ListClients)
		admin.DELETE("/clients/:id", h.Admin.DeleteClient)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
