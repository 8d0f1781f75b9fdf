package server

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/aquastaff/pool-reservation/internal/config"
	"github.com/aquastaff/pool-reservation/internal/service"
)

// Server — HTTP-админка поверх бизнес-сервисов. Права проверяются в
// сервисах, сервер только аутентифицирует и транслирует ошибки в коды
// ответов.
type Server struct {
	identity      *service.IdentityService
	slots         *service.SlotService
	bookings      *service.BookingService
	subscriptions *service.SubscriptionService

	jwtSecret string
	jwtTTL    time.Duration
	bootstrap *config.BootstrapConfig
}

func New(
	identity *service.IdentityService,
	slots *service.SlotService,
	bookings *service.BookingService,
	subscriptions *service.SubscriptionService,
	cfg *config.AdminConfig,
	bootstrap *config.BootstrapConfig,
) *Server {
	return &Server{
		identity:      identity,
		slots:         slots,
		bookings:      bookings,
		subscriptions: subscriptions,
		jwtSecret:     cfg.JWTSecret,
		jwtTTL:        time.Duration(cfg.JWTTTLMinutes) * time.Minute,
		bootstrap:     bootstrap,
	}
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// Register навешивает маршруты и валидатор на экземпляр echo.
func (s *Server) Register(e *echo.Echo) {
	e.Validator = &requestValidator{validate: validator.New()}

	api := e.Group("/api/v1")
	api.POST("/auth/login", s.login)

	auth := api.Group("", s.jwtAuth)

	auth.GET("/staff", s.listStaff)
	auth.POST("/staff", s.createStaff)
	auth.POST("/staff/:id/deactivate", s.deactivateStaff)
	auth.GET("/roles", s.listRoles)

	auth.GET("/clients", s.listClients)
	auth.POST("/clients", s.registerClient)
	auth.GET("/clients/:id/subscription", s.subscriptionHistory)
	auth.POST("/clients/:id/subscription/add", s.subscriptionAdd)
	auth.POST("/clients/:id/subscription/subtract", s.subscriptionSubtract)
	auth.GET("/clients/:id/visits", s.listVisits)

	auth.GET("/slots", s.listSlots)
	auth.POST("/slots", s.createSlot)
	auth.POST("/slots/:id/close", s.closeSlot)
	auth.DELETE("/slots/:id", s.deleteSlot)
	auth.POST("/slots/bootstrap", s.bootstrapSlots)

	auth.GET("/bookings", s.listBookings)
	auth.POST("/bookings", s.createBooking)
	auth.POST("/bookings/:id/confirm", s.confirmBooking)
	auth.POST("/bookings/:id/cancel", s.cancelBooking)
	auth.POST("/bookings/:id/complete", s.completeVisit)
	auth.POST("/bookings/:id/cancel-visit", s.cancelVisit)
}
