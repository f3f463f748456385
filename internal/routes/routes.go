package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-marketplace/internal/audit"
	"github.com/BruksfildServices01/barber-marketplace/internal/config"
	"github.com/BruksfildServices01/barber-marketplace/internal/constraints"
	"github.com/BruksfildServices01/barber-marketplace/internal/handlers"
	infraRepo "github.com/BruksfildServices01/barber-marketplace/internal/infra/repository"
	"github.com/BruksfildServices01/barber-marketplace/internal/middleware"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
	"github.com/BruksfildServices01/barber-marketplace/internal/notify"
	"github.com/BruksfildServices01/barber-marketplace/internal/payments"
	"github.com/BruksfildServices01/barber-marketplace/internal/session"
	"github.com/BruksfildServices01/barber-marketplace/internal/settlement"
	"github.com/BruksfildServices01/barber-marketplace/internal/storage"
	ucBooking "github.com/BruksfildServices01/barber-marketplace/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)
	constraintStore := constraints.NewStore(db)
	sessions := session.NewManager(cfg.JWTSecret)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)
	notifier := notify.NewDispatcher(db)

	provider := payments.NewStripeProvider(cfg.StripeSecretKey)
	objectStore := storage.NewObjectStore(cfg)

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}

	reconciler := settlement.NewReconciler(
		db,
		bookingRepo,
		notifier,
		rdb,
		cfg.PlatformFeePercent,
	)

	// ======================================================
	// BOOKING USE CASES
	// ======================================================
	admissionChecker := ucBooking.NewAdmissionChecker(bookingRepo, constraintStore)

	createBookingUC := ucBooking.NewCreateBooking(
		bookingRepo,
		admissionChecker,
		notifier,
		auditDispatcher,
		cfg.PlatformFeePercent,
	)

	updateBookingUC := ucBooking.NewUpdateBooking(
		bookingRepo,
		admissionChecker,
		notifier,
		auditDispatcher,
	)

	cancelBookingUC := ucBooking.NewCancelBooking(
		bookingRepo,
		notifier,
		auditDispatcher,
	)

	completeBookingUC := ucBooking.NewCompleteBooking(
		bookingRepo,
		notifier,
		auditDispatcher,
	)

	listBookingsUC := ucBooking.NewListBookings(bookingRepo)

	availabilityUC := ucBooking.NewGetAvailability(bookingRepo, constraintStore)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, sessions, constraintStore)
	meHandler := handlers.NewMeHandler(db)
	serviceHandler := handlers.NewServiceHandler(db)
	constraintsHandler := handlers.NewConstraintsHandler(constraintStore)
	clientHandler := handlers.NewClientHandler(db)
	notificationHandler := handlers.NewNotificationHandler(db)
	payoutHandler := handlers.NewPayoutHandler(db, provider)
	profileHandler := handlers.NewProfileHandler(db, objectStore)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	bookingHandler := handlers.NewBookingHandler(
		db,
		createBookingUC,
		updateBookingUC,
		cancelBookingUC,
		completeBookingUC,
		listBookingsUC,
	)

	publicHandler := handlers.NewPublicHandler(
		db,
		cfg,
		provider,
		createBookingUC,
		availabilityUC,
	)

	webhookHandler := handlers.NewWebhookHandler(cfg, reconciler)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/barbers", publicHandler.ListBarbers)
			publicAPI.GET("/barbers/:barberId/services", publicHandler.ListServices)
			publicAPI.GET("/barbers/:barberId/availability", publicHandler.Availability)
			publicAPI.POST("/bookings", publicHandler.CreateBooking)
		}

		// ------------------------------
		// WEBHOOKS
		// ------------------------------
		api.POST("/webhooks/stripe", webhookHandler.HandleStripe)

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)

		// ------------------------------
		// PRIVATE (ANY ROLE)
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(sessions))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.PATCH("/me", meHandler.UpdateMe)
			secured.POST("/me/photo", profileHandler.UploadPhoto)

			secured.GET("/me/notifications", notificationHandler.List)
			secured.PATCH("/me/notifications/:id/read", notificationHandler.MarkRead)
			secured.PATCH("/me/notifications/read-all", notificationHandler.MarkAllRead)

			secured.GET("/me/audit-logs", auditLogsHandler.List)

			// Authenticated clients book through the public checkout flow so
			// the metadata carries their account.
			secured.POST("/client/bookings", publicHandler.CreateBooking)
			secured.GET("/client/bookings", clientHandler.MyBookings)
		}

		// ------------------------------
		// PRIVATE (BARBER ONLY)
		// ------------------------------
		barber := api.Group("/")
		barber.Use(middleware.AuthMiddleware(sessions), middleware.RequireRole(models.RoleBarber))
		{
			barber.GET("/me/services", serviceHandler.List)
			barber.POST("/me/services", serviceHandler.Create)
			barber.PATCH("/me/services/:id", serviceHandler.Update)

			barber.GET("/me/constraints", constraintsHandler.Get)
			barber.PUT("/me/constraints", constraintsHandler.Update)
			barber.POST("/me/constraints/reset", constraintsHandler.Reset)

			barber.GET("/me/slot-templates", constraintsHandler.ListTemplates)
			barber.POST("/me/slot-templates", constraintsHandler.CreateTemplate)
			barber.PUT("/me/slot-templates/:id", constraintsHandler.UpdateTemplate)
			barber.DELETE("/me/slot-templates/:id", constraintsHandler.DeleteTemplate)

			barber.GET("/me/availability", constraintsHandler.GetAvailability)
			barber.PUT("/me/availability", constraintsHandler.ReplaceAvailability)

			barber.POST("/me/bookings", bookingHandler.Create)
			barber.GET("/me/bookings", bookingHandler.ListByDate)
			barber.GET("/me/bookings/month", bookingHandler.ListByMonth)
			barber.PATCH("/me/bookings/:id", bookingHandler.Update)
			barber.PATCH("/me/bookings/:id/cancel", bookingHandler.Cancel)
			barber.PATCH("/me/bookings/:id/complete", bookingHandler.Complete)

			barber.POST("/me/payout/connect", payoutHandler.Connect)
			barber.GET("/me/payout/status", payoutHandler.Status)
		}
	}
}
