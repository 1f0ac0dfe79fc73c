package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/slotworks/salon-scheduler/internal/audit"
	"github.com/slotworks/salon-scheduler/internal/handlers"
	infraRepo "github.com/slotworks/salon-scheduler/internal/infra/repository"
	"github.com/slotworks/salon-scheduler/internal/lifecycle"
	"github.com/slotworks/salon-scheduler/internal/middleware"
	"github.com/slotworks/salon-scheduler/internal/usecase/availability"
	ucBooking "github.com/slotworks/salon-scheduler/internal/usecase/booking"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	sched lifecycle.Scheduler,
	log *zap.Logger,
) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	repo := infraRepo.NewSchedulingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, log)

	// ======================================================
	// USE CASES
	// ======================================================
	resolveUC := availability.NewResolver(repo)

	commitUC := ucBooking.NewCommitBooking(repo, sched, auditDispatcher, log)
	confirmUC := ucBooking.NewConfirmBooking(repo, auditDispatcher)
	cancelUC := ucBooking.NewCancelBooking(repo, sched, auditDispatcher, log)
	completeUC := ucBooking.NewCompleteBooking(repo, auditDispatcher)
	noShowUC := ucBooking.NewMarkNoShow(repo, sched, auditDispatcher, log)
	rescheduleUC := ucBooking.NewRescheduleBooking(repo, sched, auditDispatcher, log)

	listByDateUC := ucBooking.NewListAppointmentsByDate(repo)
	listByMonthUC := ucBooking.NewListAppointmentsByMonth(repo)

	// ======================================================
	// HANDLERS
	// ======================================================
	publicHandler := handlers.NewPublicHandler(db, resolveUC, commitUC, cancelUC, log)

	appointmentHandler := handlers.NewAppointmentHandler(
		repo,
		commitUC,
		confirmUC,
		cancelUC,
		completeUC,
		noShowUC,
		rescheduleUC,
		listByDateUC,
		listByMonthUC,
	)

	scheduleHandler := handlers.NewScheduleHandler(repo, resolveUC)
	serviceHandler := handlers.NewServiceHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC (CLIENT-FACING)
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/staff", publicHandler.ListStaff)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/:slug/bookings", publicHandler.CreateBooking)
			publicAPI.GET("/:slug/bookings/:reference", publicHandler.GetBooking)
			publicAPI.PATCH("/:slug/bookings/:reference/cancel", publicHandler.CancelBooking)
		}

		// ------------------------------
		// BRANCH (STAFF-FACING)
		// ------------------------------
		branchAPI := api.Group("/")
		branchAPI.Use(middleware.BranchScope())
		{
			branchAPI.GET("/services", serviceHandler.List)
			branchAPI.POST("/services", serviceHandler.Create)
			branchAPI.PATCH("/services/:id", serviceHandler.Update)

			branchAPI.GET("/clients", clientHandler.List)
			branchAPI.GET("/audit-logs", auditLogsHandler.List)

			// ------------------------------
			// STAFF-SCOPED
			// ------------------------------
			staffAPI := branchAPI.Group("/me")
			staffAPI.Use(middleware.StaffScope())
			{
				staffAPI.GET("/schedule", scheduleHandler.GetWeekly)
				staffAPI.PUT("/schedule", scheduleHandler.UpdateWeekly)

				staffAPI.GET("/time-off", scheduleHandler.ListTimeOff)
				staffAPI.POST("/time-off", scheduleHandler.CreateTimeOff)
				staffAPI.DELETE("/time-off/:id", scheduleHandler.DeleteTimeOff)

				staffAPI.GET("/availability", scheduleHandler.Availability)

				staffAPI.POST("/appointments", appointmentHandler.Create)
				staffAPI.GET("/appointments", appointmentHandler.ListByDate)
				staffAPI.GET("/appointments/month", appointmentHandler.ListByMonth)
				staffAPI.GET("/appointments/:id/history", appointmentHandler.History)
				staffAPI.PATCH("/appointments/:id/confirm", appointmentHandler.Confirm)
				staffAPI.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
				staffAPI.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
				staffAPI.PATCH("/appointments/:id/no-show", appointmentHandler.NoShow)
				staffAPI.PATCH("/appointments/:id/reschedule", appointmentHandler.Reschedule)
			}
		}
	}
}
