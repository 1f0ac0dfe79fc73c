package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/slotworks/salon-scheduler/internal/domain/booking"
	"github.com/slotworks/salon-scheduler/internal/domain/schedule"
	"github.com/slotworks/salon-scheduler/internal/httperr"
	"github.com/slotworks/salon-scheduler/internal/httpresp"
	"github.com/slotworks/salon-scheduler/internal/middleware"
	"github.com/slotworks/salon-scheduler/internal/models"
	"github.com/slotworks/salon-scheduler/internal/usecase/availability"
)

// ======================================================
// HANDLER
// ======================================================

type ScheduleHandler struct {
	repo    domain.Repository
	resolve *availability.Resolver
}

func NewScheduleHandler(
	repo domain.Repository,
	resolve *availability.Resolver,
) *ScheduleHandler {
	return &ScheduleHandler{
		repo:    repo,
		resolve: resolve,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type WeeklyWindowConfig struct {
	Weekday   int    `json:"weekday" binding:"min=0,max=6"`
	Active    bool   `json:"active"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type WeeklyScheduleUpdateRequest struct {
	Windows []WeeklyWindowConfig `json:"windows" binding:"required"`
}

type CreateTimeOffRequest struct {
	StartsAt time.Time `json:"starts_at" binding:"required"`
	EndsAt   time.Time `json:"ends_at" binding:"required"`
	Reason   string    `json:"reason"`
}

// ======================================================
// WEEKLY SCHEDULE
// ======================================================

func (h *ScheduleHandler) GetWeekly(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextStaffID).(uint)

	rows, err := h.repo.ListWeeklySchedules(c.Request.Context(), staffID)
	if err != nil {
		httperr.Domain(c, err)
		return
	}

	httpresp.List(c, rows)
}

// UpdateWeekly replaces the whole recurring set. Partial edits invite
// drifting state on the widget side; the full set is cheap to resend.
func (h *ScheduleHandler) UpdateWeekly(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextStaffID).(uint)

	var req WeeklyScheduleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "invalid payload")
		return
	}

	rows := make([]models.WeeklySchedule, 0, len(req.Windows))
	for _, w := range req.Windows {
		if w.Active {
			start := schedule.ParseHM(w.StartTime)
			end := schedule.ParseHM(w.EndTime)
			if start < 0 || end < 0 || start >= end {
				httperr.BadRequest(c, "invalid_window", "start_time must precede end_time, HH:mm")
				return
			}
		}

		rows = append(rows, models.WeeklySchedule{
			StaffID:   staffID,
			Weekday:   w.Weekday,
			Active:    w.Active,
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
		})
	}

	if err := h.repo.ReplaceWeeklySchedules(c.Request.Context(), staffID, rows); err != nil {
		httperr.Domain(c, err)
		return
	}

	httpresp.OK(c, gin.H{"status": "ok"})
}

// ======================================================
// TIME OFF
// ======================================================

func (h *ScheduleHandler) ListTimeOff(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextStaffID).(uint)

	from := time.Now().AddDate(0, -1, 0)
	to := time.Now().AddDate(0, 3, 0)

	if fromStr := c.Query("from"); fromStr != "" {
		if parsed, err := time.Parse("2006-01-02", fromStr); err == nil {
			from = parsed
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		if parsed, err := time.Parse("2006-01-02", toStr); err == nil {
			to = parsed.AddDate(0, 0, 1)
		}
	}

	offs, err := h.repo.ListTimeOff(c.Request.Context(), staffID, from, to)
	if err != nil {
		httperr.Domain(c, err)
		return
	}

	httpresp.List(c, offs)
}

func (h *ScheduleHandler) CreateTimeOff(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextStaffID).(uint)

	var req CreateTimeOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "invalid payload")
		return
	}

	off := &models.TimeOff{
		StaffID:  staffID,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Reason:   req.Reason,
	}

	if err := h.repo.CreateTimeOff(c.Request.Context(), off); err != nil {
		httperr.Domain(c, err)
		return
	}

	httpresp.Created(c, off)
}

func (h *ScheduleHandler) DeleteTimeOff(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextStaffID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "invalid time off id")
		return
	}

	if err := h.repo.DeleteTimeOff(c.Request.Context(), staffID, uint(id)); err != nil {
		httperr.Domain(c, err)
		return
	}

	httpresp.NoContent(c)
}

// ======================================================
// AVAILABILITY (STAFF VIEW)
// ======================================================

func (h *ScheduleHandler) Availability(c *gin.Context) {
	branchID := c.MustGet(middleware.ContextBranchID).(uint)
	staffID := c.MustGet(middleware.ContextStaffID).(uint)

	dateStr := c.Query("date")
	serviceIDStr := c.Query("service_id")
	if dateStr == "" || serviceIDStr == "" {
		httperr.BadRequest(c, "missing_params", "date and service_id are required")
		return
	}

	serviceID, err := strconv.ParseUint(serviceIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "invalid service")
		return
	}

	branch, err := h.repo.GetBranchByID(c.Request.Context(), branchID)
	if err != nil {
		httperr.Domain(c, err)
		return
	}

	service, err := h.repo.GetService(c.Request.Context(), branchID, uint(serviceID))
	if err != nil {
		httperr.Domain(c, err)
		return
	}

	date, err := parseDateInBranch(branch, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "invalid date")
		return
	}

	slots, err := h.resolve.Execute(c.Request.Context(), availability.ResolveInput{
		Branch:             branch,
		StaffID:            staffID,
		ServiceDurationMin: service.DurationMin,
		Date:               date,
	})
	if err != nil {
		httperr.Domain(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"date":  dateStr,
		"slots": slotDTOs(slots, service.DurationMin),
	})
}
