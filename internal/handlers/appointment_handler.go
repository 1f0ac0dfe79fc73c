package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/slotworks/salon-scheduler/internal/domain/booking"
	"github.com/slotworks/salon-scheduler/internal/dto"
	"github.com/slotworks/salon-scheduler/internal/httperr"
	"github.com/slotworks/salon-scheduler/internal/httpresp"
	"github.com/slotworks/salon-scheduler/internal/middleware"
	ucbooking "github.com/slotworks/salon-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	repo domain.Repository

	commit      *ucbooking.CommitBooking
	confirm     *ucbooking.ConfirmBooking
	cancel      *ucbooking.CancelBooking
	complete    *ucbooking.CompleteBooking
	noShow      *ucbooking.MarkNoShow
	reschedule  *ucbooking.RescheduleBooking
	listByDate  *ucbooking.ListAppointmentsByDate
	listByMonth *ucbooking.ListAppointmentsByMonth
}

func NewAppointmentHandler(
	repo domain.Repository,
	commit *ucbooking.CommitBooking,
	confirm *ucbooking.ConfirmBooking,
	cancel *ucbooking.CancelBooking,
	complete *ucbooking.CompleteBooking,
	noShow *ucbooking.MarkNoShow,
	reschedule *ucbooking.RescheduleBooking,
	listByDate *ucbooking.ListAppointmentsByDate,
	listByMonth *ucbooking.ListAppointmentsByMonth,
) *AppointmentHandler {
	return &AppointmentHandler{
		repo:        repo,
		commit:      commit,
		confirm:     confirm,
		cancel:      cancel,
		complete:    complete,
		noShow:      noShow,
		reschedule:  reschedule,
		listByDate:  listByDate,
		listByMonth: listByMonth,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ClientEmail string `json:"client_email"`
	ServiceID   uint   `json:"service_id" binding:"required"`
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	Time        string `json:"time" binding:"required"` // HH:mm
	Notes       string `json:"notes"`
}

type RescheduleAppointmentRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

type StatusChangeRequest struct {
	Reason string `json:"reason"`
}

// ======================================================
// HELPERS
// ======================================================

func scopeIDs(c *gin.Context) (branchID uint, staffID uint) {
	branchID = c.MustGet(middleware.ContextBranchID).(uint)
	staffID = c.MustGet(middleware.ContextStaffID).(uint)
	return
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "invalid appointment id")
		return 0, false
	}
	return uint(id), true
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	branchID, staffID := scopeIDs(c)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "invalid payload")
		return
	}

	ap, err := h.commit.Execute(c.Request.Context(), ucbooking.CommitBookingInput{
		BranchID:    branchID,
		StaffID:     staffID,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ClientEmail: req.ClientEmail,
		ServiceID:   req.ServiceID,
		Date:        req.Date,
		Time:        req.Time,
		Notes:       req.Notes,
		Actor:       "staff",
	})
	if err != nil {
		httperr.Domain(c, err)
		return
	}

	httpresp.Created(c, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	branchID, staffID := scopeIDs(c)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "date is required")
		return
	}

	branch, err := h.repo.GetBranchByID(c.Request.Context(), branchID)
	if err != nil {
		httperr.Domain(c, err)
		return
	}

	date, err := parseDateInBranch(branch, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "invalid date")
		return
	}

	out, err := h.listByDate.Execute(c.Request.Context(), branchID, staffID, date)
	if err != nil {
		httperr.Domain(c, err)
		return
	}

	httpresp.List(c, out)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	branchID, staffID := scopeIDs(c)

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "invalid year")
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "invalid month")
		return
	}

	out, err := h.listByMonth.Execute(c.Request.Context(), branchID, staffID, year, month)
	if err != nil {
		httperr.Domain(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"year":         year,
		"month":        month,
		"appointments": out,
	})
}

// ======================================================
// TRANSITIONS
// ======================================================

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	branchID, _ := scopeIDs(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	ap, err := h.confirm.Execute(c.Request.Context(), branchID, id, "staff")
	if err != nil {
		httperr.Domain(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	branchID, _ := scopeIDs(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req StatusChangeRequest
	_ = c.ShouldBindJSON(&req)

	ap, err := h.cancel.Execute(c.Request.Context(), branchID, id, "staff", req.Reason)
	if err != nil {
		httperr.Domain(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	branchID, _ := scopeIDs(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	ap, err := h.complete.Execute(c.Request.Context(), branchID, id, "staff")
	if err != nil {
		httperr.Domain(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) NoShow(c *gin.Context) {
	branchID, _ := scopeIDs(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req StatusChangeRequest
	_ = c.ShouldBindJSON(&req)

	ap, err := h.noShow.Execute(c.Request.Context(), branchID, id, "staff", req.Reason)
	if err != nil {
		httperr.Domain(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	branchID, _ := scopeIDs(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "invalid payload")
		return
	}

	ap, err := h.reschedule.Execute(
		c.Request.Context(),
		branchID,
		id,
		req.Date,
		req.Time,
		"staff",
	)
	if err != nil {
		httperr.Domain(c, err)
		return
	}
	httpresp.OK(c, ap)
}

// ======================================================
// HISTORY
// ======================================================

func (h *AppointmentHandler) History(c *gin.Context) {
	branchID, _ := scopeIDs(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	ap, err := h.repo.GetAppointmentByID(c.Request.Context(), id)
	if err != nil || ap.BranchID != branchID {
		httperr.NotFound(c, "appointment_not_found", "appointment not found")
		return
	}

	rows, err := h.repo.ListStatusHistory(c.Request.Context(), ap.ID)
	if err != nil {
		httperr.Domain(c, err)
		return
	}

	out := make([]dto.StatusHistoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.StatusHistoryDTO{
			FromStatus: row.FromStatus,
			ToStatus:   row.ToStatus,
			Actor:      row.Actor,
			Reason:     row.Reason,
			CreatedAt:  row.CreatedAt,
		})
	}

	httpresp.List(c, out)
}
