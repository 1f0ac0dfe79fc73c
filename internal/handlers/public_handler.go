package handlers

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/slotworks/salon-scheduler/internal/httperr"
	"github.com/slotworks/salon-scheduler/internal/httpresp"
	"github.com/slotworks/salon-scheduler/internal/models"
	"github.com/slotworks/salon-scheduler/internal/usecase/availability"
	ucbooking "github.com/slotworks/salon-scheduler/internal/usecase/booking"
	"github.com/slotworks/salon-scheduler/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

// PublicHandler serves the client-facing booking surface: branch resolved
// by slug, no staff scope, bookings addressed by opaque reference.
type PublicHandler struct {
	db *gorm.DB

	resolve *availability.Resolver
	commit  *ucbooking.CommitBooking
	cancel  *ucbooking.CancelBooking

	log *zap.Logger
}

func NewPublicHandler(
	db *gorm.DB,
	resolve *availability.Resolver,
	commit *ucbooking.CommitBooking,
	cancel *ucbooking.CancelBooking,
	log *zap.Logger,
) *PublicHandler {
	return &PublicHandler{
		db:      db,
		resolve: resolve,
		commit:  commit,
		cancel:  cancel,
		log:     log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type PublicCreateBookingRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ClientEmail string `json:"client_email"`

	// StaffID 0 means no preference; a concrete member is picked.
	StaffID   uint `json:"staff_id"`
	ServiceID uint `json:"service_id" binding:"required"`

	Date  string `json:"date" binding:"required"` // YYYY-MM-DD
	Time  string `json:"time" binding:"required"` // HH:mm
	Notes string `json:"notes"`
}

// ======================================================
// HELPERS
// ======================================================

func (h *PublicHandler) branchBySlug(c *gin.Context) (*models.Branch, bool) {
	slug := c.Param("slug")

	var branch models.Branch
	if err := h.db.Where("slug = ?", slug).First(&branch).Error; err != nil {
		httperr.NotFound(c, "branch_not_found", "branch not found")
		return nil, false
	}
	return &branch, true
}

// ======================================================
// SERVICES
// ======================================================

func (h *PublicHandler) ListServices(c *gin.Context) {
	branch, ok := h.branchBySlug(c)
	if !ok {
		return
	}

	category := strings.TrimSpace(strings.ToLower(c.Query("category")))
	query := strings.TrimSpace(strings.ToLower(c.Query("query")))

	q := h.db.Where("branch_id = ? AND active = true", branch.ID)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "could not list services")
		return
	}

	httpresp.OK(c, gin.H{
		"branch":   branch,
		"services": services,
	})
}

// ======================================================
// STAFF
// ======================================================

func (h *PublicHandler) ListStaff(c *gin.Context) {
	branch, ok := h.branchBySlug(c)
	if !ok {
		return
	}

	var staff []models.Staff
	if err := h.db.
		Omit("Branch").
		Where("branch_id = ? AND active = true", branch.ID).
		Order("id ASC").
		Find(&staff).Error; err != nil {
		httperr.Internal(c, "failed_to_list_staff", "could not list staff")
		return
	}

	httpresp.List(c, staff)
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *PublicHandler) Availability(c *gin.Context) {
	branch, ok := h.branchBySlug(c)
	if !ok {
		return
	}

	dateStr := c.Query("date")
	serviceIDStr := c.Query("service_id")
	staffIDStr := c.DefaultQuery("staff_id", "0")

	if dateStr == "" || serviceIDStr == "" {
		httperr.BadRequest(c, "missing_params", "date and service_id are required")
		return
	}

	serviceID, err := strconv.ParseUint(serviceIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "invalid service")
		return
	}

	staffID, err := strconv.ParseUint(staffIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_staff_id", "invalid staff member")
		return
	}

	date, err := parseDateInBranch(branch, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "invalid date")
		return
	}

	var service models.Service
	if err := h.db.
		Where("id = ? AND branch_id = ? AND active = true", serviceID, branch.ID).
		First(&service).Error; err != nil {
		httperr.BadRequest(c, "service_not_found", "invalid service")
		return
	}

	// A concrete staff_id must belong to this branch; the id space is
	// global, so an unchecked one would leak another branch's calendar.
	staffIDs := []uint{uint(staffID)}
	if staffID != uint64(ucbooking.AnyStaff) {
		var member models.Staff
		if err := h.db.
			Where("id = ? AND branch_id = ? AND active = true", staffID, branch.ID).
			First(&member).Error; err != nil {
			httperr.BadRequest(c, "staff_not_found", "invalid staff member")
			return
		}
	}

	// "Any staff": union of each member's availability for the day.
	if staffID == uint64(ucbooking.AnyStaff) {
		var members []models.Staff
		if err := h.db.
			Where("branch_id = ? AND active = true", branch.ID).
			Order("id ASC").
			Find(&members).Error; err != nil {
			httperr.Internal(c, "failed_to_list_staff", "could not list staff")
			return
		}
		staffIDs = staffIDs[:0]
		for _, m := range members {
			staffIDs = append(staffIDs, m.ID)
		}
	}

	seen := map[string]bool{}
	var starts []string
	for _, id := range staffIDs {
		slots, err := h.resolve.Execute(c.Request.Context(), availability.ResolveInput{
			Branch:             branch,
			StaffID:            id,
			ServiceDurationMin: service.DurationMin,
			Date:               date,
		})
		if err != nil {
			httperr.Domain(c, err)
			return
		}
		for _, s := range slots {
			hm := s.Format("15:04")
			if !seen[hm] {
				seen[hm] = true
				starts = append(starts, hm)
			}
		}
	}
	sort.Strings(starts)

	httpresp.OK(c, gin.H{
		"date":  dateStr,
		"slots": starts,
	})
}

// ======================================================
// CREATE BOOKING
// ======================================================

func (h *PublicHandler) CreateBooking(c *gin.Context) {
	branch, ok := h.branchBySlug(c)
	if !ok {
		return
	}

	var req PublicCreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "invalid payload")
		return
	}

	if req.ClientEmail != "" && !validators.IsEmailDomainValid(req.ClientEmail) {
		httperr.BadRequest(c, "invalid_email_domain", "email domain does not accept mail")
		return
	}

	ap, err := h.commit.Execute(c.Request.Context(), ucbooking.CommitBookingInput{
		BranchID:    branch.ID,
		StaffID:     req.StaffID,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ClientEmail: req.ClientEmail,
		ServiceID:   req.ServiceID,
		Date:        req.Date,
		Time:        req.Time,
		Notes:       req.Notes,
		Actor:       "client",
	})
	if err != nil {
		httperr.Domain(c, err)
		return
	}

	httpresp.Created(c, gin.H{
		"reference": ap.Reference,
		"starts_at": ap.StartsAt,
		"ends_at":   ap.EndsAt,
		"status":    ap.Status,
	})
}

// ======================================================
// BOOKING BY REFERENCE
// ======================================================

func (h *PublicHandler) GetBooking(c *gin.Context) {
	branch, ok := h.branchBySlug(c)
	if !ok {
		return
	}

	ap, ok := h.bookingByReference(c, branch)
	if !ok {
		return
	}

	httpresp.OK(c, gin.H{
		"reference": ap.Reference,
		"starts_at": ap.StartsAt,
		"ends_at":   ap.EndsAt,
		"status":    ap.Status,
	})
}

func (h *PublicHandler) CancelBooking(c *gin.Context) {
	branch, ok := h.branchBySlug(c)
	if !ok {
		return
	}

	ap, ok := h.bookingByReference(c, branch)
	if !ok {
		return
	}

	cancelled, err := h.cancel.Execute(
		c.Request.Context(),
		branch.ID,
		ap.ID,
		"client",
		"cancelled by client",
	)
	if err != nil {
		httperr.Domain(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"reference": cancelled.Reference,
		"status":    cancelled.Status,
	})
}

func (h *PublicHandler) bookingByReference(
	c *gin.Context,
	branch *models.Branch,
) (*models.Appointment, bool) {

	reference := c.Param("reference")

	var ap models.Appointment
	if err := h.db.
		Where("reference = ? AND branch_id = ?", reference, branch.ID).
		First(&ap).Error; err != nil {
		httperr.NotFound(c, "booking_not_found", "booking not found")
		return nil, false
	}
	return &ap, true
}
