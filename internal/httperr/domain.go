package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/slotworks/salon-scheduler/internal/domain/booking"
)

// Domain writes the HTTP rendition of a scheduling domain error:
// policy violations are 400, conflicts 409, missing entities 404 and
// transient storage failures 503. Anything else is a 500.
func Domain(c *gin.Context, err error) {
	var policyErr domain.PolicyViolationError
	if errors.As(err, &policyErr) {
		Write(c, http.StatusBadRequest, policyErr.Rule, "request violates a booking policy")
		return
	}

	var conflictErr domain.ConflictError
	if errors.As(err, &conflictErr) {
		Write(c, http.StatusConflict, conflictErr.Code, "requested slot is not available")
		return
	}

	var notFoundErr domain.NotFoundError
	if errors.As(err, &notFoundErr) {
		Write(c, http.StatusNotFound, notFoundErr.Error(), "resource not found")
		return
	}

	if domain.IsTransient(err) {
		Unavailable(c, "storage_busy", "temporary storage contention, retry shortly")
		return
	}

	Internal(c, "internal_error", "unexpected error")
}
