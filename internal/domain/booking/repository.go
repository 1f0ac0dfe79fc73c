package booking

import (
	"context"
	"time"

	"github.com/slotworks/salon-scheduler/internal/models"
)

type Repository interface {
	// -------- Branch --------
	GetBranchByID(
		ctx context.Context,
		id uint,
	) (*models.Branch, error)

	GetBranchBySlug(
		ctx context.Context,
		slug string,
	) (*models.Branch, error)

	// -------- Service --------
	GetService(
		ctx context.Context,
		branchID uint,
		serviceID uint,
	) (*models.Service, error)

	// -------- Staff --------
	GetStaff(
		ctx context.Context,
		branchID uint,
		staffID uint,
	) (*models.Staff, error)

	ListActiveStaff(
		ctx context.Context,
		branchID uint,
	) ([]models.Staff, error)

	// -------- Client --------
	GetOrCreateClient(
		ctx context.Context,
		branchID uint,
		name string,
		phone string,
		email string,
	) (*models.Client, error)

	// -------- Schedule / time off --------
	ListWeeklySchedules(
		ctx context.Context,
		staffID uint,
	) ([]models.WeeklySchedule, error)

	ReplaceWeeklySchedules(
		ctx context.Context,
		staffID uint,
		rows []models.WeeklySchedule,
	) error

	ListTimeOff(
		ctx context.Context,
		staffID uint,
		from time.Time,
		to time.Time,
	) ([]models.TimeOff, error)

	CreateTimeOff(
		ctx context.Context,
		off *models.TimeOff,
	) error

	DeleteTimeOff(
		ctx context.Context,
		staffID uint,
		timeOffID uint,
	) error

	// -------- Appointment (read) --------
	GetAppointmentByID(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	GetAppointmentByReference(
		ctx context.Context,
		reference string,
	) (*models.Appointment, error)

	// ListOpenAppointments returns pending/confirmed appointments of the
	// staff member intersecting [from, to), ordered by start.
	ListOpenAppointments(
		ctx context.Context,
		staffID uint,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	// ListAppointmentsForPeriod is the dashboard projection, with client
	// and service preloaded.
	ListAppointmentsForPeriod(
		ctx context.Context,
		staffID uint,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	ListStatusHistory(
		ctx context.Context,
		appointmentID uint,
	) ([]models.StatusHistory, error)

	// -------- Appointment (commit path) --------

	// CreateAppointmentIfFree inserts the appointment and its first
	// StatusHistory row in one transaction. The staff row is locked
	// FOR UPDATE first, so two concurrent commits for overlapping
	// intervals of the same staff member serialize: the loser sees the
	// winner's row and gets a ConflictError. busyFrom/busyTo is the
	// buffer-inflated interval to check against committed state.
	CreateAppointmentIfFree(
		ctx context.Context,
		ap *models.Appointment,
		busyFrom time.Time,
		busyTo time.Time,
		actor string,
	) error

	// UpdateAppointmentStatus saves the mutated appointment and appends a
	// history row atomically.
	UpdateAppointmentStatus(
		ctx context.Context,
		ap *models.Appointment,
		fromStatus string,
		actor string,
		reason string,
	) error

	// RescheduleAppointment moves the appointment under the same locking
	// discipline as CreateAppointmentIfFree and appends a history row.
	RescheduleAppointment(
		ctx context.Context,
		ap *models.Appointment,
		newStart time.Time,
		newEnd time.Time,
		busyFrom time.Time,
		busyTo time.Time,
		actor string,
	) error
}
