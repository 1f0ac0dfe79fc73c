package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/slotworks/salon-scheduler/internal/domain/booking"
	"github.com/slotworks/salon-scheduler/internal/models"
)

var openStatuses = []string{
	string(domain.StatusPending),
	string(domain.StatusConfirmed),
}

type SchedulingGormRepository struct {
	db *gorm.DB

	// Row locking is the postgres discipline; the sqlite dialector used in
	// tests has no FOR UPDATE.
	locking bool
}

func NewSchedulingGormRepository(db *gorm.DB) *SchedulingGormRepository {
	return &SchedulingGormRepository{
		db:      db,
		locking: db.Dialector.Name() == "postgres",
	}
}

// mapStorageErr folds driver failures into the domain taxonomy. Domain
// errors pass through untouched.
func mapStorageErr(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsConflict(err) || domain.IsNotFound(err) ||
		domain.IsPolicyViolation(err, "") || domain.IsTransient(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23P01": // unique / exclusion violation
			return domain.ErrConflict("slot_taken")
		case "40001", "40P01": // serialization failure / deadlock
			return domain.ErrTransient(err)
		}
	}
	return err
}

// --------------------------------------------------
// Branch
// --------------------------------------------------

func (r *SchedulingGormRepository) GetBranchByID(
	ctx context.Context,
	id uint,
) (*models.Branch, error) {

	var branch models.Branch
	if err := r.db.WithContext(ctx).First(&branch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound("branch")
		}
		return nil, mapStorageErr(err)
	}
	return &branch, nil
}

func (r *SchedulingGormRepository) GetBranchBySlug(
	ctx context.Context,
	slug string,
) (*models.Branch, error) {

	var branch models.Branch
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&branch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound("branch")
		}
		return nil, mapStorageErr(err)
	}
	return &branch, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *SchedulingGormRepository) GetService(
	ctx context.Context,
	branchID uint,
	serviceID uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND branch_id = ?", serviceID, branchID).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound("service")
		}
		return nil, mapStorageErr(err)
	}
	return &service, nil
}

// --------------------------------------------------
// Staff
// --------------------------------------------------

func (r *SchedulingGormRepository) GetStaff(
	ctx context.Context,
	branchID uint,
	staffID uint,
) (*models.Staff, error) {

	var staff models.Staff
	if err := r.db.WithContext(ctx).
		Where("id = ? AND branch_id = ?", staffID, branchID).
		First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound("staff")
		}
		return nil, mapStorageErr(err)
	}
	return &staff, nil
}

func (r *SchedulingGormRepository) ListActiveStaff(
	ctx context.Context,
	branchID uint,
) ([]models.Staff, error) {

	var staff []models.Staff
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND active = ?", branchID, true).
		Order("id ASC").
		Find(&staff).Error; err != nil {
		return nil, mapStorageErr(err)
	}
	return staff, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *SchedulingGormRepository) GetOrCreateClient(
	ctx context.Context,
	branchID uint,
	name string,
	phone string,
	email string,
) (*models.Client, error) {

	var client models.Client
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND phone = ?", branchID, phone).
		First(&client).Error

	if err == nil {
		return &client, nil
	}

	client = models.Client{
		BranchID: branchID,
		Name:     name,
		Phone:    phone,
		Email:    email,
	}

	if err := r.db.WithContext(ctx).Create(&client).Error; err != nil {
		// A concurrent intake for the same phone got there first; the
		// unique (branch_id, phone) index turned the race into an error.
		// The existing row is what we wanted anyway.
		var existing models.Client
		if lookupErr := r.db.WithContext(ctx).
			Where("branch_id = ? AND phone = ?", branchID, phone).
			First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, mapStorageErr(err)
	}

	return &client, nil
}

// --------------------------------------------------
// Weekly schedule / time off
// --------------------------------------------------

func (r *SchedulingGormRepository) ListWeeklySchedules(
	ctx context.Context,
	staffID uint,
) ([]models.WeeklySchedule, error) {

	var rows []models.WeeklySchedule
	if err := r.db.WithContext(ctx).
		Where("staff_id = ?", staffID).
		Order("weekday ASC, start_time ASC").
		Find(&rows).Error; err != nil {
		return nil, mapStorageErr(err)
	}
	return rows, nil
}

func (r *SchedulingGormRepository) ReplaceWeeklySchedules(
	ctx context.Context,
	staffID uint,
	rows []models.WeeklySchedule,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("staff_id = ?", staffID).
			Delete(&models.WeeklySchedule{}).Error; err != nil {
			return err
		}

		for i := range rows {
			rows[i].ID = 0
			rows[i].StaffID = staffID
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	return mapStorageErr(err)
}

func (r *SchedulingGormRepository) ListTimeOff(
	ctx context.Context,
	staffID uint,
	from time.Time,
	to time.Time,
) ([]models.TimeOff, error) {

	var offs []models.TimeOff
	if err := r.db.WithContext(ctx).
		Where(
			"staff_id = ? AND starts_at < ? AND ends_at > ?",
			staffID, to, from,
		).
		Order("starts_at ASC").
		Find(&offs).Error; err != nil {
		return nil, mapStorageErr(err)
	}
	return offs, nil
}

func (r *SchedulingGormRepository) CreateTimeOff(
	ctx context.Context,
	off *models.TimeOff,
) error {
	if !off.StartsAt.Before(off.EndsAt) {
		return domain.ErrPolicy("invalid_time_off_range")
	}
	return mapStorageErr(r.db.WithContext(ctx).Create(off).Error)
}

func (r *SchedulingGormRepository) DeleteTimeOff(
	ctx context.Context,
	staffID uint,
	timeOffID uint,
) error {

	res := r.db.WithContext(ctx).
		Where("id = ? AND staff_id = ?", timeOffID, staffID).
		Delete(&models.TimeOff{})
	if res.Error != nil {
		return mapStorageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound("time_off")
	}
	return nil
}

// --------------------------------------------------
// Appointment (read)
// --------------------------------------------------

func (r *SchedulingGormRepository) GetAppointmentByID(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).First(&ap, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound("appointment")
		}
		return nil, mapStorageErr(err)
	}
	return &ap, nil
}

func (r *SchedulingGormRepository) GetAppointmentByReference(
	ctx context.Context,
	reference string,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&ap).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound("appointment")
		}
		return nil, mapStorageErr(err)
	}
	return &ap, nil
}

func (r *SchedulingGormRepository) ListOpenAppointments(
	ctx context.Context,
	staffID uint,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("id", "staff_id", "starts_at", "ends_at", "status").
		Where(
			"staff_id = ? AND status IN ? AND starts_at < ? AND ends_at > ?",
			staffID, openStatuses, to, from,
		).
		Order("starts_at ASC").
		Find(&apps).Error; err != nil {
		return nil, mapStorageErr(err)
	}
	return apps, nil
}

func (r *SchedulingGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	staffID uint,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where(
			"staff_id = ? AND starts_at >= ? AND starts_at < ?",
			staffID, from, to,
		).
		Order("starts_at ASC").
		Find(&apps).Error; err != nil {
		return nil, mapStorageErr(err)
	}
	return apps, nil
}

func (r *SchedulingGormRepository) ListStatusHistory(
	ctx context.Context,
	appointmentID uint,
) ([]models.StatusHistory, error) {

	var rows []models.StatusHistory
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, mapStorageErr(err)
	}
	return rows, nil
}

// --------------------------------------------------
// Appointment (commit path)
// --------------------------------------------------

// lockStaffRow serializes the commit path per staff member. Under postgres
// this is SELECT ... FOR UPDATE on the staff row, held until the
// transaction ends, so conflict check + insert are atomic against any other
// commit for the same staff member.
func (r *SchedulingGormRepository) lockStaffRow(tx *gorm.DB, staffID uint) error {
	q := tx.Model(&models.Staff{})
	if r.locking {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var staff models.Staff
	if err := q.Where("id = ?", staffID).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound("staff")
		}
		return err
	}
	return nil
}

// assertFree re-checks the committed state for [busyFrom, busyTo): open
// appointments (optionally excluding one being moved) and time off.
func (r *SchedulingGormRepository) assertFree(
	tx *gorm.DB,
	staffID uint,
	busyFrom time.Time,
	busyTo time.Time,
	excludeID uint,
) error {

	q := tx.Model(&models.Appointment{}).
		Where(
			"staff_id = ? AND status IN ? AND starts_at < ? AND ends_at > ?",
			staffID, openStatuses, busyTo, busyFrom,
		)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrConflict("slot_taken")
	}

	var offCount int64
	if err := tx.Model(&models.TimeOff{}).
		Where(
			"staff_id = ? AND starts_at < ? AND ends_at > ?",
			staffID, busyTo, busyFrom,
		).
		Count(&offCount).Error; err != nil {
		return err
	}
	if offCount > 0 {
		return domain.ErrConflict("staff_time_off")
	}

	return nil
}

func (r *SchedulingGormRepository) CreateAppointmentIfFree(
	ctx context.Context,
	ap *models.Appointment,
	busyFrom time.Time,
	busyTo time.Time,
	actor string,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockStaffRow(tx, ap.StaffID); err != nil {
			return err
		}

		if err := r.assertFree(tx, ap.StaffID, busyFrom, busyTo, 0); err != nil {
			return err
		}

		if err := tx.Create(ap).Error; err != nil {
			return err
		}

		return tx.Create(&models.StatusHistory{
			AppointmentID: ap.ID,
			FromStatus:    "",
			ToStatus:      ap.Status,
			Actor:         actor,
		}).Error
	})
	return mapStorageErr(err)
}

func (r *SchedulingGormRepository) UpdateAppointmentStatus(
	ctx context.Context,
	ap *models.Appointment,
	fromStatus string,
	actor string,
	reason string,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(ap).Error; err != nil {
			return err
		}

		return tx.Create(&models.StatusHistory{
			AppointmentID: ap.ID,
			FromStatus:    fromStatus,
			ToStatus:      ap.Status,
			Actor:         actor,
			Reason:        reason,
		}).Error
	})
	return mapStorageErr(err)
}

func (r *SchedulingGormRepository) RescheduleAppointment(
	ctx context.Context,
	ap *models.Appointment,
	newStart time.Time,
	newEnd time.Time,
	busyFrom time.Time,
	busyTo time.Time,
	actor string,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockStaffRow(tx, ap.StaffID); err != nil {
			return err
		}

		if err := r.assertFree(tx, ap.StaffID, busyFrom, busyTo, ap.ID); err != nil {
			return err
		}

		reason := fmt.Sprintf("rescheduled to %s", newStart.Format(time.RFC3339))
		ap.StartsAt = newStart
		ap.EndsAt = newEnd

		if err := tx.Save(ap).Error; err != nil {
			return err
		}

		return tx.Create(&models.StatusHistory{
			AppointmentID: ap.ID,
			FromStatus:    ap.Status,
			ToStatus:      ap.Status,
			Actor:         actor,
			Reason:        reason,
		}).Error
	})
	return mapStorageErr(err)
}

// Compile-time check
var _ domain.Repository = (*SchedulingGormRepository)(nil)
