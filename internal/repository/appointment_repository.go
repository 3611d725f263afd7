package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const appointmentColumns = `id, user_id, guest_name, guest_email, guest_phone, appointment_type,
	appointment_date, appointment_time, notes, status, created_at, updated_at`

// appointmentRepository implements the AppointmentRepository interface using PostgreSQL.
type appointmentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAppointmentRepository creates a new PostgreSQL-backed appointment repository.
func NewAppointmentRepository(pool *pgxpool.Pool, logger zerolog.Logger) AppointmentRepository {
	return &appointmentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "appointment").Logger(),
	}
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.GuestName,
		&a.GuestEmail,
		&a.GuestPhone,
		&a.AppointmentType,
		&a.Date,
		&a.Time,
		&a.Notes,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.UserID, a.GuestName, a.GuestEmail, a.GuestPhone, a.AppointmentType,
		a.Date, a.Time, a.Notes, a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("appointment_id", a.ID.String()).Msg("failed to create appointment")
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("appointment_id", id.String()).Msg("failed to query appointment")
		return nil, fmt.Errorf("failed to query appointment: %w", err)
	}
	return a, nil
}

func (r *appointmentRepository) List(ctx context.Context, filter model.AppointmentFilter) ([]model.Appointment, int, error) {
	var (
		conds []string
		args  []any
	)

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments`+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count appointments")
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM appointments%s ORDER BY appointment_date DESC, appointment_time LIMIT $%d OFFSET $%d`,
		appointmentColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query appointments")
		return nil, 0, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	appts := []model.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan appointment row")
			return nil, 0, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appts = append(appts, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating appointments: %w", err)
	}

	return appts, total, nil
}

func (r *appointmentRepository) Update(ctx context.Context, a *model.Appointment) error {
	query := `
		UPDATE appointments
		SET appointment_date = $2, appointment_time = $3, notes = $4, status = $5, updated_at = $6
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, a.ID, a.Date, a.Time, a.Notes, a.Status, a.UpdatedAt); err != nil {
		r.logger.Error().Err(err).Str("appointment_id", a.ID.String()).Msg("failed to update appointment")
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	return nil
}
