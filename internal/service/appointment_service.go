package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// appointmentService implements AppointmentService.
type appointmentService struct {
	apptRepo repository.AppointmentRepository
	userRepo repository.UserRepository
	notifier notify.Notifier
	logger   zerolog.Logger
}

// NewAppointmentService creates a new appointment service.
func NewAppointmentService(
	apptRepo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	notifier notify.Notifier,
	logger zerolog.Logger,
) AppointmentService {
	return &appointmentService{
		apptRepo: apptRepo,
		userRepo: userRepo,
		notifier: notifier,
		logger:   logger.With().Str("service", "appointment").Logger(),
	}
}

var appointmentEvents = map[model.AppointmentStatus]notify.Kind{
	model.AppointmentConfirmed: notify.KindAppointmentConfirmed,
	model.AppointmentCompleted: notify.KindAppointmentCompleted,
	model.AppointmentCancelled: notify.KindAppointmentCancelled,
}

// Create books an appointment for a user, or for a guest when userID is nil.
func (s *appointmentService) Create(ctx context.Context, userID *uuid.UUID, req *model.AppointmentRequest) (*model.Appointment, error) {
	if req == nil {
		return nil, model.ErrValidation
	}
	if !req.AppointmentType.Valid() {
		return nil, model.NewValidationError("Invalid appointment type")
	}
	if err := validateDate(req.Date); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Time) == "" {
		return nil, model.NewMissingField("appointment_time")
	}

	now := time.Now().UTC()
	appt := &model.Appointment{
		ID:              uuid.New(),
		UserID:          userID,
		AppointmentType: req.AppointmentType,
		Date:            req.Date,
		Time:            strings.TrimSpace(req.Time),
		Notes:           req.Notes,
		Status:          model.AppointmentConfirmed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if userID == nil {
		for _, f := range []struct{ name, value string }{
			{"guest_name", req.GuestName},
			{"guest_email", req.GuestEmail},
			{"guest_phone", req.GuestPhone},
		} {
			if strings.TrimSpace(f.value) == "" {
				return nil, model.NewMissingField(f.name)
			}
		}
		email, err := normaliseEmail(req.GuestEmail)
		if err != nil {
			return nil, err
		}
		appt.GuestName = strings.TrimSpace(req.GuestName)
		appt.GuestEmail = email
		appt.GuestPhone = strings.TrimSpace(req.GuestPhone)
	}

	if err := s.apptRepo.Create(ctx, appt); err != nil {
		s.logger.Error().Err(err).Msg("failed to create appointment")
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.logger.Info().
		Str("appointment_id", appt.ID.String()).
		Str("type", string(appt.AppointmentType)).
		Bool("guest", userID == nil).
		Msg("appointment booked")

	s.notify(ctx, appt, notify.KindAppointmentConfirmed)
	return appt, nil
}

// List retrieves a page of appointments.
func (s *appointmentService) List(ctx context.Context, filter model.AppointmentFilter) (*model.AppointmentList, error) {
	filter.Limit, filter.Offset = normalisePage(filter.Limit, filter.Offset)
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, model.NewValidationError("Invalid appointment status")
	}

	appts, total, err := s.apptRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list appointments")
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	return &model.AppointmentList{
		Appointments: appts,
		Total:        total,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}, nil
}

// GetForUser retrieves one of the user's own appointments.
func (s *appointmentService) GetForUser(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.UserID == nil || *appt.UserID != userID {
		return nil, model.ErrNotFound
	}
	return appt, nil
}

// Update changes one of the user's own appointments.
func (s *appointmentService) Update(ctx context.Context, userID, id uuid.UUID, update *model.AppointmentUpdate) (*model.Appointment, error) {
	if update == nil {
		return nil, model.ErrValidation
	}

	appt, err := s.GetForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	previous := appt.Status
	if update.Date != nil {
		if err := validateDate(*update.Date); err != nil {
			return nil, err
		}
		appt.Date = *update.Date
	}
	if update.Time != nil {
		appt.Time = strings.TrimSpace(*update.Time)
	}
	if update.Notes != nil {
		appt.Notes = *update.Notes
	}
	if update.Status != nil {
		if !update.Status.Valid() {
			return nil, model.NewValidationError("Invalid appointment status")
		}
		appt.Status = *update.Status
	}

	if err := s.save(ctx, appt); err != nil {
		return nil, err
	}
	if appt.Status == model.AppointmentCancelled && previous != model.AppointmentCancelled {
		s.notify(ctx, appt, notify.KindAppointmentCancelled)
	}
	return appt, nil
}

// Cancel cancels one of the user's own appointments.
func (s *appointmentService) Cancel(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.GetForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == model.AppointmentCancelled {
		return appt, nil
	}

	appt.Status = model.AppointmentCancelled
	if err := s.save(ctx, appt); err != nil {
		return nil, err
	}
	s.notify(ctx, appt, notify.KindAppointmentCancelled)
	return appt, nil
}

// SetStatus changes the status of any appointment.
func (s *appointmentService) SetStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if !status.Valid() {
		names := make([]string, len(model.AppointmentStatuses))
		for i, st := range model.AppointmentStatuses {
			names[i] = string(st)
		}
		return nil, model.NewInvalidStatus(names)
	}

	appt, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := appt.Status
	appt.Status = status
	if err := s.save(ctx, appt); err != nil {
		return nil, err
	}

	if previous != status {
		if kind, ok := appointmentEvents[status]; ok {
			s.notify(ctx, appt, kind)
		}
	}
	return appt, nil
}

func (s *appointmentService) get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if appt == nil {
		return nil, model.ErrNotFound
	}
	return appt, nil
}

func (s *appointmentService) save(ctx context.Context, appt *model.Appointment) error {
	appt.UpdatedAt = time.Now().UTC()
	if err := s.apptRepo.Update(ctx, appt); err != nil {
		s.logger.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("failed to update appointment")
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

// notify resolves the contact of the appointment and dispatches kind.
func (s *appointmentService) notify(ctx context.Context, appt *model.Appointment, kind notify.Kind) {
	email, name := appt.GuestEmail, appt.GuestName
	if appt.UserID != nil {
		user, err := s.userRepo.GetByID(ctx, *appt.UserID)
		if err != nil || user == nil {
			s.logger.Warn().Err(err).Str("appointment_id", appt.ID.String()).Msg("no contact for appointment notification")
			return
		}
		email, name = user.Email, user.FullName()
	}
	s.notifier.Notify(ctx, notify.AppointmentEvent(kind, appt, email, name))
}

func validateDate(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return model.NewMissingField("appointment_date")
	}
	if _, err := time.Parse(model.AppointmentDateLayout, raw); err != nil {
		return model.NewValidationError("Invalid date format. Use YYYY-MM-DD")
	}
	return nil
}
