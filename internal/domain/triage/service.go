package triage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/acil/er-api/internal/platform/apperr"
	"github.com/acil/er-api/internal/platform/inference"
)

const suggestionLimit = 5

// AppointmentResolver checks the case a triage record attaches to. The
// appointment repository satisfies it.
type AppointmentResolver interface {
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo         Repository
	appointments AppointmentResolver
	suggester    inference.Suggester
	timeout      time.Duration
}

func NewService(repo Repository, appointments AppointmentResolver, suggester inference.Suggester, timeout time.Duration) *Service {
	return &Service{repo: repo, appointments: appointments, suggester: suggester, timeout: timeout}
}

// Create records a triage assessment. Urgency suggestions are best-effort:
// a slow or failing suggester never blocks the nurse, the record is saved
// without them.
func (s *Service) Create(ctx context.Context, rec *TriageRecord) error {
	if rec.AppointmentID == uuid.Nil {
		return apperr.Validationf("appointment_id is required")
	}
	if rec.PainLevel != nil && (*rec.PainLevel < 0 || *rec.PainLevel > 10) {
		return apperr.Validationf("pain_level must be between 0 and 10")
	}
	ok, err := s.appointments.ExistsByID(ctx, rec.AppointmentID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFoundf("appointment %s", rec.AppointmentID)
	}

	rec.SuggestionsJSON = nil
	if tokens := rec.SymptomTokens(); len(tokens) > 0 {
		rec.SuggestionsJSON = s.suggest(ctx, tokens)
	}
	return s.repo.Create(ctx, rec)
}

func (s *Service) suggest(ctx context.Context, tokens []string) *string {
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	suggestions, err := s.suggester.Suggest(sctx, tokens, suggestionLimit)
	if err != nil {
		log.Warn().Err(err).Msg("urgency suggestion failed, saving triage record without it")
		return nil
	}
	if len(suggestions) == 0 {
		return nil
	}
	b, err := json.Marshal(suggestions)
	if err != nil {
		log.Warn().Err(err).Msg("could not encode urgency suggestions")
		return nil
	}
	out := string(b)
	return &out
}

// ListByAppointment returns the case's assessments, newest first.
func (s *Service) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*TriageRecord, error) {
	ok, err := s.appointments.ExistsByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFoundf("appointment %s", appointmentID)
	}
	return s.repo.ListByAppointment(ctx, appointmentID)
}
