package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/acil/er-api/internal/platform/apperr"
)

const nationalIDLength = 11

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	exists, err := s.repo.ExistsByNationalID(ctx, p.NationalID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.ValidationFields("validation failed",
			apperr.FieldError{Field: "national_id", Message: "a patient with this national id already exists"})
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update replaces every mutable field of the patient.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in *Patient) (*Patient, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.NationalID != current.NationalID {
		exists, err := s.repo.ExistsByNationalID(ctx, in.NationalID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.ValidationFields("validation failed",
				apperr.FieldError{Field: "national_id", Message: "a patient with this national id already exists"})
		}
	}
	current.Name = in.Name
	current.NationalID = in.NationalID
	current.BasicSymptomsCsv = in.BasicSymptomsCsv
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// PartialUpdate applies only the fields present in the request.
func (s *Service) PartialUpdate(ctx context.Context, id uuid.UUID, in *Patient) (*Patient, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		current.Name = in.Name
	}
	if in.NationalID != "" && in.NationalID != current.NationalID {
		if !isNationalID(in.NationalID) {
			return nil, apperr.ValidationFields("validation failed",
				apperr.FieldError{Field: "national_id", Message: "must be 11 digits"})
		}
		exists, err := s.repo.ExistsByNationalID(ctx, in.NationalID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.ValidationFields("validation failed",
				apperr.FieldError{Field: "national_id", Message: "a patient with this national id already exists"})
		}
		current.NationalID = in.NationalID
	}
	if in.BasicSymptomsCsv != nil {
		current.BasicSymptomsCsv = in.BasicSymptomsCsv
	}
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(p *Patient) error {
	var fields []apperr.FieldError
	if strings.TrimSpace(p.Name) == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "name is required"})
	}
	if !isNationalID(p.NationalID) {
		fields = append(fields, apperr.FieldError{Field: "national_id", Message: "must be 11 digits"})
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("validation failed", fields...)
	}
	return nil
}

func isNationalID(s string) bool {
	if len(s) != nationalIDLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
