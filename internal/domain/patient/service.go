package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SearchLimit caps how many patients a lookup returns. The registry search
// feeds a picker, not a report, so a short list is enough.
const SearchLimit = 10

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

func (s *Service) validate(p *Patient) error {
	var missing []string
	if strings.TrimSpace(p.FirstName) == "" {
		missing = append(missing, "firstName")
	}
	if strings.TrimSpace(p.LastName) == "" {
		missing = append(missing, "lastName")
	}
	if strings.TrimSpace(p.ContactNumber) == "" {
		missing = append(missing, "contactNumber")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if p.Age < 0 || p.Age > 150 {
		return fmt.Errorf("age must be between 0 and 150")
	}
	switch p.Gender {
	case "", "male", "female", "other":
	default:
		return fmt.Errorf("gender must be male, female or other")
	}
	return nil
}

func (s *Service) Register(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// Search matches on first name, last name, or contact number. Blank queries
// return nothing without hitting the store.
func (s *Service) Search(ctx context.Context, query string) ([]*Patient, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*Patient{}, nil
	}
	items, err := s.patients.Search(ctx, query, SearchLimit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Patient{}
	}
	return items, nil
}
