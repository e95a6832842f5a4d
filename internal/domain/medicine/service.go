package medicine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SearchLimit bounds how many candidates an incremental lookup returns.
const SearchLimit = 20

type Service struct {
	medicines Repository
}

func NewService(medicines Repository) *Service {
	return &Service{medicines: medicines}
}

func (s *Service) validate(m *Medicine) error {
	var missing []string
	if m.Name == "" {
		missing = append(missing, "name")
	}
	if m.DosageForm == "" {
		missing = append(missing, "dosageForm")
	}
	if m.Strength == "" {
		missing = append(missing, "strength")
	}
	if m.UnitMeasurement == "" {
		missing = append(missing, "unitMeasurement")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if m.CurrentStock < 0 {
		return fmt.Errorf("currentStock must not be negative")
	}
	if m.ReorderThreshold < 0 {
		return fmt.Errorf("reorderThreshold must not be negative")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, m *Medicine) error {
	if err := s.validate(m); err != nil {
		return err
	}
	return s.medicines.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return s.medicines.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, m *Medicine) error {
	if err := s.validate(m); err != nil {
		return err
	}
	return s.medicines.Update(ctx, m)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.medicines.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Medicine, int, error) {
	return s.medicines.List(ctx, limit, offset)
}

// Search is the incremental catalog lookup. An empty or whitespace-only
// query returns no candidates without touching the store; matching is a
// case-insensitive substring match on the name. Zero matches is an empty
// result, not an error.
func (s *Service) Search(ctx context.Context, query string) ([]*Medicine, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*Medicine{}, nil
	}
	items, err := s.medicines.SearchByName(ctx, query, SearchLimit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Medicine{}
	}
	return items, nil
}
