package medicine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	medicines map[uuid.UUID]*Medicine
	searches  int
}

func newMockRepo() *mockRepo {
	return &mockRepo{medicines: make(map[uuid.UUID]*Medicine)}
}

func (m *mockRepo) Create(_ context.Context, med *Medicine) error {
	med.ID = uuid.New()
	m.medicines[med.ID] = med
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Medicine, error) {
	med, ok := m.medicines[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return med, nil
}

func (m *mockRepo) Update(_ context.Context, med *Medicine) error {
	if _, ok := m.medicines[med.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.medicines[med.ID] = med
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.medicines, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Medicine, int, error) {
	var items []*Medicine
	for _, med := range m.medicines {
		items = append(items, med)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	total := len(items)
	if offset > len(items) {
		offset = len(items)
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items, total, nil
}

func (m *mockRepo) SearchByName(_ context.Context, query string, limit int) ([]*Medicine, error) {
	m.searches++
	var items []*Medicine
	for _, med := range m.medicines {
		if strings.Contains(strings.ToLower(med.Name), strings.ToLower(query)) {
			items = append(items, med)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	if limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func TestCreateMedicine(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	m := &Medicine{
		Name:             "Amoxicillin",
		DosageForm:       "Capsule",
		Strength:         "500 mg",
		UnitMeasurement:  "mg",
		CurrentStock:     120,
		ReorderThreshold: 30,
	}
	if err := svc.Create(context.Background(), m); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if m.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}
}

func TestCreateMedicineValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	tests := []struct {
		name string
		m    *Medicine
		want string
	}{
		{
			name: "missing name",
			m:    &Medicine{DosageForm: "Tablet", Strength: "10 mg", UnitMeasurement: "mg"},
			want: "name",
		},
		{
			name: "missing everything",
			m:    &Medicine{},
			want: "name, dosageForm, strength, unitMeasurement",
		},
		{
			name: "negative stock",
			m: &Medicine{Name: "X", DosageForm: "Tablet", Strength: "10 mg",
				UnitMeasurement: "mg", CurrentStock: -1},
			want: "currentStock",
		},
		{
			name: "negative threshold",
			m: &Medicine{Name: "X", DosageForm: "Tablet", Strength: "10 mg",
				UnitMeasurement: "mg", ReorderThreshold: -5},
			want: "reorderThreshold",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(context.Background(), tt.m)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSearchEmptyQuerySkipsStore(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	repo.medicines[uuid.New()] = &Medicine{Name: "Paracetamol"}

	for _, q := range []string{"", "   ", "\t"} {
		items, err := svc.Search(context.Background(), q)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", q, err)
		}
		if len(items) != 0 {
			t.Errorf("Search(%q) returned %d items, want 0", q, len(items))
		}
	}
	if repo.searches != 0 {
		t.Errorf("store was queried %d times for blank queries", repo.searches)
	}
}

func TestSearchSubstringMatch(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	for _, name := range []string{"Amoxicillin", "Amlodipine", "Paracetamol"} {
		repo.medicines[uuid.New()] = &Medicine{ID: uuid.New(), Name: name}
	}

	items, err := svc.Search(context.Background(), "amo")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Amoxicillin" {
		t.Errorf("Search(amo) = %+v, want only Amoxicillin", items)
	}

	items, err = svc.Search(context.Background(), "zzz")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("no-match search should return empty non-nil slice, got %v", items)
	}
}

func TestLowStock(t *testing.T) {
	tests := []struct {
		stock, threshold int
		want             bool
	}{
		{5, 10, true},
		{10, 10, true},
		{11, 10, false},
		{0, 0, true},
	}
	for _, tt := range tests {
		m := &Medicine{CurrentStock: tt.stock, ReorderThreshold: tt.threshold}
		if got := m.LowStock(); got != tt.want {
			t.Errorf("LowStock(stock=%d threshold=%d) = %v, want %v",
				tt.stock, tt.threshold, got, tt.want)
		}
	}
}

func TestUpdateMedicine(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	m := &Medicine{Name: "Ibuprofen", DosageForm: "Tablet", Strength: "100 mg",
		UnitMeasurement: "mg", CurrentStock: 50, ReorderThreshold: 10}
	if err := svc.Create(context.Background(), m); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	m.CurrentStock = 8
	if err := svc.Update(context.Background(), m); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := svc.Get(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.CurrentStock != 8 {
		t.Errorf("stock = %d, want 8", got.CurrentStock)
	}
	if !got.LowStock() {
		t.Error("expected low stock after update")
	}
}
