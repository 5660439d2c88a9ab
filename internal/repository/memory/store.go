package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

// Store is an in-process implementation of every ledger store. It backs tests
// and STORE_DRIVER=memory deployments.
type Store struct {
	mu         sync.RWMutex
	animals    map[string]models.Animal
	production map[string]models.ProductionRecord
	sales      []models.SalesRecord
	summaries  map[string]models.ProductionSummary
}

// New builds an empty store.
func New() *Store {
	return &Store{
		animals:    make(map[string]models.Animal),
		production: make(map[string]models.ProductionRecord),
		summaries:  make(map[string]models.ProductionSummary),
	}
}

// PutAnimal registers or replaces an animal in the directory.
func (s *Store) PutAnimal(_ context.Context, animal models.Animal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animals[animal.ID] = animal
	return nil
}

// GetAnimal looks an animal up by id.
func (s *Store) GetAnimal(_ context.Context, id string) (models.Animal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	animal, ok := s.animals[id]
	if !ok {
		return models.Animal{}, models.ErrNotFound
	}
	return animal, nil
}

// CreateProduction inserts a record, rejecting a second record for the same
// animal and day.
func (s *Store) CreateProduction(_ context.Context, rec models.ProductionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := models.Normalize(rec.Date)
	for _, existing := range s.production {
		if existing.AnimalID == rec.AnimalID && existing.Date.Equal(day) {
			return models.ErrDuplicateProduction
		}
	}
	rec.Date = day
	s.production[rec.ID] = rec
	return nil
}

// GetProduction returns a record by id.
func (s *Store) GetProduction(_ context.Context, id string) (models.ProductionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.production[id]
	if !ok {
		return models.ProductionRecord{}, models.ErrNotFound
	}
	return rec, nil
}

// UpdateProduction replaces the quantities, notes and derived fields of an
// existing record.
func (s *Store) UpdateProduction(_ context.Context, rec models.ProductionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.production[rec.ID]
	if !ok {
		return models.ErrNotFound
	}
	existing.Apply(rec.Quantities())
	existing.Notes = rec.Notes
	existing.UpdatedAt = rec.UpdatedAt
	s.production[rec.ID] = existing
	return nil
}

// DeleteProduction removes a record.
func (s *Store) DeleteProduction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.production[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.production, id)
	return nil
}

// ListProduction pages records matching filter, newest day first.
func (s *Store) ListProduction(_ context.Context, filter models.ProductionFilter) (models.ProductionPage, error) {
	filter.Normalize()

	s.mu.RLock()
	matched := make([]models.ProductionRecord, 0, len(s.production))
	for _, rec := range s.production {
		if matchesFilter(rec, filter) {
			matched = append(matched, rec)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := models.ProductionPage{Total: int64(len(matched)), Page: filter.Page, Limit: filter.Limit}
	start := filter.Offset()
	if start >= len(matched) {
		page.Items = []models.ProductionRecord{}
		return page, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	page.Items = matched[start:end]
	return page, nil
}

func matchesFilter(rec models.ProductionRecord, filter models.ProductionFilter) bool {
	if filter.AnimalID != "" && rec.AnimalID != filter.AnimalID {
		return false
	}
	if filter.Date != nil {
		return rec.Date.Equal(models.Normalize(*filter.Date))
	}
	if filter.From != nil && rec.Date.Before(models.Normalize(*filter.From)) {
		return false
	}
	if filter.To != nil && rec.Date.After(models.Normalize(*filter.To)) {
		return false
	}
	return true
}

// ProductionByDay returns every record of one calendar day.
func (s *Store) ProductionByDay(_ context.Context, day time.Time) ([]models.ProductionRecord, error) {
	day = models.Normalize(day)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ProductionRecord, 0)
	for _, rec := range s.production {
		if rec.Date.Equal(day) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// CreateSale appends a sale.
func (s *Store) CreateSale(_ context.Context, sale models.SalesRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale.Date = models.Normalize(sale.Date)
	s.sales = append(s.sales, sale)
	return nil
}

// SalesByDay returns the sales of one calendar day in recording order.
func (s *Store) SalesByDay(_ context.Context, day time.Time) ([]models.SalesRecord, error) {
	day = models.Normalize(day)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SalesRecord, 0)
	for _, sale := range s.sales {
		if sale.Date.Equal(day) {
			out = append(out, sale)
		}
	}
	return out, nil
}

// CreateSummary stores the close snapshot of a day exactly once.
func (s *Store) CreateSummary(_ context.Context, summary models.ProductionSummary) error {
	key := models.FormatDay(summary.Date)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.summaries[key]; exists {
		return models.ErrAlreadyClosed
	}
	summary.ID = key
	summary.Date = models.Normalize(summary.Date)
	s.summaries[key] = summary
	return nil
}

// GetSummary returns the summary of day.
func (s *Store) GetSummary(_ context.Context, day time.Time) (models.ProductionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[models.FormatDay(day)]
	if !ok {
		return models.ProductionSummary{}, models.ErrNotFound
	}
	return summary, nil
}

// LatestSummary returns the summary with the greatest date.
func (s *Store) LatestSummary(_ context.Context) (models.ProductionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		latest models.ProductionSummary
		found  bool
	)
	for _, summary := range s.summaries {
		if !found || summary.Date.After(latest.Date) {
			latest = summary
			found = true
		}
	}
	if !found {
		return models.ProductionSummary{}, models.ErrNotFound
	}
	return latest, nil
}

// ListSummaries returns summaries between from and to inclusive, oldest first.
func (s *Store) ListSummaries(_ context.Context, from, to time.Time) ([]models.ProductionSummary, error) {
	from, to = models.Normalize(from), models.Normalize(to)
	s.mu.RLock()
	out := make([]models.ProductionSummary, 0)
	for _, summary := range s.summaries {
		if summary.Date.Before(from) || summary.Date.After(to) {
			continue
		}
		out = append(out, summary)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// SummaryCount returns how many days have been closed.
func (s *Store) SummaryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.summaries)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }
