package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

func (r *OutboxRepository) Create(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	c := *event
	t.outbox = append(t.outbox, &c)

	return nil
}

func (r *OutboxRepository) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	events := make([]*domain.OutboxEvent, 0)
	for _, e := range r.store.outbox {
		if e.Published {
			continue
		}
		c := *e
		events = append(events, &c)
		if limit > 0 && len(events) == limit {
			break
		}
	}

	return events, nil
}

func (r *OutboxRepository) MarkPublished(_ context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.outbox {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}

	return errors.New("memory: outbox event not found")
}

func (r *OutboxRepository) GetByAggregate(_ context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	events := make([]*domain.OutboxEvent, 0)
	for _, e := range r.store.outbox {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			c := *e
			events = append(events, &c)
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].CreatedAt.After(events[j].CreatedAt) })

	if offset >= len(events) {
		return []*domain.OutboxEvent{}, nil
	}
	events = events[offset:]
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}

	return events, nil
}

func (r *OutboxRepository) DeletePublished(_ context.Context, before time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	kept := r.store.outbox[:0]
	for _, e := range r.store.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.store.outbox = kept

	return nil
}
