package resource

import (
	"context"
	"time"

	"example.com/kalendas/internal/config"
	"example.com/kalendas/internal/domain"
	"example.com/kalendas/internal/storage"
	"example.com/kalendas/internal/storage/driver"
)

type (
	CalendarService = Service[*domain.Calendar, domain.CalendarPatch]
	EventService    = Service[*domain.Event, domain.EventPatch]
)

func CalendarRepository(ctx context.Context, s storage.Store, timeout time.Duration) (*Repository[*domain.Calendar], error) {
	coll, err := driver.Collection[*domain.Calendar](ctx, s, domain.CalendarCollection)
	if err != nil {
		return nil, err
	}
	return NewRepository(coll, "calendar", timeout), nil
}

func EventRepository(ctx context.Context, s storage.Store, timeout time.Duration) (*Repository[*domain.Event], error) {
	coll, err := driver.Collection[*domain.Event](ctx, s, domain.EventCollection)
	if err != nil {
		return nil, err
	}
	return NewRepository(coll, "event", timeout), nil
}

// policy builds the write policy for cfg. Under the reject policy both
// resource types resolve references against the calendars collection.
func policy(ctx context.Context, s storage.Store, cfg config.Service) (Policy, error) {
	p := Policy{Rules: domain.Rules{RequirePositiveDuration: cfg.RequirePositiveDuration}}
	if cfg.ReferencePolicy != config.ReferenceReject {
		return p, nil
	}
	calendars, err := CalendarRepository(ctx, s, cfg.StoreTimeout)
	if err != nil {
		return p, err
	}
	p.References = map[string]Exister{domain.CalendarCollection: calendars}
	return p, nil
}

func NewCalendarService(ctx context.Context, s storage.Store, cfg config.Service) (*CalendarService, error) {
	repo, err := CalendarRepository(ctx, s, cfg.StoreTimeout)
	if err != nil {
		return nil, err
	}
	p, err := policy(ctx, s, cfg)
	if err != nil {
		return nil, err
	}
	return NewService[*domain.Calendar, domain.CalendarPatch](repo, domain.CalendarFilters, p), nil
}

func NewEventService(ctx context.Context, s storage.Store, cfg config.Service) (*EventService, error) {
	repo, err := EventRepository(ctx, s, cfg.StoreTimeout)
	if err != nil {
		return nil, err
	}
	p, err := policy(ctx, s, cfg)
	if err != nil {
		return nil, err
	}
	return NewService[*domain.Event, domain.EventPatch](repo, domain.EventFilters, p), nil
}
