// Package seed loads a small sample data set: three calendars, one nested
// under another, and two events.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"example.com/kalendas/internal/domain"
	"example.com/kalendas/internal/isotime"
	"example.com/kalendas/internal/resource"
)

type Seeder struct {
	Calendars *resource.Repository[*domain.Calendar]
	Events    *resource.Repository[*domain.Event]
	Log       *logrus.Entry
}

type Result struct {
	Calendars []*domain.Calendar
	Events    []*domain.Event
}

// Drop empties both collections.
func (s *Seeder) Drop(ctx context.Context) error {
	if err := s.Calendars.Drop(ctx); err != nil {
		return err
	}
	if err := s.Events.Drop(ctx); err != nil {
		return err
	}
	s.Log.Info("calendars and events dropped")
	return nil
}

// Run inserts the sample data, first dropping existing records unless keep is
// set. It stops at the first failed write.
func (s *Seeder) Run(ctx context.Context, keep bool) (Result, error) {
	var res Result
	if !keep {
		if err := s.Drop(ctx); err != nil {
			return res, err
		}
	}

	city, err := s.Calendars.Create(ctx, &domain.Calendar{
		Title:     "City Main Calendar",
		Organizer: "City Hall",
		Keywords:  []string{"city", "events", "public"},
		IsPublic:  true,
	})
	if err != nil {
		return res, fmt.Errorf("seed calendar: %w", err)
	}
	parent := city.ID
	sports, err := s.Calendars.Create(ctx, &domain.Calendar{
		Title:            "Sports Events",
		Organizer:        "Sports Department",
		Keywords:         []string{"sport", "competition"},
		IsPublic:         true,
		ParentCalendarID: &parent,
	})
	if err != nil {
		return res, fmt.Errorf("seed calendar: %w", err)
	}
	culture, err := s.Calendars.Create(ctx, &domain.Calendar{
		Title:     "Private Culture Agenda",
		Organizer: "Independent Cultural Centre",
		Keywords:  []string{"culture", "exhibition", "music"},
	})
	if err != nil {
		return res, fmt.Errorf("seed calendar: %w", err)
	}
	res.Calendars = []*domain.Calendar{city, sports, culture}
	s.Log.WithField("count", len(res.Calendars)).Info("sample calendars inserted")

	events := []*domain.Event{
		{
			CalendarID:      sports.ID,
			Title:           "City Marathon",
			StartTime:       isotime.New(time.Date(2025, 11, 15, 9, 0, 0, 0, time.UTC)),
			DurationMinutes: 240,
			Place:           "Start at the Municipal Stadium",
			Organizer:       "Sports Department",
			AttachedContent: &domain.AttachedContent{
				Map: &domain.MapLocation{Latitude: 36.7213, Longitude: -4.4214},
			},
		},
		{
			CalendarID:      city.ID,
			Title:           "White Night",
			StartTime:       isotime.New(time.Date(2025, 10, 26, 20, 0, 0, 0, time.UTC)),
			DurationMinutes: 360,
			Place:           "Several venues downtown",
			Organizer:       "City Hall",
			AttachedContent: &domain.AttachedContent{
				Images: []string{"https://example.com/white_night.jpg"},
			},
		},
	}
	for _, ev := range events {
		created, err := s.Events.Create(ctx, ev)
		if err != nil {
			return res, fmt.Errorf("seed event: %w", err)
		}
		res.Events = append(res.Events, created)
	}
	s.Log.WithField("count", len(res.Events)).Info("sample events inserted")
	return res, nil
}
