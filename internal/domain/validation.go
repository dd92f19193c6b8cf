package domain

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"example.com/kalendas/internal/apperr"
)

// FieldError represents a single field's validation error.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

type FieldErrors []FieldError

// Err converts the collected errors into a validation error, or nil.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	fields := map[string][]string{}
	for _, e := range fe {
		fields[e.Field] = append(fields[e.Field], e.Msg)
	}
	return apperr.Validation("one or more fields are invalid", fields)
}

// Rules are the switchable business rules applied on write.
type Rules struct {
	RequirePositiveDuration bool
}

// Reference is a weak pointer from one record to another.
type Reference struct {
	Field      string
	Collection string
	ID         string
}

func (c *Calendar) Validate(Rules) FieldErrors {
	var errs FieldErrors
	errs = requireText(errs, "title", c.Title)
	errs = requireText(errs, "organizer", c.Organizer)
	errs = checkKeywords(errs, c.Keywords)
	if c.ParentCalendarID != nil && *c.ParentCalendarID != "" {
		errs = checkUUID(errs, "parentCalendarId", *c.ParentCalendarID)
	}
	return errs
}

func (p CalendarPatch) Validate(Rules) FieldErrors {
	var errs FieldErrors
	if p.Title.Set {
		errs = requireText(errs, "title", p.Title.Value)
	}
	if p.Organizer.Set {
		errs = requireText(errs, "organizer", p.Organizer.Value)
	}
	if p.IsPublic.Set && p.IsPublic.Null {
		errs = append(errs, FieldError{"isPublic", "must not be null"})
	}
	if p.Keywords.Present() {
		errs = checkKeywords(errs, p.Keywords.Value)
	}
	if p.ParentCalendarID.Present() && p.ParentCalendarID.Value != "" {
		errs = checkUUID(errs, "parentCalendarId", p.ParentCalendarID.Value)
	}
	return errs
}

func (e *Event) Validate(r Rules) FieldErrors {
	var errs FieldErrors
	if e.CalendarID == "" {
		errs = append(errs, FieldError{"calendarId", "required"})
	} else {
		errs = checkUUID(errs, "calendarId", e.CalendarID)
	}
	errs = requireText(errs, "title", e.Title)
	if e.StartTime.IsZero() {
		errs = append(errs, FieldError{"startTime", "required"})
	}
	errs = checkDuration(errs, r, e.DurationMinutes)
	errs = requireText(errs, "place", e.Place)
	errs = requireText(errs, "organizer", e.Organizer)
	if e.AttachedContent != nil {
		errs = checkAttached(errs, e.AttachedContent)
	}
	return errs
}

func (p EventPatch) Validate(r Rules) FieldErrors {
	var errs FieldErrors
	if p.CalendarID.Set {
		if !p.CalendarID.Present() || p.CalendarID.Value == "" {
			errs = append(errs, FieldError{"calendarId", "required"})
		} else {
			errs = checkUUID(errs, "calendarId", p.CalendarID.Value)
		}
	}
	if p.Title.Set {
		errs = requireText(errs, "title", p.Title.Value)
	}
	if p.StartTime.Set && (p.StartTime.Null || p.StartTime.Value.IsZero()) {
		errs = append(errs, FieldError{"startTime", "required"})
	}
	if p.DurationMinutes.Set {
		if p.DurationMinutes.Null {
			errs = append(errs, FieldError{"durationMinutes", "must not be null"})
		} else {
			errs = checkDuration(errs, r, p.DurationMinutes.Value)
		}
	}
	if p.Place.Set {
		errs = requireText(errs, "place", p.Place.Value)
	}
	if p.Organizer.Set {
		errs = requireText(errs, "organizer", p.Organizer.Value)
	}
	if p.AttachedContent.Present() {
		ac := p.AttachedContent.Value
		errs = checkAttached(errs, &ac)
	}
	return errs
}

func requireText(errs FieldErrors, field, v string) FieldErrors {
	if strings.TrimSpace(v) == "" {
		return append(errs, FieldError{field, "required"})
	}
	return errs
}

func checkUUID(errs FieldErrors, field, v string) FieldErrors {
	if _, err := uuid.Parse(v); err != nil {
		return append(errs, FieldError{field, "must be a UUID"})
	}
	return errs
}

func checkKeywords(errs FieldErrors, kws []string) FieldErrors {
	for i, k := range kws {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, FieldError{fmt.Sprintf("keywords[%d]", i), "must be non-empty"})
		}
	}
	return errs
}

func checkDuration(errs FieldErrors, r Rules, minutes int) FieldErrors {
	if r.RequirePositiveDuration && minutes <= 0 {
		return append(errs, FieldError{"durationMinutes", "must be a positive number of minutes"})
	}
	return errs
}

func checkAttached(errs FieldErrors, a *AttachedContent) FieldErrors {
	for i, u := range a.Images {
		errs = checkURL(errs, fmt.Sprintf("attachedContent.images[%d]", i), u)
	}
	for i, u := range a.Files {
		errs = checkURL(errs, fmt.Sprintf("attachedContent.files[%d]", i), u)
	}
	if m := a.Map; m != nil {
		if m.Latitude < -90 || m.Latitude > 90 {
			errs = append(errs, FieldError{"attachedContent.map.latitude", "must be between -90 and 90"})
		}
		if m.Longitude < -180 || m.Longitude > 180 {
			errs = append(errs, FieldError{"attachedContent.map.longitude", "must be between -180 and 180"})
		}
	}
	return errs
}

func checkURL(errs FieldErrors, field, v string) FieldErrors {
	u, err := url.ParseRequestURI(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return append(errs, FieldError{field, "must be an absolute http(s) URL"})
	}
	return errs
}
