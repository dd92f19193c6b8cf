package domain

import "example.com/kalendas/internal/isotime"

const EventCollection = "events"

type MapLocation struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

type AttachedContent struct {
	Images []string     `json:"images" bson:"images"`
	Files  []string     `json:"files" bson:"files"`
	Map    *MapLocation `json:"map" bson:"map"`
}

// Event belongs to a calendar through the weak reference CalendarID.
type Event struct {
	ID              string           `json:"id" bson:"_id"`
	CalendarID      string           `json:"calendarId" bson:"calendarId"`
	Title           string           `json:"title" bson:"title"`
	StartTime       isotime.Time     `json:"startTime" bson:"startTime"`
	DurationMinutes int              `json:"durationMinutes" bson:"durationMinutes"`
	Place           string           `json:"place" bson:"place"`
	Organizer       string           `json:"organizer" bson:"organizer"`
	AttachedContent *AttachedContent `json:"attachedContent" bson:"attachedContent"`
}

func (e *Event) GetID() string   { return e.ID }
func (e *Event) SetID(id string) { e.ID = id }

func (e *Event) Normalize() {
	if e.AttachedContent != nil {
		e.AttachedContent.normalize()
	}
}

func (e *Event) References() []Reference {
	if e.CalendarID == "" {
		return nil
	}
	return []Reference{{Field: "calendarId", Collection: CalendarCollection, ID: e.CalendarID}}
}

func (a *AttachedContent) normalize() {
	if a.Images == nil {
		a.Images = []string{}
	}
	if a.Files == nil {
		a.Files = []string{}
	}
}

// EventPatch carries the fields of a partial update. AttachedContent replaces
// the stored value wholesale; its members are not merged.
type EventPatch struct {
	ID              Field[string]          `json:"id"`
	CalendarID      Field[string]          `json:"calendarId"`
	Title           Field[string]          `json:"title"`
	StartTime       Field[isotime.Time]    `json:"startTime"`
	DurationMinutes Field[int]             `json:"durationMinutes"`
	Place           Field[string]          `json:"place"`
	Organizer       Field[string]          `json:"organizer"`
	AttachedContent Field[AttachedContent] `json:"attachedContent"`
}

func (p EventPatch) Fields() map[string]any {
	m := map[string]any{}
	if p.CalendarID.Set {
		m["calendarId"] = p.CalendarID.Value
	}
	if p.Title.Set {
		m["title"] = p.Title.Value
	}
	if p.StartTime.Set {
		m["startTime"] = p.StartTime.Value
	}
	if p.DurationMinutes.Set {
		m["durationMinutes"] = p.DurationMinutes.Value
	}
	if p.Place.Set {
		m["place"] = p.Place.Value
	}
	if p.Organizer.Set {
		m["organizer"] = p.Organizer.Value
	}
	if p.AttachedContent.Set {
		if p.AttachedContent.Null {
			m["attachedContent"] = nil
		} else {
			ac := p.AttachedContent.Value
			ac.normalize()
			m["attachedContent"] = &ac
		}
	}
	return m
}

func (p EventPatch) References() []Reference {
	if !p.CalendarID.Present() || p.CalendarID.Value == "" {
		return nil
	}
	return []Reference{{Field: "calendarId", Collection: CalendarCollection, ID: p.CalendarID.Value}}
}
