package domain

const CalendarCollection = "calendars"

// Calendar groups events. ParentCalendarID is a weak reference: it is only
// checked for existence when the reference policy is "reject".
type Calendar struct {
	ID               string   `json:"id" bson:"_id"`
	Title            string   `json:"title" bson:"title"`
	Organizer        string   `json:"organizer" bson:"organizer"`
	Keywords         []string `json:"keywords" bson:"keywords"`
	IsPublic         bool     `json:"isPublic" bson:"isPublic"`
	ParentCalendarID *string  `json:"parentCalendarId" bson:"parentCalendarId"`
}

func (c *Calendar) GetID() string   { return c.ID }
func (c *Calendar) SetID(id string) { c.ID = id }

func (c *Calendar) Normalize() {
	if c.Keywords == nil {
		c.Keywords = []string{}
	}
	if c.ParentCalendarID != nil && *c.ParentCalendarID == "" {
		c.ParentCalendarID = nil
	}
}

func (c *Calendar) References() []Reference {
	if c.ParentCalendarID == nil {
		return nil
	}
	return []Reference{{Field: "parentCalendarId", Collection: CalendarCollection, ID: *c.ParentCalendarID}}
}

// CalendarPatch carries the fields of a partial update. An id in the payload
// is accepted and discarded.
type CalendarPatch struct {
	ID               Field[string]   `json:"id"`
	Title            Field[string]   `json:"title"`
	Organizer        Field[string]   `json:"organizer"`
	Keywords         Field[[]string] `json:"keywords"`
	IsPublic         Field[bool]     `json:"isPublic"`
	ParentCalendarID Field[string]   `json:"parentCalendarId"`
}

// Fields returns the supplied members keyed by their stored name.
func (p CalendarPatch) Fields() map[string]any {
	m := map[string]any{}
	if p.Title.Set {
		m["title"] = p.Title.Value
	}
	if p.Organizer.Set {
		m["organizer"] = p.Organizer.Value
	}
	if p.Keywords.Set {
		kw := p.Keywords.Value
		if kw == nil {
			kw = []string{}
		}
		m["keywords"] = kw
	}
	if p.IsPublic.Set {
		m["isPublic"] = p.IsPublic.Value
	}
	if p.ParentCalendarID.Set {
		if p.ParentCalendarID.Null || p.ParentCalendarID.Value == "" {
			m["parentCalendarId"] = nil
		} else {
			m["parentCalendarId"] = p.ParentCalendarID.Value
		}
	}
	return m
}

func (p CalendarPatch) References() []Reference {
	if !p.ParentCalendarID.Present() || p.ParentCalendarID.Value == "" {
		return nil
	}
	return []Reference{{Field: "parentCalendarId", Collection: CalendarCollection, ID: p.ParentCalendarID.Value}}
}
