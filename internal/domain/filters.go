package domain

import "example.com/kalendas/internal/filter"

// CalendarFilters are the query parameters accepted by GET /calendars/.
var CalendarFilters = filter.NewBuilder(
	filter.Option{Param: "title", Field: "title", Kind: filter.KindSubstring},
	filter.Option{Param: "organizer", Field: "organizer", Kind: filter.KindSubstring},
	filter.Option{Param: "keywords", Field: "keywords", Kind: filter.KindAnyOf},
	filter.Option{Param: "isPublic", Field: "isPublic", Kind: filter.KindExact, Type: filter.TypeBool},
)

// EventFilters are the query parameters accepted by GET /events/.
var EventFilters = filter.NewBuilder(
	filter.Option{Param: "startTimeFrom", Field: "startTime", Kind: filter.KindMin, Type: filter.TypeTime},
	filter.Option{Param: "startTimeTo", Field: "startTime", Kind: filter.KindMax, Type: filter.TypeTime},
	filter.Option{Param: "place", Field: "place", Kind: filter.KindSubstring},
	filter.Option{Param: "organizer", Field: "organizer", Kind: filter.KindSubstring},
	filter.Option{Param: "title", Field: "title", Kind: filter.KindSubstring},
	filter.Option{Param: "durationMinMinutes", Field: "durationMinutes", Kind: filter.KindMin, Type: filter.TypeInt},
	filter.Option{Param: "durationMaxMinutes", Field: "durationMinutes", Kind: filter.KindMax, Type: filter.TypeInt},
)
