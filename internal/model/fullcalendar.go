package model

import "time"

// FullCalendarEvent is the event object shape consumed by FullCalendar.
type FullCalendarEvent struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	AllDay bool   `json:"allDay"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

const (
	isoLayout      = "2006-01-02T15:04:05-07:00"
	isoMicroLayout = "2006-01-02T15:04:05.000000-07:00"
)

func (e Event) ToFullCalendar() FullCalendarEvent {
	return FullCalendarEvent{
		ID:     e.ID,
		Title:  e.Name,
		AllDay: e.AllDay,
		Start:  isoFormat(e.StartDateTime),
		End:    isoFormat(e.EndDateTime),
	}
}

// isoFormat renders t with an explicit offset, adding microseconds only when
// they are non-zero.
func isoFormat(t *time.Time) string {
	if t == nil {
		return ""
	}
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return t.Format(isoMicroLayout)
	}
	return t.Format(isoLayout)
}
