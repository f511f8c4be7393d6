package calendar

import (
	"errors"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Domain errors
var (
	ErrMissingEventRef = errors.New("eventId and calendarId are required")
)

// Assignment links a Google Calendar event (or a whole recurring series) to
// household profiles.
type Assignment struct {
	ID               string   `json:"id"`
	UserID           string   `json:"userId"`
	EventID          string   `json:"eventId"`
	RecurringEventID *string  `json:"recurringEventId"`
	CalendarID       string   `json:"calendarId"`
	Summary          string   `json:"summary"`
	Start            *string  `json:"start"`
	End              *string  `json:"end"`
	StartDate        *string  `json:"startDate"`
	ProfileIDs       []string `json:"profileIds"`
	ApplyToSeries    bool     `json:"applyToSeries"`
	UpdatedAt        string   `json:"updatedAt"`
}

// SaveParams is the body of an assignment write.
type SaveParams struct {
	UserID           string   `json:"-"`
	EventID          string   `json:"eventId"`
	CalendarID       string   `json:"calendarId"`
	Start            string   `json:"start"`
	End              string   `json:"end"`
	Summary          string   `json:"summary"`
	ProfileIDs       []string `json:"profileIds"`
	RecurringEventID string   `json:"recurringEventId"`
	ApplyToSeries    bool     `json:"applyToSeries"`
}

func (p SaveParams) Validate() error {
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if p.EventID == "" || p.CalendarID == "" {
		return ErrMissingEventRef
	}
	return nil
}

// SeriesMode reports whether the write targets the whole recurring series.
func (p SaveParams) SeriesMode() bool {
	return p.ApplyToSeries && p.RecurringEventID != ""
}

// DocumentID is calendarId__series__recurringEventId in series mode and
// calendarId__eventId otherwise.
func (p SaveParams) DocumentID() string {
	if p.SeriesMode() {
		return p.CalendarID + "__series__" + p.RecurringEventID
	}
	return p.CalendarID + "__" + p.EventID
}

// Assignment builds the stored document for p.
func (p SaveParams) Assignment(now time.Time) *Assignment {
	a := &Assignment{
		ID:            p.DocumentID(),
		UserID:        p.UserID,
		EventID:       p.EventID,
		CalendarID:    p.CalendarID,
		Summary:       p.Summary,
		ProfileIDs:    p.ProfileIDs,
		ApplyToSeries: p.SeriesMode(),
		UpdatedAt:     now.UTC().Format(time.RFC3339Nano),
	}
	if a.ProfileIDs == nil {
		a.ProfileIDs = []string{}
	}
	if p.RecurringEventID != "" {
		a.RecurringEventID = &p.RecurringEventID
	}
	if p.Start != "" {
		a.Start = &p.Start
	}
	if p.End != "" {
		a.End = &p.End
	}

	startDate := DateOnly(p.Start)
	if startDate == "" {
		startDate = DateOnly(p.End)
	}
	if startDate != "" {
		a.StartDate = &startDate
	}
	return a
}

// DateOnly returns the UTC calendar date of an RFC 3339 timestamp or a bare
// YYYY-MM-DD date, and "" for anything else.
func DateOnly(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Format(dateLayout)
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.Format(dateLayout)
	}
	return ""
}

// Range bounds the per-event query on startDate. Empty bounds are open.
type Range struct {
	StartDate string
	EndDate   string
}

// NewRange converts timeMin/timeMax query values to a date-only range.
func NewRange(timeMin, timeMax string) Range {
	return Range{StartDate: DateOnly(timeMin), EndDate: DateOnly(timeMax)}
}
