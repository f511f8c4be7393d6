package firestore

import (
	"context"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"household/internal/domain/calendar"
)

const assignmentsCollection = "eventAssignments"

type AssignmentRepository struct {
	client *fs.Client
}

func NewAssignmentRepository(client *fs.Client) *AssignmentRepository {
	return &AssignmentRepository{client: client}
}

func (r *AssignmentRepository) Upsert(ctx context.Context, a *calendar.Assignment) error {
	_, err := r.client.Collection(assignmentsCollection).Doc(a.ID).Set(ctx, encodeAssignment(a), fs.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to save event assignment: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) ListInRange(ctx context.Context, userID string, rng calendar.Range) ([]*calendar.Assignment, error) {
	q := r.client.Collection(assignmentsCollection).Where("userId", "==", userID)
	if rng.StartDate != "" {
		q = q.Where("startDate", ">=", rng.StartDate)
	}
	if rng.EndDate != "" {
		q = q.Where("startDate", "<=", rng.EndDate)
	}
	return r.collect(q.Documents(ctx))
}

func (r *AssignmentRepository) ListSeries(ctx context.Context, userID string) ([]*calendar.Assignment, error) {
	q := r.client.Collection(assignmentsCollection).
		Where("userId", "==", userID).
		Where("applyToSeries", "==", true)
	return r.collect(q.Documents(ctx))
}

func (r *AssignmentRepository) collect(iter *fs.DocumentIterator) ([]*calendar.Assignment, error) {
	defer iter.Stop()

	out := []*calendar.Assignment{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list event assignments: %w", err)
		}
		out = append(out, decodeAssignment(snap.Ref.ID, snap.Data()))
	}
	return out, nil
}

func encodeAssignment(a *calendar.Assignment) map[string]interface{} {
	profileIDs := make([]interface{}, 0, len(a.ProfileIDs))
	for _, id := range a.ProfileIDs {
		profileIDs = append(profileIDs, id)
	}
	return map[string]interface{}{
		"userId":           a.UserID,
		"eventId":          a.EventID,
		"recurringEventId": stringOrNil(a.RecurringEventID),
		"calendarId":       a.CalendarID,
		"summary":          a.Summary,
		"start":            stringOrNil(a.Start),
		"end":              stringOrNil(a.End),
		"startDate":        stringOrNil(a.StartDate),
		"profileIds":       profileIDs,
		"applyToSeries":    a.ApplyToSeries,
		"updatedAt":        a.UpdatedAt,
	}
}

func decodeAssignment(id string, data map[string]interface{}) *calendar.Assignment {
	d := document(data)
	return &calendar.Assignment{
		ID:               id,
		UserID:           d.str("userId"),
		EventID:          d.str("eventId"),
		RecurringEventID: d.strPtr("recurringEventId"),
		CalendarID:       d.str("calendarId"),
		Summary:          d.str("summary"),
		Start:            d.strPtr("start"),
		End:              d.strPtr("end"),
		StartDate:        d.strPtr("startDate"),
		ProfileIDs:       d.strings("profileIds"),
		ApplyToSeries:    d.boolean("applyToSeries"),
		UpdatedAt:        d.str("updatedAt"),
	}
}
