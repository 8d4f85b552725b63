package app

import (
	"time"

	"github.com/example/warden/internal/core/junction"
	"github.com/example/warden/internal/ports/secondary"
)

// junctionFromRecord converts a persisted slot entry to the core type.
func junctionFromRecord(rec *secondary.JunctionRecord) junction.Junction {
	created, _ := time.Parse(time.RFC3339, rec.CreatedAt)
	return junction.Junction{
		Type:      junction.Type(rec.Type),
		Reason:    rec.Reason,
		Source:    rec.Source,
		From:      rec.FromGear,
		To:        rec.ToGear,
		CreatedAt: created,
	}
}

func junctionToRecord(j junction.Junction) *secondary.JunctionRecord {
	rec := &secondary.JunctionRecord{
		Type:     string(j.Type),
		Reason:   j.Reason,
		Source:   j.Source,
		FromGear: j.From,
		ToGear:   j.To,
	}
	if !j.CreatedAt.IsZero() {
		rec.CreatedAt = j.CreatedAt.UTC().Format(time.RFC3339)
	}
	return rec
}

// setPendingJunction fills the single slot. If a junction is already
// pending it is kept unchanged (the slot is not a queue) and false is
// returned.
func setPendingJunction(tx secondary.StateTx, j junction.Junction) (bool, error) {
	existing, err := tx.Junction()
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if err := tx.SetJunction(junctionToRecord(j)); err != nil {
		return false, err
	}
	return true, nil
}

// suppressionCovers reports whether a dismissal window auto-approves the
// junction right now. Expiry is a wall-clock comparison on read; expired
// windows simply stop matching, so the junction resurfaces unchanged.
func suppressionCovers(tx secondary.StateTx, j junction.Junction, now time.Time) (bool, error) {
	rec, err := tx.Suppression(string(j.Type), j.Reason)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	until, err := time.Parse(time.RFC3339, rec.Until)
	if err != nil {
		// Unreadable window: fail toward surfacing the junction.
		return false, nil
	}
	s := junction.Suppression{
		Key:   junction.SuppressionKey{Type: junction.Type(rec.Type), Reason: rec.Reason},
		Until: until,
	}
	return s.Covers(j, now), nil
}

// recordSuppression stores the dismissal window for (type, reason).
func recordSuppression(tx secondary.StateTx, j junction.Junction, minutes int, now time.Time) error {
	if minutes <= 0 {
		minutes = junction.DefaultDismissMinutes
	}
	return tx.SetSuppression(&secondary.SuppressionRecord{
		Type:   string(j.Type),
		Reason: j.Reason,
		Until:  now.Add(time.Duration(minutes) * time.Minute).UTC().Format(time.RFC3339),
	})
}
