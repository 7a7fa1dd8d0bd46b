package sqlutil

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mcdev12/friendlies/go/internal/models"
)

// Helper functions for converting between Go types and pgtype values

// ToPgText converts a Go string pointer to pgtype.Text
func ToPgText(val *string) pgtype.Text {
	if val == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *val, Valid: true}
}

// FromPgText converts pgtype.Text to a Go string pointer
func FromPgText(val pgtype.Text) *string {
	if !val.Valid {
		return nil
	}
	s := val.String
	return &s
}

// ToPgDate converts a calendar date to pgtype.Date; the zero date maps to NULL
func ToPgDate(d models.Date) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

// FromPgDate converts pgtype.Date to a calendar date
func FromPgDate(val pgtype.Date) models.Date {
	if !val.Valid {
		return models.Date{}
	}
	return models.DateOf(val.Time)
}

// ToPgTimestamptz converts a Go time pointer to pgtype.Timestamptz
func ToPgTimestamptz(val *time.Time) pgtype.Timestamptz {
	if val == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *val, Valid: true}
}

// FromPgTimestamptz converts pgtype.Timestamptz to a Go time pointer in UTC
func FromPgTimestamptz(val pgtype.Timestamptz) *time.Time {
	if !val.Valid {
		return nil
	}
	t := val.Time.UTC()
	return &t
}
