// Package service holds the business logic of the order engine: cart
// mutation, checkout session lifecycle, payment verification, finalization
// and the compensating stock restoration.
package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nordmark/vidar/internal/domain"
)

// parseUUID converts a string id into a pgtype.UUID, mapping parse failures
// to a validation error.
func parseUUID(op, value string) (pgtype.UUID, error) {
	var id pgtype.UUID
	if err := id.Scan(value); err != nil {
		return pgtype.UUID{}, domain.Invalid(op, fmt.Sprintf("invalid id: %q", value))
	}
	return id, nil
}

// newUUID generates a fresh random id.
func newUUID() pgtype.UUID {
	var id pgtype.UUID
	_ = id.Scan(uuid.New().String())
	return id
}

func uuidToString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	v, err := id.Value()
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
