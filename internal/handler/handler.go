package handler

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nordmark/vidar/internal/domain"
	"github.com/nordmark/vidar/internal/middleware"
)

// OwnerID extracts the authenticated caller's owner id. Routes using it sit
// behind middleware.RequireShopper, so a missing identity is a wiring bug
// surfaced as unauthorized rather than a panic.
func OwnerID(r *http.Request) (pgtype.UUID, error) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		return pgtype.UUID{}, domain.Unauthorized("handler.owner_id", "Authentication required")
	}
	return pgtype.UUID{Bytes: identity.OwnerID, Valid: true}, nil
}

// UUIDString renders a pgtype.UUID for JSON responses.
func UUIDString(id pgtype.UUID) string {
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

// TimePtr renders an optional timestamp, nil when unset.
func TimePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
