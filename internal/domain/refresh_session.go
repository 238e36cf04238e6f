package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshSession is one live link of a refresh-token lineage. Rotation inserts
// a new row and removes the old one; CreatedAt is inherited from the first
// session of the lineage and anchors the absolute lifetime cap.
type RefreshSession struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	TokenHash string    `db:"token_hash" json:"-"`
	UserAgent string    `db:"user_agent" json:"user_agent"`
	IPAddress string    `db:"ip_address" json:"ip_address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}
