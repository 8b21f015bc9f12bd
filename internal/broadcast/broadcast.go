package broadcast

import (
	"strings"
	"time"

	"github.com/frahmantamala/employee-portal/internal"
	broadcastDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/broadcast"
)

const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"

	AudienceAll   = "all"
	AudienceAdmin = "admin"
	AudienceStaff = "staff"

	StatusActive  = "Active"
	StatusExpired = "Expired"
	StatusDeleted = "Deleted"
)

var ErrBroadcastNotFound = internal.NewNotFoundError("broadcast not found", internal.ErrCodeNotFound)

type Broadcast struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	Priority       string     `json:"priority"`
	TargetAudience string     `json:"target_audience"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedBy      *int64     `json:"created_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	Status         string     `json:"status,omitempty"`
}

// MatchesAudience reports whether a user with role sees broadcasts aimed at audience.
func MatchesAudience(audience, role string) bool {
	switch strings.ToLower(strings.TrimSpace(audience)) {
	case "", AudienceAll:
		return true
	case AudienceAdmin:
		return internal.IsAdminRole(role)
	case AudienceStaff:
		return !internal.IsAdminRole(role)
	default:
		return false
	}
}

func (b *Broadcast) IsDeleted() bool {
	return b.DeletedAt != nil
}

func (b *Broadcast) IsExpiredAt(now time.Time) bool {
	return b.ExpiresAt != nil && !b.ExpiresAt.After(now)
}

// IsActiveAt is true for undeleted, unexpired broadcasts aimed at role.
func (b *Broadcast) IsActiveAt(now time.Time, role string) bool {
	return !b.IsDeleted() && !b.IsExpiredAt(now) && MatchesAudience(b.TargetAudience, role)
}

// HistoryStatus labels a broadcast for the history view. Deletion wins over expiry.
func (b *Broadcast) HistoryStatus(now time.Time) string {
	switch {
	case b.IsDeleted():
		return StatusDeleted
	case b.IsExpiredAt(now):
		return StatusExpired
	default:
		return StatusActive
	}
}

func FromDataModel(b *broadcastDatamodel.Broadcast) *Broadcast {
	return &Broadcast{
		ID:             b.ID,
		Title:          b.Title,
		Message:        b.Message,
		Priority:       b.Priority,
		TargetAudience: b.TargetAudience,
		ExpiresAt:      b.ExpiresAt,
		CreatedBy:      b.CreatedBy,
		CreatedAt:      b.CreatedAt,
		DeletedAt:      b.DeletedAt,
	}
}

func ToDataModel(b *Broadcast) *broadcastDatamodel.Broadcast {
	return &broadcastDatamodel.Broadcast{
		ID:             b.ID,
		Title:          b.Title,
		Message:        b.Message,
		Priority:       b.Priority,
		TargetAudience: b.TargetAudience,
		ExpiresAt:      b.ExpiresAt,
		CreatedBy:      b.CreatedBy,
		CreatedAt:      b.CreatedAt,
		DeletedAt:      b.DeletedAt,
	}
}
