package user

import (
	"fmt"
	"time"
)

// PasswordChangeCooldownDays is the minimum number of whole days between password changes.
const PasswordChangeCooldownDays = 30

type PasswordChangeStatus struct {
	CanChange       bool   `json:"can_change"`
	RemainingDays   int    `json:"remaining_days"`
	NeverChanged    bool   `json:"never_changed"`
	DaysSinceChange int    `json:"days_since_change"`
	Label           string `json:"label"`
}

// PasswordChangeStatusAt counts whole days since changedAt. A nil timestamp always allows a change.
// Timestamps in the future count as zero days.
func PasswordChangeStatusAt(changedAt *time.Time, now time.Time) PasswordChangeStatus {
	if changedAt == nil {
		return PasswordChangeStatus{CanChange: true, NeverChanged: true, Label: "Never changed"}
	}

	diffDays := int(now.Sub(*changedAt) / (24 * time.Hour))
	if diffDays < 0 {
		diffDays = 0
	}

	remaining := PasswordChangeCooldownDays - diffDays
	if remaining < 0 {
		remaining = 0
	}

	return PasswordChangeStatus{
		CanChange:       diffDays >= PasswordChangeCooldownDays,
		RemainingDays:   remaining,
		DaysSinceChange: diffDays,
		Label:           changedLabel(diffDays),
	}
}

func changedLabel(days int) string {
	switch days {
	case 0:
		return "Changed today"
	case 1:
		return "Changed 1 day ago"
	default:
		return fmt.Sprintf("Changed %d days ago", days)
	}
}
