package broadcast

import (
	"strings"
	"time"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/core/common/validation"
)

type CreateBroadcastDTO struct {
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	Priority       string     `json:"priority"`
	TargetAudience string     `json:"target_audience"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

func (d *CreateBroadcastDTO) Validate(now time.Time) *internal.AppError {
	d.Title = strings.TrimSpace(d.Title)
	d.Message = strings.TrimSpace(d.Message)
	d.Priority = strings.ToLower(strings.TrimSpace(d.Priority))
	if d.Priority == "" {
		d.Priority = PriorityNormal
	}
	d.TargetAudience = strings.ToLower(strings.TrimSpace(d.TargetAudience))
	if d.TargetAudience == "" {
		d.TargetAudience = AudienceAll
	}

	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(200)
	v.Field("message", d.Message).Required().MaxLength(5000)
	v.Field("priority", d.Priority).OneOf(internal.ErrCodeInvalidPriority, PriorityNormal, PriorityHigh, PriorityUrgent)
	v.Field("target_audience", d.TargetAudience).OneOf(internal.ErrCodeInvalidAudience, AudienceAll, AudienceAdmin, AudienceStaff)
	v.Field("expires_at", d.ExpiresAt).Future(now)
	return v.Validate()
}
