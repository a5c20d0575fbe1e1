package request

import (
	"fmt"

	"github.com/mailsentry/mailsentry/pkg/domain/riskprofile"
)

type BulkUpdateProfilesRequest struct {
	Profiles []riskprofile.Profile `json:"profiles"`
}

func (r *BulkUpdateProfilesRequest) Validate() error {
	if len(r.Profiles) == 0 {
		return fmt.Errorf("profiles must not be empty")
	}
	return nil
}

type UpdateProfileRequest struct {
	RiskMultiplier *float64 `json:"risk_multiplier,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r.RiskMultiplier == nil && r.Category == nil && r.Notes == nil {
		return fmt.Errorf("at least one field to update is required")
	}
	return nil
}

func (r *UpdateProfileRequest) Overrides() riskprofile.Overrides {
	return riskprofile.Overrides{
		RiskMultiplier: r.RiskMultiplier,
		Category:       r.Category,
		Notes:          r.Notes,
	}
}
