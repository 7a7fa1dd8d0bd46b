package teams

import (
	"github.com/mcdev12/friendlies/go/internal/models"
)

// CreateTeamRequest represents the data needed to register a new team
type CreateTeamRequest struct {
	Name            string                 `json:"name" yaml:"name"`
	City            string                 `json:"city" yaml:"city"`
	ExperienceLevel models.ExperienceLevel `json:"experience_level" yaml:"experience_level"`
	ContactName     string                 `json:"contact_name" yaml:"contact_name"`
	Email           string                 `json:"email" yaml:"email"`
	Phone           *string                `json:"phone,omitempty" yaml:"phone,omitempty"`
	PreferredDays   models.PreferredDays   `json:"preferred_days" yaml:"preferred_days"`
	Description     *string                `json:"description,omitempty" yaml:"description,omitempty"`
	LogoRef         *string                `json:"logo_ref,omitempty" yaml:"logo_ref,omitempty"`
	HomeVenue       *string                `json:"home_venue,omitempty" yaml:"home_venue,omitempty"`
}
