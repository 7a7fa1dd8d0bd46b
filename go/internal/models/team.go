package models

import (
	"time"

	"github.com/google/uuid"
)

// ExperienceLevel represents how seasoned a team is
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "Beginner"
	ExperienceIntermediate ExperienceLevel = "Intermediate"
	ExperienceAdvanced     ExperienceLevel = "Advanced"
	ExperienceSemiPro      ExperienceLevel = "SemiPro"
)

// Valid reports whether the level is one of the known experience levels
func (e ExperienceLevel) Valid() bool {
	switch e {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced, ExperienceSemiPro:
		return true
	default:
		return false
	}
}

// PreferredDays represents when a team usually plays
type PreferredDays string

const (
	PreferredWeekends        PreferredDays = "Weekends"
	PreferredWeekdayEvenings PreferredDays = "WeekdayEvenings"
	PreferredFlexible        PreferredDays = "Flexible"
)

func (p PreferredDays) Valid() bool {
	switch p {
	case PreferredWeekends, PreferredWeekdayEvenings, PreferredFlexible:
		return true
	default:
		return false
	}
}

// Team represents a registered amateur team
type Team struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	City            string          `json:"city"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	ContactName     string          `json:"contact_name"`
	Email           string          `json:"email"`
	Phone           *string         `json:"phone,omitempty"`
	PreferredDays   PreferredDays   `json:"preferred_days"`
	Description     *string         `json:"description,omitempty"`
	LogoRef         *string         `json:"logo_ref,omitempty"`
	HomeVenue       *string         `json:"home_venue,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Clone returns a copy of t that shares no pointers with it
func (t Team) Clone() Team {
	t.Phone = clonePtr(t.Phone)
	t.Description = clonePtr(t.Description)
	t.LogoRef = clonePtr(t.LogoRef)
	t.HomeVenue = clonePtr(t.HomeVenue)
	return t
}
