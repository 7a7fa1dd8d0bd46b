// Package assets embeds the demo data loaded by the seed tool.
package assets

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/mcdev12/friendlies/go/internal/teams"
)

//go:embed teams.json
var teamsJSON []byte

// DemoTeams returns the registration requests for the demo teams
func DemoTeams() ([]teams.CreateTeamRequest, error) {
	var reqs []teams.CreateTeamRequest
	if err := json.Unmarshal(teamsJSON, &reqs); err != nil {
		return nil, fmt.Errorf("unmarshal demo teams: %w", err)
	}
	return reqs, nil
}
