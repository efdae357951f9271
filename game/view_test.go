package game

import (
	"encoding/json"
	"strings"
	"testing"
)

// projectedState builds a mid-mission state with known roles and a
// secret fail vote already cast.
func projectedState() *SessionState {
	s := NewSessionState()
	for _, name := range []string{"merlin", "percival", "servant", "assassin", "morgana"} {
		s.Players = append(s.Players, &Player{Name: name, Connected: true})
	}
	s.GameStarted = true
	s.AssignedRoles = map[string]Role{
		"merlin":   RoleMerlin,
		"percival": RolePercival,
		"servant":  RoleServant,
		"assassin": RoleAssassin,
		"morgana":  RoleMorgana,
	}
	s.CurrentPhase = PhaseMission
	s.CurrentTeam = []string{"merlin", "assassin"}
	s.TeamApprovalVotes = map[string]bool{
		"merlin": true, "percival": true, "servant": true,
		"assassin": true, "morgana": false,
	}
	s.MissionVotes = map[string]bool{"assassin": false}
	return s
}

func TestProject_OwnRoleOnly(t *testing.T) {
	s := projectedState()
	view := Project(s, "servant")

	if view.Role != RoleServant {
		t.Errorf("Expected own role servant, got %s", view.Role)
	}
	if len(view.Sightings) != 0 {
		t.Errorf("A servant sees nobody, got %v", view.Sightings)
	}

	// No player's role other than the recipient's own may appear
	// anywhere in the serialized view.
	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, leaked := range []string{string(RoleMerlin), string(RoleAssassin), string(RoleMorgana), string(RolePercival)} {
		if strings.Contains(string(raw), `"`+leaked+`"`) {
			t.Errorf("View for servant leaks role %s: %s", leaked, raw)
		}
	}
}

func TestProject_MissionVotesStayHidden(t *testing.T) {
	s := projectedState()

	for _, recipient := range []string{"merlin", "assassin"} {
		view := Project(s, recipient)
		if view.MissionVoteCount != 1 {
			t.Errorf("Expected mission vote count 1 for %s, got %d", recipient, view.MissionVoteCount)
		}
		raw, err := json.Marshal(view)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if strings.Contains(string(raw), "missionVotes") {
			t.Errorf("Individual mission votes must never be serialized, got %s", raw)
		}
	}
}

func TestProject_PublicFields(t *testing.T) {
	s := projectedState()
	view := Project(s, "morgana")

	if view.PlayerName != "morgana" {
		t.Errorf("Expected recipient morgana, got %s", view.PlayerName)
	}
	if view.CurrentLeader != "merlin" {
		t.Errorf("Expected leader merlin, got %s", view.CurrentLeader)
	}
	if len(view.Players) != 5 {
		t.Errorf("Expected 5 players, got %d", len(view.Players))
	}
	if len(view.TeamApprovalVotes) != 5 || view.TeamApprovalVotes["morgana"] != false {
		t.Errorf("Approval votes are public, got %v", view.TeamApprovalVotes)
	}

	// Morgana sees her fellow evil.
	if got := sightingNames(view.Sightings); len(got) != 1 || !got["assassin"] {
		t.Errorf("Expected morgana to sight the assassin, got %v", got)
	}
}

func TestProject_CopiesDoNotAlias(t *testing.T) {
	s := projectedState()
	view := Project(s, "merlin")

	view.CurrentTeam[0] = "tampered"
	view.TeamApprovalVotes["merlin"] = false
	view.Players[0].Name = "tampered"

	if s.CurrentTeam[0] != "merlin" {
		t.Error("Mutating the view must not touch the state's team")
	}
	if !s.TeamApprovalVotes["merlin"] {
		t.Error("Mutating the view must not touch the state's votes")
	}
	if s.Players[0].Name != "merlin" {
		t.Error("Mutating the view must not touch the roster")
	}
}

func TestProject_SpectatorBeforeRoles(t *testing.T) {
	s := NewSessionState()
	s.Players = append(s.Players, &Player{Name: "alice", Connected: true})

	view := Project(s, "alice")
	if view.Role != "" || view.Sightings != nil {
		t.Errorf("No role before the deal, got role=%s sightings=%v", view.Role, view.Sightings)
	}
	if view.CurrentLeader != "" {
		t.Errorf("No leader before the game starts, got %s", view.CurrentLeader)
	}
}
