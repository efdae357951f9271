package game

import (
	"math/rand"
	"sort"
)

// Role is one of the nine cards in the deck.
type Role string

const (
	RoleMerlin   Role = "Merlin"
	RolePercival Role = "Percival"
	RoleServant  Role = "Loyal Servant"
	RoleAssassin Role = "Assassin"
	RoleMorgana  Role = "Morgana"
	RoleMordred  Role = "Mordred"
	RoleOberon   Role = "Oberon"
	RoleMinion   Role = "Minion"
)

// evilRoleOrder is the fixed draw order for evil slots. Two evil players
// get the first two entries, three evil the first three, and so on.
var evilRoleOrder = []Role{RoleAssassin, RoleMorgana, RoleMordred, RoleOberon}

// goodRoleOrder is the fixed draw order for good slots. Slots beyond the
// named roles are filled with additional Loyal Servants.
var goodRoleOrder = []Role{RoleMerlin, RolePercival}

// EvilPlayerCount returns how many evil roles are in play for n players.
// Standard rule: 2 for 5-6 players, 3 for 7-9, 4 for 10.
func EvilPlayerCount(n int) int {
	switch {
	case n <= 6:
		return 2
	case n <= 9:
		return 3
	default:
		return 4
	}
}

// RolesForPlayerCount returns the role multiset used for a game of n
// players. The slice always contains exactly one Merlin and one
// Assassin. Returns nil when n is outside the supported 5-10 range.
func RolesForPlayerCount(n int) []Role {
	if n < MinPlayers || n > MaxPlayers {
		return nil
	}

	evil := EvilPlayerCount(n)
	good := n - evil

	roles := make([]Role, 0, n)
	for i := 0; i < good; i++ {
		if i < len(goodRoleOrder) {
			roles = append(roles, goodRoleOrder[i])
		} else {
			roles = append(roles, RoleServant)
		}
	}
	for i := 0; i < evil; i++ {
		if i < len(evilRoleOrder) {
			roles = append(roles, evilRoleOrder[i])
		} else {
			roles = append(roles, RoleMinion)
		}
	}
	return roles
}

// IsEvil reports whether a role belongs to the evil faction.
func IsEvil(role Role) bool {
	switch role {
	case RoleAssassin, RoleMorgana, RoleMordred, RoleOberon, RoleMinion:
		return true
	}
	return false
}

// RoleSighting is one piece of hidden information a role is shown about
// another player. Role is empty when the viewer only learns alignment
// or candidacy, not the exact card.
type RoleSighting struct {
	Name string `json:"name"`
	Role Role   `json:"role,omitempty"`
	Hint string `json:"hint"`
}

// Hints attached to sightings.
const (
	HintEvil            = "evil"
	HintFellowEvil      = "fellow-evil"
	HintMerlinCandidate = "merlin-or-morgana"
	HintMerlin          = "merlin"
)

// VisibleEvilTo returns the hidden information the given role is shown
// about other players, per the rulebook:
//
//   - Merlin sees every evil player except Mordred (no exact roles).
//   - Evil players other than Oberon and Mordred see fellow evil except
//     Oberon, including their exact roles.
//   - Percival sees Merlin and Morgana without knowing which is which;
//     if Morgana is not in play he identifies Merlin outright.
//   - Mordred, Oberon and the Loyal Servants see nothing.
func VisibleEvilTo(viewer string, role Role, assignment map[string]Role) []RoleSighting {
	var sightings []RoleSighting

	switch {
	case role == RoleMerlin:
		for name, r := range assignment {
			if IsEvil(r) && r != RoleMordred {
				sightings = append(sightings, RoleSighting{Name: name, Hint: HintEvil})
			}
		}

	case role == RolePercival:
		morganaPresent := false
		for _, r := range assignment {
			if r == RoleMorgana {
				morganaPresent = true
				break
			}
		}
		for name, r := range assignment {
			if r == RoleMerlin || r == RoleMorgana {
				hint := HintMerlinCandidate
				if !morganaPresent {
					hint = HintMerlin
				}
				sightings = append(sightings, RoleSighting{Name: name, Hint: hint})
			}
		}

	case IsEvil(role) && role != RoleOberon && role != RoleMordred:
		for name, r := range assignment {
			if name == viewer {
				continue
			}
			if IsEvil(r) && r != RoleOberon {
				sightings = append(sightings, RoleSighting{Name: name, Role: r, Hint: HintFellowEvil})
			}
		}
	}

	// Deterministic order for broadcasting and tests.
	sort.Slice(sightings, func(i, j int) bool {
		return sightings[i].Name < sightings[j].Name
	})
	return sightings
}

// assignRoles deals the role set for the player count uniformly at
// random, one role per player.
func assignRoles(players []string, rng *rand.Rand) map[string]Role {
	roles := RolesForPlayerCount(len(players))
	if roles == nil {
		return nil
	}

	shuffled := make([]Role, len(roles))
	copy(shuffled, roles)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	assignment := make(map[string]Role, len(players))
	for i, name := range players {
		assignment[name] = shuffled[i]
	}
	return assignment
}
