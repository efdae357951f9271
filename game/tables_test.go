package game

import "testing"

func TestRequiredTeamSize_MatchesRulebook(t *testing.T) {
	expected := map[int][5]int{
		5:  {2, 3, 2, 3, 3},
		6:  {2, 3, 4, 3, 4},
		7:  {2, 3, 3, 4, 4},
		8:  {3, 4, 4, 5, 5},
		9:  {3, 4, 4, 5, 5},
		10: {3, 4, 4, 5, 5},
	}

	for players, sizes := range expected {
		for mission, want := range sizes {
			got := RequiredTeamSize(players, mission)
			if got != want {
				t.Errorf("RequiredTeamSize(%d, %d) = %d, want %d", players, mission, got, want)
			}
		}
	}
}

func TestRequiredTeamSize_OutOfRange(t *testing.T) {
	if got := RequiredTeamSize(4, 0); got != 0 {
		t.Errorf("Expected 0 for unsupported player count, got %d", got)
	}
	if got := RequiredTeamSize(5, 5); got != 0 {
		t.Errorf("Expected 0 for mission index 5, got %d", got)
	}
	if got := RequiredTeamSize(5, -1); got != 0 {
		t.Errorf("Expected 0 for negative mission index, got %d", got)
	}
}

func TestFailThreshold(t *testing.T) {
	for players := 5; players <= 10; players++ {
		for mission := 0; mission < MissionCount; mission++ {
			want := 1
			if mission == 3 && players >= 7 {
				want = 2
			}
			if got := FailThreshold(players, mission); got != want {
				t.Errorf("FailThreshold(%d, %d) = %d, want %d", players, mission, got, want)
			}
		}
	}
}
