package web

import "league-app/internal/model"

// BuildStandings numbers ranked entries and attaches team names. Entries
// must already be in ranking order.
func BuildStandings(teams []model.Team, entries []model.TableEntry) []StandingView {
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}

	standings := make([]StandingView, 0, len(entries))
	for i, e := range entries {
		standings = append(standings, StandingView{
			Rank:           i + 1,
			TeamID:         e.TeamID,
			TeamName:       names[e.TeamID],
			Played:         e.Counter,
			Win:            e.Win,
			Draw:           e.Draw,
			Loss:           e.Loss,
			Points:         e.Points,
			ScoreFor:       e.ScoreFor,
			ScoreAgainst:   e.ScoreAgainst,
			GoalDifference: e.GoalDifference(),
		})
	}
	return standings
}
