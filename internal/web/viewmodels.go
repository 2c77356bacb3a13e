package web

import "league-app/internal/model"

type TeamView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PlayerView struct {
	ID         string `json:"id"`
	TeamID     string `json:"team_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	FullName   string `json:"full_name"`
	TotalGoals int    `json:"total_goals"`
}

type FormulaView struct {
	Win  int `json:"win"`
	Draw int `json:"draw"`
	Loss int `json:"loss"`
}

type TableView struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Group    string      `json:"group,omitempty"`
	Formula  FormulaView `json:"formula"`
	TieBreak []string    `json:"tie_break"`
}

type RoundView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived"`
}

type FightView struct {
	ID      string `json:"id"`
	RoundID string `json:"round_id"`
	TableID string `json:"table_id"`
	Team1ID string `json:"team1_id"`
	Team2ID string `json:"team2_id"`
	Score1  int    `json:"score1"`
	Score2  int    `json:"score2"`
}

type GoalView struct {
	ID       string `json:"id"`
	FightID  string `json:"fight_id"`
	PlayerID string `json:"player_id"`
	Count    int    `json:"count"`
	IsHome   bool   `json:"is_home"`
}

type StandingView struct {
	Rank           int    `json:"rank"`
	TeamID         string `json:"team_id"`
	TeamName       string `json:"team_name"`
	Played         int    `json:"played"`
	Win            int    `json:"win"`
	Draw           int    `json:"draw"`
	Loss           int    `json:"loss"`
	Points         int    `json:"points"`
	ScoreFor       int    `json:"score_for"`
	ScoreAgainst   int    `json:"score_against"`
	GoalDifference int    `json:"goal_difference"`
}

type idResponse struct {
	ID string `json:"id"`
}

type changedResponse struct {
	Changed int `json:"changed"`
}

func teamView(t model.Team) TeamView {
	return TeamView{ID: t.ID, Name: t.Name}
}

func playerView(p model.Player) PlayerView {
	return PlayerView{
		ID:         p.ID,
		TeamID:     p.TeamID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		FullName:   p.FullName(),
		TotalGoals: p.TotalGoals,
	}
}

func tableView(t model.Table) TableView {
	keys := make([]string, 0, len(t.RankKeys()))
	for _, k := range t.RankKeys() {
		keys = append(keys, string(k))
	}
	return TableView{
		ID:       t.ID,
		Name:     t.Name,
		Group:    t.Group,
		Formula:  FormulaView{Win: t.Formula.Win, Draw: t.Formula.Draw, Loss: t.Formula.Loss},
		TieBreak: keys,
	}
}

func roundView(r model.Round) RoundView {
	return RoundView{ID: r.ID, Name: r.Name, Archived: r.Archived}
}

func fightView(f model.Fight) FightView {
	return FightView{
		ID:      f.ID,
		RoundID: f.RoundID,
		TableID: f.TableID,
		Team1ID: f.Team1ID,
		Team2ID: f.Team2ID,
		Score1:  f.Score1,
		Score2:  f.Score2,
	}
}

func goalView(g model.Goal) GoalView {
	return GoalView{ID: g.ID, FightID: g.FightID, PlayerID: g.PlayerID, Count: g.Count, IsHome: g.IsHome}
}

func views[T, V any](items []T, view func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, view(item))
	}
	return out
}
