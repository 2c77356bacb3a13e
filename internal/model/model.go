package model

import "strings"

type Outcome string

type RankKey string

const (
	OutcomeWin  Outcome = "win"
	OutcomeDraw Outcome = "draw"
	OutcomeLoss Outcome = "loss"

	RankPoints         RankKey = "points"
	RankGoalDifference RankKey = "goal_difference"
	RankScoreFor       RankKey = "score_for"
	RankWins           RankKey = "wins"
)

// DefaultTieBreak is used by tables created without an explicit rule.
var DefaultTieBreak = []RankKey{RankPoints, RankGoalDifference}

type Team struct {
	ID   string
	Name string
}

type Player struct {
	ID         string
	TeamID     string
	FirstName  string
	LastName   string
	TotalGoals int
}

func (p Player) FullName() string {
	first := strings.TrimSpace(p.FirstName)
	last := strings.TrimSpace(p.LastName)
	if first == "" {
		return last
	}
	if last == "" {
		return first
	}
	return first + " " + last
}

type Round struct {
	ID       string
	Name     string
	Archived bool
	Seq      int64
}

type Fight struct {
	ID      string
	RoundID string
	TableID string
	Team1ID string
	Team2ID string
	Score1  int
	Score2  int
	Seq     int64
}

// PointsFormula maps one fight outcome to the points it is worth.
type PointsFormula struct {
	Win  int
	Draw int
	Loss int
}

var DefaultPointsFormula = PointsFormula{Win: 2, Draw: 1, Loss: 0}

func (f PointsFormula) For(o Outcome) int {
	switch o {
	case OutcomeWin:
		return f.Win
	case OutcomeDraw:
		return f.Draw
	}
	return f.Loss
}

func (f PointsFormula) Points(win, draw, loss int) int {
	return win*f.Win + draw*f.Draw + loss*f.Loss
}

type Table struct {
	ID       string
	Name     string
	Group    string
	Formula  PointsFormula
	TieBreak []RankKey
}

func (t Table) RankKeys() []RankKey {
	if len(t.TieBreak) == 0 {
		return DefaultTieBreak
	}
	return t.TieBreak
}

type TableEntry struct {
	ID           string
	TableID      string
	TeamID       string
	Win          int
	Draw         int
	Loss         int
	Counter      int
	Points       int
	ScoreFor     int
	ScoreAgainst int
	Seq          int64
}

func (e TableEntry) GoalDifference() int {
	return e.ScoreFor - e.ScoreAgainst
}

type Goal struct {
	ID       string
	FightID  string
	PlayerID string
	Count    int
	IsHome   bool
	Seq      int64
}
