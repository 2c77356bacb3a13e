// Package seed fills an empty store with a small demo league. Everything goes
// through the engine, so the seeded standings and totals are consistent.
package seed

import (
	"context"
	"fmt"
	"math/rand"

	"league-app/internal/league"
	"league-app/internal/model"
)

type Summary struct {
	Teams   int
	Players int
	Rounds  int
	Fights  int
	Goals   int
	TableID string
}

var teamDefs = []struct {
	Name    string
	Players [][2]string
}{
	{"Wilki Warszawa", [][2]string{{"Krystian", "Lewandowski"}, {"Paweł", "Góra"}, {"Jacek", "Nowak"}}},
	{"Orły Kraków", [][2]string{{"Tomek", "Zieliński"}, {"Władek", "Kowal"}, {"Damian", "Lis"}}},
	{"Rekiny Gdańsk", [][2]string{{"Marek", "Król"}, {"Piotr", "Maj"}, {"Bartek", "Nowicki"}}},
	{"Żubry Białystok", [][2]string{{"Rafał", "Olszewski"}, {"Krzysztof", "Małek"}, {"Tomasz", "Jura"}}},
}

// Run creates the demo teams, one table, two rounds of round-robin fights
// with random scores and goals matching those scores. The random source is
// fixed so every run produces the same league.
func Run(ctx context.Context, engine *league.Engine) (Summary, error) {
	rng := rand.New(rand.NewSource(42))
	var sum Summary

	type roster struct {
		team    model.Team
		players []model.Player
	}
	rosters := make([]roster, 0, len(teamDefs))
	for _, def := range teamDefs {
		team, err := engine.CreateTeam(ctx, def.Name)
		if err != nil {
			return sum, fmt.Errorf("seed team %s: %w", def.Name, err)
		}
		sum.Teams++
		r := roster{team: team}
		for _, p := range def.Players {
			player, err := engine.CreatePlayer(ctx, team.ID, p[0], p[1])
			if err != nil {
				return sum, fmt.Errorf("seed player %s %s: %w", p[0], p[1], err)
			}
			sum.Players++
			r.players = append(r.players, player)
		}
		rosters = append(rosters, r)
	}

	table, err := engine.CreateTable(ctx, league.TableSpec{Name: "Liga Miejska", Group: "A"})
	if err != nil {
		return sum, fmt.Errorf("seed table: %w", err)
	}
	sum.TableID = table.ID

	for i := 1; i <= 2; i++ {
		round, err := engine.CreateRound(ctx, fmt.Sprintf("Kolejka %d", i))
		if err != nil {
			return sum, fmt.Errorf("seed round %d: %w", i, err)
		}
		sum.Rounds++
		for a := 0; a < len(rosters); a++ {
			for b := a + 1; b < len(rosters); b++ {
				home, away := rosters[a], rosters[b]
				if i%2 == 0 {
					home, away = away, home
				}
				score1, score2 := rng.Intn(5), rng.Intn(5)
				fightID, err := engine.SubmitFightResult(ctx, round.ID, table.ID, home.team.ID, away.team.ID, score1, score2)
				if err != nil {
					return sum, fmt.Errorf("seed fight %s vs %s: %w", home.team.Name, away.team.Name, err)
				}
				sum.Fights++
				for _, side := range []struct {
					players []model.Player
					score   int
					isHome  bool
				}{{home.players, score1, true}, {away.players, score2, false}} {
					for side.score > 0 {
						count := 1 + rng.Intn(side.score)
						scorer := side.players[rng.Intn(len(side.players))]
						if _, err := engine.SubmitGoal(ctx, fightID, scorer.ID, count, side.isHome); err != nil {
							return sum, fmt.Errorf("seed goal for %s: %w", scorer.FullName(), err)
						}
						sum.Goals++
						side.score -= count
					}
				}
			}
		}
	}
	return sum, nil
}
