package app

import (
	"sort"

	"propboard/internal/domain"
)

// ScoreFunc returns the current score of a player.
type ScoreFunc func(playerID string) int

// Rank orders players by descending score and assigns competition ranks:
// tied players share a rank and the next distinct score takes its 1-based
// position, so scores 10,10,8,5 rank 1,1,3,4. Ties keep registry order.
func Rank(players []domain.Player, score ScoreFunc) []domain.Standing {
	standings := make([]domain.Standing, 0, len(players))
	for _, p := range players {
		standings = append(standings, domain.Standing{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    score(p.ID),
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})

	for i := range standings {
		if i > 0 && standings[i].Score == standings[i-1].Score {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}
	return standings
}
