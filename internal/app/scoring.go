package app

import "propboard/internal/domain"

// ScoreFor counts the questions where the player's pick equals the
// adjudicated answer. A question only counts when both exist; comparison is
// exact and case-sensitive. Unknown players score 0.
func ScoreFor(playerID string, picks domain.PickSet, answers domain.AnswerSet, questions []domain.Question) int {
	byQuestion, ok := picks[playerID]
	if !ok {
		return 0
	}

	score := 0
	for _, q := range questions {
		answer, graded := answers[q.ID]
		if !graded {
			continue
		}
		if pick, picked := byQuestion[q.ID]; picked && pick == answer {
			score++
		}
	}
	return score
}
