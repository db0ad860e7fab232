package domain

import "time"

// Question is a single prop. Options is the closed answer domain.
type Question struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// HasOption reports whether option is one of the question's declared options.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Player is a contest participant.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PickSet maps player id -> question id -> chosen option.
// A missing entry means no pick was made.
type PickSet map[string]map[int]string

// Pick returns the option a player chose for a question.
func (p PickSet) Pick(playerID string, questionID int) (string, bool) {
	byQuestion, ok := p[playerID]
	if !ok {
		return "", false
	}
	option, ok := byQuestion[questionID]
	return option, ok
}

// Clone returns a deep copy.
func (p PickSet) Clone() PickSet {
	out := make(PickSet, len(p))
	for playerID, byQuestion := range p {
		inner := make(map[int]string, len(byQuestion))
		for qid, option := range byQuestion {
			inner[qid] = option
		}
		out[playerID] = inner
	}
	return out
}

// WithPick returns a copy of p with a single entry merged in. An empty option
// clears the entry.
func (p PickSet) WithPick(playerID string, questionID int, option string) PickSet {
	out := p.Clone()
	if option == "" {
		if byQuestion, ok := out[playerID]; ok {
			delete(byQuestion, questionID)
		}
		return out
	}
	if out[playerID] == nil {
		out[playerID] = make(map[int]string)
	}
	out[playerID][questionID] = option
	return out
}

// AnswerSet maps question id -> adjudicated option.
// A missing entry means the question has not been graded yet.
type AnswerSet map[int]string

// Clone returns a copy.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for qid, option := range a {
		out[qid] = option
	}
	return out
}

// WithAnswer returns a copy of a with a single entry merged in. An empty
// option clears the entry.
func (a AnswerSet) WithAnswer(questionID int, option string) AnswerSet {
	out := a.Clone()
	if option == "" {
		delete(out, questionID)
		return out
	}
	out[questionID] = option
	return out
}

// Standing is one leaderboard row.
type Standing struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

// Leaderboard captures the ranked standings of every registered player.
type Leaderboard struct {
	Standings      []Standing `json:"standings"`
	TotalQuestions int        `json:"totalQuestions"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Snapshot is everything a client needs to render the board.
type Snapshot struct {
	Questions   []Question  `json:"questions"`
	Players     []Player    `json:"players"`
	Picks       PickSet     `json:"picks"`
	Answers     AnswerSet   `json:"answers"`
	Leaderboard Leaderboard `json:"leaderboard"`
	Admin       bool        `json:"admin"`
}
