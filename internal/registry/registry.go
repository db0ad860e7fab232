package registry

import (
	"fmt"
	"sort"

	"propboard/internal/domain"
)

// Registry is the fixed set of questions and players for one contest.
// It is built once at startup and never mutated afterwards.
type Registry struct {
	questions []domain.Question
	players   []domain.Player
	byQID     map[int]int
	byPID     map[string]int
}

// New validates the given questions and players and returns a Registry with
// questions ordered by ascending id. Players keep the order they were given in.
func New(questions []domain.Question, players []domain.Player) (*Registry, error) {
	qs := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		qs[i] = q
	}
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })

	r := &Registry{
		questions: qs,
		players:   append([]domain.Player(nil), players...),
		byQID:     make(map[int]int, len(qs)),
		byPID:     make(map[string]int, len(players)),
	}

	for i, q := range r.questions {
		if _, dup := r.byQID[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %d", domain.ErrInvalidRegistry, q.ID)
		}
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("%w: question %d has no options", domain.ErrInvalidRegistry, q.ID)
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, o := range q.Options {
			if o == "" {
				return nil, fmt.Errorf("%w: question %d has an empty option", domain.ErrInvalidRegistry, q.ID)
			}
			if _, dup := seen[o]; dup {
				return nil, fmt.Errorf("%w: question %d repeats option %q", domain.ErrInvalidRegistry, q.ID, o)
			}
			seen[o] = struct{}{}
		}
		r.byQID[q.ID] = i
	}

	for i, p := range r.players {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: player at position %d has no id", domain.ErrInvalidRegistry, i)
		}
		if _, dup := r.byPID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate player id %q", domain.ErrInvalidRegistry, p.ID)
		}
		r.byPID[p.ID] = i
	}

	return r, nil
}

// MustNew is like New but panics on an invalid registry. Intended for
// compiled-in configuration only.
func MustNew(questions []domain.Question, players []domain.Player) *Registry {
	r, err := New(questions, players)
	if err != nil {
		panic(err)
	}
	return r
}

// Questions returns the questions in ascending id order. The slice is a copy.
func (r *Registry) Questions() []domain.Question {
	return append([]domain.Question(nil), r.questions...)
}

// Players returns the roster in registry order. The slice is a copy.
func (r *Registry) Players() []domain.Player {
	return append([]domain.Player(nil), r.players...)
}

// Question looks up a question by id.
func (r *Registry) Question(id int) (domain.Question, bool) {
	i, ok := r.byQID[id]
	if !ok {
		return domain.Question{}, false
	}
	return r.questions[i], true
}

// Player looks up a player by id.
func (r *Registry) Player(id string) (domain.Player, bool) {
	i, ok := r.byPID[id]
	if !ok {
		return domain.Player{}, false
	}
	return r.players[i], true
}

// NumQuestions is the maximum score any player can reach.
func (r *Registry) NumQuestions() int {
	return len(r.questions)
}
