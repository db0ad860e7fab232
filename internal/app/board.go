package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
	"golang.org/x/sync/errgroup"

	"propboard/internal/domain"
	"propboard/internal/registry"
)

// Board owns all contest state for the lifetime of the process: the registry,
// the persisted picks and answers, and the live subscribers. Scores and ranks
// are recomputed from the store on every read.
type Board struct {
	registry       *registry.Registry
	store          *StateStore
	logger         *slog.Logger
	metrics        Metrics
	strict         bool
	now            func() time.Time
	defaultPicks   domain.PickSet
	defaultAnswers domain.AnswerSet

	// writeMu makes load, merge, persist and broadcast one step.
	writeMu sync.Mutex

	mu          sync.Mutex
	subscribers map[chan domain.Snapshot]struct{}
}

// BoardOption configures a Board.
type BoardOption func(*Board)

func WithLogger(logger *slog.Logger) BoardOption {
	return func(b *Board) { b.logger = logger }
}

func WithMetrics(metrics Metrics) BoardOption {
	return func(b *Board) { b.metrics = metrics }
}

// WithStrictOptions turns registry validation of mutations on or off.
// When off, any player id, question id and option text is accepted.
func WithStrictOptions(strict bool) BoardOption {
	return func(b *Board) { b.strict = strict }
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) BoardOption {
	return func(b *Board) { b.now = now }
}

// WithDefaults sets what reads return before anything has been persisted.
func WithDefaults(picks domain.PickSet, answers domain.AnswerSet) BoardOption {
	return func(b *Board) {
		b.defaultPicks = picks.Clone()
		b.defaultAnswers = answers.Clone()
	}
}

func NewBoard(reg *registry.Registry, blobs BlobStore, opts ...BoardOption) *Board {
	b := &Board{
		registry:       reg,
		logger:         slog.Default(),
		metrics:        NopMetrics{},
		strict:         true,
		now:            time.Now,
		defaultPicks:   domain.PickSet{},
		defaultAnswers: domain.AnswerSet{},
		subscribers:    make(map[chan domain.Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.store = NewStateStore(blobs, b.logger, b.metrics)
	return b
}

// Registry exposes the fixed questions and players.
func (b *Board) Registry() *registry.Registry {
	return b.registry
}

// Picks returns the current persisted picks.
func (b *Board) Picks(ctx context.Context) (domain.PickSet, error) {
	return b.store.LoadPicks(ctx, b.defaultPicks)
}

// Answers returns the current persisted answers.
func (b *Board) Answers(ctx context.Context) (domain.AnswerSet, error) {
	return b.store.LoadAnswers(ctx, b.defaultAnswers)
}

// ScoreFor returns a player's current number of correct picks.
func (b *Board) ScoreFor(ctx context.Context, playerID string) (int, error) {
	picks, answers, err := b.load(ctx)
	if err != nil {
		return 0, err
	}
	return ScoreFor(playerID, picks, answers, b.registry.Questions()), nil
}

// Leaderboard ranks every registered player against the current state.
func (b *Board) Leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	picks, answers, err := b.load(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return b.leaderboard(picks, answers), nil
}

// Snapshot returns the registry, state and leaderboard in one consistent read.
func (b *Board) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	picks, answers, err := b.load(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.Snapshot{
		Questions:   b.registry.Questions(),
		Players:     b.registry.Players(),
		Picks:       picks,
		Answers:     answers,
		Leaderboard: b.leaderboard(picks, answers),
	}, nil
}

// OpenSession starts a client session. The admin flag is fixed for the
// session's lifetime. It comes from a client-visible request parameter and
// is a convenience switch, not an access-control boundary.
func (b *Board) OpenSession(admin bool) *Session {
	return &Session{board: b, admin: admin}
}

// Subscribe returns a channel that receives a snapshot after every applied
// mutation, starting with the current one. The caller must invoke the
// returned cancel function to avoid leaks.
func (b *Board) Subscribe(ctx context.Context) (<-chan domain.Snapshot, func(), error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	initial, err := b.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Snapshot, 8)
	ch <- initial

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	b.metrics.SubscribersChanged(1)

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
			b.metrics.SubscribersChanged(-1)
		}
	}
	return ch, cancel, nil
}

func (b *Board) load(ctx context.Context) (domain.PickSet, domain.AnswerSet, error) {
	var (
		picks   domain.PickSet
		answers domain.AnswerSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		picks, err = b.store.LoadPicks(gctx, b.defaultPicks)
		return err
	})
	g.Go(func() error {
		var err error
		answers, err = b.store.LoadAnswers(gctx, b.defaultAnswers)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return picks, answers, nil
}

func (b *Board) leaderboard(picks domain.PickSet, answers domain.AnswerSet) domain.Leaderboard {
	questions := b.registry.Questions()
	standings := Rank(b.registry.Players(), func(playerID string) int {
		return ScoreFor(playerID, picks, answers, questions)
	})
	return domain.Leaderboard{
		Standings:      standings,
		TotalQuestions: len(questions),
		UpdatedAt:      b.now(),
	}
}

func (b *Board) setPick(ctx context.Context, admin bool, playerID string, questionID int, option string) error {
	if !admin {
		b.metrics.MutationApplied("pick", OutcomeUnauthorized)
		b.logger.Debug("ignoring pick from non-admin session", "player", playerID, "question", questionID)
		return nil
	}
	if err := b.validate(playerID, questionID, option, true); err != nil {
		b.metrics.MutationApplied("pick", OutcomeRejected)
		return err
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	picks, err := b.store.LoadPicks(ctx, b.defaultPicks)
	if err != nil {
		b.metrics.MutationApplied("pick", OutcomeFailed)
		return err
	}
	if err := b.store.SavePicks(ctx, picks.WithPick(playerID, questionID, option)); err != nil {
		b.metrics.MutationApplied("pick", OutcomeFailed)
		return err
	}
	b.metrics.MutationApplied("pick", OutcomeApplied)
	b.logger.Info("pick recorded", "player", playerID, "question", questionID, "option", option)
	b.broadcast(ctx)
	return nil
}

func (b *Board) setAnswer(ctx context.Context, admin bool, questionID int, option string) error {
	if !admin {
		b.metrics.MutationApplied("answer", OutcomeUnauthorized)
		b.logger.Debug("ignoring answer from non-admin session", "question", questionID)
		return nil
	}
	if err := b.validate("", questionID, option, false); err != nil {
		b.metrics.MutationApplied("answer", OutcomeRejected)
		return err
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	answers, err := b.store.LoadAnswers(ctx, b.defaultAnswers)
	if err != nil {
		b.metrics.MutationApplied("answer", OutcomeFailed)
		return err
	}
	if err := b.store.SaveAnswers(ctx, answers.WithAnswer(questionID, option)); err != nil {
		b.metrics.MutationApplied("answer", OutcomeFailed)
		return err
	}
	b.metrics.MutationApplied("answer", OutcomeApplied)
	b.logger.Info("answer recorded", "question", questionID, "option", option)
	b.broadcast(ctx)
	return nil
}

func (b *Board) validate(playerID string, questionID int, option string, checkPlayer bool) error {
	if !b.strict {
		return nil
	}
	if checkPlayer {
		if _, ok := b.registry.Player(playerID); !ok {
			return fmt.Errorf("%w: %q", domain.ErrPlayerNotFound, playerID)
		}
	}
	q, ok := b.registry.Question(questionID)
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrQuestionNotFound, questionID)
	}
	if option == "" || q.HasOption(option) {
		return nil
	}
	return fmt.Errorf("%w: %q is not an option for question %d (did you mean %q?)",
		domain.ErrOptionNotFound, option, questionID, nearestOption(q, option))
}

func nearestOption(q domain.Question, option string) string {
	best, bestDistance := "", -1
	for _, o := range q.Options {
		d := levenshtein.ComputeDistance(option, o)
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = o, d
		}
	}
	return best
}

// broadcast must be called with writeMu held so subscribers see snapshots in write order.
func (b *Board) broadcast(ctx context.Context) {
	b.mu.Lock()
	n := len(b.subscribers)
	b.mu.Unlock()
	if n == 0 {
		return
	}

	snapshot, err := b.Snapshot(ctx)
	if err != nil {
		b.logger.Warn("skipping broadcast", "error", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Subscriber is behind; replace its oldest pending snapshot.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

// Session is one client's view of the board.
type Session struct {
	board *Board
	admin bool
}

// IsAdmin reports whether mutations from this session are applied.
func (s *Session) IsAdmin() bool {
	return s.admin
}

// SetPick records a player's pick. Non-admin sessions are silently ignored.
// An empty option clears the pick.
func (s *Session) SetPick(ctx context.Context, playerID string, questionID int, option string) error {
	return s.board.setPick(ctx, s.admin, playerID, questionID, option)
}

// SetAnswer records the adjudicated answer. Non-admin sessions are silently
// ignored. An empty option clears the answer.
func (s *Session) SetAnswer(ctx context.Context, questionID int, option string) error {
	return s.board.setAnswer(ctx, s.admin, questionID, option)
}

// Snapshot returns the board as seen by this session.
func (s *Session) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	snapshot, err := s.board.Snapshot(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snapshot.Admin = s.admin
	return snapshot, nil
}
