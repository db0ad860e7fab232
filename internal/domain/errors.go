package domain

import "errors"

var (
	// ErrBlobNotFound is returned by blob stores when nothing is persisted under a key.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrPlayerNotFound indicates a player id that is not in the registry.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrQuestionNotFound indicates a question id that is not in the registry.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates an option outside the question's declared options.
	ErrOptionNotFound = errors.New("option not found")
	// ErrInvalidRegistry is returned when the compiled-in questions or players break an invariant.
	ErrInvalidRegistry = errors.New("invalid registry")
)
