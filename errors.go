package main

import "errors"

var (
	// ErrInvalidQuestionCount is returned when the configured question count is outside [1, 50].
	ErrInvalidQuestionCount = errors.New("question count must be between 1 and 50")
	// ErrTriviaUnavailable is returned on transport failure or a non-success HTTP status from the trivia API.
	ErrTriviaUnavailable = errors.New("trivia service unavailable")
	// ErrNoQuestions is returned when the API responded but has no questions for the chosen filters.
	ErrNoQuestions = errors.New("no questions for the selected filters")
	// ErrRoundOver is returned when input arrives after a round has already resolved.
	ErrRoundOver = errors.New("round already resolved")
	// ErrInvalidChoice is returned when a submitted choice index is out of range.
	ErrInvalidChoice = errors.New("choice index out of range")
	// ErrNoActiveRound is returned when input arrives with no round in flight.
	ErrNoActiveRound = errors.New("no active round")
)
