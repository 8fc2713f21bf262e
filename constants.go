package main

// Quiz configuration constants
const (
	MinQuestionCount = 1  // Smallest allowed quiz length
	MaxQuestionCount = 50 // Largest allowed quiz length
	RoundSeconds     = 15 // Countdown per question
	WarningSeconds   = 10 // Timer switches to the warning state at or below this
	MaxLeaderboard   = 10 // Persisted high score entries
)

// Round phase constants
const (
	PhaseTiming        = "timing"
	PhaseTransitioning = "transitioning"
)

// Round outcome constants
const (
	OutcomeCorrect  = "correct"
	OutcomeWrong    = "wrong"
	OutcomeTimedOut = "timeout"
)

// Audio cue constants
const (
	CueCorrect = "correct"
	CueWrong   = "wrong"
	CueTimeout = "timeout"
	CueWarning = "warning"
	CueFinish  = "finish"
)

// Trivia API constants
const (
	triviaCodeSuccess = 0 // The only response_code that yields usable results
)

// Session configuration constants
const (
	SessionCookieName = "session_id"
)

// Route constants
const (
	RouteHome    = "/"
	RouteStart   = "/start"
	RouteState   = "/state"
	RouteAnswer  = "/answer"
	RouteRestart = "/restart"
	RouteResults = "/results"
)

// Error message constants
const (
	ErrorCountOutOfRange = "Number of questions must be between 1 and 50."
	ErrorQuizUnavailable = "Could not reach the trivia service. Please try again."
	ErrorNoQuestions     = "No questions found for those settings. Try different filters."
)

// Context key constants
const (
	requestIDKey contextKey = "request_id"
)
