package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type contextKey string

// QuizConfig is the player-chosen setup for one quiz run. Immutable once the
// session is created.
type QuizConfig struct {
	PlayerName    string `json:"playerName"`
	Category      string `json:"category"`   // Open Trivia DB category id, empty for any
	Difficulty    string `json:"difficulty"` // "easy", "medium", "hard", empty for any
	QuestionCount int    `json:"questionCount"`
}

// Question is one decoded multiple-choice question. All text fields are plain
// strings with HTML entities already decoded.
type Question struct {
	Text          string   `json:"text"`
	Category      string   `json:"category"`
	Difficulty    string   `json:"difficulty"`
	CorrectAnswer string   `json:"correctAnswer"`
	Distractors   []string `json:"distractors"`
}

// QuizSession owns one quiz run's questions, score, and progress pointer.
type QuizSession struct {
	Config       QuizConfig `json:"config"`
	Questions    []Question `json:"questions"`
	CurrentIndex int        `json:"currentIndex"`
	Score        int        `json:"score"`
}

// QuestionRound is the in-flight state of a single displayed question.
// Answered flips exactly once, either by a selection or by the countdown
// reaching zero; everything after that flip is read-only.
type QuestionRound struct {
	Question      Question
	Choices       []string // shuffled display order; keyboard keys 1-4 map to indices 0-3
	TimeRemaining int
	Answered      bool
	Phase         string
	Outcome       string // set when the round resolves
	Selected      int    // display index the player picked, -1 if none
	CorrectIndex  int    // display index of the correct answer
	Warning       bool
}

// HighScoreEntry is one persisted leaderboard row.
type HighScoreEntry struct {
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Difficulty string `json:"difficulty"`
	Date       string `json:"date"`
}

// TriviaCategory is one entry of the category picker.
type TriviaCategory struct {
	ID   string
	Name string
}

// triviaResult is one raw Open Trivia DB record before entity decoding.
type triviaResult struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// triviaResponse is the Open Trivia DB envelope. Only response_code 0 carries
// usable results.
type triviaResponse struct {
	ResponseCode int            `json:"response_code"`
	Results      []triviaResult `json:"results"`
}

// App holds all server state and configuration.
type App struct {
	IsProduction   bool
	StartTime      time.Time
	SessionTimeout time.Duration
	CookieMaxAge   time.Duration
	StaticCacheAge time.Duration
	RateLimitRPS   int
	RateLimitBurst int

	Trivia    *TriviaClient
	ScoreFile string

	Controllers  map[string]*QuizController
	SessionMutex sync.RWMutex
	LimiterMap   map[string]*rate.Limiter
	LimiterMutex sync.Mutex
}
