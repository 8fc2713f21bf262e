package main

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"strings"
)

// FetchFunc is the abstract question-fetch capability a session is loaded
// through. The production implementation is TriviaClient.FetchQuestions.
type FetchFunc func(context.Context, QuizConfig) ([]Question, error)

// newQuizSession validates the config and produces an empty session with the
// progress pointer and score at zero. Questions arrive later via LoadQuestions.
func newQuizSession(cfg QuizConfig) (*QuizSession, error) {
	if cfg.QuestionCount < MinQuestionCount || cfg.QuestionCount > MaxQuestionCount {
		return nil, ErrInvalidQuestionCount
	}
	return &QuizSession{Config: cfg}, nil
}

// LoadQuestions populates the session through the fetch capability. A failed
// fetch leaves the session unpopulated, so no partial state survives.
func (s *QuizSession) LoadQuestions(ctx context.Context, fetch FetchFunc) error {
	questions, err := fetch(ctx, s.Config)
	if err != nil {
		return err
	}
	s.Questions = questions
	return nil
}

// CurrentQuestion returns the question at the progress pointer. The second
// return is false once the pointer has moved past the last question.
func (s *QuizSession) CurrentQuestion() (Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// Advance moves the progress pointer forward one question and reports whether
// a next question exists. The pointer never moves backwards and never passes
// len(Questions).
func (s *QuizSession) Advance() bool {
	if s.CurrentIndex < len(s.Questions) {
		s.CurrentIndex++
	}
	return s.CurrentIndex < len(s.Questions)
}

// RecordCorrect awards one point. The round protocol calls this at most once
// per question, which keeps Score <= CurrentIndex at round boundaries.
func (s *QuizSession) RecordCorrect() {
	s.Score++
}

// ScorePercentage returns the rounded score percentage for the configured
// quiz length.
func (s *QuizSession) ScorePercentage() int {
	if s.Config.QuestionCount <= 0 {
		return 0
	}
	return int(math.Round(float64(s.Score) / float64(s.Config.QuestionCount) * 100))
}

// IsComplete reports whether the progress pointer has passed the last question.
func (s *QuizSession) IsComplete() bool {
	return s.CurrentIndex >= len(s.Questions)
}

// newQuestionRound builds the round for one question: choices are shuffled
// once, the countdown starts at RoundSeconds, and nothing is answered yet.
func newQuestionRound(q Question) *QuestionRound {
	choices := make([]string, 0, len(q.Distractors)+1)
	choices = append(choices, q.CorrectAnswer)
	choices = append(choices, q.Distractors...)
	shuffleChoices(choices)

	return &QuestionRound{
		Question:      q,
		Choices:       choices,
		TimeRemaining: RoundSeconds,
		Phase:         PhaseTiming,
		Selected:      -1,
		CorrectIndex:  indexOfChoice(choices, q.CorrectAnswer),
	}
}

// shuffleChoices permutes the slice in place with Fisher-Yates so every
// ordering is equally likely. Indices come from crypto/rand; if the source
// fails, the position is left where it is.
func shuffleChoices(choices []string) {
	for i := len(choices) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			logWarn("Error generating random number: %v, leaving position %d in place", err, i)
			continue
		}
		j := n.Int64()
		choices[i], choices[j] = choices[j], choices[i]
	}
}

// indexOfChoice finds the display index of answer, comparing case-insensitively.
func indexOfChoice(choices []string, answer string) int {
	for i, c := range choices {
		if strings.EqualFold(c, answer) {
			return i
		}
	}
	logWarn("Correct answer %q not present in choices, upstream data bug", answer)
	return -1
}

// SelectAnswer resolves the round from a player selection. The answered guard
// is checked and flipped before anything else, so a timeout tick arriving in
// the same instant observes Answered and becomes a no-op. Scoring happens at
// most once because the flip happens at most once.
func (r *QuestionRound) SelectAnswer(s *QuizSession, choice int) (string, error) {
	if r.Answered {
		return r.Outcome, ErrRoundOver
	}
	if choice < 0 || choice >= len(r.Choices) {
		return "", ErrInvalidChoice
	}

	r.Answered = true
	r.Phase = PhaseTransitioning
	r.Selected = choice

	if strings.EqualFold(r.Choices[choice], r.Question.CorrectAnswer) {
		r.Outcome = OutcomeCorrect
		s.RecordCorrect()
	} else {
		r.Outcome = OutcomeWrong
	}
	return r.Outcome, nil
}

// Tick advances the countdown by one second while the round is still timing.
// At WarningSeconds the round enters the warning presentation state; at zero
// an unanswered round resolves as timed out with no score change. Returns
// true when this tick resolved the round. A tick after the round resolved is
// a no-op, the other half of the at-most-once guarantee.
func (r *QuestionRound) Tick() bool {
	if r.Answered {
		return false
	}
	if r.TimeRemaining > 0 {
		r.TimeRemaining--
	}
	if r.TimeRemaining <= WarningSeconds {
		r.Warning = true
	}
	if r.TimeRemaining > 0 {
		return false
	}

	r.Answered = true
	r.Phase = PhaseTransitioning
	r.Outcome = OutcomeTimedOut
	return true
}

// Resolved reports whether the round has reached an outcome.
func (r *QuestionRound) Resolved() bool {
	return r.Answered
}
