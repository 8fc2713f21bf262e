package main

import (
	"sync"
	"time"
)

// transitionDelay is the dwell after a round resolves, during which the UI
// shows the outcome before the next round starts. Package-level so tests can
// shorten it.
var transitionDelay = 2500 * time.Millisecond

// QuizController owns at most one QuizSession and the chain of QuestionRounds
// it spawns, for a single browser session. Rounds never construct their
// successors; the controller receives each round's terminal outcome and
// either starts the next round or finalizes the session.
//
// All transitions run under mu, which makes the round's check-then-set of
// Answered atomic even though ticks and selections arrive on different
// goroutines. The generation counter invalidates timers of replaced rounds: a
// leaked ticker or dwell callback carries the generation it was armed for and
// no-ops when it no longer matches.
type QuizController struct {
	mu sync.Mutex

	Session   *QuizSession
	Round     *QuestionRound
	Finished  bool
	HighScore bool
	Board     []HighScoreEntry

	LastAccessTime time.Time
	ScoreFile      string

	generation int
	stopTicker chan struct{}
	dwellTimer *time.Timer
	pendingCue string
}

// RoundView is the render-ready snapshot handed to templates. Cue is a
// one-shot audio hint consumed by the first snapshot that carries it.
type RoundView struct {
	PlayerName    string
	QuestionNum   int
	QuestionTotal int
	Score         int
	Question      Question
	Choices       []string
	TimeRemaining int
	Warning       bool
	Phase         string
	Outcome       string
	Selected      int
	CorrectIndex  int
	Finished      bool
	Percentage    int
	Cue           string
}

func newQuizController(scoreFile string) *QuizController {
	return &QuizController{
		ScoreFile:      scoreFile,
		LastAccessTime: time.Now(),
	}
}

// Begin installs a freshly loaded session and starts its first round. Any
// timers of a previous session are stopped first, so nothing from the old
// round chain can fire into the new one.
func (qc *QuizController) Begin(s *QuizSession) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.teardownLocked()
	qc.Session = s
	qc.Finished = false
	qc.HighScore = false
	qc.Board = nil
	qc.pendingCue = ""
	qc.startRoundLocked()
}

// Cancel stops the active round's timers and discards the round. Safe to call
// with nothing in flight.
func (qc *QuizController) Cancel() {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.teardownLocked()
}

// Touch refreshes the idle timestamp.
func (qc *QuizController) Touch() {
	qc.mu.Lock()
	qc.LastAccessTime = time.Now()
	qc.mu.Unlock()
}

// IdleSince returns the last access time.
func (qc *QuizController) IdleSince() time.Time {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	return qc.LastAccessTime
}

// SelectAnswer feeds a player selection (display-order index) into the active
// round. Late or duplicate submissions return ErrRoundOver/ErrNoActiveRound
// and change nothing.
func (qc *QuizController) SelectAnswer(choice int) (string, error) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if qc.Session == nil || qc.Round == nil {
		return "", ErrNoActiveRound
	}

	outcome, err := qc.Round.SelectAnswer(qc.Session, choice)
	if err != nil {
		return outcome, err
	}

	switch outcome {
	case OutcomeCorrect:
		qc.pendingCue = CueCorrect
	case OutcomeWrong:
		qc.pendingCue = CueWrong
	}
	qc.scheduleFinishLocked(qc.generation)
	return outcome, nil
}

// Snapshot returns the current render state. The second return is false when
// no quiz has been started for this controller.
func (qc *QuizController) Snapshot() (RoundView, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if qc.Session == nil {
		return RoundView{}, false
	}

	view := RoundView{
		PlayerName:    qc.Session.Config.PlayerName,
		QuestionNum:   qc.Session.CurrentIndex + 1,
		QuestionTotal: qc.Session.Config.QuestionCount,
		Score:         qc.Session.Score,
		Finished:      qc.Finished,
		Cue:           qc.pendingCue,
		Selected:      -1,
	}
	qc.pendingCue = ""

	if qc.Round != nil {
		view.Question = qc.Round.Question
		view.Choices = qc.Round.Choices
		view.TimeRemaining = qc.Round.TimeRemaining
		view.Warning = qc.Round.Warning
		view.Phase = qc.Round.Phase
		view.Outcome = qc.Round.Outcome
		view.Selected = qc.Round.Selected
		view.CorrectIndex = qc.Round.CorrectIndex
	}
	return view, true
}

// Results returns the finalized score payload. The second return is false
// until the session has finished.
func (qc *QuizController) Results() (RoundView, []HighScoreEntry, bool, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if qc.Session == nil || !qc.Finished {
		return RoundView{}, nil, false, false
	}
	view := RoundView{
		PlayerName:    qc.Session.Config.PlayerName,
		QuestionTotal: qc.Session.Config.QuestionCount,
		Score:         qc.Session.Score,
		Percentage:    qc.Session.ScorePercentage(),
		Finished:      true,
	}
	return view, qc.Board, qc.HighScore, true
}

// startRoundLocked constructs the round for the session's current question
// and arms its one-second ticker. With no question left it finalizes instead.
func (qc *QuizController) startRoundLocked() {
	qc.stopTimersLocked()

	q, ok := qc.Session.CurrentQuestion()
	if !ok {
		qc.finalizeLocked()
		return
	}

	qc.Round = newQuestionRound(q)
	qc.generation++
	stop := make(chan struct{})
	qc.stopTicker = stop
	go qc.runTicker(qc.generation, stop)
}

// runTicker delivers one Tick per second until the round resolves or is torn
// down.
func (qc *QuizController) runTicker(gen int, stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if qc.tick(gen) {
				return
			}
		}
	}
}

// tick applies one countdown second to the round of generation gen. Returns
// true when the ticker should stop. A stale generation means the round was
// replaced; the tick must not touch its successor.
func (qc *QuizController) tick(gen int) bool {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if qc.Round == nil || gen != qc.generation {
		return true
	}
	if qc.Round.Answered {
		// A selection raced in ahead of this tick.
		return true
	}

	wasWarning := qc.Round.Warning
	resolved := qc.Round.Tick()
	if resolved {
		qc.pendingCue = CueTimeout
		qc.scheduleFinishLocked(gen)
		return true
	}
	if qc.Round.Warning && !wasWarning {
		qc.pendingCue = CueWarning
	}
	return false
}

// scheduleFinishLocked arms the transition dwell that ends the resolved round.
func (qc *QuizController) scheduleFinishLocked(gen int) {
	qc.dwellTimer = time.AfterFunc(transitionDelay, func() {
		qc.finishRound(gen)
	})
}

// finishRound ends the transition dwell: advance the session, then start the
// next round or finalize. Only the generation that armed the dwell may finish
// it, and only if its round actually resolved.
func (qc *QuizController) finishRound(gen int) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if qc.Round == nil || gen != qc.generation || !qc.Round.Answered {
		return
	}
	if qc.Session.Advance() {
		qc.startRoundLocked()
		return
	}
	qc.finalizeLocked()
}

// finalizeLocked turns the completed session into the results payload:
// compute the percentage, decide high-score status against the persisted
// board, persist before re-reading, and keep the top list for rendering.
// Storage trouble never fails the flow; the in-memory result still renders.
func (qc *QuizController) finalizeLocked() {
	qc.stopTimersLocked()
	qc.Round = nil
	if qc.Finished {
		return
	}
	qc.Finished = true
	qc.pendingCue = CueFinish

	s := qc.Session
	percentage := s.ScorePercentage()
	qc.HighScore = isHighScore(qc.ScoreFile, percentage)
	if qc.HighScore {
		entry := HighScoreEntry{
			Name:       s.Config.PlayerName,
			Score:      s.Score,
			Total:      s.Config.QuestionCount,
			Percentage: percentage,
			Difficulty: difficultyLabel(s.Config.Difficulty),
			Date:       time.Now().Format("2006-01-02"),
		}
		if err := saveHighScore(qc.ScoreFile, entry); err != nil {
			logWarn("Failed to persist high score: %v", err)
		}
	}
	qc.Board = loadHighScores(qc.ScoreFile)
	logInfo("Quiz finished for %s: %d/%d (%d%%), high score: %v",
		s.Config.PlayerName, s.Score, s.Config.QuestionCount, percentage, qc.HighScore)
}

// teardownLocked unconditionally stops timers and discards the active round.
// The generation bump invalidates any callback already in flight.
func (qc *QuizController) teardownLocked() {
	qc.generation++
	qc.stopTimersLocked()
	qc.Round = nil
}

func (qc *QuizController) stopTimersLocked() {
	if qc.stopTicker != nil {
		close(qc.stopTicker)
		qc.stopTicker = nil
	}
	if qc.dwellTimer != nil {
		qc.dwellTimer.Stop()
		qc.dwellTimer = nil
	}
}

// difficultyLabel maps the config difficulty to its display form.
func difficultyLabel(d string) string {
	switch d {
	case "easy":
		return "Easy"
	case "medium":
		return "Medium"
	case "hard":
		return "Hard"
	default:
		return "Any"
	}
}
