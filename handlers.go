package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// homeHandler renders the configuration screen.
func (app *App) homeHandler(c *gin.Context) {
	app.getOrCreateSession(c)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title":      "Kvizo - Trivia Quiz",
		"categories": triviaCategories,
		"maxCount":   MaxQuestionCount,
	})
}

// startQuizHandler validates the submitted config, fetches questions, and
// starts the first round. Validation failures re-render the form inline; a
// failed fetch renders a retryable error screen and leaves no partial quiz
// behind.
func (app *App) startQuizHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)

	count, countErr := strconv.Atoi(strings.TrimSpace(c.PostForm("count")))
	cfg := QuizConfig{
		PlayerName:    normalizePlayerName(c.PostForm("player")),
		Category:      strings.TrimSpace(c.PostForm("category")),
		Difficulty:    normalizeDifficulty(c.PostForm("difficulty")),
		QuestionCount: count,
	}

	session, err := newQuizSession(cfg)
	if countErr != nil || err != nil {
		logWarn("Session %s submitted invalid question count: %q", sessionID, c.PostForm("count"))
		c.HTML(http.StatusOK, "index.html", gin.H{
			"title":      "Kvizo - Trivia Quiz",
			"categories": triviaCategories,
			"maxCount":   MaxQuestionCount,
			"error":      ErrorCountOutOfRange,
			"config":     cfg,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()
	if err := session.LoadQuestions(ctx, app.Trivia.FetchQuestions); err != nil {
		msg := ErrorQuizUnavailable
		if errors.Is(err, ErrNoQuestions) {
			msg = ErrorNoQuestions
		}
		logWarn("Session %s could not load questions: %v", sessionID, err)
		c.HTML(http.StatusOK, "error.html", gin.H{
			"title":   "Kvizo - Trivia Quiz",
			"message": msg,
		})
		return
	}

	logInfo("Session %s started a quiz: %d questions, category=%q, difficulty=%q",
		sessionID, cfg.QuestionCount, cfg.Category, cfg.Difficulty)
	ctl := app.getController(sessionID)
	ctl.Begin(session)

	view, _ := ctl.Snapshot()
	c.HTML(http.StatusOK, "quiz.html", gin.H{
		"title": "Kvizo - Trivia Quiz",
		"view":  view,
	})
}

// stateHandler renders the current round as an HTML fragment. The quiz screen
// polls it every second for the countdown, the warning state, and the
// outcome reveal. Once the session finishes, the poller is redirected to the
// results screen.
func (app *App) stateHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	ctl := app.getController(sessionID)

	view, ok := ctl.Snapshot()
	if !ok {
		c.Header("HX-Redirect", RouteHome)
		c.Status(http.StatusOK)
		return
	}
	if view.Finished {
		c.Header("HX-Redirect", RouteResults)
		c.Status(http.StatusOK)
		return
	}
	c.HTML(http.StatusOK, "quiz-content", gin.H{"view": view})
}

// answerHandler feeds a choice selection into the active round. Clicks and
// keyboard shortcuts 1-4 both submit the display-order index. A submission
// that lost the race against the timeout (or a duplicate) changes nothing and
// just renders the current state.
func (app *App) answerHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	ctl := app.getController(sessionID)

	choice, err := strconv.Atoi(c.PostForm("choice"))
	if err != nil {
		choice = -1
	}

	outcome, err := ctl.SelectAnswer(choice)
	switch {
	case err == nil:
		logInfo("Session %s answered choice %d: %s", sessionID, choice, outcome)
	case errors.Is(err, ErrRoundOver), errors.Is(err, ErrNoActiveRound):
		logInfo("Session %s sent a late or duplicate answer, ignoring", sessionID)
	case errors.Is(err, ErrInvalidChoice):
		logWarn("Session %s sent an out-of-range choice: %q", sessionID, c.PostForm("choice"))
	}

	view, ok := ctl.Snapshot()
	if !ok {
		c.Header("HX-Redirect", RouteHome)
		c.Status(http.StatusOK)
		return
	}
	c.HTML(http.StatusOK, "quiz-content", gin.H{"view": view})
}

// restartHandler tears down the session's quiz outright and returns to the
// configuration screen. The old controller's timers are stopped before it is
// discarded.
func (app *App) restartHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	app.dropController(sessionID)
	c.Redirect(http.StatusSeeOther, RouteHome)
}

// resultsHandler renders the final score and the leaderboard. Before the
// session finishes there is nothing to show, so it redirects home.
func (app *App) resultsHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	ctl := app.getController(sessionID)

	view, board, highScore, ok := ctl.Results()
	if !ok {
		c.Redirect(http.StatusSeeOther, RouteHome)
		return
	}

	c.HTML(http.StatusOK, "results.html", gin.H{
		"title":     "Kvizo - Results",
		"view":      view,
		"board":     board,
		"highScore": highScore,
	})
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	app.SessionMutex.RLock()
	sessions := len(app.Controllers)
	app.SessionMutex.RUnlock()

	uptime := time.Since(app.StartTime)
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"env":       map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"sessions":  sessions,
		"uptime":    formatUptime(uptime),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// normalizePlayerName trims the submitted name and applies the default.
func normalizePlayerName(input string) string {
	name := strings.TrimSpace(input)
	if name == "" {
		return "Anonymous"
	}
	if len(name) > 24 {
		name = name[:24]
	}
	return name
}

// normalizeDifficulty lowercases the submitted difficulty and drops anything
// outside the known set.
func normalizeDifficulty(input string) string {
	d := strings.ToLower(strings.TrimSpace(input))
	switch d {
	case "easy", "medium", "hard":
		return d
	case "":
		return ""
	default:
		logWarn("Ignoring unknown difficulty: %q", input)
		return ""
	}
}
