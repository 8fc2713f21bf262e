package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// getOrCreateSession retrieves the session ID from the cookie or creates a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || len(sessionID) < 10 {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteStrictMode)
		secure := app.IsProduction
		c.SetCookie(SessionCookieName, sessionID, int(app.CookieMaxAge.Seconds()), "/", "", secure, true)
		logInfo("Created new session: %s", sessionID)
	}
	return sessionID
}

// getController returns the quiz controller for a session, creating one if
// none exists yet.
func (app *App) getController(sessionID string) *QuizController {
	app.SessionMutex.RLock()
	ctl, exists := app.Controllers[sessionID]
	app.SessionMutex.RUnlock()
	if exists {
		ctl.Touch()
		return ctl
	}

	logInfo("Creating quiz controller for session: %s", sessionID)
	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	if existing, ok := app.Controllers[sessionID]; ok {
		return existing
	}
	ctl = newQuizController(app.ScoreFile)
	app.Controllers[sessionID] = ctl
	return ctl
}

// dropController cancels a session's timers and removes its controller. Used
// on restart so nothing from the discarded quiz can fire afterwards.
func (app *App) dropController(sessionID string) {
	app.SessionMutex.Lock()
	ctl, exists := app.Controllers[sessionID]
	delete(app.Controllers, sessionID)
	app.SessionMutex.Unlock()
	if exists {
		ctl.Cancel()
		logInfo("Dropped quiz controller for session: %s", sessionID)
	}
}

// cleanupIdleSessions removes controllers idle longer than maxAge, stopping
// their timers so a leaked ticker can never fire into a dead session.
func (app *App) cleanupIdleSessions(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	app.SessionMutex.Lock()
	var expired []*QuizController
	for id, ctl := range app.Controllers {
		if ctl.IdleSince().Before(cutoff) {
			expired = append(expired, ctl)
			delete(app.Controllers, id)
		}
	}
	remaining := len(app.Controllers)
	app.SessionMutex.Unlock()

	for _, ctl := range expired {
		ctl.Cancel()
	}
	if len(expired) > 0 {
		logInfo("Session cleanup removed %d idle sessions, %d remaining", len(expired), remaining)
	}
}

// sessionJanitor periodically expires idle sessions.
func (app *App) sessionJanitor() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		app.cleanupIdleSessions(app.SessionTimeout)
	}
}
