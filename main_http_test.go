package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// setupTestApp builds an App backed by a stub trivia server and a temp
// high score file, with the full route table.
func setupTestApp(t *testing.T, triviaHandler http.HandlerFunc) (*App, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := &App{
		StartTime:      time.Now(),
		SessionTimeout: time.Hour,
		CookieMaxAge:   time.Hour,
		StaticCacheAge: time.Minute,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		ScoreFile:      filepath.Join(t.TempDir(), "highscores.json"),
		Controllers:    make(map[string]*QuizController),
		LimiterMap:     make(map[string]*rate.Limiter),
	}
	if triviaHandler != nil {
		srv := httptest.NewServer(triviaHandler)
		t.Cleanup(srv.Close)
		app.Trivia = newTriviaClient(srv.URL)
	} else {
		// Point at a closed server so any fetch fails fast.
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()
		app.Trivia = newTriviaClient(srv.URL)
	}
	return app, app.setupRouter()
}

func okTriviaHandler(count int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, triviaPayload(count))
	}
}

func startQuizForm(count string) url.Values {
	form := url.Values{}
	form.Set("player", TestPlayer)
	form.Set("count", count)
	return form
}

func postForm(router *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestHomeHandler checks the configuration screen renders
func TestHomeHandler(t *testing.T) {
	_, router := setupTestApp(t, okTriviaHandler(3))
	req, _ := http.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET / returned status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Start Quiz") {
		t.Error("config screen missing the start button")
	}
}

// TestStartQuizValidationError checks an out-of-range count re-renders the form inline
func TestStartQuizValidationError(t *testing.T) {
	app, router := setupTestApp(t, okTriviaHandler(3))

	for _, count := range []string{"0", "51", "-2", "abc", ""} {
		w := postForm(router, RouteStart, startQuizForm(count), nil)
		if w.Code != http.StatusOK {
			t.Errorf("count=%q: status %d, want 200", count, w.Code)
		}
		if !strings.Contains(w.Body.String(), ErrorCountOutOfRange) {
			t.Errorf("count=%q: inline validation message missing", count)
		}
	}

	app.SessionMutex.RLock()
	defer app.SessionMutex.RUnlock()
	for _, ctl := range app.Controllers {
		if ctl.Session != nil {
			t.Error("a session was created despite validation failure")
		}
	}
}

// TestStartQuizFetchFailure checks a transport failure renders the retryable error screen
func TestStartQuizFetchFailure(t *testing.T) {
	_, router := setupTestApp(t, nil)
	w := postForm(router, RouteStart, startQuizForm("5"), nil)

	if w.Code != http.StatusOK {
		t.Errorf("status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), ErrorQuizUnavailable) {
		t.Error("fetch failure message missing")
	}
	if !strings.Contains(w.Body.String(), "Try Again") {
		t.Error("retry affordance missing")
	}
}

// TestStartQuizNoData checks the distinct no-results message
func TestStartQuizNoData(t *testing.T) {
	_, router := setupTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response_code": 1, "results": []}`)
	})
	w := postForm(router, RouteStart, startQuizForm("5"), nil)

	if !strings.Contains(w.Body.String(), ErrorNoQuestions) {
		t.Error("no-data message missing")
	}
}

// TestStartQuizSuccess checks the first round renders with progress and timer
func TestStartQuizSuccess(t *testing.T) {
	_, router := setupTestApp(t, okTriviaHandler(3))
	w := postForm(router, RouteStart, startQuizForm("3"), nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Question 1 of 3") {
		t.Error("progress indicator missing")
	}
	if !strings.Contains(body, "15s") {
		t.Error("timer display missing")
	}
	if !strings.Contains(body, TestWantAnswer) {
		t.Error("decoded answer text missing from the choices")
	}
}

// TestAnswerFlow checks a correct selection scores and renders the outcome
func TestAnswerFlow(t *testing.T) {
	app, router := setupTestApp(t, okTriviaHandler(2))
	w := postForm(router, RouteStart, startQuizForm("2"), nil)
	cookies := w.Result().Cookies()

	ctl := singleController(t, app)
	view, ok := ctl.Snapshot()
	if !ok {
		t.Fatal("controller has no snapshot after start")
	}

	form := url.Values{}
	form.Set("choice", fmt.Sprint(view.CorrectIndex))
	w = postForm(router, RouteAnswer, form, cookies)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Correct!") {
		t.Error("outcome banner missing")
	}
	view, _ = ctl.Snapshot()
	if view.Score != 1 {
		t.Errorf("score = %d after a correct answer, want 1", view.Score)
	}
}

// TestAnswerWithoutQuiz checks input with no quiz in flight redirects home
func TestAnswerWithoutQuiz(t *testing.T) {
	_, router := setupTestApp(t, okTriviaHandler(1))
	form := url.Values{}
	form.Set("choice", "0")
	w := postForm(router, RouteAnswer, form, nil)

	if got := w.Header().Get("HX-Redirect"); got != RouteHome {
		t.Errorf("HX-Redirect = %q, want %q", got, RouteHome)
	}
}

// TestStateWithoutQuizRedirects checks the poller is sent home with no quiz
func TestStateWithoutQuizRedirects(t *testing.T) {
	_, router := setupTestApp(t, okTriviaHandler(1))
	req, _ := http.NewRequest("GET", RouteState, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("HX-Redirect"); got != RouteHome {
		t.Errorf("HX-Redirect = %q, want %q", got, RouteHome)
	}
}

// TestRestartClearsController checks restart drops the session's quiz outright
func TestRestartClearsController(t *testing.T) {
	app, router := setupTestApp(t, okTriviaHandler(2))
	w := postForm(router, RouteStart, startQuizForm("2"), nil)
	cookies := w.Result().Cookies()

	w = postForm(router, RouteRestart, url.Values{}, cookies)
	if w.Code != http.StatusSeeOther {
		t.Errorf("restart status %d, want 303", w.Code)
	}

	app.SessionMutex.RLock()
	remaining := len(app.Controllers)
	app.SessionMutex.RUnlock()
	if remaining != 0 {
		t.Errorf("%d controllers remain after restart, want 0", remaining)
	}
}

// TestResultsRedirectsWhenUnfinished checks results are gated on completion
func TestResultsRedirectsWhenUnfinished(t *testing.T) {
	_, router := setupTestApp(t, okTriviaHandler(2))
	req, _ := http.NewRequest("GET", RouteResults, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Errorf("GET /results status %d, want 303", w.Code)
	}
}

// TestHealthz checks the health endpoint reports ok
func TestHealthz(t *testing.T) {
	_, router := setupTestApp(t, okTriviaHandler(1))
	req, _ := http.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /healthz status %d, want 200", w.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("healthz payload not JSON: %v", err)
	}
	if payload["status"] != "ok" {
		t.Errorf("status = %v, want ok", payload["status"])
	}
}

// singleController returns the only controller in the registry.
func singleController(t *testing.T, app *App) *QuizController {
	t.Helper()
	app.SessionMutex.RLock()
	defer app.SessionMutex.RUnlock()
	if len(app.Controllers) != 1 {
		t.Fatalf("controller registry size = %d, want 1", len(app.Controllers))
	}
	for _, ctl := range app.Controllers {
		return ctl
	}
	return nil
}
