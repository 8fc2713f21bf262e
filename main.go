package main

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	ginGzip "github.com/gin-contrib/gzip"

	"golang.org/x/time/rate"
)

func main() {
	_ = godotenv.Load()

	app := newApp()
	logInfo("Starting Kvizo in %s mode", map[bool]string{true: "production", false: "development"}[app.IsProduction])
	logInfo("Trivia API: %s", app.Trivia.BaseURL)
	logInfo("High score file: %s", app.ScoreFile)

	router := app.setupRouter()
	go app.sessionJanitor()
	app.startServer(router)
}

// newApp builds the App from environment configuration.
func newApp() *App {
	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	return &App{
		IsProduction:   isProduction,
		StartTime:      time.Now(),
		SessionTimeout: getEnvDuration("SESSION_TIMEOUT", 2*time.Hour),
		CookieMaxAge:   getEnvDuration("COOKIE_MAX_AGE", 2*time.Hour),
		StaticCacheAge: getEnvDuration("STATIC_CACHE_AGE", 5*time.Minute),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		Trivia:         newTriviaClient(getEnv("TRIVIA_API_URL", "https://opentdb.com")),
		ScoreFile:      getEnv("HIGHSCORES_FILE", "data/highscores.json"),
		Controllers:    make(map[string]*QuizController),
		LimiterMap:     make(map[string]*rate.Limiter),
	}
}

// setupRouter wires middleware, templates, static assets, and routes.
func (app *App) setupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"}),
		ginGzip.WithExcludedPaths([]string{"/static/fonts"})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.Use(func(c *gin.Context) {
		app.applyCacheHeaders(c)
	})
	router.Use(requestIDMiddleware())

	funcMap := template.FuncMap{
		"hasPrefix": strings.HasPrefix,
		"inc":       func(n int) int { return n + 1 },
	}
	router.SetFuncMap(funcMap)

	if app.IsProduction && dirExists("dist") {
		logInfo("Serving assets from dist/ directory")
		router.LoadHTMLGlob("dist/templates/*.html")
		router.Static("/static", "./dist/static")
	} else {
		logInfo("Serving development assets from source directories")
		router.LoadHTMLGlob("templates/*.html")
		router.Static("/static", "./static")
	}

	router.GET(RouteHome, app.homeHandler)
	router.POST(RouteStart, app.rateLimitMiddleware(), app.startQuizHandler)
	router.GET(RouteState, app.stateHandler)
	router.POST(RouteAnswer, app.rateLimitMiddleware(), app.answerHandler)
	router.POST(RouteRestart, app.rateLimitMiddleware(), app.restartHandler)
	router.GET(RouteResults, app.resultsHandler)
	router.GET("/healthz", app.healthzHandler)

	return router
}

// applyCacheHeaders sets cache-control: static assets get a short public
// cache in production, everything else is never cached (quiz state changes
// every second).
func (app *App) applyCacheHeaders(c *gin.Context) {
	if app.IsProduction && strings.HasPrefix(c.Request.URL.Path, "/static/") {
		cachecontrol.New(cachecontrol.Config{
			Public: true,
			MaxAge: cachecontrol.Duration(app.StaticCacheAge),
		})(c)
		c.Header("Vary", "Accept-Encoding")
		return
	}
	cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})(c)
}

// startServer runs the HTTP server with graceful shutdown on SIGINT/SIGTERM.
func (app *App) startServer(router *gin.Engine) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logInfo("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	logInfo("Server shutdown complete")
}
