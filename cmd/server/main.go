package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/dpitt/club-bouncer/internal/ai"
	"github.com/dpitt/club-bouncer/internal/ai/openai"
	"github.com/dpitt/club-bouncer/internal/config"
	"github.com/dpitt/club-bouncer/internal/guestlist"
	"github.com/dpitt/club-bouncer/internal/httpapi"
	"github.com/dpitt/club-bouncer/internal/judge"
	"github.com/dpitt/club-bouncer/internal/webhook"
	staticserver "github.com/dpitt/club-bouncer/static"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Club Bouncer - AI-powered door selection

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT             Port to listen on (default: 8080)
  BOUNCER_MODE     Verdict generation: "mock", "webhook" or "vision" (default: mock)
  N8N_WEBHOOK_URL  n8n judging webhook (required in webhook mode)
  OPENAI_API_KEY   OpenAI API key (required in vision mode)
  OPENAI_BASE_URL  Custom OpenAI API base URL (optional)
  VISION_MODEL     Vision model to use (default: gpt-4o-mini)
  GUESTLIST_CODE   Enables the guestlist gate when set
  MOCK_OUTCOME     Dev/test: force "accept", "reject" or "failure" in mock mode

Examples:
  %s                  Start in mock mode with default settings
  %s --port 3000      Start on port 3000

Visit http://localhost:8080 after starting the server.
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Club Bouncer %s\n", version)
		return
	}

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	cfg := config.FromEnv()
	if *portFlag != "" {
		cfg.Port = *portFlag
	}
	cfg.LogStartup()
	if err := cfg.Validate(); err != nil {
		zerologlog.Fatal().Err(err).Msg("invalid configuration")
	}

	// Gin setup with zerolog request logging
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		reqID := uuid.NewString()
		c.Set("reqID", reqID)
		c.Next()
		zerologlog.Info().
			Str("reqId", reqID).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("dur", time.Since(start)).
			Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Core wiring: both delegates are constructed up front; the resolver
	// picks one (or neither) per request based on the configured mode.
	var vision ai.Provider = openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.VisionModel)
	resolver := judge.NewResolver(cfg, webhook.New(cfg.WebhookURL), vision)
	gate := guestlist.New(cfg.GuestlistCode)

	api := httpapi.New(resolver, gate)
	api.Mount(r)

	// Serve the embedded frontend for all other routes
	r.NoRoute(func(c *gin.Context) {
		staticserver.Handler().ServeHTTP(c.Writer, c.Request)
	})

	zerologlog.Info().Str("port", cfg.Port).Msg("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		zerologlog.Fatal().Err(err).Msg("server exited")
	}
}
