package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cnamway/keybout/internal/clock"
	"github.com/cnamway/keybout/internal/config"
	"github.com/cnamway/keybout/internal/game"
	"github.com/cnamway/keybout/internal/lobby"
	"github.com/cnamway/keybout/internal/logging"
	"github.com/cnamway/keybout/internal/router"
	"github.com/cnamway/keybout/internal/scheduler"
	"github.com/cnamway/keybout/internal/session"
	"github.com/cnamway/keybout/internal/topscore"
	"github.com/cnamway/keybout/internal/topscore/postgres"
	"github.com/cnamway/keybout/internal/transport/ws"
	"github.com/cnamway/keybout/internal/words"
)

// deferredNotifier resolves the Lobby/Router construction cycle: the
// Lobby needs a lobby.Notifier before the Router exists to be one, and
// the Router needs the Lobby to be constructed. bind fills the real
// target in before either side's actor goroutine can call Send.
type deferredNotifier struct {
	target lobby.Notifier
}

func (d *deferredNotifier) bind(target lobby.Notifier) { d.target = target }

func (d *deferredNotifier) Send(handle string, data []byte) error {
	return d.target.Send(handle, data)
}

func createServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if len(allowedOrigins) > 0 {
		r.Use(func(ctx *gin.Context) {
			origin := ctx.Request.Header.Get("Origin")
			if origin == "" || slices.Contains(allowedOrigins, origin) {
				ctx.Next()
				return
			}
			ctx.JSON(http.StatusForbidden, gin.H{"error": "forbidden origin"})
			ctx.Abort()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowCredentials: true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{
				"Content-Type",
				"Upgrade",
				"Connection",
				"Sec-WebSocket-Key",
				"Sec-WebSocket-Version",
				"Sec-WebSocket-Extensions",
				"Sec-WebSocket-Protocol",
			},
		}))
	}

	return r
}

const shutdownGrace = 5 * time.Second

func newTopScoreSink(ctx context.Context, cfg config.Config, log zerolog.Logger) game.TopScoreSink {
	if cfg.TopScoreDatabaseURL == "" {
		log.Info().Msg("no top-score database configured, running with the no-op sink")
		return topscore.Noop{Log: log}
	}

	if err := postgres.Migrate(cfg.TopScoreDatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate top-score database")
	}
	sink, err := postgres.New(ctx, cfg.TopScoreDatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to top-score database")
	}
	return sink
}

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	dictionary, err := words.NewDictionary()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word dictionary")
	}
	calculus := words.NewCalculus()
	topScores := newTopScoreSink(context.Background(), cfg, log)

	registry := session.NewRegistry()
	notifier := &deferredNotifier{}
	deps := lobby.GameDeps{
		Dictionary: dictionary,
		Calculus:   calculus,
		TopScores:  topScores,
		Clock:      clock.Real{},
		Scheduler:  scheduler.Real{},
	}
	l := lobby.New(registry, notifier, deps, log)
	go l.Run()

	r := router.New(registry, l, cfg.MaxNameLength, log)
	notifier.bind(r)

	engine := createServer(cfg.AllowedOrigins)
	engine.GET("/ws", ws.Handler(r, log))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: engine}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()
	log.Info().Str("addr", cfg.HTTPAddr).Msg("server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	<-sigCh
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
