package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	api "github.com/edupress/quizcore/internal/api/http"
	"github.com/edupress/quizcore/internal/attempt"
	"github.com/edupress/quizcore/internal/config"
	"github.com/edupress/quizcore/internal/db"
	"github.com/edupress/quizcore/internal/events"
	"github.com/edupress/quizcore/internal/quiz"
	"github.com/edupress/quizcore/internal/quiz/quizcache"
	"github.com/edupress/quizcore/internal/quiz/quizsql"
)

func newServeCmd(configPath, addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz attempt API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *addr)
		},
	}
}

// listenAddr resolves the bind address: an explicit --addr flag wins,
// otherwise the config value (which already carries the HTTP_ADDR environment
// overlay and the :8080 default) applies.
func listenAddr(flagVal string, cfg config.Config) string {
	if flagVal != "" {
		return flagVal
	}
	return cfg.HTTPAddr
}

func runServer(ctx context.Context, configPath, addrFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	finalAddr := listenAddr(addrFlag, cfg)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	catalog := quizsql.NewStore(dbh)
	cacheTTL := cfg.CacheTTL(5 * time.Minute)

	var (
		loader     quiz.Loader
		invalidate func(string)
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache := quizcache.NewRedis(client, catalog, cacheTTL)
		loader = cache
		invalidate = func(id string) { cache.Invalidate(context.Background(), id) }
	} else {
		cache := quizcache.NewMemory(catalog, cacheTTL)
		loader = cache
		invalidate = cache.Invalidate
	}

	store := attempt.NewSQLStore(dbh, cfg.DBDriver)
	svc := attempt.NewService(loader, store,
		attempt.WithEventLog(events.NewRepo(dbh)))

	handler := api.NewRouter(svc, catalog, api.RouterOpts{
		CORSOrigins:    cfg.CORSOrigins,
		InvalidateQuiz: invalidate,
	})

	server := &http.Server{
		Addr:         finalAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (db=%s)", finalAddr, cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
