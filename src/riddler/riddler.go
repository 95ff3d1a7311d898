package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/riddlerbot/riddler/src/riddler/bot"
	"github.com/riddlerbot/riddler/src/riddler/components/pipeline"
	"github.com/riddlerbot/riddler/src/riddler/components/report"
	"github.com/riddlerbot/riddler/src/riddler/components/scoring"
	"github.com/riddlerbot/riddler/src/riddler/components/signals"
	"github.com/riddlerbot/riddler/src/riddler/components/trustnet"
	"github.com/riddlerbot/riddler/src/riddler/config"
	"github.com/riddlerbot/riddler/src/riddler/data"
	"github.com/riddlerbot/riddler/src/riddler/webserver"
	"github.com/riddlerbot/riddler/src/x"
)

func main() {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "riddler:riddler@tcp(127.0.0.1:3306)/riddler"
	}
	db := data.MustMySQL(mysqlDSN)

	cfg := config.Load(db)
	if cfg.BearerToken == "" {
		log.Fatalf("X_BEARER_TOKEN is not set")
	}
	rdb := data.MustRedis(cfg.RedisURL)

	xClient := x.NewClient(cfg.APIEndpoint, cfg.BearerToken, cfg.UserToken)
	trusted := trustnet.NewProvider(cfg.TrustedListURL, rdb)

	pipe := pipeline.New(pipeline.Config{
		TriggerPhrase: cfg.TriggerPhrase,
		BotUserID:     cfg.BotUserID,
		Extractor:     signals.NewExtractor(trusted),
		Engine:        scoring.NewEngine(scoring.DefaultConfig()),
		Renderer:      report.NewRenderer(cfg.ReplyLimit),
	})

	b := bot.New(bot.Config{
		DB:           db,
		XClient:      xClient,
		Trusted:      trusted,
		Pipeline:     pipe,
		SearchQuery:  cfg.SearchQuery(),
		UserCooldown: cfg.UserCooldown,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First trusted fetch before the schedule kicks in. Scoring proceeds
	// without the bonus when the list is unreachable.
	if err := b.RefreshTrusted(ctx); err != nil {
		log.Printf("Initial trusted list load failed: %v", err)
	}

	scheduler := cron.New()
	addJob(scheduler, "poll", cfg.PollSchedule, 5*time.Minute, b.Poll)
	addJob(scheduler, "trusted-refresh", cfg.RefreshSchedule, time.Minute, b.RefreshTrusted)
	scheduler.Start()

	httpSrv := &http.Server{
		Addr:         ":" + cfg.StatusPort,
		Handler:      webserver.New(db, b),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Printf("Starting status server on port %s", cfg.StatusPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	log.Printf("Riddler running. Trigger phrase: %q, poll schedule: %s", cfg.TriggerPhrase, cfg.PollSchedule)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("Shutting down")
	cancel()
	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}

// addJob schedules fn with a per-run timeout so a stuck pass cannot pile up
// behind the next tick.
func addJob(scheduler *cron.Cron, name, schedule string, timeout time.Duration, fn func(context.Context) error) {
	_, err := scheduler.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			log.Printf("[scheduler] Job %s failed: %v", name, err)
			return
		}
		log.Printf("[scheduler] Job %s completed in %v", name, time.Since(start).Round(time.Millisecond))
	})
	if err != nil {
		log.Fatalf("schedule job %s: %v", name, err)
	}
	log.Printf("[scheduler] Added job: %s (schedule: %s)", name, schedule)
}
