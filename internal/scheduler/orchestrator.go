package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fortuna/nyx/internal/api/websocket"
	"github.com/fortuna/nyx/internal/cache"
	"github.com/fortuna/nyx/internal/ingest/espn"
	"github.com/fortuna/nyx/internal/ingest/nba"
	"github.com/fortuna/nyx/internal/publisher"
	"github.com/fortuna/nyx/internal/reconciliation"
	"github.com/fortuna/nyx/internal/report"
	"github.com/fortuna/nyx/internal/service"
	"github.com/fortuna/nyx/internal/store"
	"github.com/fortuna/nyx/internal/window"
)

// Orchestrator manages the recurring sync passes and nightly report
type Orchestrator struct {
	db        *store.Database
	cache     *cache.RedisCache
	publisher *publisher.RedisStreamPublisher
	ws        *websocket.Server
	mailer    *report.Mailer
	nightSvc  *service.NightService
	config    *Config

	engine       *reconciliation.Engine
	espnClient   *espn.Client
	espnIngester *espn.Ingester
	nbaIngester  *nba.Ingester

	cancel context.CancelFunc

	// Serializes injury sync passes across scheduled and manual triggers
	syncMu sync.Mutex

	// Task coordination
	injuryCtx    context.Context
	injuryCancel context.CancelFunc
	dailyCtx     context.Context
	dailyCancel  context.CancelFunc
}

// Config holds scheduler configuration
type Config struct {
	InjurySyncInterval   time.Duration // Default: 2h
	ScheduleImportHour   int           // Paris-local hour, default: 6
	ReportHour           int           // Paris-local hour, default: 17
	EnableInjurySync     bool          // Default: true
	EnableScheduleImport bool          // Default: true
	EnableDailyReport    bool          // Default: true
	PruneRecovered       bool          // Default: false
	MaxRetries           int           // Default: 3
	RetryDelay           time.Duration // Default: 5s
	ESPNInjuriesURL      string        // Empty uses the ESPN default
	ScheduleURL          string        // Empty uses the NBA CDN default
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		InjurySyncInterval:   2 * time.Hour,
		ScheduleImportHour:   6,
		ReportHour:           17,
		EnableInjurySync:     true,
		EnableScheduleImport: true,
		EnableDailyReport:    true,
		PruneRecovered:       false,
		MaxRetries:           3,
		RetryDelay:           5 * time.Second,
	}
}

// NewOrchestrator creates a new scheduler orchestrator. The cache, ws and
// mailer may each be nil; the matching fan-out step is then skipped.
func NewOrchestrator(db *store.Database, rc *cache.RedisCache, ws *websocket.Server, mailer *report.Mailer, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}

	engine := reconciliation.NewEngine(reconciliation.Options{
		PruneRecovered: config.PruneRecovered,
	})

	espnClient := espn.NewClient(config.ESPNInjuriesURL)
	nbaClient := nba.NewClient(config.ScheduleURL)

	var streamPublisher *publisher.RedisStreamPublisher
	if rc != nil {
		streamPublisher = publisher.NewRedisStreamPublisher(rc.Client())
	}

	return &Orchestrator{
		db:           db,
		cache:        rc,
		publisher:    streamPublisher,
		ws:           ws,
		mailer:       mailer,
		nightSvc:     service.NewNightService(db),
		config:       config,
		engine:       engine,
		espnClient:   espnClient,
		espnIngester: espn.NewIngester(espnClient, engine, db),
		nbaIngester:  nba.NewIngester(nbaClient, db),
	}
}

// Start begins all scheduled tasks and blocks until ctx is cancelled
func (o *Orchestrator) Start(ctx context.Context) {
	log.Println("╔════════════════════════════════════════╗")
	log.Println("║       Nyx Scheduler Orchestrator       ║")
	log.Println("╚════════════════════════════════════════╝")
	log.Printf("Injury sync: %v (interval: %v)", o.config.EnableInjurySync, o.config.InjurySyncInterval)
	log.Printf("Schedule import: %v (at %02d:00 Paris)", o.config.EnableScheduleImport, o.config.ScheduleImportHour)
	log.Printf("Nightly report: %v (at %02d:00 Paris)", o.config.EnableDailyReport, o.config.ReportHour)
	log.Printf("Prune recovered players: %v", o.config.PruneRecovered)
	log.Println()

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	if o.config.EnableInjurySync {
		o.injuryCtx, o.injuryCancel = context.WithCancel(ctx)
		go o.runInjurySync(o.injuryCtx)
	}

	o.dailyCtx, o.dailyCancel = context.WithCancel(ctx)
	if o.config.EnableScheduleImport {
		go o.runDailyAt(o.dailyCtx, o.config.ScheduleImportHour, "schedule import", o.scheduleImportTask)
	}
	if o.config.EnableDailyReport {
		go o.runDailyAt(o.dailyCtx, o.config.ReportHour, "nightly report", o.reportTask)
	}

	<-ctx.Done()
	log.Println("Scheduler orchestrator stopping...")
}

// runInjurySync repeats ESPN injury passes at the configured interval
func (o *Orchestrator) runInjurySync(ctx context.Context) {
	log.Printf("→ Injury sync started (interval: %v)", o.config.InjurySyncInterval)

	ticker := time.NewTicker(o.config.InjurySyncInterval)
	defer ticker.Stop()

	consecutiveErrors := 0
	maxConsecutiveErrors := 5

	// Run immediately on start
	o.syncInjuriesWithRetry(ctx, &consecutiveErrors, maxConsecutiveErrors)

	for {
		select {
		case <-ctx.Done():
			log.Println("→ Injury sync stopped")
			return
		case <-ticker.C:
			o.syncInjuriesWithRetry(ctx, &consecutiveErrors, maxConsecutiveErrors)
		}
	}
}

// syncInjuriesWithRetry runs one injury pass with retry logic
func (o *Orchestrator) syncInjuriesWithRetry(ctx context.Context, consecutiveErrors *int, maxConsecutiveErrors int) {
	var err error

	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		_, err = o.TriggerInjurySync(ctx)

		if err == nil {
			*consecutiveErrors = 0
			return
		}

		log.Printf("  ⚠️  Injury sync attempt %d/%d failed: %v", attempt, o.config.MaxRetries, err)

		if attempt < o.config.MaxRetries {
			log.Printf("  Retrying in %v...", o.config.RetryDelay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(o.config.RetryDelay):
				// Continue to next attempt
			}
		}
	}

	*consecutiveErrors++
	log.Printf("  ❌ All %d retry attempts failed. Consecutive errors: %d/%d",
		o.config.MaxRetries, *consecutiveErrors, maxConsecutiveErrors)

	if *consecutiveErrors >= maxConsecutiveErrors {
		log.Printf("  ⚠️  High error rate detected. Backing off for 10m...")
		select {
		case <-ctx.Done():
		case <-time.After(10 * time.Minute):
		}
	}
}

// TriggerInjurySync runs one ESPN injury pass and fans out its transitions.
// Safe to call concurrently with the scheduled loop.
func (o *Orchestrator) TriggerInjurySync(ctx context.Context) (*reconciliation.Result, error) {
	o.syncMu.Lock()
	defer o.syncMu.Unlock()

	result, err := o.espnIngester.SyncOnce(ctx)
	if err != nil {
		return nil, err
	}

	o.publishTransitions(ctx, result)
	return result, nil
}

// publishTransitions pushes the pass transitions to the Redis stream and
// connected WebSocket clients, then invalidates tonight's cached snapshot
func (o *Orchestrator) publishTransitions(ctx context.Context, result *reconciliation.Result) {
	if len(result.History) == 0 && len(result.Removed) == 0 {
		return
	}

	if o.publisher != nil {
		if err := o.publisher.PublishTransitions(ctx, result.History); err != nil {
			log.Printf("  ⚠️  Failed to publish transitions: %v", err)
		}
	}

	if o.ws != nil {
		o.ws.BroadcastTransitions(result.CheckedAt, result.History)
	}

	if o.cache != nil {
		if err := o.cache.Delete(ctx, cache.NightKey(window.Today())); err != nil {
			log.Printf("  ⚠️  Failed to invalidate night cache: %v", err)
		}
	}
}

// TriggerScheduleImport runs one league schedule import on demand
func (o *Orchestrator) TriggerScheduleImport(ctx context.Context) (*nba.ImportSummary, error) {
	summary, err := o.nbaIngester.ImportSchedule(ctx)
	if err != nil {
		return nil, err
	}

	if o.cache != nil {
		if err := o.cache.Delete(ctx, cache.NightKey(window.Today())); err != nil {
			log.Printf("  ⚠️  Failed to invalidate night cache: %v", err)
		}
	}

	return summary, nil
}

// runDailyAt reruns task every day at the given Paris-local hour
func (o *Orchestrator) runDailyAt(ctx context.Context, hour int, name string, task func(context.Context)) {
	log.Printf("→ Daily %s scheduler started (runs at %02d:00 Paris)", name, hour)

	loc := window.Location()

	for {
		now := time.Now().In(loc)
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)

		// If we've passed today's run time, schedule for tomorrow
		if now.After(nextRun) {
			nextRun = time.Date(now.Year(), now.Month(), now.Day()+1, hour, 0, 0, 0, loc)
		}

		waitDuration := time.Until(nextRun)
		log.Printf("  Next %s: %s (in %v)", name, nextRun.Format("2006-01-02 15:04:05"), waitDuration.Round(time.Second))

		select {
		case <-ctx.Done():
			log.Printf("→ Daily %s scheduler stopped", name)
			return
		case <-time.After(waitDuration):
			task(ctx)
		}
	}
}

// scheduleImportTask performs the daily schedule refresh
func (o *Orchestrator) scheduleImportTask(ctx context.Context) {
	log.Println("═══ Schedule Import Starting ═══")
	startTime := time.Now()

	if _, err := o.TriggerScheduleImport(ctx); err != nil {
		log.Printf("❌ Schedule import failed: %v", err)
		return
	}

	log.Printf("═══ Schedule Import Complete in %v ═══", time.Since(startTime).Round(time.Second))
}

// reportTask renders and mails the report for the upcoming night window
func (o *Orchestrator) reportTask(ctx context.Context) {
	if o.mailer == nil || !o.mailer.IsEnabled() {
		log.Println("⊘ Nightly report skipped (mailer not configured)")
		return
	}

	date := window.Today()
	log.Printf("═══ Nightly Report for %s ═══", date)

	snapshot, err := o.nightSvc.SnapshotFor(ctx, date)
	if err != nil {
		log.Printf("❌ Failed to build night snapshot: %v", err)
		return
	}

	rep, err := report.Render(snapshot)
	if err != nil {
		log.Printf("❌ Failed to render report: %v", err)
		return
	}

	if err := o.mailer.SendReport(rep); err != nil {
		log.Printf("❌ Failed to send report: %v", err)
		return
	}

	log.Printf("✓ Nightly report sent (%d games, %d injury flags)", len(snapshot.Games), len(snapshot.Injuries))
}

// Stop gracefully stops the scheduler
func (o *Orchestrator) Stop() {
	log.Println("Stopping scheduler orchestrator...")

	if o.injuryCancel != nil {
		o.injuryCancel()
	}

	if o.dailyCancel != nil {
		o.dailyCancel()
	}

	if o.cancel != nil {
		o.cancel()
	}

	// Tears down the headless browser if the fallback ever spawned one
	if o.espnClient != nil {
		o.espnClient.Close()
	}

	log.Println("✓ Scheduler orchestrator stopped")
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	status := map[string]interface{}{
		"injury_sync_enabled":     o.config.EnableInjurySync,
		"injury_sync_interval":    o.config.InjurySyncInterval.String(),
		"schedule_import_enabled": o.config.EnableScheduleImport,
		"schedule_import_hour":    o.config.ScheduleImportHour,
		"daily_report_enabled":    o.config.EnableDailyReport,
		"report_hour":             o.config.ReportHour,
		"prune_recovered":         o.config.PruneRecovered,
		"reconciliation":          o.engine.Metrics(),
	}

	if o.ws != nil {
		status["ws_clients"] = o.ws.ClientCount()
	}

	return status
}
