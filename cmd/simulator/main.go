// Command simulator runs the full trading loop against a synthetic or
// replayed market data feed: feed bytes enter the ingest ring, books
// update, strategies emit signals, the risk gate filters them, and the
// execution engine simulates fills that accumulate into positions.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"go.uber.org/zap"

	"main/internal/capture"
	"main/internal/execution"
	"main/internal/ingest"
	"main/internal/logging"
	"main/internal/mdg"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/risk"
	"main/internal/schema"
	"main/internal/state"
	"main/internal/strategy"
)

func main() {
	configPath := flag.String("config", "", "Path to properties config file")
	duration := flag.Duration("duration", 5*time.Second, "How long to run the feed (0=until interrupted)")
	batchSize := flag.Int("batch-size", 256, "Messages per generated batch")
	seed := flag.Uint64("seed", 1, "Feed generator seed")
	captureDir := flag.String("capture-dir", "", "Directory for feed capture segments (empty=off)")
	replayDir := flag.String("replay-dir", "", "Replay a captured feed instead of generating one")
	replaySpeed := flag.Float64("replay-speed", 0, "Replay pacing (1=recorded speed, 0=no pacing)")
	snapshotPath := flag.String("snapshot-path", "", "Position snapshot written on shutdown (empty=off)")
	logPath := flag.String("log-file", "simulator.log", "Log file path (empty=stderr)")
	logLevel := flag.String("log-level", "info", "Minimum log level")
	profileAddr := flag.String("pyroscope", "", "Pyroscope server address (empty=off)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := ops.NewStore()
	if *configPath != "" {
		if err := store.LoadFile(*configPath); err != nil {
			log.Fatalf("config load failed: %v", err)
		}
	}

	logger, sink, err := logging.New(logging.Config{
		Path:  *logPath,
		Level: logging.ParseLevel(store.GetString("log.level", *logLevel)),
	})
	if err != nil {
		log.Fatalf("log sink failed: %v", err)
	}
	defer sink.Close()

	if *profileAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "trading-simulator",
			ServerAddress:   *profileAddr,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			logger.Warn("profiler start failed", zap.Error(err))
		} else {
			defer profiler.Stop()
		}
	}

	sim, err := newSimulator(store, logger)
	if err != nil {
		log.Fatalf("simulator setup failed: %v", err)
	}

	if *captureDir != "" {
		w, err := capture.NewWriter(capture.DefaultConfig(*captureDir))
		if err != nil {
			log.Fatalf("capture writer failed: %v", err)
		}
		if err := w.Start(ctx); err != nil {
			log.Fatalf("capture start failed: %v", err)
		}
		sim.capture = w
	}

	sim.start()
	if *replayDir != "" {
		err = sim.replay(ctx, *replayDir, *replaySpeed)
	} else {
		err = sim.generate(ctx, *duration, *batchSize, *seed)
	}
	sim.shutdown(*snapshotPath)

	if err != nil && err != context.Canceled {
		log.Fatalf("simulator run failed: %v", err)
	}
}

type simulator struct {
	logger  *zap.Logger
	metrics *obs.Metrics
	store   *ops.Store

	handler    *ingest.Handler
	strategies *strategy.Engine
	gate       *risk.Engine
	exec       *execution.Engine
	positions  *state.Tracker
	capture    *capture.Writer

	symbols   []string
	batchTime *obs.Timekeeper
	lastStats time.Time

	// sideMu guards the order-to-side table the report callback uses to
	// book fills against positions.
	sideMu sync.Mutex
	sides  map[schema.OrderID]schema.SignalType
}

// coreConfig is the subset of store keys the pipeline consumes.
type coreConfig struct {
	symbols         []string
	zScoreThreshold float64
	windowSize      int
	bufferSize      int
}

// coreConfigFromStore reads the pipeline keys with their documented
// names, falling back to defaults for absent or degenerate values.
func coreConfigFromStore(store *ops.Store) coreConfig {
	cfg := coreConfig{
		symbols:         store.GetStringList("symbols"),
		zScoreThreshold: store.GetFloat("strategy.stat_arb.z_score_threshold"),
		windowSize:      store.GetInt("strategy.stat_arb.window_size"),
		bufferSize:      store.GetInt("market_data.buffer_size"),
	}
	if len(cfg.symbols) == 0 {
		cfg.symbols = []string{"AAPL", "MSFT", "GOOG"}
	}
	if cfg.zScoreThreshold <= 0 {
		cfg.zScoreThreshold = 2.0
	}
	if cfg.windowSize <= 0 {
		cfg.windowSize = 64
	}
	if cfg.bufferSize <= 0 {
		cfg.bufferSize = ingest.DefaultBufferSize
	}
	return cfg
}

func newSimulator(store *ops.Store, logger *zap.Logger) (*simulator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := coreConfigFromStore(store)

	s := &simulator{
		logger:    logger,
		metrics:   obs.NewMetrics(),
		store:     store,
		positions: state.NewTracker(),
		symbols:   cfg.symbols,
		batchTime: obs.NewTimekeeper("feed batch", 0),
		sides:     make(map[schema.OrderID]schema.SignalType),
	}

	s.handler = ingest.NewHandler(cfg.bufferSize, s.metrics, logger)
	for _, sym := range cfg.symbols {
		s.handler.Subscribe(sym, nil)
	}

	s.strategies = strategy.NewEngine(logger)
	s.strategies.Register(strategy.NewStatArb(cfg.symbols, cfg.zScoreThreshold, cfg.windowSize))
	s.strategies.SetSignalCallback(s.onSignal)
	s.handler.OnBookUpdate(s.strategies.ProcessOrderBook)

	s.gate = risk.NewEngine(risk.FromStore(store))
	store.Subscribe("risk.kill_switch", func(_, value string) {
		on := store.GetBool("risk.kill_switch")
		s.gate.SetKillSwitch(on)
		logger.Warn("kill switch toggled", zap.Bool("on", on))
	})

	s.exec = execution.NewEngine(s.handler, s.metrics, logger)
	s.exec.SetReportCallback(s.onReport)
	if latency := s.store.GetInt64("execution.fill_latency_us"); latency > 0 {
		s.exec.SetFillLatency(time.Duration(latency) * time.Microsecond)
	}
	return s, nil
}

func (s *simulator) start() {
	s.strategies.Start()
	s.exec.Start()
	s.lastStats = time.Now()
	s.logger.Info("simulator started", zap.Strings("symbols", s.symbols))
}

// onSignal runs on the ingest goroutine as part of each book update.
func (s *simulator) onSignal(sig schema.Signal) {
	s.metrics.IncSignal()

	view := risk.StateView{Position: s.positions.Position(sig.Symbol)}
	if b, ok := s.handler.Book(sig.Symbol); ok {
		if mid, has := b.MidPrice(); has {
			view.ReferencePrice = mid
		}
	}
	decision := s.gate.Evaluate(sig, view)
	if !decision.Allowed {
		s.metrics.IncSignalDenied()
		s.logger.Debug("signal denied",
			zap.String("symbol", sig.Symbol),
			zap.String("reason", decision.Reason.String()))
		return
	}

	id := s.exec.SubmitOrder(sig)
	s.sideMu.Lock()
	s.sides[id] = sig.Type
	s.sideMu.Unlock()
}

// onReport runs on the execution worker (and submitter/canceler for
// New/Canceled reports).
func (s *simulator) onReport(r *execution.Report) {
	s.sideMu.Lock()
	side := s.sides[r.OrderID]
	if r.Status.Terminal() {
		delete(s.sides, r.OrderID)
	}
	s.sideMu.Unlock()

	if r.ExecQuantity > 0 {
		pos := s.positions.ApplyFill(r.Symbol, side, r.ExecQuantity)
		s.logger.Debug("fill booked",
			zap.Uint64("order", uint64(r.OrderID)),
			zap.String("symbol", r.Symbol),
			zap.Uint32("qty", uint32(r.ExecQuantity)),
			zap.Int64("position", pos))
	}
}

// generate drives the loop from the synthetic feed generator.
func (s *simulator) generate(ctx context.Context, duration time.Duration, batchSize int, seed uint64) error {
	gen := mdg.NewGenerator(mdg.Config{Symbols: s.symbols, Seed: seed})

	var deadline time.Time
	if duration > 0 {
		deadline = time.Now().Add(duration)
	}

	var batch []byte
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return nil
		}

		batch = gen.NextBatch(batch[:0], batchSize)
		s.ingestBatch(batch, schema.Now())
		s.maybeLogStats()
	}
}

// replay drives the loop from captured segments.
func (s *simulator) replay(ctx context.Context, dir string, speed float64) error {
	p, err := capture.NewPlayback(capture.PlaybackConfig{Dir: dir, Speed: speed})
	if err != nil {
		return err
	}
	return p.Run(ctx, func(meta capture.RecordMeta, payload []byte) error {
		s.ingestBatch(payload, meta.Timestamp)
		s.maybeLogStats()
		return nil
	})
}

// ingestBatch pushes one batch through the ring and drains it, in
// chunks when the batch outsizes the ring.
func (s *simulator) ingestBatch(batch []byte, ts schema.Timestamp) {
	if s.capture != nil {
		if err := s.capture.TryAppend(capture.RecordMeta{Timestamp: ts}, batch); err != nil {
			s.metrics.IncCaptureDrop()
		}
	}

	s.batchTime.Start()
	off := 0
	for off < len(batch) {
		off += s.handler.Ring().Write(batch[off:])
		s.handler.ProcessRing()
	}
	d := s.batchTime.End()
	s.metrics.ObserveIngest(d)
}

func (s *simulator) maybeLogStats() {
	if time.Since(s.lastStats) < time.Second {
		return
	}
	s.lastStats = time.Now()

	snap := s.metrics.Snapshot()
	s.logger.Info("pipeline stats",
		zap.Uint64("bytes", snap.BytesConsumed),
		zap.Uint64("signals", snap.SignalsEmitted),
		zap.Uint64("denied", snap.SignalsDenied),
		zap.Uint64("orders", snap.OrdersSubmitted),
		zap.Uint64("reports", snap.ReportsEmitted),
		zap.Duration("ingest_avg", snap.IngestLatency.Avg))

	for _, sym := range s.symbols {
		b, ok := s.handler.Book(sym)
		if !ok {
			continue
		}
		bid, hasBid := b.BestBid()
		ask, hasAsk := b.BestAsk()
		if !hasBid || !hasAsk {
			continue
		}
		bids, asks := b.Depth()
		s.logger.Info("book top",
			zap.String("symbol", sym),
			zap.Int64("bid", int64(bid)),
			zap.Int64("ask", int64(ask)),
			zap.Int("bid_levels", bids),
			zap.Int("ask_levels", asks))
	}
}

func (s *simulator) shutdown(snapshotPath string) {
	s.strategies.Stop()
	s.exec.Stop()
	if s.capture != nil {
		if err := s.capture.Close(); err != nil {
			s.logger.Error("capture close failed", zap.Error(err))
		}
	}

	if snapshotPath != "" {
		snap := s.positions.Snapshot()
		if err := state.WriteSnapshot(snapshotPath, snap); err != nil {
			s.logger.Error("snapshot write failed", zap.Error(err))
		} else {
			s.logger.Info("positions snapshot written",
				zap.String("path", snapshotPath),
				zap.Int("symbols", len(snap.Positions)))
		}
	}

	s.logger.Info("simulator stopped", zap.String("latency", s.batchTime.Summary()))
}
