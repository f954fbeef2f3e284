package main

import (
	"testing"

	"main/internal/ingest"
	"main/internal/ops"
)

// The pipeline key names are part of the config file interface; these
// pins keep them from drifting.
func TestCoreConfigKeyNames(t *testing.T) {
	store := ops.NewStore()
	store.Set("symbols", "AAPL,MSFT")
	store.Set("strategy.stat_arb.z_score_threshold", "1.5")
	store.Set("strategy.stat_arb.window_size", "32")
	store.Set("market_data.buffer_size", "65536")

	cfg := coreConfigFromStore(store)
	if len(cfg.symbols) != 2 || cfg.symbols[0] != "AAPL" || cfg.symbols[1] != "MSFT" {
		t.Fatalf("symbols key not honored: %v", cfg.symbols)
	}
	if cfg.zScoreThreshold != 1.5 {
		t.Fatalf("z-score threshold key not honored: %v", cfg.zScoreThreshold)
	}
	if cfg.windowSize != 32 {
		t.Fatalf("window size key not honored: %v", cfg.windowSize)
	}
	if cfg.bufferSize != 65536 {
		t.Fatalf("buffer size key not honored: %v", cfg.bufferSize)
	}
}

func TestCoreConfigDefaults(t *testing.T) {
	cfg := coreConfigFromStore(ops.NewStore())
	if len(cfg.symbols) != 3 {
		t.Fatalf("default symbols: %v", cfg.symbols)
	}
	if cfg.zScoreThreshold != 2.0 || cfg.windowSize != 64 {
		t.Fatalf("default strategy params: threshold=%v window=%d", cfg.zScoreThreshold, cfg.windowSize)
	}
	if cfg.bufferSize != ingest.DefaultBufferSize {
		t.Fatalf("default buffer size: %d", cfg.bufferSize)
	}

	// Degenerate values fall back too.
	store := ops.NewStore()
	store.Set("strategy.stat_arb.z_score_threshold", "-1")
	store.Set("market_data.buffer_size", "0")
	cfg = coreConfigFromStore(store)
	if cfg.zScoreThreshold != 2.0 || cfg.bufferSize != ingest.DefaultBufferSize {
		t.Fatalf("degenerate values not defaulted: %+v", cfg)
	}
}

// The configured buffer size must reach the feed ring.
func TestBufferSizeReachesRing(t *testing.T) {
	store := ops.NewStore()
	store.Set("market_data.buffer_size", "4096")

	sim, err := newSimulator(store, nil)
	if err != nil {
		t.Fatalf("newSimulator: %v", err)
	}
	if got := sim.handler.Ring().Cap(); got != 4096 {
		t.Fatalf("ring capacity: got %d want 4096", got)
	}
}
