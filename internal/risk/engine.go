// Package risk gates strategy signals before they reach execution.
// All checks are pure arithmetic on the pre-trade view; a denial names
// exactly one reason.
package risk

import (
	"sync/atomic"
	"time"

	"main/internal/ops"
	"main/internal/schema"
)

const maxInt64 = int64(^uint64(0) >> 1)

// Reason identifies which limit denied a signal.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonKillSwitch
	ReasonRateLimit
	ReasonMaxQty
	ReasonMaxNotional
	ReasonPositionLimit
	ReasonPriceBand
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "NONE"
	case ReasonKillSwitch:
		return "KILL_SWITCH"
	case ReasonRateLimit:
		return "RATE_LIMIT"
	case ReasonMaxQty:
		return "MAX_QTY"
	case ReasonMaxNotional:
		return "MAX_NOTIONAL"
	case ReasonPositionLimit:
		return "POSITION_LIMIT"
	case ReasonPriceBand:
		return "PRICE_BAND"
	default:
		return "UNKNOWN"
	}
}

// Config defines simple risk limits. Zero-valued limits are disabled.
type Config struct {
	KillSwitch           bool
	MaxOrderQty          schema.Quantity
	MaxNotional          int64
	MaxPosition          int64
	OrderRateLimit       int
	OrderRateWindow      time.Duration
	MaxPriceDeviationBps int64
}

// FromStore reads the risk.* keys out of the configuration store.
func FromStore(s *ops.Store) Config {
	return Config{
		KillSwitch:           s.GetBool("risk.kill_switch"),
		MaxOrderQty:          schema.Quantity(s.GetUint("risk.max_order_qty")),
		MaxNotional:          s.GetInt64("risk.max_notional"),
		MaxPosition:          s.GetInt64("risk.max_position"),
		OrderRateLimit:       s.GetInt("risk.order_rate_limit"),
		OrderRateWindow:      time.Duration(s.GetInt64("risk.order_rate_window_ms")) * time.Millisecond,
		MaxPriceDeviationBps: s.GetInt64("risk.max_price_deviation_bps"),
	}
}

// StateView is the pre-trade snapshot a check runs against. Position
// is signed base quantity for the signal's symbol. Now is nanoseconds;
// zero means wall clock.
type StateView struct {
	Position       int64
	ReferencePrice schema.Price
	Now            int64
}

// Decision is the outcome of one evaluation.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Engine evaluates signals against static limits. Evaluate runs on the
// strategy thread and is not safe for concurrent use; the kill switch
// alone may be flipped from any goroutine.
type Engine struct {
	cfg             Config
	kill            atomic.Bool
	rateWindowStart int64
	rateCount       int
}

// NewEngine creates a risk engine with static limits.
func NewEngine(cfg Config) *Engine {
	e := &Engine{cfg: cfg}
	e.kill.Store(cfg.KillSwitch)
	return e
}

// SetKillSwitch flips the global halt. Wired to the config store so a
// live "risk.kill_switch=true" stops order flow immediately, whatever
// goroutine applies the config change.
func (e *Engine) SetKillSwitch(on bool) {
	e.kill.Store(on)
}

// Evaluate applies the limit checks to one signal in a fixed order:
// kill switch, rate, quantity, price band, notional, position.
func (e *Engine) Evaluate(sig schema.Signal, state StateView) Decision {
	now := state.Now
	if now == 0 {
		now = time.Now().UnixNano()
	}

	if e.kill.Load() {
		return deny(ReasonKillSwitch)
	}

	if e.cfg.OrderRateLimit > 0 && e.cfg.OrderRateWindow > 0 {
		window := int64(e.cfg.OrderRateWindow)
		if e.rateWindowStart == 0 || now-e.rateWindowStart >= window {
			e.rateWindowStart = now
			e.rateCount = 0
		}
		e.rateCount++
		if e.rateCount > e.cfg.OrderRateLimit {
			return deny(ReasonRateLimit)
		}
	}

	if e.cfg.MaxOrderQty > 0 && sig.Quantity > e.cfg.MaxOrderQty {
		return deny(ReasonMaxQty)
	}

	if e.cfg.MaxPriceDeviationBps > 0 && sig.Price > 0 && state.ReferencePrice > 0 {
		diff := absInt64(int64(sig.Price) - int64(state.ReferencePrice))
		if exceedsDeviation(diff, int64(state.ReferencePrice), e.cfg.MaxPriceDeviationBps) {
			return deny(ReasonPriceBand)
		}
	}

	notional, overflow := mulNotional(sig.Price, sig.Quantity)
	if overflow {
		return deny(ReasonMaxNotional)
	}
	if e.cfg.MaxNotional > 0 && notional > e.cfg.MaxNotional {
		return deny(ReasonMaxNotional)
	}

	nextPos := applySignal(state.Position, sig.Type, sig.Quantity)
	if e.cfg.MaxPosition > 0 && absInt64(nextPos) > e.cfg.MaxPosition {
		return deny(ReasonPositionLimit)
	}

	return Decision{Allowed: true, Reason: ReasonNone}
}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

func mulNotional(price schema.Price, qty schema.Quantity) (int64, bool) {
	p := int64(price)
	q := int64(qty)
	if p == 0 || q == 0 {
		return 0, false
	}
	if p < 0 {
		p = -p
	}
	if p > maxInt64/q {
		return 0, true
	}
	return p * q, false
}

func applySignal(pos int64, typ schema.SignalType, qty schema.Quantity) int64 {
	switch typ {
	case schema.SignalBuy:
		return pos + int64(qty)
	case schema.SignalSell:
		return pos - int64(qty)
	default:
		return pos
	}
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func exceedsDeviation(diff, ref, bps int64) bool {
	if diff <= 0 || ref <= 0 || bps <= 0 {
		return false
	}
	if diff > maxInt64/10000 {
		return true
	}
	if ref > maxInt64/bps {
		return true
	}
	return diff*10000 > ref*bps
}
