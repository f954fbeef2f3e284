// Package logging provides the append-only log sink and the zap
// logger fronting it. Call sites log through a regular *zap.Logger;
// records cross a lock-free queue to a background drainer that formats
// and writes them, so the hot path never touches the file.
package logging

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap/zapcore"

	"main/internal/bus"
	"main/internal/errors"
	"main/internal/obs"
)

var ErrClosed = errors.New("log sink closed")

const (
	defaultQueueSize  = 8192
	drainIdleSleep    = 200 * time.Microsecond
	writerBufferBytes = 64 * 1024
)

// Config controls a Sink.
type Config struct {
	// Path of the append-only log file. Empty means stderr.
	Path string
	// Level is the minimum level written.
	Level zapcore.Level
	// QueueSize bounds the submission queue.
	QueueSize int
	// Metrics, when set, counts dropped records.
	Metrics *obs.Metrics
}

type entry struct {
	ts    time.Time
	level zapcore.Level
	msg   string
}

// Sink is a level-gated, background-drained append stream. Submission
// never blocks: records past the queue capacity are dropped with a
// diagnostic on stderr.
type Sink struct {
	cfg    Config
	level  zapcore.Level
	pushMu sync.Mutex
	queue  *bus.Queue[entry]
	file   *os.File
	out    *bufio.Writer
	drops  atomic.Uint64
	closed atomic.Bool

	flushReq chan chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewSink opens the target file and starts the drain goroutine.
func NewSink(cfg Config) (*Sink, error) {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}

	var (
		file *os.File
		out  io.Writer = os.Stderr
	)
	if cfg.Path != "" {
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "open log file")
		}
		file = f
		out = f
	}

	s := &Sink{
		cfg:      cfg,
		level:    cfg.Level,
		queue:    bus.NewQueue[entry](cfg.QueueSize),
		file:     file,
		out:      bufio.NewWriterSize(out, writerBufferBytes),
		flushReq: make(chan chan struct{}),
		done:     make(chan struct{}),
	}
	s.wg.Add(1)
	go s.drain()
	return s, nil
}

// Enabled is the cheap level gate.
func (s *Sink) Enabled(level zapcore.Level) bool {
	return level >= s.level
}

// Drops returns how many records were lost to back-pressure.
func (s *Sink) Drops() uint64 {
	return s.drops.Load()
}

// submit enqueues one record without blocking.
func (s *Sink) submit(ts time.Time, level zapcore.Level, msg string) {
	if s.closed.Load() || !s.Enabled(level) {
		return
	}
	// The ring tolerates exactly one producer; serializing pushes here
	// lets any goroutine log.
	s.pushMu.Lock()
	ok := s.queue.TryPush(entry{ts: ts, level: level, msg: msg})
	s.pushMu.Unlock()
	if !ok {
		s.drops.Add(1)
		s.cfg.Metrics.IncLogDrop()
		fmt.Fprintf(os.Stderr, "log queue full, dropping: %s\n", msg)
	}
}

// Flush blocks until every record submitted before the call is on
// disk.
func (s *Sink) Flush() error {
	if s.closed.Load() {
		return ErrClosed
	}
	ack := make(chan struct{})
	select {
	case s.flushReq <- ack:
		<-ack
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// Close drains outstanding records, flushes and closes the file.
func (s *Sink) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(s.done)
	s.wg.Wait()
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func (s *Sink) drain() {
	defer s.wg.Done()

	for {
		if e, ok := s.queue.TryPop(); ok {
			s.write(e)
			continue
		}
		select {
		case ack := <-s.flushReq:
			// Records can land between the failed pop above and taking
			// the barrier; drain again so everything submitted before
			// Flush is on disk when the ack fires.
			for {
				e, ok := s.queue.TryPop()
				if !ok {
					break
				}
				s.write(e)
			}
			_ = s.out.Flush()
			close(ack)
		case <-s.done:
			for {
				e, ok := s.queue.TryPop()
				if !ok {
					break
				}
				s.write(e)
			}
			_ = s.out.Flush()
			return
		default:
			time.Sleep(drainIdleSleep)
		}
	}
}

func (s *Sink) write(e entry) {
	s.out.WriteString(FormatLine(e.ts, e.level, e.msg))
	s.out.WriteByte('\n')
}

// FormatLine renders one log record as
// "YYYY-MM-DD HH:MM:SS.mmm [LEVEL] message".
func FormatLine(ts time.Time, level zapcore.Level, msg string) string {
	return fmt.Sprintf("%s [%s] %s", ts.Format("2006-01-02 15:04:05.000"), levelTag(level), msg)
}

func levelTag(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.InfoLevel:
		return "INFO"
	case zapcore.WarnLevel:
		return "WARNING"
	case zapcore.ErrorLevel:
		return "ERROR"
	case zapcore.FatalLevel:
		return "FATAL"
	default:
		return level.CapitalString()
	}
}
