// Package telemetry records body trajectories as JSON lines on a best-effort
// basis. It never slows down or fails the physics: when the writer falls
// behind, records are dropped and counted.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/simulation"
)

// ActorName is the name of the recorder actor inside the actor system.
const ActorName = "trajectory-recorder"

// AutoPath asks OpenFile for a fresh file in the temp directory.
const AutoPath = "auto"

var ErrClosed = errors.New("telemetry sink is closed")

const flushTimeout = 5 * time.Second

// Stats is a snapshot of the sink counters.
type Stats struct {
	Written uint64
	Dropped uint64
	Failed  uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("written=%d dropped=%d failed=%d", s.Written, s.Dropped, s.Failed)
}

// Sink implements simulation.Recorder on top of a goakt actor.
type Sink struct {
	ctx    context.Context
	pid    *actor.PID
	logger golog.Logger
	limit  int64
	stats  *counters
	closed atomic.Bool
}

var _ simulation.Recorder = (*Sink)(nil)

// NewSink spawns the recorder actor in system. buffer bounds the number of
// records waiting in the actor mailbox; beyond it new records are dropped.
func NewSink(ctx context.Context, system actor.ActorSystem, w io.Writer, buffer int, logger golog.Logger) (*Sink, error) {
	if w == nil {
		return nil, errors.New("telemetry writer must not be nil")
	}
	if buffer < 1 {
		return nil, fmt.Errorf("telemetry buffer must be at least 1, got %d", buffer)
	}
	if logger == nil {
		logger = golog.DefaultLogger
	}
	stats := &counters{}
	pid, err := system.Spawn(ctx, ActorName, newTrajectoryRecorder(w, stats))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn %s: %w", ActorName, err)
	}
	return &Sink{
		ctx:    ctx,
		pid:    pid,
		logger: logger,
		limit:  int64(buffer),
		stats:  stats,
	}, nil
}

// Record converts ev and hands it to the actor. It never blocks.
func (s *Sink) Record(ev simulation.Event) {
	if s.closed.Load() {
		s.stats.dropped.Add(1)
		return
	}
	if s.stats.inFlight.Add(1) > s.limit {
		s.stats.inFlight.Add(-1)
		if n := s.stats.dropped.Add(1); n == 1 || n%1000 == 0 {
			s.logger.Warnf("telemetry falling behind, %d records dropped", n)
		}
		return
	}
	rec, err := structpb.NewStruct(map[string]any{
		"id":   ev.BodyID,
		"seq":  ev.Seq,
		"x":    ev.Position.X,
		"y":    ev.Position.Y,
		"vx":   ev.Velocity.X,
		"vy":   ev.Velocity.Y,
		"time": ev.At.Format(time.RFC3339Nano),
	})
	if err != nil {
		s.stats.inFlight.Add(-1)
		s.stats.fail(err)
		return
	}
	if err := actor.Tell(s.ctx, s.pid, rec); err != nil {
		s.stats.inFlight.Add(-1)
		s.stats.fail(err)
	}
}

// Flush waits until every record accepted so far has been written to the
// underlying writer. It returns the last write error, if any.
func (s *Sink) Flush(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if _, err := actor.Ask(ctx, s.pid, &emptypb.Empty{}, flushTimeout); err != nil {
		return fmt.Errorf("telemetry flush: %w", err)
	}
	return s.stats.takeErr()
}

// Close flushes and stops the actor. The writer itself is left open.
func (s *Sink) Close(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	flushErr := s.Flush(ctx)
	s.closed.Store(true)
	if err := s.pid.Shutdown(ctx); err != nil {
		return errors.Join(flushErr, fmt.Errorf("failed to stop %s: %w", ActorName, err))
	}
	s.logger.Infof("telemetry closed: %s", s.Stats())
	return flushErr
}

func (s *Sink) Stats() Stats {
	return Stats{
		Written: s.stats.written.Load(),
		Dropped: s.stats.dropped.Load(),
		Failed:  s.stats.failed.Load(),
	}
}

// OpenFile creates the telemetry output. AutoPath selects
// arena_<timestamp>.jsonl in the system temp directory. The chosen path is
// returned with the file.
func OpenFile(path string) (*os.File, string, error) {
	if path == AutoPath {
		name := fmt.Sprintf("arena_%s.jsonl", time.Now().Format("2006_01_02_15_04_05.000"))
		path = filepath.Join(os.TempDir(), name)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open telemetry file: %w", err)
	}
	return f, path, nil
}
