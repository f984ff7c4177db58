package telemetry

import (
	"bufio"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// counters are shared between the Sink and its actor.
type counters struct {
	inFlight atomic.Int64
	written  atomic.Uint64
	dropped  atomic.Uint64
	failed   atomic.Uint64

	mu      sync.Mutex
	lastErr error
}

func (c *counters) fail(err error) {
	c.failed.Add(1)
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

// takeErr returns the last write error and forgets it.
func (c *counters) takeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.lastErr
	c.lastErr = nil
	return err
}

// trajectoryRecorder is the actor that owns the output writer. Only its
// mailbox goroutine touches out, so no lock is needed around it.
type trajectoryRecorder struct {
	raw   io.Writer
	out   *bufio.Writer
	stats *counters
	json  protojson.MarshalOptions
}

var _ actor.Actor = (*trajectoryRecorder)(nil)

func newTrajectoryRecorder(w io.Writer, stats *counters) *trajectoryRecorder {
	return &trajectoryRecorder{
		raw:   w,
		stats: stats,
		json:  protojson.MarshalOptions{UseProtoNames: true},
	}
}

func (r *trajectoryRecorder) PreStart(ctx *actor.Context) error {
	r.out = bufio.NewWriter(r.raw)
	return nil
}

func (r *trajectoryRecorder) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("%s started", ctx.Self().Name())
		header, err := structpb.NewStruct(map[string]any{
			"event": "start",
			"time":  time.Now().Format(time.RFC3339Nano),
		})
		if err == nil {
			r.write(header)
		}
	case *structpb.Struct:
		r.stats.inFlight.Add(-1)
		if r.write(msg) {
			r.stats.written.Add(1)
		}
	case *emptypb.Empty:
		if err := r.out.Flush(); err != nil {
			r.stats.fail(err)
			ctx.Logger().Errorf("%s flush failed: %v", ctx.Self().Name(), err)
		}
		ctx.Response(&emptypb.Empty{})
	default:
		ctx.Unhandled()
	}
}

func (r *trajectoryRecorder) write(rec *structpb.Struct) bool {
	line, err := r.json.Marshal(rec)
	if err != nil {
		r.stats.fail(err)
		return false
	}
	if _, err := r.out.Write(line); err != nil {
		r.stats.fail(err)
		return false
	}
	if err := r.out.WriteByte('\n'); err != nil {
		r.stats.fail(err)
		return false
	}
	return true
}

func (r *trajectoryRecorder) PostStop(ctx *actor.Context) error {
	if r.out == nil {
		return nil
	}
	if err := r.out.Flush(); err != nil {
		r.stats.fail(err)
		return err
	}
	return nil
}
