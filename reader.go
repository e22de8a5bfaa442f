//go:generate mockgen -source=client.go -destination=client_test.go -package=kinesis -typed
package kinesis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

type readerState int32

const (
	readerStateUnstarted readerState = 0
	readerStateStarting  readerState = 1
	readerStateStarted   readerState = 2
	readerStateStopping  readerState = 3
	readerStateStopped   readerState = 4
)

func (r readerState) String() string {
	switch r {
	case readerStateUnstarted:
		return "unstarted"
	case readerStateStarting:
		return "starting"
	case readerStateStarted:
		return "started"
	case readerStateStopping:
		return "stopping"
	case readerStateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown state %d", r)
	}
}

// Reader continuously consumes a Kinesis Data Stream. It discovers the
// stream's shards once, starts one poll loop per shard, and delivers decoded
// events to the configured [Handler] through a single dispatch goroutine.
type Reader struct {
	// reference to the reader's configuration
	cfg *ReaderConfig

	// reference to the Kinesis client implementation
	client Client

	// the stream to consume records from
	streamName string

	// the application callback for accepted events
	handler Handler

	// shard poll loops send decoded events here, the dispatch loop in
	// [Reader.Start] is the only consumer
	events chan *Event

	// shard poll loops report their terminal error here
	terminations chan *shardTermination

	// wait group that's done when all shard poll loops have returned
	wg sync.WaitGroup

	// the last delivered sequence number per shard ID
	positions   map[string]string
	positionsMu sync.Mutex

	// started is a channel that will be closed once all shard poll loops
	// are running
	started chan struct{}

	// state holds the reader's lifecycle state
	state *atomic.Int32

	// stopped is a channel that will be closed when the Reader has stopped
	stopped chan struct{}

	// various metrics
	meterFetchCount        metric.Int64Counter
	meterEventCount        metric.Int64Counter
	meterCursorRenewals    metric.Int64Counter
	meterShardTerminations metric.Int64Counter
}

// shardTermination carries the terminal error of one shard's poll loop back
// to the dispatch loop.
type shardTermination struct {
	shardID string
	err     error
}

// NewReader creates a new instance of Reader with the given parameters. It
// validates the client implementation, stream name, handler, and
// configuration. It returns the new Reader instance or an error if validation
// or initialization fails.
//
// The client, stream name, and handler parameters are required. Everything
// else should be configured using the [ReaderConfig] struct. Use
// [DefaultReaderConfig] as a starting point.
func NewReader(client Client, streamName string, handler Handler, cfg *ReaderConfig) (*Reader, error) {
	// validate given client implementation
	if client == nil {
		return nil, fmt.Errorf("no client given")
	}

	// validate given stream name
	if streamName == "" {
		return nil, fmt.Errorf("empty stream name")
	} else if len(streamName) > maxStreamNameLength {
		return nil, fmt.Errorf("stream name too long, length %d", len(streamName))
	}

	// validate given handler
	if handler == nil {
		return nil, fmt.Errorf("no handler given")
	}

	// validate the given configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// add a log message indicator that it originates from this library
	cfg.Log = cfg.Log.With("scope", "go-kinesis-reader")

	// initialize meters
	meterFetchCount, err := cfg.Meter.Int64Counter("fetch_count", metric.WithDescription("The total number of GetRecords calls"), metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("new fetch_count counter: %w", err)
	}

	meterEventCount, err := cfg.Meter.Int64Counter("event_count", metric.WithDescription("The total number of decoded events by outcome"), metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("new event_count counter: %w", err)
	}

	meterCursorRenewals, err := cfg.Meter.Int64Counter("cursor_renewal_count", metric.WithDescription("The total number of expired cursor renewals"), metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("new cursor_renewal_count counter: %w", err)
	}

	meterShardTerminations, err := cfg.Meter.Int64Counter("shard_termination_count", metric.WithDescription("The total number of terminated shard poll loops"), metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("new shard_termination_count counter: %w", err)
	}

	var state atomic.Int32
	state.Store(int32(readerStateUnstarted))

	// initialize reader
	r := &Reader{
		cfg:                    cfg,
		client:                 client,
		streamName:             streamName,
		handler:                handler,
		events:                 make(chan *Event),
		terminations:           make(chan *shardTermination),
		positions:              make(map[string]string),
		started:                make(chan struct{}),
		state:                  &state,
		stopped:                make(chan struct{}),
		meterFetchCount:        meterFetchCount,
		meterEventCount:        meterEventCount,
		meterCursorRenewals:    meterCursorRenewals,
		meterShardTerminations: meterShardTerminations,
	}

	return r, nil
}

// Start starts consuming the configured Kinesis Data Stream. It waits for the
// stream to become ACTIVE, starts one poll loop goroutine per shard, and then
// dispatches decoded events to the handler until the given context is
// cancelled. Call [Reader.WaitStarted] to get notified when all poll loops
// are running.
//
// A poll loop that terminates with an error is reported to the [Notifiee] and
// not restarted; the remaining shards keep being consumed. Cancelling the
// context is the only way to stop the Reader.
func (r *Reader) Start(ctx context.Context) error {
	// every public API checks the state pre-conditions
	switch r.setState(readerStateStarting) {
	case readerStateUnstarted:
		// all good
	case readerStateStarting, readerStateStarted:
		return ErrReaderStarted
	case readerStateStopping, readerStateStopped:
		return ErrReaderStopped
	}

	// wait for the stream to become ready and resolve its shards
	shards, err := r.awaitStreamActive(ctx)
	if err != nil {
		r.setState(readerStateStopped)
		close(r.stopped)
		return err
	}

	r.cfg.Log.Info(fmt.Sprintf("Found %d shards", len(shards)))

	// start one poll loop per shard
	for _, s := range shards {
		sr := r.newShardReader(aws.ToString(s.ShardId))

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.runShard(ctx, sr)
		}()
	}

	// mark the reader as started
	r.setState(readerStateStarted)
	close(r.started)

	// always clean up after ourselves.
	defer r.shutdown()

	// start the dispatch loop. It is the single goroutine that invokes the
	// handler, so the handler never runs concurrently and per-shard event
	// order is preserved.
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-r.events:
			r.handler(ctx, evt)
		case term := <-r.terminations:
			r.handleTermination(ctx, term)
		}
	}
}

// WaitStarted blocks until all shard poll loops have been started. It does
// not wait for them to finish, they are intended to run for the lifetime of
// the process.
func (r *Reader) WaitStarted(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stopped:
		return ErrReaderStopped
	case <-r.started:
		return nil
	}
}

// WaitStopped blocks until the Reader has stopped and cleaned up all its
// resources.
func (r *Reader) WaitStopped(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stopped:
		return nil
	}
}

// Positions returns a snapshot of the last successfully delivered sequence
// number per shard ID. Shards that have not delivered anything yet are
// absent from the map.
func (r *Reader) Positions() map[string]string {
	r.positionsMu.Lock()
	defer r.positionsMu.Unlock()

	snapshot := make(map[string]string, len(r.positions))
	for shardID, seq := range r.positions {
		snapshot[shardID] = seq
	}
	return snapshot
}

// setState sets the reader state and logs the state transition
func (r *Reader) setState(new readerState) readerState {
	old := r.state.Swap(int32(new))
	r.cfg.Log.Info(fmt.Sprintf("Kinesis reader %s", new.String()), "old", readerState(old).String(), "new", new.String())
	return readerState(old)
}

func (r *Reader) shutdown() {
	defer close(r.stopped)
	r.setState(readerStateStopping)
	defer r.setState(readerStateStopped)

	// the poll loops exit through their context. Keep draining the channels
	// so none of them blocks mid-send while we wait for them to return.
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-r.events:
		case <-r.terminations:
		case <-done:
			return
		}
	}
}

// runShard runs one shard's poll loop and reports its terminal error to the
// dispatch loop. A context cancellation is the regular shutdown path and not
// reported.
func (r *Reader) runShard(ctx context.Context, sr *shardReader) {
	err := sr.run(ctx)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}

	select {
	case <-ctx.Done():
	case r.terminations <- &shardTermination{shardID: sr.shardID, err: err}:
	}
}

func (r *Reader) handleTermination(ctx context.Context, term *shardTermination) {
	r.cfg.Log.Error("Shard consumption terminated", "shard", term.shardID, "err", term.err)
	r.meterShardTerminations.Add(ctx, 1)
	r.cfg.Notifiee.ShardTerminated(term.shardID, term.err)
}

func (r *Reader) newShardReader(shardID string) *shardReader {
	return &shardReader{
		cfg:                 r.cfg,
		client:              r.client,
		streamName:          r.streamName,
		shardID:             shardID,
		log:                 r.cfg.Log.With(slog.String("shard", shardID)),
		limiter:             rate.NewLimiter(rate.Every(r.cfg.PollInterval), 1),
		events:              r.events,
		onAdvance:           r.recordPosition,
		meterFetchCount:     r.meterFetchCount,
		meterEventCount:     r.meterEventCount,
		meterCursorRenewals: r.meterCursorRenewals,
	}
}

func (r *Reader) recordPosition(shardID string, sequenceNumber string) {
	r.positionsMu.Lock()
	r.positions[shardID] = sequenceNumber
	r.positionsMu.Unlock()
}

// awaitStreamActive resolves the stream's shards once the stream reports
// ACTIVE status. Non-ACTIVE statuses are retried with capped exponential
// backoff. Errors from the describe call itself propagate to the caller
// instead of being retried.
func (r *Reader) awaitStreamActive(ctx context.Context) ([]types.Shard, error) {
	backoff := r.cfg.DescribeBackoffBase
	for {
		shards, status, err := r.describeStream(ctx)
		if err != nil {
			return nil, err
		}

		if status == types.StreamStatusActive {
			return shards, nil
		}

		r.cfg.Log.Info("Stream not active yet", "status", status, "retry_in", backoff.String())

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-r.cfg.clock.After(backoff):
		}

		backoff *= 2
		if backoff > r.cfg.DescribeBackoffMax {
			backoff = r.cfg.DescribeBackoffMax
		}
	}
}

// describeStream requests the stream description from AWS Kinesis. The shard
// list is paginated, a single description carries at most 100 shards.
func (r *Reader) describeStream(ctx context.Context) ([]types.Shard, types.StreamStatus, error) {
	r.cfg.Log.Debug("Describing stream...")

	var (
		shards []types.Shard
		start  *string
	)
	for {
		out, err := r.client.DescribeStream(ctx, &kinesis.DescribeStreamInput{
			StreamName:            aws.String(r.streamName),
			ExclusiveStartShardId: start,
		})
		if err != nil {
			return nil, "", fmt.Errorf("describe stream: %w", err)
		}

		desc := out.StreamDescription
		if desc == nil {
			return nil, "", ErrNoStreamDesc
		}

		// don't bother paginating a stream we'll describe again anyway
		if desc.StreamStatus != types.StreamStatusActive {
			return nil, desc.StreamStatus, nil
		}

		shards = append(shards, desc.Shards...)

		if desc.HasMoreShards == nil || !*desc.HasMoreShards || len(desc.Shards) == 0 {
			return shards, desc.StreamStatus, nil
		}

		start = desc.Shards[len(desc.Shards)-1].ShardId
	}
}
