package kinesis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Constants taken from (2024-02-28):
// https://docs.aws.amazon.com/streams/latest/dev/service-sizes-and-limits.html
const (
	// maxStreamNameLength is the maximum length of a Kinesis stream name.
	// Source: https://docs.aws.amazon.com/kinesis/latest/APIReference/API_CreateStream.html#API_CreateStream_RequestSyntax
	maxStreamNameLength = 128

	// maxBatchLimit is the maximum number of records a single GetRecords
	// call may return.
	// Source: https://docs.aws.amazon.com/kinesis/latest/APIReference/API_GetRecords.html
	maxBatchLimit = 10_000

	// minBatchLimit is the minimum value accepted for the GetRecords Limit
	// parameter.
	minBatchLimit = 1

	// maxGetRecordsPerS is the per-shard GetRecords call budget. Polling
	// faster than this gets throttled by Kinesis, so the default
	// [ReaderConfig.PollInterval] stays well above 1/maxGetRecordsPerS.
	maxGetRecordsPerS = 5
)

var (
	ErrReaderStarted   = fmt.Errorf("kinesis reader is already started")
	ErrReaderStopped   = fmt.Errorf("kinesis reader is stopped")
	ErrShardClosed     = fmt.Errorf("shard is closed, no more records to read")
	ErrBadChecksum     = fmt.Errorf("aggregated record checksum mismatch")
	ErrNoShardIterator = fmt.Errorf("no shard iterator returned")
	ErrNoStreamDesc    = fmt.Errorf("no stream description returned")
)

// Handler is called once for every accepted (non-rejected) event. It is
// invoked by a single dispatch goroutine, so implementations don't need to be
// safe for concurrent use. Events from the same shard arrive in sequence
// number order; events from different shards are interleaved arbitrarily.
type Handler func(ctx context.Context, evt *Event)

// ReaderConfig holds all optional configuration parameters where no sane
// defaults can be guessed. The [NewReader] signature lists required arguments.
// Everything else can be configured with this struct. Use
// [DefaultReaderConfig] to get a prepopulated struct which you can then adjust
// to your likings.
type ReaderConfig struct {
	// PollInterval is the fixed pacing interval between consecutive
	// GetRecords calls on one shard. It exists to respect the per-shard
	// read throughput budget and applies whether or not records were
	// returned. Defaults to 1s.
	PollInterval time.Duration

	// BatchLimit is the maximum number of records requested per GetRecords
	// call. Must be in [1, 10000].
	BatchLimit int32

	// DescribeBackoffBase is the initial wait between DescribeStream
	// attempts while the stream is not yet ACTIVE. The wait doubles on
	// every attempt up to DescribeBackoffMax.
	DescribeBackoffBase time.Duration

	// DescribeBackoffMax caps the DescribeStream retry backoff.
	DescribeBackoffMax time.Duration

	// Deaggregate controls whether records carrying the KPL aggregation
	// magic prefix are expanded into their user payloads before envelope
	// decoding. Defaults to true.
	Deaggregate bool

	// Notifiee is a delegate implementation that gets notified when a
	// shard's poll loop terminates or a rejected record is dropped.
	Notifiee Notifiee

	// Log is the logger to use in this library. By default, it's a logger
	// that doesn't print anything.
	Log *slog.Logger

	// Meter is an OpenTelemetry meter that the reader registers its metrics
	// with. By default, it uses a noop meter provider. Give it the default
	// one with otel.GetMeterProvider().
	Meter metric.Meter

	// clock is a field that's used for mocking the time
	clock clock.Clock
}

// DefaultReaderConfig returns the default [Reader] configuration.
func DefaultReaderConfig() *ReaderConfig {
	return &ReaderConfig{
		PollInterval:        time.Second,
		BatchLimit:          maxBatchLimit,
		DescribeBackoffBase: 500 * time.Millisecond,
		DescribeBackoffMax:  8 * time.Second,
		Deaggregate:         true,
		Notifiee:            &NoopNotifiee{},
		Log:                 slog.New(slog.NewTextHandler(io.Discard, nil)), // /dev/null logger
		Meter:               noop.NewMeterProvider().Meter("go-kinesis-reader"),
		clock:               clock.New(),
	}
}

// Validate checks the [Reader] configuration and returns an error if any
// field does not pass the validation. Use [DefaultReaderConfig] to get a
// valid configuration struct.
func (c *ReaderConfig) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}

	if c.BatchLimit < minBatchLimit || c.BatchLimit > maxBatchLimit {
		return fmt.Errorf("batch limit must be in range [%d,%d], got %d", minBatchLimit, maxBatchLimit, c.BatchLimit)
	}

	if c.DescribeBackoffBase <= 0 {
		return fmt.Errorf("describe backoff base must be positive, got %s", c.DescribeBackoffBase)
	}

	if c.DescribeBackoffMax < c.DescribeBackoffBase {
		return fmt.Errorf("describe backoff max must be at least the base, got %s < %s", c.DescribeBackoffMax, c.DescribeBackoffBase)
	}

	if c.Notifiee == nil {
		return fmt.Errorf("notifiee must not be nil")
	}

	if c.Log == nil {
		return fmt.Errorf("logger must not be nil")
	}

	if c.Meter == nil {
		return fmt.Errorf("meter must not be nil")
	}

	return nil
}
