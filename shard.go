package kinesis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

// shardReader consumes a single shard. It owns the shard's cursor (there is
// never more than one live cursor per shard) and the shard's position, the
// sequence number of the last record that was handed to the dispatch loop.
type shardReader struct {
	// reference to the reader's configuration
	cfg *ReaderConfig

	// reference to the Kinesis client implementation
	client Client

	// the stream and shard this reader consumes
	streamName string
	shardID    string

	// logger scoped to this shard
	log *slog.Logger

	// limiter pacing consecutive GetRecords calls to the fixed poll interval
	limiter *rate.Limiter

	// decoded events are sent here, the reader's dispatch loop consumes them
	events chan<- *Event

	// the sequence number of the last delivered record. Empty until the
	// first non-empty batch was processed; cursor acquisition then switches
	// from LATEST to AFTER_SEQUENCE_NUMBER.
	position string

	// onAdvance is called after every position move (for the reader's
	// position snapshot)
	onAdvance func(shardID string, sequenceNumber string)

	// various metrics
	meterFetchCount     metric.Int64Counter
	meterEventCount     metric.Int64Counter
	meterCursorRenewals metric.Int64Counter
}

// run drives the poll loop for this shard until the context is cancelled or
// a non-transient error occurs. Cursor expiry is the one expected error
// class: the loop renews the cursor seeded with the shard's position and
// carries on, trading at-most-a-batch redelivery for zero loss. Every other
// failure, including a decode failure, terminates consumption of this shard
// and is returned to the caller.
func (s *shardReader) run(ctx context.Context) error {
	cursor, err := s.acquireCursor(ctx)
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		out, err := s.client.GetRecords(ctx, &kinesis.GetRecordsInput{
			ShardIterator: aws.String(cursor),
			Limit:         aws.Int32(s.cfg.BatchLimit),
		})
		if err != nil {
			if !isExpiredCursor(err) {
				return fmt.Errorf("get records: %w", err)
			}

			s.log.Info("Shard cursor expired, renewing", "position", s.position)
			s.meterCursorRenewals.Add(ctx, 1)

			cursor, err = s.acquireCursor(ctx)
			if err != nil {
				return err
			}
			continue
		}

		s.meterFetchCount.Add(ctx, 1)
		s.log.Debug("Fetched records", "count", len(out.Records))

		// the pacing wait applies whether or not records were returned
		if err := s.pace(ctx); err != nil {
			return err
		}

		if err := s.deliver(ctx, out.Records); err != nil {
			return err
		}

		// a nil next cursor means the shard was closed and fully drained
		if out.NextShardIterator == nil {
			return ErrShardClosed
		}
		cursor = *out.NextShardIterator
	}
}

// acquireCursor obtains a fresh read cursor for this shard. Without a known
// position the cursor starts at LATEST and only new data is read. With a
// known position the cursor resumes immediately after the last delivered
// sequence number. Expiry during acquisition re-enters acquisition, any
// other error propagates to the caller.
func (s *shardReader) acquireCursor(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		input := &kinesis.GetShardIteratorInput{
			StreamName:        aws.String(s.streamName),
			ShardId:           aws.String(s.shardID),
			ShardIteratorType: types.ShardIteratorTypeLatest,
		}
		if s.position != "" {
			input.ShardIteratorType = types.ShardIteratorTypeAfterSequenceNumber
			input.StartingSequenceNumber = aws.String(s.position)
		}

		out, err := s.client.GetShardIterator(ctx, input)
		if err != nil {
			if isExpiredCursor(err) {
				continue
			}
			return "", fmt.Errorf("get shard iterator: %w", err)
		}

		if out.ShardIterator == nil {
			return "", ErrNoShardIterator
		}

		from := "latest"
		if s.position != "" {
			from = s.position
		}
		s.log.Info("Acquired shard cursor", "iterator", *out.ShardIterator, "from", from)

		return *out.ShardIterator, nil
	}
}

// pace enforces the fixed poll interval between consecutive GetRecords calls.
// The reservation is made against the configured clock so that tests can run
// on a mock clock.
func (s *shardReader) pace(ctx context.Context) error {
	res := s.limiter.ReserveN(s.cfg.clock.Now(), 1)

	delay := res.DelayFrom(s.cfg.clock.Now())
	if delay <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		res.CancelAt(s.cfg.clock.Now())
		return ctx.Err()
	case <-s.cfg.clock.After(delay):
		return nil
	}
}

// deliver decodes and dispatches one batch in record order and then advances
// the shard position past the batch. Rejected events are counted but never
// dispatched; they still move the position because the record was processed.
func (s *shardReader) deliver(ctx context.Context, records []types.Record) error {
	for i := range records {
		if err := s.deliverRecord(ctx, &records[i]); err != nil {
			return err
		}
	}

	if len(records) > 0 {
		s.advance(aws.ToString(records[len(records)-1].SequenceNumber))
	}

	return nil
}

func (s *shardReader) deliverRecord(ctx context.Context, rec *types.Record) error {
	payloads := [][]byte{rec.Data}
	if s.cfg.Deaggregate && isAggregated(rec.Data) {
		var err error
		payloads, err = deaggregate(rec.Data)
		if err != nil {
			return fmt.Errorf("deaggregate record %s: %w", aws.ToString(rec.SequenceNumber), err)
		}
	}

	for _, payload := range payloads {
		env, err := decodeEnvelope(payload)
		if err != nil {
			return fmt.Errorf("record %s: %w", aws.ToString(rec.SequenceNumber), err)
		}

		if env.Rejected {
			s.meterEventCount.Add(ctx, 1, metric.WithAttributes(attribute.String("type", "rejected")))
			s.cfg.Notifiee.RejectedRecord(s.shardID, aws.ToString(rec.SequenceNumber))
			continue
		}

		evt := &Event{
			Type:           env.Type,
			Payload:        env.Payload,
			ShardID:        s.shardID,
			PartitionKey:   aws.ToString(rec.PartitionKey),
			SequenceNumber: aws.ToString(rec.SequenceNumber),
		}
		if rec.ApproximateArrivalTimestamp != nil {
			evt.ArrivedAt = *rec.ApproximateArrivalTimestamp
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case s.events <- evt:
			s.meterEventCount.Add(ctx, 1, metric.WithAttributes(attribute.String("type", "dispatched")))
		}
	}

	return nil
}

// advance moves the shard position forward to the given sequence number.
// Positions only ever move forward: after a mid-batch cursor renewal the
// service may redeliver records, and a stale sequence number must not drag
// the resume point backwards.
func (s *shardReader) advance(sequenceNumber string) {
	if sequenceNumber == "" {
		return
	}

	if s.position != "" {
		cur, okCur := new(big.Int).SetString(s.position, 10)
		next, okNext := new(big.Int).SetString(sequenceNumber, 10)
		if okCur && okNext && next.Cmp(cur) <= 0 {
			return
		}
	}

	s.position = sequenceNumber
	if s.onAdvance != nil {
		s.onAdvance(s.shardID, sequenceNumber)
	}
}

// isExpiredCursor classifies the one transient error class of the poll loop.
// Shard iterators expire a fixed window after issuance, so running into one
// is a normal state transition and not a failure.
func isExpiredCursor(err error) bool {
	var expired *types.ExpiredIteratorException
	return errors.As(err, &expired)
}
