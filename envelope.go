package kinesis

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the JSON wire form that producers wrap every application
// payload in. The base64 transport encoding of the record blob is already
// stripped by the AWS SDK, so the decoder operates on the raw JSON bytes.
type Envelope struct {
	// Type names the application event carried in Payload.
	Type string `json:"type"`

	// Rejected marks the event as dropped-at-source. Rejected events are
	// never handed to the application handler but still count towards the
	// shard position. Absent means false.
	Rejected bool `json:"rejected,omitempty"`

	// Payload is the application event body, left opaque to this library.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is the decoded, application-visible unit produced from one Kinesis
// record (or one user payload of an aggregated record). It carries the
// envelope fields plus the record's stream coordinates.
type Event struct {
	// Type is the envelope's event type.
	Type string

	// Payload is the envelope's opaque event body.
	Payload json.RawMessage

	// ShardID identifies the shard the record was read from.
	ShardID string

	// PartitionKey is the record's partition key.
	PartitionKey string

	// SequenceNumber is the record's position within its shard. User
	// payloads expanded from one aggregated record share the same value.
	SequenceNumber string

	// ArrivedAt is the server-side approximate arrival timestamp, if the
	// service reported one.
	ArrivedAt time.Time
}

// decodeEnvelope parses one raw payload into an [Envelope]. It is a pure
// function of its input: the same bytes always yield the same envelope or
// the same error. A parse failure is a hard error for the whole batch, there
// is no per-record isolation.
func decodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}
