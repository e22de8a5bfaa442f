package kinesis

import "log/slog"

// Notifiee is a delegate that gets notified about noteworthy [Reader] events
// that happen outside the regular handler path.
type Notifiee interface {
	// ShardTerminated is called when a shard's poll loop stopped for good.
	// The reader does not restart terminated shards, the remaining shards
	// keep being consumed. Use this to detect a stalled partition.
	ShardTerminated(shardID string, err error)

	// RejectedRecord is called when a decoded event carried the rejection
	// marker and was dropped instead of being handed to the handler.
	RejectedRecord(shardID string, sequenceNumber string)
}

type NotifieeBundle struct {
	ShardTerminatedF func(string, error)
	RejectedRecordF  func(string, string)
}

var _ Notifiee = (*NotifieeBundle)(nil)

func (n *NotifieeBundle) ShardTerminated(shardID string, err error) {
	if n.ShardTerminatedF != nil {
		n.ShardTerminatedF(shardID, err)
	}
}

func (n *NotifieeBundle) RejectedRecord(shardID string, sequenceNumber string) {
	if n.RejectedRecordF != nil {
		n.RejectedRecordF(shardID, sequenceNumber)
	}
}

type NoopNotifiee struct{}

var _ Notifiee = (*NoopNotifiee)(nil)

func (n *NoopNotifiee) ShardTerminated(shardID string, err error) {}

func (n *NoopNotifiee) RejectedRecord(shardID string, sequenceNumber string) {}

type LogNotifiee struct {
	Log *slog.Logger
}

var _ Notifiee = (*LogNotifiee)(nil)

func (l *LogNotifiee) ShardTerminated(shardID string, err error) {
	l.Log.Error("Shard terminated", "shard", shardID, "err", err)
}

func (l *LogNotifiee) RejectedRecord(shardID string, sequenceNumber string) {
	l.Log.Debug("Rejected record", "shard", shardID, "sequence_number", sequenceNumber)
}
