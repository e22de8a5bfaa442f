package kinesis

import (
	"bytes"
	"crypto/md5"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the KPL AggregatedRecord and Record protobuf messages.
// Source: https://github.com/awslabs/amazon-kinesis-producer/blob/master/aggregation-format.md
const (
	fieldAggRecords = 3 // AggregatedRecord.records
	fieldRecordData = 3 // Record.data
)

var (
	magicBytes        = []byte{0xF3, 0x89, 0x9A, 0xC2}
	baseAggRecordSize = len(magicBytes) + md5.Size
)

// isAggregated reports whether the payload carries the KPL aggregation
// envelope. Layout of an aggregated message:
//
//	0               4                  N          N+15
//	+---+---+---+---+==================+---+...+---+
//	|  MAGIC NUMBER | PROTOBUF MESSAGE |    MD5    |
//	+---+---+---+---+==================+---+...+---+
func isAggregated(data []byte) bool {
	return len(data) >= baseAggRecordSize && bytes.HasPrefix(data, magicBytes)
}

// deaggregate expands one KPL-aggregated payload into the user payloads it
// carries, in their original order. The md5 checksum trailer is verified
// before any parsing happens. The protobuf message is walked with protowire
// directly, only the Record.data fields are of interest here.
func deaggregate(data []byte) ([][]byte, error) {
	body := data[len(magicBytes) : len(data)-md5.Size]

	checksum := md5.Sum(body)
	if !bytes.Equal(checksum[:], data[len(data)-md5.Size:]) {
		return nil, ErrBadChecksum
	}

	var payloads [][]byte
	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return nil, fmt.Errorf("consume aggregated record tag: %w", protowire.ParseError(n))
		}
		body = body[n:]

		if num == fieldAggRecords && typ == protowire.BytesType {
			rec, n := protowire.ConsumeBytes(body)
			if n < 0 {
				return nil, fmt.Errorf("consume record message: %w", protowire.ParseError(n))
			}
			body = body[n:]

			payload, err := recordData(rec)
			if err != nil {
				return nil, err
			}
			payloads = append(payloads, payload)
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, body)
		if n < 0 {
			return nil, fmt.Errorf("skip aggregated record field %d: %w", num, protowire.ParseError(n))
		}
		body = body[n:]
	}

	return payloads, nil
}

// recordData extracts the data field from one embedded Record message.
func recordData(rec []byte) ([]byte, error) {
	var data []byte
	found := false

	for len(rec) > 0 {
		num, typ, n := protowire.ConsumeTag(rec)
		if n < 0 {
			return nil, fmt.Errorf("consume record tag: %w", protowire.ParseError(n))
		}
		rec = rec[n:]

		if num == fieldRecordData && typ == protowire.BytesType {
			data, n = protowire.ConsumeBytes(rec)
			if n < 0 {
				return nil, fmt.Errorf("consume record data: %w", protowire.ParseError(n))
			}
			rec = rec[n:]
			found = true
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, rec)
		if n < 0 {
			return nil, fmt.Errorf("skip record field %d: %w", num, protowire.ParseError(n))
		}
		rec = rec[n:]
	}

	if !found {
		return nil, fmt.Errorf("record message carries no data field")
	}

	return data, nil
}
