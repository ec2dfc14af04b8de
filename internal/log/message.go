package log

import "fmt"

// frameMessage builds the on-disk record: a 12-byte header (offset
// uint64 BE, position uint32 BE) followed by payload, in a single
// buffer so the caller can hand it to segment.Write in one call.
func frameMessage(offset, position uint64, payload []byte) ([]byte, error) {
	if position > uint64(^uint32(0)) {
		return nil, fmt.Errorf("log: position %d exceeds a segment's 32-bit capacity", position)
	}
	buf := make([]byte, messageHeaderWidth+len(payload))
	enc.PutUint64(buf[0:8], offset)
	enc.PutUint32(buf[8:12], uint32(position))
	copy(buf[messageHeaderWidth:], payload)
	return buf, nil
}
