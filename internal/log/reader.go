package log

import (
	"io"

	"go.uber.org/zap"
)

// Reader is a positioned cursor over a partition: it presents every
// segment from a chosen starting offset onward as one continuous byte
// stream, including the 12-byte framed headers. Parsing messages back out
// of that stream is the caller's responsibility — Reader is
// byte-oriented, not record-oriented.
type Reader struct {
	// remaining holds the not-yet-visited segments, ascending by
	// baseOffset, to continue into once current is exhausted.
	remaining []segmentMeta
	current   *segment
	logger    *zap.Logger
}

// NewReader scans partitionDir, locates the segment whose baseOffset is
// the largest not exceeding startOffset, and positions a read cursor at
// that offset's byte position. It returns (nil, nil) — a missing-value
// signal, not an error — when startOffset precedes every segment's base
// or the partition has no segments at all.
func NewReader(startOffset uint64, partitionDir string, maxBytes MaxBytes, logger *zap.Logger) (*Reader, error) {
	metas, err := scanSegments(partitionDir, maxBytes)
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		return nil, nil
	}

	idx := -1
	for i, m := range metas {
		if m.baseOffset > startOffset {
			break
		}
		idx = i
	}
	if idx == -1 {
		return nil, nil
	}

	log := namedLogger(logger, "reader")
	cur, err := metas[idx].open(log)
	if err != nil {
		return nil, err
	}

	entry, err := cur.index.ReadLogEntry(startOffset - metas[idx].baseOffset)
	if err != nil {
		cur.Close()
		return nil, err
	}
	if err := cur.Seek(int64(entry.Position)); err != nil {
		cur.Close()
		return nil, err
	}

	remaining := append([]segmentMeta(nil), metas[idx+1:]...)
	return &Reader{remaining: remaining, current: cur, logger: log}, nil
}

// Read pulls bytes from the current segment into buf, crossing into
// successive segments within the same call when the current one is
// exhausted — message framing doesn't align to buffer boundaries, so a
// caller's single Read may need to span several segment files. It stops
// once buf is full, no segments remain, or a non-recoverable I/O error
// occurs.
func (r *Reader) Read(buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.current.Read(buf[total:])
		total += n

		if err == nil {
			if n == 0 {
				break
			}
			continue
		}
		if err != io.EOF {
			return total, err
		}
		if len(r.remaining) == 0 {
			return total, io.EOF
		}

		if cerr := r.current.Close(); cerr != nil {
			return total, cerr
		}
		next := r.remaining[0]
		r.remaining = r.remaining[1:]
		seg, operr := next.open(r.logger)
		if operr != nil {
			return total, operr
		}
		if serr := seg.Seek(0); serr != nil {
			seg.Close()
			return total, serr
		}
		r.current = seg
	}
	return total, nil
}

// Close releases the current segment's file handles.
func (r *Reader) Close() error {
	return r.current.Close()
}
