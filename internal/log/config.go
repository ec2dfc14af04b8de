package log

import (
	"encoding/binary"

	"go.uber.org/zap"
)

// enc is the byte order for every on-disk integer in this package:
// message headers, index entries, all of it big-endian.
var enc = binary.BigEndian

// MaxBytes bounds a segment's two files: Log is the rollover threshold
// for the log file, Index is the fixed size the index file is pre-sized
// to at creation.
type MaxBytes struct {
	Log   uint64
	Index uint64
}

// defaultMaxBytes mirrors the teacher's NewLog default of 1024 bytes for
// store and index alike when a caller doesn't specify either.
var defaultMaxBytes = MaxBytes{Log: 1024, Index: 1024}

func (m MaxBytes) withDefaults() MaxBytes {
	if m.Log == 0 {
		m.Log = defaultMaxBytes.Log
	}
	if m.Index == 0 {
		m.Index = defaultMaxBytes.Index
	}
	return m
}

func namedLogger(l *zap.Logger, name string) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return l.Named(name)
}
