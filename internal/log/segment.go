package log

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// messageHeaderWidth is the fixed framing prefix on every record written
// to a segment's log file: an 8-byte offset followed by a 4-byte
// position, both big-endian. There is no length prefix and no checksum —
// a record's length is only ever inferred from the index entry of the
// next record, or from EOF.
const messageHeaderWidth = 12

// segmentName returns the 20-digit zero-padded decimal stem shared by a
// segment's two files.
func segmentName(baseOffset uint64) string {
	return fmt.Sprintf("%020d", baseOffset)
}

// segmentMeta is the lazy, unopened handle to a segment: just enough to
// locate its files and reopen them on demand. Partition keeps every
// sealed segment in this form and only materializes a *segment when a
// Reader crosses into it or Partition.Read needs a record from it.
type segmentMeta struct {
	dir        string
	baseOffset uint64
	maxBytes   MaxBytes
}

func (m segmentMeta) logPath() string {
	return filepath.Join(m.dir, segmentName(m.baseOffset)+".log")
}

func (m segmentMeta) indexPath() string {
	return filepath.Join(m.dir, segmentName(m.baseOffset)+".index")
}

// open materializes this segment: opens (or creates) its log and index
// files and reconstructs position/nextOffset.
func (m segmentMeta) open(logger *zap.Logger) (*segment, error) {
	logFile, err := os.OpenFile(m.logPath(), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	readFile, err := os.OpenFile(m.logPath(), os.O_RDONLY, 0644)
	if err != nil {
		logFile.Close()
		return nil, err
	}

	indexFile, err := os.OpenFile(m.indexPath(), os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		logFile.Close()
		readFile.Close()
		return nil, err
	}
	idx, err := newIndex(indexFile, m.baseOffset, m.maxBytes.Index)
	if err != nil {
		logFile.Close()
		readFile.Close()
		indexFile.Close()
		return nil, err
	}

	fi, err := logFile.Stat()
	if err != nil {
		return nil, err
	}

	latest, err := idx.FindLatestEntry()
	if err != nil {
		return nil, err
	}
	nextOffset := latest.Offset
	if !idx.IsEmpty() {
		nextOffset = latest.Offset + 1
	}

	return &segment{
		meta:       m,
		logFile:    logFile,
		readFile:   readFile,
		writer:     bufio.NewWriter(logFile),
		index:      idx,
		position:   uint64(fi.Size()),
		nextOffset: nextOffset,
		logger:     namedLogger(logger, "segment"),
	}, nil
}

// segment is an opened, live segmentMeta: an append-only log file paired
// with its memory-mapped index. Exactly one write call must deliver
// exactly one framed message — the caller (Partition) is responsible for
// building the full header+payload buffer before calling Write once.
type segment struct {
	meta segmentMeta

	logFile  *os.File
	readFile *os.File
	writer   *bufio.Writer
	index    *index

	position   uint64
	nextOffset uint64

	logger *zap.Logger
}

// Write appends buf to the log in one call, advancing nextOffset by one
// and position by len(buf).
func (s *segment) Write(buf []byte) (int, error) {
	n, err := s.writer.Write(buf)
	if err != nil {
		return n, err
	}
	if err := s.writer.Flush(); err != nil {
		return n, err
	}
	s.position += uint64(n)
	s.nextOffset++
	return n, nil
}

// WriteIndexEntry records entry in this segment's index.
func (s *segment) WriteIndexEntry(entry Entry) error {
	return s.index.Write(entry)
}

// Read performs a sequential read from the segment's independent read
// handle, continuing from wherever the last Read or Seek left it.
func (s *segment) Read(buf []byte) (int, error) {
	return s.readFile.Read(buf)
}

// Seek positions the read handle at an absolute byte offset within the
// log file.
func (s *segment) Seek(pos int64) error {
	_, err := s.readFile.Seek(pos, 0)
	return err
}

// IsFull reports whether this segment has reached its log byte cap. A
// full check runs before each append, not before each record is sized, so
// a segment may overshoot max_log_bytes by up to one message — this is
// intentional; retention code must tolerate it.
func (s *segment) IsFull() bool {
	return s.position >= s.meta.maxBytes.Log
}

// CurrentPosition returns the byte position the next Write will land at.
func (s *segment) CurrentPosition() uint64 {
	return s.position
}

// NewestOffset returns the offset the next Write will receive.
func (s *segment) NewestOffset() uint64 {
	return s.nextOffset
}

// Size returns the current log file size in bytes.
func (s *segment) Size() uint64 {
	return s.position
}

// BaseOffset returns the offset this segment begins at.
func (s *segment) BaseOffset() uint64 {
	return s.meta.baseOffset
}

// Close flushes and closes the segment's file handles and index mapping.
func (s *segment) Close() error {
	if err := s.writer.Flush(); err != nil {
		return err
	}
	if err := s.index.Close(); err != nil {
		return err
	}
	if err := s.readFile.Close(); err != nil {
		return err
	}
	return s.logFile.Close()
}

// Remove closes the segment and deletes its log and index files from
// disk.
func (s *segment) Remove() error {
	if err := s.Close(); err != nil {
		return err
	}
	if err := os.Remove(s.meta.indexPath()); err != nil {
		return err
	}
	return os.Remove(s.meta.logPath())
}
