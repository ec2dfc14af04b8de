package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Partition is a directory of segments forming one append-only,
// durably-ordered byte stream. Exactly one segment is active (writable,
// tail); the rest are sealed (append-closed, read-only to this package).
// A Partition is the sole writer for its directory; its methods are
// serialized by an internal mutex. Concurrent Readers are independent
// and hold their own file handles.
type Partition struct {
	mu       sync.Mutex
	dir      string
	maxBytes MaxBytes

	active *segment
	// sealed holds every non-active segment, sorted ascending by
	// baseOffset. Rotation always appends a new highest base offset, so
	// this never needs re-sorting after the initial scan.
	sealed []segmentMeta

	logger *zap.Logger
}

// scanSegments walks dir for valid segment log files, skipping
// directories, non-.log files, and any stem that doesn't parse as a
// decimal offset — all non-fatal, per spec: index files, temp files, and
// unrecognized names are simply ignored. The result is sorted ascending
// by baseOffset.
func scanSegments(dir string, maxBytes MaxBytes) ([]segmentMeta, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var metas []segmentMeta
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ".log" {
			continue
		}
		stem := name[:len(name)-len(".log")]
		base, err := strconv.ParseUint(stem, 10, 64)
		if err != nil {
			continue
		}
		metas = append(metas, segmentMeta{dir: dir, baseOffset: base, maxBytes: maxBytes})
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].baseOffset < metas[j].baseOffset })
	return metas, nil
}

// Create opens the partition directory parentDir/name, creating it if
// needed. An empty directory gets a single active segment starting at
// offset 0; segments already in the directory are reloaded as Load does.
func Create(name, parentDir string, maxBytes MaxBytes, logger *zap.Logger) (*Partition, error) {
	dir := filepath.Join(parentDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return openDir(dir, maxBytes, logger)
}

// Load reconstructs a partition from an existing directory: it scans for
// segments, promotes the one with the highest baseOffset to active, and
// keeps the rest sealed. A directory with no recognizable segments gets a
// fresh active segment at offset 0, same as Create.
func Load(partitionDir string, maxBytes MaxBytes, logger *zap.Logger) (*Partition, error) {
	return openDir(partitionDir, maxBytes, logger)
}

func openDir(dir string, maxBytes MaxBytes, logger *zap.Logger) (*Partition, error) {
	mb := maxBytes.withDefaults()
	log := namedLogger(logger, "partition")

	metas, err := scanSegments(dir, mb)
	if err != nil {
		return nil, err
	}

	p := &Partition{dir: dir, maxBytes: mb, logger: log}
	if len(metas) == 0 {
		active, err := (segmentMeta{dir: dir, baseOffset: 0, maxBytes: mb}).open(log)
		if err != nil {
			return nil, err
		}
		p.active = active
		return p, nil
	}

	highest := metas[len(metas)-1]
	p.sealed = metas[:len(metas)-1]
	active, err := highest.open(log)
	if err != nil {
		return nil, err
	}
	p.active = active
	log.Info("loaded partition", zap.String("dir", dir), zap.Int("sealed_segments", len(p.sealed)),
		zap.Uint64("active_base_offset", active.BaseOffset()), zap.Uint64("next_offset", active.NewestOffset()))
	return p, nil
}

// Append writes payload to the active segment, rotating first if it's
// already full. It returns the offset the *next* append will receive —
// the offset the just-written record got is one less.
func (p *Partition) Append(payload []byte) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active.IsFull() {
		if err := p.rotate(); err != nil {
			return 0, err
		}
	}

	offset := p.active.NewestOffset()
	position := p.active.CurrentPosition()

	buf, err := frameMessage(offset, position, payload)
	if err != nil {
		return 0, err
	}
	if _, err := p.active.Write(buf); err != nil {
		return 0, err
	}
	if err := p.active.WriteIndexEntry(Entry{Offset: offset, Position: position}); err != nil {
		return 0, err
	}
	return p.active.NewestOffset(), nil
}

// Read returns the payload of the record at offset, stripped of its
// framing header. It's a random-access counterpart to Reader, for callers
// that want one record rather than a byte stream — the HTTP consume
// handler is the only caller today.
func (p *Partition) Read(offset uint64) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if offset >= p.active.NewestOffset() {
		return nil, ErrOffsetOutOfRange{Offset: offset}
	}

	meta := p.active.meta
	seg := p.active
	if offset < p.active.BaseOffset() {
		found := false
		for i := len(p.sealed) - 1; i >= 0; i-- {
			if p.sealed[i].baseOffset <= offset {
				meta = p.sealed[i]
				found = true
				break
			}
		}
		if !found {
			return nil, ErrOffsetOutOfRange{Offset: offset}
		}
		s, err := meta.open(p.logger)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		seg = s
	}

	rel := offset - meta.baseOffset
	entry, err := seg.index.ReadLogEntry(rel)
	if err != nil {
		return nil, err
	}

	// the entry one past this one, if it was actually written (not just
	// in-bounds), bounds the record; otherwise the record runs to
	// whatever was written to the segment so far.
	end := seg.CurrentPosition()
	if next, err := seg.index.ReadLogEntry(rel + 1); err == nil && next.Offset == offset+1 {
		end = next.Position
	}
	if end < entry.Position+messageHeaderWidth {
		return nil, fmt.Errorf("log: corrupt record at offset %d", offset)
	}

	buf := make([]byte, end-entry.Position)
	if _, err := seg.readFile.ReadAt(buf, int64(entry.Position)); err != nil {
		return nil, err
	}
	return buf[messageHeaderWidth:], nil
}

// rotate seals the active segment and opens a fresh one whose base offset
// is the sealed segment's terminal next-offset, keeping offsets
// contiguous across segment boundaries.
func (p *Partition) rotate() error {
	outgoing := p.active
	nextBase := outgoing.NewestOffset()

	if err := outgoing.Close(); err != nil {
		return err
	}
	p.sealed = append(p.sealed, outgoing.meta)

	active, err := (segmentMeta{dir: p.dir, baseOffset: nextBase, maxBytes: p.maxBytes}).open(p.logger)
	if err != nil {
		return err
	}
	p.active = active
	p.logger.Debug("rotated segment", zap.Uint64("base_offset", nextBase))
	return nil
}

// Dir returns the partition's directory.
func (p *Partition) Dir() string {
	return p.dir
}

// MaxBytes returns the segment size caps this partition was opened with.
func (p *Partition) MaxBytes() MaxBytes {
	return p.maxBytes
}

// LowestOffset returns the base offset of the oldest segment.
func (p *Partition) LowestOffset() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sealed) > 0 {
		return p.sealed[0].baseOffset
	}
	return p.active.BaseOffset()
}

// HighestOffset returns the offset of the most recently appended record,
// or 0 for an empty partition.
func (p *Partition) HighestOffset() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := p.active.NewestOffset()
	if next == 0 {
		return 0
	}
	return next - 1
}

// Close closes the active segment. Sealed segments are lazy handles with
// no open file descriptors, so there's nothing to close for them.
func (p *Partition) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active.Close()
}
