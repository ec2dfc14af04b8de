package log

import (
	"fmt"
	"os"

	"github.com/tysonmote/gommap"
)

// index is a memory-mapped file of fixed-width RelativeEntry slots, one
// slot per relative offset within a segment: slot k holds the entry for
// absolute offset baseOffset+k. Writes are a memory store, reads a memory
// load; the kernel owns flushing the dirty pages back to disk.
type index struct {
	file       *os.File
	mmap       gommap.MMap
	baseOffset uint64
	// capacity is the fixed size of the mapped region in bytes, set once
	// at creation and unchanged until the segment is destroyed.
	capacity uint64
}

// newIndex opens or creates f as an index file for baseOffset, growing it
// to maxBytes on first creation. maxBytes must be a multiple of entryWidth
// and at least 16 bytes (two slots, enough to disambiguate IsEmpty).
func newIndex(f *os.File, baseOffset uint64, maxBytes uint64) (*index, error) {
	if maxBytes%entryWidth != 0 {
		return nil, fmt.Errorf("log: index max bytes %d is not a multiple of %d", maxBytes, entryWidth)
	}
	if maxBytes < 16 {
		return nil, fmt.Errorf("log: index max bytes %d is below the 16-byte minimum", maxBytes)
	}

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	// grow the file to its full capacity before mapping; the file can't be
	// resized once mapped. A file shorter than maxBytes means this is a
	// fresh index and the growth pads it with zeros (unwritten slots).
	if uint64(fi.Size()) < maxBytes {
		if err := f.Truncate(int64(maxBytes)); err != nil {
			return nil, err
		}
	}

	mmap, err := gommap.Map(f.Fd(), gommap.PROT_READ|gommap.PROT_WRITE, gommap.MAP_SHARED)
	if err != nil {
		return nil, err
	}

	return &index{file: f, mmap: mmap, baseOffset: baseOffset, capacity: maxBytes}, nil
}

// Name returns the path of the underlying index file.
func (i *index) Name() string {
	return i.file.Name()
}

// IsEmpty reports whether the first two slots (16 bytes) are all zero.
// This is the only signal available for distinguishing a fresh index from
// one whose relative-offset-0 slot legitimately holds {0, 0} — which is
// the normal case for the first record of every segment.
func (i *index) IsEmpty() bool {
	for _, b := range i.mmap[:16] {
		if b != 0 {
			return false
		}
	}
	return true
}

// Write stores entry at slot (entry.Offset - baseOffset). Writes are
// positioned by relative offset, not appended sequentially, so a sparse
// prefix of unwritten slots is possible.
func (i *index) Write(entry Entry) error {
	rel, err := toRelative(entry, i.baseOffset)
	if err != nil {
		return err
	}
	pos := uint64(rel.OffsetDelta) * entryWidth
	if pos+entryWidth > i.capacity {
		return ErrIndexFull
	}
	enc.PutUint32(i.mmap[pos:pos+4], rel.OffsetDelta)
	enc.PutUint32(i.mmap[pos+4:pos+entryWidth], rel.Position)
	return nil
}

// ReadAt decodes the 8-byte slot beginning at byteOffset into an absolute
// Entry.
func (i *index) ReadAt(byteOffset uint64) (Entry, error) {
	if byteOffset+entryWidth > i.capacity {
		return Entry{}, ErrSlotOutOfRange
	}
	rel := RelativeEntry{
		OffsetDelta: enc.Uint32(i.mmap[byteOffset : byteOffset+4]),
		Position:    enc.Uint32(i.mmap[byteOffset+4 : byteOffset+entryWidth]),
	}
	return fromRelative(rel, i.baseOffset), nil
}

// ReadLogEntry is a convenience for ReadAt(logicalOffset * entryWidth),
// i.e. reading the slot for a given relative offset.
func (i *index) ReadLogEntry(relativeOffset uint64) (Entry, error) {
	return i.ReadAt(relativeOffset * entryWidth)
}

// FindLatestEntry scans every slot and returns the one with the greatest
// stored absolute offset. A naive linear scan is acceptable for
// source-sized indexes; a bounded binary search over the fixed-width
// slots is a valid optimization this implementation doesn't bother with.
func (i *index) FindLatestEntry() (Entry, error) {
	slots := i.capacity / entryWidth
	latest := Entry{Offset: 0, Position: 0}
	for k := uint64(0); k < slots; k++ {
		entry, err := i.ReadLogEntry(k)
		if err != nil {
			return Entry{}, err
		}
		if entry.Offset >= latest.Offset {
			latest = entry
		}
	}
	return latest, nil
}

// Close flushes the mapped region and the file to disk and releases the
// mapping. Unlike a sequentially-filled index, this index's file size is
// the fixed capacity for its whole life, so Close never truncates it.
func (i *index) Close() error {
	if err := i.mmap.Sync(gommap.MS_SYNC); err != nil {
		return err
	}
	if err := i.file.Sync(); err != nil {
		return err
	}
	if err := i.mmap.UnsafeUnmap(); err != nil {
		return err
	}
	return i.file.Close()
}
