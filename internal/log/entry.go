package log

import "fmt"

// entryWidth is the fixed on-disk size of a RelativeEntry: a 4-byte
// offset delta followed by a 4-byte position, both big-endian.
const entryWidth = 8

// Entry is the absolute, in-memory form of an index record: a logical
// offset paired with the byte position of its message inside a segment's
// log file.
type Entry struct {
	Offset   uint64
	Position uint64
}

// RelativeEntry is the on-disk form of an Entry. Offset is stored as a
// delta from the owning segment's base offset so that both fields fit in
// 4 bytes, halving the index's footprint compared to storing the
// absolute offset.
type RelativeEntry struct {
	OffsetDelta uint32
	Position    uint32
}

// toRelative converts an absolute entry into its on-disk form relative to
// base. It fails if the entry doesn't belong to a segment starting at
// base, or if either field would truncate.
func toRelative(e Entry, base uint64) (RelativeEntry, error) {
	if e.Offset < base {
		return RelativeEntry{}, fmt.Errorf("log: entry offset %d precedes base offset %d", e.Offset, base)
	}
	delta := e.Offset - base
	if delta > uint64(^uint32(0)) {
		return RelativeEntry{}, fmt.Errorf("log: offset delta %d exceeds a segment's capacity", delta)
	}
	if e.Position > uint64(^uint32(0)) {
		return RelativeEntry{}, fmt.Errorf("log: position %d exceeds a segment's capacity", e.Position)
	}
	return RelativeEntry{OffsetDelta: uint32(delta), Position: uint32(e.Position)}, nil
}

// fromRelative is the inverse of toRelative: lossless given the same base.
func fromRelative(r RelativeEntry, base uint64) Entry {
	return Entry{Offset: base + uint64(r.OffsetDelta), Position: uint64(r.Position)}
}
