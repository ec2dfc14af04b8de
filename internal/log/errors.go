package log

import (
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrIndexFull is returned when an index write targets a slot beyond the
// mapped range. It signals a misconfiguration (a log byte cap much larger
// than its index cap) and is fatal for the segment.
var ErrIndexFull = statusError(codes.ResourceExhausted, "log: index has no room for another entry")

// ErrSlotOutOfRange is returned when an index read targets bytes beyond
// the mapped range. Spec-wise this is a precondition violation, not an
// I/O failure, but it is surfaced with the same status-shaped error the
// rest of this package uses.
var ErrSlotOutOfRange = statusError(codes.OutOfRange, "log: index slot is outside the mapped range")

// ErrOffsetOutOfRange is returned by Partition.Read (and anything built on
// it) when the requested offset isn't covered by any known segment.
type ErrOffsetOutOfRange struct {
	Offset uint64
}

func (e ErrOffsetOutOfRange) GRPCStatus() *status.Status {
	st := status.New(codes.NotFound, fmt.Sprintf("offset out of range: %d", e.Offset))
	msg := fmt.Sprintf("the requested offset %d is outside the partition's range", e.Offset)
	std, err := st.WithDetails(&errdetails.LocalizedMessage{Locale: "en-US", Message: msg})
	if err != nil {
		return st
	}
	return std
}

func (e ErrOffsetOutOfRange) Error() string {
	return e.GRPCStatus().Err().Error()
}

// statusError builds a plain status-shaped error without the structured
// details ErrOffsetOutOfRange attaches; used for the two index failure
// kinds above, which have no request-specific payload worth localizing.
func statusError(code codes.Code, msg string) error {
	return status.New(code, msg).Err()
}
