// Package protocol implements the length-prefixed binary wire format.
//
// Request frame (all integers big-endian):
//
//	u32 argc
//	argc x (u32 len, len bytes of UTF-8)
//
// Response frame:
//
//	u32 total_len   (4 + payload length)
//	i32 status      (0 OK, 1 NOT_FOUND, -1 ERR)
//	payload
//
// Parsing is incremental: when a buffer does not yet hold a full frame the
// parser returns *NotEnoughBytesError, and the caller reads more and
// retries with the grown buffer.
package protocol
