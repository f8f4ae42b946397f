package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxArgs bounds both the argument count of a request and the length of a
// single argument or payload (32 MiB).
const MaxArgs = 32 << 20

// headerLen is the size of one length or count prefix.
const headerLen = 4

var (
	// ErrProtocol marks a malformed or oversized frame. It is fatal for the
	// connection that produced it.
	ErrProtocol = errors.New("protocol: protocol error")
)

// NotEnoughBytesError reports that a frame is incomplete. Want is the
// buffer length needed to finish decoding the element being read, Got is
// the buffer length available.
type NotEnoughBytesError struct {
	Want int
	Got  int
}

func (e *NotEnoughBytesError) Error() string {
	return fmt.Sprintf("protocol: not enough bytes (want: %d, got: %d)", e.Want, e.Got)
}

// Missing returns how many more bytes are needed.
func (e *NotEnoughBytesError) Missing() int {
	return e.Want - e.Got
}

// IsIncomplete reports whether err signals that more input is needed.
func IsIncomplete(err error) bool {
	var nb *NotEnoughBytesError
	return errors.As(err, &nb)
}

// Status is the response status code.
type Status int32

// Response status codes.
const (
	StatusOK       Status = 0
	StatusNotFound Status = 1
	StatusErr      Status = -1
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusErr:
		return "ERR"
	default:
		return fmt.Sprintf("STATUS(%d)", int32(s))
	}
}

// Response is a decoded response frame.
type Response struct {
	Status  Status
	Payload []byte
}

// ParseRequest decodes one request frame from the front of buf. On success
// it returns the arguments and the number of bytes the frame occupied.
func ParseRequest(buf []byte) ([]string, int, error) {
	argc, err := readU32(buf, 0)
	if err != nil {
		return nil, 0, err
	}
	if argc > MaxArgs {
		return nil, 0, fmt.Errorf("%w: argument count %d exceeds limit %d", ErrProtocol, argc, MaxArgs)
	}
	cursor := headerLen

	// Each argument needs at least a length prefix; do not trust argc for
	// the allocation.
	args := make([]string, 0, min(int(argc), (len(buf)-cursor)/headerLen))
	for i := uint32(0); i < argc; i++ {
		n, err := readU32(buf, cursor)
		if err != nil {
			return nil, 0, err
		}
		if n > MaxArgs {
			return nil, 0, fmt.Errorf("%w: argument length %d exceeds limit %d", ErrProtocol, n, MaxArgs)
		}
		cursor += headerLen

		end := cursor + int(n)
		if len(buf) < end {
			return nil, 0, &NotEnoughBytesError{Want: end, Got: len(buf)}
		}
		raw := buf[cursor:end]
		if !utf8.Valid(raw) {
			return nil, 0, fmt.Errorf("%w: argument %d is not valid UTF-8", ErrProtocol, i)
		}
		args = append(args, string(raw))
		cursor = end
	}
	return args, cursor, nil
}

// AppendRequest appends the encoding of args to dst.
func AppendRequest(dst []byte, args ...string) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(args)))
	for _, a := range args {
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(a)))
		dst = append(dst, a...)
	}
	return dst
}

// WriteRequest encodes args and writes the frame to w.
func WriteRequest(w io.Writer, args ...string) error {
	if len(args) > MaxArgs {
		return fmt.Errorf("%w: argument count %d exceeds limit %d", ErrProtocol, len(args), MaxArgs)
	}
	for _, a := range args {
		if len(a) > MaxArgs {
			return fmt.Errorf("%w: argument length %d exceeds limit %d", ErrProtocol, len(a), MaxArgs)
		}
	}
	_, err := w.Write(AppendRequest(nil, args...))
	return err
}

// AppendResponse appends a response frame to dst.
func AppendResponse(dst []byte, status Status, payload []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(headerLen+len(payload)))
	dst = binary.BigEndian.AppendUint32(dst, uint32(status))
	return append(dst, payload...)
}

// ParseResponse decodes one response frame from the front of buf.
func ParseResponse(buf []byte) (Response, int, error) {
	total, err := readU32(buf, 0)
	if err != nil {
		return Response{}, 0, err
	}
	if total < headerLen || total > MaxArgs+headerLen {
		return Response{}, 0, fmt.Errorf("%w: response length %d out of range", ErrProtocol, total)
	}
	end := headerLen + int(total)
	if len(buf) < end {
		return Response{}, 0, &NotEnoughBytesError{Want: end, Got: len(buf)}
	}
	status := Status(int32(binary.BigEndian.Uint32(buf[headerLen:])))
	payload := make([]byte, end-2*headerLen)
	copy(payload, buf[2*headerLen:end])
	return Response{Status: status, Payload: payload}, end, nil
}

// ReadResponse reads exactly one response frame from r.
func ReadResponse(r io.Reader) (Response, error) {
	var hdr [2 * headerLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Response{}, err
	}
	total := binary.BigEndian.Uint32(hdr[:headerLen])
	if total < headerLen || total > MaxArgs+headerLen {
		return Response{}, fmt.Errorf("%w: response length %d out of range", ErrProtocol, total)
	}
	payload := make([]byte, total-headerLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Response{}, err
	}
	return Response{
		Status:  Status(int32(binary.BigEndian.Uint32(hdr[headerLen:]))),
		Payload: payload,
	}, nil
}

func readU32(buf []byte, at int) (uint32, error) {
	if len(buf) < at+headerLen {
		return 0, &NotEnoughBytesError{Want: at + headerLen, Got: len(buf)}
	}
	return binary.BigEndian.Uint32(buf[at:]), nil
}
