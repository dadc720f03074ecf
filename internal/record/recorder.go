package record

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Garsondee/Nightwood/internal/sim"
)

// ErrVersion is returned when a stream was written by an incompatible version.
var ErrVersion = errors.New("unsupported replay version")

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Recorder writes a header followed by a stream of frames. Frames are
// written back to back; msgpack values are self-delimiting.
type Recorder struct {
	enc     *msgpack.Encoder
	session string
	stride  int
	frames  int
	last    int
}

// NewRecorder writes h to w. stride > 1 keeps only every stride-th tick,
// though ticks that carry events are always kept.
func NewRecorder(w io.Writer, h Header, stride int) (*Recorder, error) {
	if stride < 1 {
		stride = 1
	}
	if h.Version == 0 {
		h.Version = FormatVersion
	}
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(&h); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &Recorder{enc: enc, session: h.SessionID, stride: stride, last: -1}, nil
}

// Record writes r unless the stride skips it. Repeated results for the same
// tick, as returned by a frozen session, are written once.
func (rec *Recorder) Record(r sim.TickResult) error {
	if r.Tick == rec.last && len(r.Events) == 0 {
		return nil
	}
	if r.Tick%rec.stride != 0 && len(r.Events) == 0 && !r.Flags.Ended() {
		return nil
	}
	f := FromTick("", r)
	if err := rec.enc.Encode(&f); err != nil {
		return fmt.Errorf("write frame %d: %w", r.Tick, err)
	}
	rec.last = r.Tick
	rec.frames++
	return nil
}

// Frames returns how many frames were written.
func (rec *Recorder) Frames() int {
	return rec.frames
}

// SessionID returns the id from the header.
func (rec *Recorder) SessionID() string {
	return rec.session
}

// Reader replays a stream written by Recorder.
type Reader struct {
	dec    *msgpack.Decoder
	header Header
}

// NewReader reads and checks the header.
func NewReader(r io.Reader) (*Reader, error) {
	dec := msgpack.NewDecoder(r)
	var h Header
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if h.Version != FormatVersion {
		return nil, fmt.Errorf("version %d: %w", h.Version, ErrVersion)
	}
	return &Reader{dec: dec, header: h}, nil
}

// Header returns the stream header.
func (rd *Reader) Header() Header {
	return rd.header
}

// Next returns the next frame, or io.EOF after the last one.
func (rd *Reader) Next() (Frame, error) {
	var f Frame
	if err := rd.dec.Decode(&f); err != nil {
		return Frame{}, err
	}
	f.SessionID = rd.header.SessionID
	return f, nil
}

// ReadAll drains the stream.
func (rd *Reader) ReadAll() ([]Frame, error) {
	var out []Frame
	for {
		f, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
}
