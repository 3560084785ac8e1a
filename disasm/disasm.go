// Package disasm drives streaming disassembly of 8086 machine code.
//
// A Disassembler owns a bounded window over the byte source: it refills
// the window in chunks, decodes instructions from the window start, and
// carries a truncated tail over to the next refill. Output is therefore
// independent of how the source splits its bytes across reads, and a
// stream of any length decodes in constant memory.
package disasm

import (
	"fmt"
	"io"

	"github.com/javiercbk/8086/insts"
)

const (
	// DefaultBufferSize is the window capacity Run uses unless
	// WithBufferSize overrides it.
	DefaultBufferSize = 4096

	// MinBufferSize is the smallest usable window capacity. It must
	// exceed the longest 8086 encoding (6 bytes) or a carried tail
	// could leave no room to complete an instruction.
	MinBufferSize = 16
)

// prologue opens every listing and fixes the operand width the text is
// read under.
const prologue = "bits 16\n\n"

// Stats summarizes a completed run.
type Stats struct {
	// Instructions is the number of instructions decoded and written.
	Instructions int64

	// Bytes is the number of instruction-stream bytes consumed.
	Bytes int64
}

// TruncatedError reports a source that was exhausted while the bytes on
// hand still began an instruction encoding.
type TruncatedError struct {
	// Offset is the absolute stream offset of the first undecoded byte.
	Offset int64

	// Leftover is the number of trailing bytes that decode to nothing.
	Leftover int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated instruction at offset %d: source ended with %d undecoded byte(s)",
		e.Offset, e.Leftover)
}

// Disassembler streams raw 8086 machine code into assembly text.
type Disassembler struct {
	decoder *insts.Decoder
	bufSize int
}

// Option is a functional option for configuring the Disassembler.
type Option func(*Disassembler)

// WithBufferSize sets the window capacity used by Run. Values below
// MinBufferSize are raised to it.
func WithBufferSize(n int) Option {
	return func(d *Disassembler) {
		if n < MinBufferSize {
			n = MinBufferSize
		}
		d.bufSize = n
	}
}

// New creates a Disassembler.
func New(opts ...Option) *Disassembler {
	d := &Disassembler{
		decoder: insts.NewDecoder(),
		bufSize: DefaultBufferSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Run decodes src to completion, writing the listing prologue and then
// one line per instruction to sink as soon as it decodes. On failure
// the lines already written stand, and the returned error carries the
// absolute stream offset of the failure. A source that ends inside an
// instruction encoding fails with a *TruncatedError.
func (d *Disassembler) Run(src io.Reader, sink io.Writer) (Stats, error) {
	var stats Stats

	if _, err := io.WriteString(sink, prologue); err != nil {
		return stats, fmt.Errorf("failed to write listing prologue: %w", err)
	}

	w := newWindow(d.bufSize)
	offset := int64(0) // absolute stream offset of the window's first byte
	exhausted := false

	for {
		// Decode every instruction the window can resolve.
		for w.len() > 0 {
			res := d.decoder.Decode(w.bytes())
			if res.Err != nil {
				return stats, fmt.Errorf("offset %d: %w", offset, res.Err)
			}
			if res.NeedMore {
				break
			}

			if _, err := io.WriteString(sink, res.Inst.String()+"\n"); err != nil {
				return stats, fmt.Errorf("failed to write listing line: %w", err)
			}
			w.consume(res.Size)
			offset += int64(res.Size)
			stats.Instructions++
			stats.Bytes += int64(res.Size)
		}

		if exhausted {
			if w.len() > 0 {
				return stats, &TruncatedError{Offset: offset, Leftover: w.len()}
			}
			return stats, nil
		}

		_, err := w.fill(src)
		if err == io.EOF {
			// The appended bytes, if any, still decode on the next pass.
			exhausted = true
		} else if err != nil {
			return stats, fmt.Errorf("failed to read instruction stream at offset %d: %w",
				offset+int64(w.len()), err)
		}
	}
}
