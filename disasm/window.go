package disasm

import "io"

// window is a bounded byte queue over the instruction stream. Refills
// append after the unconsumed suffix, decoding consumes from the front,
// and compaction slides the suffix back to the start without reordering
// or dropping bytes.
type window struct {
	buf   []byte
	start int // index of the first unconsumed byte
	end   int // index one past the last buffered byte
}

func newWindow(capacity int) *window {
	return &window{buf: make([]byte, capacity)}
}

// bytes returns the unconsumed byte range.
func (w *window) bytes() []byte {
	return w.buf[w.start:w.end]
}

// len returns the number of unconsumed bytes.
func (w *window) len() int {
	return w.end - w.start
}

// consume advances the front of the queue past n decoded bytes.
func (w *window) consume(n int) {
	w.start += n
}

// compact slides the unconsumed suffix to the start of the buffer.
func (w *window) compact() {
	if w.start == 0 {
		return
	}
	n := copy(w.buf, w.buf[w.start:w.end])
	w.start = 0
	w.end = n
}

// fill compacts the queue and appends fresh bytes from r into the free
// space. It reports the number of bytes appended and r's error verbatim.
func (w *window) fill(r io.Reader) (int, error) {
	w.compact()
	n, err := r.Read(w.buf[w.end:])
	w.end += n
	return n, err
}
