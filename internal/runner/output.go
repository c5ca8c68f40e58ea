package runner

import "bytes"

const truncationMarker = "\n[output truncated]"

// limitWriter captures process output up to a byte cap, keeping the head and
// dropping the rest. It bounds memory for chatty steps.
type limitWriter struct {
	buf       bytes.Buffer
	remaining int64
	truncated bool
}

func newLimitWriter(limit int64) *limitWriter {
	return &limitWriter{remaining: limit}
}

// Write implements io.Writer. Overflow bytes are silently consumed so the
// child process never blocks on a full pipe.
func (w *limitWriter) Write(p []byte) (int, error) {
	if w.remaining <= 0 {
		w.truncated = true
		return len(p), nil
	}
	keep := int64(len(p))
	if keep > w.remaining {
		keep = w.remaining
		w.truncated = true
	}
	w.buf.Write(p[:keep])
	w.remaining -= keep
	return len(p), nil
}

func (w *limitWriter) String() string {
	if w.truncated {
		return w.buf.String() + truncationMarker
	}
	return w.buf.String()
}
