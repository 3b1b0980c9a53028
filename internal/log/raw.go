package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger records telemetry lines exactly as they were received.
type RawLogger interface {
	Log(line string)
}

type rawLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewRaw returns a RawLogger writing to w, or a no-op logger when w is nil.
func NewRaw(w io.Writer) RawLogger {
	if w == nil {
		return nopRaw{}
	}
	return &rawLogger{w: w}
}

func (r *rawLogger) Log(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "%s %s\n", time.Now().Format("15:04:05.000000"), line)
}

type nopRaw struct{}

func (nopRaw) Log(string) {}
