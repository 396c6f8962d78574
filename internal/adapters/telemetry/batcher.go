// Package telemetry records task spans with OpenTelemetry and forwards them to the build log renderer.
package telemetry

import (
	"bytes"
	"sync"
	"time"

	"go.trai.ch/droidnet/internal/core/domain"
)

const (
	// DefaultChunkSize is the buffered byte count that triggers an early flush.
	DefaultChunkSize = 4096
	// DefaultFlushDelay is how long output may sit in the buffer before it is flushed.
	DefaultFlushDelay = 50 * time.Millisecond
)

// LogBatcher coalesces the output of one task process into chunks for the renderer.
//
// A size-triggered flush cuts at the last newline so msbuild and gradle lines stay whole;
// the trailing partial line waits for more output. A delay-triggered flush sends everything,
// which keeps progress lines without a newline visible. LogBatcher is safe for concurrent use.
type LogBatcher struct {
	chunkSize int
	delay     time.Duration
	emit      func([]byte)

	mu     sync.Mutex
	buf    bytes.Buffer
	timer  *time.Timer
	closed bool
}

// NewLogBatcher returns a LogBatcher handing chunks to emit. Non-positive values select
// DefaultChunkSize and DefaultFlushDelay.
func NewLogBatcher(chunkSize int, delay time.Duration, emit func([]byte)) *LogBatcher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if delay <= 0 {
		delay = DefaultFlushDelay
	}
	return &LogBatcher{chunkSize: chunkSize, delay: delay, emit: emit}
}

// Write buffers p. The delay timer is armed by the first write into an empty buffer.
func (b *LogBatcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, domain.ErrLogStreamClosed
	}

	wasEmpty := b.buf.Len() == 0
	n, _ := b.buf.Write(p)

	if b.buf.Len() >= b.chunkSize {
		b.emitLinesLocked()
	}
	if wasEmpty && b.buf.Len() > 0 {
		b.armLocked()
	}
	return n, nil
}

// Flush emits everything buffered, including a partial line.
func (b *LogBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.emitAllLocked()
	}
}

// Close emits what is left and rejects later writes. Close is idempotent.
func (b *LogBatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
	}
	b.emitAllLocked()
	return nil
}

func (b *LogBatcher) armLocked() {
	if b.timer == nil {
		b.timer = time.AfterFunc(b.delay, b.Flush)
		return
	}
	b.timer.Reset(b.delay)
}

// emitLinesLocked emits the buffer up to and including its last newline.
// Without any newline the whole buffer goes out so a single huge line cannot grow unbounded.
func (b *LogBatcher) emitLinesLocked() {
	data := b.buf.Bytes()
	cut := bytes.LastIndexByte(data, '\n') + 1
	if cut == 0 {
		b.emitAllLocked()
		return
	}

	chunk := bytes.Clone(data[:cut])
	rest := bytes.Clone(data[cut:])
	b.buf.Reset()
	b.buf.Write(rest)
	b.send(chunk)
}

func (b *LogBatcher) emitAllLocked() {
	if b.buf.Len() == 0 {
		return
	}
	chunk := bytes.Clone(b.buf.Bytes())
	b.buf.Reset()
	b.send(chunk)
}

// send runs under mu so chunks reach the renderer in write order.
func (b *LogBatcher) send(chunk []byte) {
	if b.emit != nil {
		b.emit(chunk)
	}
}
