// Package diaglog provides the diagnostic log writer. Game code logs
// synchronously through zap; the bytes are handed to a background goroutine
// that batches them into the real sink, so a slow disk or pipe never stalls
// command execution.
package diaglog

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap/zapcore"
)

// ErrStopTimeout is returned by Stop when the drain did not finish in time.
var ErrStopTimeout = errors.New("diaglog: drain timed out")

// Options tune a Writer.
type Options struct {
	// QueueSize is the number of entries that may wait for the writer
	// goroutine. Entries beyond it are dropped.
	QueueSize int
	// BufferSize is the batch size in bytes that triggers an early flush.
	BufferSize int
	// FlushInterval is the longest an entry waits in a batch.
	FlushInterval time.Duration
}

func (o Options) normalized() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 1024
	}
	if o.BufferSize <= 0 {
		o.BufferSize = 64 * 1024
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = time.Second
	}
	return o
}

// Writer is a non-blocking zapcore.WriteSyncer.
type Writer struct {
	sink io.Writer
	opts Options

	queue   chan []byte
	flushes chan chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	dropped atomic.Uint64
	written atomic.Uint64
	errors  atomic.Uint64
}

var _ zapcore.WriteSyncer = (*Writer)(nil)

// NewWriter starts a writer goroutine in front of sink.
func NewWriter(sink io.Writer, opts Options) *Writer {
	if sink == nil {
		panic("diaglog: nil sink")
	}
	opts = opts.normalized()
	w := &Writer{
		sink:    sink,
		opts:    opts,
		queue:   make(chan []byte, opts.QueueSize),
		flushes: make(chan chan struct{}),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

// Write queues a copy of p. It never blocks; when the queue is full or the
// writer is stopped the entry is dropped and counted.
func (w *Writer) Write(p []byte) (int, error) {
	select {
	case <-w.done:
		w.dropped.Add(1)
		return len(p), nil
	default:
	}

	entry := make([]byte, len(p))
	copy(entry, p)
	select {
	case w.queue <- entry:
	default:
		w.dropped.Add(1)
	}
	return len(p), nil
}

// Sync asks the writer goroutine to flush everything queued so far and
// waits for it, or returns at once if the writer is stopped.
func (w *Writer) Sync() error {
	ack := make(chan struct{})
	select {
	case w.flushes <- ack:
	case <-w.stopped:
		return nil
	}
	select {
	case <-ack:
	case <-w.stopped:
	}
	return nil
}

// Dropped returns how many entries were discarded.
func (w *Writer) Dropped() uint64 { return w.dropped.Load() }

// Written returns how many entries reached the sink.
func (w *Writer) Written() uint64 { return w.written.Load() }

// SinkErrors returns how many flushes the sink rejected.
func (w *Writer) SinkErrors() uint64 { return w.errors.Load() }

// Stop drains the queue into the sink and stops the goroutine. It waits at
// most timeout for the drain.
func (w *Writer) Stop(timeout time.Duration) error {
	w.once.Do(func() { close(w.done) })
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-w.stopped:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

func (w *Writer) run() {
	defer close(w.stopped)

	ticker := time.NewTicker(w.opts.FlushInterval)
	defer ticker.Stop()

	var batch bytes.Buffer
	entries := 0
	flush := func() {
		if batch.Len() == 0 {
			return
		}
		if _, err := w.sink.Write(batch.Bytes()); err != nil {
			w.errors.Add(1)
		} else {
			w.written.Add(uint64(entries))
		}
		batch.Reset()
		entries = 0
	}
	add := func(entry []byte) {
		batch.Write(entry)
		entries++
		if batch.Len() >= w.opts.BufferSize {
			flush()
		}
	}
	drain := func() {
		for {
			select {
			case entry := <-w.queue:
				add(entry)
			default:
				return
			}
		}
	}

	for {
		select {
		case entry := <-w.queue:
			add(entry)
		case <-ticker.C:
			flush()
		case ack := <-w.flushes:
			drain()
			flush()
			if s, ok := w.sink.(zapcore.WriteSyncer); ok {
				_ = s.Sync()
			}
			close(ack)
		case <-w.done:
			drain()
			flush()
			if s, ok := w.sink.(zapcore.WriteSyncer); ok {
				_ = s.Sync()
			}
			return
		}
	}
}
