package toolexec

import (
	"bytes"
	"errors"
	"sync"
)

var errCaptureFull = errors.New("capture limit exceeded")

// boundedBuffer collects subprocess output up to limit bytes. The first write
// past the limit flips the overflow flag and calls onOverflow so the process
// can be killed rather than left blocked on a pipe nobody drains.
type boundedBuffer struct {
	mu         sync.Mutex
	buf        bytes.Buffer
	limit      int64
	overflow   bool
	onOverflow func()
}

func newBoundedBuffer(limit int64, onOverflow func()) *boundedBuffer {
	return &boundedBuffer{limit: limit, onOverflow: onOverflow}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	if b.overflow {
		b.mu.Unlock()
		return 0, errCaptureFull
	}
	if int64(b.buf.Len()+len(p)) > b.limit {
		b.overflow = true
		b.mu.Unlock()
		if b.onOverflow != nil {
			b.onOverflow()
		}
		return 0, errCaptureFull
	}
	n, err := b.buf.Write(p)
	b.mu.Unlock()
	return n, err
}

func (b *boundedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *boundedBuffer) Overflowed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflow
}
