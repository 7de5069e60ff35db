package block

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

// bufferPool hands out the buffers view output is captured into.
type bufferPool interface {
	Get() *bytebufferpool.ByteBuffer
	Put(b *bytebufferpool.ByteBuffer)
}

var sharedBuffers bytebufferpool.Pool

// capture runs fn against a buffer from pool and returns what it wrote.
// The buffer is acquired right before fn and returned on every exit path,
// panics included, so a failing view never leaves a buffer behind.
func capture(pool bufferPool, fn func(w io.Writer) error) (string, error) {
	buf := pool.Get()
	defer pool.Put(buf)

	if err := fn(buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
