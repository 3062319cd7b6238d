package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferPoolSize(t *testing.T) {
	p := NewBufferPool(64)
	buf := p.Get()
	require.NotNil(t, buf)
	assert.Equal(t, 64*1024, len(*buf))
	p.Put(buf)
}

func TestBufferPoolDefaultSize(t *testing.T) {
	p := NewBufferPool(0)
	buf := p.Get()
	assert.Equal(t, defaultBufferKB*1024, len(*buf))
	p.Put(buf)
}

func TestBufferPoolPutRestoresLength(t *testing.T) {
	p := NewBufferPool(1)
	buf := p.Get()
	*buf = (*buf)[:10]
	p.Put(buf)

	again := p.Get()
	assert.Equal(t, 1024, len(*again))
}
