package dtls

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingMessages_ParkAndTake(t *testing.T) {
	p := NewPendingMessages()

	_, ok := p.Take(3)
	assert.False(t, ok)

	p.Park(3, []byte{0x01})
	raw, ok := p.Take(3)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x01}, raw)

	// Exactly-once: a second Take for the same seq finds nothing.
	_, ok = p.Take(3)
	assert.False(t, ok)
}

func TestPendingMessages_ParkIgnoresDuplicateSeq(t *testing.T) {
	p := NewPendingMessages()

	p.Park(5, []byte{0x01})
	p.Park(5, []byte{0x02})

	raw, ok := p.Take(5)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x01}, raw)
}
