package dtls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReassemblyState_SingleFragmentCompletesImmediately(t *testing.T) {
	r := NewReassemblyState()

	body, complete, err := r.Insert(byte(1), 0, 4, 0, 4, []byte{0xde, 0xad, 0xbe, 0xef})
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, body)
}

func TestReassemblyState_OutOfOrderFragmentsAssembleInOrder(t *testing.T) {
	r := NewReassemblyState()

	_, complete, err := r.Insert(byte(1), 0, 6, 3, 3, []byte{0x03, 0x04, 0x05})
	require.NoError(t, err)
	assert.False(t, complete)

	body, complete, err := r.Insert(byte(1), 0, 6, 0, 3, []byte{0x00, 0x01, 0x02})
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}, body)
}

func TestReassemblyState_OverlappingFragmentIsDeduplicated(t *testing.T) {
	r := NewReassemblyState()

	_, complete, err := r.Insert(byte(1), 0, 4, 0, 3, []byte{0xaa, 0xbb, 0xcc})
	require.NoError(t, err)
	assert.False(t, complete)

	// Retransmission overlapping the already-covered range plus the tail byte.
	body, complete, err := r.Insert(byte(1), 0, 4, 0, 4, []byte{0xaa, 0xbb, 0xcc, 0xdd})
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc, 0xdd}, body)
}

func TestReassemblyState_MismatchedLengthOrTypeErrors(t *testing.T) {
	r := NewReassemblyState()

	_, _, err := r.Insert(byte(1), 0, 4, 0, 2, []byte{0x00, 0x01})
	require.NoError(t, err)

	_, _, err = r.Insert(byte(2), 0, 4, 2, 2, []byte{0x02, 0x03})
	assert.ErrorIs(t, err, errMalformedMessage)

	_, _, err = r.Insert(byte(1), 0, 5, 2, 2, []byte{0x02, 0x03})
	assert.ErrorIs(t, err, errMalformedMessage)
}
