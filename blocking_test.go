package gated

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockingHandle_basic(t *testing.T) {
	o := startOwner(t)
	h, err := NewBlockingHandle(o.Descriptor())
	require.NoError(t, err)

	v, err := h.Call("insert", 3)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = h.Call("insert", 3)
	require.NoError(t, err)
	assert.Equal(t, false, v, "duplicate insert")

	v, err = h.Call("has", 3)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = h.Call("len")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	assert.Equal(t, 0, h.Pending())
}

func TestBlockingHandle_selfChaining(t *testing.T) {
	o := startOwner(t)
	h, err := NewBlockingHandle(o.Descriptor())
	require.NoError(t, err)

	v, err := h.Call("add", 1)
	require.NoError(t, err)
	require.Same(t, h, v)

	chained, ok := v.(*BlockingHandle)
	require.True(t, ok)
	v, err = chained.Call("add", 2)
	require.NoError(t, err)
	require.Same(t, h, v)

	v, err = h.Call("len")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestBlockingHandle_errorRoundTrip(t *testing.T) {
	o := startOwner(t)
	h, err := NewBlockingHandle(o.Descriptor())
	require.NoError(t, err)

	// with the default codec the very same error value crosses back
	_, err = h.Call("min")
	require.ErrorIs(t, err, errEmptySet)
}

func TestBlockingHandle_unknownMethodFailsFast(t *testing.T) {
	o := startOwner(t)
	h, err := NewBlockingHandle(o.Descriptor())
	require.NoError(t, err)

	_, err = h.Call("frobnicate")
	var ue *UnknownMethodError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "frobnicate", ue.Method)

	require.Error(t, h.Notify("frobnicate"))

	// rejected before submission, so the owner never saw it
	assert.Equal(t, uint64(0), o.Stats().Requests)
}

func TestBlockingHandle_close(t *testing.T) {
	o := startOwner(t)
	d, err := o.Clone()
	require.NoError(t, err)
	h, err := NewBlockingHandle(d)
	require.NoError(t, err)

	_, err = h.Call("insert", 1)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close(), "close must be idempotent")

	_, err = h.Call("insert", 2)
	require.ErrorIs(t, err, ErrChannelClosed)
	require.ErrorIs(t, h.Notify("insert", 2), ErrChannelClosed)

	// the owner and other channels carry on
	h2, err := NewBlockingHandle(o.Descriptor())
	require.NoError(t, err)
	v, err := h2.Call("len")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestBlockingHandle_notifySkipsResponseAndCounter(t *testing.T) {
	o := startOwner(t)
	h, err := NewBlockingHandle(o.Descriptor())
	require.NoError(t, err)

	require.NoError(t, h.Notify("insert", 7))

	// same channel, so this call observing the insert proves the notify ran
	v, err := h.Call("has", 7)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	assert.Equal(t, 0, h.Pending())
	st := o.Stats()
	assert.Equal(t, uint64(1), st.Notifies)
	assert.Equal(t, uint64(1), st.Responses)
}
