package sse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyRecipient(t *testing.T) {
	h := NewHub()
	ayu := h.Subscribe("ayu")
	defer ayu.Close()
	budi := h.Subscribe("budi")
	defer budi.Close()

	assert.Equal(t, 1, h.Publish("ayu", Event{Name: "notification", Data: "hello"}))

	select {
	case ev := <-ayu.C:
		assert.Equal(t, "hello", ev.Data)
	default:
		t.Fatal("expected an event for ayu")
	}
	assert.Len(t, budi.C, 0)
}

func TestHub_FullBufferDropsEvents(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("ayu")
	defer sub.Close()

	delivered := 0
	for i := 0; i < bufferSize+5; i++ {
		delivered += h.Publish("ayu", Event{Name: "notification"})
	}
	assert.Equal(t, bufferSize, delivered)
	assert.Len(t, sub.C, bufferSize)
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	h := NewHub()
	first := h.Subscribe("ayu")
	second := h.Subscribe("ayu")
	assert.Equal(t, 2, h.Len())

	first.Close()
	first.Close()
	assert.Equal(t, 1, h.Len())
	_, open := <-first.C
	assert.False(t, open)

	second.Close()
	assert.Zero(t, h.Len())
}

func TestHub_CloseEndsStreams(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("ayu")

	h.Close()
	_, open := <-sub.C
	assert.False(t, open)
	require.NotPanics(t, sub.Close)

	late := h.Subscribe("budi")
	_, open = <-late.C
	assert.False(t, open)
	assert.Zero(t, h.Len())
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Event{Name: "ping", Data: map[string]int{"timestamp": 42}}))
	assert.Equal(t, "event: ping\ndata: {\"timestamp\":42}\n\n", buf.String())

	assert.Error(t, Write(&buf, Event{Name: "bad", Data: make(chan int)}))
}
