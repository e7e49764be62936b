package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliverQueuesWhilePumpAlive(t *testing.T) {
	client := NewStreamClient("user-1", nil)

	for i := 0; i < cap(client.Send); i++ {
		assert.True(t, client.Deliver([]byte("payload")))
	}
	assert.Len(t, client.Send, cap(client.Send))
}

func TestDeliverDropsAfterPumpExit(t *testing.T) {
	client := NewStreamClient("user-1", nil)

	// Fill the buffer completely, then simulate the write pump going away.
	// A producer must get false back instead of blocking forever.
	for i := 0; i < cap(client.Send); i++ {
		client.Deliver([]byte("payload"))
	}
	close(client.done)

	assert.False(t, client.Deliver([]byte("one more")))
}
