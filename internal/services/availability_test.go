package services

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	events chan AvailabilityEvent
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	if evt, ok := v.(AvailabilityEvent); ok {
		c.events <- evt
	}
	return nil
}

func (c *fakeConn) Close() error { return nil }

func TestFanOutAvailabilityReachesRegisteredConns(t *testing.T) {
	conn := &fakeConn{events: make(chan AvailabilityEvent, 1)}
	unregister := RegisterAvailabilityConn(conn)
	defer unregister()

	sent := AvailabilityEvent{Type: EventGiftReserved, GiftID: "gift-1"}
	FanOutAvailability(sent)

	select {
	case got := <-conn.events:
		assert.Equal(t, sent.Type, got.Type)
		assert.Equal(t, sent.GiftID, got.GiftID)
	case <-time.After(time.Second):
		require.FailNow(t, "event never reached the connection")
	}
}

// contendedConn records how many writers are inside WriteJSON at once.
type contendedConn struct {
	inFlight int32
	maxSeen  int32
	done     int32
}

func (c *contendedConn) WriteJSON(v interface{}) error {
	n := atomic.AddInt32(&c.inFlight, 1)
	for {
		max := atomic.LoadInt32(&c.maxSeen)
		if n <= max || atomic.CompareAndSwapInt32(&c.maxSeen, max, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	atomic.AddInt32(&c.inFlight, -1)
	atomic.AddInt32(&c.done, 1)
	return nil
}

func (c *contendedConn) Close() error { return nil }

func TestFanOutSerializesWritesPerConnection(t *testing.T) {
	conn := &contendedConn{}
	unregister := RegisterAvailabilityConn(conn)
	defer unregister()

	const events = 5
	for i := 0; i < events; i++ {
		FanOutAvailability(AvailabilityEvent{Type: EventGiftReserved, GiftID: "gift-9"})
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&conn.done) == events
	}, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&conn.maxSeen))
}

func TestFanOutSkipsUnregisteredConns(t *testing.T) {
	conn := &fakeConn{events: make(chan AvailabilityEvent, 1)}
	unregister := RegisterAvailabilityConn(conn)
	unregister()

	FanOutAvailability(AvailabilityEvent{Type: EventGiftReleased, GiftID: "gift-2"})

	select {
	case <-conn.events:
		require.FailNow(t, "unregistered connection must not receive events")
	case <-time.After(100 * time.Millisecond):
	}
}
