// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

// DefaultEventCapacity is the buffer size of NewEvents.
const DefaultEventCapacity = 64

// Events delivers present notifications to the compositor loop.
//
// Notify never blocks: when the channel is full the notification is
// dropped. That is safe because the pending flag, not the channel, is the
// source of truth; a dropped wake only delays consumption until the
// compositor's next pass over its surfaces.
type Events struct {
	ch chan ID
}

// NewEvents creates an event queue with DefaultEventCapacity.
func NewEvents() *Events {
	return NewEventsWithCapacity(DefaultEventCapacity)
}

// NewEventsWithCapacity creates an event queue with an explicit buffer size.
func NewEventsWithCapacity(capacity int) *Events {
	if capacity < 1 {
		capacity = 1
	}
	return &Events{ch: make(chan ID, capacity)}
}

// Notify enqueues a wake for id. It reports whether the notification was
// delivered or dropped on a full queue.
func (e *Events) Notify(id ID) bool {
	select {
	case e.ch <- id:
		return true
	default:
		return false
	}
}

// C returns the receive side for the compositor loop.
func (e *Events) C() <-chan ID {
	return e.ch
}

// TryRecv drains one notification without blocking.
func (e *Events) TryRecv() (ID, bool) {
	select {
	case id := <-e.ch:
		return id, true
	default:
		return 0, false
	}
}
