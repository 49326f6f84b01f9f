// Package eventbus fans docking events out to in-process subscribers.
package eventbus

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus implements a simple publish/subscribe event bus.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the untyped bus used by the allocator.
type Bus = TypedBus[Event]

// New creates a new Bus.
func New() *Bus { return NewTyped[Event]() }

// NewWithBuffer creates a Bus with the given capacity per subscriber.
func NewWithBuffer(buffer int) *Bus { return NewTypedWithBuffer[Event](buffer) }

var _ EventBus = (*Bus)(nil)
