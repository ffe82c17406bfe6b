package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted before a Flush are
// delivered by that Flush; events emitted by handlers during delivery wait
// for the next one. Emit is safe from concurrent builders.
type Bus struct {
	mu       sync.Mutex
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	order    []reflect.Type // first-emit order, keeps delivery deterministic
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

// Emit queues an event into the back buffer.
func Emit[T any](b *Bus, event T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, seen := b.back[t]; !seen {
		if _, known := b.front[t]; !known {
			b.order = append(b.order, t)
		}
	}
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], fn)
}

// SwapBuffers rotates back→front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers,
// grouped by event type in the order the types were first emitted. Returns
// the number of events delivered.
func (b *Bus) DispatchAll() int {
	b.mu.Lock()
	order := append([]reflect.Type(nil), b.order...)
	batches := make([][]any, len(order))
	handlers := make([][]any, len(order))
	for i, t := range order {
		batches[i] = append([]any(nil), b.front[t]...)
		handlers[i] = append([]any(nil), b.handlers[t]...)
	}
	b.mu.Unlock()

	n := 0
	for i := range order {
		for _, ev := range batches[i] {
			for _, h := range handlers[i] {
				callHandler(h, ev)
			}
			n++
		}
	}
	return n
}

// Flush swaps the buffers and delivers everything emitted so far.
func (b *Bus) Flush() int {
	b.SwapBuffers()
	return b.DispatchAll()
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
