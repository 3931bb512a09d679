package events

import "sync"

// Emitter fans a value out to subscribers. Handlers run synchronously, in
// registration order, on the goroutine that calls Emit.
type Emitter[T any] struct {
	mu       sync.Mutex
	nextID   int
	handlers []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(T)
}

func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{}
}

// Subscribe registers fn and returns its unsubscribe handle. Unsubscribing
// twice is a no-op.
func (e *Emitter[T]) Subscribe(fn func(T)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.handlers = append(e.handlers, subscription[T]{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, sub := range e.handlers {
			if sub.id == id {
				e.handlers = append(e.handlers[:i], e.handlers[i+1:]...)
				return
			}
		}
	}
}

func (e *Emitter[T]) Emit(value T) {
	e.mu.Lock()
	subs := make([]subscription[T], len(e.handlers))
	copy(subs, e.handlers)
	e.mu.Unlock()

	for _, sub := range subs {
		sub.fn(value)
	}
}
