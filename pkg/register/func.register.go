// Package register collects setup hooks keyed by an arbitrary value so that
// packages can plug themselves into a provider from init().
package register

import "sync"

type Handler[T any] func(T)

var (
	locker   sync.Mutex
	handlers = make(map[any][]any)
)

func RegisterFunc[T any](key any, handler Handler[T]) {
	locker.Lock()
	handlers[key] = append(handlers[key], handler)
	locker.Unlock()
}

// ResolveFuncHandlers returns the handlers registered under key whose type
// parameter matches T, in registration order.
func ResolveFuncHandlers[T any](key any) []Handler[T] {
	locker.Lock()
	defer locker.Unlock()

	var result []Handler[T]
	for _, v := range handlers[key] {
		if h, ok := v.(Handler[T]); ok {
			result = append(result, h)
		}
	}
	return result
}
