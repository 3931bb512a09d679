package models

// RemoteState is the lifecycle of a server-owned value: not fetched yet,
// fetched, or fetched and confirmed absent.
type RemoteState int

const (
	RemoteLoading RemoteState = iota
	RemoteLoaded
	RemoteAbsent
)

func (s RemoteState) String() string {
	switch s {
	case RemoteLoading:
		return "loading"
	case RemoteLoaded:
		return "loaded"
	case RemoteAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// Remote holds a value together with its RemoteState. The zero value is
// loading.
type Remote[T any] struct {
	state RemoteState
	value T
}

func Loading[T any]() Remote[T] {
	return Remote[T]{state: RemoteLoading}
}

func Loaded[T any](value T) Remote[T] {
	return Remote[T]{state: RemoteLoaded, value: value}
}

func Absent[T any]() Remote[T] {
	return Remote[T]{state: RemoteAbsent}
}

func (r Remote[T]) State() RemoteState { return r.state }

func (r Remote[T]) IsLoading() bool { return r.state == RemoteLoading }

func (r Remote[T]) IsAbsent() bool { return r.state == RemoteAbsent }

// Value returns the loaded value; ok is false while loading or absent.
func (r Remote[T]) Value() (T, bool) {
	if r.state != RemoteLoaded {
		var zero T
		return zero, false
	}
	return r.value, true
}
