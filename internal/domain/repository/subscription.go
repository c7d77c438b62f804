package repository

// Subscription is the handle of a live query. The owner closes it when it is
// discarded; after Close returns no further callbacks run.
type Subscription interface {
	Close() error
}

// ListFunc receives the entire current result set of an observed query, or
// the error that ended the observation.
type ListFunc[T any] func(items []T, err error)
