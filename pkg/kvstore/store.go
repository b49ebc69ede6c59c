// Package kvstore provides the opaque key-value store that holds every entity
// collection as one JSON document per key.
package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a minimal get/set/delete contract over raw JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Observer receives timing for each store operation.
type Observer interface {
	ObserveStoreOperation(op string, key string, duration time.Duration, err error)
}

type instrumented struct {
	next     Store
	observer Observer
}

// Instrument wraps a store so that every call is reported to observer.
func Instrument(next Store, observer Observer) Store {
	if observer == nil {
		return next
	}
	return &instrumented{next: next, observer: observer}
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := s.next.Get(ctx, key)
	reported := err
	if errors.Is(err, ErrNotFound) {
		reported = nil
	}
	s.observer.ObserveStoreOperation("get", key, time.Since(start), reported)
	return value, err
}

func (s *instrumented) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.observer.ObserveStoreOperation("set", key, time.Since(start), err)
	return err
}

func (s *instrumented) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Delete(ctx, key)
	s.observer.ObserveStoreOperation("delete", key, time.Since(start), err)
	return err
}
