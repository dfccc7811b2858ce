package watcher

import "errors"

var (
	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = errors.New("watcher: store closed")

	// ErrNoDecoder indicates the watcher was started without a decoder.
	ErrNoDecoder = errors.New("watcher: decoder not configured")

	// ErrNoObserver indicates the watcher was started without an
	// observation source.
	ErrNoObserver = errors.New("watcher: observer not configured")
)
