package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates a sync is already running for the root
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrCrawlerNotFound indicates the crawler mode is not registered
	ErrCrawlerNotFound = errors.New("crawler not found")

	// ErrRootUnreadable indicates the crawl root itself could not be accessed.
	// This is the only discovery failure that aborts a whole sync run.
	ErrRootUnreadable = errors.New("root unreadable")

	// ErrQueueExhausted indicates an entry reached its attempt bound and is
	// terminally failed until manually requeued
	ErrQueueExhausted = errors.New("queue entry exhausted")
)
