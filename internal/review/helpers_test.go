package review_test

import "time"

const (
	testTimeout = 2 * time.Second
	tick        = 5 * time.Millisecond
)
