package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// ensureBucketTimeout bounds the startup check against the object store.
	ensureBucketTimeout = 10 * time.Second
)
