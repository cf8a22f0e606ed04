// Package gateways defines interfaces for external service adapters.
package gateways

import "context"

// BuildRecord represents a build known to the remote build system.
type BuildRecord struct {
	// NVR is the name-version-release identifier of the build.
	NVR string

	// TaskID is the build task that produced the build. Zero means the
	// build has no discoverable task.
	TaskID int64
}

// BuildLookupGateway defines the two-phase batch protocol against the remote
// build system. Responses are ordered: the i-th entry always corresponds to
// the i-th request item.
type BuildLookupGateway interface {
	// GetBuilds returns one record per requested identifier, in request
	// order. Unknown builds yield a nil entry.
	GetBuilds(ctx context.Context, nvrs []string) ([]*BuildRecord, error)

	// GetTaskLabels returns one descriptive label per task ID, in request
	// order. Unknown tasks yield an empty string.
	GetTaskLabels(ctx context.Context, taskIDs []int64) ([]string, error)
}
