package deploy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

const DEFAULT_POLL_INTERVAL = 5 * time.Second

func isInProgressStatus(status string) bool {
	return strings.HasSuffix(status, "_IN_PROGRESS")
}

func isSuccessStatus(status string) bool {
	switch types.StackStatus(status) {
	case types.StackStatusCreateComplete, types.StackStatusUpdateComplete, types.StackStatusImportComplete,
		types.StackStatusDeleteComplete:
		return true
	}
	return false
}

// isFailedStatus covers the terminal statuses of an operation that did not apply, including completed rollbacks.
func isFailedStatus(status string) bool {
	if isInProgressStatus(status) {
		return false
	}
	return strings.HasSuffix(status, "_FAILED") || strings.Contains(status, "ROLLBACK")
}

// poll calls `check` every `interval` until it reports done, returns an error or the context ends.
func poll(ctx context.Context, interval time.Duration, check func() (bool, error)) error {
	if interval <= 0 {
		interval = DEFAULT_POLL_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		done, err := check()
		if err != nil || done {
			return err
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("stopped waiting: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
