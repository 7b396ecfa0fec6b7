//go:build integration

package containers

import (
	"fmt"
	"sync"
	"testing"
)

// CleanupManager manages cleanup of test resources in proper order.
// Resources are cleaned up in LIFO order (last added, first cleaned).
type CleanupManager struct {
	mu       sync.Mutex
	cleanups []cleanupFunc
}

type cleanupFunc struct {
	name string
	fn   func() error
}

// NewCleanupManager creates a new CleanupManager.
func NewCleanupManager() *CleanupManager {
	return &CleanupManager{
		cleanups: make([]cleanupFunc, 0),
	}
}

// Add adds a cleanup function to be executed later.
func (cm *CleanupManager) Add(name string, fn func() error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.cleanups = append(cm.cleanups, cleanupFunc{
		name: name,
		fn:   fn,
	})
}

// Cleanup executes all registered cleanup functions in LIFO order.
// It continues executing even if some cleanups fail, collecting all errors.
// Cleanups run without holding the lock so a cleanup may call Add.
func (cm *CleanupManager) Cleanup() []error {
	cm.mu.Lock()
	cleanupsCopy := make([]cleanupFunc, len(cm.cleanups))
	copy(cleanupsCopy, cm.cleanups)
	cm.cleanups = nil
	cm.mu.Unlock()

	var errors []error
	for i := len(cleanupsCopy) - 1; i >= 0; i-- {
		cleanup := cleanupsCopy[i]
		if err := cleanup.fn(); err != nil {
			errors = append(errors, fmt.Errorf("%s cleanup failed: %w", cleanup.name, err))
		}
	}
	return errors
}

// RegisterTestCleanup registers cleanup functions with testing.T using t.Cleanup.
// This ensures cleanup happens even if tests panic.
func (cm *CleanupManager) RegisterTestCleanup(t *testing.T) {
	t.Helper()

	t.Cleanup(func() {
		errors := cm.Cleanup()
		for _, err := range errors {
			t.Errorf("Cleanup error: %v", err)
		}
	})
}
