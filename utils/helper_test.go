package utils

import (
	"context"
	"testing"
)

func TestUserLockWithoutLockClient(t *testing.T) {
	// No redis in tests, so the lock client is nil and UserLock must refuse
	// instead of panicking. Callers hold the returned release func for the
	// duration of their work; on failure there must be nothing to release.
	release, err := UserLock(context.Background(), 1, "SnapshotLock", "utils", "TestUserLockWithoutLockClient")
	if err == nil {
		t.Fatal("expected error when the lock client is not initialized")
	}
	if release != nil {
		t.Error("release must be nil when no lock was obtained")
	}
}
