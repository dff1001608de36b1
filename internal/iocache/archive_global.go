package iocache

import (
	"fmt"
	"sync"

	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &ArchiveStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetArchiveDBFilePath returns the path to the SQLite DB file for the archive.
func GetArchiveDBFilePath() string {
	return contract.GetArchiveDBFilePath()
}

// InitArchive initializes the global manager with the configured archive store.
// An empty backend leaves archiving disabled.
func InitArchive(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		if backend == "" {
			return
		}
		store, err := NewArchiveStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize report archive: %w", err)
			return
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.archive = store
	})

	return initErr
}

// CloseArchive should be called on application shutdown.
func CloseArchive() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.archive != nil {
			_ = Manager.archive.Close()
		}
	})
}
