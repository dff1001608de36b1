// Package iocache is the opt-in archive of finished analysis reports.
package iocache

import (
	"sync"

	"github.com/codesight/codesight/internal/contract"
)

// ArchiveStoreManager guards the process-wide archive store.
type ArchiveStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	archive      contract.ArchiveStore
}

// GetArchiveStore returns the archive store, or nil when archiving is off.
func (mgr *ArchiveStoreManager) GetArchiveStore() contract.ArchiveStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.archive
}
