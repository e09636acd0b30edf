package store

import (
	"sync/atomic"

	appLog "churchsite/internal/log"
)

// Holder publishes the current Dataset snapshot. Snapshots are replaced
// whole and never modified, so readers need no locking.
type Holder struct {
	dir     string
	current atomic.Pointer[Dataset]
}

// NewHolder returns a Holder serving ds, reloading from dir on Reload.
func NewHolder(dir string, ds *Dataset) *Holder {
	h := &Holder{dir: dir}
	if ds == nil {
		ds = NewDataset(nil, nil, nil, nil, nil)
	}
	h.current.Store(ds)
	return h
}

// Current returns the snapshot in effect.
func (h *Holder) Current() *Dataset {
	return h.current.Load()
}

// Reload reads the data directory again. On failure the previous snapshot
// stays in effect.
func (h *Holder) Reload() error {
	ds, err := Load(h.dir)
	if err != nil {
		appLog.Error("dataset reload failed; keeping previous snapshot", err, "dir", h.dir)
		return err
	}
	h.current.Store(ds)
	return nil
}
