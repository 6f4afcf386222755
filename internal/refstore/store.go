package refstore

import "sync/atomic"

type Store struct {
	snap atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	s := &Store{}
	s.snap.Store(BuildSnapshot(nil, nil))
	return s
}

func (s *Store) Publish(snap *Snapshot) {
	if snap == nil {
		snap = BuildSnapshot(nil, nil)
	}
	s.snap.Store(snap)
}

func (s *Store) Acquire() *Snapshot {
	return s.snap.Load()
}
