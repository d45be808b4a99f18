package remote

import (
	"sync"
	"sync/atomic"

	"github.com/ProtonMail/draftsync/draft"
)

type syncRef struct {
	lock    sync.Mutex
	counter int32
}

// lockTable hands out one mutex per draft identity. Entries are released to a pool once unused.
type lockTable struct {
	lock       sync.Mutex
	entryTable map[draft.ID]*syncRef
	lockPool   []*syncRef
}

func newLockTable() *lockTable {
	return &lockTable{
		entryTable: make(map[draft.ID]*syncRef),
	}
}

func (l *lockTable) acquire(id draft.ID) *syncRef {
	l.lock.Lock()
	defer l.lock.Unlock()

	v, ok := l.entryTable[id]
	if !ok {
		var s *syncRef

		if len(l.lockPool) != 0 {
			s = l.lockPool[0]
			s.counter = 1
			l.lockPool = l.lockPool[1:]
		} else {
			s = &syncRef{counter: 1}
		}

		l.entryTable[id] = s

		return s
	}

	atomic.AddInt32(&v.counter, 1)

	return v
}

func (l *lockTable) release(id draft.ID, ref *syncRef) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if atomic.AddInt32(&ref.counter, -1) <= 0 {
		delete(l.entryTable, id)
		l.lockPool = append(l.lockPool, ref)
	}
}

// withLock runs fn while holding the identity's mutex.
func (l *lockTable) withLock(id draft.ID, fn func() error) error {
	ref := l.acquire(id)
	defer l.release(id, ref)

	ref.lock.Lock()
	defer ref.lock.Unlock()

	return fn()
}

func (l *lockTable) size() int {
	l.lock.Lock()
	defer l.lock.Unlock()

	return len(l.entryTable)
}
