package session

import "sync"

// namedLocker hands out one mutex per session id, created lazily.
type namedLocker struct {
	locks sync.Map
}

func (nl *namedLocker) Lock(name string) {
	mut, _ := nl.locks.LoadOrStore(name, new(sync.Mutex))
	mut.(*sync.Mutex).Lock()
}

func (nl *namedLocker) Unlock(name string) {
	mut, ok := nl.locks.Load(name)
	if !ok {
		return
	}
	mut.(*sync.Mutex).Unlock()
}

// Forget drops the lock of a finished session. Callers must not hold it.
func (nl *namedLocker) Forget(name string) {
	nl.locks.Delete(name)
}
