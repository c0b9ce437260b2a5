package memory

import "sync"

// LockRegistry hands out one mutex per job id so state transitions on a job
// are read-modify-write atomic without a global lock.
type LockRegistry struct {
	locks sync.Map // jobId -> *sync.Mutex
}

func NewLockRegistry() *LockRegistry {
	return &LockRegistry{}
}

func (r *LockRegistry) Lock(jobId string) func() {
	v, _ := r.locks.LoadOrStore(jobId, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
