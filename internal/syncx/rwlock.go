package syncx

import "sync"

// ReentrantRWLock is a reader-writer lock that a single goroutine may
// acquire recursively. Beyond sync.RWMutex it supports:
//
//   - write -> write reentrancy: a goroutine holding the write lock may
//     take it again;
//   - write -> read downgrade: a goroutine holding the write lock may
//     take nested read locks without deadlocking, so write-path code
//     can call read-path helpers;
//   - recursive read locks on the same goroutine.
//
// Read -> write upgrade is NOT supported and will deadlock, same as
// every classic RW lock; callers must take the write lock up front
// when they may mutate.
//
// The zero value is ready to use.
type ReentrantRWLock struct {
	mu   sync.Mutex
	cond *sync.Cond

	writer     uint64 // gid of the write holder, 0 when free
	writeDepth int
	readers    map[uint64]int // gid -> recursive read count
}

func (l *ReentrantRWLock) init() {
	if l.cond == nil {
		l.cond = sync.NewCond(&l.mu)
	}
	if l.readers == nil {
		l.readers = make(map[uint64]int)
	}
}

// Lock acquires the write lock, blocking until no other goroutine holds
// the lock in either mode.
func (l *ReentrantRWLock) Lock() {
	id := gid()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.init()

	if l.writer == id {
		l.writeDepth++
		return
	}
	for l.writer != 0 || len(l.readers) > 0 {
		l.cond.Wait()
	}
	l.writer = id
	l.writeDepth = 1
}

// Unlock releases one level of the write lock.
func (l *ReentrantRWLock) Unlock() {
	id := gid()
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer != id || l.writeDepth == 0 {
		panic("syncx: Unlock of a write lock not held by this goroutine")
	}
	l.writeDepth--
	if l.writeDepth == 0 {
		l.writer = 0
		l.cond.Broadcast()
	}
}

// RLock acquires a read lock. A goroutine already holding the write
// lock gets the read lock immediately (downgrade); otherwise it blocks
// while any writer holds the lock.
func (l *ReentrantRWLock) RLock() {
	id := gid()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.init()

	if l.writer == id {
		l.readers[id]++
		return
	}
	for l.writer != 0 {
		l.cond.Wait()
	}
	l.readers[id]++
}

// RUnlock releases one level of a read lock.
func (l *ReentrantRWLock) RUnlock() {
	id := gid()
	l.mu.Lock()
	defer l.mu.Unlock()

	n, ok := l.readers[id]
	if !ok || n == 0 {
		panic("syncx: RUnlock of a read lock not held by this goroutine")
	}
	if n == 1 {
		delete(l.readers, id)
		if l.writer == 0 {
			l.cond.Broadcast()
		}
	} else {
		l.readers[id] = n - 1
	}
}
