package capi

import (
	"sync"
	"unsafe"
)

// Allocator hands out raw output buffers. Alloc returns nil when memory is
// unavailable.
type Allocator interface {
	Alloc(size uintptr) unsafe.Pointer
	Free(p unsafe.Pointer)
}

// HeapAllocator serves buffers from the Go heap and counts what is still
// outstanding. Buffers must not be handed to foreign code that keeps them
// past a call; use CAllocator for that.
type HeapAllocator struct {
	mu     sync.Mutex
	live   map[unsafe.Pointer]block
	bytes  uintptr
	allocs int
	failAt int
}

type block struct {
	words []uint64
	size  uintptr
}

// NewHeapAllocator returns an empty HeapAllocator.
func NewHeapAllocator() *HeapAllocator {
	return &HeapAllocator{live: make(map[unsafe.Pointer]block)}
}

// FailAt makes the n-th allocation from now fail. Zero disables failures.
func (a *HeapAllocator) FailAt(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.allocs = 0
	a.failAt = n
}

func (a *HeapAllocator) Alloc(size uintptr) unsafe.Pointer {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.allocs++
	if a.failAt > 0 && a.allocs == a.failAt {
		return nil
	}
	if size == 0 {
		size = 1
	}
	// Word-sized backing keeps every buffer 8-byte aligned.
	words := make([]uint64, (size+7)/8)
	p := unsafe.Pointer(&words[0])
	a.live[p] = block{words: words, size: size}
	a.bytes += size
	return p
}

func (a *HeapAllocator) Free(p unsafe.Pointer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.live[p]
	if !ok {
		return
	}
	delete(a.live, p)
	a.bytes -= b.size
}

// Outstanding returns the number of bytes allocated and not yet freed.
func (a *HeapAllocator) Outstanding() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bytes
}
