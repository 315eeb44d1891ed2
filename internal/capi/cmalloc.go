//go:build cgo

package capi

/*
#include <stdlib.h>
*/
import "C"

import "unsafe"

// CAllocator serves buffers from the C heap, so the host may hold them for
// as long as it likes.
type CAllocator struct{}

func (CAllocator) Alloc(size uintptr) unsafe.Pointer {
	if size == 0 {
		size = 1
	}
	return C.malloc(C.size_t(size))
}

func (CAllocator) Free(p unsafe.Pointer) {
	C.free(p)
}
