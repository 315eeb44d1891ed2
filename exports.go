package main

/*
#include <stdbool.h>

typedef struct {
	float x;
	float y;
	float z;
} Vector3f;
*/
import "C"

import (
	"context"
	"sync"
	"unsafe"

	"github.com/chazu/meshbool/internal/capi"
	"github.com/chazu/meshbool/pkg/csg"
)

//export PerformBooleanOperation
func PerformBooleanOperation(
	verticesA *C.Vector3f, vertexCountA C.int, indicesA *C.int, indexCountA C.int,
	verticesB *C.Vector3f, vertexCountB C.int, indicesB *C.int, indexCountB C.int,
	operation C.int,
	outVertices **C.Vector3f, outVertexCount *C.int,
	outIndices **C.int, outIndexCount *C.int,
) C.bool {
	status := perform(
		verticesA, vertexCountA, indicesA, indexCountA,
		verticesB, vertexCountB, indicesB, indexCountB,
		operation, outVertices, outVertexCount, outIndices, outIndexCount)
	return C.bool(status == csg.StatusOK)
}

//export PerformBooleanOperationStatus
func PerformBooleanOperationStatus(
	verticesA *C.Vector3f, vertexCountA C.int, indicesA *C.int, indexCountA C.int,
	verticesB *C.Vector3f, vertexCountB C.int, indicesB *C.int, indexCountB C.int,
	operation C.int,
	outVertices **C.Vector3f, outVertexCount *C.int,
	outIndices **C.int, outIndexCount *C.int,
) C.int {
	return C.int(perform(
		verticesA, vertexCountA, indicesA, indexCountA,
		verticesB, vertexCountB, indicesB, indexCountB,
		operation, outVertices, outVertexCount, outIndices, outIndexCount))
}

//export FreeMeshResult
func FreeMeshResult(vertices *C.Vector3f, indices *C.int) {
	defer func() { _ = recover() }()
	library().Free(unsafe.Pointer(vertices), unsafe.Pointer(indices))
}

var (
	versionOnce sync.Once
	versionStr  *C.char
)

// MeshBoolVersion returns a static string owned by the library.
//
//export MeshBoolVersion
func MeshBoolVersion() *C.char {
	versionOnce.Do(func() {
		versionStr = C.CString(Version)
	})
	return versionStr
}

func perform(
	verticesA *C.Vector3f, vertexCountA C.int, indicesA *C.int, indexCountA C.int,
	verticesB *C.Vector3f, vertexCountB C.int, indicesB *C.int, indexCountB C.int,
	operation C.int,
	outVertices **C.Vector3f, outVertexCount *C.int,
	outIndices **C.int, outIndexCount *C.int,
) (status int) {
	if outVertices == nil || outVertexCount == nil || outIndices == nil || outIndexCount == nil {
		return csg.StatusMalformedInput
	}
	*outVertices, *outVertexCount = nil, 0
	*outIndices, *outIndexCount = nil, 0

	defer func() {
		if r := recover(); r != nil {
			*outVertices, *outVertexCount = nil, 0
			*outIndices, *outIndexCount = nil, 0
			status = csg.StatusKernelFailure
		}
	}()

	out, status := library().Perform(context.Background(), capi.Request{
		VerticesA:    unsafe.Pointer(verticesA),
		VertexCountA: int32(vertexCountA),
		IndicesA:     unsafe.Pointer(indicesA),
		IndexCountA:  int32(indexCountA),
		VerticesB:    unsafe.Pointer(verticesB),
		VertexCountB: int32(vertexCountB),
		IndicesB:     unsafe.Pointer(indicesB),
		IndexCountB:  int32(indexCountB),
		Operation:    int32(operation),
	})
	if status != csg.StatusOK {
		return status
	}
	*outVertices = (*C.Vector3f)(out.Vertices)
	*outVertexCount = C.int(out.VertexCount)
	*outIndices = (*C.int)(out.Indices)
	*outIndexCount = C.int(out.IndexCount)
	return csg.StatusOK
}
