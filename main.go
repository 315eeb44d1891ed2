// Command meshbool builds the meshbool shared library:
//
//	go build -buildmode=c-shared -o libmeshbool.so .
//
// The library exports PerformBooleanOperation, PerformBooleanOperationStatus,
// FreeMeshResult and MeshBoolVersion; see meshbool.h. It is configured from
// the environment the first time a function is called:
//
//	MESHBOOL_KERNEL     sdfx (default) or cork
//	MESHBOOL_SDF_CELLS  marching cubes resolution for sdfx
//	MESHBOOL_SERIALIZE  1 to run one kernel call at a time
//	MESHBOOL_LOG_LEVEL  debug, info, warn or error (stderr)
package main

func main() {}
