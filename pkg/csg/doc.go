// Package csg runs boolean operations between two closed triangle meshes.
//
// A call moves through fixed stages with an early exit on the first
// failure:
//
//  1. Validate both meshes and the operation selector.
//  2. Convert each mesh into kernel convention (flipped winding).
//  3. Ask the kernel whether both inputs are solids.
//  4. Dispatch the boolean to the kernel, intercepting errors and panics.
//  5. Marshal the kernel result back into host convention.
//
// Kernel result buffers are released exactly once by the marshaler. The
// caller owns the returned *Result until it calls Release or Take.
package csg
