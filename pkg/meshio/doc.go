// Package meshio reads and writes meshes as Wavefront OBJ and STL files.
//
// Both formats store faces counter-clockwise seen from outside. Readers
// return meshes in the package mesh convention (clockwise) and writers
// convert back, so files written here open the right way out elsewhere.
package meshio
