// Package policy holds repository-wide checks that run as tests.
//
// The checks load every package in the module and inspect its imports:
// cgo and unsafe stay confined to the C boundary and the cork kernel, and
// the public pkg/ tree never reaches into internal/ or cmd/. The package has
// no non-test code and should not be imported.
package policy
