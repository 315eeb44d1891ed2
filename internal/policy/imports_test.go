package policy

import (
	"fmt"
	"go/parser"
	"go/token"
	"sort"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/chazu/meshbool"

// boundaryPackages may use cgo and unsafe.
var boundaryPackages = map[string]bool{
	modulePath:                      true,
	modulePath + "/internal/capi":   true,
	modulePath + "/pkg/kernel/cork": true,
}

// fileImports maps package path to the imports of every file in it,
// including files excluded by build constraints.
func fileImports(t *testing.T) map[string]map[string][]string {
	t.Helper()

	cfg := &packages.Config{
		Mode:  packages.NeedName | packages.NeedFiles,
		Tests: true,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	fset := token.NewFileSet()
	out := make(map[string]map[string][]string)
	for _, pkg := range pkgs {
		// Test variants repeat the package's files; external test
		// packages are checked as part of the package they test.
		path := strings.TrimSuffix(pkg.PkgPath, "_test")
		if strings.HasSuffix(path, ".test") {
			continue
		}
		files := append(append([]string{}, pkg.GoFiles...), pkg.IgnoredFiles...)
		for _, name := range files {
			if !strings.HasSuffix(name, ".go") {
				continue
			}
			f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
			if err != nil {
				t.Fatalf("parse %s: %v", name, err)
			}
			if out[path] == nil {
				out[path] = make(map[string][]string)
			}
			if _, seen := out[path][name]; seen {
				continue
			}
			out[path][name] = []string{}
			for _, imp := range f.Imports {
				p, err := strconv.Unquote(imp.Path.Value)
				if err != nil {
					continue
				}
				out[path][name] = append(out[path][name], p)
			}
		}
	}
	if len(out) == 0 {
		t.Fatal("no packages loaded")
	}
	return out
}

func report(t *testing.T, what string, findings []string) {
	t.Helper()
	if len(findings) == 0 {
		return
	}
	sort.Strings(findings)
	t.Fatalf("%s:\n%s", what, strings.Join(findings, "\n"))
}

func TestCgoConfinedToBoundary(t *testing.T) {
	var findings []string
	for path, files := range fileImports(t) {
		if boundaryPackages[path] {
			continue
		}
		for name, imports := range files {
			for _, imp := range imports {
				if imp == "C" || imp == "unsafe" {
					findings = append(findings, fmt.Sprintf("%s: imports %q", name, imp))
				}
			}
		}
	}
	report(t, "cgo or unsafe outside the C boundary", findings)
}

func TestPublicPackagesStayPublic(t *testing.T) {
	var findings []string
	for path, files := range fileImports(t) {
		if !strings.HasPrefix(path, modulePath+"/pkg/") {
			continue
		}
		for name, imports := range files {
			for _, imp := range imports {
				switch {
				case imp == modulePath,
					strings.HasPrefix(imp, modulePath+"/internal/"),
					strings.HasPrefix(imp, modulePath+"/cmd/"):
					findings = append(findings, fmt.Sprintf("%s: imports %q", name, imp))
				}
			}
		}
	}
	report(t, "pkg/ depends on non-public code", findings)
}

func TestBoundaryPackagesUseCgo(t *testing.T) {
	all := fileImports(t)
	for path := range boundaryPackages {
		files, ok := all[path]
		if !ok {
			t.Errorf("%s: not loaded", path)
			continue
		}
		found := false
		for _, imports := range files {
			for _, imp := range imports {
				if imp == "C" {
					found = true
				}
			}
		}
		if !found {
			t.Errorf("%s: expected a cgo file", path)
		}
	}
}
