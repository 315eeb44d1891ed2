package csg

import (
	"fmt"
	"strconv"
	"strings"
)

// Operation selects the boolean combination. Values match the integer
// selector of the C ABI.
type Operation int32

const (
	Union        Operation = 0
	Intersection Operation = 1
	Difference   Operation = 2
)

// Valid reports whether o is one of the defined operations.
func (o Operation) Valid() bool {
	return o >= Union && o <= Difference
}

func (o Operation) String() string {
	switch o {
	case Union:
		return "union"
	case Intersection:
		return "intersection"
	case Difference:
		return "difference"
	}
	return "Operation(" + strconv.Itoa(int(o)) + ")"
}

// ParseOperation accepts an operation name, a common alias, or its integer
// selector.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "union", "add", "0":
		return Union, nil
	case "intersection", "intersect", "1":
		return Intersection, nil
	case "difference", "subtract", "diff", "2":
		return Difference, nil
	}
	return 0, fmt.Errorf("%w: unknown operation %q", ErrMalformedInput, s)
}
