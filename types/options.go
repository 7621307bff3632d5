package types

import (
	"fmt"
	"sort"
	"strings"
)

type BoundaryType uint8

const (
	Reflecting BoundaryType = iota
	Periodic
)

var BoundaryNameMap = map[string]BoundaryType{
	"reflecting": Reflecting,
	"reflect":    Reflecting,
	"wall":       Reflecting,
	"periodic":   Periodic,
}

func (bt BoundaryType) String() string {
	switch bt {
	case Reflecting:
		return "Reflecting"
	case Periodic:
		return "Periodic"
	}
	return fmt.Sprintf("BoundaryType(%d)", uint8(bt))
}

func NewBoundaryType(label string) (bt BoundaryType, err error) {
	var ok bool
	if bt, ok = BoundaryNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown boundary type %q, must be one of %v", label, keys(BoundaryNameMap))
	}
	return
}

// Axis names a grid direction, X is the outermost (slowest varying) index.
type Axis uint8

const (
	X Axis = iota
	Y
	Z
)

var AxisNameMap = map[string]Axis{
	"x": X,
	"y": Y,
	"z": Z,
}

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

func NewAxis(label string) (a Axis, err error) {
	var ok bool
	if len(label) == 0 {
		return Z, nil
	}
	if a, ok = AxisNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown axis %q, must be one of %v", label, keys(AxisNameMap))
	}
	return
}

// InitType numbering follows the run metadata written by earlier runs, so
// restart files and info.txt stay comparable.
type InitType uint8

const (
	FromPhiFile InitType = iota
	FromSurfaceFile
	FromUVFile
	FromFunction
)

var InitNameMap = map[string]InitType{
	"phi":      FromPhiFile,
	"surface":  FromSurfaceFile,
	"stl":      FromSurfaceFile,
	"uv":       FromUVFile,
	"function": FromFunction,
}

func (it InitType) String() string {
	switch it {
	case FromPhiFile:
		return "Phi File"
	case FromSurfaceFile:
		return "Surface File"
	case FromUVFile:
		return "UV File"
	case FromFunction:
		return "Function"
	}
	return fmt.Sprintf("InitType(%d)", uint8(it))
}

func NewInitType(label string) (it InitType, err error) {
	var ok bool
	if it, ok = InitNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unable to use init type named %q, must be one of %v", label, keys(InitNameMap))
	}
	return
}

type SchemeType uint8

const (
	RungeKutta4 SchemeType = iota
	EulerForward
)

var SchemeNameMap = map[string]SchemeType{
	"rk4":   RungeKutta4,
	"euler": EulerForward,
}

func (st SchemeType) String() string {
	switch st {
	case RungeKutta4:
		return "Runge-Kutta 4th order"
	case EulerForward:
		return "Euler forward"
	}
	return fmt.Sprintf("SchemeType(%d)", uint8(st))
}

func NewSchemeType(label string) (st SchemeType, err error) {
	var ok bool
	if len(label) == 0 {
		return RungeKutta4, nil
	}
	if st, ok = SchemeNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown scheme %q, must be one of %v", label, keys(SchemeNameMap))
	}
	return
}

type BackendType uint8

const (
	StencilBackend BackendType = iota
	TileBackend
)

var BackendNameMap = map[string]BackendType{
	"stencil": StencilBackend,
	"tile":    TileBackend,
}

func (bt BackendType) String() string {
	switch bt {
	case StencilBackend:
		return "Shared memory stencil"
	case TileBackend:
		return "Moving tile stencil"
	}
	return fmt.Sprintf("BackendType(%d)", uint8(bt))
}

func NewBackendType(label string) (bt BackendType, err error) {
	var ok bool
	if len(label) == 0 {
		return StencilBackend, nil
	}
	if bt, ok = BackendNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown backend %q, must be one of %v", label, keys(BackendNameMap))
	}
	return
}

func keys[T any](m map[string]T) (names []string) {
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return
}
