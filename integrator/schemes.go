package integrator

import (
	"fmt"

	"github.com/notargets/fnknot/fields"
	"github.com/notargets/fnknot/types"
	"github.com/notargets/fnknot/utils"
)

// FieldUpdater advances the field state by one time step. The scheme is chosen
// once when the run is configured.
type FieldUpdater interface {
	Step(s *fields.State)
	Name() string
}

func NewFieldUpdater(scheme types.SchemeType, rhs RHS, s *fields.State, dt float64) (fu FieldUpdater, err error) {
	if !(dt > 0) {
		err = fmt.Errorf("time step must be positive, have %v", dt)
		return
	}
	switch scheme {
	case types.RungeKutta4:
		fu = NewRungeKutta4(rhs, s, dt)
	case types.EulerForward:
		fu = NewEulerForward(rhs, s, dt)
	default:
		err = fmt.Errorf("unknown scheme %v", scheme)
	}
	return
}

// eachPoint runs f over the linear index range of every x partition
func eachPoint(s *fields.State, f func(nMin, nMax int)) {
	var (
		nyz = s.Grid.Ny * s.Grid.Nz
		pm  = s.Partitions
	)
	if pm == nil {
		f(0, len(s.U))
		return
	}
	pm.Run(func(_, iMin, iMax int) {
		f(iMin*nyz, iMax*nyz)
	})
}

// RungeKutta4 is the classical four stage scheme. The state at the start of
// the step is held in UOld/VOld and the weighted stage derivatives accumulate
// in KUT/KVT, so a stage never writes an array it reads.
type RungeKutta4 struct {
	RHS        RHS
	Dt         float64
	UOld, VOld []float64
	KU, KV     []float64 // Current stage derivative
	KUT, KVT   []float64 // Weighted sum of stage derivatives
}

func NewRungeKutta4(rhs RHS, s *fields.State, dt float64) (rk *RungeKutta4) {
	N := len(s.U)
	rk = &RungeKutta4{
		RHS:  rhs,
		Dt:   dt,
		UOld: make([]float64, N),
		VOld: make([]float64, N),
		KU:   make([]float64, N),
		KV:   make([]float64, N),
		KUT:  make([]float64, N),
		KVT:  make([]float64, N),
	}
	return
}

func (rk *RungeKutta4) Name() string { return types.RungeKutta4.String() }

var (
	rk4Fraction = [3]float64{0.5, 0.5, 1}
	rk4Weight   = [3]float64{1, 2, 2}
)

func (rk *RungeKutta4) Step(s *fields.State) {
	var (
		u, v       = s.U, s.V
		uold, vold = rk.UOld, rk.VOld
		ku, kv     = rk.KU, rk.KV
		kut, kvt   = rk.KUT, rk.KVT
		dt         = rk.Dt
	)
	eachPoint(s, func(nMin, nMax int) {
		for n := nMin; n < nMax; n++ {
			uold[n], vold[n] = u[n], v[n]
			kut[n], kvt[n] = 0, 0
		}
	})
	for l := 0; l < 4; l++ {
		rk.RHS.Evaluate(u, v, ku, kv)
		if l < 3 {
			inc, coeff := rk4Fraction[l], rk4Weight[l]
			eachPoint(s, func(nMin, nMax int) {
				for n := nMin; n < nMax; n++ {
					u[n] = uold[n] + dt*inc*ku[n]
					v[n] = vold[n] + dt*inc*kv[n]
					kut[n] += coeff * ku[n]
					kvt[n] += coeff * kv[n]
				}
			})
			continue
		}
		eachPoint(s, func(nMin, nMax int) {
			for n := nMin; n < nMax; n++ {
				u[n] = uold[n] + dt*(kut[n]+ku[n])/6.
				v[n] = vold[n] + dt*(kvt[n]+kv[n])/6.
			}
		})
	}
}

// EulerForward takes a single first order step. du is evaluated from the
// state at the start of the step. When the right hand side is Kinetic, v is
// then advanced with the updated u, otherwise dv also comes from the start of
// the step.
type EulerForward struct {
	RHS      RHS
	Dt       float64
	DU, DV   []float64
	kinetics *Reaction
}

func NewEulerForward(rhs RHS, s *fields.State, dt float64) (ef *EulerForward) {
	N := len(s.U)
	ef = &EulerForward{
		RHS: rhs,
		Dt:  dt,
		DU:  make([]float64, N),
		DV:  make([]float64, N),
	}
	if k, ok := rhs.(Kinetic); ok {
		r := k.Kinetics()
		ef.kinetics = &r
	}
	return
}

func (ef *EulerForward) Name() string { return types.EulerForward.String() }

func (ef *EulerForward) Step(s *fields.State) {
	var (
		u, v   = s.U, s.V
		du, dv = ef.DU, ef.DV
		dt     = ef.Dt
		r      = ef.kinetics
	)
	ef.RHS.Evaluate(u, v, du, dv)
	eachPoint(s, func(nMin, nMax int) {
		for n := nMin; n < nMax; n++ {
			u[n] += dt * du[n]
			if r != nil {
				v[n] += dt * r.recovery(u[n], v[n])
				continue
			}
			v[n] += dt * dv[n]
		}
	})
}

// Diverged reports whether any value of the fields is no longer finite. The
// update itself never checks.
func Diverged(s *fields.State) bool {
	return !utils.IsFinite(s.U) || !utils.IsFinite(s.V)
}
