package tracer

import (
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/spatial/r3"
)

// Objective is a scalar function of a point and its gradient
type Objective struct {
	F    func(x r3.Vec) float64
	Grad func(x r3.Vec) r3.Vec
}

// Budget bounds a single minimization. MaxEvaluations caps the objective and
// gradient evaluations separately, line search evaluations included.
type Budget struct {
	MaxIterations     int
	MaxEvaluations    int
	GradientTolerance float64
}

// DefaultBudget is 100 iterations, 200 evaluations or a gradient norm below
// 1e-3, whichever comes first.
var DefaultBudget = Budget{MaxIterations: 100, MaxEvaluations: 200, GradientTolerance: 1.e-3}

// VectorOptimizer refines a point by local unconstrained minimization. The
// tracer depends only on this interface.
type VectorOptimizer interface {
	Minimize(obj Objective, x0 r3.Vec, budget Budget) (x r3.Vec, err error)
}

// GonumOptimizer minimizes with a gonum optimize.Method, Fletcher-Reeves
// conjugate gradient unless Method is set.
type GonumOptimizer struct {
	Method optimize.Method
}

func NewGonumOptimizer() *GonumOptimizer {
	return &GonumOptimizer{}
}

// Minimize returns the best point found. When the search fails or stops on a
// limit without improving on x0, x0 is returned along with the reason.
func (gopt *GonumOptimizer) Minimize(obj Objective, x0 r3.Vec, budget Budget) (x r3.Vec, err error) {
	var (
		method   = gopt.Method
		result   *optimize.Result
		settings = &optimize.Settings{
			MajorIterations:   budget.MaxIterations,
			FuncEvaluations:   budget.MaxEvaluations,
			GradEvaluations:   budget.MaxEvaluations,
			GradientThreshold: budget.GradientTolerance,
			Converger:         &optimize.FunctionConverge{Absolute: 1.e-10, Iterations: 20},
		}
		problem = optimize.Problem{
			Func: func(p []float64) float64 {
				return obj.F(r3.Vec{X: p[0], Y: p[1], Z: p[2]})
			},
			Grad: func(grad, p []float64) {
				g := obj.Grad(r3.Vec{X: p[0], Y: p[1], Z: p[2]})
				grad[0], grad[1], grad[2] = g.X, g.Y, g.Z
			},
		}
	)
	if method == nil {
		method = &optimize.CG{Variant: &optimize.FletcherReeves{}}
	}
	x = x0
	result, err = optimize.Minimize(problem, []float64{x0.X, x0.Y, x0.Z}, settings, method)
	if result == nil || len(result.X) != 3 || math.IsNaN(result.F) {
		return
	}
	if result.Status.Early() || err != nil {
		// Keep the best location only if it improves on the start
		if !(result.F < obj.F(x0)) {
			if err == nil {
				err = result.Status.Err()
			}
			return
		}
	}
	x = r3.Vec{X: result.X[0], Y: result.X[1], Z: result.X[2]}
	return
}
