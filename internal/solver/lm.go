// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solver

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// residualFunc maps parameters to a residual vector of fixed length.
type residualFunc func(x []float64) []float64

// lmSettings configures levenbergMarquardt.
type lmSettings struct {
	MaxIterations int
	FTol          float64 // residual norm counted as a root
	XTol          float64 // largest scaled step counted as stationary
}

// lmResult is the outcome of one levenbergMarquardt run.
type lmResult struct {
	X          []float64
	Residual   []float64
	Iterations int
	Converged  bool
}

const (
	lambdaInit = 1e-3
	lambdaMin  = 1e-15
	lambdaMax  = 1e15
	fdStep     = 1.5e-8 // ≈ √ε
)

// levenbergMarquardt minimizes ½|f(x)|² from x0. Parameters are divided by
// scale so every column of the Jacobian has comparable magnitude; the
// damping term is λI in that scaled space.
//
// A run converges when the residual norm drops to FTol, when an accepted
// step moves every scaled parameter by at most XTol, or when no damped
// step can reduce the cost any further. It fails when MaxIterations pass
// without any of these.
func levenbergMarquardt(f residualFunc, x0, scale []float64, s lmSettings) lmResult {
	n := len(x0)
	z := make([]float64, n)
	floats.DivTo(z, x0, scale)

	eval := func(z []float64) []float64 {
		x := make([]float64, n)
		floats.MulTo(x, z, scale)
		return f(x)
	}
	result := func(z, r []float64, it int, ok bool) lmResult {
		x := make([]float64, n)
		floats.MulTo(x, z, scale)
		return lmResult{X: x, Residual: r, Iterations: it, Converged: ok}
	}

	r := eval(z)
	cost := floats.Dot(r, r)
	if math.Sqrt(cost) <= s.FTol {
		return result(z, r, 0, true)
	}

	m := len(r)
	lambda := lambdaInit
	for it := 1; it <= s.MaxIterations; it++ {
		jac := jacobian(eval, z, r)
		rv := mat.NewVecDense(m, r)

		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		var grad mat.VecDense
		grad.MulVec(jac.T(), rv)
		grad.ScaleVec(-1, &grad)

		accepted := false
		for !accepted && lambda <= lambdaMax {
			damped := mat.DenseCopyOf(&jtj)
			for i := 0; i < n; i++ {
				damped.Set(i, i, damped.At(i, i)+lambda)
			}

			var step mat.VecDense
			if err := step.SolveVec(damped, &grad); err != nil {
				lambda *= 10
				continue
			}

			trial := make([]float64, n)
			floats.AddTo(trial, z, step.RawVector().Data)
			rt := eval(trial)
			ct := floats.Dot(rt, rt)
			if !(ct < cost) {
				lambda *= 10
				continue
			}

			accepted = true
			lambda = math.Max(lambda/10, lambdaMin)
			stepMax := floats.Norm(step.RawVector().Data, math.Inf(1))
			z, r, cost = trial, rt, ct

			if math.Sqrt(cost) <= s.FTol || stepMax <= s.XTol {
				return result(z, r, it, true)
			}
		}
		if !accepted {
			// No damped step lowers the cost: z is a local minimum to
			// working precision.
			return result(z, r, it, true)
		}
	}
	return result(z, r, s.MaxIterations, false)
}

// jacobian returns the forward-difference Jacobian of f at z, where r is
// f(z).
func jacobian(f residualFunc, z, r []float64) *mat.Dense {
	m, n := len(r), len(z)
	jac := mat.NewDense(m, n, nil)
	probe := append([]float64(nil), z...)
	for j := 0; j < n; j++ {
		h := fdStep * math.Max(math.Abs(z[j]), 1)
		probe[j] = z[j] + h
		rj := f(probe)
		probe[j] = z[j]
		for i := 0; i < m; i++ {
			jac.Set(i, j, (rj[i]-r[i])/h)
		}
	}
	return jac
}
