package spectrum

import "fmt"

// splineTable computes natural-cubic-spline second derivatives for a table
// of ncol interleaved columns sampled on x. y and y2 are row-major with
// stride ncol; y2 must be allocated by the caller.
func splineTable(x, y []float64, ncol int, y2 []float64) error {
	n := len(x)
	if n < 2 {
		return fmt.Errorf("spline needs at least 2 points, got %d", n)
	}
	if len(y) != n*ncol || len(y2) != n*ncol {
		return fmt.Errorf("spline table size mismatch")
	}

	u := make([]float64, n*ncol)

	// natural boundary: zero second derivative at both ends
	for col := 0; col < ncol; col++ {
		y2[col] = 0.
		u[col] = 0.
	}

	for i := 1; i < n-1; i++ {
		sig := (x[i] - x[i-1]) / (x[i+1] - x[i-1])
		for col := 0; col < ncol; col++ {
			p := sig*y2[(i-1)*ncol+col] + 2.
			y2[i*ncol+col] = (sig - 1.) / p
			dy := (y[(i+1)*ncol+col]-y[i*ncol+col])/(x[i+1]-x[i]) -
				(y[i*ncol+col]-y[(i-1)*ncol+col])/(x[i]-x[i-1])
			u[i*ncol+col] = (6.*dy/(x[i+1]-x[i-1]) - sig*u[(i-1)*ncol+col]) / p
		}
	}

	for col := 0; col < ncol; col++ {
		y2[(n-1)*ncol+col] = 0.
	}

	for i := n - 2; i >= 0; i-- {
		for col := 0; col < ncol; col++ {
			y2[i*ncol+col] = y2[i*ncol+col]*y2[(i+1)*ncol+col] + u[i*ncol+col]
		}
	}

	return nil
}

// splineAt interpolates every column of the table at point xv, writing one
// value per column into out. xv must lie within [x[0], x[n-1]].
func splineAt(x, y, y2 []float64, ncol int, xv float64, out []float64) {
	lo, hi := 0, len(x)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if x[mid] > xv {
			hi = mid
		} else {
			lo = mid
		}
	}

	h := x[hi] - x[lo]
	a := (x[hi] - xv) / h
	b := (xv - x[lo]) / h

	for col := 0; col < ncol; col++ {
		out[col] = a*y[lo*ncol+col] + b*y[hi*ncol+col] +
			((a*a*a-a)*y2[lo*ncol+col]+(b*b*b-b)*y2[hi*ncol+col])*h*h/6.
	}
}
