package rating

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const tinyTail = 2.220446049250313e-16 // float64 machine epsilon

func phi(x float64) float64    { return distuv.UnitNormal.CDF(x) }
func pdf(x float64) float64    { return distuv.UnitNormal.Prob(x) }
func phiInv(p float64) float64 { return distuv.UnitNormal.Quantile(p) }

// v is the mean shift of a truncated Gaussian for a decisive result.
func v(x, t float64) float64 {
	xt := x - t
	denom := phi(xt)
	if denom < tinyTail {
		return -xt
	}
	return pdf(xt) / denom
}

// w is the variance shrink of a truncated Gaussian for a decisive result.
func w(x, t float64) float64 {
	xt := x - t
	denom := phi(xt)
	if denom < tinyTail {
		if x < 0 {
			return 1
		}
		return 0
	}
	vx := v(x, t)
	return vx * (vx + xt)
}

// vt is the mean shift for a drawn result.
func vt(x, t float64) float64 {
	xx := math.Abs(x)
	b := phi(t-xx) - phi(-t-xx)
	if b < 1e-5 {
		if x < 0 {
			return -x - t
		}
		return -x + t
	}
	a := pdf(-t-xx) - pdf(t-xx)
	if x < 0 {
		return -a / b
	}
	return a / b
}

// wt is the variance shrink for a drawn result.
func wt(x, t float64) float64 {
	xx := math.Abs(x)
	b := phi(t-xx) - phi(-t-xx)
	if b < tinyTail {
		return 1
	}
	vtx := vt(x, t)
	return ((t-xx)*pdf(t-xx)+(t+xx)*pdf(-t-xx))/b + vtx*vtx
}
