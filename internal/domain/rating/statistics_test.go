package rating

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTruncatedGaussianHelpers(t *testing.T) {
	Convey("Given the truncated Gaussian helpers", t, func() {
		Convey("Then v is positive and w lies in (0, 1) for ordinary inputs", func() {
			for _, x := range []float64{-2, -0.5, 0, 0.5, 2} {
				So(v(x, 0.1), ShouldBeGreaterThan, 0)
				So(w(x, 0.1), ShouldBeGreaterThan, 0)
				So(w(x, 0.1), ShouldBeLessThan, 1)
			}
		})

		Convey("Then v falls back to the linear tail far below zero", func() {
			So(v(-40, 0), ShouldEqual, 40)
			So(w(-40, 0), ShouldEqual, 1)
		})

		Convey("Then the draw helpers are odd and even in x", func() {
			So(vt(0.7, 0.2), ShouldAlmostEqual, -vt(-0.7, 0.2), 1e-12)
			So(wt(0.7, 0.2), ShouldAlmostEqual, wt(-0.7, 0.2), 1e-12)
			So(vt(0, 0.2), ShouldAlmostEqual, 0, 1e-12)
		})

		Convey("Then the normal helpers agree with known values", func() {
			So(phi(0), ShouldAlmostEqual, 0.5, 1e-12)
			So(pdf(0), ShouldAlmostEqual, 1/math.Sqrt(2*math.Pi), 1e-12)
			So(phiInv(0.5), ShouldAlmostEqual, 0, 1e-9)
		})
	})
}
