package gabor

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Kernel is one oriented Gabor kernel of a bank.
type Kernel struct {
	// Theta is the carrier orientation in radians.
	Theta float64

	// Weights is a KernelSize x KernelSize matrix of coefficients.
	Weights *mat.Dense
}

// Size returns the kernel width (equal to its height).
func (k Kernel) Size() int {
	r, _ := k.Weights.Dims()
	return r
}

// NewKernel generates a single Gabor kernel oriented at theta.
//
// For offsets x, y in [-n/2, n/2] the coefficient is
//
//	xr = x*cos(θ) + y*sin(θ)
//	yr = -x*sin(θ) + y*cos(θ)
//	v  = exp(-(xr² + γ²·yr²) / (2σ²)) · cos(2π·xr/λ + ψ)
//
// and is stored at row n/2-y, column n/2-x. The point-reflected layout keeps
// responses identical to those of OpenCV's getGaborKernel followed by filter2D.
//
// p must be valid; NewKernel does not call Validate.
func NewKernel(p Params, theta float64) Kernel {
	half := p.KernelSize / 2
	size := 2*half + 1

	sigmaX := p.Sigma
	sigmaY := p.Sigma / p.Gamma
	ex := -0.5 / (sigmaX * sigmaX)
	ey := -0.5 / (sigmaY * sigmaY)
	cscale := 2 * math.Pi / p.Lambda
	c, s := math.Cos(theta), math.Sin(theta)

	w := mat.NewDense(size, size, nil)
	for y := -half; y <= half; y++ {
		for x := -half; x <= half; x++ {
			xr := float64(x)*c + float64(y)*s
			yr := -float64(x)*s + float64(y)*c
			v := math.Exp(ex*xr*xr+ey*yr*yr) * math.Cos(cscale*xr+Phase)
			w.Set(half-y, half-x, v)
		}
	}

	return Kernel{Theta: theta, Weights: w}
}

// Kernels generates the K kernels of a bank in orientation order.
func Kernels(p Params) ([]Kernel, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	kernels := make([]Kernel, p.Orientations)
	for i := range kernels {
		kernels[i] = NewKernel(p, p.Orientation(i))
	}
	return kernels, nil
}
