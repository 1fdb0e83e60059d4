package gabor

import (
	"errors"
	"fmt"
	"math"
)

// Phase is the phase offset ψ of every kernel in a bank.
const Phase = math.Pi / 2

var (
	// ErrInvalidParams is wrapped by every parameter validation failure.
	ErrInvalidParams = errors.New("invalid gabor parameters")

	// ErrEmptySource is returned when the image to filter is nil or has no pixels.
	ErrEmptySource = errors.New("empty source image")
)

// Params describes a Gabor filter bank.
//
// The zero value is not usable; start from DefaultParams and override fields.
type Params struct {
	// KernelSize is the width and height of every kernel in pixels. Must be odd.
	KernelSize int `json:"kernel_size"`

	// Orientations is the number K of kernels in the bank.
	Orientations int `json:"orientations"`

	// Sigma is the standard deviation of the Gaussian envelope.
	Sigma float64 `json:"sigma"`

	// Theta is the orientation in radians of kernel 0.
	Theta float64 `json:"theta"`

	// Lambda is the wavelength of the sinusoidal carrier in pixels.
	Lambda float64 `json:"lambda"`

	// Gamma is the spatial aspect ratio of the envelope (1 = circular).
	Gamma float64 `json:"gamma"`
}

// DefaultParams returns the parameters used by the command line tool when no
// flag overrides them.
func DefaultParams() Params {
	return Params{
		KernelSize:   15,
		Orientations: 8,
		Sigma:        4,
		Theta:        0,
		Lambda:       10.0,
		Gamma:        0.5,
	}
}

// Validate reports the first invalid field as an error wrapping ErrInvalidParams.
func (p Params) Validate() error {
	switch {
	case p.Orientations <= 0:
		return fmt.Errorf("%w: orientation count must be positive, got %d", ErrInvalidParams, p.Orientations)
	case p.KernelSize <= 0:
		return fmt.Errorf("%w: kernel size must be positive, got %d", ErrInvalidParams, p.KernelSize)
	case p.KernelSize%2 == 0:
		return fmt.Errorf("%w: kernel size must be odd, got %d", ErrInvalidParams, p.KernelSize)
	case !positive(p.Sigma):
		return fmt.Errorf("%w: sigma must be positive, got %g", ErrInvalidParams, p.Sigma)
	case !positive(p.Lambda):
		return fmt.Errorf("%w: lambda must be positive, got %g", ErrInvalidParams, p.Lambda)
	case !positive(p.Gamma):
		return fmt.Errorf("%w: gamma must be positive, got %g", ErrInvalidParams, p.Gamma)
	case math.IsNaN(p.Theta) || math.IsInf(p.Theta, 0):
		return fmt.Errorf("%w: theta must be finite, got %g", ErrInvalidParams, p.Theta)
	}
	return nil
}

// Orientation returns the angle of kernel i in radians.
func (p Params) Orientation(i int) float64 {
	return p.Theta + float64(i)*math.Pi/float64(p.Orientations)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
