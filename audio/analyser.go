package audio

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

var ErrFFTSize = errors.New("fft size must be a power of two in [32, 32768]")

type AnalyserOptions struct {
	FFTSize     int
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64
}

func DefaultAnalyserOptions() AnalyserOptions {
	return AnalyserOptions{
		FFTSize:     32,
		Smoothing:   0.8,
		MinDecibels: -100,
		MaxDecibels: -30,
	}
}

// Analyser computes a smoothed magnitude spectrum over the most recent
// FFTSize samples, reported as bytes on a decibel scale the way browser
// analyser nodes do. Write may be called from the audio goroutine while the
// render thread reads.
type Analyser struct {
	opts   AnalyserOptions
	fft    *fourier.FFT
	window []float64

	mu      sync.Mutex
	ring    []float64
	head    int
	written int

	// owned by the reader
	frame    []float64
	coeffs   []complex128
	smoothed []float64
	bytes    []uint8
}

func NewAnalyser(opts AnalyserOptions) (*Analyser, error) {
	n := opts.FFTSize
	if n < 32 || n > 32768 || bits.OnesCount(uint(n)) != 1 {
		return nil, fmt.Errorf("%w: %d", ErrFFTSize, n)
	}
	if opts.MinDecibels >= opts.MaxDecibels {
		return nil, fmt.Errorf("min decibels %v must be below max decibels %v", opts.MinDecibels, opts.MaxDecibels)
	}
	if opts.Smoothing < 0 || opts.Smoothing > 1 {
		return nil, fmt.Errorf("smoothing %v outside [0, 1]", opts.Smoothing)
	}

	a := &Analyser{
		opts:     opts,
		fft:      fourier.NewFFT(n),
		window:   blackman(n),
		ring:     make([]float64, n),
		frame:    make([]float64, n),
		smoothed: make([]float64, n/2),
		bytes:    make([]uint8, n/2),
	}
	return a, nil
}

// FrequencyBinCount is half the FFT size.
func (a *Analyser) FrequencyBinCount() int {
	return a.opts.FFTSize / 2
}

// Write feeds stereo samples; channels are mixed down to mono.
func (a *Analyser) Write(samples [][2]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, s := range samples {
		a.ring[a.head] = (s[0] + s[1]) / 2
		a.head = (a.head + 1) % len(a.ring)
	}
	a.written += len(samples)
}

// Reset clears buffered samples and smoothing history.
func (a *Analyser) Reset() {
	a.mu.Lock()
	clear(a.ring)
	a.head, a.written = 0, 0
	a.mu.Unlock()

	clear(a.smoothed)
}

// ByteFrequencyData fills dst with up to FrequencyBinCount bins in [0, 255]
// and returns the number written. Each call advances the smoothing.
func (a *Analyser) ByteFrequencyData(dst []uint8) int {
	a.analyse()
	return copy(dst, a.bytes)
}

// AverageFrequency is the mean of the byte frequency bins.
func (a *Analyser) AverageFrequency() float64 {
	a.analyse()

	sum := 0
	for _, b := range a.bytes {
		sum += int(b)
	}
	return float64(sum) / float64(len(a.bytes))
}

func (a *Analyser) analyse() {
	n := len(a.frame)

	a.mu.Lock()
	for i := range n {
		a.frame[i] = a.ring[(a.head+i)%n] * a.window[i]
	}
	a.mu.Unlock()

	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)

	k := a.opts.Smoothing
	rangeScale := 255 / (a.opts.MaxDecibels - a.opts.MinDecibels)

	for i := range a.smoothed {
		magnitude := cmplxAbs(a.coeffs[i]) / float64(n)

		s := k*a.smoothed[i] + (1-k)*magnitude
		if math.IsNaN(s) || math.IsInf(s, 0) {
			s = 0
		}
		a.smoothed[i] = s

		db := 20 * math.Log10(s)
		v := math.Floor(rangeScale * (db - a.opts.MinDecibels))
		switch {
		case math.IsNaN(v) || v < 0:
			a.bytes[i] = 0
		case v > 255:
			a.bytes[i] = 255
		default:
			a.bytes[i] = uint8(v)
		}
	}
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func blackman(n int) []float64 {
	const (
		alpha = 0.16
		a0    = 0.5 * (1 - alpha)
		a1    = 0.5
		a2    = 0.5 * alpha
	)

	w := make([]float64, n)
	for i := range w {
		x := float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(2*math.Pi*x) + a2*math.Cos(4*math.Pi*x)
	}
	return w
}
