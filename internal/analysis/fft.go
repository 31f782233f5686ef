package analysis

import (
	"math"
	"math/cmplx"
)

// FFT is a radix-2 transform. len(data) must be a power of two; use
// PadPow2 first otherwise.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

// PadPow2 returns data zero-padded to the next power of two.
func PadPow2(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)
	return padded
}

func PowerSpectrum(data []float64) []float64 {
	fft := FFT(PadPow2(data))
	ps := make([]float64, len(fft)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}

	return ps
}

// DominantFrequency returns the strongest non-DC frequency in samples taken
// every dt seconds. The mean is removed first so a resting offset does not
// mask the oscillation.
func DominantFrequency(samples []float64, dt float64) float64 {
	if len(samples) < 4 || dt <= 0 {
		return 0
	}
	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))

	centred := make([]float64, len(samples))
	for i, v := range samples {
		centred[i] = v - mean
	}

	padded := PadPow2(centred)
	ps := PowerSpectrum(padded)

	maxIdx := 0
	maxPower := 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	return float64(maxIdx) / (float64(len(padded)) * dt)
}

// BouncePeriods returns the time between successive upward crossings of
// vy through zero, which for a particle on the floor is its bounce period.
func BouncePeriods(times, vy []float64) []float64 {
	periods := make([]float64, 0)
	last := math.NaN()
	for i := 1; i < len(vy) && i < len(times); i++ {
		if vy[i-1] < 0 && vy[i] >= 0 {
			if !math.IsNaN(last) {
				periods = append(periods, times[i]-last)
			}
			last = times[i]
		}
	}
	return periods
}
