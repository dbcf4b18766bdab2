package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns |X_k| for k = 0..n/2 of the mean-removed series.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	mean := stat.Mean(data, nil)
	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	coeff := fft.FFTReal(centred)
	ps := make([]float64, len(coeff)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(coeff[i])
	}
	return ps
}

// DominantFrequency finds the strongest non-zero frequency, in Hz, of a
// series sampled every interval seconds. It returns 0 when the series is
// flat or too short.
func DominantFrequency(data []float64, interval float64) (freq, power float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || interval <= 0 {
		return 0, 0
	}
	best := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > ps[best] || best == 0 {
			best = i
		}
	}
	if ps[best] == 0 {
		return 0, 0
	}
	return float64(best) / (float64(len(data)) * interval), ps[best]
}
