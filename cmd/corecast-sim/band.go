package main

import (
	"math"
	"math/cmplx"
	"math/rand/v2"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/corecast/client/audio"
)

// Station is a simulated carrier. Tuning onto it yields a tone of Pitch Hz.
type Station struct {
	Freq  float64
	Level float64 // dB above the noise floor
	Pitch float64
}

var defaultStations = []Station{
	{Freq: 100.3e6, Level: 45, Pitch: 330},
	{Freq: 100.9e6, Level: 30, Pitch: 440},
	{Freq: 101.1e6, Level: 55, Pitch: 523.25},
	{Freq: 101.7e6, Level: 38, Pitch: 660},
}

// Band synthesises what a receiver would see across a span.
type Band struct {
	Stations []Station
	NoiseDb  float64
	rng      *rand.Rand
}

func NewBand(stations []Station, noiseDb float64, seed uint64) *Band {
	return &Band{
		Stations: stations,
		NoiseDb:  noiseDb,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Spectrum returns bins dB values covering [minHz, maxHz], lowest frequency
// first. Carriers are mixed into complex baseband at the span centre,
// windowed with Hann and transformed.
func (b *Band) Spectrum(minHz, maxHz float64, bins int) []float64 {
	if bins <= 0 || !(maxHz > minHz) {
		return nil
	}
	rate := maxHz - minHz
	centre := (minHz + maxHz) / 2
	noise := math.Pow(10, b.NoiseDb/20)

	x := make([]complex128, bins)
	for n := range x {
		x[n] = complex(b.rng.NormFloat64()*noise, b.rng.NormFloat64()*noise)
	}
	for _, st := range b.Stations {
		if st.Freq < minHz || st.Freq > maxHz {
			continue
		}
		amp := noise * math.Pow(10, st.Level/20)
		w := 2 * math.Pi * (st.Freq - centre) / rate
		phase := b.rng.Float64() * 2 * math.Pi
		for n := range x {
			x[n] += cmplx.Rect(amp, w*float64(n)+phase)
		}
	}
	for n, c := range window.Hann(bins) {
		x[n] *= complex(c, 0)
	}

	X := fft.FFT(x)
	out := make([]float64, bins)
	half := bins / 2
	for k := range out {
		// Shift so bin 0 is the lowest frequency.
		v := X[(k+half)%bins]
		p := real(v)*real(v) + imag(v)*imag(v)
		out[k] = 10 * math.Log10(p/float64(bins*bins)+1e-20)
	}
	return out
}

// Audio returns one chunk of demodulated audio for a receiver tuned to freq
// with bandwidth bw. t is the stream time of the first sample in seconds.
func (b *Band) Audio(freq, bw float64, t float64, samples int) []float32 {
	out := make([]float32, samples)
	tone, level := 0.0, 0.0
	for _, st := range b.Stations {
		if math.Abs(st.Freq-freq) <= bw/2 {
			tone, level = st.Pitch, 0.3
			break
		}
	}
	for n := range out {
		ts := t + float64(n)/audio.SampleRate
		v := 0.02 * b.rng.NormFloat64()
		if tone > 0 {
			v = level*math.Sin(2*math.Pi*tone*ts) + 0.005*b.rng.NormFloat64()
		}
		out[n] = float32(v)
	}
	return out
}
