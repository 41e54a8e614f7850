package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

type oscillator struct {
	freq     float64
	sweep    float64 // Hz per second
	phase    float64
	length   int
	position int
	wave     Wave
	rate     beep.SampleRate
	rng      *rand.Rand
}

// newOscillator generates a wave for the given duration. sweep bends the
// frequency linearly over time.
func newOscillator(freq, sweep float64, d time.Duration, wave Wave, rate beep.SampleRate, seed int64) *oscillator {
	return &oscillator{
		freq:   freq,
		sweep:  sweep,
		length: rate.N(d),
		wave:   wave,
		rate:   rate,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.length {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			val = 1
			if o.phase >= 0.5 {
				val = -1
			}
		case WaveSaw:
			val = 2 * (o.phase - 0.5)
		case WaveNoise:
			val = o.rng.Float64()*2 - 1
		}
		samples[i][0] = val
		samples[i][1] = val

		t := float64(o.position) / float64(o.rate)
		o.phase += math.Max(o.freq+o.sweep*t, 0) / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope shapes a stream with a linear attack and an exponential decay.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	decay    float64 // per-second decay rate
	rate     beep.SampleRate
}

func newEnvelope(s beep.Streamer, attack time.Duration, decay float64, rate beep.SampleRate) *envelope {
	return &envelope{streamer: s, attack: rate.N(attack), decay: decay, rate: rate}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.position < e.attack && e.attack > 0 {
			vol = float64(e.position) / float64(e.attack)
		}
		t := float64(e.position) / float64(e.rate)
		vol *= math.Exp(-t * e.decay)
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// withVolume scales a stream linearly; zero or less is silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

func note(freq float64, d time.Duration, wave Wave, decay float64, rate beep.SampleRate) beep.Streamer {
	osc := newOscillator(freq, 0, d, wave, rate, 1)
	return newEnvelope(osc, 5*time.Millisecond, decay, rate)
}

// synthesize builds the built-in sound for a cue.
func synthesize(c Cue, rate beep.SampleRate) beep.Streamer {
	switch c {
	case CueSwing:
		// Airy whoosh rising in pitch
		noise := newEnvelope(newOscillator(0, 0, 220*time.Millisecond, WaveNoise, rate, 7), 40*time.Millisecond, 9, rate)
		tone := newEnvelope(newOscillator(180, 900, 220*time.Millisecond, WaveSine, rate, 1), 30*time.Millisecond, 10, rate)
		return beep.Mix(withVolume(noise, 0.5), withVolume(tone, 0.25))
	case CueHit:
		// Wet thump with a crunchy top
		thump := newEnvelope(newOscillator(110, -160, 300*time.Millisecond, WaveSine, rate, 1), 2*time.Millisecond, 12, rate)
		crunch := newEnvelope(newOscillator(0, 0, 160*time.Millisecond, WaveNoise, rate, 11), time.Millisecond, 22, rate)
		return beep.Mix(withVolume(thump, 0.9), withVolume(crunch, 0.45))
	case CueResult:
		return beep.Seq(
			withVolume(note(523.25, 160*time.Millisecond, WaveSquare, 4, rate), 0.3),
			withVolume(note(659.25, 160*time.Millisecond, WaveSquare, 4, rate), 0.3),
			withVolume(note(783.99, 160*time.Millisecond, WaveSquare, 4, rate), 0.3),
			withVolume(note(1046.5, 600*time.Millisecond, WaveSquare, 3, rate), 0.3),
		)
	case CueFin:
		bell := note(1318.5, 1200*time.Millisecond, WaveSine, 3, rate)
		over := note(2637, 900*time.Millisecond, WaveSine, 5, rate)
		sparkle := newEnvelope(newOscillator(0, 0, 500*time.Millisecond, WaveNoise, rate, 3), 20*time.Millisecond, 8, rate)
		return beep.Mix(withVolume(bell, 0.6), withVolume(over, 0.25), withVolume(sparkle, 0.1))
	case CueMusic:
		return musicPhrase(rate)
	}
	return beep.Silence(0)
}

// musicPhrase is a short bouncy loop for the background track.
func musicPhrase(rate beep.SampleRate) beep.Streamer {
	const beat = 200 * time.Millisecond
	melody := []float64{523.25, 659.25, 783.99, 659.25, 587.33, 698.46, 880, 698.46}
	bass := []float64{130.81, 130.81, 174.61, 196}

	var lead []beep.Streamer
	for _, f := range melody {
		lead = append(lead, withVolume(note(f, beat, WaveSquare, 6, rate), 0.18))
	}
	var low []beep.Streamer
	for _, f := range bass {
		low = append(low, withVolume(note(f, 2*beat, WaveSaw, 2, rate), 0.22))
	}
	return beep.Mix(beep.Seq(lead...), beep.Seq(low...))
}

// render buffers a finite stream so it can be replayed and looped.
func render(s beep.Streamer, rate beep.SampleRate) *beep.Buffer {
	buf := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	buf.Append(s)
	return buf
}
