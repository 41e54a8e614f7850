package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

func TestOscillatorRange(t *testing.T) {
	rate := beep.SampleRate(44100)

	for _, wave := range []Wave{WaveSine, WaveSquare, WaveSaw, WaveNoise} {
		osc := newOscillator(440, 200, 50*time.Millisecond, wave, rate, 1)
		samples := make([][2]float64, 512)
		n, ok := osc.Stream(samples)
		if !ok || n != 512 {
			t.Fatalf("wave %d: Stream = (%d, %v), expected (512, true)", wave, n, ok)
		}
		for i := 0; i < n; i++ {
			if v := samples[i][0]; v < -1 || v > 1 {
				t.Fatalf("wave %d: sample %d out of range: %f", wave, i, v)
			}
		}
	}
}

func TestOscillatorEnds(t *testing.T) {
	rate := beep.SampleRate(1000)
	osc := newOscillator(10, 0, 100*time.Millisecond, WaveSine, rate, 1)

	samples := make([][2]float64, 300)
	n, _ := osc.Stream(samples)
	if n != 100 {
		t.Errorf("streamed %d samples, expected 100", n)
	}
	if n, ok := osc.Stream(samples); n != 0 || ok {
		t.Errorf("drained oscillator returned (%d, %v)", n, ok)
	}
}

func TestSynthesizedCuesAreFinite(t *testing.T) {
	rate := beep.SampleRate(8000)

	for _, c := range []Cue{CueSwing, CueHit, CueResult, CueFin, CueMusic} {
		t.Run(c.String(), func(t *testing.T) {
			buf := render(synthesize(c, rate), rate)
			if buf.Len() == 0 {
				t.Fatal("cue rendered no samples")
			}
			if buf.Len() > rate.N(5*time.Second) {
				t.Errorf("cue is %d samples long, expected a short sound", buf.Len())
			}

			s := buf.Streamer(0, buf.Len())
			samples := make([][2]float64, buf.Len())
			n, _ := s.Stream(samples)
			peak := 0.0
			for i := 0; i < n; i++ {
				peak = math.Max(peak, math.Abs(samples[i][0]))
			}
			if peak == 0 {
				t.Error("cue is silent")
			}
		})
	}
}

func TestParseCue(t *testing.T) {
	for _, c := range []Cue{CueSwing, CueHit, CueResult, CueFin, CueMusic} {
		got, ok := ParseCue(c.String())
		if !ok || got != c {
			t.Errorf("ParseCue(%q) = %v, %v", c.String(), got, ok)
		}
	}
	if _, ok := ParseCue("bogus"); ok {
		t.Error("ParseCue should reject unknown names")
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	stoppedCalls := 0

	r.Play(CueSwing, 0.65)
	h := r.PlayTracked(CueResult, 0.9, func() { stoppedCalls++ })
	h.Stop()
	h.Stop()

	if r.Count(CueSwing) != 1 || r.Count(CueResult) != 1 {
		t.Errorf("played = %+v", r.Played())
	}
	if stoppedCalls != 1 || r.Stopped() != 1 {
		t.Errorf("Stop should run once, got callback=%d stopped=%d", stoppedCalls, r.Stopped())
	}

	r.StartMusic(0.35)
	r.PauseMusic()
	if r.MusicPlaying() {
		t.Error("music should be paused")
	}
	r.ResumeMusic()
	if !r.MusicPlaying() {
		t.Error("music should resume")
	}
}

func TestOpenDisabledIsNull(t *testing.T) {
	p := Open(false, BeepOptions{Muted: true})
	if _, ok := p.(*Null); !ok {
		t.Fatalf("Open(false) = %T, expected *Null", p)
	}
	if !p.Muted() {
		t.Error("Null should keep the mute flag")
	}
	p.PlayTracked(CueFin, 1, nil).Stop()
}
