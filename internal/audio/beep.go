package audio

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
)

const defaultSampleRate = beep.SampleRate(44100)

// BeepOptions configures the speaker backend.
type BeepOptions struct {
	SampleRate   int
	MasterVolume float64
	MusicVolume  float64
	Muted        bool
	// Overrides maps cues to OGG Vorbis files used instead of the
	// synthesized sounds. Files that fail to load fall back to them.
	Overrides map[Cue]string
	Logger    *log.Logger
}

// BeepPlayer plays cues through the system speaker.
type BeepPlayer struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	mixer  *beep.Mixer
	sounds map[Cue]*beep.Buffer
	music  *beep.Ctrl
	paused bool
	master float64
	musicV float64
	muted  bool
	logger *log.Logger
}

// NewBeepPlayer initializes the speaker and prepares every cue.
func NewBeepPlayer(opts BeepOptions) (*BeepPlayer, error) {
	rate := defaultSampleRate
	if opts.SampleRate > 0 {
		rate = beep.SampleRate(opts.SampleRate)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.MasterVolume <= 0 {
		opts.MasterVolume = 1
	}
	if opts.MusicVolume <= 0 {
		opts.MusicVolume = 1
	}

	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("audio: cannot init speaker: %w", err)
	}

	p := &BeepPlayer{
		rate:   rate,
		mixer:  &beep.Mixer{},
		sounds: make(map[Cue]*beep.Buffer),
		master: opts.MasterVolume,
		musicV: opts.MusicVolume,
		muted:  opts.Muted,
		logger: logger,
	}
	for _, c := range []Cue{CueSwing, CueHit, CueResult, CueFin, CueMusic} {
		p.sounds[c] = p.loadCue(c, opts.Overrides[c])
	}

	speaker.Play(p.mixer)
	return p, nil
}

func (p *BeepPlayer) loadCue(c Cue, path string) *beep.Buffer {
	if path != "" {
		buf, err := decodeFile(path, p.rate)
		if err == nil {
			p.logger.Debug("loaded sound override", "cue", c, "path", path)
			return buf
		}
		p.logger.Warn("sound override unavailable, using built-in", "cue", c, "path", path, "error", err)
	}
	return render(synthesize(c, p.rate), p.rate)
}

// decodeFile reads an OGG Vorbis file fully into memory at the target rate.
func decodeFile(path string, rate beep.SampleRate) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	streamer, format, err := vorbis.Decode(f)
	if err != nil {
		f.Close() //nolint:errcheck
		return nil, err
	}
	defer streamer.Close() //nolint:errcheck

	var s beep.Streamer = streamer
	if format.SampleRate != rate {
		s = beep.Resample(4, format.SampleRate, rate, streamer)
	}
	buf := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	buf.Append(s)
	return buf, nil
}

func (p *BeepPlayer) effective(volume float64) float64 {
	if p.muted {
		return 0
	}
	return volume * p.master
}

type ctrlHandle struct {
	once sync.Once
	ctrl *beep.Ctrl
	done func()
}

func (h *ctrlHandle) Stop() {
	h.once.Do(func() {
		speaker.Lock()
		h.ctrl.Streamer = nil
		speaker.Unlock()
		if h.done != nil {
			h.done()
		}
	})
}

func (p *BeepPlayer) start(c Cue, volume float64, done func()) Handle {
	p.mu.Lock()
	buf := p.sounds[c]
	vol := p.effective(volume)
	p.mu.Unlock()

	if buf == nil {
		return nopHandle{}
	}
	h := &ctrlHandle{done: done}
	body := withVolume(buf.Streamer(0, buf.Len()), vol)
	h.ctrl = &beep.Ctrl{Streamer: beep.Seq(body, beep.Callback(func() {
		// Runs on the speaker goroutine; notify outside the lock
		go h.Stop()
	}))}

	speaker.Lock()
	p.mixer.Add(h.ctrl)
	speaker.Unlock()
	return h
}

// Play starts a one-shot cue.
func (p *BeepPlayer) Play(c Cue, volume float64) {
	p.start(c, volume, nil)
}

// PlayTracked starts a cue that can be stopped early.
func (p *BeepPlayer) PlayTracked(c Cue, volume float64, done func()) Handle {
	return p.start(c, volume, done)
}

// StartMusic starts the background loop once.
func (p *BeepPlayer) StartMusic(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.music != nil {
		return
	}
	buf := p.sounds[CueMusic]
	if buf == nil {
		return
	}
	loop := beep.Loop(-1, buf.Streamer(0, buf.Len()))
	p.music = &beep.Ctrl{
		Streamer: withVolume(loop, volume*p.master*p.musicV),
		Paused:   p.muted,
	}
	p.paused = false

	speaker.Lock()
	p.mixer.Add(p.music)
	speaker.Unlock()
}

func (p *BeepPlayer) setMusicPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.music == nil {
		return
	}
	p.paused = paused
	speaker.Lock()
	p.music.Paused = paused || p.muted
	speaker.Unlock()
}

func (p *BeepPlayer) PauseMusic() { p.setMusicPaused(true) }
func (p *BeepPlayer) ResumeMusic() { p.setMusicPaused(false) }

// SetMuted silences new cues and pauses the music.
func (p *BeepPlayer) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
	if p.music != nil {
		speaker.Lock()
		p.music.Paused = muted || p.paused
		speaker.Unlock()
	}
}

func (p *BeepPlayer) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// Close stops all sound and releases the device.
func (p *BeepPlayer) Close() error {
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	return nil
}

var _ Player = (*BeepPlayer)(nil)

// Open returns a speaker-backed player, or a Null player when the device
// cannot be opened or audio is disabled.
func Open(enabled bool, opts BeepOptions) Player {
	if !enabled {
		return &Null{muted: opts.Muted}
	}
	p, err := NewBeepPlayer(opts)
	if err != nil {
		if opts.Logger != nil {
			opts.Logger.Warn("audio disabled", "error", err)
		}
		return &Null{muted: opts.Muted}
	}
	return p
}
