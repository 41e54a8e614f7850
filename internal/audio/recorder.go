package audio

import "sync"

// Played is one recorded Play or PlayTracked call.
type Played struct {
	Cue     Cue
	Volume  float64
	Tracked bool
}

// Recorder is a Player that remembers what it was asked to do.
// Tests and the headless replay tool use it.
type Recorder struct {
	mu           sync.Mutex
	played       []Played
	musicPlaying bool
	musicStarts  int
	stopped      int
	muted        bool
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

type recordedHandle struct {
	r    *Recorder
	once sync.Once
	done func()
}

func (h *recordedHandle) Stop() {
	h.once.Do(func() {
		h.r.mu.Lock()
		h.r.stopped++
		h.r.mu.Unlock()
		if h.done != nil {
			h.done()
		}
	})
}

func (r *Recorder) Play(c Cue, volume float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, Played{Cue: c, Volume: volume})
}

func (r *Recorder) PlayTracked(c Cue, volume float64, done func()) Handle {
	r.mu.Lock()
	r.played = append(r.played, Played{Cue: c, Volume: volume, Tracked: true})
	r.mu.Unlock()
	return &recordedHandle{r: r, done: done}
}

func (r *Recorder) StartMusic(float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.musicPlaying {
		r.musicStarts++
	}
	r.musicPlaying = true
}

func (r *Recorder) PauseMusic() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.musicPlaying = false
}

func (r *Recorder) ResumeMusic() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.musicPlaying = true
}

func (r *Recorder) SetMuted(muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.muted = muted
}

func (r *Recorder) Muted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.muted
}

func (r *Recorder) Close() error { return nil }

// Played returns a copy of everything played so far.
func (r *Recorder) Played() []Played {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Played(nil), r.played...)
}

// Count returns how many times c was played.
func (r *Recorder) Count(c Cue) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.played {
		if p.Cue == c {
			n++
		}
	}
	return n
}

// MusicPlaying reports whether background music is running.
func (r *Recorder) MusicPlaying() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.musicPlaying
}

// Stopped returns how many tracked sounds were stopped.
func (r *Recorder) Stopped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}
