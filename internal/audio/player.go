// Package audio plays the game's sound cues.
//
// Gameplay talks to the Player interface only. Playback is fire-and-forget
// except for tracked sounds, which return a Handle so a later event can cut
// them short.
package audio

// Cue names a sound effect.
type Cue int

const (
	CueSwing Cue = iota
	CueHit
	CueResult
	CueFin
	CueMusic
)

var cueNames = [...]string{"swing", "hit", "result", "fin", "music"}

func (c Cue) String() string {
	if int(c) < len(cueNames) {
		return cueNames[c]
	}
	return "unknown"
}

// ParseCue maps a cue name back to its value.
func ParseCue(name string) (Cue, bool) {
	for i, n := range cueNames {
		if n == name {
			return Cue(i), true
		}
	}
	return 0, false
}

// Handle controls a tracked sound.
type Handle interface {
	Stop()
}

// Player is the sound port used by the game.
type Player interface {
	// Play starts a one-shot cue at the given volume (0..1).
	Play(c Cue, volume float64)
	// PlayTracked starts a one-shot cue and returns a handle to stop it.
	// done runs once when the sound finishes or is stopped.
	PlayTracked(c Cue, volume float64, done func()) Handle
	// StartMusic starts the looping background track if it is not running.
	StartMusic(volume float64)
	PauseMusic()
	ResumeMusic()
	SetMuted(muted bool)
	Muted() bool
	Close() error
}

type nopHandle struct{}

func (nopHandle) Stop() {}

// Null discards all sound. It is used for SSH sessions and when no audio
// device is available.
type Null struct {
	muted bool
}

// NewNull returns a silent player.
func NewNull() *Null {
	return &Null{}
}

func (n *Null) Play(Cue, float64) {}

func (n *Null) PlayTracked(Cue, float64, func()) Handle {
	return nopHandle{}
}

func (n *Null) StartMusic(float64) {}
func (n *Null) PauseMusic() {}
func (n *Null) ResumeMusic() {}
func (n *Null) SetMuted(muted bool) { n.muted = muted }
func (n *Null) Muted() bool { return n.muted }
func (n *Null) Close() error { return nil }

var (
	_ Player = (*Null)(nil)
	_ Player = (*Recorder)(nil)
)
