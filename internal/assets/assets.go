// Package assets loads the model descriptors and optional sound files the
// game needs before its first tick.
//
// Descriptors are small YAML files. A user directory can shadow any of the
// embedded ones by dropping a file with the same name into it.
package assets

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/melon-smash/internal/audio"
)

//go:embed data/*.yaml
var embedded embed.FS

// ErrNotFound is returned when no layer provides the requested file.
var ErrNotFound = fmt.Errorf("assets: not found: %w", fs.ErrNotExist)

// Model describes a mesh by its unscaled bounding box.
type Model struct {
	Name  string     `yaml:"name"`
	Size  [3]float64 `yaml:"size"`
	Glyph string     `yaml:"glyph"`

	// Clips maps animation names to their length in seconds at scale 1.
	Clips map[string]float64 `yaml:"clips"`
}

// Scaled returns the bounding box size at the given uniform scale.
func (m Model) Scaled(scale float64) mgl64.Vec3 {
	return mgl64.Vec3{m.Size[0] * scale, m.Size[1] * scale, m.Size[2] * scale}
}

// Radius is the collision radius of a sphere fitted to the horizontal extent.
func (m Model) Radius(scale float64) float64 {
	s := m.Scaled(scale)
	return math.Max(s.X(), s.Z()) / 2
}

// ClipDuration reports how long the named clip plays at timeScale.
// ok is false when the model has no such clip.
func (m Model) ClipDuration(name string, timeScale float64) (d float64, ok bool) {
	length := m.Clips[name]
	if length <= 0 {
		return 0, false
	}
	if timeScale <= 0 {
		timeScale = 1
	}
	return length / math.Max(timeScale, 1e-4), true
}

// Rune returns the first rune of the glyph, or fallback when none is set.
func (m Model) Rune(fallback rune) rune {
	for _, r := range m.Glyph {
		return r
	}
	return fallback
}

// Avatar is the player's model, or a placeholder when it failed to load.
type Avatar struct {
	Model       Model
	Placeholder bool
}

// Height is the standing height at the given scale, never below 1.
func (a Avatar) Height(scale float64) float64 {
	return math.Max(1, a.Model.Size[1]*scale)
}

// BatPivot places the bat pivot in player space for an avatar of height h.
func BatPivot(h float64) mgl64.Vec3 {
	return mgl64.Vec3{0, h * 0.55, math.Max(1.6, h*0.08+1.2)}
}

// Bundle is everything loaded up front.
type Bundle struct {
	Watermelon Model
	Broken     Model
	Bat        Model
	Tree       *Model // nil when scenery is unavailable
	Avatar     Avatar
	Sounds     map[audio.Cue]string
}

// placeholderAvatar is a capsule the height of the default hero.
var placeholderAvatar = Model{Name: "placeholder", Size: [3]float64{0.5, 2, 0.3}, Glyph: "A"}

// Loader resolves files through a stack of filesystems, first match wins.
type Loader struct {
	layers   []fs.FS
	soundDir string
	logger   *log.Logger
}

// NewLoader builds a loader. dir, when set, shadows the embedded data;
// soundDir, when set, is scanned for <cue>.ogg overrides.
func NewLoader(dir, soundDir string, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	var layers []fs.FS
	if dir != "" {
		layers = append(layers, os.DirFS(dir))
	}
	data, _ := fs.Sub(embedded, "data")
	layers = append(layers, data)
	return &Loader{layers: layers, soundDir: soundDir, logger: logger}
}

// NewLoaderFS builds a loader over explicit layers.
func NewLoaderFS(logger *log.Logger, layers ...fs.FS) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{layers: layers, logger: logger}
}

// ReadFile returns the first layer's copy of name.
func (l *Loader) ReadFile(name string) ([]byte, error) {
	for _, layer := range l.layers {
		data, err := fs.ReadFile(layer, name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("assets: cannot read %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// LoadModel reads and decodes one descriptor.
func (l *Loader) LoadModel(name string) (Model, error) {
	data, err := l.ReadFile(name + ".yaml")
	if err != nil {
		return Model{}, err
	}
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Model{}, fmt.Errorf("assets: cannot decode %s: %w", name, err)
	}
	if m.Size[0] <= 0 || m.Size[1] <= 0 || m.Size[2] <= 0 {
		return Model{}, fmt.Errorf("assets: %s has an empty bounding box", name)
	}
	if m.Name == "" {
		m.Name = name
	}
	return m, nil
}

// Load fetches every asset concurrently and waits for all of them.
// Required models fail the batch; the avatar and scenery degrade.
func (l *Loader) Load(ctx context.Context) (*Bundle, error) {
	b := &Bundle{}
	g, ctx := errgroup.WithContext(ctx)

	required := []struct {
		name string
		dst  *Model
	}{
		{"watermelon", &b.Watermelon},
		{"watermelon_broken", &b.Broken},
		{"bat", &b.Bat},
	}
	for _, r := range required {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := l.LoadModel(r.name)
			if err != nil {
				return err
			}
			*r.dst = m
			return nil
		})
	}

	g.Go(func() error {
		m, err := l.LoadModel("hero")
		if err != nil {
			l.logger.Warn("avatar unavailable, using placeholder", "error", err)
			b.Avatar = Avatar{Model: placeholderAvatar, Placeholder: true}
			return nil
		}
		b.Avatar = Avatar{Model: m}
		return nil
	})

	g.Go(func() error {
		m, err := l.LoadModel("tree")
		if err != nil {
			l.logger.Debug("no scenery", "error", err)
			return nil
		}
		b.Tree = &m
		return nil
	})

	g.Go(func() error {
		b.Sounds = DiscoverSounds(l.soundDir)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return b, nil
}

// DiscoverSounds maps each cue to <dir>/<cue>.ogg when that file exists.
func DiscoverSounds(dir string) map[audio.Cue]string {
	found := make(map[audio.Cue]string)
	if dir == "" {
		return found
	}
	for _, c := range []audio.Cue{audio.CueSwing, audio.CueHit, audio.CueResult, audio.CueFin, audio.CueMusic} {
		path := filepath.Join(dir, c.String()+".ogg")
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			found[c] = path
		}
	}
	return found
}

// Default returns the embedded bundle. It panics only if the binary was
// built without its data files.
func Default() *Bundle {
	b, err := NewLoader("", "", log.New(io.Discard)).Load(context.Background())
	if err != nil {
		panic(err)
	}
	return b
}
