package main

import (
	"testing"

	"github.com/vovakirdan/melon-smash/internal/core"
	"github.com/vovakirdan/melon-smash/internal/registry"
)

type countingSink struct{ n int }

func (c *countingSink) Publish(string, string, core.Event) { c.n++ }

func TestSinksFanOut(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	s := sinks{a, b}
	s.Publish("melon", "ann", core.Event{Kind: core.EventSmash})
	if a.n != 1 || b.n != 1 {
		t.Errorf("counts = %d, %d; want 1, 1", a.n, b.n)
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"http://localhost:*", "http://127.0.0.1:*"}},
		{"https://a.example, https://b.example,", []string{"https://a.example", "https://b.example"}},
	}
	for _, tt := range tests {
		got := parseOrigins(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("parseOrigins(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseOrigins(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestPort(t *testing.T) {
	if got := port(":23234"); got != "23234" {
		t.Errorf("port(:23234) = %q", got)
	}
	if got := port("0.0.0.0:2222"); got != "2222" {
		t.Errorf("port(0.0.0.0:2222) = %q", got)
	}
}

func TestModesRegistered(t *testing.T) {
	for id, title := range map[string]string{
		"melon":          "Melon Smash",
		"melon_practice": "Melon Smash (Practice)",
	} {
		info, ok := registry.Lookup(id)
		if !ok || info.Title != title {
			t.Errorf("Lookup(%q) = %+v, %v; want title %q", id, info, ok, title)
		}
	}
}

func TestLoadConfigRejectsUnknownPreset(t *testing.T) {
	old := flagDifficulty
	t.Cleanup(func() { flagDifficulty = old })

	flagDifficulty = "nightmare"
	if _, err := loadConfig(); err == nil {
		t.Error("loadConfig() accepted an unknown preset")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 16); got != "short" {
		t.Errorf("truncate kept = %q", got)
	}
	if got := truncate("abcdefgh", 4); got != "abc…" {
		t.Errorf("truncate = %q, want abc…", got)
	}
}
