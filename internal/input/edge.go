package input

// Edge tracks a sampled boolean across ticks and reports its transitions.
// Movement keys use it where the release matters as much as the press.
type Edge struct {
	prev bool
}

// Sample records cur and reports both edges at once.
func (e *Edge) Sample(cur bool) (rising, falling bool) {
	rising = cur && !e.prev
	falling = !cur && e.prev
	e.prev = cur
	return rising, falling
}

// Reset clears the remembered sample.
func (e *Edge) Reset() {
	e.prev = false
}
