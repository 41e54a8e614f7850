package core

// Action represents a semantic game action, abstracted from physical key presses.
type Action int

const (
	ActionNone        Action = iota
	ActionForward            // W, Up arrow
	ActionBack               // S, Down arrow
	ActionTurnLeft           // A, Left arrow
	ActionTurnRight          // D, Right arrow
	ActionSwing              // Space
	ActionRestart            // Enter
	ActionCameraLeft         // [ - manual orbit
	ActionCameraRight        // ] - manual orbit
	ActionPause              // P
	ActionMute               // M
	ActionCopy               // C - copy result line
	ActionMenu               // Esc - back to title
	ActionQuit               // Q, Ctrl+C
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionForward:
		return "Forward"
	case ActionBack:
		return "Back"
	case ActionTurnLeft:
		return "TurnLeft"
	case ActionTurnRight:
		return "TurnRight"
	case ActionSwing:
		return "Swing"
	case ActionRestart:
		return "Restart"
	case ActionCameraLeft:
		return "CameraLeft"
	case ActionCameraRight:
		return "CameraRight"
	case ActionPause:
		return "Pause"
	case ActionMute:
		return "Mute"
	case ActionCopy:
		return "Copy"
	case ActionMenu:
		return "Menu"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame is the action state of one simulation tick. Actions holds
// every action that is down; Fresh holds the subset pressed since the
// previous frame. Discrete commands read Fresh, movement reads Actions.
type InputFrame struct {
	Actions map[Action]bool
	Fresh   map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
		Fresh:   make(map[Action]bool),
	}
}

// Set marks an action as held for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Press marks an action as freshly pressed, which also holds it.
func (f *InputFrame) Press(a Action) {
	f.Set(a)
	if f.Fresh == nil {
		f.Fresh = make(map[Action]bool)
	}
	f.Fresh[a] = true
}

// Has returns true if the given action is held this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// JustPressed returns true if the action was pressed since the last frame.
func (f InputFrame) JustPressed(a Action) bool {
	if f.Fresh == nil {
		return false
	}
	return f.Fresh[a]
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	clear(f.Actions)
	clear(f.Fresh)
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	for k, v := range f.Fresh {
		clone.Fresh[k] = v
	}
	return clone
}
