package input

// Key codes returned by gocv.Window.WaitKey
const (
	KeyNone      = -1
	KeyLineFeed  = 10
	KeyEnter     = 13
	KeyEscape    = 27
	KeyQuit      = 'q'
	KeyReset     = 'r'
	KeyPause     = 'p'
	KeyDebugMode = 'd'
)

// Action is what a window should do in response to a key press
type Action int

const (
	ActionNone Action = iota
	ActionConfirm
	ActionCancel
	ActionReset
	ActionQuit
	ActionTogglePause
	ActionToggleDebug
)

// ProcessCalibrationKey maps a key pressed in the calibration window to an action
func ProcessCalibrationKey(key int) Action {
	switch key {
	case KeyEnter, KeyLineFeed: // ENTER confirms the current bounds
		return ActionConfirm
	case KeyEscape:
		return ActionCancel
	case KeyReset: // 'r' restores the starting bounds
		return ActionReset
	}
	return ActionNone
}

// ProcessPreviewKey maps a key pressed in the preview window to an action
func ProcessPreviewKey(key int) Action {
	switch key {
	case KeyEscape, KeyQuit:
		return ActionQuit
	case KeyPause:
		return ActionTogglePause
	case KeyDebugMode:
		return ActionToggleDebug
	}
	return ActionNone
}
