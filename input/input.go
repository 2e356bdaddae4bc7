// package input defines watch button events and implements a GPIO
// driver for the buttons.
package input

type Event struct {
	Button  Button
	Pressed bool
}

// Button is one of the four watch buttons.
type Button int

const (
	Back Button = iota
	Up
	Select
	Down
)

func (b Button) String() string {
	switch b {
	case Back:
		return "back"
	case Up:
		return "up"
	case Select:
		return "select"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// ParseButton returns the button named s.
func ParseButton(s string) (Button, bool) {
	for b := Back; b <= Down; b++ {
		if b.String() == s {
			return b, true
		}
	}
	return 0, false
}
