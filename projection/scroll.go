package projection

type ScrollState int

const (
	FollowingTail ScrollState = iota
	Anchored
)

func (s ScrollState) String() string {
	switch s {
	case FollowingTail:
		return "following_tail"
	case Anchored:
		return "anchored"
	default:
		return "unknown"
	}
}

// ScrollAnchor decides whether a view scrolls to the newest message or keeps
// the reader's position. Offset is the distance in pixels from the top of the
// rendered window and is only meaningful while Anchored.
type ScrollAnchor struct {
	state  ScrollState
	offset float64
}

func NewScrollAnchor() *ScrollAnchor {
	return &ScrollAnchor{state: FollowingTail}
}

func (a *ScrollAnchor) State() ScrollState { return a.state }

func (a *ScrollAnchor) Offset() float64 { return a.offset }

func (a *ScrollAnchor) FollowingTail() bool { return a.state == FollowingTail }

// LocalSend must be called before the local user's message is sent.
func (a *ScrollAnchor) LocalSend() {
	a.state = FollowingTail
	a.offset = 0
}

// LoadOlderTriggered anchors the view at its current offset for the duration of the load.
func (a *ScrollAnchor) LoadOlderTriggered(currentOffset float64) {
	a.state = Anchored
	a.offset = currentOffset
}

// OlderLoaded shifts the anchor by the height prepended above it,
// so the messages under the viewport stay there. It returns the offset to apply.
func (a *ScrollAnchor) OlderLoaded(addedHeight float64) float64 {
	if a.state == Anchored {
		a.offset += addedHeight
	}
	return a.offset
}

// RemotePush reports whether the view must scroll to the newest message.
// While anchored the offset is left untouched.
func (a *ScrollAnchor) RemotePush() bool {
	return a.state == FollowingTail
}

// UserScrolled follows the reader: reaching the newest edge resumes following the tail.
func (a *ScrollAnchor) UserScrolled(offset float64, atBottom bool) {
	if atBottom {
		a.LocalSend()
		return
	}
	a.state = Anchored
	a.offset = offset
}

// ShouldLoadOlder tells whether rendering the item at index, counted from the top
// (oldest loaded) of a window of total items, must trigger a "load older" call.
// The threshold is a presentation choice and is independent from the page size.
func ShouldLoadOlder(index, total, threshold int) bool {
	if total == 0 || threshold <= 0 || index < 0 || index >= total {
		return false
	}
	return index < threshold
}
