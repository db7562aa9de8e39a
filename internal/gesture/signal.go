// Package gesture turns per-frame hand landmarks into debounced gesture signals.
package gesture

// Name identifies a gesture signal.
type Name string

const (
	Waving    Name = "waving"
	ThumbsUp  Name = "thumbs_up"
	PeaceSign Name = "peace_sign"
	Clapping  Name = "clapping"
)

// Names lists every gesture in snapshot order.
var Names = []Name{Waving, ThumbsUp, PeaceSign, Clapping}

// Kind describes how a gesture signal behaves over time.
type Kind int

const (
	// KindToggle flips on each qualifying event and holds until the next flip.
	KindToggle Kind = iota
	// KindOneShot is true for exactly the frame its condition rises.
	KindOneShot
	// KindLevel is true for every frame its condition holds.
	KindLevel
)

func (k Kind) String() string {
	switch k {
	case KindToggle:
		return "toggle"
	case KindOneShot:
		return "one_shot"
	case KindLevel:
		return "level"
	default:
		return "unknown"
	}
}

// SignalKinds returns the signal shape of every gesture under th.
func SignalKinds(th Thresholds) map[Name]Kind {
	clap := KindOneShot
	if th.ClapMode == ClapContinuous {
		clap = KindLevel
	}
	return map[Name]Kind{
		Waving:    KindToggle,
		ThumbsUp:  KindOneShot,
		PeaceSign: KindOneShot,
		Clapping:  clap,
	}
}

// Suppressors maps a gesture to the gestures that veto it when they are
// signalled in the same frame. A clap motion passes through poses that read
// as thumbs-up or peace, so those are held back while a clap fires.
var Suppressors = map[Name][]Name{
	ThumbsUp:  {Clapping},
	PeaceSign: {Clapping},
}

// trigger evaluates a pulse-shaped signal from its raw condition and the
// previous frame's raw condition.
func trigger(kind Kind, raw, prev bool) bool {
	switch kind {
	case KindOneShot:
		return raw && !prev
	case KindLevel:
		return raw
	default:
		return false
	}
}

// Snapshot is the gesture output for one frame.
// Waving is a held toggle; the other flags are only meaningful for the
// frame in which they are returned.
type Snapshot struct {
	Waving    bool `json:"waving"`
	ThumbsUp  bool `json:"thumbs_up"`
	PeaceSign bool `json:"peace_sign"`
	Clapping  bool `json:"clapping"`
}

// Get returns the flag for name.
func (s Snapshot) Get(name Name) bool {
	switch name {
	case Waving:
		return s.Waving
	case ThumbsUp:
		return s.ThumbsUp
	case PeaceSign:
		return s.PeaceSign
	case Clapping:
		return s.Clapping
	}
	return false
}

// Fired returns the names of every flag that is set, in Names order.
func (s Snapshot) Fired() []Name {
	var out []Name
	for _, n := range Names {
		if s.Get(n) {
			out = append(out, n)
		}
	}
	return out
}

// suppressed reports whether any suppressor of name is set in s.
func (s Snapshot) suppressed(name Name) bool {
	for _, by := range Suppressors[name] {
		if s.Get(by) {
			return true
		}
	}
	return false
}
