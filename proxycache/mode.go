package proxycache

// Mode selects whether operations use the real object, the cache tree, or
// both. It is session-wide: every proxy descending from one session reads
// the mode at operation time.
type Mode int

const (
	// ModeDisabled forwards every operation to the real object and never
	// creates or consults cache nodes.
	ModeDisabled Mode = iota

	// ModeRecord forwards every operation to the real object and records
	// the result, overwriting any previous recording.
	ModeRecord

	// ModeKeep forwards every operation to the real object but never
	// overwrites an existing recording; the first recorded result wins and
	// is what callers observe on repeats.
	ModeKeep

	// ModeReadThrough serves recorded results without touching the real
	// object and falls back to the real object (recording the result) only
	// on a miss.
	ModeReadThrough

	// ModePure serves results exclusively from the cache tree. The real
	// object is never touched; a missing recording is a hard failure.
	ModePure
)

// String returns the mode name used in logs and metric labels.
func (m Mode) String() string {
	switch m {
	case ModeDisabled:
		return "disabled"
	case ModeRecord:
		return "record"
	case ModeKeep:
		return "keep"
	case ModeReadThrough:
		return "read_through"
	case ModePure:
		return "pure"
	default:
		return "unknown"
	}
}

// usesCache reports whether the mode consults or mutates the cache tree.
func (m Mode) usesCache() bool { return m != ModeDisabled }

// ReprMode controls how proxies render for human display. It is orthogonal
// to Mode.
type ReprMode int

const (
	// ReprReal delegates display to the real object's own rendering.
	ReprReal ReprMode = iota

	// ReprFake renders a fixed placeholder that reveals neither the real
	// object nor the cache contents.
	ReprFake
)

// String returns the repr mode name.
func (m ReprMode) String() string {
	switch m {
	case ReprReal:
		return "real"
	case ReprFake:
		return "fake"
	default:
		return "unknown"
	}
}
