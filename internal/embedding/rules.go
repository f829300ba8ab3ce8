package embedding

// RetentionRule decides whether a candidate word enters a model's
// vocabulary during the build pass. Exactly two variants exist and the
// choice is made at trainer construction, never injected ad hoc.
type RetentionRule int

const (
	// KeepAboveMinCount is the default frequency-based pruning: a word
	// must occur at least MinCount times to receive a vector.
	KeepAboveMinCount RetentionRule = iota

	// KeepAll retains every candidate word unconditionally. Used for
	// vocabulary seeding, so every domain keyword gets a vector even when
	// it is rare in the training corpus.
	KeepAll
)

// Keep reports whether a word with the given frequency should be retained.
func (r RetentionRule) Keep(count, minCount int) bool {
	if r == KeepAll {
		return true
	}
	return count >= minCount
}

func (r RetentionRule) String() string {
	if r == KeepAll {
		return "keep-all"
	}
	return "keep-above-min-count"
}
