package phrases

import (
	"strings"
)

// Rewriter rewrites surface forms of multi-word vocabulary terms into
// their underscore-joined compound form.
type Rewriter interface {
	Rewrite(vocabulary []string, text string) string
}

// SubstringRewriter replaces every occurrence of a phrase's space-joined
// surface form with its underscore form, in vocabulary order. Matching is
// literal substring substitution, not word-boundary aware: an earlier
// vocabulary entry wins an overlapping span, and later entries operate on
// the already-rewritten text. Callers that need boundary-aware matching
// can swap in another Rewriter.
type SubstringRewriter struct{}

func NewSubstringRewriter() *SubstringRewriter {
	return &SubstringRewriter{}
}

func (r *SubstringRewriter) Rewrite(vocabulary []string, text string) string {
	for _, term := range vocabulary {
		if !strings.Contains(term, "_") {
			continue
		}
		surface := strings.ReplaceAll(term, "_", " ")
		text = strings.ReplaceAll(text, surface, term)
	}
	return text
}
