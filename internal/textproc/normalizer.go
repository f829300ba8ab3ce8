package textproc

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer turns raw document text into a canonical token stream.
// Cleaning is fully deterministic: the same input always produces the
// same output, with no locale or environment dependence.
type Normalizer struct {
	Logger *logrus.Entry
}

func NewNormalizer(logger *logrus.Entry) *Normalizer {
	return &Normalizer{Logger: logger}
}

var (
	urlPattern   = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	emailPattern = regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().\-]{6,}\d`)
	// after ASCII folding and lowercasing, anything outside a-z separates words
	nonAlphaPattern = regexp.MustCompile(`[^a-z]+`)
	tokenPattern    = regexp.MustCompile(`[a-z_]+`)
)

// Clean performs the coarse cleaning pass: structured noise (URLs, emails,
// phone numbers) is replaced by spaces, the text is folded to lowercase
// ASCII, every non-alphabetic run becomes a single space, and short tokens
// and stopwords are dropped. Replacement is always with a space, never a
// plain deletion, so unrelated words cannot merge.
func (n *Normalizer) Clean(text string) string {
	rawWords := len(strings.Fields(text))

	t := urlPattern.ReplaceAllString(text, " ")
	t = emailPattern.ReplaceAllString(t, " ")
	t = phonePattern.ReplaceAllString(t, " ")
	t = foldASCII(t)
	t = strings.ToLower(t)
	t = nonAlphaPattern.ReplaceAllString(t, " ")

	kept := make([]string, 0, rawWords)
	for _, word := range strings.Fields(t) {
		if len(word) <= 2 || IsStopword(word) {
			continue
		}
		kept = append(kept, word)
	}

	if n.Logger != nil {
		n.Logger.Infof("Text size reduced from %d to %d words", rawWords, len(kept))
	}

	return strings.Join(kept, " ")
}

// Tokenize produces the trainer-shaped corpus for one document: a single
// sentence of lowercase ASCII tokens with length in [3, 40], stopwords
// removed and accents stripped. Underscores survive so compound terms stay
// whole. It never fails; empty input yields one empty sentence.
func (n *Normalizer) Tokenize(text string) [][]string {
	t := strings.ToLower(foldASCII(text))

	sentence := make([]string, 0, 64)
	for _, token := range tokenPattern.FindAllString(t, -1) {
		if len(token) < 3 || len(token) > 40 {
			continue
		}
		if IsStopword(token) {
			continue
		}
		sentence = append(sentence, token)
	}

	return [][]string{sentence}
}

var asciiFolder = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// foldASCII strips accents and replaces any remaining non-ASCII rune with a
// space, so encoding noise separates words instead of corrupting them.
func foldASCII(text string) string {
	folded, _, err := transform.String(asciiFolder, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
