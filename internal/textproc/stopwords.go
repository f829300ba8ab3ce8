package textproc

import (
	"embed"
	"strings"
)

//go:embed stopwords.txt
var stopwordsFS embed.FS

var stopwords = loadStopwords()

func loadStopwords() map[string]bool {
	data, err := stopwordsFS.ReadFile("stopwords.txt")
	if err != nil {
		// the list is compiled into the binary, a read failure is a build defect
		panic("textproc: embedded stopword list unreadable: " + err.Error())
	}

	set := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		word := strings.TrimSpace(line)
		if word != "" {
			set[word] = true
		}
	}
	return set
}

// IsStopword reports whether word is on the fixed English stopword list.
func IsStopword(word string) bool {
	return stopwords[word]
}
