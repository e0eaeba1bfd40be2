package textstore

import "strings"

// palaceSuffix is the 宮 qualifier some data sets append to titles.
const palaceSuffix = "宮"

type matchState int

const (
	stateExact matchState = iota
	stateSuffixed
	stateStripped
	stateNotFound
)

// KeyMatcher resolves a display title against the keys present in a data
// set, which may or may not carry the 宮 qualifier. It tries, in order, the
// key as given, the key with 宮 appended, and the key with a trailing 宮
// removed.
type KeyMatcher struct{}

// Resolve returns the first candidate accepted by has.
func (KeyMatcher) Resolve(key string, has func(string) bool) (string, bool) {
	state := stateExact
	for {
		switch state {
		case stateExact:
			if key != "" && has(key) {
				return key, true
			}
			state = stateSuffixed
		case stateSuffixed:
			if key != "" && has(key+palaceSuffix) {
				return key + palaceSuffix, true
			}
			state = stateStripped
		case stateStripped:
			if trimmed, ok := strings.CutSuffix(key, palaceSuffix); ok && trimmed != "" && has(trimmed) {
				return trimmed, true
			}
			state = stateNotFound
		case stateNotFound:
			return "", false
		}
	}
}

// legacyTitles maps retired title spellings onto the current ones.
var legacyTitles = strings.NewReplacer("官祿", "事業", "官禄", "事業")

// normalizeTitle rewrites retired spellings in an imported key.
func normalizeTitle(s string) string {
	return legacyTitles.Replace(strings.TrimSpace(s))
}
