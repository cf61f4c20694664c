// Package policy loads the static behavior-policy document that is sent to
// the model as system-level guidance. The document is read once and cached
// for the lifetime of the process; a missing file is a startup error, not a
// per-request one.
package policy

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

type Loader struct {
	path string
	once sync.Once
	text string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Text returns the policy document. The first call reads from disk and the
// result is returned unchanged on every subsequent call, regardless of
// on-disk changes. A missing or unreadable file terminates the process.
func (l *Loader) Text() string {
	l.once.Do(func() {
		data, err := os.ReadFile(l.path)
		if err != nil {
			log.Fatal().Err(err).Str("path", l.path).Msg("behavior policy file not found")
		}
		l.text = strings.TrimSpace(string(data))
	})
	return l.text
}
