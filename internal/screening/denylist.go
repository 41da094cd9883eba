package screening

import (
	"strings"
	"sync"
)

// Screener checks message content against prohibited terms.
type Screener interface {
	// Match returns the first matching term and whether any term matched.
	Match(content string) (string, bool)
}

// Denylist is a configurable list of prohibited terms and phrases,
// matched case-insensitively as substrings. The list is maintained by
// the surrounding application; Reload swaps it at runtime.
type Denylist struct {
	mu    sync.RWMutex
	terms []string
}

// NewDenylist creates a denylist from the configured terms. Empty and
// whitespace-only terms are discarded.
func NewDenylist(terms []string) *Denylist {
	d := &Denylist{}
	d.Reload(terms)
	return d
}

// Reload replaces the term list.
func (d *Denylist) Reload(terms []string) {
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			normalized = append(normalized, t)
		}
	}

	d.mu.Lock()
	d.terms = normalized
	d.mu.Unlock()
}

// Match reports the first prohibited term found in content.
func (d *Denylist) Match(content string) (string, bool) {
	lowered := strings.ToLower(content)

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, term := range d.terms {
		if strings.Contains(lowered, term) {
			return term, true
		}
	}
	return "", false
}
