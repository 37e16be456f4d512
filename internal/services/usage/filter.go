package usage

import (
	"fmt"
	"regexp"
)

// Filter decides whether an emote name belongs to the tracked set. The
// pattern is anchored as a prefix match, mirroring how server emote sets are
// usually named with a common prefix.
type Filter struct {
	pattern *regexp.Regexp
}

func NewFilter(expr string) (*Filter, error) {
	pattern, err := regexp.Compile("^" + expr + ".*$")
	if err != nil {
		return nil, fmt.Errorf("invalid emote pattern %q: %w", expr, err)
	}
	return &Filter{pattern: pattern}, nil
}

// Trackable reports whether the display name matches the configured pattern.
// Total for any input; an empty or malformed name is simply not trackable.
func (f *Filter) Trackable(name string) bool {
	if name == "" {
		return false
	}
	return f.pattern.MatchString(name)
}
