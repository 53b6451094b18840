package anim

import (
	"fmt"
	"sort"

	"github.com/tanema/gween/ease"
)

var easings = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"quad":       ease.InOutQuad,
	"cubic":      ease.InOutCubic,
	"cubic-out":  ease.OutCubic,
	"sine":       ease.InOutSine,
	"bounce-out": ease.OutBounce,
}

// Ease resolves an easing function by name.
func Ease(name string) (ease.TweenFunc, error) {
	if name == "" {
		return ease.InOutCubic, nil
	}
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q (valid: %v)", name, EaseNames())
	}
	return fn, nil
}

// EaseNames lists the accepted easing names.
func EaseNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
