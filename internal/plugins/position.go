package plugins

import (
	"strconv"
	"strings"
)

// Position hints accepted by EnsurePath and construct declarations.
const (
	PositionFirst  = "first"
	PositionLast   = "last"
	positionBefore = "before:"
	positionAfter  = "after:"
)

// insertIndex returns where a new child goes among siblings. Unknown
// anchors and malformed hints append.
func insertIndex(siblings []*Node, hint string) int {
	hint = strings.TrimSpace(hint)
	switch {
	case hint == "" || hint == PositionLast:
		return len(siblings)
	case hint == PositionFirst:
		return 0
	case strings.HasPrefix(hint, positionBefore):
		if i := indexOf(siblings, strings.TrimPrefix(hint, positionBefore)); i >= 0 {
			return i
		}
	case strings.HasPrefix(hint, positionAfter):
		if i := indexOf(siblings, strings.TrimPrefix(hint, positionAfter)); i >= 0 {
			return i + 1
		}
	default:
		if i, err := strconv.Atoi(hint); err == nil {
			if i < 0 {
				return 0
			}
			if i > len(siblings) {
				return len(siblings)
			}
			return i
		}
	}
	return len(siblings)
}

func indexOf(siblings []*Node, name string) int {
	for i, s := range siblings {
		if s.name == name {
			return i
		}
	}
	return -1
}
