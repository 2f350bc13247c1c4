package service

import (
	"encoding/json"
	"fmt"
	"time"
)

// availabilityNode is one node of a course module availability tree. Branches carry op and c,
// leaves carry type and their condition fields.
type availabilityNode struct {
	Op   string             `json:"op,omitempty"`
	C    []availabilityNode `json:"c,omitempty"`
	Type string             `json:"type,omitempty"`
	D    string             `json:"d,omitempty"`
	T    int64              `json:"t,omitempty"`
}

// EvaluateAvailability reports whether an availability tree allows access at now.
// An empty tree allows access. Condition types other than date never hold.
func EvaluateAvailability(raw string, now time.Time) (bool, error) {
	if raw == "" || raw == "null" {
		return true, nil
	}
	var root availabilityNode
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return false, fmt.Errorf("decode availability: %w", err)
	}
	return root.holds(now.Unix())
}

func (n availabilityNode) holds(now int64) (bool, error) {
	if n.Op == "" {
		return n.conditionHolds(now), nil
	}
	if len(n.C) == 0 {
		return true, nil
	}

	all, anyHeld := true, false
	for _, child := range n.C {
		ok, err := child.holds(now)
		if err != nil {
			return false, err
		}
		all = all && ok
		anyHeld = anyHeld || ok
	}

	switch n.Op {
	case "&":
		return all, nil
	case "|":
		return anyHeld, nil
	case "!&":
		return !all, nil
	case "!|":
		return !anyHeld, nil
	}
	return false, fmt.Errorf("unknown availability operator %q", n.Op)
}

func (n availabilityNode) conditionHolds(now int64) bool {
	switch n.Type {
	case "date":
		switch n.D {
		case ">=":
			return now >= n.T
		case "<":
			return now < n.T
		}
	}
	return false
}
