package mail

import (
	"strings"

	"github.com/viant/fluxmesh/errs"
)

// Category classifies a package payload
type Category int

const (
	CategoryMessage Category = iota + 1
	CategoryTool
	CategoryIModel
	CategoryNode
	CategoryNodeList
	CategoryNodeID
	CategoryStart
	CategoryEnd
	CategoryCondition
	CategorySignal
)

var categoryNames = map[Category]string{
	CategoryMessage:   "message",
	CategoryTool:      "tool",
	CategoryIModel:    "imodel",
	CategoryNode:      "node",
	CategoryNodeList:  "node_list",
	CategoryNodeID:    "node_id",
	CategoryStart:     "start",
	CategoryEnd:       "end",
	CategoryCondition: "condition",
	CategorySignal:    "signal",
}

// Categories returns all categories in declaration order
func Categories() []Category {
	ret := make([]Category, 0, len(categoryNames))
	for c := CategoryMessage; c <= CategorySignal; c++ {
		ret = append(ret, c)
	}
	return ret
}

// IsValid returns true for a declared category
func (c Category) IsValid() bool {
	_, ok := categoryNames[c]
	return ok
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes category name
func (c Category) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, errs.Validation("invalid package category: %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes category name
func (c *Category) UnmarshalText(data []byte) error {
	parsed, err := ParseCategory(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory parses category name, case-insensitive
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for category, candidate := range categoryNames {
		if candidate == name {
			return category, nil
		}
	}
	return 0, errs.Validation("invalid package category: %v", name)
}
