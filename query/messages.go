package query

import (
	"fmt"
	"strings"
)

const (
	TypeGetSpec      = "transform.query.spec.get"
	TypeListSpecs    = "transform.query.spec.list"
	TypeListActivity = "transform.query.activity.list"
)

type GetSpecMessage struct {
	SpecID string
	// Version selects an exact version; zero means the published one.
	Version int
}

func (GetSpecMessage) Type() string { return TypeGetSpec }

func (m GetSpecMessage) Validate() error {
	if strings.TrimSpace(m.SpecID) == "" {
		return fmt.Errorf("query: spec id is required")
	}
	if m.Version < 0 {
		return fmt.Errorf("query: version must be >= 0")
	}
	return nil
}

type ListSpecsMessage struct{}

func (ListSpecsMessage) Type() string { return TypeListSpecs }

func (ListSpecsMessage) Validate() error { return nil }

type ListActivityMessage struct {
	SpecID string
	Limit  int
}

func (ListActivityMessage) Type() string { return TypeListActivity }

func (m ListActivityMessage) Validate() error {
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}
