package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-transform/core"
)

const (
	TypeTransform   = "transform.command.transform"
	TypeValidate    = "transform.command.spec.validate"
	TypePreview     = "transform.command.spec.preview"
	TypeCreateDraft = "transform.command.spec.create_draft"
	TypeUpdateDraft = "transform.command.spec.update_draft"
	TypePublish     = "transform.command.spec.publish"
	TypeArchive     = "transform.command.spec.archive"
)

type TransformMessage struct {
	Request core.TransformRequest
}

func (TransformMessage) Type() string { return TypeTransform }

func (m TransformMessage) Validate() error {
	if strings.TrimSpace(m.Request.SpecID) == "" {
		return fmt.Errorf("command: spec id is required")
	}
	if m.Request.Version < 0 {
		return fmt.Errorf("command: spec version cannot be negative")
	}
	if len(m.Request.Source) == 0 {
		return fmt.Errorf("command: source record is required")
	}
	return nil
}

type ValidateSpecMessage struct {
	Request core.ValidateSpecRequest
}

func (ValidateSpecMessage) Type() string { return TypeValidate }

func (m ValidateSpecMessage) Validate() error {
	if len(m.Request.Spec.Sections) == 0 {
		return fmt.Errorf("command: spec sections are required")
	}
	return nil
}

type PreviewSpecMessage struct {
	Request core.PreviewSpecRequest
}

func (PreviewSpecMessage) Type() string { return TypePreview }

func (m PreviewSpecMessage) Validate() error {
	if len(m.Request.Spec.Sections) == 0 {
		return fmt.Errorf("command: spec sections are required")
	}
	if len(m.Request.Samples) == 0 {
		return fmt.Errorf("command: at least one sample record is required")
	}
	return nil
}

type CreateDraftMessage struct {
	Spec core.MappingSpec
}

func (CreateDraftMessage) Type() string { return TypeCreateDraft }

func (m CreateDraftMessage) Validate() error {
	if strings.TrimSpace(m.Spec.SpecID) == "" {
		return fmt.Errorf("command: spec id is required")
	}
	if strings.TrimSpace(m.Spec.Name) == "" {
		return fmt.Errorf("command: spec name is required")
	}
	return nil
}

type UpdateDraftMessage struct {
	Spec core.MappingSpec
}

func (UpdateDraftMessage) Type() string { return TypeUpdateDraft }

func (m UpdateDraftMessage) Validate() error {
	if strings.TrimSpace(m.Spec.SpecID) == "" {
		return fmt.Errorf("command: spec id is required")
	}
	if m.Spec.Version < 1 {
		return fmt.Errorf("command: spec version must be >= 1")
	}
	return nil
}

type PublishSpecMessage struct {
	SpecID  string
	Version int
}

func (PublishSpecMessage) Type() string { return TypePublish }

func (m PublishSpecMessage) Validate() error {
	if strings.TrimSpace(m.SpecID) == "" {
		return fmt.Errorf("command: spec id is required")
	}
	if m.Version < 1 {
		return fmt.Errorf("command: spec version must be >= 1")
	}
	return nil
}

type ArchiveSpecMessage struct {
	SpecID  string
	Version int
}

func (ArchiveSpecMessage) Type() string { return TypeArchive }

func (m ArchiveSpecMessage) Validate() error {
	if strings.TrimSpace(m.SpecID) == "" {
		return fmt.Errorf("command: spec id is required")
	}
	if m.Version < 1 {
		return fmt.Errorf("command: spec version must be >= 1")
	}
	return nil
}
