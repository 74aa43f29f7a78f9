package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-transform/core"
)

// MutatingService is the slice of the transform service the command
// handlers need.
type MutatingService interface {
	Transform(ctx context.Context, req core.TransformRequest) (core.TransformResult, error)
	ValidateSpec(ctx context.Context, req core.ValidateSpecRequest) (core.ValidateSpecResult, error)
	PreviewSpec(ctx context.Context, req core.PreviewSpecRequest) (core.PreviewResult, error)
	CreateDraft(ctx context.Context, spec core.MappingSpec) (core.MappingSpec, error)
	UpdateDraft(ctx context.Context, spec core.MappingSpec) (core.MappingSpec, error)
	PublishSpec(ctx context.Context, specID string, version int) (core.MappingSpec, error)
	ArchiveSpec(ctx context.Context, specID string, version int) (core.MappingSpec, error)
}

type TransformCommand struct {
	service MutatingService
}

func NewTransformCommand(service MutatingService) *TransformCommand {
	return &TransformCommand{service: service}
}

func (c *TransformCommand) Execute(ctx context.Context, msg TransformMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: transform service is required")
	}
	out, err := c.service.Transform(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ValidateSpecCommand struct {
	service MutatingService
}

func NewValidateSpecCommand(service MutatingService) *ValidateSpecCommand {
	return &ValidateSpecCommand{service: service}
}

func (c *ValidateSpecCommand) Execute(ctx context.Context, msg ValidateSpecMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: spec validation service is required")
	}
	out, err := c.service.ValidateSpec(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type PreviewSpecCommand struct {
	service MutatingService
}

func NewPreviewSpecCommand(service MutatingService) *PreviewSpecCommand {
	return &PreviewSpecCommand{service: service}
}

func (c *PreviewSpecCommand) Execute(ctx context.Context, msg PreviewSpecMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: spec preview service is required")
	}
	out, err := c.service.PreviewSpec(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateDraftCommand struct {
	service MutatingService
}

func NewCreateDraftCommand(service MutatingService) *CreateDraftCommand {
	return &CreateDraftCommand{service: service}
}

func (c *CreateDraftCommand) Execute(ctx context.Context, msg CreateDraftMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: spec lifecycle service is required")
	}
	out, err := c.service.CreateDraft(ctx, msg.Spec)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateDraftCommand struct {
	service MutatingService
}

func NewUpdateDraftCommand(service MutatingService) *UpdateDraftCommand {
	return &UpdateDraftCommand{service: service}
}

func (c *UpdateDraftCommand) Execute(ctx context.Context, msg UpdateDraftMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: spec lifecycle service is required")
	}
	out, err := c.service.UpdateDraft(ctx, msg.Spec)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type PublishSpecCommand struct {
	service MutatingService
}

func NewPublishSpecCommand(service MutatingService) *PublishSpecCommand {
	return &PublishSpecCommand{service: service}
}

func (c *PublishSpecCommand) Execute(ctx context.Context, msg PublishSpecMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: spec lifecycle service is required")
	}
	out, err := c.service.PublishSpec(ctx, msg.SpecID, msg.Version)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ArchiveSpecCommand struct {
	service MutatingService
}

func NewArchiveSpecCommand(service MutatingService) *ArchiveSpecCommand {
	return &ArchiveSpecCommand{service: service}
}

func (c *ArchiveSpecCommand) Execute(ctx context.Context, msg ArchiveSpecMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: spec lifecycle service is required")
	}
	out, err := c.service.ArchiveSpec(ctx, msg.SpecID, msg.Version)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
