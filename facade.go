package transform

import (
	"fmt"

	transformcommand "github.com/goliatone/go-transform/command"
	transformquery "github.com/goliatone/go-transform/query"
)

// CommandQueryService is the surface the facade wires commands and
// queries against. *core.Service satisfies it.
type CommandQueryService interface {
	transformcommand.MutatingService
	transformquery.SpecReader
	transformquery.ActivityReader
}

type Commands struct {
	Transform    *transformcommand.TransformCommand
	ValidateSpec *transformcommand.ValidateSpecCommand
	PreviewSpec  *transformcommand.PreviewSpecCommand
	CreateDraft  *transformcommand.CreateDraftCommand
	UpdateDraft  *transformcommand.UpdateDraftCommand
	PublishSpec  *transformcommand.PublishSpecCommand
	ArchiveSpec  *transformcommand.ArchiveSpecCommand
}

type Queries struct {
	GetSpec      *transformquery.GetSpecQuery
	ListSpecs    *transformquery.ListSpecsQuery
	ListActivity *transformquery.ListActivityQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	activityReader transformquery.ActivityReader
}

// WithActivityReader overrides the activity query source; the default is
// the service itself.
func WithActivityReader(reader transformquery.ActivityReader) FacadeOption {
	return func(options *facadeOptions) {
		options.activityReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("transform: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.activityReader
	if reader == nil {
		reader = service
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		Transform:    transformcommand.NewTransformCommand(service),
		ValidateSpec: transformcommand.NewValidateSpecCommand(service),
		PreviewSpec:  transformcommand.NewPreviewSpecCommand(service),
		CreateDraft:  transformcommand.NewCreateDraftCommand(service),
		UpdateDraft:  transformcommand.NewUpdateDraftCommand(service),
		PublishSpec:  transformcommand.NewPublishSpecCommand(service),
		ArchiveSpec:  transformcommand.NewArchiveSpecCommand(service),
	}
	facade.queries = Queries{
		GetSpec:      transformquery.NewGetSpecQuery(service),
		ListSpecs:    transformquery.NewListSpecsQuery(service),
		ListActivity: transformquery.NewListActivityQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
