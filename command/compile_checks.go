package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[TransformMessage]    = (*TransformCommand)(nil)
	_ gocmd.Commander[ValidateSpecMessage] = (*ValidateSpecCommand)(nil)
	_ gocmd.Commander[PreviewSpecMessage]  = (*PreviewSpecCommand)(nil)
	_ gocmd.Commander[CreateDraftMessage]  = (*CreateDraftCommand)(nil)
	_ gocmd.Commander[UpdateDraftMessage]  = (*UpdateDraftCommand)(nil)
	_ gocmd.Commander[PublishSpecMessage]  = (*PublishSpecCommand)(nil)
	_ gocmd.Commander[ArchiveSpecMessage]  = (*ArchiveSpecCommand)(nil)
)
