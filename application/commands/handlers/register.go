package handlers

import (
	"context"

	"trustie-admin/application/commands"
	"trustie-admin/application/commands/bus"
)

// Set groups the command handlers served by the bus
type Set struct {
	CreatePost    *CreatePostHandler
	PublishPost   *PublishPostHandler
	Resources     *ResourceHandler
	KnowledgeFile *KnowledgeFileHandler
}

// Register binds every handler in s to its command type
func (s Set) Register(b *bus.CommandBus) error {
	routes := []struct {
		cmd     bus.Command
		handler bus.CommandHandlerFunc
	}{
		{commands.CreatePostCommand{}, func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return s.CreatePost.Handle(ctx, cmd.(commands.CreatePostCommand))
		}},
		{commands.PublishPostCommand{}, func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return s.PublishPost.Handle(ctx, cmd.(commands.PublishPostCommand))
		}},
		{commands.AddResourceCommand{}, func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return s.Resources.HandleAdd(ctx, cmd.(commands.AddResourceCommand))
		}},
		{commands.UpdateResourceCommand{}, func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return s.Resources.HandleUpdate(ctx, cmd.(commands.UpdateResourceCommand))
		}},
		{commands.UploadKnowledgeFileCommand{}, func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return s.KnowledgeFile.Handle(ctx, cmd.(commands.UploadKnowledgeFileCommand))
		}},
	}
	for _, r := range routes {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}
