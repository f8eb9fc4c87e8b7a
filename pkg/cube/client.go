package cube

import (
	"context"
	"io"
)

// SearchClients provides access to the collection search builders. Every
// builder carries the client's access capability; builders for collections
// the client cannot reach return the permanent empty search.
type SearchClients interface {
	Plugins() PluginSearchBuilder
	PublicFeeds() FeedSearchBuilder
	Feeds() FeedSearchBuilder
	PluginInstances() PluginInstanceSearchBuilder
	Pipelines() PipelineSearchBuilder
	Files() FileSearchBuilder
}

// ResourceClients provides direct access to single resources by ID.
type ResourceClients interface {
	GetPlugin(ctx context.Context, id int) (*Linked[Plugin], error)
	GetFeed(ctx context.Context, id int) (*Linked[Feed], error)
	GetPluginInstance(ctx context.Context, id int) (*Linked[PluginInstance], error)
	GetPipeline(ctx context.Context, id int) (*Linked[Pipeline], error)
}

// WriteClients provides the mutating operations. They fail with
// ErrReadOnlyAccess on a read-only client.
type WriteClients interface {
	// CreatePluginInstance runs a plugin with the given parameters.
	CreatePluginInstance(ctx context.Context, pluginID int, params map[string]any) (*Linked[PluginInstance], error)

	// SetFeedName renames a feed.
	SetFeedName(ctx context.Context, feed *Linked[Feed], name string) (*Linked[Feed], error)
}

// TransferClients provides file movement. Progress events are emitted on
// the given channel when it is non-nil; the caller owns the channel and the
// operations never close it.
type TransferClients interface {
	// UploadFile stores r at the CUBE path uploadPath. ID tags the
	// transfer's events; size is the declared length of r.
	UploadFile(ctx context.Context, uploadPath string, r io.Reader, size int64, id int, events chan<- TransferEvent) (*FileResource, error)

	// DownloadFile streams a file resource into w.
	DownloadFile(ctx context.Context, file *FileResource, w io.Writer, id int, events chan<- TransferEvent) error
}

// Client is a connected CUBE client.
type Client interface {
	SearchClients
	ResourceClients
	WriteClients
	TransferClients

	// URL is the base API URL the client connected to.
	URL() string

	// Username is the authenticated account name, empty when anonymous.
	Username() string

	// Access is the client's capability level.
	Access() Access

	// Links are the collection URLs discovered at connect time.
	Links() CollectionLinks

	// User fetches the authenticated user's resource.
	User(ctx context.Context) (*Linked[User], error)
}
