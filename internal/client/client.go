// Package client implements the cube.Client interface on top of the
// internal HTTP transport. It is constructed through pkg/cubeclient.
package client

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/fnndsc/cube-client/pkg/cube"
)

// Transport is what the client needs from the HTTP layer: the Requester
// methods the search engine uses, plus streaming transfers.
type Transport interface {
	cube.Requester

	GetStream(ctx context.Context, rawURL string) (io.ReadCloser, int64, error)
	PostUpload(ctx context.Context, rawURL, uploadPath, name string, r io.Reader, out any) error
	BaseURL() string
	Authenticated() bool
}

// Client implements cube.Client.
type Client struct {
	transport Transport
	links     cube.CollectionLinks
	username  string
	access    cube.Access
}

var _ cube.Client = (*Client)(nil)

// Connect discovers the collection links from the API root and returns a
// ready client. The probe asks for zero feed results; only the links matter.
func Connect(ctx context.Context, transport Transport, username string) (*Client, error) {
	var base cube.BaseResponse

	query := url.Values{}
	query.Set("limit", "0")
	query.Set("offset", "0")

	err := transport.GetJSON(ctx, transport.BaseURL(), query, &base)
	if err != nil {
		return nil, fmt.Errorf("discovering collection links: %w", err)
	}

	access := cube.ReadOnly
	if transport.Authenticated() {
		access = cube.ReadWrite
	}

	return &Client{
		transport: transport,
		links:     base.CollectionLinks,
		username:  username,
		access:    access,
	}, nil
}

// URL implements cube.Client.
func (c *Client) URL() string {
	return c.transport.BaseURL()
}

// Username implements cube.Client.
func (c *Client) Username() string {
	return c.username
}

// Access implements cube.Client.
func (c *Client) Access() cube.Access {
	return c.access
}

// Links implements cube.Client.
func (c *Client) Links() cube.CollectionLinks {
	return c.links
}

// Plugins returns a search over the plugins collection.
func (c *Client) Plugins() cube.PluginSearchBuilder {
	return cube.PluginSearchBuilder{
		SearchBuilder: cube.NewSearchBuilder[cube.Plugin](c.transport, c.links.Plugins, c.access),
	}
}

// PublicFeeds returns a search over public feeds. Public feeds are readable
// by anyone, so results always carry read-only access.
func (c *Client) PublicFeeds() cube.FeedSearchBuilder {
	return cube.FeedSearchBuilder{
		SearchBuilder: cube.NewSearchBuilder[cube.Feed](c.transport, c.links.PublicFeeds, cube.ReadOnly),
	}
}

// Feeds returns a search over the user's own feeds. The feeds collection is
// the API root itself. Anonymous clients have no feeds of their own, so
// they get the permanent empty search rather than a query that can only 401.
func (c *Client) Feeds() cube.FeedSearchBuilder {
	if !c.transport.Authenticated() {
		return cube.FeedSearchBuilder{SearchBuilder: cube.EmptyBuilder[cube.Feed]()}
	}

	return cube.FeedSearchBuilder{
		SearchBuilder: cube.NewSearchBuilder[cube.Feed](c.transport, c.transport.BaseURL(), c.access),
	}
}

// PluginInstances returns a search over the plugin instances collection.
func (c *Client) PluginInstances() cube.PluginInstanceSearchBuilder {
	return cube.PluginInstanceSearchBuilder{
		SearchBuilder: cube.NewSearchBuilder[cube.PluginInstance](c.transport, c.links.PluginInstances, c.access),
	}
}

// Pipelines returns a search over the pipelines collection.
func (c *Client) Pipelines() cube.PipelineSearchBuilder {
	return cube.PipelineSearchBuilder{
		SearchBuilder: cube.NewSearchBuilder[cube.Pipeline](c.transport, c.links.Pipelines, c.access),
	}
}

// Files returns a search over all files visible to the client.
func (c *Client) Files() cube.FileSearchBuilder {
	return cube.FileSearchBuilder{
		SearchBuilder: cube.NewSearchBuilder[cube.FileResource](c.transport, c.links.Files, c.access),
	}
}

// GetPlugin fetches a plugin by ID.
func (c *Client) GetPlugin(ctx context.Context, id int) (*cube.Linked[cube.Plugin], error) {
	return c.Plugins().ID(id).Search().Only(ctx)
}

// GetFeed fetches a feed by ID.
func (c *Client) GetFeed(ctx context.Context, id int) (*cube.Linked[cube.Feed], error) {
	var feed cube.Feed

	err := c.transport.GetJSON(ctx, fmt.Sprintf("%s%d/", c.transport.BaseURL(), id), nil, &feed)
	if err != nil {
		return nil, err
	}

	return cube.NewLinked(c.transport, feed, c.access), nil
}

// GetPluginInstance fetches a plugin instance by ID.
func (c *Client) GetPluginInstance(ctx context.Context, id int) (*cube.Linked[cube.PluginInstance], error) {
	return c.PluginInstances().ID(id).Search().Only(ctx)
}

// GetPipeline fetches a pipeline by ID.
func (c *Client) GetPipeline(ctx context.Context, id int) (*cube.Linked[cube.Pipeline], error) {
	return c.Pipelines().ID(id).Search().Only(ctx)
}

// User fetches the authenticated user's resource.
func (c *Client) User(ctx context.Context) (*cube.Linked[cube.User], error) {
	if c.links.User == "" {
		return nil, cube.ErrNotLoggedIn
	}

	var user cube.User

	err := c.transport.GetJSON(ctx, c.links.User, nil, &user)
	if err != nil {
		return nil, err
	}

	return cube.NewLinked(c.transport, user, c.access), nil
}

// CreatePluginInstance runs a plugin: it posts the parameters to the
// plugin's instances endpoint.
func (c *Client) CreatePluginInstance(ctx context.Context, pluginID int, params map[string]any) (*cube.Linked[cube.PluginInstance], error) {
	if !c.access.CanWrite() {
		return nil, cube.ErrReadOnlyAccess
	}

	plugin, err := c.GetPlugin(ctx, pluginID)
	if err != nil {
		return nil, err
	}

	var inst cube.PluginInstance

	err = c.transport.PostJSON(ctx, plugin.Resource.Instances, params, &inst)
	if err != nil {
		return nil, fmt.Errorf("creating instance of plugin %d: %w", pluginID, err)
	}

	return cube.NewLinked(c.transport, inst, c.access), nil
}

// SetFeedName renames a feed.
func (c *Client) SetFeedName(ctx context.Context, feed *cube.Linked[cube.Feed], name string) (*cube.Linked[cube.Feed], error) {
	return cube.Mutate(ctx, feed, feed.Resource.URL, map[string]any{"name": name})
}
