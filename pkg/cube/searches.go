package cube

// Typed search builders. Each resource type has a fixed set of filter keys
// recognized by its search endpoint; the builders expose exactly those keys,
// so callers cannot invent filters the server ignores. Builders are
// immutable: every method returns a new value.

// SearchBuilder accumulates filters for a collection query. The typed
// builders below embed it behind a fixed filter vocabulary.
type SearchBuilder[T any] struct {
	rq     Requester
	query  Query
	access Access
	active bool
}

// NewSearchBuilder creates a builder for a search endpoint.
func NewSearchBuilder[T any](rq Requester, collectionURL string, access Access) SearchBuilder[T] {
	return SearchBuilder[T]{
		rq:     rq,
		query:  NewQuery(collectionURL, ModeSearch),
		access: access,
		active: true,
	}
}

// NewCollectionBuilder creates a builder which fetches the collection URL
// itself, without search terms.
func NewCollectionBuilder[T any](rq Requester, collectionURL string, access Access) SearchBuilder[T] {
	return SearchBuilder[T]{
		rq:     rq,
		query:  NewQuery(collectionURL, ModePlain),
		access: access,
		active: true,
	}
}

// EmptyBuilder creates a builder whose Search is the permanent empty
// handle. Used when the query is statically known to be unservable, such as
// listing private feeds without credentials.
func EmptyBuilder[T any]() SearchBuilder[T] {
	return SearchBuilder[T]{access: ReadOnly}
}

func (b SearchBuilder[T]) withFilter(key, value string) SearchBuilder[T] {
	b.query = b.query.WithFilter(key, value)

	return b
}

func (b SearchBuilder[T]) withIntFilter(key string, value int) SearchBuilder[T] {
	b.query = b.query.WithIntFilter(key, value)

	return b
}

// PageLimit sets the page-size hint.
func (b SearchBuilder[T]) PageLimit(limit int) SearchBuilder[T] {
	b.query = b.query.WithPageLimit(limit)

	return b
}

// MaxItems caps the total number of items the search will yield.
func (b SearchBuilder[T]) MaxItems(n int) SearchBuilder[T] {
	b.query = b.query.WithMaxItems(n)

	return b
}

// AsReadOnly downgrades the capability carried by search results.
func (b SearchBuilder[T]) AsReadOnly() SearchBuilder[T] {
	b.access = ReadOnly

	return b
}

// Search completes the builder.
func (b SearchBuilder[T]) Search() *Search[T] {
	if !b.active {
		return EmptySearch[T]()
	}

	return NewSearch[T](b.rq, b.query, b.access)
}

// PluginSearchBuilder searches the plugins collection.
type PluginSearchBuilder struct {
	SearchBuilder[Plugin]
}

// ID filters by plugin ID.
func (b PluginSearchBuilder) ID(id int) PluginSearchBuilder {
	return PluginSearchBuilder{b.withIntFilter("id", id)}
}

// Name filters by plugin name (substring match).
func (b PluginSearchBuilder) Name(name string) PluginSearchBuilder {
	return PluginSearchBuilder{b.withFilter("name", name)}
}

// NameExact filters by exact plugin name.
func (b PluginSearchBuilder) NameExact(name string) PluginSearchBuilder {
	return PluginSearchBuilder{b.withFilter("name_exact", name)}
}

// Version filters by plugin version.
func (b PluginSearchBuilder) Version(version string) PluginSearchBuilder {
	return PluginSearchBuilder{b.withFilter("version", version)}
}

// NameTitleCategory filters by name, title, or category.
func (b PluginSearchBuilder) NameTitleCategory(term string) PluginSearchBuilder {
	return PluginSearchBuilder{b.withFilter("name_title_category", term)}
}

// FeedSearchBuilder searches a feeds collection.
type FeedSearchBuilder struct {
	SearchBuilder[Feed]
}

// Name filters by feed name (substring match).
func (b FeedSearchBuilder) Name(name string) FeedSearchBuilder {
	return FeedSearchBuilder{b.withFilter("name", name)}
}

// NameExact filters by exact feed name.
func (b FeedSearchBuilder) NameExact(name string) FeedSearchBuilder {
	return FeedSearchBuilder{b.withFilter("name_exact", name)}
}

// PluginInstanceSearchBuilder searches the plugin instances collection.
type PluginInstanceSearchBuilder struct {
	SearchBuilder[PluginInstance]
}

// ID filters by plugin instance ID.
func (b PluginInstanceSearchBuilder) ID(id int) PluginInstanceSearchBuilder {
	return PluginInstanceSearchBuilder{b.withIntFilter("id", id)}
}

// PreviousID filters by the ID of the preceding plugin instance.
func (b PluginInstanceSearchBuilder) PreviousID(id int) PluginInstanceSearchBuilder {
	return PluginInstanceSearchBuilder{b.withIntFilter("previous_id", id)}
}

// Title filters by title.
func (b PluginInstanceSearchBuilder) Title(title string) PluginInstanceSearchBuilder {
	return PluginInstanceSearchBuilder{b.withFilter("title", title)}
}

// FeedID filters by owning feed.
func (b PluginInstanceSearchBuilder) FeedID(id int) PluginInstanceSearchBuilder {
	return PluginInstanceSearchBuilder{b.withIntFilter("feed_id", id)}
}

// PluginName filters by the plugin's name.
func (b PluginInstanceSearchBuilder) PluginName(name string) PluginInstanceSearchBuilder {
	return PluginInstanceSearchBuilder{b.withFilter("plugin_name", name)}
}

// PluginNameExact filters by the plugin's exact name.
func (b PluginInstanceSearchBuilder) PluginNameExact(name string) PluginInstanceSearchBuilder {
	return PluginInstanceSearchBuilder{b.withFilter("plugin_name_exact", name)}
}

// PluginVersion filters by the plugin's version.
func (b PluginInstanceSearchBuilder) PluginVersion(version string) PluginInstanceSearchBuilder {
	return PluginInstanceSearchBuilder{b.withFilter("plugin_version", version)}
}

// WorkflowID filters by owning workflow.
func (b PluginInstanceSearchBuilder) WorkflowID(id int) PluginInstanceSearchBuilder {
	return PluginInstanceSearchBuilder{b.withIntFilter("workflow_id", id)}
}

// PipelineSearchBuilder searches the pipelines collection.
type PipelineSearchBuilder struct {
	SearchBuilder[Pipeline]
}

// ID filters by pipeline ID.
func (b PipelineSearchBuilder) ID(id int) PipelineSearchBuilder {
	return PipelineSearchBuilder{b.withIntFilter("id", id)}
}

// Name filters by pipeline name.
func (b PipelineSearchBuilder) Name(name string) PipelineSearchBuilder {
	return PipelineSearchBuilder{b.withFilter("name", name)}
}

// Description filters by description.
func (b PipelineSearchBuilder) Description(description string) PipelineSearchBuilder {
	return PipelineSearchBuilder{b.withFilter("description", description)}
}

// FileSearchBuilder searches a files collection.
type FileSearchBuilder struct {
	SearchBuilder[FileResource]
}

// Fname filters by CUBE path prefix.
func (b FileSearchBuilder) Fname(fname string) FileSearchBuilder {
	return FileSearchBuilder{b.withFilter("fname", fname)}
}

// FnameExact filters by exact CUBE path.
func (b FileSearchBuilder) FnameExact(fname string) FileSearchBuilder {
	return FileSearchBuilder{b.withFilter("fname_exact", fname)}
}

// FnameIcontains filters by case-insensitive substring of the CUBE path.
func (b FileSearchBuilder) FnameIcontains(fname string) FileSearchBuilder {
	return FileSearchBuilder{b.withFilter("fname_icontains", fname)}
}

// PluginInstID filters by producing plugin instance.
func (b FileSearchBuilder) PluginInstID(id int) FileSearchBuilder {
	return FileSearchBuilder{b.withIntFilter("plugin_inst_id", id)}
}

// FeedID filters by owning feed.
func (b FileSearchBuilder) FeedID(id int) FileSearchBuilder {
	return FileSearchBuilder{b.withIntFilter("feed_id", id)}
}
