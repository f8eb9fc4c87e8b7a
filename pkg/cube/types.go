package cube

// Page is the wire shape of one page of a CUBE collection: the total count
// across all pages, opaque cursor URLs for the adjacent pages, and the items
// of this page in server order.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// CollectionLinks are the collection URLs advertised by the CUBE base
// response. Clients follow these links instead of constructing paths.
type CollectionLinks struct {
	Plugins         string `json:"plugins"`
	PluginInstances string `json:"plugin_instances"`
	Pipelines       string `json:"pipelines"`
	PublicFeeds     string `json:"public_feeds"`
	Workflows       string `json:"workflows"`
	Files           string `json:"files"`
	Userfiles       string `json:"userfiles,omitempty"`
	User            string `json:"user,omitempty"`
}

// BaseResponse is the response of the CUBE API root, which is itself a
// paginated collection of feeds plus the collection links.
type BaseResponse struct {
	Count           *int            `json:"count"`
	Next            *string         `json:"next"`
	Previous        *string         `json:"previous"`
	CollectionLinks CollectionLinks `json:"collection_links"`
}

// Plugin represents a CUBE plugin, a containerized program which can be run
// remotely by creating a plugin instance.
type Plugin struct {
	URL              string `json:"url"`
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Version          string `json:"version"`
	Title            string `json:"title"`
	Category         string `json:"category"`
	Description      string `json:"description"`
	DockImage        string `json:"dock_image"`
	PublicRepo       string `json:"public_repo"`
	PluginType       string `json:"plugin_type"`
	Authors          string `json:"authors"`
	CreationDate     string `json:"creation_date"`
	Parameters       string `json:"parameters"`
	Instances        string `json:"instances"`
	ComputeResources string `json:"compute_resources"`
}

// PluginParameter describes one parameter accepted by a plugin.
type PluginParameter struct {
	URL       string `json:"url"`
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Optional  bool   `json:"optional"`
	Flag      string `json:"flag"`
	ShortFlag string `json:"short_flag"`
	Action    string `json:"action"`
	Help      string `json:"help"`
	UIExposed bool   `json:"ui_exposed"`
	Plugin    string `json:"plugin"`
}

// Feed represents a CUBE feed, the top-level container of an analysis.
type Feed struct {
	URL             string `json:"url"`
	ID              int    `json:"id"`
	Name            string `json:"name"`
	CreatorUsername string `json:"creator_username"`
	CreationDate    string `json:"creation_date"`
	Public          bool   `json:"public"`
	Files           string `json:"files"`
	PluginInstances string `json:"plugin_instances"`
}

// PluginInstance represents a remote job: one run of a plugin.
type PluginInstance struct {
	URL           string `json:"url"`
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Plugin        string `json:"plugin"`
	PluginID      int    `json:"plugin_id"`
	PluginName    string `json:"plugin_name"`
	PluginVersion string `json:"plugin_version"`
	PluginType    string `json:"plugin_type"`
	Status        string `json:"status"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	OutputPath    string `json:"output_path"`
	OwnerUsername string `json:"owner_username"`
	Size          int64  `json:"size"`
	ErrorCode     string `json:"error_code"`
	Previous      string `json:"previous,omitempty"`
	Feed          string `json:"feed"`
	Files         string `json:"files"`
	Parameters    string `json:"parameters"`
}

// Pipeline represents a CUBE pipeline: a reusable DAG of plugins.
type Pipeline struct {
	URL               string `json:"url"`
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Locked            bool   `json:"locked"`
	Authors           string `json:"authors"`
	Category          string `json:"category"`
	Description       string `json:"description"`
	OwnerUsername     string `json:"owner_username"`
	CreationDate      string `json:"creation_date"`
	Plugins           string `json:"plugins"`
	DefaultParameters string `json:"default_parameters"`
	Workflows         string `json:"workflows"`
}

// Workflow represents one run of a pipeline.
type Workflow struct {
	URL           string `json:"url"`
	ID            int    `json:"id"`
	CreationDate  string `json:"creation_date"`
	PipelineID    int    `json:"pipeline_id"`
	PipelineName  string `json:"pipeline_name"`
	OwnerUsername string `json:"owner_username"`
	Pipeline      string `json:"pipeline"`
}

// FileResource represents a file stored in CUBE. FileResourceURL is the
// endpoint which serves the file's bytes; Fname is the CUBE path.
type FileResource struct {
	URL             string `json:"url"`
	ID              int    `json:"id"`
	Fname           string `json:"fname"`
	Fsize           int64  `json:"fsize"`
	FileResourceURL string `json:"file_resource"`
	CreationDate    string `json:"creation_date"`
}

// User represents the account of the logged-in user.
type User struct {
	URL      string `json:"url"`
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthTokenResponse is the response of the auth-token endpoint.
type AuthTokenResponse struct {
	Token string `json:"token"`
}
