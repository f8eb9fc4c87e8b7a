package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// DownloadDirPerm is the permission for directories created while
	// downloading files.
	DownloadDirPerm = 0750
)

// HTTP defaults.
const (
	// DefaultUserAgent identifies the client to CUBE.
	DefaultUserAgent = "cube-client/1.0"

	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as link discovery.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 5

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Concurrency and channel sizing.
const (
	// DefaultTransferConcurrency limits concurrent file transfers.
	DefaultTransferConcurrency = 4

	// TransferEventBuffer is the buffer size of transfer event channels.
	TransferEventBuffer = 100
)

// Pagination.
const (
	// DefaultPageLimit is the page size requested when the caller does not
	// supply a hint.
	DefaultPageLimit = 20
)

// Transfer progress.
const (
	// ProgressSizeThreshold is the minimum file size, in bytes, for which a
	// dedicated per-file progress bar is shown.
	ProgressSizeThreshold = 2 << 20
)

// Cache defaults.
const (
	// DefaultCacheSize is the maximum number of entries in the memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is how long cached responses stay fresh.
	DefaultCacheTTL = 5 * time.Minute
)
