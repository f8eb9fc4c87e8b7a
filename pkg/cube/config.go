package cube

import "time"

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a cube.Client.
//
// # Authentication precedence
//
// The following precedence is applied by the concrete client implementation
// (see pkg/cubeclient and internal/client):
//  1. Token: if set, it is sent directly as "Authorization: Token <t>".
//  2. Username/Password: the client exchanges them for a token at the
//     auth-token endpoint and proceeds as in (1).
//  3. No credentials: requests are sent without authentication. The client
//     is anonymous and can only reach public resources.
//
// # Timeouts and retries
//
// Per-request timeouts should generally be controlled via context passed to
// client methods. Retry behavior for transient failures (>=500, 429, and
// connection errors) can be tuned via RetryMax/RetryWaitMin/RetryWaitMax.
type Config struct {
	// Address: base URL of the CUBE API (e.g., "https://cube.example.org/api/v1/").
	// cubeclient.New normalizes this value by adding "https://" if no scheme
	// is present and ensuring a trailing slash.
	Address string

	// Username: account username, exchanged with Password for a token.
	Username string
	// Password: account password used with Username.
	Password string
	// Token: if set, used directly as the CUBE authorization token.
	Token string

	// HTTPTimeout: optional default HTTP timeout where supported.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures. If 0, a
	// sensible default is used by the client.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string

	// Cache: optional caching of collection link discovery and GET
	// responses. Nil disables caching.
	Cache *CacheConfig
}
