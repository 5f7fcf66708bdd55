package wikisource

// Config holds configuration for the Wikisource API client.
type Config struct {
	// UserAgent identifies this tool to the Wikimedia API servers.
	UserAgent string `mapstructure:"user_agent" default:"IndicWikisourceContest/1.1 (https://example.org/IndicWikisourceContest/)"`
	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
