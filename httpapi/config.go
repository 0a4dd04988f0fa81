package httpapi

// Config defines executor HTTP server settings.
type Config struct {
	// Addr is the listen address, host:port or :port.
	Addr string
	// RootDir seeds each session's working directory. Empty means the
	// process working directory.
	RootDir string
}
