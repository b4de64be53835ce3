package config

const (
	// DefaultSocketPath is the well-known vineyard IPC endpoint.
	DefaultSocketPath = "/var/run/vineyard.sock"

	defaultConnectTimeoutSeconds = 2
	defaultRequestTimeoutSeconds = 30
	defaultRetryMode             = "exponential"
	defaultRetryInitialMS        = 50
	defaultRetryMaxMS            = 1000
	defaultRetryMaxRetries       = 3
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogDir                = "~/.local/share/vinestore/logs"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		IPC: IPC{
			SocketPath:            DefaultSocketPath,
			ConnectTimeoutSeconds: defaultConnectTimeoutSeconds,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Retry: Retry{
			Mode:       defaultRetryMode,
			InitialMS:  defaultRetryInitialMS,
			MaxMS:      defaultRetryMaxMS,
			MaxRetries: defaultRetryMaxRetries,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			LogDir: defaultLogDir,
		},
	}
}
