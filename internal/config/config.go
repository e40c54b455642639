// Package config provides configuration loading for the invoke-demo CLI.
//
// It intentionally mirrors the shape the core itself never needs: the
// InvocationContext and FutureHandle in internal/domain/invoke take their
// dependencies as constructor arguments and know nothing about YAML, Viper,
// or environment variables. This package exists only to assemble those
// arguments for the demo binary.
package config

// Config is the top-level configuration for the invoke-demo CLI.
type Config struct {
	// Receiver configures the loopback Receiver used by every demo
	// scenario in lieu of a real wire transport.
	Receiver ReceiverConfig `yaml:"receiver" mapstructure:"receiver"`

	// Affinity configures the CEL-based weak-affinity routing hint
	// evaluator.
	Affinity AffinityConfig `yaml:"affinity" mapstructure:"affinity"`

	// Credential configures the Argon2id credential check applied before
	// an invocation reaches the Receiver.
	Credential CredentialConfig `yaml:"credential" mapstructure:"credential"`

	// Audit configures the SQLite-backed invocation journal.
	Audit AuditConfig `yaml:"audit" mapstructure:"audit"`

	// DefaultTimeout is a Go duration string (e.g. "5s"). It is loaded and
	// validated, but no demo scenario reads it: FutureHandle.Get waits
	// without a deadline and the timeout scenario uses its own fixed wait.
	DefaultTimeout string `yaml:"default_timeout" mapstructure:"default_timeout" validate:"required"`

	// DevMode enables verbose debug logging.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ReceiverConfig configures the loopback worker-pool Receiver.
type ReceiverConfig struct {
	// Workers is the size of the worker pool that services invocations.
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=1,lte=256"`
	// SimulatedLatency is the artificial delay before a reply is ready,
	// expressed as a Go duration string.
	SimulatedLatency string `yaml:"simulated_latency" mapstructure:"simulated_latency"`
}

// AffinityConfig configures the weak-affinity CEL evaluator.
type AffinityConfig struct {
	// Enabled controls whether the affinity interceptor is wired in.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Expression is the CEL expression evaluated against contextData to
	// produce a routing hint. Must evaluate to a boolean; on true, the
	// expression text itself is attached as the hint.
	Expression string `yaml:"expression" mapstructure:"expression" validate:"required_if=Enabled true"`
}

// CredentialConfig configures the Argon2id credential interceptor.
type CredentialConfig struct {
	// Enabled controls whether the credential interceptor is wired in.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// HashedSecret is the Argon2id PHC-format hash the caller-supplied
	// secret attachment is checked against.
	HashedSecret string `yaml:"hashed_secret" mapstructure:"hashed_secret" validate:"required_if=Enabled true"`
}

// AuditConfig configures the SQLite invocation journal.
type AuditConfig struct {
	// Enabled controls whether the audit interceptor is wired in.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DatabasePath is the filesystem path to the SQLite database file.
	// Use ":memory:" for an ephemeral journal.
	DatabasePath string `yaml:"database_path" mapstructure:"database_path" validate:"required_if=Enabled true"`
}

// Default returns a Config with sane defaults for the demo CLI.
func Default() *Config {
	return &Config{
		Receiver: ReceiverConfig{
			Workers:          4,
			SimulatedLatency: "10ms",
		},
		Affinity: AffinityConfig{
			Enabled:    true,
			Expression: `context_arg(context_data, "sticky") == identity`,
		},
		Credential: CredentialConfig{
			Enabled: false,
		},
		Audit: AuditConfig{
			Enabled:      true,
			DatabasePath: ":memory:",
		},
		DefaultTimeout: "5s",
	}
}
