package params

import "os"

// ListenerConfig describes a network listener.
type ListenerConfig struct {
	Network string `json:"network"`
	Address string `json:"address"`
}

// WebDaemonConfig configures the strided web daemon.
type WebDaemonConfig struct {
	ListenerConfig
	DataDir string `json:"dataDir"`

	ClassifierConfig ClassifierConfig `json:"classifier"`
	AggregatorConfig AggregatorConfig `json:"-"`
	FusionConfig     FusionConfig     `json:"-"`
}

// DefaultWebDaemonConfig returns the stock daemon configuration.
func DefaultWebDaemonConfig() *WebDaemonConfig {
	return &WebDaemonConfig{
		ListenerConfig: ListenerConfig{
			Network: "tcp",
			Address: "localhost:4326",
		},
		DataDir:          DatadirRoot,
		ClassifierConfig: DefaultClassifierConfig(),
		AggregatorConfig: DefaultAggregatorConfig(),
		FusionConfig:     DefaultFusionConfig(),
	}
}

// API_TOKEN guards the mutating daemon endpoints (start/stop/samples).
// If unset, all requests are allowed.
var API_TOKEN = os.Getenv("STRIDED_TOKEN")
