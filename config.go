package ablychat

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ably/ably-chat-go/internal/logging"
)

// ClientOptions configures a Client. It can be built directly or loaded
// from a YAML file with LoadClientOptions, following the
// struct-tags-plus-defaults() pattern used by
// hazyhaar-chrc/domwatch/internal/config for its own YAML config.
type ClientOptions struct {
	// RealtimeURL is the websocket endpoint the client dials to attach
	// channels.
	RealtimeURL string `yaml:"realtime_url"`
	// RESTURL is the base URL used for the history REST client.
	RESTURL string `yaml:"rest_url"`
	// APIKey authenticates the REST history client. The realtime
	// connection is dialled with RealtimeURL only.
	APIKey string `yaml:"api_key"`
	// AttachTimeout is loaded and defaulted, but Client and Room do not
	// apply it: an ATTACH/DETACH call is bounded only by the context its
	// caller passes (the lifecycle manager itself has no internal
	// timeout, per spec.md §5).
	AttachTimeout time.Duration `yaml:"attach_timeout"`
	// LogLevel controls the verbosity of the client's logrus logger.
	LogLevel logging.Level `yaml:"-"`
}

func (o *ClientOptions) defaults() {
	if o.AttachTimeout <= 0 {
		o.AttachTimeout = 10 * time.Second
	}
	if o.LogLevel == 0 {
		o.LogLevel = logging.LevelInfo
	}
}

func defaultClientOptions() *ClientOptions {
	o := &ClientOptions{}
	o.defaults()
	return o
}

// LoadClientOptions reads and parses a YAML configuration file, then
// applies defaults to any fields it left unset.
func LoadClientOptions(path string) (*ClientOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ablychat: reading client options file: %w", err)
	}

	opts := defaultClientOptions()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("ablychat: parsing client options file: %w", err)
	}
	opts.defaults()
	return opts, nil
}
