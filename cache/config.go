package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AaronQLF/dashTemplate/errors"
)

// Strategy names a caching policy kind for configuration files.
type Strategy string

const (
	StrategyMemoize      Strategy = "memoize"
	StrategyTimed        Strategy = "timed"
	StrategyLRU          Strategy = "lru"
	StrategyDisk         Strategy = "disk"
	StrategyParametrized Strategy = "parametrized"
)

// Duration is a time.Duration that unmarshals from JSON duration strings
// ("5m", "1h30m") as well as nanosecond numbers.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*d = Duration(time.Duration(v))
		return nil
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration type %T", raw)
	}
}

// Config selects and parametrizes a caching policy from configuration.
type Config struct {
	Strategy Strategy `json:"strategy"`

	// TTL bounds entry lifetime for the timed strategy.
	TTL Duration `json:"ttl,omitempty"`

	// MaxSize bounds entry count for the lru strategy.
	MaxSize int `json:"max_size,omitempty"`

	// Directory and Expiration configure the disk strategy. A zero
	// expiration keeps entries until cleared.
	Directory  string   `json:"directory,omitempty"`
	Expiration Duration `json:"expiration,omitempty"`

	// BypassParameter names the per-call cache switch for the parametrized
	// strategy.
	BypassParameter string `json:"bypass_parameter,omitempty"`
}

// Validate checks that the config is internally consistent for its strategy.
func (c Config) Validate() error {
	fail := func(err error) error {
		return errors.WrapInvalid(err, "cache", "Config.Validate", "validate cache config")
	}
	switch c.Strategy {
	case StrategyMemoize:
	case StrategyTimed:
		if c.TTL <= 0 {
			return fail(fmt.Errorf("timed strategy requires a positive ttl, got %s", time.Duration(c.TTL)))
		}
	case StrategyLRU:
		if c.MaxSize <= 0 {
			return fail(fmt.Errorf("lru strategy requires a positive max_size, got %d", c.MaxSize))
		}
	case StrategyDisk:
		if c.Directory == "" {
			return fail(fmt.Errorf("disk strategy requires a directory"))
		}
	case StrategyParametrized:
		if c.BypassParameter == "" {
			return fail(fmt.Errorf("parametrized strategy requires a bypass_parameter"))
		}
	case "":
		return fail(fmt.Errorf("%w: strategy", errors.ErrMissingConfig))
	default:
		return fail(fmt.Errorf("unknown strategy %q", c.Strategy))
	}
	return nil
}

// NewPolicyFromConfig builds the policy the config describes. The
// parametrized strategy is backed by memoization; its bypass switch is wired
// by WrapFromConfig.
func NewPolicyFromConfig[V any](name string, cfg Config) (Policy[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Strategy {
	case StrategyMemoize, StrategyParametrized:
		return NewMemoize[V](), nil
	case StrategyTimed:
		return NewTimed[V](time.Duration(cfg.TTL)), nil
	case StrategyLRU:
		return NewLRU[V](cfg.MaxSize)
	case StrategyDisk:
		return NewDisk[V](name, cfg.Directory,
			WithExpiration[V](time.Duration(cfg.Expiration)))
	default:
		return nil, errors.WrapInvalid(
			fmt.Errorf("unknown strategy %q", cfg.Strategy),
			"cache", "NewPolicyFromConfig", "select policy")
	}
}

// WrapFromConfig wraps fn with the policy the config describes, including
// the bypass switch for the parametrized strategy.
func WrapFromConfig[V any](name string, fn ComputeFunc[V], cfg Config, opts ...WrapOption[V]) (*CachedFunc[V], error) {
	policy, err := NewPolicyFromConfig[V](name, cfg)
	if err != nil {
		return nil, err
	}
	wrapped := Wrap(name, fn, policy, opts...)
	if cfg.Strategy == StrategyParametrized {
		wrapped.bypassParam = cfg.BypassParameter
	}
	return wrapped, nil
}
