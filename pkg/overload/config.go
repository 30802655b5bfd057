package overload

import (
	"io"

	"github.com/zurustar/overload/pkg/config"
	"github.com/zurustar/overload/pkg/logger"
)

// FromConfig translates cfg into options. Trace records are written to w
// at cfg.LogLevel; a nil w leaves the logger unset so the global one is used.
func FromConfig(cfg *config.Config, w io.Writer) ([]Option, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := []Option{WithTrace(cfg.Trace), WithStrict(cfg.Strict)}
	if w != nil {
		l, err := logger.New(cfg.LogLevel, w)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLogger(l))
	}
	return opts, nil
}
