package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/rzubek/botl/lang/vm"
)

// Config is the env-var-driven tunable set for NewFromEnv (SPEC_FULL.md §6
// "Configuration via env vars"), giving a deployable CLI tool's ambient
// step-budget and tracing knobs a concrete surface instead of requiring
// every embedder to hand-wire vm.Budget/vm.Machine struct literals.
type Config struct {
	MaxSteps     int  `env:"BOTL_MAX_STEPS" envDefault:"10000000"`
	MaxTimeMs    int  `env:"BOTL_MAX_TIME_MS" envDefault:"10000"`
	MaxCallDepth int  `env:"BOTL_MAX_CALL_DEPTH" envDefault:"100000"`
	Trace        bool `env:"BOTL_TRACE" envDefault:"false"`
}

// NewFromEnv returns an Engine configured from the process environment,
// per Config's struct tags.
func NewFromEnv() (*Engine, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e := New()
	cfg.apply(e.Machine)
	return e, nil
}

func (cfg Config) apply(m *vm.Machine) {
	m.Budget = vm.Budget{
		MaxSteps: cfg.MaxSteps,
		MaxTime:  time.Duration(cfg.MaxTimeMs) * time.Millisecond,
	}
	m.MaxCallDepth = cfg.MaxCallDepth
	if cfg.Trace {
		m.TraceAll = true
		m.Trace = func(ind vm.Indicator, depth int) {
			fmt.Fprintf(os.Stderr, "trace: %*s%s\n", depth*2, "", ind)
		}
	}
}
