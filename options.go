package decodergen

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/wippyai/decodergen/downlevel"
	"github.com/wippyai/decodergen/transpiler"
)

// Option configures a Generator.
type Option = func(*config)

type config struct {
	logger      *zap.Logger
	downleveler transpiler.Downleveler
	registry    *transpiler.Registry
	cache       *Cache
	concurrency int
}

func defaultConfig() config {
	return config{
		logger:      Logger(),
		downleveler: downlevel.NewEsbuild(),
		registry:    transpiler.DefaultRegistry(),
		cache:       NewCache(),
		concurrency: runtime.GOMAXPROCS(0),
	}
}

// WithLogger sets the logger generation reports to.
func WithLogger(logger *zap.Logger) Option {
	if logger == nil {
		panic("logger can't be nil")
	}
	return func(c *config) {
		c.logger = logger
	}
}

// WithDownleveler replaces the esbuild downleveler used for subroutine tables.
func WithDownleveler(d transpiler.Downleveler) Option {
	if d == nil {
		panic("downleveler can't be nil")
	}
	return func(c *config) {
		c.downleveler = d
	}
}

// WithRegistry replaces the statement shapes recognized in port bodies.
func WithRegistry(r *transpiler.Registry) Option {
	if r == nil {
		panic("registry can't be nil")
	}
	return func(c *config) {
		c.registry = r
	}
}

// WithCache shares a transpile cache between generators. Results depend
// on the downleveler and registry, so share a cache only between generators
// configured alike.
func WithCache(cache *Cache) Option {
	if cache == nil {
		panic("cache can't be nil")
	}
	return func(c *config) {
		c.cache = cache
	}
}

// WithConcurrency bounds how many ports are transpiled at once.
func WithConcurrency(n int) Option {
	if n < 1 {
		panic("concurrency can't be < 1")
	}
	return func(c *config) {
		c.concurrency = n
	}
}
