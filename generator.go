package decodergen

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/decodergen/assembler"
	"github.com/wippyai/decodergen/errors"
	"github.com/wippyai/decodergen/transpiler"
)

// Ports maps fPort numbers to the generated code of their parsers.
type Ports map[uint32]transpiler.Source

// Numbers returns the port numbers in ascending order.
func (p Ports) Numbers() []uint32 {
	out := make([]uint32, 0, len(p))
	for n := range p {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Generator turns port tables into decoders. It is safe for concurrent use.
type Generator struct {
	cfg config
}

// New creates a Generator configured by opts.
func New(opts ...Option) *Generator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Generator{cfg: cfg}
}

// Cache returns the generator's transpile cache.
func (g *Generator) Cache() *Cache {
	return g.cfg.cache
}

// GenerateChirpstackV4 emits a decoder exposing decodeUplink(input).
func GenerateChirpstackV4(ctx context.Context, ports Ports, opts ...Option) (string, error) {
	return New(opts...).Generate(ctx, ports, assembler.ShellV4)
}

// GenerateChirpstackV3 emits a decoder exposing Decode(fPort, bytes, variables).
func GenerateChirpstackV3(ctx context.Context, ports Ports, opts ...Option) (string, error) {
	return New(opts...).Generate(ctx, ports, assembler.ShellV3)
}

// Generate transpiles every port and assembles them behind shell.
// Any failure aborts the whole generation; no partial output is returned.
func (g *Generator) Generate(ctx context.Context, ports Ports, shell assembler.Shell) (string, error) {
	if !shell.Valid() {
		return "", errors.New(errors.PhaseGenerate, errors.KindUnsupported).
			Value(shell).
			Detail("unknown shell %s", shell).
			Build()
	}

	transpiled, err := g.Transpile(ctx, ports)
	if err != nil {
		return "", err
	}

	src, err := assembler.Assemble(shell, transpiled)
	if err != nil {
		return "", err
	}

	g.cfg.logger.Info("decoder generated",
		zap.Stringer("shell", shell),
		zap.Int("ports", len(transpiled)),
		zap.Stringer("readers", assembler.Readers(transpiled)),
		zap.Int("bytes", len(src)))
	return src, nil
}

// Transpile runs the line transpiler over every port concurrently and
// returns the results in ascending port order.
func (g *Generator) Transpile(ctx context.Context, ports Ports) ([]assembler.Port, error) {
	numbers := ports.Numbers()
	out := make([]assembler.Port, len(numbers))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(g.cfg.concurrency)

	for i, n := range numbers {
		src := ports[n]
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.New(errors.PhaseGenerate, errors.KindCanceled).
					Path(errors.PortPath(n)).
					Cause(err).
					Build()
			}
			if src == nil {
				return errors.New(errors.PhaseGenerate, errors.KindInvalidInput).
					Path(errors.PortPath(n)).
					Detail("nil source").
					Build()
			}
			res, err := g.transpile(gctx, n, src)
			if err != nil {
				return err
			}
			out[i] = assembler.Port{Number: n, Result: res}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		g.cfg.logger.Debug("generation aborted", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (g *Generator) transpile(ctx context.Context, port uint32, src transpiler.Source) (*transpiler.Result, error) {
	code, imports := src.Code(), src.Imports()
	log := g.cfg.logger.With(zap.Uint32("port", port))

	if res, ok := g.cfg.cache.load(code, imports); ok {
		log.Debug("port transpiled", zap.Bool("cached", true))
		return res, nil
	}

	res, err := transpiler.Transpile(ctx, src, transpiler.Config{
		Registry:    g.cfg.registry,
		Downleveler: g.cfg.downleveler,
		Logger:      g.cfg.logger,
		Port:        port,
	})
	if err != nil {
		return nil, err
	}

	g.cfg.cache.store(code, imports, res)
	log.Debug("port transpiled",
		zap.Bool("cached", false),
		zap.Stringer("readers", res.Readers),
		zap.Int("imports", len(imports)))
	return res, nil
}
