package plan

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"entity-schema/descriptor"
	"entity-schema/infer"
	"entity-schema/internal/diagnostic"
	"entity-schema/internal/schemafile"
	"entity-schema/meta"
)

// Config holds configuration for the pipeline.
type Config struct {
	// Workers bounds concurrent inference (0 = GOMAXPROCS).
	Workers int
	// MinConfidence is the minimum score for reporting a probable rename.
	MinConfidence float64
	// MinGap is the minimum score gap between top rename candidates.
	MinGap float64
	// MaxSuggestions is the maximum number of names in "did you mean" hints.
	MaxSuggestions int
	// ReportUnpinned warns about entities without a pinned table.
	ReportUnpinned bool
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Workers:        runtime.GOMAXPROCS(0),
		MinConfidence:  0.7,
		MinGap:         0.15,
		MaxSuggestions: 3,
		ReportUnpinned: true,
	}
}

// Planner runs inference over a registry.
type Planner struct {
	registry *descriptor.Registry
	provider meta.FieldMetadataProvider
	schema   *schemafile.File
	inferrer *infer.Inferrer
	config   Config
	logger   zerolog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithSchemaFile sets the pinned schemas.
func WithSchemaFile(f *schemafile.File) Option {
	return func(p *Planner) {
		p.schema = f
	}
}

// WithConfig replaces the default configuration.
func WithConfig(c Config) Option {
	return func(p *Planner) {
		p.config = c
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Planner) {
		p.logger = l
	}
}

// New creates a Planner. inferOpts are passed to the inferrer.
func New(
	registry *descriptor.Registry,
	provider meta.FieldMetadataProvider,
	inferOpts []infer.Option,
	opts ...Option,
) *Planner {
	p := &Planner{
		registry: registry,
		provider: provider,
		config:   DefaultConfig(),
		logger:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.inferrer = infer.New(registry, provider, append([]infer.Option{infer.WithLogger(p.logger)}, inferOpts...)...)

	return p
}

// Roots returns the registered entity roots among ids, or among all
// registered types when ids is empty. The result is sorted.
func (p *Planner) Roots(ids ...descriptor.TypeID) []descriptor.TypeID {
	if len(ids) == 0 {
		ids = p.registry.IDs()
	}

	var roots []descriptor.TypeID
	for _, id := range ids {
		desc, ok := p.registry.Lookup(id)
		if ok && p.provider.IsEntityRoot(desc) {
			roots = append(roots, id)
		}
	}

	slices.SortFunc(roots, compareIDs)

	return slices.Compact(roots)
}

// Run infers every root and compares it with its pinned table. Inference
// failures become diagnostics. Only cancellation of ctx is returned as error.
func (p *Planner) Run(ctx context.Context, roots []descriptor.TypeID) (*Result, error) {
	results := make([]EntityResult, len(roots))
	diags := make([]diagnostic.Diagnostics, len(roots))

	g, ctx := errgroup.WithContext(ctx)
	if p.config.Workers > 0 {
		g.SetLimit(p.config.Workers)
	}

	for i, id := range roots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i], diags[i] = p.entity(id)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("plan canceled: %w", err)
	}

	result := &Result{Entities: results}
	for _, d := range diags {
		result.Diagnostics.Merge(d)
	}

	p.reportUnused(roots, &result.Diagnostics)
	result.Diagnostics.Sort()

	slices.SortFunc(result.Entities, func(a, b EntityResult) int {
		return compareIDs(a.ID, b.ID)
	})

	return result, nil
}

func (p *Planner) entity(id descriptor.TypeID) (EntityResult, diagnostic.Diagnostics) {
	res := EntityResult{ID: id, Ref: schemafile.EntityRef(id)}

	var diags diagnostic.Diagnostics

	pinned, err := p.schema.Existing(id)
	if err != nil {
		diags.AddError(diagnostic.CodeInvalidTable, err.Error(), res.Ref, "")
		res.Err = err

		return res, diags
	}

	res.Pinned = pinned

	res.Schema, res.Err = p.inferrer.Infer(id, pinned)
	if res.Err != nil {
		code := diagnostic.CodeInferenceError
		if kind := infer.KindOf(res.Err); kind != 0 {
			code = kind.String()
		}

		diags.AddError(code, res.Err.Error(), res.Ref, "")

		p.logger.Warn().Err(res.Err).Str("entity", res.Ref).Msg("inference failed")

		return res, diags
	}

	p.logger.Info().
		Str("entity", res.Ref).
		Int("columns", len(res.Schema.Columns)).
		Bool("pinned", pinned != nil).
		Msg("schema inferred")

	if p.schema == nil {
		return res, diags
	}

	if pinned == nil {
		if p.config.ReportUnpinned {
			diags.AddWarning(diagnostic.CodeMissingTable, "no table pinned in schema file", res.Ref, "")
		}

		return res, diags
	}

	diags.Merge(Compare(res.Ref, pinned, res.Schema, p.config))

	return res, diags
}

// reportUnused warns about pinned tables whose entity is not among roots.
func (p *Planner) reportUnused(roots []descriptor.TypeID, diags *diagnostic.Diagnostics) {
	if p.schema == nil {
		return
	}

	for _, t := range p.schema.Tables {
		used := slices.ContainsFunc(roots, func(id descriptor.TypeID) bool {
			return id.Matches(t.Entity)
		})

		if !used {
			diags.AddWarning(diagnostic.CodeUnusedTable, "pinned table matches no entity", t.Entity, "")
		}
	}
}

func compareIDs(a, b descriptor.TypeID) int {
	if c := strings.Compare(a.PkgPath, b.PkgPath); c != 0 {
		return c
	}

	return strings.Compare(a.Name, b.Name)
}
