package cli

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/aretw0/mbt"
	"github.com/aretw0/mbt/pkg/adapters/file"
	"github.com/aretw0/mbt/pkg/conditions"
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/generators"
)

// defaultCondition keeps a CLI run finite when the configuration names none.
var defaultCondition = ConditionConfig{Kind: string(conditions.KindEdgeCoverage), Value: "100"}

// LoadModel reads the configured model file.
func LoadModel(ctx context.Context, cfg Config) (*file.Model, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: no model given (use --model or the config file)", domain.ErrNotConfigured)
	}
	return file.NewLoader("").Load(ctx, cfg.Model)
}

// NewEngine builds an engine from cfg: model, machine mode, stop conditions, generator
// and stub template.
func NewEngine(ctx context.Context, cfg Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*mbt.Engine, *file.Model, error) {
	m, err := LoadModel(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	data := maps.Clone(m.Data)
	if data == nil {
		data = make(map[string]string)
	}
	maps.Copy(data, cfg.Data)

	name := cfg.Name
	if name == "" {
		name = m.Name
	}

	opts := []mbt.Option{
		mbt.WithLogger(logger),
		mbt.WithName(name),
		mbt.WithExtended(cfg.Extended),
		mbt.WithBacktrack(cfg.Backtrack),
		mbt.WithInitialData(data),
		mbt.WithLifecycleHooks(hooks),
	}
	if cfg.Seed != nil {
		opts = append(opts, mbt.WithSeed(*cfg.Seed))
	}

	eng, err := mbt.New(m.Graph, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}

	if cfg.Template != "" {
		tmpl, err := file.ReadTemplate(cfg.Template)
		if err != nil {
			return nil, nil, err
		}
		eng.SetTemplate(tmpl)
	}

	conds := cfg.Conditions
	if len(conds) == 0 {
		conds = []ConditionConfig{defaultCondition}
	}
	for _, c := range conds {
		if err := eng.AddCondition(conditions.Kind(c.Kind), c.Value); err != nil {
			return nil, nil, err
		}
	}

	kind := cfg.Generator
	if kind == "" {
		kind = string(generators.KindRandom)
	}
	if err := eng.SetGenerator(generators.Kind(kind)); err != nil {
		return nil, nil, err
	}

	logger.Debug("engine ready", "model", name, "generator", eng.Generator().String(),
		"condition", eng.Condition().String(), "extended", cfg.Extended)
	return eng, m, nil
}
