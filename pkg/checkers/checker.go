package checkers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/inicheck/pkg/ports"
	"github.com/aretw0/inicheck/pkg/schema"
)

// Checker validates and casts one (section, item) of a raw configuration.
type Checker interface {
	// Type is the declared type of the item.
	Type() schema.Type

	// Cast returns the typed value: a scalar, or a []any in list mode.
	// The first failing scalar is returned as an *Issue.
	Cast(ctx context.Context) (any, error)

	// Check validates every scalar of the item. The error return is reserved
	// for store failures; invalid user input is reported in the Result.
	Check(ctx context.Context) (*Result, error)
}

// Option configures a checker.
type Option func(*options)

type options struct {
	list   *bool
	logger *slog.Logger
	hooks  Hooks
}

// WithListMode overrides the list allowance declared by the schema.
func WithListMode(list bool) Option {
	return func(o *options) {
		o.list = &list
	}
}

// WithLogger sets the logger used for debug output. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHooks registers observability callbacks.
func WithHooks(hooks Hooks) Option {
	return func(o *options) {
		o.hooks = o.hooks.Merge(hooks)
	}
}

// caster converts one non-empty raw scalar to its typed value.
type caster interface {
	cast(raw any) (any, *Issue)

	// empty handles an empty raw value when the schema declares no default.
	empty() (any, *Issue)
}

// defaultCaster is implemented by casters that treat declared defaults
// differently from user input.
type defaultCaster interface {
	castDefault(def any) (any, *Issue)
}

// New builds the checker for (section, item) of store. It fails with
// schema.ErrUnknownItem when the item is not declared in master.
func New(store ports.ConfigStore, master *schema.Master, section, item string, opts ...Option) (Checker, error) {
	entry, err := master.Lookup(section, item)
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	b := &base{
		store:  store,
		entry:  entry,
		list:   entry.List,
		logger: o.logger.With("section", section, "item", item, "type", entry.Type),
		hooks:  o.hooks,
	}
	if o.list != nil {
		b.list = *o.list
	}

	if entry.Type.Path() {
		directory := entry.Type == schema.TypeDirectory || entry.Type == schema.TypeCriticalDirectory
		b.caster = newPathCaster(store.Dir(), directory, entry.Type.Critical())
		return b, nil
	}

	switch entry.Type {
	case schema.TypeString:
		b.caster = stringCaster{}
	case schema.TypeBool:
		b.caster = boolCaster{}
	case schema.TypeInt:
		b.caster = intCaster{}
	case schema.TypeFloat:
		b.caster = floatCaster{}
	case schema.TypeDatetime:
		b.caster = datetimeCaster{}
	case schema.TypeURL:
		b.caster = urlCaster{}
	case schema.TypeDatetimeOrderedPair:
		b.caster = datetimeCaster{}
		return &pairChecker{base: b}, nil
	default:
		return nil, fmt.Errorf("%s: unsupported type: %s", entry.Key(), entry.Type)
	}
	return b, nil
}

// base carries the behavior shared by every variant: reading the raw value,
// normalizing it, default substitution, bounds and allowed values.
type base struct {
	store  ports.ConfigStore
	entry  schema.Entry
	list   bool
	logger *slog.Logger
	hooks  Hooks
	caster caster
}

func (b *base) Type() schema.Type { return b.entry.Type }

func (b *base) Cast(ctx context.Context) (any, error) {
	raw, _, err := b.read(ctx)
	if err != nil {
		return nil, err
	}

	value, _, issues := b.castAll(raw)
	for _, iss := range issues {
		if iss != nil {
			return nil, iss
		}
	}
	return value, nil
}

func (b *base) Check(ctx context.Context) (*Result, error) {
	start := time.Now()
	res, _, err := b.check(ctx)
	if err != nil {
		return nil, err
	}
	b.finish(ctx, res, start)
	return res, nil
}

func (b *base) read(ctx context.Context) (any, bool, error) {
	raw, ok, err := b.store.Get(ctx, b.entry.Section, b.entry.Item)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", b.entry.Key(), err)
	}
	return raw, ok, nil
}

// check casts every scalar of the item. scalars holds the typed value of each
// scalar, nil where it failed.
func (b *base) check(ctx context.Context) (*Result, []any, error) {
	raw, ok, err := b.read(ctx)
	if err != nil {
		return nil, nil, err
	}

	value, scalars, issues := b.castAll(raw)
	res := &Result{
		Section: b.entry.Section,
		Item:    b.entry.Item,
		Type:    b.entry.Type,
		Issues:  issues,
	}
	// Items absent from the store get no update: the store never gains keys.
	if ok && res.Valid() {
		res.Update = &Update{Section: b.entry.Section, Item: b.entry.Item, Value: value}
	}
	return res, scalars, nil
}

func (b *base) finish(ctx context.Context, res *Result, start time.Time) {
	if !res.Valid() {
		res.Update = nil
		b.logger.Debug("check failed", "err", res.Err())
	}
	b.hooks.emit(ctx, res, start)
}

func (b *base) castAll(raw any) (any, []any, []error) {
	items, wrapped, iss := normalize(raw, b.list)
	if iss != nil {
		return nil, nil, []error{b.bind(iss, raw)}
	}
	if wrapped {
		b.logger.Debug("wrapping single value as list")
	}

	scalars := make([]any, len(items))
	issues := make([]error, len(items))
	for i, item := range items {
		v, iss := b.castScalar(item)
		if iss != nil {
			issues[i] = b.bind(iss, item)
			continue
		}
		scalars[i] = v
	}

	if b.list {
		return scalars, scalars, issues
	}
	return scalars[0], scalars, issues
}

func (b *base) castScalar(raw any) (any, *Issue) {
	if isEmpty(raw) {
		return b.castEmpty()
	}

	v, iss := b.caster.cast(raw)
	if iss != nil {
		return nil, iss
	}
	return b.constrain(v)
}

func (b *base) castEmpty() (any, *Issue) {
	def := b.entry.Default
	if isEmpty(def) {
		return b.caster.empty()
	}
	b.logger.Debug("empty value, using default", "default", def)

	var (
		v   any
		iss *Issue
	)
	if dc, ok := b.caster.(defaultCaster); ok {
		v, iss = dc.castDefault(def)
	} else {
		v, iss = b.caster.cast(def)
	}
	if iss != nil {
		iss.Reason = "default " + iss.Reason
		return nil, iss
	}
	return b.constrain(v)
}

// constrain applies the declared bounds and allowed values to a cast value.
func (b *base) constrain(v any) (any, *Issue) {
	if b.entry.HasBounds() {
		if iss := checkBounds(v, b.entry.Min, b.entry.Max); iss != nil {
			return nil, iss
		}
	}
	if len(b.entry.Options) > 0 {
		if iss := b.checkOptions(v); iss != nil {
			return nil, iss
		}
	}
	return v, nil
}

// checkOptions casts every allowed value with the item's own rules, so
// "Fast" matches an option declared as "fast" and 1.0 matches 1.
func (b *base) checkOptions(v any) *Issue {
	for _, opt := range b.entry.Options {
		want, iss := b.caster.cast(opt)
		if iss != nil {
			continue
		}
		if sameValue(v, want) {
			return nil
		}
	}
	return issuef(KindOption, "%s is not a valid option, expected one of %v", show(v), b.entry.Options)
}

func (b *base) bind(iss *Issue, raw any) *Issue {
	iss.Section = b.entry.Section
	iss.Item = b.entry.Item
	iss.Value = raw
	return iss
}

func sameValue(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}
