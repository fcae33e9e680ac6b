package lookup

import (
	"context"
	"log/slog"
	"sync"

	"github.com/frahmantamala/migration-tracker/internal"
)

// Option is one selectable (key, label) pair for a select field. Options
// are transient: recomputed on demand, never persisted.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// SourceAPI is the external collaborator that turns an opaque reference
// string into option rows.
type SourceAPI interface {
	Resolve(ctx context.Context, ref string) ([]Option, error)
}

type Resolver struct {
	source SourceAPI
	logger *slog.Logger
}

func NewResolver(source SourceAPI, logger *slog.Logger) *Resolver {
	return &Resolver{
		source: source,
		logger: logger,
	}
}

// NewBatch starts a resolution batch for one logical request. Results are
// cached per distinct ref inside the batch, so several fields sharing a
// source hit the collaborator once.
func (r *Resolver) NewBatch() *Batch {
	return &Batch{
		resolver: r,
		options:  make(map[string][]Option),
		failures: make(map[string]error),
	}
}

// Batch caches lookups within one request. Not shared across requests;
// callers get a fresh batch per invocation, so there is no cross-request
// mutable state.
type Batch struct {
	resolver *Resolver

	mu       sync.Mutex
	options  map[string][]Option
	failures map[string]error
}

// Resolve returns the options for ref, consulting the batch cache first.
// An empty ref yields an empty set, not an error.
func (b *Batch) Resolve(ctx context.Context, ref string) ([]Option, error) {
	if ref == "" {
		return nil, nil
	}

	b.mu.Lock()
	if opts, ok := b.options[ref]; ok {
		b.mu.Unlock()
		return opts, nil
	}
	if err, ok := b.failures[ref]; ok {
		b.mu.Unlock()
		return nil, err
	}
	b.mu.Unlock()

	opts, err := b.resolver.source.Resolve(ctx, ref)
	if err != nil {
		appErr := internal.NewLookupUnavailableError(ref, err)
		b.resolver.logger.Warn("lookup source unavailable", "ref", ref, "error", err)
		b.mu.Lock()
		b.failures[ref] = appErr
		b.mu.Unlock()
		return nil, appErr
	}

	b.mu.Lock()
	b.options[ref] = opts
	b.mu.Unlock()
	return opts, nil
}

// ResolveAll resolves every distinct ref concurrently and joins the
// results before returning. A failing ref does not abort its siblings:
// failures come back keyed by ref so the caller can report them per field.
func (b *Batch) ResolveAll(ctx context.Context, refs []string) (map[string][]Option, map[string]error) {
	distinct := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		distinct = append(distinct, ref)
	}

	var wg sync.WaitGroup
	for _, ref := range distinct {
		wg.Add(1)
		go func(ref string) {
			defer wg.Done()
			_, _ = b.Resolve(ctx, ref)
		}(ref)
	}
	wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()

	resolved := make(map[string][]Option, len(b.options))
	for ref, opts := range b.options {
		resolved[ref] = opts
	}
	failed := make(map[string]error, len(b.failures))
	for ref, err := range b.failures {
		failed[ref] = err
	}
	return resolved, failed
}
