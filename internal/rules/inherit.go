package rules

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/JNZader/commitrules/internal/logger"
)

const maxRemoteRuleSetSize = 1 << 20

// Resolver turns an ordered list of base rule-set references plus sparse
// overrides into an effective rule table.
type Resolver struct {
	registry   *Registry
	httpClient *http.Client
	baseDir    string
	log        zerolog.Logger

	mu    sync.Mutex
	cache map[string]RuleSet
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithHTTPClient sets the client used for https:// sources.
func WithHTTPClient(c *http.Client) ResolverOption {
	return func(r *Resolver) { r.httpClient = c }
}

// WithBaseDir sets the directory relative file sources are resolved against.
// Defaults to the working directory.
func WithBaseDir(dir string) ResolverOption {
	return func(r *Resolver) { r.baseDir = dir }
}

// NewResolver creates a resolver that looks names up in registry.
func NewResolver(registry *Registry, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		registry: registry,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:   logger.WithComponent("rules"),
		cache: make(map[string]RuleSet),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve loads every extends entry in order, merges them with later
// entries winning per rule, then applies overrides on top. Override keys
// must name a rule of the resolved base table.
func (r *Resolver) Resolve(ctx context.Context, extends []string, overrides map[string]Directive) (Table, error) {
	if err := ValidateExtends(extends); err != nil {
		return nil, err
	}

	base := Table{}
	for _, ref := range extends {
		table, err := r.resolveRef(ctx, ref, "", nil)
		if err != nil {
			return nil, err
		}
		base = lo.Assign(base, table)
	}

	for id := range overrides {
		if _, ok := base[id]; !ok {
			return nil, fmt.Errorf("%w: %q is not defined by %s", ErrUnknownRule, id, strings.Join(extends, ", "))
		}
	}

	effective := Table(lo.Assign(base, Table(overrides)))

	r.log.Debug().
		Strs("extends", extends).
		Int("base_rules", len(base)).
		Int("overrides", len(overrides)).
		Int("enabled", len(effective.Enabled())).
		Msg("resolved rule table")

	return effective, nil
}

// resolveRef resolves a single reference, including the sets it extends.
// dir is the directory of the file that referenced ref, or empty for
// top-level references. chain holds the sources currently being resolved
// and detects cycles.
func (r *Resolver) resolveRef(ctx context.Context, ref, dir string, chain []string) (Table, error) {
	src, err := r.locate(ref, dir)
	if err != nil {
		return nil, err
	}
	if lo.Contains(chain, src.key) {
		return nil, fmt.Errorf("%w: %s", ErrExtendsCycle, strings.Join(append(chain, src.key), " -> "))
	}

	set, err := r.load(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := ValidateExtends(set.Extends); err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}

	childDir := ""
	if src.kind == "file" {
		childDir = filepath.Dir(src.key)
	}

	chain = append(chain, src.key)
	table := Table{}
	for _, parent := range set.Extends {
		parentTable, err := r.resolveRef(ctx, parent, childDir, chain)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
		table = lo.Assign(table, parentTable)
	}

	return lo.Assign(table, set.Rules), nil
}

// source identifies where a rule set comes from. key is the registry name,
// the URL or the absolute file path.
type source struct {
	key  string
	kind string
}

func (r *Resolver) locate(ref, dir string) (source, error) {
	if _, ok := r.registry.Lookup(ref); ok {
		return source{key: ref, kind: "registry"}, nil
	}

	switch {
	case strings.HasPrefix(ref, "http://"):
		return source{}, fmt.Errorf("%w: %s", ErrInsecureSource, ref)
	case isURL(ref):
		return source{key: ref, kind: "url"}, nil
	case isFile(ref):
		path, err := r.absPath(ref, dir)
		if err != nil {
			return source{}, err
		}
		return source{key: path, kind: "file"}, nil
	default:
		return source{}, fmt.Errorf("%w: %s", ErrUnknownRuleSet, ref)
	}
}

// load fetches a rule set from the registry, an https URL or a file.
func (r *Resolver) load(ctx context.Context, src source) (RuleSet, error) {
	if src.kind == "registry" {
		set, _ := r.registry.Lookup(src.key)
		r.log.Debug().Str("source", src.key).Str("kind", src.kind).Msg("loaded rule set")
		return set, nil
	}

	r.mu.Lock()
	cached, ok := r.cache[src.key]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	var (
		data []byte
		err  error
	)
	if src.kind == "url" {
		data, err = r.fetchFromURL(ctx, src.key)
	} else {
		data, err = os.ReadFile(src.key) //nolint:gosec // Path comes from config
	}
	if err != nil {
		return RuleSet{}, fmt.Errorf("loading rule set %s: %w", src.key, err)
	}

	set, err := ParseRuleSet(data)
	if err != nil {
		return RuleSet{}, fmt.Errorf("parsing rule set %s: %w", src.key, err)
	}

	r.mu.Lock()
	r.cache[src.key] = set
	r.mu.Unlock()

	r.log.Debug().Str("source", src.key).Str("kind", src.kind).Int("rules", len(set.Rules)).Msg("loaded rule set")
	return set, nil
}

func (r *Resolver) fetchFromURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", "commitrules/1.0")
	req.Header.Set("Accept", "application/yaml, text/yaml, application/x-yaml")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteRuleSetSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxRemoteRuleSetSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrRuleSetTooLarge, maxRemoteRuleSetSize)
	}
	return data, nil
}

// absPath resolves a relative file reference against dir, then the
// resolver's base directory, then the working directory.
func (r *Resolver) absPath(path, dir string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if dir == "" {
		dir = r.baseDir
	}
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = cwd
	}
	return filepath.Abs(filepath.Join(dir, path))
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func isFile(source string) bool {
	ext := filepath.Ext(source)
	return ext == ".yaml" || ext == ".yml"
}

// ValidateExtends checks extends references without resolving them.
func ValidateExtends(extends []string) error {
	seen := make(map[string]bool, len(extends))
	for _, source := range extends {
		if strings.TrimSpace(source) == "" {
			return fmt.Errorf("%w: empty entry in extends", ErrUnknownRuleSet)
		}
		if isURL(source) && !strings.HasPrefix(source, "https://") {
			return fmt.Errorf("%w: %s", ErrInsecureSource, source)
		}
		if seen[source] {
			return fmt.Errorf("duplicate extends entry: %s", source)
		}
		seen[source] = true
	}
	return nil
}
