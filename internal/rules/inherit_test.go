package rules

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const conventional = "conventional-commit-rules"

func newTestResolver(t *testing.T, opts ...ResolverOption) *Resolver {
	t.Helper()
	reg, err := NewRegistry()
	require.NoError(t, err)
	return NewResolver(reg, opts...)
}

func TestResolve_OverridesWin(t *testing.T) {
	r := newTestResolver(t)

	overrides := map[string]Directive{
		"subject-empty":     Off(),
		"type-empty":        Off(),
		"type-enum":         Off(),
		"scope-case":        Off(),
		"header-max-length": Off(),
	}

	table, err := r.Resolve(context.Background(), []string{conventional}, overrides)
	require.NoError(t, err)

	for id := range overrides {
		assert.Equal(t, SeverityOff, table[id].Severity, id)
	}
}

func TestResolve_UntouchedRulesKeepBase(t *testing.T) {
	r := newTestResolver(t)
	base, _ := r.registry.Lookup(conventional)

	table, err := r.Resolve(context.Background(), []string{conventional}, map[string]Directive{
		"type-enum": Off(),
	})
	require.NoError(t, err)

	for id, want := range base.Rules {
		if id == "type-enum" {
			continue
		}
		assert.Equal(t, want, table[id], id)
	}
	assert.Len(t, table, len(base.Rules))
}

func TestResolve_LaterExtendsWin(t *testing.T) {
	reg := NewEmptyRegistry()
	require.NoError(t, reg.Register(RuleSet{Name: "a", Rules: Table{
		"header-max-length": Error(Always, 100),
		"type-empty":        Error(Never, nil),
	}}))
	require.NoError(t, reg.Register(RuleSet{Name: "b", Rules: Table{
		"header-max-length": Warn(Always, 72),
	}}))

	table, err := NewResolver(reg).Resolve(context.Background(), []string{"a", "b"}, nil)
	require.NoError(t, err)

	assert.Equal(t, Warn(Always, 72), table["header-max-length"])
	assert.Equal(t, Error(Never, nil), table["type-empty"])
}

func TestResolve_NestedExtends(t *testing.T) {
	reg := NewEmptyRegistry()
	require.NoError(t, reg.Register(RuleSet{Name: "root", Rules: Table{
		"type-empty":  Error(Never, nil),
		"header-trim": Error(Always, nil),
	}}))
	require.NoError(t, reg.Register(RuleSet{Name: "child", Extends: []string{"root"}, Rules: Table{
		"header-trim": Off(),
	}}))

	table, err := NewResolver(reg).Resolve(context.Background(), []string{"child"}, nil)
	require.NoError(t, err)

	assert.Equal(t, Off(), table["header-trim"])
	assert.Equal(t, Error(Never, nil), table["type-empty"])
}

func TestResolve_Cycle(t *testing.T) {
	reg := NewEmptyRegistry()
	require.NoError(t, reg.Register(RuleSet{Name: "a", Extends: []string{"b"}}))
	require.NoError(t, reg.Register(RuleSet{Name: "b", Extends: []string{"a"}}))

	_, err := NewResolver(reg).Resolve(context.Background(), []string{"a"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtendsCycle))
}

func TestResolve_FailsLoudly(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	_, err := r.Resolve(ctx, []string{"does-not-exist"}, nil)
	assert.ErrorIs(t, err, ErrUnknownRuleSet)

	_, err = r.Resolve(ctx, []string{conventional}, map[string]Directive{"no-such-rule": Off()})
	assert.ErrorIs(t, err, ErrUnknownRule)

	_, err = r.Resolve(ctx, []string{"http://example.com/rules.yaml"}, nil)
	assert.ErrorIs(t, err, ErrInsecureSource)

	_, err = r.Resolve(ctx, []string{""}, nil)
	assert.ErrorIs(t, err, ErrUnknownRuleSet)

	_, err = r.Resolve(ctx, []string{"missing.yaml"}, nil)
	assert.Error(t, err)
}

func TestResolve_NestedInsecureSource(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("name: plain\nrules:\n  type-empty: [0]\n"))
	}))
	defer srv.Close()

	reg := NewEmptyRegistry()
	require.NoError(t, reg.Register(RuleSet{Name: "wrapper", Extends: []string{srv.URL + "/rules.yaml"}}))

	_, err := NewResolver(reg, WithHTTPClient(srv.Client())).Resolve(context.Background(), []string{"wrapper"}, nil)
	assert.ErrorIs(t, err, ErrInsecureSource)
	assert.Zero(t, hits.Load(), "plain HTTP source must not be fetched")
}

func TestResolve_Deterministic(t *testing.T) {
	r := newTestResolver(t)
	overrides := map[string]Directive{"type-enum": Off()}

	first, err := r.Resolve(context.Background(), []string{conventional}, overrides)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), []string{conventional}, overrides)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolve_FileSource(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`name: local
extends: [conventional-commit-rules]
rules:
  header-max-length: [2, always, 72]
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.yaml"), data, 0o600))

	r := newTestResolver(t, WithBaseDir(dir))
	table, err := r.Resolve(context.Background(), []string{"local.yaml"}, nil)
	require.NoError(t, err)

	assert.Equal(t, Error(Always, 72), table["header-max-length"])
	assert.Equal(t, SeverityError, table["type-enum"].Severity)
}

func TestResolve_NestedFileRelativeToParent(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o700))

	write := func(path, data string) {
		t.Helper()
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	}
	write(filepath.Join(sub, "child.yaml"), "name: child\nextends: [parent.yaml]\nrules:\n  type-empty: [1]\n")
	write(filepath.Join(sub, "parent.yaml"), "name: parent\nrules:\n  type-empty: [2]\n  subject-empty: [2]\n")
	// Same name next to the base directory; must not be picked up.
	write(filepath.Join(dir, "parent.yaml"), "name: decoy\nrules:\n  header-trim: [2]\n")

	r := newTestResolver(t, WithBaseDir(dir))
	table, err := r.Resolve(context.Background(), []string{"sub/child.yaml"}, nil)
	require.NoError(t, err)

	assert.Equal(t, Table{
		"type-empty":    Warn(Always, nil),
		"subject-empty": Error(Always, nil),
	}, table)
}

func TestResolve_FileCycle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "self.yaml"),
		[]byte("name: self\nextends: [./self.yaml]\n"), 0o600))

	_, err := newTestResolver(t, WithBaseDir(dir)).Resolve(context.Background(), []string{"self.yaml"}, nil)
	assert.ErrorIs(t, err, ErrExtendsCycle)
}

func TestResolve_URLSource(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("name: remote\nrules:\n  type-empty: [1, never]\n"))
	}))
	defer srv.Close()

	r := newTestResolver(t, WithHTTPClient(srv.Client()))
	url := srv.URL + "/rules.yaml"

	for i := 0; i < 2; i++ {
		table, err := r.Resolve(context.Background(), []string{url}, nil)
		require.NoError(t, err)
		assert.Equal(t, Warn(Never, nil), table["type-empty"])
	}
	assert.Equal(t, int32(1), hits.Load(), "remote rule set should be cached")
}

func TestResolve_URLStatusError(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	r := newTestResolver(t, WithHTTPClient(srv.Client()))
	_, err := r.Resolve(context.Background(), []string{srv.URL + "/rules.yaml"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestResolve_URLTooLarge(t *testing.T) {
	body := "name: huge\nrules:\n  type-empty: [1]\n" +
		strings.Repeat("# padding\n", maxRemoteRuleSetSize/10+1) +
		"  subject-empty: [1]\n"
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	r := newTestResolver(t, WithHTTPClient(srv.Client()))
	_, err := r.Resolve(context.Background(), []string{srv.URL + "/rules.yaml"}, nil)
	assert.ErrorIs(t, err, ErrRuleSetTooLarge)
}

func TestValidateExtends(t *testing.T) {
	tests := []struct {
		name    string
		extends []string
		wantErr bool
	}{
		{name: "none", extends: nil},
		{name: "name", extends: []string{conventional}},
		{name: "https", extends: []string{"https://example.com/rules.yaml"}},
		{name: "http", extends: []string{"http://example.com/rules.yaml"}, wantErr: true},
		{name: "blank", extends: []string{" "}, wantErr: true},
		{name: "duplicate", extends: []string{conventional, conventional}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExtends(tt.extends)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExtends() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
