package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/nexo-routes/internal/config"
)

func TestDefinitionWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	explicit := filepath.Join(dir, "extra.yaml")
	require.NoError(t, os.WriteFile(explicit, nil, 0o644))

	log, _ := test.NewNullLogger()
	w, err := newDefinitionWatcher([]string{dir, explicit}, log)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	tests := []struct {
		name string
		want bool
	}{
		{filepath.Join(dir, "routes.yaml"), true},
		{filepath.Join(dir, "sub", "users.routes.yml"), true},
		{explicit, true},
		{filepath.Join(dir, "other.yaml"), false},
		{filepath.Join(dir, "main.go"), false},
	}

	for _, tt := range tests {
		if got := w.relevant(tt.name); got != tt.want {
			t.Errorf("relevant(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDefinitionWatcher_MissingPath(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := newDefinitionWatcher([]string{filepath.Join(t.TempDir(), "missing")}, log)
	assert.Error(t, err)
}

func TestDefinitionWatcher_Run(t *testing.T) {
	dir := t.TempDir()

	log, _ := test.NewNullLogger()
	w, err := newDefinitionWatcher([]string{dir}, log)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, 20*time.Millisecond, func() { changes <- struct{}{} })
	}()

	// ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	// burst of writes to one definition file
	path := filepath.Join(dir, "routes.yaml")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("routes: []\n"), 0o644))
	}

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestTableReloader_KeepsPreviousTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDefinitions), 0o644))

	log, _ := test.NewNullLogger()
	tables := &tableReloader{cfg: config.Default(), log: log, paths: []string{path}}

	first, err := tables.Reload()
	require.NoError(t, err)
	require.Len(t, first.Routes, 2)

	// inline expression without a placeholder declaration
	require.NoError(t, os.WriteFile(path, []byte("routes:\n  - methods: GET\n    pattern: \"/{x:[0-9]+}\"\n    invokable: h\n"), 0o644))

	current, err := tables.Reload()
	assert.Error(t, err)
	assert.Same(t, first, current)
}
