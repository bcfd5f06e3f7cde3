package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/nexo-routes/internal/config"
	"github.com/abdul-hamid-achik/nexo-routes/internal/project"
	"github.com/abdul-hamid-achik/nexo-routes/pkg/definition"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Re-resolve the route table whenever a definition changes",
		Long: `Watch definition files and directories and re-resolve the route table on
every change. A change that breaks resolution is reported and the previous
table stays in force until the definitions are fixed.

Examples:
  nexo-routes watch
  nexo-routes watch routes/ --debounce 500ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts, args, debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "Delay before re-resolving after a change")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *globalOptions, args []string, debounce time.Duration) error {
	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	cfg, log, err := opts.setup()
	if err != nil {
		return reportError(out, opts, err)
	}
	paths := project.Paths(cfg, args)

	tables := &tableReloader{cfg: cfg, log: log, paths: paths}
	reload := func() {
		timestamp := time.Now().Format("15:04:05")

		current, err := tables.Reload()
		if err != nil {
			log.WithError(err).Error("resolution failed, keeping the previous route table")
			if !opts.jsonOutput {
				fmt.Fprintf(out, "  [%s] %s %v\n", timestamp, red("✗"), err)
			}
			return
		}

		if opts.jsonOutput {
			routes := make([]RouteOutput, 0, len(current.Routes))
			for _, r := range current.Routes {
				routes = append(routes, toRouteOutput(r))
			}
			printSuccess(out, RoutesOutput{Routes: routes, TotalRoutes: len(routes), Warnings: warningStrings(current.Warnings)})
			return
		}

		fmt.Fprintf(out, "  [%s] %s %d routes resolved\n", timestamp, green("✓"), len(current.Routes))
	}

	w, err := newDefinitionWatcher(paths, log)
	if err != nil {
		return reportError(out, opts, fmt.Errorf("failed to create file watcher: %w", err))
	}
	defer func() { _ = w.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reload()
	if !opts.jsonOutput {
		fmt.Fprintf(out, "  %s Watching for changes...\n", green("✓"))
	}

	return w.Run(ctx, debounce, reload)
}

// tableReloader keeps the last route table that resolved successfully.
type tableReloader struct {
	cfg   *config.Config
	log   logrus.FieldLogger
	paths []string

	current *project.Table
}

// Reload resolves the definitions again. On failure the previous table is
// returned along with the error.
func (t *tableReloader) Reload() (*project.Table, error) {
	table, err := project.Resolve(t.cfg, t.log, t.paths)
	if err != nil {
		return t.current, err
	}

	t.current = table
	return table, nil
}

// definitionWatcher reports changes to definition files under a set of paths.
type definitionWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
	log     logrus.FieldLogger
}

// newDefinitionWatcher watches every directory of paths recursively, skipping
// private folders, and the parent directory of every file path.
func newDefinitionWatcher(paths []string, log logrus.FieldLogger) (*definitionWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &definitionWatcher{
		watcher: fw,
		files:   make(map[string]bool),
		log:     log,
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			_ = fw.Close()
			return nil, err
		}

		if !info.IsDir() {
			w.files[filepath.Clean(p)] = true
			if err := fw.Add(filepath.Dir(p)); err != nil {
				_ = fw.Close()
				return nil, err
			}
			continue
		}

		if err := w.addTree(p); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	return w, nil
}

func (w *definitionWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && definition.IsPrivateFolder(d.Name()) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// relevant reports whether a change to name should trigger a reload.
func (w *definitionWatcher) relevant(name string) bool {
	return w.files[filepath.Clean(name)] || definition.IsDefinitionFile(filepath.Base(name))
}

// Run calls onChange after each burst of relevant events has been quiet for
// debounce, until ctx is done.
func (w *definitionWatcher) Run(ctx context.Context, debounce time.Duration, onChange func()) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !definition.IsPrivateFolder(info.Name()) {
						if err := w.addTree(event.Name); err != nil {
							w.log.WithError(err).WithField("dir", event.Name).Warn("failed to watch directory")
						}
					}
					continue
				}
			}

			if !w.relevant(event.Name) {
				continue
			}
			w.log.WithField("file", event.Name).Debug("definition changed")

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("file watcher error")
		}
	}
}

// Close stops watching.
func (w *definitionWatcher) Close() error {
	return w.watcher.Close()
}
