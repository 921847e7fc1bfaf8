package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/docsave"
	logAdapter "github.com/bft-labs/docsave/internal/adapters/log"
	"github.com/bft-labs/docsave/internal/cliconfig"
	"github.com/bft-labs/docsave/internal/watch"
)

const helpDescription = `
Watch a document file and keep it durably saved, on a schedule, with
conflict recovery.

Highlights:
  - Autosaves on a configurable interval; skips saves when nothing changed.
  - Detects store conflicts and runs the recovery protocol before resuming.
  - Retries transport failures with backoff via the connectivity guard.
  - Local directory store by default; point --service-url at a remote store.
`

var exampleUsage = strings.TrimSpace(`
  docsave --document report.xml --autosave 30s
  docsave --document report.xml --service-url https://store.example.com --auth-key <api-key>
  docsave --config $HOME/.docsave/config.toml --once
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "docsave",
		Short:   "Watch a document file and keep it durably saved",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.docsave/config.toml),
			// then env, with explicit flags winning over both.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			// Log configuration (masking the API key)
			logCfg := cfg
			if len(logCfg.AuthKey) > 0 {
				logCfg.AuthKey = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")

			return run(cmd.Context(), cfg, cfgFile)
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.docsave/config.toml)")
	root.Flags().StringVar(&cfg.DocumentPath, "document", "", "document file to watch and persist")
	root.Flags().StringVar(&cfg.StoreDir, "store-dir", cfg.StoreDir, "local store directory (defaults to .docsave next to the document)")

	root.Flags().StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "remote store base URL (selects the HTTP backend)")
	root.Flags().StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API key for the remote store")

	root.Flags().DurationVar(&cfg.AutosaveInterval, "autosave", cfg.AutosaveInterval, "autosave interval (0 disables)")
	root.Flags().DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "delay after a file change before it counts as a mutation")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout for the remote store")
	root.Flags().IntVar(&cfg.GuardAttempts, "guard-attempts", cfg.GuardAttempts, "transport retries per save (0 disables the connectivity guard)")

	root.Flags().BoolVar(&cfg.SaveOnChange, "save-on-change", cfg.SaveOnChange, "save immediately after each change instead of waiting for autosave")
	root.Flags().BoolVar(&cfg.Once, "once", cfg.Once, "save once and exit")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("docsave")
		os.Exit(1)
	}
}

// run wires the saver, the document watcher, and the config watcher, then
// blocks until the context is cancelled.
func run(ctx context.Context, cfg cliconfig.Config, cfgFile string) error {
	log := cliconfig.Logger()
	logger := logAdapter.NewZerologAdapterWithLogger(log)

	var backend docsave.Backend
	if cfg.Remote() {
		backend = docsave.NewRemoteBackend(cfg.ServiceURL, cfg.AuthKey, nil, logger)
	} else {
		backend = docsave.NewFileBackend(cfg.StoreDir)
	}

	source := docsave.DocumentSourceFunc(func(ctx context.Context) ([]byte, error) {
		return os.ReadFile(cfg.DocumentPath)
	})

	opts := []docsave.Option{docsave.WithLogger(logger)}
	if cfg.GuardAttempts > 0 {
		guardCfg := docsave.DefaultGuardConfig()
		guardCfg.MaxAttempts = cfg.GuardAttempts
		opts = append(opts, docsave.WithConnectivityGuard(guardCfg))
	}

	saver, err := docsave.New(backend, source, docsave.Config{
		AutosaveInterval: cfg.AutosaveInterval,
	}, opts...)
	if err != nil {
		return fmt.Errorf("create saver: %w", err)
	}
	defer saver.Destroy()

	sub := saver.Subscribe(func(ev docsave.Event) {
		switch ev.Kind {
		case docsave.EventSaveSuccess:
			log.Info().Uint64("generation", uint64(ev.Generation)).Bool("autosave", ev.Autosave).Msg("saved")
		case docsave.EventSaveFailure:
			log.Warn().Str("reason", ev.Reason.String()).Bool("autosave", ev.Autosave).Msg("save failed")
		case docsave.EventRecoverySuccess:
			log.Info().Msg("recovered; reload the document if the store moved ahead")
		case docsave.EventRecoveryFailure:
			log.Error().Msg("recovery failed; saving disabled")
		}
	})
	defer sub.Cancel()

	if err := saver.Init(ctx); err != nil {
		return fmt.Errorf("init saver: %w", err)
	}

	if cfg.Once {
		return saver.Save(ctx, true)
	}

	// Watch the document: every change marks the saver dirty so the next
	// autosave tick picks it up.
	docWatcher := watch.NewFileWatcher(cfg.DocumentPath, cfg.Debounce, func() {
		saver.MarkDirty()
		if cfg.SaveOnChange {
			if err := saver.Save(context.Background(), false); err != nil {
				log.Warn().Err(err).Msg("save on change failed")
			}
		}
	}, logger)
	go func() {
		if err := docWatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("document watcher stopped")
		}
	}()

	// Watch the config file for live autosave-interval changes.
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		cfgWatcher := watch.NewFileWatcher(cfgFile, cfg.Debounce, func() {
			fc, err := cliconfig.LoadFileConfig(cfgFile)
			if err != nil {
				log.Warn().Err(err).Msg("config reload failed")
				return
			}
			next := cfg
			if err := cliconfig.ApplyFileConfig(&next, fc, nil); err != nil {
				log.Warn().Err(err).Msg("config reload failed")
				return
			}
			if next.AutosaveInterval != cfg.AutosaveInterval && next.AutosaveInterval >= 0 {
				log.Info().Dur("autosave_interval", next.AutosaveInterval).Msg("autosave interval updated")
				saver.SetAutosaveInterval(next.AutosaveInterval)
				cfg.AutosaveInterval = next.AutosaveInterval
			}
		}, logger)
		go func() {
			if err := cfgWatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("config watcher stopped")
			}
		}()
	}

	<-ctx.Done()

	// Final flush: persist pending edits before exit.
	if saver.Dirty() {
		flushCtx := context.Background()
		if err := saver.Save(flushCtx, true); err != nil {
			log.Warn().Err(err).Msg("final save failed")
		}
	}
	log.Info().Msg("received signal, stopping")
	return nil
}
