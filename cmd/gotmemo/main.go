// Command gotmemo translates words and HTML through a persistent translation memo.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ZaguanLabs/gotmemo"
	"github.com/ZaguanLabs/gotmemo/config"
	"github.com/ZaguanLabs/gotmemo/provider"
	"github.com/ZaguanLabs/gotmemo/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(&app{stdin: os.Stdin, stdout: stdout, stderr: stderr})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}

// app holds the global flags and the streams commands write to.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath   string
	lang         string
	apiKey       string
	storeBackend string
	providerName string
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   gotmemo.Name,
		Short: gotmemo.Description,
		Long: `gotmemo memoizes translations of short texts.

Lookups are served from a persistent store; misses are sent to a remote
translator once and remembered.

Commands:
  translate   Translate words through the caching engine
  bulk        Translate a list of words in one remote call
  html        Translate the text of an HTML document
  serve       Run the HTTP API
  export      Write the store to a JSON or YAML file
  import      Load a JSON or YAML export into the store`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags, inherited by all subcommands
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default: ./gotmemo.yaml or ~/.config/gotmemo/gotmemo.yaml)")
	pf.StringVar(&a.lang, "lang", "", "Target language code (e.g., es, pt_BR)")
	pf.StringVar(&a.apiKey, "api-key", "", "Remote translator API key")
	pf.StringVar(&a.storeBackend, "store", "", "Store backend: memory, sqlite, redis or postgres")
	pf.StringVar(&a.providerName, "provider", "", "Remote translator: google, openai or mock")

	root.AddCommand(
		newTranslateCmd(a),
		newBulkCmd(a),
		newHTMLCmd(a),
		newServeCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newVersionCmd(a),
	)

	return root
}

// loadConfig reads the config and applies flag overrides.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}

	if a.lang != "" {
		cfg.TargetLang = a.lang
	}
	if a.apiKey != "" {
		cfg.APIKey = a.apiKey
	}
	if a.storeBackend != "" {
		cfg.Store.Backend = a.storeBackend
	}
	if a.providerName != "" {
		cfg.Provider = a.providerName
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// env bundles what every translating command needs.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  store.Lister
	remote gotmemo.RemoteTranslator
	close  func()
}

// setup loads config and opens the store and remote translator.
// Callers must call env.close.
func (a *app) setup() (*env, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	s, closeStore, err := openStore(cfg)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &env{
		cfg:    cfg,
		logger: logger,
		store:  s,
		remote: newRemote(cfg),
		close: func() {
			if err := closeStore(); err != nil {
				logger.Warn("closing store", zap.Error(err))
			}
			_ = logger.Sync()
		},
	}, nil
}

// requireTranslation checks the settings needed to actually translate.
func (e *env) requireTranslation() error {
	if err := e.cfg.RequireTargetLang(); err != nil {
		return fmt.Errorf("%w: use --lang or target_lang", err)
	}
	if e.cfg.Credential() == "" {
		return fmt.Errorf("%w: use --api-key, api_key or GOTMEMO_API_KEY", gotmemo.ErrMissingAPIKey)
	}
	return nil
}

func (e *env) newEngine() *gotmemo.Engine {
	return gotmemo.NewEngine(e.store, e.remote,
		gotmemo.WithTargetLang(e.cfg.TargetLang),
		gotmemo.WithSourceLang(e.cfg.SourceLang),
		gotmemo.WithAPIKey(e.cfg.Credential()),
		gotmemo.WithFetchTimeout(e.cfg.FetchTimeout),
		gotmemo.WithLogger(e.logger.Named("engine")),
	)
}

func (e *env) newClient() *gotmemo.Client {
	return gotmemo.NewClient(e.store, e.remote,
		gotmemo.WithClientTargetLang(e.cfg.TargetLang),
		gotmemo.WithClientSourceLang(e.cfg.SourceLang),
		gotmemo.WithClientAPIKey(e.cfg.Credential()),
		gotmemo.WithClientLogger(e.logger.Named("client")),
	)
}

func openStore(cfg *config.Config) (store.Lister, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(), noop, nil
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Store.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, s.Close, nil
	case "redis":
		s, err := store.NewRedisStore(store.RedisConfig{
			URL:       cfg.Store.Redis.URL,
			KeyPrefix: cfg.Store.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return s, s.Close, nil
	case "postgres":
		s, err := store.NewPostgresStore(cfg.Store.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newRemote(cfg *config.Config) gotmemo.RemoteTranslator {
	switch provider.Name(cfg.Provider) {
	case provider.NameOpenAI:
		return provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
	case provider.NameMock:
		return provider.NewMockProvider()
	default:
		return provider.NewGoogleProvider(provider.GoogleConfig{
			BaseURL: cfg.Google.BaseURL,
			Timeout: cfg.FetchTimeout,
		})
	}
}
