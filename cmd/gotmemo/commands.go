package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ZaguanLabs/gotmemo"
	"github.com/ZaguanLabs/gotmemo/processor"
	"github.com/ZaguanLabs/gotmemo/server"
	"github.com/ZaguanLabs/gotmemo/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTranslateCmd(a *app) *cobra.Command {
	var noFetch bool

	cmd := &cobra.Command{
		Use:   "translate <text>...",
		Short: "Translate texts through the caching engine",
		Long: `Translate each argument through the caching engine and print one
translation per line. Texts that cannot be resolved are printed unchanged.

With --no-fetch only the persistent store is consulted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTranslate(args, noFetch)
		},
	}

	cmd.Flags().BoolVar(&noFetch, "no-fetch", false, "Only look up the store, never call the remote translator")
	return cmd
}

func (a *app) runTranslate(texts []string, noFetch bool) error {
	e, err := a.setup()
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.cfg.RequireTargetLang(); err != nil {
		return fmt.Errorf("%w: use --lang or target_lang", err)
	}
	if !noFetch {
		if err := e.requireTranslation(); err != nil {
			return err
		}
	}

	apiKey := e.cfg.Credential()
	if noFetch && apiKey == "" {
		// Without a key the engine passes everything through; a lookup-only
		// run never sends it anywhere.
		apiKey = "store-only"
	}
	engine := gotmemo.NewEngine(e.store, e.remote,
		gotmemo.WithTargetLang(e.cfg.TargetLang),
		gotmemo.WithSourceLang(e.cfg.SourceLang),
		gotmemo.WithAPIKey(apiKey),
		gotmemo.WithFetchTimeout(e.cfg.FetchTimeout),
		gotmemo.WithLogger(e.logger.Named("engine")),
	)
	defer engine.Close()

	for _, text := range texts {
		engine.Translate(text, e.cfg.TargetLang, noFetch)
	}
	engine.Wait()

	for _, text := range texts {
		if translated, ok := engine.Cached(text, e.cfg.TargetLang); ok {
			text = translated
		}
		fmt.Fprintln(a.stdout, text)
	}
	return nil
}

func newBulkCmd(a *app) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "bulk [file|-]",
		Short: "Translate a list of words in one remote call",
		Long: `Read one word per line from a file (or stdin) and print the
translations in the same order. All store misses are sent to the remote
translator in a single request.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return a.runBulk(cmd.Context(), path, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output result as JSON")
	return cmd
}

// BulkOutput is the --json output of the bulk command.
type BulkOutput struct {
	TargetLang      string   `json:"target_lang"`
	Translations    []string `json:"translations"`
	Total           int      `json:"total"`
	CachedCount     int      `json:"cached_count"`
	TranslatedCount int      `json:"translated_count"`
	Error           string   `json:"error,omitempty"`
}

func (a *app) runBulk(ctx context.Context, path string, jsonOut bool) error {
	words, err := a.readLines(path)
	if err != nil {
		return err
	}

	e, err := a.setup()
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.requireTranslation(); err != nil {
		return err
	}

	result, translateErr := e.newClient().Translate(ctx, words)

	if jsonOut {
		out := BulkOutput{
			TargetLang:      e.cfg.TargetLang,
			Translations:    result.Translations,
			Total:           result.Total,
			CachedCount:     result.CachedCount,
			TranslatedCount: result.TranslatedCount,
		}
		if translateErr != nil {
			out.Error = translateErr.Error()
		}
		if err := writeJSON(a.stdout, out); err != nil {
			return err
		}
	} else {
		for _, t := range result.Translations {
			fmt.Fprintln(a.stdout, t)
		}
	}

	return translateErr
}

func newHTMLCmd(a *app) *cobra.Command {
	var (
		output  string
		jsonOut bool
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "html [file|-]",
		Short: "Translate the text of an HTML document",
		Long: `Extract the translatable text of an HTML document, translate it with
a single bulk call and write the document back with lang and dir set.

Content of script, style, code, pre, textarea and noscript elements and of
elements marked data-no-translate is left alone.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return a.runHTML(cmd.Context(), path, output, jsonOut, dryRun)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output result as JSON")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be translated without calling the translator")
	return cmd
}

// HTMLOutput is the --json output of the html command.
type HTMLOutput struct {
	Content         string `json:"content"`
	TargetLang      string `json:"target_lang"`
	TotalNodes      int    `json:"total_nodes"`
	TranslatedCount int    `json:"translated_count"`
	CachedCount     int    `json:"cached_count"`
	ElapsedMs       int64  `json:"elapsed_ms"`
}

func (a *app) runHTML(ctx context.Context, path, output string, jsonOut, dryRun bool) error {
	input, err := a.readInput(path)
	if err != nil {
		return err
	}

	proc := processor.NewHTMLProcessor()

	if dryRun {
		return a.runDryRun(proc, input, inputName(path), jsonOut)
	}

	e, err := a.setup()
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.requireTranslation(); err != nil {
		return err
	}

	start := time.Now()
	result, err := proc.Translate(ctx, input, e.newClient())
	if err != nil {
		return fmt.Errorf("translating %s: %w", inputName(path), err)
	}
	elapsed := time.Since(start)

	e.logger.Info("html translated",
		zap.String("input", inputName(path)),
		zap.String("target_lang", result.TargetLang),
		zap.Int("nodes", result.Nodes),
		zap.Int("cached", result.CachedCount),
		zap.Int("translated", result.TranslatedCount),
		zap.Duration("elapsed", elapsed),
	)

	w := a.stdout
	if output != "" {
		f, err := os.Create(output) // #nosec G304 - CLI tool writes user-specified files
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if jsonOut {
		return writeJSON(w, HTMLOutput{
			Content:         result.Content,
			TargetLang:      result.TargetLang,
			TotalNodes:      result.Nodes,
			TranslatedCount: result.TranslatedCount,
			CachedCount:     result.CachedCount,
			ElapsedMs:       elapsed.Milliseconds(),
		})
	}

	_, err = io.WriteString(w, result.Content)
	return err
}

func (a *app) runDryRun(proc *processor.HTMLProcessor, input, name string, jsonOut bool) error {
	_, nodes, err := proc.Extract(input)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}

	if jsonOut {
		type dryRunOutput struct {
			InputFile string   `json:"input_file"`
			NodeCount int      `json:"node_count"`
			Texts     []string `json:"texts"`
		}

		texts := make([]string, len(nodes))
		for i, n := range nodes {
			texts[i] = n.Text
		}

		return writeJSON(a.stdout, dryRunOutput{
			InputFile: name,
			NodeCount: len(nodes),
			Texts:     texts,
		})
	}

	fmt.Fprintf(a.stdout, "Dry run: %s\n", name)
	fmt.Fprintf(a.stdout, "Found %d translatable text nodes:\n\n", len(nodes))

	for i, node := range nodes {
		text := node.Text
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Fprintf(a.stdout, "%3d. %q\n", i+1, text)
		if node.Context != "" {
			fmt.Fprintf(a.stdout, "     Context: %s\n", node.Context)
		}
	}

	return nil
}

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the translation API until interrupted:

  GET  /healthz
  GET  /v1/translate?text=&lang=&disable_fetch=
  POST /v1/bulk          {"words": [...], "lang": "..."}
  GET  /v1/language
  PUT  /v1/language      {"lang": "..."}
  GET  /v1/events        server-sent cache changes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")
	return cmd
}

func (a *app) runServe(ctx context.Context, addr string) error {
	e, err := a.setup()
	if err != nil {
		return err
	}
	defer e.close()

	if e.cfg.Credential() == "" {
		e.logger.Warn("no API key configured, texts will be served untranslated")
	}

	engine := e.newEngine()
	defer engine.Close()

	if addr == "" {
		addr = e.cfg.Server.Addr
	}
	srv := server.New(server.Config{
		Addr:            addr,
		Mode:            e.cfg.Server.Mode,
		CORSOrigins:     e.cfg.Server.CORSOrigins,
		ShutdownTimeout: e.cfg.Server.ShutdownTimeout,
	}, engine, e.newClient(), e.logger.Named("server"))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e.logger.Info("serving",
		zap.String("addr", addr),
		zap.String("target_lang", e.cfg.TargetLang),
		zap.String("store", e.cfg.Store.Backend),
		zap.String("provider", e.cfg.Provider),
	)
	return srv.Run(ctx)
}

func newExportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the store to a JSON or YAML file",
		Long: `Write every stored translation to a file, or to stdout without one.
The format follows the file extension unless --format is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return a.runExport(cmd.Context(), path, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Export format: json or yaml")
	return cmd
}

func (a *app) runExport(ctx context.Context, path, format string) error {
	e, err := a.setup()
	if err != nil {
		return err
	}
	defer e.close()

	f, err := resolveFormat(path, format)
	if err != nil {
		return err
	}

	metadata := map[string]string{
		"store":     e.cfg.Store.Backend,
		"generator": gotmemo.UserAgent(),
	}
	exporter := store.NewExporter(e.store)

	if path == "" || path == "-" {
		return exporter.Export(ctx, a.stdout, f, metadata)
	}

	out, err := os.Create(path) // #nosec G304 - CLI tool writes user-specified files
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer out.Close()

	if err := exporter.Export(ctx, out, f, metadata); err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "Exported store to %s\n", path)
	return nil
}

func newImportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Load a JSON or YAML export into the store",
		Long: `Load an export into the store. Keys are derived again from each entry's
source text and target language; entries missing either are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd.Context(), args[0], format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Import format: json or yaml")
	return cmd
}

func (a *app) runImport(ctx context.Context, path, format string) error {
	f, err := resolveFormat(path, format)
	if err != nil {
		return err
	}

	input, err := a.readInput(path)
	if err != nil {
		return err
	}

	e, err := a.setup()
	if err != nil {
		return err
	}
	defer e.close()

	result, err := store.NewImporter(e.store).Import(ctx, strings.NewReader(input), f)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Imported %d translations (%d skipped)\n", result.Imported, result.Failed)
	return nil
}

func resolveFormat(path, format string) (store.Format, error) {
	if format != "" {
		return store.ParseFormat(format)
	}
	if path == "" || path == "-" {
		return store.FormatJSON, nil
	}
	return store.FormatFromPath(path), nil
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "%s %s\n", gotmemo.Name, gotmemo.FullVersion())
			if gotmemo.GitCommit != "unknown" && gotmemo.GitCommit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", gotmemo.GitCommit)
			}
			if gotmemo.BuildDate != "unknown" && gotmemo.BuildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", gotmemo.BuildDate)
			}
		},
	}
}

// readInput reads a file, or stdin for "-".
func (a *app) readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), nil
}

// readLines returns the lines of a file or stdin with line endings removed.
// Blank lines are kept so output lines up with input.
func (a *app) readLines(path string) ([]string, error) {
	input, err := a.readInput(path)
	if err != nil {
		return nil, err
	}

	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading words: %w", err)
	}
	return lines, nil
}

func inputName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return filepath.Base(path)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
