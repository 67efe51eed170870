package cli

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lazypower/rubybook/internal/annotate"
	"github.com/lazypower/rubybook/internal/config"
	"github.com/lazypower/rubybook/internal/engine"
	"github.com/lazypower/rubybook/internal/epub"
	"github.com/lazypower/rubybook/internal/report"
	"github.com/lazypower/rubybook/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rubybook [flags] IN_EPUB_FILE OUT_EPUB_FILE",
	Short: "Add furigana to Japanese EPUB books",
	Long: "rubybook rewrites an EPUB, adding furigana to the words of every chapter. " +
		"In learn mode, words lose their furigana as they become familiar over the course of the book.",
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         runRewrite,
}

var rewriteFlags struct {
	configPath  string
	lexicon     string
	pitchAccent bool
	exclude     int
	knownWords  string
	learnMode   bool
	wordStats   bool
	statsDB     string
	verify      bool
	verbose     bool
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runsCmd)

	f := rootCmd.Flags()
	f.StringVar(&rewriteFlags.configPath, "config", "", "TOML config file")
	f.StringVar(&rewriteFlags.lexicon, "lexicon", "", "JSONL lexicon with readings (.xz and .gz accepted)")
	f.BoolVarP(&rewriteFlags.pitchAccent, "pitch-accent", "p", false,
		"Include a pitch accent marker when the accent is unambiguous: a curled marker for an accented mora, a flat marker for heiban")
	f.IntVarP(&rewriteFlags.exclude, "furigana-exclude", "x", 0, "Don't add furigana to the N most common words")
	f.StringVarP(&rewriteFlags.knownWords, "known-words", "k", "", "Don't add furigana to words in this text file")
	f.BoolVarP(&rewriteFlags.learnMode, "learn-mode", "l", false,
		"Spaced-repetition furigana: frequent words lose their furigana as the book goes on")
	f.BoolVarP(&rewriteFlags.wordStats, "word-stats", "s", false,
		"With learn mode, write a word stats file next to the output")
	f.StringVar(&rewriteFlags.statsDB, "stats-db", "", "With learn mode, also record word stats in this SQLite database")
	f.BoolVar(&rewriteFlags.verify, "verify", false, "Re-read the output and check its structure")
	f.BoolVarP(&rewriteFlags.verbose, "verbose", "v", false, "Debug logging")
}

// loadConfig layers explicitly set flags over the config file (or defaults).
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if rewriteFlags.configPath != "" {
		var err error
		if cfg, err = config.Load(rewriteFlags.configPath); err != nil {
			return cfg, err
		}
	}

	set := cmd.Flags().Changed
	if set("lexicon") {
		cfg.Annotate.LexiconPath = rewriteFlags.lexicon
	}
	if set("pitch-accent") {
		cfg.Annotate.PitchAccent = rewriteFlags.pitchAccent
	}
	if set("furigana-exclude") {
		cfg.Annotate.ExcludeTopN = rewriteFlags.exclude
	}
	if set("known-words") {
		cfg.Annotate.KnownWordsPath = rewriteFlags.knownWords
	}
	if set("learn-mode") {
		cfg.Learn.Enabled = rewriteFlags.learnMode
	}
	if set("word-stats") {
		cfg.Output.WordStats = rewriteFlags.wordStats
	}
	if set("stats-db") {
		cfg.Output.StatsDB = rewriteFlags.statsDB
	}
	if set("verify") {
		cfg.Output.Verify = rewriteFlags.verify
	}
	return cfg, nil
}

func runRewrite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cmd.ErrOrStderr(), rewriteFlags.verbose)
	logger.Debug("starting", "version", VersionString())
	return rewriteBook(ctx, cfg, args[0], args[1], logger)
}

// rewriteBook runs one full pass: validate the input, build the session,
// rewrite the archive, then report. Nothing is created at outPath when the
// input or the lexicon cannot be read.
func rewriteBook(ctx context.Context, cfg config.Config, inPath, outPath string, logger *slog.Logger) error {
	zr, err := zip.OpenReader(inPath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("open input: %w", err)
	}
	defer zr.Close()
	if err := epub.CheckMimetype(&zr.Reader); err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}

	known, err := annotate.LoadKnownWords(cfg.Annotate.KnownWordsPath)
	if err != nil {
		return err
	}
	lex, err := annotate.OpenLexicon(cfg.Annotate.LexiconPath, annotate.Options{
		ExcludeTopN: cfg.Annotate.ExcludeTopN,
		KnownWords:  known,
	})
	if err != nil {
		return err
	}
	logger.Debug("lexicon loaded", "path", cfg.Annotate.LexiconPath, "words", lex.Len(), "known", len(known))

	accent, flat := cfg.Markers()
	session := engine.NewSession(lex, engine.SessionOptions{
		LearnMode: cfg.Learn.Enabled,
		Policy: engine.Policy{
			LearnedAfter:   cfg.Learn.LearnedAfter,
			ForgetDistance: cfg.Learn.ForgetDistance,
		},
		KnownWords:   known,
		AccentMarker: accent,
		FlatMarker:   flat,
	})

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	res, err := epub.Rewrite(ctx, &zr.Reader, out, session, epub.Options{
		Logger:   logger,
		Prefetch: cfg.Output.Prefetch,
	})
	if err != nil {
		out.Close()
		return fmt.Errorf("rewrite %s: %w", inPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	if cfg.Output.Verify {
		if err := verifyOutput(outPath, res); err != nil {
			return err
		}
		logger.Info("verified", "path", outPath)
	}

	summary := session.Summary()
	logger.Info("done", "entries", res.Written, "words", summary.TotalWords,
		"distinct", len(summary.Words), "title", res.Metadata.Title)

	if cfg.Output.WordStats {
		path := config.WordStatsPath(outPath)
		if err := report.WriteWordStatsFile(path, summary); err != nil {
			return err
		}
		logger.Info("word stats written", "path", path)
	}
	if cfg.Output.StatsDB != "" {
		if err := exportStats(cfg.Output.StatsDB, inPath, outPath, res, summary, logger); err != nil {
			return err
		}
	}
	return nil
}

func verifyOutput(path string, res *epub.Result) error {
	zr, err := zip.OpenReader(path)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("reopen output: %w", err)
	}
	defer zr.Close()
	return epub.Verify(&zr.Reader, res)
}

func exportStats(dbPath, inPath, outPath string, res *epub.Result, summary engine.Summary, logger *slog.Logger) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open stats db: %w", err)
	}
	defer db.Close()

	words := make([]store.WordStat, len(summary.Words))
	for i, w := range summary.Words {
		words[i] = store.WordStat{
			Ordinal:     i,
			Surface:     w.Surface,
			Sense:       w.Sense,
			MaxDistance: w.MaxDistance,
			TimesSeen:   w.TimesSeen,
		}
	}
	run := &store.Run{
		InputPath:  inPath,
		OutputPath: outPath,
		Title:      res.Metadata.Title,
		Language:   res.Metadata.Language,
		TotalWords: summary.TotalWords,
	}
	if err := db.SaveRun(run, words); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	logger.Info("stats exported", "db", dbPath, "run", run.RunID)
	return nil
}
