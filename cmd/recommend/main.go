package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/gasparian/crypto-recommend-go/app"
	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/sentiment"
	"github.com/gasparian/crypto-recommend-go/storage"
	"github.com/rs/zerolog"
)

// process exit codes
const (
	exitArgs    = 1
	exitFile    = 2
	exitConfig  = 3
	exitCore    = 4
	exitStorage = 5
)

// command-line arguments
type args struct {
	Dataset    string `arg:"-d,required" help:"tab-separated tweets: user_id, tweet_id, tokens"`
	Output     string `arg:"-o,required" help:"report file"`
	Lexicon    string `arg:"-l" default:"vader_lexicon.tsv" help:"tab-separated word scores"`
	Currencies string `arg:"-c" default:"coins.tsv" help:"tab-separated currency names and aliases"`
	Config     string `help:"yaml config file"`
	Validate   bool   `help:"report imputation error over hidden folds instead of recommendations"`
	Folds      int    `default:"10" help:"folds number for validation"`
	DB         string `arg:"--db" help:"sqlite file to store results in"`
	Verbose    bool   `arg:"-v" help:"debug logging and progress bars"`
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCode maps run error to the process exit code
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitCore
}

// parseArgs parses argv without the program name; when ok is false
// the process must exit with code
func parseArgs(argv []string, stdout, stderr io.Writer) (a args, code int, ok bool) {
	parser, err := arg.NewParser(arg.Config{Program: "recommend"}, &a)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return a, exitArgs, false
	}
	if err := parser.Parse(argv); err != nil {
		if errors.Is(err, arg.ErrHelp) {
			parser.WriteHelp(stdout)
			return a, 0, false
		}
		parser.WriteUsage(stderr)
		fmt.Fprintln(stderr, "error:", err)
		return a, exitArgs, false
	}
	return a, 0, true
}

func main() {
	a, code, ok := parseArgs(os.Args[1:], os.Stdout, os.Stderr)
	if !ok {
		os.Exit(code)
	}

	lg := cm.NewLogger(os.Stderr, a.Verbose)
	if err := run(context.Background(), a, lg, os.Stdout); err != nil {
		code := exitCode(err)
		lg.Error().Err(err).Int("code", code).Msg("recommendation failed")
		os.Exit(code)
	}
}

func loadConfig(a args) (app.Config, error) {
	config := app.DefaultConfig()
	if len(a.Config) > 0 {
		var err error
		if config, err = app.LoadConfig(a.Config); err != nil {
			return config, err
		}
	}
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return config, err
	}
	if len(a.DB) > 0 {
		config.Storage.Path = a.DB
	}
	return config, config.Validate()
}

func readInputs(a args) (sentiment.Lexicon, *sentiment.Currencies, *sentiment.Dataset, error) {
	open := func(path string) (*os.File, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("couldn't open %s: %w", path, err)
		}
		return f, nil
	}
	lf, err := open(a.Lexicon)
	if err != nil {
		return nil, nil, nil, err
	}
	defer lf.Close()
	lex, err := sentiment.LoadLexicon(lf)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", a.Lexicon, err)
	}
	cf, err := open(a.Currencies)
	if err != nil {
		return nil, nil, nil, err
	}
	defer cf.Close()
	cur, err := sentiment.LoadCurrencies(cf)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", a.Currencies, err)
	}
	df, err := open(a.Dataset)
	if err != nil {
		return nil, nil, nil, err
	}
	defer df.Close()
	ds, err := sentiment.ReadTweets(df)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", a.Dataset, err)
	}
	return lex, cur, ds, nil
}

func run(ctx context.Context, a args, lg zerolog.Logger, stdout io.Writer) error {
	config, err := loadConfig(a)
	if err != nil {
		return withCode(exitConfig, err)
	}
	lex, cur, ds, err := readInputs(a)
	if err != nil {
		return withCode(exitFile, err)
	}
	if ds.NeighborsHint > 0 {
		lg.Info().Int("neighbors", ds.NeighborsHint).Msg("neighbors number taken from the dataset header")
		config.LSH.NeighborsPerQuery = ds.NeighborsHint
	}

	r, err := app.NewRecommender(config, lg, a.Verbose)
	if err != nil {
		return withCode(exitConfig, err)
	}
	authors := sentiment.GroupByUser(ds, lex, cur, config.Sentiment.Alpha)
	ws, err := r.NewWorkspace(cur.Names(), authors)
	if err != nil {
		return withCode(exitCore, err)
	}

	out, err := os.Create(a.Output)
	if err != nil {
		return withCode(exitFile, fmt.Errorf("couldn't open %s: %w", a.Output, err))
	}
	defer out.Close()

	if a.Validate {
		results, err := r.Validate(ws, a.Folds)
		if err != nil {
			return withCode(exitCore, err)
		}
		return withCode(exitFile, app.WriteValidation(out, results))
	}

	lshSection, err := r.RecommendLSH(ws)
	if err != nil {
		return withCode(exitCore, err)
	}
	clusterSection, err := r.RecommendClusters(ws)
	if err != nil {
		return withCode(exitCore, err)
	}
	sections := []app.Section{lshSection, clusterSection}
	if err := app.WriteReport(out, sections...); err != nil {
		return withCode(exitFile, err)
	}
	app.WriteSummary(stdout, sections)

	if len(config.Storage.Path) == 0 {
		return nil
	}
	st, err := storage.Open(ctx, config.Storage.Path)
	if err != nil {
		return withCode(exitStorage, err)
	}
	defer st.Close()
	for _, s := range sections {
		id, err := app.Save(ctx, st, s)
		if err != nil {
			return withCode(exitStorage, err)
		}
		lg.Info().Str("run", id).Str("method", s.Method).Msg("results saved")
	}
	return nil
}
