package cli

import (
	"crypto/rand"
	"io"
	"log/slog"

	"github.com/nlordell/hdwallet/pkg/config"
	"github.com/nlordell/hdwallet/pkg/crypto/slip039"
	"github.com/spf13/cobra"
)

// App carries what every command needs: the loaded configuration, the
// logger and the entropy source.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Level  *slog.LevelVar
	Random io.Reader

	configPath   string
	wordlistPath string
	verbose      bool
	jsonOutput   bool
}

// NewApp returns an App with default configuration, logging through logger
// and reading entropy from crypto/rand.
func NewApp(logger *slog.Logger, level *slog.LevelVar) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if level == nil {
		level = new(slog.LevelVar)
	}
	return &App{
		Config: config.Default(),
		Logger: logger,
		Level:  level,
		Random: rand.Reader,
	}
}

// NewRootCommand builds the hdwallet command tree.
func NewRootCommand(app *App, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hdwallet",
		Short: "SLIP-0039 Shamir's Secret Sharing for wallet backups",
		Long: `hdwallet implements SLIP-0039: Shamir's Secret-Sharing for Mnemonic Codes.

A master secret is encrypted with an optional passphrase and split in two
levels: into groups, and each group into member shares. Any group threshold
of groups, each with its own member threshold of shares, recovers it.

Shares are written as SLIP-0039 mnemonics using a word list supplied with
--wordlist or the slip039.wordlist setting, or as raw word indices.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.load()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "Configuration file (default $HDWALLET_CONFIG or ~/.config/hdwallet/config.json)")
	flags.StringVar(&app.wordlistPath, "wordlist", "", "SLIP-0039 word list file, one word per line")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVarP(&app.jsonOutput, "json", "j", false, "Output in JSON format")

	rootCmd.AddCommand(
		NewSplitCommand(app),
		NewCombineCommand(app),
		NewInfoCommand(app),
		NewWordsCommand(app),
		NewGenerateCommand(app),
		NewCheckCommand(app),
	)

	return rootCmd
}

func (app *App) load() error {
	if app.verbose {
		app.Level.Set(slog.LevelDebug)
	}

	cfg, err := config.Load(app.configPath)
	if err != nil {
		return err
	}
	app.Config = cfg

	app.Logger.Debug("configuration loaded",
		"iteration_exponent", cfg.SLIP039.IterationExponent,
		"wordlist", cfg.SLIP039.Wordlist != "")
	return nil
}

func (app *App) dealer() *slip039.Dealer {
	return slip039.NewDealer(
		slip039.WithRandom(app.Random),
		slip039.WithLogger(app.Logger),
	)
}

// wordlist loads the word list named by --wordlist or the configuration.
// It returns nil without error when neither is set.
func (app *App) wordlist() (*slip039.Wordlist, error) {
	path := app.wordlistPath
	if path == "" {
		path = app.Config.SLIP039.Wordlist
	}
	if path == "" {
		return nil, nil
	}
	return slip039.LoadWordlist(path)
}

func (app *App) requireWordlist() (*slip039.Wordlist, error) {
	wl, err := app.wordlist()
	if err != nil {
		return nil, err
	}
	if wl == nil {
		return nil, errNoWordlist
	}
	return wl, nil
}
