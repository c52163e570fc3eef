package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/fatih/color"
	"github.com/nlordell/hdwallet/internal/validation"
	"github.com/nlordell/hdwallet/pkg/crypto/mnemonic"
	"github.com/nlordell/hdwallet/pkg/crypto/slip039"
	"github.com/nlordell/hdwallet/pkg/secure"
	"github.com/nlordell/hdwallet/pkg/storage"
	"github.com/spf13/cobra"
)

// splitOptions are the sharing flags shared by split and generate.
type splitOptions struct {
	threshold         int
	shares            int
	groupThreshold    int
	groupsSpec        string
	iterationExponent int
	format            string
	outputFile        string
	encrypt           bool
	force             bool
}

func (o *splitOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVarP(&o.threshold, "threshold", "t", 0, "Member threshold for a single group (default from config)")
	flags.IntVarP(&o.shares, "shares", "n", 0, "Number of shares for a single group (default from config)")
	flags.IntVar(&o.groupThreshold, "group-threshold", 0, "Number of groups required (default from config)")
	flags.StringVar(&o.groupsSpec, "groups", "", "Groups as THRESHOLD/COUNT list, e.g. '2/3,3/5'")
	flags.IntVarP(&o.iterationExponent, "iteration-exponent", "e", 0, "PBKDF2 iteration exponent (default from config)")
	flags.StringVarP(&o.format, "format", "f", storage.FormatMnemonic, "Share format: mnemonic or indices")
	flags.StringVarP(&o.outputFile, "output", "o", "", "Write the shares to a JSON file")
	flags.BoolVar(&o.encrypt, "encrypt", false, "Seal the output file with a password")
	flags.BoolVar(&o.force, "force", false, "Overwrite an existing output file")
	flags.StringP("passphrase", "p", "", "SLIP-0039 passphrase (prompted when omitted)")
	flags.String("password", "", "Output file password for --encrypt (prompted when omitted)")
}

// sharing resolves the group configuration from flags and configuration.
func (app *App) sharing(cmd *cobra.Command, o *splitOptions) (byte, []slip039.GroupConfiguration, error) {
	defaults := app.Config.Defaults

	if o.groupsSpec != "" {
		groups, err := validation.ParseGroups(o.groupsSpec)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid groups: %w", err)
		}

		groupThreshold := defaults.GroupThreshold
		if cmd.Flags().Changed("group-threshold") {
			groupThreshold = o.groupThreshold
		}
		if groupThreshold < 1 || groupThreshold > len(groups) {
			return 0, nil, fmt.Errorf("group threshold must be between 1 and %d (got %d)", len(groups), groupThreshold)
		}

		return byte(groupThreshold), groups, nil
	}

	threshold, shares := defaults.Threshold, defaults.Shares
	if cmd.Flags().Changed("threshold") {
		threshold = o.threshold
	}
	if cmd.Flags().Changed("shares") {
		shares = o.shares
	}
	if err := validation.ValidateSplitParams(shares, threshold); err != nil {
		return 0, nil, err
	}

	return 1, slip039.SimpleConfiguration(byte(threshold), byte(shares)), nil
}

func (app *App) iterationExponent(cmd *cobra.Command, o *splitOptions) (byte, error) {
	e := app.Config.SLIP039.IterationExponent
	if cmd.Flags().Changed("iteration-exponent") {
		e = o.iterationExponent
	}
	if err := validation.ValidateIterationExponent(e); err != nil {
		return 0, err
	}
	return byte(e), nil
}

// runSplit shares masterSecret and prints or saves the result.
func (app *App) runSplit(cmd *cobra.Command, p *prompter, o *splitOptions, masterSecret []byte) error {
	groupThreshold, groups, err := app.sharing(cmd, o)
	if err != nil {
		return err
	}

	exponent, err := app.iterationExponent(cmd, o)
	if err != nil {
		return err
	}

	var wl *slip039.Wordlist
	if o.format == storage.FormatMnemonic {
		if wl, err = app.requireWordlist(); err != nil {
			return err
		}
	}
	encode, err := shareEncoder(o.format, wl)
	if err != nil {
		return err
	}

	passphrase, err := app.passphrase(cmd, p, "passphrase", "Enter passphrase (optional, press Enter to skip): ")
	if err != nil {
		return err
	}
	if err := app.Config.CheckPassphrase(passphrase); err != nil {
		return err
	}

	shares, err := app.dealer().GenerateShares(groupThreshold, groups, masterSecret, passphrase, exponent)
	if err != nil {
		return fmt.Errorf("failed to split secret: %w", err)
	}
	defer func() {
		for i := range shares {
			secure.Zero(shares[i].ShareValue)
		}
	}()

	set, err := storage.NewShareSet(shares, o.format, encode)
	if err != nil {
		return err
	}

	app.Logger.Debug("split master secret",
		"identifier", set.Identifier,
		"groups", len(set.Groups),
		"group_threshold", set.GroupThreshold,
		"format", set.Format)

	if o.outputFile != "" {
		return app.saveShareSet(cmd, p, o, set)
	}

	if app.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), set)
	}
	displayShareSet(cmd.OutOrStdout(), set)
	return nil
}

func (app *App) saveShareSet(cmd *cobra.Command, p *prompter, o *splitOptions, set *storage.ShareSet) error {
	perm, err := app.Config.Permissions()
	if err != nil {
		return err
	}

	store := storage.NewShareStore(o.outputFile,
		storage.WithPermissions(perm),
		storage.WithRandom(app.Random))
	if store.Exists() && !o.force {
		return fmt.Errorf("%s already exists, use --force to overwrite it", o.outputFile)
	}

	var password []byte
	if o.encrypt {
		pw, _ := cmd.Flags().GetString("password")
		if !cmd.Flags().Changed("password") {
			if pw, err = p.readHidden("Enter file password: "); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if pw == "" {
			return fmt.Errorf("--encrypt needs a non-empty password")
		}
		password = []byte(pw)
		defer secure.Zero(password)
	}

	if err := store.Save(set, password); err != nil {
		return fmt.Errorf("failed to save shares: %w", err)
	}

	green := color.New(color.FgGreen, color.Bold)
	green.Fprintf(cmd.OutOrStdout(), "✓ %d shares saved to %s\n", len(set.All()), o.outputFile)
	return nil
}

func NewSplitCommand(app *App) *cobra.Command {
	var (
		opts         splitOptions
		secretHex    string
		secretLength int
		bip39Phrase  string
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a master secret into SLIP-0039 shares",
		Long: `Split a master secret into SLIP-0039 shares using two-level
Shamir's Secret Sharing with passphrase encryption.

The secret is given in hex, generated with --length, or taken from the
entropy of an existing BIP-39 phrase with --bip39. Without any of these it
is read from the terminal as hex.`,
		Example: `  # 2-of-3 shares of a random 256-bit secret
  hdwallet split --wordlist english.txt -t 2 -n 3 --length 32

  # Two groups, both needed: (2-of-3) and (3-of-5)
  hdwallet split --group-threshold 2 --groups "2/3,3/5" --secret 0011...

  # Share an existing BIP-39 wallet, write indices to a sealed file
  hdwallet split --bip39 "abandon ... about" --format indices -o shares.json --encrypt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)

			masterSecret, err := app.masterSecret(p, secretHex, secretLength, bip39Phrase)
			if err != nil {
				return err
			}
			defer secure.Zero(masterSecret)

			return app.runSplit(cmd, p, &opts, masterSecret)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&secretHex, "secret", "", "Master secret in hex")
	cmd.Flags().IntVarP(&secretLength, "length", "l", 0, "Generate a random secret of this many bytes")
	cmd.Flags().StringVar(&bip39Phrase, "bip39", "", "Share the entropy of this BIP-39 phrase")
	cmd.MarkFlagsMutuallyExclusive("secret", "length", "bip39")

	return cmd
}

func (app *App) masterSecret(p *prompter, secretHex string, length int, bip39Phrase string) ([]byte, error) {
	switch {
	case secretHex != "":
		return validation.DecodeSecret(secretHex)

	case length > 0:
		if err := validation.ValidateSecretLength(length); err != nil {
			return nil, err
		}
		secret, err := app.dealer().GenerateMasterSecret(length)
		if err != nil {
			return nil, fmt.Errorf("failed to generate secret: %w", err)
		}
		yellow := color.New(color.FgYellow, color.Bold)
		yellow.Fprintf(p.out, "Generated master secret: %s\n", hex.EncodeToString(secret))
		return secret, nil

	case bip39Phrase != "":
		phrase, err := mnemonic.FromWords(bip39Phrase)
		if err != nil {
			return nil, err
		}
		return phrase.Entropy()

	default:
		input, err := p.readHidden("Enter master secret (hex): ")
		if err != nil {
			return nil, fmt.Errorf("failed to read secret: %w", err)
		}
		return validation.DecodeSecret(input)
	}
}
