package cli

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/nlordell/hdwallet/internal/validation"
	"github.com/nlordell/hdwallet/pkg/crypto/hdkey"
	"github.com/nlordell/hdwallet/pkg/crypto/mnemonic"
	"github.com/nlordell/hdwallet/pkg/crypto/slip039"
	"github.com/nlordell/hdwallet/pkg/secure"
	"github.com/nlordell/hdwallet/pkg/storage"
	"github.com/spf13/cobra"
)

type recoveryResult struct {
	MasterSecret string `json:"master_secret"`
	BIP39        string `json:"bip39,omitempty"`
	Fingerprint  string `json:"fingerprint,omitempty"`
	XPub         string `json:"xpub,omitempty"`
}

func NewCombineCommand(app *App) *cobra.Command {
	var (
		inputFile   string
		outputBIP39 bool
	)

	cmd := &cobra.Command{
		Use:   "combine [share...]",
		Short: "Recover a master secret from SLIP-0039 shares",
		Long: `Combine SLIP-0039 shares to recover the original master secret.

Shares are mnemonics or word index lists. They are read from a file written
by split, from the arguments (one quoted share each), or interactively, one
per line. The BIP-32 master fingerprint of the result is printed so the
recovery can be checked against the wallet.

A wrong passphrase is not detected: it yields a different, valid-looking
secret with a different fingerprint.`,
		Example: `  # Enter shares interactively
  hdwallet combine --wordlist english.txt

  # From a share file, printing the secret as a BIP-39 phrase
  hdwallet combine --input shares.json --bip39`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)

			wl, err := app.wordlist()
			if err != nil {
				return err
			}

			var texts []string
			switch {
			case inputFile != "":
				if texts, err = app.loadShareTexts(cmd, p, inputFile); err != nil {
					return err
				}
			case len(args) > 0:
				texts = args
			default:
				if texts, err = collectShares(p, wl); err != nil {
					return err
				}
			}

			shares := make([]slip039.Share, 0, len(texts))
			defer func() {
				for i := range shares {
					secure.Zero(shares[i].ShareValue)
				}
			}()
			for i, text := range texts {
				share, err := decodeShare(text, wl)
				if err != nil {
					return fmt.Errorf("share %d: %w", i+1, err)
				}
				shares = append(shares, share)
			}

			passphrase, err := app.passphrase(cmd, p, "passphrase", "Enter passphrase (press Enter if none): ")
			if err != nil {
				return err
			}

			masterSecret, err := slip039.CombineShares(shares, passphrase)
			if err != nil {
				return fmt.Errorf("failed to recover secret: %w", err)
			}
			defer secure.Zero(masterSecret)

			result, err := describeSecret(masterSecret, outputBIP39)
			if err != nil {
				return err
			}

			app.Logger.Debug("recovered master secret", "shares", len(shares), "fingerprint", result.Fingerprint)

			if app.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			displayRecovery(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Share file written by split, or a text file with one share per line")
	cmd.Flags().StringP("passphrase", "p", "", "Passphrase used during splitting (prompted when omitted)")
	cmd.Flags().String("password", "", "Password of a sealed share file (prompted when omitted)")
	cmd.Flags().BoolVar(&outputBIP39, "bip39", false, "Print the secret as a BIP-39 phrase and fingerprint its seed")

	return cmd
}

// describeSecret derives what is shown to the user for a recovered secret.
// With asBIP39 the secret is BIP-39 entropy and the fingerprint is that of
// the phrase's seed without a BIP-39 passphrase.
func describeSecret(masterSecret []byte, asBIP39 bool) (*recoveryResult, error) {
	result := &recoveryResult{MasterSecret: hex.EncodeToString(masterSecret)}

	seed := masterSecret
	if asBIP39 {
		phrase, err := mnemonic.FromEntropy(masterSecret)
		if err != nil {
			return nil, fmt.Errorf("secret is not BIP-39 entropy: %w", err)
		}
		result.BIP39 = phrase.String()
		seed = phrase.Seed("")
		defer secure.Zero(seed)
	}

	// Secrets longer than a BIP-32 seed have no fingerprint
	if len(seed) > hdkey.MaxSeedLength {
		return result, nil
	}

	key, err := hdkey.NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	if result.Fingerprint, err = key.FingerprintHex(); err != nil {
		return nil, err
	}
	result.XPub = key.ExtendedPublicKey()

	return result, nil
}

// loadShareTexts reads a share file written by split, or a text file with
// one share per line where lines starting with # are skipped.
func (app *App) loadShareTexts(cmd *cobra.Command, p *prompter, path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shares: %w", err)
	}
	defer secure.Zero(raw)

	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		texts := validation.SplitShares(string(raw))
		app.Logger.Debug("loaded share list", "path", path, "shares", len(texts))
		return texts, nil
	}

	store := storage.NewShareStore(path)

	sealed, err := store.IsSealed()
	if err != nil {
		return nil, err
	}

	var password []byte
	if sealed {
		pw, _ := cmd.Flags().GetString("password")
		if !cmd.Flags().Changed("password") {
			if pw, err = p.readHidden("Enter file password: "); err != nil {
				return nil, fmt.Errorf("failed to read password: %w", err)
			}
		}
		password = []byte(pw)
		defer secure.Zero(password)
	}

	set, err := store.Load(password)
	if err != nil {
		return nil, err
	}

	texts := set.All()
	app.Logger.Debug("loaded share file", "path", path, "sealed", sealed, "shares", len(texts))
	return texts, nil
}

// collectShares reads one share per line until an empty line or the end of
// input. Invalid shares are reported and skipped.
func collectShares(p *prompter, wl *slip039.Wordlist) ([]string, error) {
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Fprintln(p.out)
	yellow.Fprintln(p.out, "Enter SLIP-0039 shares (one per line)")
	fmt.Fprintln(p.out, "Press Enter on an empty line when done")
	fmt.Fprintln(p.out)

	var texts []string
	for {
		line, err := p.readLine(fmt.Sprintf("Share %d: ", len(texts)+1))
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if len(texts) == 0 {
				continue
			}
			break
		}

		share, err := decodeShare(line, wl)
		if err != nil {
			red.Fprintf(p.out, "  ✗ Invalid share: %v\n", err)
			continue
		}
		info := share.Info()
		secure.Zero(share.ShareValue)
		green.Fprintf(p.out, "  ✓ Valid share (group %d of %d, member %d)\n",
			info.GroupIndex, info.GroupCount, info.MemberIndex)

		texts = append(texts, line)
	}

	if len(texts) == 0 {
		return nil, fmt.Errorf("no valid shares provided")
	}

	fmt.Fprintf(p.out, "\nCollected %d shares\n", len(texts))
	return texts, nil
}

func displayRecovery(w io.Writer, result *recoveryResult) {
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	green.Fprintln(w, "✓ Successfully recovered master secret!")
	fmt.Fprintln(w)

	cyan.Fprintln(w, "Master Secret (hex):")
	fmt.Fprintf(w, "  %s\n", result.MasterSecret)

	if result.BIP39 != "" {
		cyan.Fprintln(w, "BIP-39 phrase:")
		fmt.Fprintf(w, "  %s\n", result.BIP39)
	}

	if result.Fingerprint != "" {
		cyan.Fprintln(w, "Master fingerprint:")
		fmt.Fprintf(w, "  %s\n", result.Fingerprint)
		cyan.Fprintln(w, "Master extended public key:")
		fmt.Fprintf(w, "  %s\n", result.XPub)
	}
}
