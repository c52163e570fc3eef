package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/nlordell/hdwallet/pkg/crypto/mnemonic"
	"github.com/nlordell/hdwallet/pkg/secure"
	"github.com/spf13/cobra"
)

type generateResult struct {
	Mnemonic    string `json:"mnemonic"`
	WordCount   int    `json:"word_count"`
	Fingerprint string `json:"fingerprint"`
	XPub        string `json:"xpub"`
}

func NewGenerateCommand(app *App) *cobra.Command {
	var (
		wordCount int
		split     bool
		opts      splitOptions
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new BIP-39 phrase, optionally splitting it at once",
		Long: `Generate a new BIP-39 phrase from fresh entropy and print it with the
BIP-32 master fingerprint of its seed.

With --split the phrase is not printed; its entropy is split into SLIP-0039
shares instead, and can later be restored with 'combine --bip39'.`,
		Example: `  # 24-word phrase
  hdwallet generate --words 24

  # New wallet that only ever exists as 2-of-3 shares
  hdwallet generate --split -t 2 -n 3 --wordlist english.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entropyBits, err := mnemonic.EntropyBitsFromWordCount(wordCount)
			if err != nil {
				return fmt.Errorf("invalid word count: %w", err)
			}

			phrase, err := mnemonic.New(entropyBits)
			if err != nil {
				return fmt.Errorf("failed to generate phrase: %w", err)
			}

			entropy, err := phrase.Entropy()
			if err != nil {
				return err
			}
			defer secure.Zero(entropy)

			if split {
				return app.runSplit(cmd, newPrompter(cmd), &opts, entropy)
			}

			recovered, err := describeSecret(entropy, true)
			if err != nil {
				return err
			}
			result := generateResult{
				Mnemonic:    phrase.String(),
				WordCount:   phrase.WordCount(),
				Fingerprint: recovered.Fingerprint,
				XPub:        recovered.XPub,
			}

			if app.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			out := cmd.OutOrStdout()
			green := color.New(color.FgGreen, color.Bold)
			red := color.New(color.FgRed, color.Bold)
			cyan := color.New(color.FgCyan, color.Bold)

			fmt.Fprintln(out)
			green.Fprintln(out, "=== NEW BIP-39 PHRASE ===")
			fmt.Fprintln(out)
			red.Fprintln(out, "⚠️  Write this phrase down and keep it offline.")
			fmt.Fprintln(out)
			for i, word := range phrase.Words() {
				fmt.Fprintf(out, "%2d. %s\n", i+1, word)
			}
			fmt.Fprintln(out)
			cyan.Fprintln(out, "Master fingerprint:")
			fmt.Fprintf(out, "  %s\n", result.Fingerprint)
			return nil
		},
	}

	cmd.Flags().IntVarP(&wordCount, "words", "w", 24, "Number of words (12, 15, 18, 21, or 24)")
	cmd.Flags().BoolVar(&split, "split", false, "Split the new phrase into SLIP-0039 shares instead of printing it")
	opts.register(cmd)

	return cmd
}
