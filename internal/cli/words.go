package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nlordell/hdwallet/internal/validation"
	"github.com/nlordell/hdwallet/pkg/crypto/slip039"
	"github.com/spf13/cobra"
)

type wordsResult struct {
	Hex     string   `json:"hex"`
	Indices []int    `json:"indices"`
	Words   []string `json:"words,omitempty"`
}

// NewWordsCommand exposes the 10-bit word encoding used for share values.
func NewWordsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Convert between bytes and 10-bit word indices",
	}

	cmd.AddCommand(newWordsEncodeCommand(app), newWordsDecodeCommand(app))
	return cmd
}

func newWordsEncodeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <hex>",
		Short: "Encode bytes as word indices, and words when a word list is set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.TrimPrefix(strings.TrimSpace(args[0]), "0x")
			if err := validation.ValidateHex(input); err != nil {
				return err
			}
			data, err := hex.DecodeString(input)
			if err != nil {
				return err
			}

			result := wordsResult{
				Hex:     input,
				Indices: slip039.WordIndices(data),
			}
			if err := app.attachWords(&result); err != nil {
				return err
			}

			return printWords(cmd, app, result)
		},
	}
}

func newWordsDecodeCommand(app *App) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "decode <index|word>...",
		Short: "Decode word indices, or words when a word list is set, into bytes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			var indices []int
			var err error
			if looksLikeIndices(text) {
				indices, err = validation.ParseIndices(text)
			} else {
				var wl *slip039.Wordlist
				if wl, err = app.requireWordlist(); err == nil {
					indices, err = wl.Indices(text)
				}
			}
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("size") {
				size = len(indices) * slip039.RadixBits / 8
			}

			data, err := slip039.BytesFromIndices(indices, size)
			if err != nil {
				return fmt.Errorf("cannot decode %d bytes: %w", size, err)
			}

			result := wordsResult{
				Hex:     hex.EncodeToString(data),
				Indices: indices,
			}
			if err := app.attachWords(&result); err != nil {
				return err
			}

			return printWords(cmd, app, result)
		},
	}

	cmd.Flags().IntVarP(&size, "size", "s", 0, "Number of bytes to decode (default: as many as the words hold)")
	return cmd
}

func (app *App) attachWords(result *wordsResult) error {
	wl, err := app.wordlist()
	if err != nil || wl == nil {
		return err
	}

	phrase, err := wl.Phrase(result.Indices)
	if err != nil {
		return err
	}
	result.Words = strings.Fields(phrase)
	return nil
}

func printWords(cmd *cobra.Command, app *App, result wordsResult) error {
	if app.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "hex:     %s\n", result.Hex)
	fmt.Fprintf(out, "indices: %s\n", formatIndices(result.Indices))
	if len(result.Words) > 0 {
		fmt.Fprintf(out, "words:   %s\n", strings.Join(result.Words, " "))
	}
	return nil
}
