package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/nlordell/hdwallet/pkg/secure"
	"github.com/spf13/cobra"
)

func NewInfoCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info <share>",
		Short: "Show the metadata of a SLIP-0039 share",
		Long: `Decode a single share, given as mnemonic words or word indices, and
show its identifier, iteration exponent and group and member parameters.
The checksum is verified; the share value is not shown.`,
		Example: `  hdwallet info --wordlist english.txt "academic acid acrobat ..."
  hdwallet info 924 1008 12 ...`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wl, err := app.wordlist()
			if err != nil {
				return err
			}

			share, err := decodeShare(strings.Join(args, " "), wl)
			if err != nil {
				return err
			}
			info := share.Info()
			secure.Zero(share.ShareValue)

			if app.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), info)
			}

			green := color.New(color.FgGreen, color.Bold)
			green.Fprintln(cmd.OutOrStdout(), "✓ Valid SLIP-0039 share")
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return nil
		},
	}
}
