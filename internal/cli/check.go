package cli

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
	"github.com/nlordell/hdwallet/pkg/crypto/slip039"
	"github.com/nlordell/hdwallet/pkg/secure"
	"github.com/spf13/cobra"
)

type groupStatus struct {
	Index           byte `json:"index"`
	MemberThreshold byte `json:"member_threshold"`
	Members         int  `json:"members"`
	Complete        bool `json:"complete"`
}

type checkResult struct {
	Identifier     uint16        `json:"identifier"`
	GroupThreshold byte          `json:"group_threshold"`
	GroupCount     byte          `json:"group_count"`
	Groups         []groupStatus `json:"groups"`
	Sufficient     bool          `json:"sufficient"`
	Fingerprint    string        `json:"fingerprint,omitempty"`
}

func NewCheckCommand(app *App) *cobra.Command {
	var (
		inputFile  string
		tryRecover bool
	)

	cmd := &cobra.Command{
		Use:   "check [share...]",
		Short: "Check if shares are compatible for recovery",
		Long: `Analyzes SLIP-0039 shares to determine whether they can be combined,
and what is still missing if they cannot. The master secret is never printed.

With --recover the shares are also combined and the BIP-32 fingerprint of the
result is shown, so a backup can be tested against the wallet.`,
		Example: `  # Check shares from a share file
  hdwallet check --input shares.json

  # Check specific shares and test the recovery
  hdwallet check --recover "share1..." "share2..."`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)

			wl, err := app.wordlist()
			if err != nil {
				return err
			}

			texts := args
			if inputFile != "" {
				if texts, err = app.loadShareTexts(cmd, p, inputFile); err != nil {
					return err
				}
			}
			if len(texts) == 0 {
				return fmt.Errorf("no shares to check")
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

			result, err := checkShares(shares)
			if err != nil {
				return err
			}

			if tryRecover && result.Sufficient {
				passphrase, err := app.passphrase(cmd, p, "passphrase", "Enter passphrase (press Enter if none): ")
				if err != nil {
					return err
				}

				masterSecret, err := slip039.CombineShares(shares, passphrase)
				if err != nil {
					return fmt.Errorf("failed to recover secret: %w", err)
				}
				defer secure.Zero(masterSecret)

				described, err := describeSecret(masterSecret, false)
				if err != nil {
					return err
				}
				result.Fingerprint = described.Fingerprint
			}

			app.Logger.Debug("checked shares", "shares", len(shares), "sufficient", result.Sufficient)

			if app.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			displayCheck(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Share file written by split")
	cmd.Flags().BoolVar(&tryRecover, "recover", false, "Combine the shares and show the master fingerprint")
	cmd.Flags().StringP("passphrase", "p", "", "Passphrase used during splitting (prompted when omitted)")
	cmd.Flags().String("password", "", "Password of a sealed share file (prompted when omitted)")

	return cmd
}

// checkShares reports, per group, how many distinct members are present.
// Shares from different splits are an error.
func checkShares(shares []slip039.Share) (*checkResult, error) {
	common := shares[0].CommonParameters
	for i, share := range shares[1:] {
		if share.CommonParameters != common {
			return nil, fmt.Errorf("%w: share %d belongs to a different split", slip039.ErrInconsistentShares, i+2)
		}
	}

	groups := make(map[byte]*groupStatus)
	seen := make(map[[2]byte][]byte)
	for _, share := range shares {
		key := [2]byte{share.GroupIndex, share.MemberIndex}
		if value, ok := seen[key]; ok {
			if !bytes.Equal(value, share.ShareValue) {
				return nil, fmt.Errorf("%w: group %d, member %d given twice with different values",
					slip039.ErrDuplicateIndex, share.GroupIndex+1, share.MemberIndex+1)
			}
			continue
		}
		seen[key] = share.ShareValue

		group, ok := groups[share.GroupIndex]
		if !ok {
			group = &groupStatus{Index: share.GroupIndex + 1, MemberThreshold: share.MemberThreshold}
			groups[share.GroupIndex] = group
		} else if group.MemberThreshold != share.MemberThreshold {
			return nil, fmt.Errorf("%w: group %d: member threshold mismatch",
				slip039.ErrInconsistentShares, share.GroupIndex+1)
		}
		group.Members++
	}

	result := &checkResult{
		Identifier:     common.Identifier,
		GroupThreshold: common.GroupThreshold,
		GroupCount:     common.GroupCount,
	}

	complete := 0
	for _, group := range groups {
		group.Complete = group.Members >= int(group.MemberThreshold)
		if group.Complete {
			complete++
		}
		result.Groups = append(result.Groups, *group)
	}
	slices.SortFunc(result.Groups, func(a, b groupStatus) int {
		return int(a.Index) - int(b.Index)
	})
	result.Sufficient = complete >= int(common.GroupThreshold)

	return result, nil
}

func displayCheck(w io.Writer, result *checkResult) {
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	fmt.Fprintln(w)
	yellow.Fprintln(w, "📊 RECOVERY REQUIREMENTS:")
	fmt.Fprintf(w, "Identifier %04X, groups: %d total, need %d\n",
		result.Identifier, result.GroupCount, result.GroupThreshold)

	fmt.Fprintln(w, "\nGroup Status:")
	for _, group := range result.Groups {
		if group.Complete {
			green.Fprintf(w, "  Group %d: ✓ Sufficient (%d of %d members)\n",
				group.Index, group.Members, group.MemberThreshold)
		} else {
			yellow.Fprintf(w, "  Group %d: ⚠ Partial (%d of %d members)\n",
				group.Index, group.Members, group.MemberThreshold)
		}
	}

	fmt.Fprintln(w)
	if !result.Sufficient {
		red.Fprintln(w, "❌ INSUFFICIENT SHARES")
		fmt.Fprintln(w, "To recover, you need:")
		missing := int(result.GroupThreshold)
		for _, group := range result.Groups {
			if group.Complete {
				missing--
				continue
			}
			fmt.Fprintf(w, "  - %d more share(s) from Group %d\n", int(group.MemberThreshold)-group.Members, group.Index)
		}
		fmt.Fprintf(w, "  - %d complete group(s) in total, %d still missing\n", result.GroupThreshold, missing)
		return
	}

	green.Fprintln(w, "✅ SUFFICIENT SHARES FOR RECOVERY!")
	if result.Fingerprint != "" {
		fmt.Fprintf(w, "Master fingerprint: %s\n", result.Fingerprint)
	}
}
