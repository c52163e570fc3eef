package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/nlordell/hdwallet/internal/validation"
	"github.com/nlordell/hdwallet/pkg/crypto/slip039"
	"github.com/nlordell/hdwallet/pkg/storage"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNoWordlist = errors.New("a SLIP-0039 word list is required: pass --wordlist, set slip039.wordlist, or use --format indices")

// prompter reads answers from the command input. Hidden prompts use the
// terminal when the input is one.
type prompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	return &prompter{
		in:     in,
		out:    cmd.ErrOrStderr(),
		reader: bufio.NewReader(in),
	}
}

// readLine returns the next line without its line ending. io.EOF is only
// returned when nothing was read.
func (p *prompter) readLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readHidden reads a line without echo when the input is a terminal.
func (p *prompter) readHidden(prompt string) (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, prompt)
		value, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return string(value), nil
	}

	line, err := p.readLine(prompt)
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	return line, err
}

// passphrase returns the flag value if it was given, otherwise prompts.
func (app *App) passphrase(cmd *cobra.Command, p *prompter, flag, prompt string) (string, error) {
	passphrase, _ := cmd.Flags().GetString(flag)
	if !cmd.Flags().Changed(flag) {
		var err error
		if passphrase, err = p.readHidden(prompt); err != nil {
			return "", fmt.Errorf("failed to read passphrase: %w", err)
		}
	}

	if err := validation.ValidatePassphrase(passphrase); err != nil {
		return "", err
	}
	return passphrase, nil
}

func formatIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, index := range indices {
		parts[i] = strconv.Itoa(index)
	}
	return strings.Join(parts, " ")
}

// shareEncoder renders shares in format.
func shareEncoder(format string, wl *slip039.Wordlist) (func(slip039.Share) (string, error), error) {
	switch format {
	case storage.FormatMnemonic:
		if wl == nil {
			return nil, errNoWordlist
		}
		return func(s slip039.Share) (string, error) {
			return s.Mnemonic(wl)
		}, nil
	case storage.FormatIndices:
		return func(s slip039.Share) (string, error) {
			indices, err := s.Indices()
			if err != nil {
				return "", err
			}
			return formatIndices(indices), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (use %s or %s)", format, storage.FormatMnemonic, storage.FormatIndices)
	}
}

// decodeShare parses a share written as a mnemonic or as word indices. Text
// made of numbers only is read as indices.
func decodeShare(text string, wl *slip039.Wordlist) (slip039.Share, error) {
	if looksLikeIndices(text) {
		indices, err := validation.ParseIndices(text)
		if err != nil {
			return slip039.Share{}, err
		}
		return slip039.ShareFromIndices(indices)
	}

	if wl == nil {
		return slip039.Share{}, errNoWordlist
	}
	return slip039.ShareFromMnemonic(wl, text)
}

func looksLikeIndices(text string) bool {
	hasDigit := false
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == ' ' || r == ',' || r == '\t' || r == '[' || r == ']':
		default:
			return false
		}
	}
	return hasDigit
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// displayShareSet prints the shares of a split, four words per line.
func displayShareSet(w io.Writer, set *storage.ShareSet) {
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	yellow.Fprintln(w, "=== SLIP-0039 SHARES ===")
	fmt.Fprintln(w)

	if len(set.Groups) == 1 {
		group := set.Groups[0]
		green.Fprintf(w, "Created %d shares with threshold %d\n", len(group.Shares), group.MemberThreshold)
		fmt.Fprintf(w, "Any %d shares can reconstruct the original secret\n", group.MemberThreshold)
	} else {
		green.Fprintf(w, "Created %d groups with group threshold %d\n", len(set.Groups), set.GroupThreshold)
		fmt.Fprintf(w, "Need shares from at least %d groups to reconstruct\n", set.GroupThreshold)
	}
	fmt.Fprintf(w, "Identifier %04X, %d PBKDF2 iterations per round\n",
		set.Identifier, slip039.IterationCount(set.IterationExponent))

	for i, group := range set.Groups {
		if len(set.Groups) > 1 {
			fmt.Fprintln(w)
			cyan.Fprintf(w, "Group %d (threshold %d of %d):\n", i+1, group.MemberThreshold, len(group.Shares))
		}

		for j, share := range group.Shares {
			fmt.Fprintf(w, "\nShare %d-%d:\n", i+1, j+1)

			words := strings.Fields(share)
			for k := 0; k < len(words); k += 4 {
				end := min(k+4, len(words))
				fmt.Fprintf(w, "  %s\n", strings.Join(words[k:end], " "))
			}
		}
	}

	fmt.Fprintln(w)
	red.Fprintln(w, "⚠️  SECURITY WARNING:")
	fmt.Fprintln(w, "- Each share should be stored in a different secure location")
	fmt.Fprintln(w, "- Never store shares together or electronically without encryption")
	fmt.Fprintln(w, "- Test recovery with minimum shares before relying on this backup")
}
