package slip039

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode"
)

const (
	minWordLength = 4
	maxWordLength = 8

	// PrefixLength is the number of leading letters that identify a word.
	PrefixLength = 4
)

// Wordlist is the SLIP-0039 dictionary: 1024 distinct lowercase words in
// sorted order, each standing for one 10-bit value. Words are 4 to 8 letters
// long and no two share their first four letters.
type Wordlist struct {
	words []string
}

// NewWordlist validates words and wraps a copy of them.
func NewWordlist(words []string) (*Wordlist, error) {
	if len(words) != RadixSize {
		return nil, fmt.Errorf("%w: must contain exactly %d words, got %d", ErrInvalidWordlist, RadixSize, len(words))
	}

	for i, word := range words {
		if len(word) < minWordLength || len(word) > maxWordLength {
			return nil, fmt.Errorf("%w: word %d (%q) must be %d to %d letters",
				ErrInvalidWordlist, i, word, minWordLength, maxWordLength)
		}
		for _, c := range word {
			if !unicode.IsLower(c) {
				return nil, fmt.Errorf("%w: word %d (%s) is not lowercase", ErrInvalidWordlist, i, word)
			}
		}
		if i > 0 && words[i-1] >= word {
			return nil, fmt.Errorf("%w: words %d (%s) and %d (%s) are not sorted or not unique",
				ErrInvalidWordlist, i-1, words[i-1], i, word)
		}
		// Sorted words sharing a prefix are neighbours
		if i > 0 && words[i-1][:PrefixLength] == word[:PrefixLength] {
			return nil, fmt.Errorf("%w: words %d (%s) and %d (%s) share the prefix %q",
				ErrInvalidWordlist, i-1, words[i-1], i, word, word[:PrefixLength])
		}
	}

	return &Wordlist{words: slices.Clone(words)}, nil
}

// ParseWordlist reads a newline-separated word list. Surrounding whitespace
// and blank lines are ignored.
func ParseWordlist(r io.Reader) (*Wordlist, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if word := strings.TrimSpace(scanner.Text()); word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wordlist: %w", err)
	}
	return NewWordlist(words)
}

// LoadWordlist reads a word list file.
func LoadWordlist(path string) (*Wordlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wordlist: %w", err)
	}
	defer f.Close()

	return ParseWordlist(f)
}

// Word returns the word at the given index
func (wl *Wordlist) Word(index int) (string, error) {
	if index < 0 || index >= len(wl.words) {
		return "", fmt.Errorf("%w: %d", ErrInvalidWordIndex, index)
	}
	return wl.words[index], nil
}

// Index returns the index of word. The lookup is exact.
func (wl *Wordlist) Index(word string) (int, error) {
	if i, ok := slices.BinarySearch(wl.words, word); ok {
		return i, nil
	}
	return -1, fmt.Errorf("word %q not found in wordlist", word)
}

// lookup finds a typed word: case is ignored and a word may be abbreviated
// to its first PrefixLength or more letters.
func (wl *Wordlist) lookup(word string) (int, error) {
	word = strings.ToLower(word)
	i, ok := slices.BinarySearch(wl.words, word)
	if ok {
		return i, nil
	}
	if len(word) >= PrefixLength && i < len(wl.words) && strings.HasPrefix(wl.words[i], word) {
		return i, nil
	}
	return -1, fmt.Errorf("word %q not found in wordlist", word)
}

// Words returns a copy of the wordlist
func (wl *Wordlist) Words() []string {
	return slices.Clone(wl.words)
}

// Phrase joins the words for indices with single spaces.
func (wl *Wordlist) Phrase(indices []int) (string, error) {
	words := make([]string, len(indices))
	for i, idx := range indices {
		word, err := wl.Word(idx)
		if err != nil {
			return "", fmt.Errorf("index %d: %w", i, err)
		}
		words[i] = word
	}

	return strings.Join(words, " "), nil
}

// Indices converts a phrase to a list of word indices. Words are separated
// by any whitespace, case is ignored and each word may be abbreviated to its
// first four letters.
func (wl *Wordlist) Indices(phrase string) ([]int, error) {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: empty mnemonic", ErrInvalidMnemonic)
	}

	indices := make([]int, len(words))
	for i, word := range words {
		idx, err := wl.lookup(word)
		if err != nil {
			return nil, fmt.Errorf("%w: word %d: %w", ErrInvalidMnemonic, i+1, err)
		}
		indices[i] = idx
	}

	return indices, nil
}
