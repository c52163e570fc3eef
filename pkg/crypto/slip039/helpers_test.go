package slip039

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testWords returns 1024 sorted five letter words: "waaae", "waabe", ...
func testWords() []string {
	words := make([]string, RadixSize)
	for i := range words {
		words[i] = string([]byte{
			'w',
			'a' + byte(i/(26*26)),
			'a' + byte(i/26%26),
			'a' + byte(i%26),
			'e',
		})
	}
	return words
}

func testWordlist(t *testing.T) *Wordlist {
	t.Helper()
	wl, err := NewWordlist(testWords())
	require.NoError(t, err)
	return wl
}

// combinations yields every k element subset of [0, n) in lexicographic order.
func combinations(n, k int) [][]int {
	var result [][]int
	var walk func(start int, current []int)
	walk = func(start int, current []int) {
		if len(current) == k {
			result = append(result, append([]int(nil), current...))
			return
		}
		for i := start; i < n; i++ {
			walk(i+1, append(current, i))
		}
	}
	walk(0, nil)
	return result
}
