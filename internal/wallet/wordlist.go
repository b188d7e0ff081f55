package wallet

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/tyler-smith/go-bip39/wordlists"
)

// WordListSize is the number of words in a BIP-39 dictionary.
const WordListSize = 2048

// Word list errors.
var (
	ErrWordListSize      = errors.New("word list must contain 2048 words")
	ErrWordListDuplicate = errors.New("word list contains a duplicate word")
	ErrWordListInstalled = errors.New("a different shared word list is already installed")
	ErrNoSharedWordList  = errors.New("no shared word list installed")
)

// WordList is an immutable BIP-39 dictionary.
type WordList struct {
	words []string
	index map[string]uint16
}

// NewWordList validates and copies words into a WordList.
func NewWordList(words []string) (*WordList, error) {
	if len(words) != WordListSize {
		return nil, fmt.Errorf("%w: got %d", ErrWordListSize, len(words))
	}
	wl := &WordList{
		words: slices.Clone(words),
		index: make(map[string]uint16, WordListSize),
	}
	for i, w := range wl.words {
		if _, dup := wl.index[w]; dup {
			return nil, fmt.Errorf("%w: %q", ErrWordListDuplicate, w)
		}
		wl.index[w] = uint16(i)
	}
	return wl, nil
}

// Word returns the word at index i (0..2047).
func (wl *WordList) Word(i uint16) string {
	return wl.words[i]
}

// Index returns the position of w in the list.
func (wl *WordList) Index(w string) (uint16, bool) {
	i, ok := wl.index[w]
	return i, ok
}

// Equal reports whether both lists hold the same words in order.
func (wl *WordList) Equal(other *WordList) bool {
	return other != nil && slices.Equal(wl.words, other.words)
}

// English returns the BIP-39 English word list.
var English = sync.OnceValue(func() *WordList {
	wl, err := NewWordList(wordlists.English)
	if err != nil {
		panic(fmt.Sprintf("wallet: bundled English word list: %v", err))
	}
	return wl
})

// shared is the process-wide word list. It is written at most once.
var shared struct {
	mu   sync.RWMutex
	list *WordList
}

// InstallSharedWordList installs words as the process-wide word list.
// Installing is idempotent: repeating it with the same words succeeds,
// while a different list is rejected.
func InstallSharedWordList(words []string) (*WordList, error) {
	wl, err := NewWordList(words)
	if err != nil {
		return nil, err
	}
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.list == nil {
		shared.list = wl
		return wl, nil
	}
	if !shared.list.Equal(wl) {
		return nil, ErrWordListInstalled
	}
	return shared.list, nil
}

// SharedWordList returns the installed process-wide word list.
func SharedWordList() (*WordList, error) {
	shared.mu.RLock()
	defer shared.mu.RUnlock()
	if shared.list == nil {
		return nil, ErrNoSharedWordList
	}
	return shared.list, nil
}
