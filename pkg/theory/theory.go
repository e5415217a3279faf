// Package theory holds the fixed musical catalogs used by the composer:
// the seven-letter note alphabet, the built-in scales and the chord
// progression table.
//
// Two integer domains are kept apart on purpose. A [ChromaticDegree] is a
// scale step expressed in semitones above the tonic (0–11). A
// [LetterIndex] is a position in [Alphabet] (0–6). The only way from the
// first to the second is [ChromaticDegree.LetterIndex], which reduces
// modulo the alphabet size.
//
// All catalogs are read-only; functions that expose them return copies.
package theory

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrUnknownScale is returned by Lookup for names not in the catalog.
	ErrUnknownScale = errors.New("theory: unknown scale")

	// ErrUnknownChord is returned for chord symbols outside {I..vii}.
	ErrUnknownChord = errors.New("theory: unknown chord symbol")

	// ErrUnknownNote is returned for letters outside the alphabet.
	ErrUnknownNote = errors.New("theory: unknown note letter")
)

// Alphabet is the fixed diatonic letter sequence.
var Alphabet = [7]string{"C", "D", "E", "F", "G", "A", "B"}

// AlphabetSize is len(Alphabet).
const AlphabetSize = len(Alphabet)

// LetterIndex is a position in Alphabet.
type LetterIndex int

// Valid reports whether i addresses a letter.
func (i LetterIndex) Valid() bool {
	return i >= 0 && int(i) < AlphabetSize
}

// Letter returns the alphabet letter at i. It panics if i is not valid.
func (i LetterIndex) Letter() string {
	return Alphabet[i]
}

// ChromaticDegree is a scale step in semitones above the tonic.
type ChromaticDegree int

// LetterIndex maps the degree onto the alphabet by reducing modulo the
// alphabet size. It is the single conversion between the two domains.
func (d ChromaticDegree) LetterIndex() LetterIndex {
	return LetterIndex(Mod(int(d), AlphabetSize))
}

// IndexOf returns the alphabet position of letter.
func IndexOf(letter string) (LetterIndex, error) {
	for i, l := range Alphabet {
		if l == letter {
			return LetterIndex(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownNote, letter)
}

// IsLetter reports whether s is one of the alphabet letters.
func IsLetter(s string) bool {
	_, err := IndexOf(s)
	return err == nil
}

// Mod returns the non-negative remainder of a divided by n.
func Mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
