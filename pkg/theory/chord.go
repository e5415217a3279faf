package theory

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// ChordSymbol is a roman-numeral label naming the root degree of a
// diatonic triad.
type ChordSymbol string

// Chord symbols.
const (
	ChordI   ChordSymbol = "I"
	ChordII  ChordSymbol = "ii"
	ChordIII ChordSymbol = "iii"
	ChordIV  ChordSymbol = "IV"
	ChordV   ChordSymbol = "V"
	ChordVI  ChordSymbol = "vi"
	ChordVII ChordSymbol = "vii"
)

var chordDegrees = map[ChordSymbol]LetterIndex{
	ChordI:   0,
	ChordII:  1,
	ChordIII: 2,
	ChordIV:  3,
	ChordV:   4,
	ChordVI:  5,
	ChordVII: 6,
}

// Progression is an ordered sequence of chord symbols.
type Progression []ChordSymbol

// String renders the progression as "I-IV-V".
func (p Progression) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = string(s)
	}
	return strings.Join(parts, "-")
}

// Strings returns the symbols as plain strings.
func (p Progression) Strings() []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = string(s)
	}
	return out
}

var progressions = []Progression{
	{ChordI, ChordIV, ChordV},
	{ChordII, ChordV, ChordI},
	{ChordVI, ChordIV, ChordI, ChordV},
	{ChordII, ChordV, ChordI, ChordIV},
	{ChordI, ChordIII, ChordIV, ChordII, ChordV, ChordVI},
}

// Progressions returns a copy of the progression catalog.
func Progressions() []Progression {
	out := make([]Progression, len(progressions))
	for i, p := range progressions {
		out[i] = slices.Clone(p)
	}
	return out
}

// ChooseProgression picks one catalog progression uniformly at random.
//
// The scale is accepted for interface symmetry with the other catalog
// operations but does not influence the choice.
func ChooseProgression(rng *rand.Rand, scale string) Progression {
	_ = scale
	return slices.Clone(progressions[rng.IntN(len(progressions))])
}

// ParseProgression converts symbols such as "I-IV-V" or "ii V I" into a
// Progression, validating every symbol.
func ParseProgression(s string) (Progression, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == ',' || r == ' '
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("theory: empty progression")
	}
	p := make(Progression, len(fields))
	for i, f := range fields {
		sym := ChordSymbol(f)
		if _, err := DegreeIndex(sym); err != nil {
			return nil, err
		}
		p[i] = sym
	}
	return p, nil
}

// IsCatalogProgression reports whether p equals one of the catalog entries.
func IsCatalogProgression(p Progression) bool {
	for _, c := range progressions {
		if slices.Equal(c, p) {
			return true
		}
	}
	return false
}

// DegreeIndex returns the root position of a chord symbol.
func DegreeIndex(sym ChordSymbol) (LetterIndex, error) {
	d, ok := chordDegrees[sym]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownChord, sym)
	}
	return d, nil
}

// HarmonicNotes returns one letter per scale degree, offset by the chord
// root: Alphabet[(root + degree) mod 7]. Degrees above 6 wrap, so the
// result usually repeats letters; for I in major it is [C E G A C E G].
func HarmonicNotes(sym ChordSymbol, scale string) ([]string, error) {
	root, err := DegreeIndex(sym)
	if err != nil {
		return nil, err
	}
	degrees, err := Lookup(scale)
	if err != nil {
		return nil, err
	}
	notes := make([]string, len(degrees))
	for i, g := range degrees {
		notes[i] = (ChromaticDegree(root) + g).LetterIndex().Letter()
	}
	return notes, nil
}
