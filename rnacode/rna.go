package rnacode

import (
	"strings"
)

// RNA is a primary sequence with its secondary structure in dot-bracket notation
type RNA struct {
	Primary   string
	Structure string
}

// NewRNA validates and normalizes an RNA instance. Bases are upper-cased.
func NewRNA(primary, structure string) (RNA, error) {
	primary = strings.ToUpper(primary)
	if len(primary) != len(structure) {
		return RNA{}, errorf(CodeInvalidRNA, "primary length %d does not match structure length %d",
			len(primary), len(structure))
	}
	for i := 0; i < len(primary); i++ {
		if strings.IndexByte(Bases, primary[i]) < 0 {
			return RNA{}, errorf(CodeInvalidRNA, "invalid base %q at position %d", primary[i], i)
		}
		if strings.IndexByte(StructureMarks, structure[i]) < 0 {
			return RNA{}, errorf(CodeInvalidRNA, "invalid structure mark %q at position %d", structure[i], i)
		}
	}
	return RNA{Primary: primary, Structure: structure}, nil
}

// MustRNA is NewRNA that panics on invalid input
func MustRNA(primary, structure string) RNA {
	rna, err := NewRNA(primary, structure)
	if err != nil {
		panic(err)
	}
	return rna
}

// Len returns the number of bases
func (r RNA) Len() int {
	return len(r.Primary)
}

// Terminals returns the (base, mark) terminal word of the molecule
func (r RNA) Terminals() []Terminal {
	word := make([]Terminal, len(r.Primary))
	for i := range word {
		word[i] = PairTerminal(r.Primary[i], r.Structure[i])
	}
	return word
}

func (r RNA) String() string {
	return r.Primary + "\n" + r.Structure
}

// RNAFromTerminals rebuilds a molecule from a word of pair terminals
func RNAFromTerminals(word []Terminal) (RNA, error) {
	primary := make([]byte, len(word))
	structure := make([]byte, len(word))
	for i, t := range word {
		if !t.IsPair() {
			return RNA{}, errorf(CodeInvalidRNA, "terminal %s at position %d is not a base pair terminal", t, i)
		}
		primary[i] = t.Base
		structure[i] = t.Mark
	}
	return NewRNA(string(primary), string(structure))
}

// CharWord converts a string into a word of character terminals
func CharWord(s string) []Terminal {
	word := make([]Terminal, len(s))
	for i := 0; i < len(s); i++ {
		word[i] = CharTerminal(s[i])
	}
	return word
}
