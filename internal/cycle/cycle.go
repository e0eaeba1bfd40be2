// Package cycle implements index arithmetic over the two fixed cyclic
// alphabets used by the chart: the 10 heavenly stems and the 12 earthly
// branches. Every offset computation in the module goes through Mod so that
// negative and oversized offsets normalize the same way.
package cycle

import (
	"errors"
	"fmt"
	"strings"
)

// Cycle lengths.
const (
	StemCount   = 10
	BranchCount = 12
)

var (
	// ErrInvalidStem indicates a symbol that is not one of the 10 stems.
	ErrInvalidStem = errors.New("invalid stem symbol")
	// ErrInvalidBranch indicates a symbol that is not one of the 12 branches.
	ErrInvalidBranch = errors.New("invalid branch symbol")
)

var stemSymbols = [StemCount]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}

var stemAliases = [StemCount]string{"jia", "yi", "bing", "ding", "wu", "ji", "geng", "xin", "ren", "gui"}

var branchSymbols = [BranchCount]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

var branchAliases = [BranchCount]string{"zi", "chou", "yin", "mao", "chen", "si", "wu", "wei", "shen", "you", "xu", "hai"}

// displayOrder is the conventional wheel layout, starting at 寅.
var displayOrder = [BranchCount]Branch{2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 0, 1}

// Mod is floored modulo: the result always lies in [0, n) for n > 0.
func Mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// Stem is a canonical stem index in [0, 10).
type Stem int

// StemAt normalizes any integer into the stem cycle.
func StemAt(i int) Stem { return Stem(Mod(i, StemCount)) }

// ParseStem resolves a stem symbol (or its pinyin alias) to its Stem.
func ParseStem(s string) (Stem, error) {
	s = strings.TrimSpace(s)
	for i, sym := range stemSymbols {
		if s == sym || strings.EqualFold(s, stemAliases[i]) {
			return Stem(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStem, s)
}

// Index returns the canonical position of the stem.
func (s Stem) Index() int { return int(s) }

// Add returns the stem n steps further along the cycle.
func (s Stem) Add(n int) Stem { return StemAt(int(s) + n) }

// Valid reports whether s is inside the cycle.
func (s Stem) Valid() bool { return s >= 0 && s < StemCount }

func (s Stem) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Stem(%d)", int(s))
	}
	return stemSymbols[s]
}

// Branch is a canonical branch index in [0, 12).
type Branch int

// BranchAt normalizes any integer into the branch cycle.
func BranchAt(i int) Branch { return Branch(Mod(i, BranchCount)) }

// ParseBranch resolves a branch symbol (or its pinyin alias) to its Branch.
func ParseBranch(s string) (Branch, error) {
	s = strings.TrimSpace(s)
	for i, sym := range branchSymbols {
		if s == sym || strings.EqualFold(s, branchAliases[i]) {
			return Branch(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidBranch, s)
}

// Index returns the canonical position of the branch.
func (b Branch) Index() int { return int(b) }

// Add returns the branch n steps further along the cycle.
func (b Branch) Add(n int) Branch { return BranchAt(int(b) + n) }

// Opposite returns the diametrically opposite branch.
func (b Branch) Opposite() Branch { return b.Add(BranchCount / 2) }

// IsOpposite reports whether b and other sit exactly six positions apart.
func (b Branch) IsOpposite(other Branch) bool {
	return Mod(int(b)-int(other), BranchCount) == BranchCount/2
}

// Valid reports whether b is inside the cycle.
func (b Branch) Valid() bool { return b >= 0 && b < BranchCount }

func (b Branch) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Branch(%d)", int(b))
	}
	return branchSymbols[b]
}

// Branches returns all 12 branches in canonical order.
func Branches() []Branch {
	out := make([]Branch, BranchCount)
	for i := range out {
		out[i] = Branch(i)
	}
	return out
}

// Stems returns all 10 stems in canonical order.
func Stems() []Stem {
	out := make([]Stem, StemCount)
	for i := range out {
		out[i] = Stem(i)
	}
	return out
}

// DisplayOrder returns the branches in wheel layout order (寅 first). Layout
// is presentational only; logical indexing stays canonical.
func DisplayOrder() []Branch {
	out := make([]Branch, BranchCount)
	copy(out, displayOrder[:])
	return out
}

// MarshalText renders the stem as its symbol.
func (s Stem) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// MarshalText renders the branch as its symbol.
func (b Branch) MarshalText() ([]byte, error) { return []byte(b.String()), nil }
