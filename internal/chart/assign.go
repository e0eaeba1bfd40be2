package chart

import (
	"fmt"

	"github.com/pcmnking/liangfstar/internal/cycle"
)

// ReferenceBranch is the branch whose governing stem is supplied as input
// (寅). The stem walk starts here.
const ReferenceBranch cycle.Branch = 2

// Assign sets the Ming flag, the 12 role titles, and the governing stem of
// every sector. Role i lands on (ming - i) mod 12. Stems walk forward from
// ReferenceBranch starting at yinStem, so the stem sequence wraps every 10
// sectors while branches wrap every 12.
//
// Out-of-cycle arguments are rejected before anything is written.
func Assign(c *Chart, ming cycle.Branch, yinStem cycle.Stem) error {
	if !ming.Valid() {
		return fmt.Errorf("%w: ming %d", cycle.ErrInvalidBranch, int(ming))
	}
	if !yinStem.Valid() {
		return fmt.Errorf("%w: yin stem %d", cycle.ErrInvalidStem, int(yinStem))
	}

	c.Sector(ming).isMing = true
	for _, r := range Roles() {
		c.Sector(ming.Add(-int(r))).role = r
	}

	for i := 0; i < cycle.BranchCount; i++ {
		s := c.Sector(ReferenceBranch.Add(i))
		s.stem = yinStem.Add(i)
		s.hasStem = true
	}
	return nil
}
