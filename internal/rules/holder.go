package rules

import "sync/atomic"

// Holder publishes the live rule set. Readers always see a complete set;
// a reload swaps the pointer and never edits a set in place.
type Holder struct {
	p atomic.Pointer[RuleSet]
}

// NewHolder returns a Holder publishing rs.
func NewHolder(rs *RuleSet) *Holder {
	h := &Holder{}
	h.p.Store(rs)
	return h
}

// Current returns the published rule set.
func (h *Holder) Current() *RuleSet { return h.p.Load() }

// Swap publishes rs and returns the set it replaced.
func (h *Holder) Swap(rs *RuleSet) *RuleSet { return h.p.Swap(rs) }

// Reload loads path and publishes it. On error the current set stays live.
func (h *Holder) Reload(path string) (*RuleSet, error) {
	rs, err := LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	h.p.Store(rs)
	return rs, nil
}
