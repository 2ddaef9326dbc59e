package primitives

// Stage is one step of an almanac: a set of rules with pairwise-disjoint
// source intervals. Integers no rule covers map to themselves.
type Stage struct {
	Name  string
	Rules []MappingRule
}

// Apply pushes every range in set through the stage and returns the image.
//
// Ranges are worked off a pending list one pass at a time. Within a pass each
// pending range is split against the first rule it overlaps: the covered piece
// is final, and the remainders go back onto the list for the next pass since a
// different rule may still cover them. A running count of the pending length
// is kept; a pass that leaves it unchanged split nothing, so whatever is still
// pending is covered by no rule and passes through unchanged.
//
// The work done depends on the number of ranges and rules, never on the
// length of the ranges. set itself is not modified.
func (s Stage) Apply(set RangeSet) RangeSet {
	pending := set.Clone()
	pendingLength := pending.TotalLength()
	done := make(RangeSet, 0, len(pending))

	for {
		passStart := pendingLength
		next := make(RangeSet, 0, len(pending))

		for _, r := range pending {
			split := false
			for _, rule := range s.Rules {
				covered, ok, remainders := Split(r, rule)
				if !ok {
					continue
				}
				done = append(done, covered)
				next = append(next, remainders...)
				pendingLength -= covered.Length
				split = true
				break
			}
			if !split {
				next = append(next, r)
			}
		}

		pending = next
		if pendingLength == passStart {
			break
		}
	}

	return append(done, pending...)
}
