package sugar

const maxChainSteps = 64

// StereoPair is a ring or chain carbon with its exocyclic substituent. Either
// may be nil when no qualifying atom exists.
type StereoPair struct {
	Carbon      *Site `json:"carbon,omitempty"`
	Substituent *Site `json:"substituent,omitempty"`
}

// Complete reports whether both atoms of the pair were found.
func (p StereoPair) Complete() bool {
	return p.Carbon != nil && p.Substituent != nil
}

// Stereo holds the stereo pairs used to assign anomer and handedness.
type Stereo struct {
	// Anomeric is ring position 1 and its exocyclic substituent.
	Anomeric StereoPair `json:"anomeric"`
	// Configurational is the highest-ranked stereocenter reached from the
	// ring, possibly along the exocyclic chain.
	Configurational StereoPair `json:"configurational"`
	// Terminal is the last ring carbon and the substituent that decides D/L.
	Terminal StereoPair `json:"terminal"`
	// Reversed is set when the configurational carbon is the last ring atom
	// or lies outside the ring, which inverts the anomer assignment.
	Reversed bool `json:"reversed"`
}

// pickPolicy selects one substituent from candidate neighbors of center.
type pickPolicy func(center Site, cands []Site) *Site

// heteroFirst returns the first non-carbon candidate; a carbon is returned
// only when no non-carbon is present, and then the first carbon.
func heteroFirst(_ Site, cands []Site) *Site {
	var pick *Site
	for i := range cands {
		c := &cands[i]
		if !c.IsCarbon() {
			if pick == nil || pick.IsCarbon() {
				pick = c
			}
			continue
		}
		if pick == nil {
			pick = c
		}
	}
	return pick
}

// nearest returns the candidate closest to center.
func nearest(center Site, cands []Site) *Site {
	var pick *Site
	best := 0.0
	for i := range cands {
		d := cands[i].Pos.Dist(center.Pos)
		if pick == nil || d < best {
			pick, best = &cands[i], d
		}
	}
	return pick
}

// nearestHetero returns the non-carbon candidate closest to center, or the
// closest carbon when no non-carbon is present.
func nearestHetero(center Site, cands []Site) *Site {
	var hetero []Site
	for _, c := range cands {
		if !c.IsCarbon() {
			hetero = append(hetero, c)
		}
	}
	if len(hetero) > 0 {
		return nearest(center, hetero)
	}
	return nearest(center, cands)
}

// offRing returns the non-ring neighbors of c.
func (a *Analysis) offRing(c Site) []Site {
	var out []Site
	for _, n := range a.neighbors(c) {
		if !a.ring.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

func (a *Analysis) substituent(c Site, pick pickPolicy) *Site {
	s := pick(c, a.offRing(c))
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

// IsStereocenter reports whether s is a carbon with more than two distinct
// non-hydrogen neighbors in the analysed conformation. Neighbors of the same
// non-carbon element count once. The ring oxygen at position 0 always counts
// and does not absorb an exocyclic oxygen, so a ring carbon next to it with
// one carbon and one exocyclic oxygen is a stereocenter whatever the atom
// order.
func (a *Analysis) IsStereocenter(s Site) bool {
	if !s.IsCarbon() {
		return false
	}
	var ringO *Site
	if len(a.ring) > 0 {
		ringO = &a.ring[0]
	}
	seen := make(map[string]bool)
	count := 0
	for _, n := range a.neighbors(s) {
		switch {
		case n.IsCarbon():
			count++
		case ringO != nil && n.Same(*ringO):
			count++
		case !seen[n.Element]:
			seen[n.Element] = true
			count++
		}
	}
	return count > 2
}

// Locate finds the anomeric, configurational and terminal stereo pairs of
// the analysis ring. The ring must be set first.
func (a *Analysis) Locate() Stereo {
	var st Stereo
	r := a.ring
	if !r.Supported() {
		return st
	}

	if c := r[1]; c.IsCarbon() {
		st.Anomeric = StereoPair{Carbon: &c, Substituent: a.substituent(c, heteroFirst)}
	}

	st.Configurational = a.configurational()
	if c := st.Configurational.Carbon; c != nil {
		idx := r.Index(*c)
		st.Reversed = idx < 0 || idx == len(r)-1
	}

	if last := r.Last(); last.IsCarbon() {
		st.Terminal = StereoPair{Carbon: &last, Substituent: a.terminalSubstituent(last)}
	}
	return st
}

// configurational scans ring positions 2..n-1 for the last stereocenter,
// then walks outward along the exocyclic chain while the chain continues
// through stereocenters.
func (a *Analysis) configurational() StereoPair {
	r := a.ring
	var carbon *Site
	for i := 2; i < len(r); i++ {
		if a.IsStereocenter(r[i]) {
			c := r[i]
			carbon = &c
		}
	}
	if carbon == nil {
		return StereoPair{}
	}
	last := r.Last()
	sub := a.substituent(*carbon, nearest)
	cand := sub

	// Each step moves farther from the last ring atom.
	for steps := 0; cand != nil && steps < maxChainSteps; steps++ {
		if cand.Same(*carbon) || !a.IsStereocenter(*cand) {
			break
		}
		reach := cand.Pos.Dist(last.Pos)
		carbon = cand
		var next, hetero *Site
		for _, n := range a.offRing(*carbon) {
			if n.IsCarbon() {
				if n.Pos.Dist(last.Pos) > reach {
					next = &n
				}
				continue
			}
			if hetero == nil {
				hetero = &n
			}
		}
		sub = hetero
		cand = next
	}
	return StereoPair{Carbon: carbon, Substituent: sub}
}

// terminalSubstituent picks the exocyclic neighbor of the last ring carbon
// that shares its occupancy, nearest first and non-carbon preferred.
func (a *Analysis) terminalSubstituent(c Site) *Site {
	var cands []Site
	for _, n := range a.offRing(c) {
		if n.Occupancy == c.Occupancy {
			cands = append(cands, n)
		}
	}
	s := nearestHetero(c, cands)
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
