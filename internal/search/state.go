// Package search evaluates condition lists against individual seeds.
package search

import "seedscout.gg/internal/gen"

// State maps condition save ids to the effective position matched for them
// during the current seed evaluation. It is stack-local to one evaluation;
// later conditions with a relative reference consume it.
type State struct {
	pos   [100]gen.Pos
	valid [100]bool
}

func (s *State) Set(save int32, p gen.Pos) {
	if save >= 1 && save < 100 {
		s.pos[save] = p
		s.valid[save] = true
	}
}

// Get returns the position recorded for a save id. ok=false for an id that
// was never matched; validation guarantees well-formed condition lists never
// observe that.
func (s *State) Get(save int32) (gen.Pos, bool) {
	if save < 1 || save >= 100 || !s.valid[save] {
		return gen.Pos{}, false
	}
	return s.pos[save], true
}

func (s *State) Reset() {
	s.valid = [100]bool{}
}
