package narrow

// State holds the active narrow. A nil filter means no narrow is active
// (the all-messages view).
type State struct {
	filter *Filter
}

// Filter returns the active filter, or nil.
func (s *State) Filter() *Filter {
	return s.filter
}

// Set replaces the active filter. Pass nil to clear the narrow.
func (s *State) Set(f *Filter) {
	s.filter = f
}

// SearchString returns the active narrow's textual form, or "".
func (s *State) SearchString() string {
	if s.filter == nil {
		return ""
	}
	return s.filter.SearchString()
}

// StreamID returns the ID of the narrowed stream, if one resolved.
func (s *State) StreamID() (int64, bool) {
	if s.filter == nil || s.filter.Stream() == nil {
		return 0, false
	}
	return s.filter.Stream().ID, true
}
