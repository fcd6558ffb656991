package store

import (
	"errors"
	"log/slog"
)

// Resolver resolves stream names in narrows to streams the viewer may see.
type Resolver struct {
	store  *Store
	userID int64
	logger *slog.Logger
}

// NewResolver returns a Resolver that checks access on behalf of userID.
func NewResolver(s *Store, userID int64, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: s, userID: userID, logger: logger}
}

// ResolveStream returns the named stream if it exists, is not archived, and
// is visible to the viewer: public, web-public, or subscribed.
func (r *Resolver) ResolveStream(name string) (*Stream, bool) {
	st, err := r.store.StreamByName(name)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn("stream lookup failed", "name", name, "error", err)
		}
		return nil, false
	}
	return r.accessible(st)
}

// StreamByID returns a fresh copy of a stream, applying the same access
// rules as ResolveStream.
func (r *Resolver) StreamByID(id int64) (*Stream, bool) {
	st, err := r.store.GetStream(id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn("stream lookup failed", "stream_id", id, "error", err)
		}
		return nil, false
	}
	return r.accessible(st)
}

func (r *Resolver) accessible(st *Stream) (*Stream, bool) {
	if st.Deleted {
		return nil, false
	}
	if st.IsPublic() || st.WebPublic {
		return st, true
	}
	ok, err := r.store.IsSubscribed(st.ID, r.userID)
	if err != nil {
		r.logger.Warn("subscription lookup failed", "stream_id", st.ID, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return st, true
}
