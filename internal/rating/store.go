// Package rating holds the draft rating selections for the conversation the
// reviewer is currently editing.
package rating

import "annoreview/internal/domain"

// DraftStore maps rating keys to Likert selections. It holds exactly one
// conversation's in-progress edits: created empty, mutated by UI
// interaction, and discarded whenever the active conversation changes or a
// submission completes. Nothing in it is durable until a submission
// snapshots it into a record.
type DraftStore struct {
	ratings map[domain.RatingKey]domain.Likert
}

// NewDraftStore creates an empty draft store.
func NewDraftStore() *DraftStore {
	return &DraftStore{ratings: make(map[domain.RatingKey]domain.Likert)}
}

// Set inserts or overwrites the rating for key.
func (s *DraftStore) Set(key domain.RatingKey, value domain.Likert) {
	s.ratings[key] = value
}

// Get returns the stored rating, or false if the key was never set.
func (s *DraftStore) Get(key domain.RatingKey) (domain.Likert, bool) {
	v, ok := s.ratings[key]
	return v, ok
}

// Clear empties the store.
func (s *DraftStore) Clear() {
	s.ratings = make(map[domain.RatingKey]domain.Likert)
}

// Len returns the number of ratings currently set.
func (s *DraftStore) Len() int {
	return len(s.ratings)
}
