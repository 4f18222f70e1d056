// Package session tracks the reviewer's position in the corpus and owns the
// draft rating store for the conversation being edited.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"annoreview/internal/domain"
	"annoreview/internal/rating"
	"annoreview/internal/record"
	"annoreview/internal/review"
	"annoreview/internal/store"
)

// Audit trail actions emitted by the session.
const (
	ActionRatingSet       = "rating_set"
	ActionRecordSubmitted = "record_submitted"
	ActionLogCleared      = "log_cleared"
	ActionLogExported     = "log_exported"
)

// Session is the single reviewer editing session. The corpus is read-only;
// the draft store belongs exclusively to the conversation at the current
// index and is discarded on every navigation and after every submission.
//
// The HTTP surface serves each request on its own goroutine, so all mutable
// state (index, draft, the log behind it) is guarded by mu. Overlapping
// rating writes from the UI must serialize, never corrupt the draft map.
type Session struct {
	mu        sync.Mutex
	corpus    []domain.Conversation
	index     int
	draft     *rating.DraftStore
	log       *store.AnnotationLog
	validator *review.RecordValidator
	audit     *store.AuditRepo
	db        *sql.DB
	logger    *zap.Logger
}

// New creates a session positioned at the first conversation.
func New(corpus []domain.Conversation, log *store.AnnotationLog, db *sql.DB, logger *zap.Logger) *Session {
	return &Session{
		corpus:    corpus,
		draft:     rating.NewDraftStore(),
		log:       log,
		validator: &review.RecordValidator{},
		audit:     &store.AuditRepo{},
		db:        db,
		logger:    logger,
	}
}

// Size returns the number of conversations in the corpus.
func (s *Session) Size() int {
	return len(s.corpus)
}

// Index returns the current conversation index.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// ConversationAt returns the conversation at index i. The corpus is
// immutable; the caller is responsible for the bounds check via Size.
func (s *Session) ConversationAt(i int) domain.Conversation {
	return s.corpus[i]
}

// Current returns the active conversation, or false if the corpus is empty.
func (s *Session) Current() (domain.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

// current assumes mu is held.
func (s *Session) current() (domain.Conversation, bool) {
	if len(s.corpus) == 0 {
		return domain.Conversation{}, false
	}
	return s.corpus[s.index], true
}

// Next advances to the following conversation, clamped at the end.
// Moving discards the draft.
func (s *Session) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < len(s.corpus)-1 {
		s.index++
		s.draft.Clear()
	}
	return s.index
}

// Prev retreats to the preceding conversation, clamped at the start.
// Moving discards the draft.
func (s *Session) Prev() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index > 0 {
		s.index--
		s.draft.Clear()
	}
	return s.index
}

// Goto jumps to the conversation at index i. Moving discards the draft.
func (s *Session) Goto(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.corpus) {
		return domain.ErrIndexOutOfRange
	}
	if i != s.index {
		s.index = i
		s.draft.Clear()
	}
	return nil
}

// SetRating records one draft rating for the active conversation.
func (s *Session) SetRating(ctx context.Context, key domain.RatingKey, value domain.Likert) error {
	if !value.Valid() {
		return domain.ErrRatingInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.current(); !ok {
		return domain.ErrCorpusEmpty
	}

	s.draft.Set(key, value)
	s.recordAudit(ctx, ActionRatingSet, map[string]any{
		"kind":   key.Kind,
		"rating": value,
	})
	return nil
}

// Rating returns the draft rating for key, or false if unset.
func (s *Session) Rating(key domain.RatingKey) (domain.Likert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Get(key)
}

// DraftSize returns the number of draft ratings currently set.
func (s *Session) DraftSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Len()
}

// SubmitAndAdvance snapshots the draft into a finalized record, appends it
// to the durable log, and moves to the next conversation. The draft is
// cleared only after a successful append; an interrupted submission never
// loses the in-progress ratings.
func (s *Session) SubmitAndAdvance(ctx context.Context) (domain.AnnotationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.current()
	if !ok {
		return domain.AnnotationRecord{}, domain.ErrCorpusEmpty
	}

	rec := record.Build(conv, s.draft)
	if err := s.validator.Validate(rec); err != nil {
		return domain.AnnotationRecord{}, err
	}
	if err := s.log.Append(ctx, rec); err != nil {
		return domain.AnnotationRecord{}, err
	}

	s.recordAudit(ctx, ActionRecordSubmitted, map[string]any{
		"conversation_id": rec.ConversationID,
		"log_size":        s.log.Len(),
	})

	s.draft.Clear()
	if s.index < len(s.corpus)-1 {
		s.index++
	}
	return rec, nil
}

// ClearLog empties the durable annotation log. Reviewer-initiated only.
func (s *Session) ClearLog(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.log.Clear(ctx); err != nil {
		return err
	}
	s.recordAudit(ctx, ActionLogCleared, nil)
	return nil
}

// NoteExport records an export action in the audit trail.
func (s *Session) NoteExport(ctx context.Context, records int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordAudit(ctx, ActionLogExported, map[string]any{"records": records})
}

// recordAudit writes one audit entry. Assumes mu is held. Best effort: a
// failed audit write is logged and never blocks the reviewer action it
// describes.
func (s *Session) recordAudit(ctx context.Context, action string, detail map[string]any) {
	detailJSON := "{}"
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			detailJSON = string(b)
		}
	}

	conversationID := ""
	if conv, ok := s.current(); ok {
		conversationID = conv.ConversationID
	}

	entry := domain.AuditEntry{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Action:         action,
		DetailJSON:     detailJSON,
		CreatedAt:      time.Now().Unix(),
	}
	if err := s.audit.Record(ctx, s.db, entry); err != nil {
		s.logger.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}
