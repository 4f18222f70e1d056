// Package ipc provides the HTTP API consumed by the reviewer UI.
package ipc

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"annoreview/internal/corpus"
	"annoreview/internal/domain"
	"annoreview/internal/export"
	"annoreview/internal/review"
	"annoreview/internal/session"
	"annoreview/internal/store"
)

// Handler holds all dependencies for the HTTP handlers.
type Handler struct {
	Session   *session.Session
	Log       *store.AnnotationLog
	AuditRepo *store.AuditRepo
	DB        *sql.DB
	Logger    *zap.Logger
}

// AttackMappingView is an attack mapping with its target reference resolved
// for display. ResolvedText is omitted when the reference is unresolvable;
// the UI then falls back to showing the raw target_bdi_id.
type AttackMappingView struct {
	domain.AttackMapping
	ResolvedText string `json:"resolved_text,omitempty"`
}

// TurnView is a turn with its BDI items already normalized to canonical
// form. Past this boundary the UI never sees the raw variant field.
type TurnView struct {
	TurnID         int                 `json:"turn_id"`
	Role           string              `json:"role"`
	Text           string              `json:"text"`
	BDIItems       []domain.BDIItem    `json:"bdi_items"`
	AttackMappings []AttackMappingView `json:"attack_mappings"`
}

// ConversationView is the display form of one conversation.
type ConversationView struct {
	ConversationID string     `json:"conversation_id"`
	Stratum        string     `json:"stratum"`
	Turns          []TurnView `json:"turns"`
}

// SessionView is the response for GET /api/v1/session. Scale carries the
// ordered Likert values so the UI never hardcodes them.
type SessionView struct {
	Index        int               `json:"index"`
	Total        int               `json:"total"`
	DraftRatings int               `json:"draft_ratings"`
	Scale        []domain.Likert   `json:"scale"`
	Conversation *ConversationView `json:"conversation"`
}

// CorpusSummary is one row of the GET /api/v1/corpus listing.
type CorpusSummary struct {
	Index          int    `json:"index"`
	ConversationID string `json:"conversation_id"`
	Stratum        string `json:"stratum"`
	Turns          int    `json:"turns"`
}

// GotoRequest is the body for POST /api/v1/session/goto.
type GotoRequest struct {
	Index int `json:"index"`
}

// RatingRequest is the body for PUT /api/v1/session/rating.
type RatingRequest struct {
	Kind         string `json:"kind"`
	TurnID       int    `json:"turn_id"`
	ItemText     string `json:"item_text"`
	MappingIndex int    `json:"mapping_index"`
	Field        string `json:"field"`
	Rating       string `json:"rating"`
}

// APIError is a structured error response.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListCorpus handles GET /api/v1/corpus.
func (h *Handler) ListCorpus(w http.ResponseWriter, r *http.Request) {
	total := h.Session.Size()
	summaries := make([]CorpusSummary, 0, total)
	for i := 0; i < total; i++ {
		conv := h.Session.ConversationAt(i)
		summaries = append(summaries, CorpusSummary{
			Index:          i,
			ConversationID: conv.ConversationID,
			Stratum:        conv.Stratum,
			Turns:          len(conv.Turns),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// GetSession handles GET /api/v1/session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessionView())
}

// NextConversation handles POST /api/v1/session/next.
func (h *Handler) NextConversation(w http.ResponseWriter, r *http.Request) {
	h.Session.Next()
	writeJSON(w, http.StatusOK, h.sessionView())
}

// PrevConversation handles POST /api/v1/session/prev.
func (h *Handler) PrevConversation(w http.ResponseWriter, r *http.Request) {
	h.Session.Prev()
	writeJSON(w, http.StatusOK, h.sessionView())
}

// GotoConversation handles POST /api/v1/session/goto.
func (h *Handler) GotoConversation(w http.ResponseWriter, r *http.Request) {
	var req GotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}
	if err := h.Session.Goto(req.Index); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView())
}

// SetRating handles PUT /api/v1/session/rating.
func (h *Handler) SetRating(w http.ResponseWriter, r *http.Request) {
	var req RatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}

	key, err := ratingKeyFromRequest(req)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Session.SetRating(r.Context(), key, domain.Likert(req.Rating)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Submit handles POST /api/v1/session/submit: snapshot the draft into a
// record, append it to the log, advance.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Session.SubmitAndAdvance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// ListRecords handles GET /api/v1/records.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Log.Records())
}

// RecordsSummary handles GET /api/v1/records/summary.
func (h *Handler) RecordsSummary(w http.ResponseWriter, r *http.Request) {
	records := h.Log.Records()
	summary := review.Summarize(records)

	checker := &review.DisagreementChecker{}
	flagged, reasons := checker.Check(records)

	writeJSON(w, http.StatusOK, map[string]any{
		"summary":             summary,
		"disagreements":       reasons,
		"disagreements_found": flagged,
	})
}

// Export handles GET /api/v1/export. An empty log answers 204 No Content,
// the "nothing to export" signal, not an error.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	records := h.Log.Records()
	data, err := export.Serialize(records)
	if err != nil {
		if engErr, ok := err.(*domain.EngineError); ok && engErr.Code == domain.ErrLogEmpty.Code {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, err)
		return
	}

	h.Session.NoteExport(r.Context(), len(records))
	h.Logger.Info("annotation log exported", zap.Int("records", len(records)))

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", `attachment; filename="annotations.jsonl"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ClearRecords handles POST /api/v1/records/clear.
func (h *Handler) ClearRecords(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.ClearLog(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.Logger.Info("annotation log cleared")
	w.WriteHeader(http.StatusNoContent)
}

// ListAudit handles GET /api/v1/audit.
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.AuditRepo.List(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) sessionView() SessionView {
	view := SessionView{
		Index:        h.Session.Index(),
		Total:        h.Session.Size(),
		DraftRatings: h.Session.DraftSize(),
		Scale:        domain.LikertScale(),
	}

	conv, ok := h.Session.Current()
	if !ok {
		return view
	}

	cv := ConversationView{
		ConversationID: conv.ConversationID,
		Stratum:        conv.Stratum,
		Turns:          make([]TurnView, 0, len(conv.Turns)),
	}
	for _, turn := range conv.Turns {
		tv := TurnView{
			TurnID:         turn.TurnID,
			Role:           turn.Role,
			Text:           turn.Text,
			BDIItems:       corpus.NormalizeBDI(turn),
			AttackMappings: make([]AttackMappingView, 0, len(turn.AttackMappings)),
		}
		if tv.BDIItems == nil {
			tv.BDIItems = []domain.BDIItem{}
		}
		for _, m := range turn.AttackMappings {
			mv := AttackMappingView{AttackMapping: m}
			if m.TargetBDIID != "" {
				if res := corpus.ResolveTarget(conv, m.TargetBDIID); res != nil {
					mv.ResolvedText = res.Text
				}
			}
			tv.AttackMappings = append(tv.AttackMappings, mv)
		}
		cv.Turns = append(cv.Turns, tv)
	}
	view.Conversation = &cv
	return view
}

func ratingKeyFromRequest(req RatingRequest) (domain.RatingKey, error) {
	switch domain.KeyKind(req.Kind) {
	case domain.KeyStratum:
		return domain.StratumKey(), nil
	case domain.KeyBDI:
		if req.ItemText == "" {
			return domain.RatingKey{}, domain.NewEngineError(domain.ErrRatingKeyInvalid.Code, "bdi key requires item_text")
		}
		return domain.BDIKey(req.TurnID, req.ItemText), nil
	case domain.KeyAttack:
		field := domain.AttackField(req.Field)
		if field != domain.FieldTargetType && field != domain.FieldStrategy {
			return domain.RatingKey{}, domain.NewEngineError(domain.ErrRatingKeyInvalid.Code, "attack key field must be target_type or strategy")
		}
		return domain.AttackKey(req.TurnID, req.MappingIndex, field), nil
	}
	return domain.RatingKey{}, domain.NewEngineError(domain.ErrRatingKeyInvalid.Code, "kind must be stratum, bdi, or attack")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	if engErr, ok := err.(*domain.EngineError); ok {
		status := http.StatusInternalServerError
		switch engErr.Code {
		case domain.ErrIndexOutOfRange.Code:
			status = http.StatusNotFound
		case domain.ErrCorpusEmpty.Code:
			status = http.StatusConflict
		case domain.ErrRatingInvalid.Code, domain.ErrRatingKeyInvalid.Code, domain.ErrRecordInvalid.Code:
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, APIError{Code: engErr.Code, Message: engErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, APIError{Code: -1, Message: err.Error()})
}
