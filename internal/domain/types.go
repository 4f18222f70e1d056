// Package domain defines the core types for the annotation review engine.
package domain

import "encoding/json"

// Role identifies the speaker of a conversation turn. Source data varies the
// casing, so comparisons use EqualFold rather than ==.
type Role string

const (
	RoleHuman     Role = "Human"
	RoleAssistant Role = "Assistant"
)

// BDIType classifies a cognitive-state item.
type BDIType string

const (
	BDIBelief    BDIType = "belief"
	BDIDesire    BDIType = "desire"
	BDIIntention BDIType = "intention"
)

// BDIItem is the canonical form of one cognitive-state item. Within a turn
// the text doubles as the item's identity.
type BDIItem struct {
	Type BDIType `json:"type"`
	Text string  `json:"text"`
}

// AttackMapping is a claim that a turn targets a specific BDI item of an
// earlier turn with a named strategy. Older corpus variants omit
// target_bdi_id; it is carried through only when present.
type AttackMapping struct {
	TargetBDIID    string `json:"target_bdi_id,omitempty"`
	TargetBDIType  string `json:"target_bdi_type"`
	AttackStrategy string `json:"attack_strategy"`
	Explanation    string `json:"explanation"`
}

// Turn is one utterance in a conversation. RawBDI keeps the source
// representation of the cognitive-state field untouched; the corpus package
// normalizes it on demand.
type Turn struct {
	TurnID         int             `json:"turn_id"`
	Role           string          `json:"role"`
	Text           string          `json:"text"`
	RawBDI         json.RawMessage `json:"bdi,omitempty"`
	AttackMappings []AttackMapping `json:"attack_mappings,omitempty"`
}

// Conversation is one reviewable unit of the corpus. Immutable once loaded.
type Conversation struct {
	ConversationID string `json:"conversation_id"`
	Stratum        string `json:"stratum"`
	Turns          []Turn `json:"turns"`
}

// Likert is one of the 5 ordered rating values a reviewer can assign.
type Likert string

const (
	StronglyDisagree Likert = "Strongly Disagree"
	Disagree         Likert = "Disagree"
	Neutral          Likert = "Neutral"
	Agree            Likert = "Agree"
	StronglyAgree    Likert = "Strongly Agree"
)

// LikertScale lists the rating values in ascending order.
func LikertScale() []Likert {
	return []Likert{StronglyDisagree, Disagree, Neutral, Agree, StronglyAgree}
}

// Valid reports whether l is one of the 5 known rating values.
func (l Likert) Valid() bool {
	return l.Score() != 0
}

// Score maps the rating to its 1-5 ordinal position, or 0 if unknown.
func (l Likert) Score() int {
	switch l {
	case StronglyDisagree:
		return 1
	case Disagree:
		return 2
	case Neutral:
		return 3
	case Agree:
		return 4
	case StronglyAgree:
		return 5
	}
	return 0
}

// KeyKind distinguishes the three addressable rating targets.
type KeyKind string

const (
	KeyStratum KeyKind = "stratum"
	KeyBDI     KeyKind = "bdi"
	KeyAttack  KeyKind = "attack"
)

// AttackField names the two ratable fields of an attack mapping.
type AttackField string

const (
	FieldTargetType AttackField = "target_type"
	FieldStrategy   AttackField = "strategy"
)

// RatingKey addresses one ratable element within a conversation. It is a
// plain comparable struct, so distinct semantic targets always compare
// unequal regardless of what characters appear in the item text.
type RatingKey struct {
	Kind         KeyKind
	TurnID       int
	ItemText     string
	MappingIndex int
	Field        AttackField
}

// StratumKey addresses the conversation-level stratum rating.
func StratumKey() RatingKey {
	return RatingKey{Kind: KeyStratum}
}

// BDIKey addresses the rating of one BDI item, identified by its text.
func BDIKey(turnID int, itemText string) RatingKey {
	return RatingKey{Kind: KeyBDI, TurnID: turnID, ItemText: itemText}
}

// AttackKey addresses one field of the mapping at index within a turn.
func AttackKey(turnID, mappingIndex int, field AttackField) RatingKey {
	return RatingKey{Kind: KeyAttack, TurnID: turnID, MappingIndex: mappingIndex, Field: field}
}

// BDIRating is the finalized rating for one BDI item.
type BDIRating struct {
	Rating Likert  `json:"rating"`
	Type   BDIType `json:"type"`
}

// AttackMappingRating is the finalized rating pair for one attack mapping,
// with the claim fields copied through verbatim.
type AttackMappingRating struct {
	TargetBDIID      string `json:"target_bdi_id,omitempty"`
	TargetBDIType    string `json:"target_bdi_type"`
	AttackStrategy   string `json:"attack_strategy"`
	TargetTypeRating Likert `json:"target_type_rating"`
	StrategyRating   Likert `json:"strategy_rating"`
	Explanation      string `json:"explanation"`
}

// TurnAnnotation captures all finalized ratings for one turn.
type TurnAnnotation struct {
	TurnID               int                   `json:"turn_id"`
	Role                 string                `json:"role"`
	BDIRatings           map[string]BDIRating  `json:"bdi_ratings"`
	AttackMappingRatings []AttackMappingRating `json:"attack_mapping_ratings"`
}

// AnnotationRecord is one finalized, immutable submission for a
// conversation. StratumRating is nil when the reviewer never set it; all
// other ratings resolve to a concrete value at build time.
type AnnotationRecord struct {
	ConversationID  string           `json:"conversation_id"`
	Stratum         string           `json:"stratum"`
	StratumRating   *Likert          `json:"stratum_rating"`
	TurnAnnotations []TurnAnnotation `json:"turn_annotations"`
}

// AuditEntry logs one reviewer action in the audit trail.
type AuditEntry struct {
	ID             string
	ConversationID string
	Action         string
	DetailJSON     string
	CreatedAt      int64
}
