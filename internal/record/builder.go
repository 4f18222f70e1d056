// Package record builds immutable annotation records from a conversation
// and the reviewer's draft ratings.
package record

import (
	"strings"

	"annoreview/internal/corpus"
	"annoreview/internal/domain"
	"annoreview/internal/rating"
)

// Build merges one conversation with the current draft into a finalized
// record. Pure: no resolution lookups, no side effects.
//
// Defaulting is deliberately asymmetric: the stratum rating stays nil when
// unset ("not yet reviewed"), while BDI and attack-mapping ratings always
// resolve to Neutral on submission.
func Build(conv domain.Conversation, draft *rating.DraftStore) domain.AnnotationRecord {
	rec := domain.AnnotationRecord{
		ConversationID:  conv.ConversationID,
		Stratum:         conv.Stratum,
		TurnAnnotations: make([]domain.TurnAnnotation, 0, len(conv.Turns)),
	}

	if v, ok := draft.Get(domain.StratumKey()); ok {
		rec.StratumRating = &v
	}

	for _, turn := range conv.Turns {
		ta := domain.TurnAnnotation{
			TurnID:               turn.TurnID,
			Role:                 turn.Role,
			BDIRatings:           map[string]domain.BDIRating{},
			AttackMappingRatings: []domain.AttackMappingRating{},
		}

		for _, item := range corpus.NormalizeBDI(turn) {
			ta.BDIRatings[item.Text] = domain.BDIRating{
				Rating: ratingOrNeutral(draft, domain.BDIKey(turn.TurnID, item.Text)),
				Type:   item.Type,
			}
		}

		if strings.EqualFold(turn.Role, string(domain.RoleHuman)) {
			for i, m := range turn.AttackMappings {
				ta.AttackMappingRatings = append(ta.AttackMappingRatings, domain.AttackMappingRating{
					TargetBDIID:      m.TargetBDIID,
					TargetBDIType:    m.TargetBDIType,
					AttackStrategy:   m.AttackStrategy,
					TargetTypeRating: ratingOrNeutral(draft, domain.AttackKey(turn.TurnID, i, domain.FieldTargetType)),
					StrategyRating:   ratingOrNeutral(draft, domain.AttackKey(turn.TurnID, i, domain.FieldStrategy)),
					Explanation:      m.Explanation,
				})
			}
		}

		rec.TurnAnnotations = append(rec.TurnAnnotations, ta)
	}

	return rec
}

func ratingOrNeutral(draft *rating.DraftStore, key domain.RatingKey) domain.Likert {
	if v, ok := draft.Get(key); ok {
		return v
	}
	return domain.Neutral
}
