// Package review validates finalized annotation records and aggregates
// rating statistics over the annotation log.
package review

import (
	"fmt"
	"strings"

	"annoreview/internal/domain"
)

// RecordValidator checks an annotation record before it enters the log.
type RecordValidator struct{}

// Validate checks all rating fields of the given record and returns an
// error listing all violations if any are found. The stratum rating may be
// nil ("not yet reviewed"); when set, it must be a known Likert value. Turn
// roles must be Human or Assistant, compared case-insensitively since the
// source data varies the casing. BDI types are not checked; unrecognized
// types pass through the corpus untouched and the same holds here.
func (v *RecordValidator) Validate(rec domain.AnnotationRecord) error {
	var violations []string

	if rec.ConversationID == "" {
		violations = append(violations, "ConversationID must be non-empty")
	}
	if rec.StratumRating != nil && !rec.StratumRating.Valid() {
		violations = append(violations, fmt.Sprintf("stratum rating %q is not a Likert value", *rec.StratumRating))
	}

	for _, ta := range rec.TurnAnnotations {
		if !strings.EqualFold(ta.Role, string(domain.RoleHuman)) &&
			!strings.EqualFold(ta.Role, string(domain.RoleAssistant)) {
			violations = append(violations, fmt.Sprintf(
				"turn %d: role %q is not Human or Assistant", ta.TurnID, ta.Role))
		}
		for text, br := range ta.BDIRatings {
			if !br.Rating.Valid() {
				violations = append(violations, fmt.Sprintf(
					"turn %d: BDI rating %q for item %q is not a Likert value",
					ta.TurnID, br.Rating, text))
			}
		}
		for i, ar := range ta.AttackMappingRatings {
			if !ar.TargetTypeRating.Valid() {
				violations = append(violations, fmt.Sprintf(
					"turn %d: mapping[%d] target type rating %q is not a Likert value",
					ta.TurnID, i, ar.TargetTypeRating))
			}
			if !ar.StrategyRating.Valid() {
				violations = append(violations, fmt.Sprintf(
					"turn %d: mapping[%d] strategy rating %q is not a Likert value",
					ta.TurnID, i, ar.StrategyRating))
			}
		}
	}

	if len(violations) > 0 {
		msg := strings.Join(violations, "; ")
		return domain.NewEngineError(domain.ErrRecordInvalid.Code, msg)
	}
	return nil
}
