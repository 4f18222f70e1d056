package review

import (
	"fmt"
	"sort"

	"annoreview/internal/domain"
)

// DisagreementChecker inspects submitted records for ratings where the
// reviewer pushed back on the corpus annotations.
type DisagreementChecker struct{}

// Check examines all records for Disagree or Strongly Disagree ratings.
// It returns whether any disagreement was found and the list of reasons.
func (c *DisagreementChecker) Check(records []domain.AnnotationRecord) (flagged bool, reasons []string) {
	for _, rec := range records {
		if rec.StratumRating != nil && rec.StratumRating.Score() <= 2 {
			reasons = append(reasons, fmt.Sprintf(
				"%s: stratum %q rated %s",
				rec.ConversationID, rec.Stratum, *rec.StratumRating))
		}
		for _, ta := range rec.TurnAnnotations {
			// Stable reason order across runs.
			texts := make([]string, 0, len(ta.BDIRatings))
			for text := range ta.BDIRatings {
				texts = append(texts, text)
			}
			sort.Strings(texts)
			for _, text := range texts {
				br := ta.BDIRatings[text]
				if br.Rating.Score() <= 2 {
					reasons = append(reasons, fmt.Sprintf(
						"%s: turn %d %s item %q rated %s",
						rec.ConversationID, ta.TurnID, br.Type, text, br.Rating))
				}
			}
			for i, ar := range ta.AttackMappingRatings {
				if ar.TargetTypeRating.Score() <= 2 {
					reasons = append(reasons, fmt.Sprintf(
						"%s: turn %d mapping[%d] target type rated %s",
						rec.ConversationID, ta.TurnID, i, ar.TargetTypeRating))
				}
				if ar.StrategyRating.Score() <= 2 {
					reasons = append(reasons, fmt.Sprintf(
						"%s: turn %d mapping[%d] strategy %q rated %s",
						rec.ConversationID, ta.TurnID, i, ar.AttackStrategy, ar.StrategyRating))
				}
			}
		}
	}
	return len(reasons) > 0, reasons
}
