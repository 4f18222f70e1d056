package review

import "annoreview/internal/domain"

// ConversationScore is the per-record aggregate.
type ConversationScore struct {
	ConversationID string  `json:"conversation_id"`
	Ratings        int     `json:"ratings"`
	MeanScore      float64 `json:"mean_score"`
}

// Summary aggregates every concrete rating in the log into a Likert
// distribution and mean ordinal scores. Unset stratum ratings contribute
// nothing; they are absent, not Neutral.
type Summary struct {
	Records       int                   `json:"records"`
	Ratings       int                   `json:"ratings"`
	Distribution  map[domain.Likert]int `json:"distribution"`
	MeanScore     float64               `json:"mean_score"`
	Conversations []ConversationScore   `json:"conversations"`
}

// Summarize walks the records in log order and tallies all stratum, BDI,
// and attack-mapping ratings (two per mapping).
func Summarize(records []domain.AnnotationRecord) Summary {
	s := Summary{
		Records:       len(records),
		Distribution:  make(map[domain.Likert]int),
		Conversations: make([]ConversationScore, 0, len(records)),
	}

	var totalScore int
	for _, rec := range records {
		var recCount, recScore int
		tally := func(l domain.Likert) {
			s.Distribution[l]++
			recCount++
			recScore += l.Score()
		}

		if rec.StratumRating != nil {
			tally(*rec.StratumRating)
		}
		for _, ta := range rec.TurnAnnotations {
			for _, br := range ta.BDIRatings {
				tally(br.Rating)
			}
			for _, ar := range ta.AttackMappingRatings {
				tally(ar.TargetTypeRating)
				tally(ar.StrategyRating)
			}
		}

		cs := ConversationScore{ConversationID: rec.ConversationID, Ratings: recCount}
		if recCount > 0 {
			cs.MeanScore = float64(recScore) / float64(recCount)
		}
		s.Conversations = append(s.Conversations, cs)

		s.Ratings += recCount
		totalScore += recScore
	}

	if s.Ratings > 0 {
		s.MeanScore = float64(totalScore) / float64(s.Ratings)
	}
	return s
}
