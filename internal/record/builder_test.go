package record

import (
	"encoding/json"
	"testing"

	"annoreview/internal/domain"
	"annoreview/internal/rating"
)

func buildConversation() domain.Conversation {
	return domain.Conversation{
		ConversationID: "c1",
		Stratum:        "Low",
		Turns: []domain.Turn{
			{TurnID: 1, Role: "Human", Text: "hello",
				RawBDI: json.RawMessage(`[{"type":"belief","text":"I am safe"},{"type":"desire","text":"stay calm"}]`),
				AttackMappings: []domain.AttackMapping{
					{TargetBDIID: "A2_belief", TargetBDIType: "belief", AttackStrategy: "undermine", Explanation: "targets trust"},
				}},
			{TurnID: 2, Role: "Assistant", Text: "hi",
				RawBDI: json.RawMessage(`{"belief":"the user is calm"}`)},
		},
	}
}

func TestBuild_NoDraftRatings(t *testing.T) {
	rec := Build(buildConversation(), rating.NewDraftStore())

	if rec.StratumRating != nil {
		t.Errorf("StratumRating = %v, want nil", *rec.StratumRating)
	}
	if len(rec.TurnAnnotations) != 2 {
		t.Fatalf("expected 2 turn annotations, got %d", len(rec.TurnAnnotations))
	}

	for _, ta := range rec.TurnAnnotations {
		for text, br := range ta.BDIRatings {
			if br.Rating != domain.Neutral {
				t.Errorf("turn %d item %q rating = %q, want Neutral", ta.TurnID, text, br.Rating)
			}
		}
		for i, ar := range ta.AttackMappingRatings {
			if ar.TargetTypeRating != domain.Neutral || ar.StrategyRating != domain.Neutral {
				t.Errorf("turn %d mapping[%d] ratings = %q/%q, want Neutral", ta.TurnID, i, ar.TargetTypeRating, ar.StrategyRating)
			}
		}
	}
}

func TestBuild_DraftRatingsApplied(t *testing.T) {
	conv := buildConversation()
	draft := rating.NewDraftStore()
	draft.Set(domain.StratumKey(), domain.Agree)
	draft.Set(domain.BDIKey(1, "I am safe"), domain.StronglyAgree)
	draft.Set(domain.AttackKey(1, 0, domain.FieldStrategy), domain.Disagree)

	rec := Build(conv, draft)

	if rec.StratumRating == nil || *rec.StratumRating != domain.Agree {
		t.Errorf("StratumRating = %v, want Agree", rec.StratumRating)
	}

	ta := rec.TurnAnnotations[0]
	if ta.BDIRatings["I am safe"].Rating != domain.StronglyAgree {
		t.Errorf("rated item = %q, want Strongly Agree", ta.BDIRatings["I am safe"].Rating)
	}
	// The sibling item was never rated and defaults to Neutral.
	if ta.BDIRatings["stay calm"].Rating != domain.Neutral {
		t.Errorf("unrated item = %q, want Neutral", ta.BDIRatings["stay calm"].Rating)
	}

	ar := ta.AttackMappingRatings[0]
	if ar.StrategyRating != domain.Disagree {
		t.Errorf("StrategyRating = %q, want Disagree", ar.StrategyRating)
	}
	if ar.TargetTypeRating != domain.Neutral {
		t.Errorf("TargetTypeRating = %q, want Neutral", ar.TargetTypeRating)
	}
	if ar.TargetBDIID != "A2_belief" || ar.AttackStrategy != "undermine" || ar.Explanation != "targets trust" {
		t.Errorf("claim fields not copied verbatim: %+v", ar)
	}
}

func TestBuild_BDITypeCarried(t *testing.T) {
	rec := Build(buildConversation(), rating.NewDraftStore())

	if got := rec.TurnAnnotations[0].BDIRatings["stay calm"].Type; got != domain.BDIDesire {
		t.Errorf("Type = %q, want desire", got)
	}
	if got := rec.TurnAnnotations[1].BDIRatings["the user is calm"].Type; got != domain.BDIBelief {
		t.Errorf("object-form Type = %q, want belief", got)
	}
}

func TestBuild_AttackMappingsOnlyForHumanTurns(t *testing.T) {
	conv := buildConversation()
	// Mappings on an assistant turn never produce attack ratings.
	conv.Turns[1].AttackMappings = []domain.AttackMapping{
		{TargetBDIType: "belief", AttackStrategy: "s", Explanation: "e"},
	}

	rec := Build(conv, rating.NewDraftStore())
	if len(rec.TurnAnnotations[1].AttackMappingRatings) != 0 {
		t.Errorf("assistant turn has %d attack ratings, want 0", len(rec.TurnAnnotations[1].AttackMappingRatings))
	}
}

func TestBuild_MissingTargetBDIIDNotFabricated(t *testing.T) {
	conv := domain.Conversation{
		ConversationID: "c1",
		Stratum:        "Low",
		Turns: []domain.Turn{
			{TurnID: 1, Role: "human", AttackMappings: []domain.AttackMapping{
				{TargetBDIType: "desire", AttackStrategy: "bait", Explanation: "old variant"},
			}},
		},
	}

	rec := Build(conv, rating.NewDraftStore())
	ar := rec.TurnAnnotations[0].AttackMappingRatings[0]
	if ar.TargetBDIID != "" {
		t.Errorf("TargetBDIID = %q, want empty", ar.TargetBDIID)
	}

	// The zero id stays absent from the serialized form.
	data, err := json.Marshal(ar)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var asMap map[string]any
	if err := json.Unmarshal(data, &asMap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, present := asMap["target_bdi_id"]; present {
		t.Error("target_bdi_id fabricated in serialized output")
	}
}

func TestBuild_PureTransformation(t *testing.T) {
	conv := buildConversation()
	draft := rating.NewDraftStore()
	draft.Set(domain.StratumKey(), domain.Agree)

	Build(conv, draft)

	if draft.Len() != 1 {
		t.Errorf("draft mutated: Len = %d, want 1", draft.Len())
	}
	if v, _ := draft.Get(domain.StratumKey()); v != domain.Agree {
		t.Errorf("draft value changed: %q", v)
	}
}

// End-to-end shape from the submit flow: one human turn, one belief item,
// stratum Agree, belief Strongly Agree.
func TestBuild_SubmittedRecordShape(t *testing.T) {
	conv := domain.Conversation{
		ConversationID: "conv-7",
		Stratum:        "Low",
		Turns: []domain.Turn{
			{TurnID: 1, Role: "Human", Text: "hello",
				RawBDI: json.RawMessage(`[{"type":"belief","text":"I am safe"}]`)},
		},
	}
	draft := rating.NewDraftStore()
	draft.Set(domain.StratumKey(), domain.Agree)
	draft.Set(domain.BDIKey(1, "I am safe"), domain.StronglyAgree)

	rec := Build(conv, draft)

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"conversation_id":"conv-7","stratum":"Low","stratum_rating":"Agree",` +
		`"turn_annotations":[{"turn_id":1,"role":"Human",` +
		`"bdi_ratings":{"I am safe":{"rating":"Strongly Agree","type":"belief"}},` +
		`"attack_mapping_ratings":[]}]}`
	if string(data) != want {
		t.Errorf("serialized record mismatch:\n got %s\nwant %s", data, want)
	}
}
