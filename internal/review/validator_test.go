package review

import (
	"strings"
	"testing"

	"annoreview/internal/domain"
)

func validRecord() domain.AnnotationRecord {
	agree := domain.Agree
	return domain.AnnotationRecord{
		ConversationID: "c1",
		Stratum:        "Low",
		StratumRating:  &agree,
		TurnAnnotations: []domain.TurnAnnotation{
			{
				TurnID: 1,
				Role:   "Human",
				BDIRatings: map[string]domain.BDIRating{
					"I am safe": {Rating: domain.StronglyAgree, Type: domain.BDIBelief},
				},
				AttackMappingRatings: []domain.AttackMappingRating{
					{TargetBDIType: "belief", AttackStrategy: "s",
						TargetTypeRating: domain.Neutral, StrategyRating: domain.Neutral},
				},
			},
		},
	}
}

func TestValidate_ValidRecord(t *testing.T) {
	v := &RecordValidator{}
	if err := v.Validate(validRecord()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_NilStratumRatingAllowed(t *testing.T) {
	v := &RecordValidator{}
	rec := validRecord()
	rec.StratumRating = nil
	if err := v.Validate(rec); err != nil {
		t.Errorf("unexpected error for nil stratum rating: %v", err)
	}
}

func TestValidate_EmptyConversationID(t *testing.T) {
	v := &RecordValidator{}
	rec := validRecord()
	rec.ConversationID = ""
	err := v.Validate(rec)
	if err == nil {
		t.Fatal("expected validation error")
	}
	engErr, ok := err.(*domain.EngineError)
	if !ok {
		t.Fatalf("expected *domain.EngineError, got %T", err)
	}
	if engErr.Code != domain.ErrRecordInvalid.Code {
		t.Errorf("expected code %d, got %d", domain.ErrRecordInvalid.Code, engErr.Code)
	}
}

func TestValidate_UnknownLikertValues(t *testing.T) {
	v := &RecordValidator{}

	rec := validRecord()
	bogus := domain.Likert("Meh")
	rec.StratumRating = &bogus
	rec.TurnAnnotations[0].BDIRatings["I am safe"] = domain.BDIRating{Rating: "Kinda", Type: domain.BDIBelief}
	rec.TurnAnnotations[0].AttackMappingRatings[0].StrategyRating = "Nope"

	err := v.Validate(rec)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"Meh", "Kinda", "Nope"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected violation mentioning %q in %q", want, msg)
		}
	}
}

func TestValidate_UnknownRole(t *testing.T) {
	v := &RecordValidator{}
	rec := validRecord()
	rec.TurnAnnotations[0].Role = "Narrator"
	err := v.Validate(rec)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), `role "Narrator"`) {
		t.Errorf("expected role violation, got %q", err.Error())
	}
}

func TestValidate_RoleCaseInsensitive(t *testing.T) {
	v := &RecordValidator{}
	for _, role := range []string{"human", "HUMAN", "assistant", "Assistant"} {
		rec := validRecord()
		rec.TurnAnnotations[0].Role = role
		if err := v.Validate(rec); err != nil {
			t.Errorf("role %q: unexpected error: %v", role, err)
		}
	}
}

func TestValidate_UnrecognizedBDITypePasses(t *testing.T) {
	v := &RecordValidator{}
	rec := validRecord()
	rec.TurnAnnotations[0].BDIRatings["odd"] = domain.BDIRating{Rating: domain.Neutral, Type: "hunch"}
	if err := v.Validate(rec); err != nil {
		t.Errorf("unexpected error for unrecognized BDI type: %v", err)
	}
}
