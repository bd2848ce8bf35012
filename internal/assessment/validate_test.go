package assessment

import (
	"errors"
	"testing"

	"quiz-assessment/internal/models"
)

func testFields() map[uint]Field {
	return BuildFields([]models.Question{
		{
			ID:           1,
			Text:         "single",
			QuestionType: models.SingleChoice,
			Answers:      []models.Answer{{ID: 10, Text: "a"}, {ID: 11, Text: "b"}},
		},
		{
			ID:           2,
			Text:         "multi",
			QuestionType: models.MultiSelect,
			Answers:      []models.Answer{{ID: 20, Text: "c"}, {ID: 21, Text: "d"}, {ID: 22, Text: "e"}},
		},
	})
}

func fieldErrorFor(t *testing.T, err error, questionID uint) *FieldError {
	t.Helper()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("got %T, want ValidationErrors", err)
	}
	for _, fe := range verrs {
		if fe.QuestionID == questionID {
			return fe
		}
	}
	t.Fatalf("no error names question %d: %v", questionID, err)
	return nil
}

func TestValidateSubmissionOK(t *testing.T) {
	sub, err := ValidateSubmission(testFields(), RawSubmission{
		"1": {"10"},
		"2": {"20", "22"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := sub[1]; len(got) != 1 || got[0] != 10 {
		t.Errorf("single field normalized to %v", got)
	}
	if got := sub[2]; len(got) != 2 || got[0] != 20 || got[1] != 22 {
		t.Errorf("multi field normalized to %v", got)
	}
}

func TestValidateSubmissionMissingSingleField(t *testing.T) {
	_, err := ValidateSubmission(testFields(), RawSubmission{
		"2": {"20"},
	})
	fe := fieldErrorFor(t, err, 1)
	if fe.Message == "" {
		t.Error("field error carries no message")
	}
}

func TestValidateSubmissionSingleMustHaveExactlyOne(t *testing.T) {
	_, err := ValidateSubmission(testFields(), RawSubmission{
		"1": {"10", "11"},
		"2": {},
	})
	fieldErrorFor(t, err, 1)
}

func TestValidateSubmissionRejectsOutOfCatalogAnswer(t *testing.T) {
	_, err := ValidateSubmission(testFields(), RawSubmission{
		"1": {"999"},
		"2": {"20"},
	})
	fieldErrorFor(t, err, 1)

	_, err = ValidateSubmission(testFields(), RawSubmission{
		"1": {"10"},
		"2": {"10"}, // belongs to question 1, not 2
	})
	fieldErrorFor(t, err, 2)
}

func TestValidateSubmissionRejectsNonNumeric(t *testing.T) {
	_, err := ValidateSubmission(testFields(), RawSubmission{
		"1": {"abc"},
		"2": {"20"},
	})
	fieldErrorFor(t, err, 1)
}

func TestValidateSubmissionMultiAllowsEmpty(t *testing.T) {
	sub, err := ValidateSubmission(testFields(), RawSubmission{
		"1": {"11"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sub[2]; len(got) != 0 {
		t.Errorf("empty multi field normalized to %v, want empty set", got)
	}
}

func TestValidateSubmissionRejectsUnknownQuestion(t *testing.T) {
	_, err := ValidateSubmission(testFields(), RawSubmission{
		"1":  {"10"},
		"2":  {"20"},
		"99": {"12345"},
	})
	fe := fieldErrorFor(t, err, 99)
	if fe.Message == "" {
		t.Error("stray question error carries no message")
	}

	// A non-numeric stray key is rejected too, reported without a question id.
	_, err = ValidateSubmission(testFields(), RawSubmission{
		"1":    {"10"},
		"2":    {"20"},
		"junk": {"1"},
	})
	fieldErrorFor(t, err, 0)
}

func TestValidateSubmissionCollapsesDuplicates(t *testing.T) {
	sub, err := ValidateSubmission(testFields(), RawSubmission{
		"1": {"10"},
		"2": {"21", "20", "21", "21"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := sub[2]
	if len(got) != 2 || got[0] != 21 || got[1] != 20 {
		t.Errorf("duplicates not collapsed in first-seen order: %v", got)
	}
}
