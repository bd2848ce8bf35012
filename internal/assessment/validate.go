package assessment

import (
	"sort"
	"strconv"
)

// RawSubmission is the wire form of a submission: selected answer IDs as text,
// keyed by the decimal question ID.
type RawSubmission map[string][]string

// Submission is the normalized form: selected answer IDs per question, with
// duplicates collapsed. A single-kind field holds exactly one ID, a multi-kind
// field holds zero or more.
type Submission map[uint][]uint

// ValidateSubmission checks a raw submission against the expected fields and
// coerces it into a Submission. Keys that match no expected field are rejected,
// not dropped. Every failure is reported against its question; a non-nil error
// is always a ValidationErrors value.
func ValidateSubmission(fields map[uint]Field, raw RawSubmission) (Submission, error) {
	normalized := make(Submission, len(fields))
	var errs ValidationErrors

	// Walk fields in question-ID order so error messages come out stable.
	ids := make([]uint, 0, len(fields))
	for id := range fields {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		field := fields[id]
		values := raw[strconv.FormatUint(uint64(id), 10)]

		if field.Kind == FieldSingle && len(values) != 1 {
			errs = append(errs, &FieldError{QuestionID: id, Message: "exactly one answer is required"})
			continue
		}

		selected, ferr := coerceSelections(field, values)
		if ferr != nil {
			errs = append(errs, ferr)
			continue
		}
		normalized[id] = selected
	}

	// Answers for questions outside the attempt are stray, never silently dropped.
	var strayKeys []string
	for key := range raw {
		id64, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			strayKeys = append(strayKeys, key)
			continue
		}
		if _, ok := fields[uint(id64)]; !ok {
			strayKeys = append(strayKeys, key)
		}
	}
	sort.Strings(strayKeys)
	for _, key := range strayKeys {
		id64, _ := strconv.ParseUint(key, 10, 64)
		errs = append(errs, &FieldError{QuestionID: uint(id64), Message: "question is not part of this attempt"})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return normalized, nil
}

func coerceSelections(field Field, values []string) ([]uint, *FieldError) {
	candidates := make(map[uint]bool, len(field.Choices))
	for _, c := range field.Choices {
		candidates[c.ID] = true
	}

	selected := make([]uint, 0, len(values))
	seen := make(map[uint]bool, len(values))
	for _, v := range values {
		id64, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, &FieldError{QuestionID: field.QuestionID, Message: "answer id must be numeric"}
		}
		answerID := uint(id64)
		if !candidates[answerID] {
			return nil, &FieldError{QuestionID: field.QuestionID, Message: "answer does not belong to this question"}
		}
		if seen[answerID] {
			continue
		}
		seen[answerID] = true
		selected = append(selected, answerID)
	}
	return selected, nil
}
