package store

import (
	"testing"

	"ucas-grades/internal/domain"
)

func TestMergeRecordDetailNewWinsFieldByField(t *testing.T) {
	old := Record{Detail: domain.Detail{
		"course": map[string]any{
			"courseTitle": "Old Title",
			"legacyField": "kept",
		},
	}}
	newDetail := domain.Detail{
		"course": map[string]any{
			"courseTitle": "New Title",
			"freshField":  "added",
		},
	}

	merged, err := mergeRecord(old, newDetail, nil, nil)
	if err != nil {
		t.Fatalf("mergeRecord: %v", err)
	}

	course := merged.Detail.Course()
	if course["courseTitle"] != "New Title" {
		t.Errorf("courseTitle = %v, want New Title", course["courseTitle"])
	}
	if course["legacyField"] != "kept" {
		t.Errorf("Expected field absent from new payload to be retained, got %v", course["legacyField"])
	}
	if course["freshField"] != "added" {
		t.Errorf("freshField = %v", course["freshField"])
	}
}

func TestMergeRecordPreservesUnrelatedPriorFields(t *testing.T) {
	// existing record: aggregate for 2019-2023; new payload: only an AAB rate
	old := Record{
		Detail: domain.Detail{"course": map[string]any{"courseTitle": "Robotics"}},
		Grades: GradesSection{
			Aggregates: []domain.AggregateGrade{sampleAggregate(2019, 2023)},
		},
	}

	merged, err := mergeRecord(old, nil, nil, map[string]string{
		RateKey("A_level", "AAB"): "64%",
	})
	if err != nil {
		t.Fatalf("mergeRecord: %v", err)
	}

	if len(merged.Grades.Aggregates) != 1 || merged.Grades.Aggregates[0].StartYear != 2019 {
		t.Errorf("Expected 2019-2023 aggregate to survive, got %+v", merged.Grades.Aggregates)
	}
	if merged.Grades.ConfirmationRates[RateKey("A_level", "AAB")] != "64%" {
		t.Errorf("Expected new AAB rate, got %v", merged.Grades.ConfirmationRates)
	}
	if merged.Detail.Title() != "Robotics" {
		t.Errorf("Detail lost in merge: %v", merged.Detail)
	}
}

func TestMergeAggregatesReplaceByKey(t *testing.T) {
	oldAgg := sampleAggregate(2019, 2023)
	oldAgg.MostCommonGrade = "CCC"
	otherKey := sampleAggregate(2018, 2022)
	otherKey.QualificationType = "BTEC"

	replacement := sampleAggregate(2019, 2023) // same key, new data
	replacement.MostCommonGrade = "AAB"
	fresh := sampleAggregate(2020, 2024)

	out := mergeAggregates(
		[]domain.AggregateGrade{oldAgg, otherKey},
		[]domain.AggregateGrade{replacement, fresh},
	)

	if len(out) != 3 {
		t.Fatalf("Expected 3 records, got %d: %+v", len(out), out)
	}
	if out[0].MostCommonGrade != "AAB" {
		t.Errorf("Expected same-key record replaced in place, got %+v", out[0])
	}
	if out[1].QualificationType != "BTEC" {
		t.Errorf("Expected unrelated record retained, got %+v", out[1])
	}
	if out[2].StartYear != 2020 {
		t.Errorf("Expected new-key record appended, got %+v", out[2])
	}
}

func TestMergeAggregatesEmptyNewKeepsOld(t *testing.T) {
	old := []domain.AggregateGrade{sampleAggregate(2019, 2023)}
	out := mergeAggregates(old, nil)
	if len(out) != 1 {
		t.Errorf("Expected old records kept, got %+v", out)
	}
}

func TestMergeRecordOverwritesRatePerProfile(t *testing.T) {
	old := Record{Grades: GradesSection{ConfirmationRates: map[string]string{
		RateKey("A_level", "ABB"): "70%",
		RateKey("A_level", "BBC"): "55%",
	}}}

	merged, err := mergeRecord(old, nil, nil, map[string]string{
		RateKey("A_level", "ABB"): "73%",
	})
	if err != nil {
		t.Fatalf("mergeRecord: %v", err)
	}

	rates := merged.Grades.ConfirmationRates
	if rates[RateKey("A_level", "ABB")] != "73%" {
		t.Errorf("Expected ABB overwritten, got %v", rates)
	}
	if rates[RateKey("A_level", "BBC")] != "55%" {
		t.Errorf("Expected BBC retained, got %v", rates)
	}
}
