package grading

import (
	"slices"

	"github.com/pbaille/foldgrade/internal/domain"
)

// ComputeGrade computes the overall grade for an episode from the
// per-towel tag selections. Any C tag anywhere forces a C, any B tag a
// B, otherwise the episode is an A.
func ComputeGrade(selections [][]string) domain.Grade {
	flat := flatten(selections)

	if containsAny(flat, domain.GradeTags[domain.GradeC]) {
		return domain.GradeC
	}
	if containsAny(flat, domain.GradeTags[domain.GradeB]) {
		return domain.GradeB
	}
	return domain.GradeA
}

// ComputeDifficulty computes the overall difficulty for an episode from
// the per-towel tag selections. Any Hard tag anywhere makes the episode
// Hard, otherwise it is Easy.
func ComputeDifficulty(selections [][]string) domain.Difficulty {
	flat := flatten(selections)

	if containsAny(flat, domain.DifficultyTags[domain.DifficultyHard]) {
		return domain.DifficultyHard
	}
	return domain.DifficultyEasy
}

// ValidCombination reports whether the chosen towel count and time
// bucket form a plausible episode. Anything else is graded C without a
// tag pass.
func ValidCombination(towelCount, timeIdx int) bool {
	switch {
	case towelCount == 1 && timeIdx == 0:
		return true
	case towelCount == 2 && timeIdx == 1:
		return true
	case towelCount == 3 && timeIdx == 2:
		return true
	}
	return false
}

// UniqueTags flattens per-towel selections into the de-duplicated tag
// set recorded on a grading entry, preserving first-seen order.
func UniqueTags(selections [][]string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, sel := range selections {
		for _, tag := range sel {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

func flatten(selections [][]string) []string {
	var flat []string
	for _, sel := range selections {
		flat = append(flat, sel...)
	}
	return flat
}

func containsAny(selected, category []string) bool {
	for _, tag := range selected {
		if slices.Contains(category, tag) {
			return true
		}
	}
	return false
}
