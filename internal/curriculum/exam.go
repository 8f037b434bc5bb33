package curriculum

import (
	"fmt"
	"math"
	"sort"
)

// Sections scoring below this fraction are flagged for revision.
const revisionThreshold = 0.7

// EvaluateExam grades a completed exam. Answers are option indexes aligned
// with the question order; an out-of-range index counts as incorrect.
func EvaluateExam(questions []ExamQuestion, answers []int) (*ExamResult, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("exam has no questions")
	}
	if len(answers) != len(questions) {
		return nil, fmt.Errorf("answer count %d does not match question count %d", len(answers), len(questions))
	}

	type sectionTally struct {
		title   string
		correct int
		total   int
	}
	tallies := make(map[string]*sectionTally)
	var sectionOrder []string

	correct := 0
	for i, q := range questions {
		tally, ok := tallies[q.SectionID]
		if !ok {
			tally = &sectionTally{title: q.SectionTitle}
			tallies[q.SectionID] = tally
			sectionOrder = append(sectionOrder, q.SectionID)
		}
		tally.total++
		if answers[i] == q.CorrectAnswer {
			tally.correct++
			correct++
		}
	}

	result := &ExamResult{
		TotalQuestions: len(questions),
		CorrectAnswers: correct,
		Percentage:     math.Round(float64(correct) / float64(len(questions)) * 100),
	}

	for _, id := range sectionOrder {
		tally := tallies[id]
		score := SectionScore{
			SectionID:     id,
			SectionTitle:  tally.title,
			Correct:       tally.correct,
			Total:         tally.total,
			NeedsRevision: float64(tally.correct) < revisionThreshold*float64(tally.total),
		}
		result.SectionBreakdown = append(result.SectionBreakdown, score)
	}

	// Recommend weakest sections first.
	var revise []SectionScore
	for _, s := range result.SectionBreakdown {
		if s.NeedsRevision {
			revise = append(revise, s)
		}
	}
	sort.SliceStable(revise, func(i, j int) bool {
		return float64(revise[i].Correct)/float64(revise[i].Total) < float64(revise[j].Correct)/float64(revise[j].Total)
	})
	result.RecommendedSections = make([]string, 0, len(revise))
	for _, s := range revise {
		result.RecommendedSections = append(result.RecommendedSections, s.SectionID)
	}

	return result, nil
}

// BuildExam draws up to perSection questions from each section of a year-level
// curriculum, preserving strand and chapter order.
func BuildExam(c *YearLevelCurriculum, perSection int) []ExamQuestion {
	if c == nil || perSection <= 0 {
		return nil
	}

	var exam []ExamQuestion
	for _, strand := range c.Strands {
		for _, chapter := range strand.Chapters {
			for _, section := range chapter.Sections {
				n := perSection
				if n > len(section.Questions) {
					n = len(section.Questions)
				}
				for _, q := range section.Questions[:n] {
					exam = append(exam, ExamQuestion{
						Question:     q,
						SectionID:    section.ID,
						SectionTitle: section.Title,
						ChapterID:    chapter.ID,
					})
				}
			}
		}
	}
	return exam
}
