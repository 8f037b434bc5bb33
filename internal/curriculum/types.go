// Package curriculum defines the Victorian Curriculum content model and
// exam scoring used by the tutoring service.
package curriculum

// KnowledgeToken is a granular unit of knowledge that can be tested.
//
// Tokens represent specific skills or concepts within a topic. For example,
// "Angles" (VCMMG202) breaks down into acute/obtuse/reflex identification,
// angle addition, and the triangle angle sum. Tagging questions with tokens
// enables analytics like "identifies obtuse angles but confuses acute with
// right angles".
type KnowledgeToken struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Prerequisites []string `json:"prerequisites,omitempty"`
}

// QuestionKnowledge maps a question and its answer options to knowledge tokens.
type QuestionKnowledge struct {
	// QuestionTokens are the tokens being tested by this question.
	QuestionTokens []string `json:"questionTokens"`
	// CorrectToken is demonstrated by selecting the correct answer.
	CorrectToken string `json:"correctToken"`
	// IncorrectTokens are indicated by each wrong answer, indexed by option.
	// An empty string means the option carries no token signal.
	IncorrectTokens []string `json:"incorrectTokens"`
}

// Example is a worked example inside a section.
type Example struct {
	Problem     string `json:"problem"`
	Solution    string `json:"solution"`
	Explanation string `json:"explanation"`
}

// Question difficulty levels.
const (
	DifficultyEasy   = 1
	DifficultyMedium = 2
	DifficultyHard   = 3
)

// Question is a multiple-choice question. CorrectAnswer indexes into Options.
type Question struct {
	ID            string             `json:"id"`
	Question      string             `json:"question"`
	Options       []string           `json:"options"`
	CorrectAnswer int                `json:"correctAnswer"`
	Explanation   string             `json:"explanation"`
	Difficulty    int                `json:"difficulty"`
	Knowledge     *QuestionKnowledge `json:"knowledge,omitempty"`
}

// CurriculumSection is one teachable unit with reading content and questions.
type CurriculumSection struct {
	ID              string           `json:"id"`
	Code            string           `json:"code"` // e.g. "VCMNA181"
	Title           string           `json:"title"`
	Description     string           `json:"description"` // official curriculum description
	Content         string           `json:"content"`     // textbook-style reading content
	KeyPoints       []string         `json:"keyPoints"`
	Examples        []Example        `json:"examples"`
	Questions       []Question       `json:"questions"`
	KnowledgeTokens []KnowledgeToken `json:"knowledgeTokens,omitempty"`
}

// CurriculumChapter groups related sections.
type CurriculumChapter struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Sections    []CurriculumSection `json:"sections"`
}

// CurriculumStrand is a top-level curriculum area, e.g. "Number and Algebra".
type CurriculumStrand struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Chapters []CurriculumChapter `json:"chapters"`
}

// Subjects covered by the curriculum.
const (
	SubjectMaths   = "maths"
	SubjectEnglish = "english"
)

// YearLevelCurriculum is the full curriculum for one year level and subject.
type YearLevelCurriculum struct {
	YearLevel int                `json:"yearLevel"`
	Subject   string             `json:"subject"`
	Strands   []CurriculumStrand `json:"strands"`
}

// ExamQuestion is a question drawn into an exam, tagged with its source section.
type ExamQuestion struct {
	Question
	SectionID    string `json:"sectionId"`
	SectionTitle string `json:"sectionTitle"`
	ChapterID    string `json:"chapterId"`
}

// SectionScore is the per-section breakdown of an exam result.
type SectionScore struct {
	SectionID     string `json:"sectionId"`
	SectionTitle  string `json:"sectionTitle"`
	Correct       int    `json:"correct"`
	Total         int    `json:"total"`
	NeedsRevision bool   `json:"needsRevision"`
}

// ExamResult is the graded outcome of a completed exam.
type ExamResult struct {
	TotalQuestions      int            `json:"totalQuestions"`
	CorrectAnswers      int            `json:"correctAnswers"`
	Percentage          float64        `json:"percentage"`
	SectionBreakdown    []SectionScore `json:"sectionBreakdown"`
	RecommendedSections []string       `json:"recommendedSections"`
}
