package service

import (
	"time"

	"github.com/haimtran/sdq-assistant/internal/model"
	"github.com/haimtran/sdq-assistant/internal/questionbank"
)

// ScoringService turns an answer ledger into an SDQ score report. Pure and
// deterministic: the same ledger always produces the same report, so scores
// can be recomputed at any time for audit.
type ScoringService interface {
	Score(testID string, answers []model.AnswerRecord) *model.ScoreReport
}

type scoringService struct{}

func NewScoringService() ScoringService {
	return &scoringService{}
}

var optionScores = map[model.Category]int{
	model.CategoryNotTrue:       0,
	model.CategorySomewhatTrue:  1,
	model.CategoryCertainlyTrue: 2,
}

// itemScore applies reversal for positively-worded items.
func itemScore(questionIndex int, option model.Category) int {
	score, ok := optionScores[option]
	if !ok {
		return 0
	}
	if questionbank.IsReversed(questionIndex) {
		return 2 - score
	}
	return score
}

// Score sums the (possibly reversed) item values. Indices missing from the
// ledger contribute 0, so a partial test scores partially. Each question
// index counts once; a ledger with a duplicate index (which ConfirmAnswer's
// position guard prevents) scores its last entry.
func (s *scoringService) Score(testID string, answers []model.AnswerRecord) *model.ScoreReport {
	byIndex := make(map[int]model.Category, len(answers))
	for _, rec := range answers {
		byIndex[rec.QuestionIndex] = rec.SelectedOption
	}
	total := 0
	for idx, option := range byIndex {
		total += itemScore(idx, option)
	}

	subscales := make(map[string]int, len(questionbank.Subscales))
	for name, indices := range questionbank.Subscales {
		sum := 0
		for _, idx := range indices {
			if option, ok := byIndex[idx]; ok {
				sum += itemScore(idx, option)
			}
		}
		subscales[name] = sum
	}

	return &model.ScoreReport{
		TestID:           testID,
		TotalScore:       total,
		ResponseCount:    len(byIndex),
		SubscaleScores:   subscales,
		MaxPossibleScore: 50, // 25 questions, 2 points max each
		CalculatedAt:     time.Now().UTC(),
	}
}
