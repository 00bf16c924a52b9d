package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/haimtran/sdq-assistant/internal/dto"
	"github.com/haimtran/sdq-assistant/internal/model"
	"github.com/haimtran/sdq-assistant/internal/repository"
	"github.com/rs/zerolog/log"
)

// SubmissionService owns the explicit submit action and the synchronization
// gate behind it: scoring the submitted instance, checking whether all three
// roles are in, and creating or refreshing the review aggregate exactly once
// per child. The create is arbitrated by the unique child_id index, not a
// read-then-write, so two roles submitting in the same instant cannot
// produce two aggregates.
type SubmissionService interface {
	Submit(ctx context.Context, req dto.SubmitTestRequest) (*dto.SubmitTestResponse, error)
	GetScore(ctx context.Context, testID string) (*model.ScoreReport, error)
	History(ctx context.Context, testID string) (*dto.TestHistoryDTO, error)
}

type submissionService struct {
	childRepo  repository.ChildRepository
	testRepo   repository.TestInstanceRepository
	answerRepo repository.AnswerRepository
	reviewRepo repository.ReviewRepository
	scoring    ScoringService
	llm        GeminiLLMService
}

func NewSubmissionService(
	childRepo repository.ChildRepository,
	testRepo repository.TestInstanceRepository,
	answerRepo repository.AnswerRepository,
	reviewRepo repository.ReviewRepository,
	scoring ScoringService,
	llm GeminiLLMService,
) SubmissionService {
	return &submissionService{
		childRepo:  childRepo,
		testRepo:   testRepo,
		answerRepo: answerRepo,
		reviewRepo: reviewRepo,
		scoring:    scoring,
		llm:        llm,
	}
}

func (s *submissionService) Submit(ctx context.Context, req dto.SubmitTestRequest) (*dto.SubmitTestResponse, error) {
	inst, err := s.testRepo.FindByTestID(ctx, req.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load test %s: %w", req.TestID, err)
	}
	if inst == nil {
		return nil, fmt.Errorf("test %s not found", req.TestID)
	}

	changed, err := s.testRepo.MarkSubmitted(ctx, req.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to submit test %s: %w", req.TestID, err)
	}
	if !changed {
		// Second submit of the same instance: report it, run no aggregation.
		return &dto.SubmitTestResponse{
			Message:          "This test was already submitted.",
			AlreadySubmitted: true,
		}, nil
	}
	log.Info().Str("testID", req.TestID).Str("childID", inst.ChildID).Str("role", string(inst.RespondentRole)).Msg("Test submitted")

	answers, err := s.answerRepo.ListByTestInstanceID(ctx, inst.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers for test %s: %w", req.TestID, err)
	}
	report := s.scoring.Score(inst.TestID, answers)
	if err := s.testRepo.SaveScores(ctx, inst.TestID, report); err != nil {
		return nil, fmt.Errorf("failed to persist score snapshot: %w", err)
	}

	created, err := s.aggregateIfComplete(ctx, inst.ChildID)
	if err != nil {
		return nil, err
	}
	return &dto.SubmitTestResponse{
		Message:       "Test submitted successfully.",
		ReviewCreated: created,
	}, nil
}

// aggregateIfComplete runs the gate: all required roles submitted ->
// create-if-absent, else refresh while still pending.
func (s *submissionService) aggregateIfComplete(ctx context.Context, childID string) (bool, error) {
	instances, err := s.testRepo.ListByChildID(ctx, childID)
	if err != nil {
		return false, fmt.Errorf("failed to list tests for child %s: %w", childID, err)
	}

	submittedByRole := make(map[model.RespondentRole]*model.TestInstance)
	for i := range instances {
		inst := &instances[i]
		if inst.Submitted {
			submittedByRole[inst.RespondentRole] = inst
		}
	}
	for _, role := range model.RequiredRoles {
		if submittedByRole[role] == nil {
			log.Info().Str("childID", childID).Str("missingRole", string(role)).Msg("Review aggregation waiting on remaining respondents")
			return false, nil
		}
	}

	child, err := s.childRepo.FindByChildID(ctx, childID)
	if err != nil {
		return false, fmt.Errorf("failed to load child %s: %w", childID, err)
	}
	if child == nil {
		return false, fmt.Errorf("child %s not found for aggregation", childID)
	}

	review := s.buildAggregate(ctx, child, submittedByRole)

	created, err := s.reviewRepo.CreateIfAbsent(ctx, review)
	if err != nil {
		return false, fmt.Errorf("failed to create review aggregate for child %s: %w", childID, err)
	}
	if created {
		log.Info().Str("childID", childID).Msg("Review aggregate created")
		return true, nil
	}

	// Lost the race or a later submission: refresh in place while pending.
	// A reviewed aggregate is frozen and must never be touched again.
	refreshed, err := s.reviewRepo.RefreshPending(ctx, review)
	if err != nil {
		return false, fmt.Errorf("failed to refresh review aggregate for child %s: %w", childID, err)
	}
	if refreshed {
		log.Info().Str("childID", childID).Msg("Pending review aggregate refreshed")
	} else {
		log.Info().Str("childID", childID).Msg("Review aggregate already finalized, leaving untouched")
	}
	return false, nil
}

func (s *submissionService) buildAggregate(ctx context.Context, child *model.Child, submittedByRole map[model.RespondentRole]*model.TestInstance) *model.ReviewAggregate {
	scores := make(map[model.RespondentRole]*model.ScoreReport, len(submittedByRole))
	tests := make([]model.TestInstance, 0, len(submittedByRole))
	answersByTest := make(map[string][]model.AnswerRecord, len(submittedByRole))
	for _, role := range model.RequiredRoles {
		inst := submittedByRole[role]
		if inst.Scores == nil {
			// Snapshot missing (e.g. written by an older build): recompute
			// from the ledger, which is always authoritative.
			if answers, err := s.answerRepo.ListByTestInstanceID(ctx, inst.ID); err == nil {
				inst.Scores = s.scoring.Score(inst.TestID, answers)
				answersByTest[inst.TestID] = answers
			}
		} else if answers, err := s.answerRepo.ListByTestInstanceID(ctx, inst.ID); err == nil {
			answersByTest[inst.TestID] = answers
		}
		scores[role] = inst.Scores
		tests = append(tests, *inst)
	}

	summary, err := s.llm.Summarize(ctx, child, tests, answersByTest)
	if err != nil {
		log.Warn().Err(err).Str("childID", child.ChildID).Msg("LLM summary failed, using deterministic fallback")
		summary = fallbackSummary(child, tests)
	}

	return &model.ReviewAggregate{
		ChildID:          child.ChildID,
		ChildTestID:      submittedByRole[model.RoleChild].TestID,
		ParentTestID:     submittedByRole[model.RoleParent].TestID,
		TeacherTestID:    submittedByRole[model.RoleTeacher].TestID,
		Scores:           scores,
		GeneratedSummary: summary,
		Status:           model.ReviewStatusPending,
	}
}

// fallbackSummary is the deterministic, non-LLM narrative used when the
// text-generation collaborator is unavailable.
func fallbackSummary(child *model.Child, tests []model.TestInstance) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Assessment summary for %s (age %d):\n\n", child.Name, child.Age))
	roles := make([]string, 0, len(tests))
	for _, test := range tests {
		roles = append(roles, string(test.RespondentRole))
		if test.Scores != nil {
			sb.WriteString(fmt.Sprintf("- %s: total SDQ score %d/%d across %d responses\n",
				test.RespondentRole, test.Scores.TotalScore, test.Scores.MaxPossibleScore, test.Scores.ResponseCount))
		} else {
			sb.WriteString(fmt.Sprintf("- %s: score unavailable\n", test.RespondentRole))
		}
	}
	sb.WriteString(fmt.Sprintf("\nAssessment completed by: %s.\n", strings.Join(roles, ", ")))
	sb.WriteString("The psychologist will review these findings and provide detailed recommendations.\n")
	sb.WriteString("Generated on: " + time.Now().UTC().Format("2006-01-02 15:04:05") + " UTC")
	return sb.String()
}

// History replays one test's recorded answers so a respondent can see what
// they have confirmed so far.
func (s *submissionService) History(ctx context.Context, testID string) (*dto.TestHistoryDTO, error) {
	inst, err := s.testRepo.FindByTestID(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load test %s: %w", testID, err)
	}
	if inst == nil {
		return nil, fmt.Errorf("test %s not found", testID)
	}
	answers, err := s.answerRepo.ListByTestInstanceID(ctx, inst.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers for test %s: %w", testID, err)
	}
	history := &dto.TestHistoryDTO{
		TestID:         inst.TestID,
		ChildID:        inst.ChildID,
		RespondentRole: inst.RespondentRole,
		Position:       inst.Position,
		Submitted:      inst.Submitted,
		Answers:        make([]dto.AnswerDTO, 0, len(answers)),
	}
	for _, rec := range answers {
		history.Answers = append(history.Answers, dto.AnswerDTO{
			QuestionIndex:  rec.QuestionIndex,
			QuestionText:   rec.QuestionText,
			SelectedOption: rec.SelectedOption,
		})
	}
	return history, nil
}

// GetScore recomputes a test's score directly from the ledger.
func (s *submissionService) GetScore(ctx context.Context, testID string) (*model.ScoreReport, error) {
	inst, err := s.testRepo.FindByTestID(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load test %s: %w", testID, err)
	}
	if inst == nil {
		return nil, fmt.Errorf("test %s not found", testID)
	}
	answers, err := s.answerRepo.ListByTestInstanceID(ctx, inst.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers for test %s: %w", testID, err)
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("no responses recorded for test %s", testID)
	}
	return s.scoring.Score(testID, answers), nil
}
