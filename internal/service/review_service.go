package service

import (
	"context"
	"fmt"

	"github.com/haimtran/sdq-assistant/internal/dto"
	"github.com/haimtran/sdq-assistant/internal/model"
	"github.com/haimtran/sdq-assistant/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

// ReviewService exposes the aggregate's lifecycle: reviewer-facing listing
// and verdict submission, and respondent-facing status that only reveals the
// result once the psychologist has signed off.
type ReviewService interface {
	PendingReviews(ctx context.Context) ([]dto.ReviewSummaryDTO, error)
	CompletedReviews(ctx context.Context) ([]dto.ReviewSummaryDTO, error)
	FullReview(ctx context.Context, childID string) (*dto.FullReviewDTO, error)
	SubmitVerdict(ctx context.Context, req dto.SubmitReviewRequest) error
	Status(ctx context.Context, childID string) (*dto.ReviewStatusResponse, error)
	FinalForRespondent(ctx context.Context, childID string) (*dto.ReviewStatusResponse, error)
}

type reviewService struct {
	childRepo       repository.ChildRepository
	testRepo        repository.TestInstanceRepository
	answerRepo      repository.AnswerRepository
	fingerprintRepo repository.FingerprintRepository
	reviewRepo      repository.ReviewRepository
}

func NewReviewService(
	childRepo repository.ChildRepository,
	testRepo repository.TestInstanceRepository,
	answerRepo repository.AnswerRepository,
	fingerprintRepo repository.FingerprintRepository,
	reviewRepo repository.ReviewRepository,
) ReviewService {
	return &reviewService{
		childRepo:       childRepo,
		testRepo:        testRepo,
		answerRepo:      answerRepo,
		fingerprintRepo: fingerprintRepo,
		reviewRepo:      reviewRepo,
	}
}

func (s *reviewService) listByStatus(ctx context.Context, status model.ReviewStatus) ([]dto.ReviewSummaryDTO, error) {
	reviews, err := s.reviewRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s reviews: %w", status, err)
	}
	summaries := make([]dto.ReviewSummaryDTO, 0, len(reviews))
	for _, review := range reviews {
		summary := dto.ReviewSummaryDTO{
			ChildID:    review.ChildID,
			ChildName:  "Unknown",
			CreatedAt:  review.CreatedAt,
			ReviewedBy: review.ReviewedBy,
			ReviewedAt: review.ReviewedAt,
		}
		child, err := s.childRepo.FindByChildID(ctx, review.ChildID)
		if err != nil {
			log.Warn().Err(err).Str("childID", review.ChildID).Msg("Failed to resolve child for review listing")
		} else if child != nil {
			summary.ChildName = child.Name
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *reviewService) PendingReviews(ctx context.Context) ([]dto.ReviewSummaryDTO, error) {
	return s.listByStatus(ctx, model.ReviewStatusPending)
}

func (s *reviewService) CompletedReviews(ctx context.Context) ([]dto.ReviewSummaryDTO, error) {
	return s.listByStatus(ctx, model.ReviewStatusReviewed)
}

// FullReview is the psychologist-facing view: the aggregate plus every
// respondent's answer ledger and the raw utterances captured along the way.
func (s *reviewService) FullReview(ctx context.Context, childID string) (*dto.FullReviewDTO, error) {
	review, err := s.reviewRepo.FindByChildID(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review for child %s: %w", childID, err)
	}
	if review == nil {
		return nil, fmt.Errorf("review not found for child %s", childID)
	}
	child, err := s.childRepo.FindByChildID(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load child %s: %w", childID, err)
	}
	if child == nil {
		return nil, fmt.Errorf("child %s not found", childID)
	}

	full := &dto.FullReviewDTO{
		ChildID:   review.ChildID,
		ChildName: child.Name,
		Age:       child.Age,
		TestIDs: map[model.RespondentRole]string{
			model.RoleChild:   review.ChildTestID,
			model.RoleParent:  review.ParentTestID,
			model.RoleTeacher: review.TeacherTestID,
		},
		Scores:             review.Scores,
		GeneratedSummary:   review.GeneratedSummary,
		PsychologistReview: review.PsychologistReview,
		Status:             review.Status,
	}

	instances, err := s.testRepo.ListByChildID(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests for child %s: %w", childID, err)
	}
	for _, inst := range instances {
		if !inst.Submitted {
			continue
		}
		var testDTO dto.TestInstanceDTO
		if err := copier.Copy(&testDTO, &inst); err != nil {
			log.Warn().Err(err).Str("testID", inst.TestID).Msg("Failed to copy test instance into review DTO")
			continue
		}
		answers, err := s.answerRepo.ListByTestInstanceID(ctx, inst.ID)
		if err != nil {
			log.Warn().Err(err).Str("testID", inst.TestID).Msg("Failed to load answers for review DTO")
		} else {
			testDTO.Answers = make([]dto.AnswerDTO, 0, len(answers))
			for _, rec := range answers {
				var answerDTO dto.AnswerDTO
				if err := copier.Copy(&answerDTO, &rec); err != nil {
					continue
				}
				testDTO.Answers = append(testDTO.Answers, answerDTO)
			}
		}
		fps, err := s.fingerprintRepo.ListByTestInstanceID(ctx, inst.ID)
		if err != nil {
			log.Warn().Err(err).Str("testID", inst.TestID).Msg("Failed to load utterances for review DTO")
		} else {
			testDTO.Utterances = make([]dto.UtteranceDTO, 0, len(fps))
			for _, fp := range fps {
				testDTO.Utterances = append(testDTO.Utterances, dto.UtteranceDTO{QuestionIndex: fp.QuestionIndex, Text: fp.Text})
			}
		}
		full.Tests = append(full.Tests, testDTO)
	}
	return full, nil
}

// SubmitVerdict flips the aggregate pending -> reviewed exactly once; a
// second verdict for the same child is rejected.
func (s *reviewService) SubmitVerdict(ctx context.Context, req dto.SubmitReviewRequest) error {
	flipped, err := s.reviewRepo.MarkReviewed(ctx, req.ChildID, req.ReviewerID, req.PsychologistReview)
	if err != nil {
		return fmt.Errorf("failed to submit review for child %s: %w", req.ChildID, err)
	}
	if !flipped {
		review, findErr := s.reviewRepo.FindByChildID(ctx, req.ChildID)
		if findErr == nil && review == nil {
			return fmt.Errorf("review not found for child %s", req.ChildID)
		}
		return fmt.Errorf("review for child %s has already been completed", req.ChildID)
	}
	log.Info().Str("childID", req.ChildID).Str("reviewerID", req.ReviewerID).Msg("Psychologist review submitted")
	return nil
}

// Status reports where the combined review stands without revealing the
// verdict: waiting (no aggregate yet), pending, or reviewed.
func (s *reviewService) Status(ctx context.Context, childID string) (*dto.ReviewStatusResponse, error) {
	review, err := s.reviewRepo.FindByChildID(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review for child %s: %w", childID, err)
	}
	if review == nil {
		return &dto.ReviewStatusResponse{Status: "waiting", Message: "Review not generated yet."}, nil
	}
	resp := &dto.ReviewStatusResponse{Status: string(review.Status)}
	if review.Status == model.ReviewStatusReviewed {
		resp.Summary = review.PsychologistReview
	}
	return resp, nil
}

// FinalForRespondent gates the respondent-facing result on completion: a
// pending aggregate stays invisible to the three respondents.
func (s *reviewService) FinalForRespondent(ctx context.Context, childID string) (*dto.ReviewStatusResponse, error) {
	review, err := s.reviewRepo.FindByChildID(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review for child %s: %w", childID, err)
	}
	if review == nil {
		return nil, fmt.Errorf("no review found for child %s", childID)
	}
	if review.Status != model.ReviewStatusReviewed {
		return &dto.ReviewStatusResponse{Status: "pending", Message: "Review not yet completed by psychologist."}, nil
	}
	return &dto.ReviewStatusResponse{Status: "reviewed", Summary: review.PsychologistReview}, nil
}
