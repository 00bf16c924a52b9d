package service

import (
	"context"
	"testing"

	"github.com/haimtran/sdq-assistant/internal/dto"
	"github.com/haimtran/sdq-assistant/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewFixture struct {
	children     *fakeChildRepo
	tests        *fakeTestRepo
	fingerprints *fakeFingerprintRepo
	reviews      *fakeReviewRepo
	svc          ReviewService
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	f := &reviewFixture{
		children:     newFakeChildRepo(),
		tests:        newFakeTestRepo(),
		fingerprints: newFakeFingerprintRepo(),
		reviews:      newFakeReviewRepo(),
	}
	f.svc = NewReviewService(f.children, f.tests, f.tests, f.fingerprints, f.reviews)
	require.NoError(t, f.children.Create(context.Background(), &model.Child{
		ChildID: "child-1",
		Name:    "Anna",
		Age:     8,
		Code:    "abc123",
	}))
	return f
}

func (f *reviewFixture) seedPendingReview(t *testing.T) {
	t.Helper()
	created, err := f.reviews.CreateIfAbsent(context.Background(), &model.ReviewAggregate{
		ChildID:          "child-1",
		ChildTestID:      "t-child",
		ParentTestID:     "t-parent",
		TeacherTestID:    "t-teacher",
		GeneratedSummary: "Combined SDQ findings for Anna.",
		Status:           model.ReviewStatusPending,
	})
	require.NoError(t, err)
	require.True(t, created)
}

func TestStatusProgression(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	status, err := f.svc.Status(ctx, "child-1")
	require.NoError(t, err)
	assert.Equal(t, "waiting", status.Status)

	f.seedPendingReview(t)
	status, err = f.svc.Status(ctx, "child-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", status.Status)
	assert.Empty(t, status.Summary)

	require.NoError(t, f.svc.SubmitVerdict(ctx, dto.SubmitReviewRequest{
		ChildID:            "child-1",
		PsychologistReview: "No significant concerns.",
		ReviewerID:         "psy-1",
	}))
	status, err = f.svc.Status(ctx, "child-1")
	require.NoError(t, err)
	assert.Equal(t, "reviewed", status.Status)
	assert.Equal(t, "No significant concerns.", status.Summary)
}

func TestSubmitVerdictFlipsExactlyOnce(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	f.seedPendingReview(t)

	req := dto.SubmitReviewRequest{ChildID: "child-1", PsychologistReview: "First verdict.", ReviewerID: "psy-1"}
	require.NoError(t, f.svc.SubmitVerdict(ctx, req))

	req.PsychologistReview = "Second verdict."
	err := f.svc.SubmitVerdict(ctx, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already been completed")

	review, _ := f.reviews.FindByChildID(ctx, "child-1")
	assert.Equal(t, "First verdict.", review.PsychologistReview)
}

func TestSubmitVerdictUnknownChild(t *testing.T) {
	f := newReviewFixture(t)
	err := f.svc.SubmitVerdict(context.Background(), dto.SubmitReviewRequest{
		ChildID: "missing", PsychologistReview: "x", ReviewerID: "psy-1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFinalForRespondentGatedOnCompletion(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	_, err := f.svc.FinalForRespondent(ctx, "child-1")
	assert.Error(t, err)

	f.seedPendingReview(t)
	resp, err := f.svc.FinalForRespondent(ctx, "child-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Empty(t, resp.Summary)

	require.NoError(t, f.svc.SubmitVerdict(ctx, dto.SubmitReviewRequest{
		ChildID: "child-1", PsychologistReview: "All good.", ReviewerID: "psy-1",
	}))
	resp, err = f.svc.FinalForRespondent(ctx, "child-1")
	require.NoError(t, err)
	assert.Equal(t, "reviewed", resp.Status)
	assert.Equal(t, "All good.", resp.Summary)
}

func TestPendingAndCompletedListings(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	f.seedPendingReview(t)

	pending, err := f.svc.PendingReviews(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "child-1", pending[0].ChildID)
	assert.Equal(t, "Anna", pending[0].ChildName)

	completed, err := f.svc.CompletedReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, completed)

	require.NoError(t, f.svc.SubmitVerdict(ctx, dto.SubmitReviewRequest{
		ChildID: "child-1", PsychologistReview: "Done.", ReviewerID: "psy-1",
	}))
	pending, err = f.svc.PendingReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
	completed, err = f.svc.CompletedReviews(ctx)
	require.NoError(t, err)
	assert.Len(t, completed, 1)
}

func TestFullReviewIncludesSubmittedTestsAndAnswers(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	f.seedPendingReview(t)

	submitted := &model.TestInstance{
		TestID:         "t-parent",
		ChildID:        "child-1",
		RespondentRole: model.RoleParent,
		Age:            8,
		ChildName:      "Anna",
		Position:       0,
		Submitted:      true,
	}
	require.NoError(t, f.tests.Create(ctx, submitted))
	for i := 0; i < 2; i++ {
		rec := &model.AnswerRecord{
			TestInstanceID: submitted.ID,
			QuestionIndex:  i,
			QuestionText:   "item",
			SelectedOption: model.CategoryNotTrue,
		}
		require.NoError(t, f.tests.ConfirmAnswer(ctx, submitted, rec))
	}
	require.NoError(t, f.fingerprints.Create(ctx, &model.UtteranceFingerprint{
		TestInstanceID: submitted.ID,
		QuestionIndex:  0,
		Text:           "she never really does that",
	}))
	// An in-progress run by another respondent stays out of the view.
	inProgress := &model.TestInstance{
		TestID:         "t-teacher-wip",
		ChildID:        "child-1",
		RespondentRole: model.RoleTeacher,
		Age:            8,
		Position:       5,
	}
	require.NoError(t, f.tests.Create(ctx, inProgress))

	full, err := f.svc.FullReview(ctx, "child-1")
	require.NoError(t, err)
	assert.Equal(t, "Anna", full.ChildName)
	assert.Equal(t, model.ReviewStatusPending, full.Status)
	assert.Equal(t, "t-parent", full.TestIDs[model.RoleParent])
	require.Len(t, full.Tests, 1)
	assert.Equal(t, "t-parent", full.Tests[0].TestID)
	require.Len(t, full.Tests[0].Answers, 2)
	assert.Equal(t, model.CategoryNotTrue, full.Tests[0].Answers[0].SelectedOption)
	require.Len(t, full.Tests[0].Utterances, 1)
	assert.Equal(t, "she never really does that", full.Tests[0].Utterances[0].Text)
	assert.Equal(t, 0, full.Tests[0].Utterances[0].QuestionIndex)
}

func TestFullReviewMissingAggregate(t *testing.T) {
	f := newReviewFixture(t)
	_, err := f.svc.FullReview(context.Background(), "child-1")
	assert.Error(t, err)
}
