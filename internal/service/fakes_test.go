package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/haimtran/sdq-assistant/internal/dto"
	"github.com/haimtran/sdq-assistant/internal/model"
	"github.com/haimtran/sdq-assistant/internal/repository"
)

// In-memory repository fakes. They mirror the storage contracts the real
// gorm repositories provide, including the conditional-update idempotency of
// MarkSubmitted and the insert-if-absent arbitration of CreateIfAbsent.

type fakeChildRepo struct {
	mu       sync.Mutex
	children map[string]*model.Child
}

func newFakeChildRepo() *fakeChildRepo {
	return &fakeChildRepo{children: make(map[string]*model.Child)}
}

func (r *fakeChildRepo) Create(_ context.Context, child *model.Child) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.children[child.ChildID]; exists {
		return fmt.Errorf("duplicate child %s", child.ChildID)
	}
	cp := *child
	r.children[child.ChildID] = &cp
	return nil
}

func (r *fakeChildRepo) FindByChildID(_ context.Context, childID string) (*model.Child, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if child, ok := r.children[childID]; ok {
		cp := *child
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeChildRepo) FindByCode(_ context.Context, code string) (*model.Child, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, child := range r.children {
		if child.Code == code {
			cp := *child
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeChildRepo) UpdateNameAge(_ context.Context, childID, name string, age int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if child, ok := r.children[childID]; ok {
		child.Name = name
		child.Age = age
	}
	return nil
}

type fakeTestRepo struct {
	mu        sync.Mutex
	nextID    uint
	instances map[string]*model.TestInstance
	answers   map[uint][]model.AnswerRecord
}

func newFakeTestRepo() *fakeTestRepo {
	return &fakeTestRepo{
		nextID:    1,
		instances: make(map[string]*model.TestInstance),
		answers:   make(map[uint][]model.AnswerRecord),
	}
}

func (r *fakeTestRepo) Create(_ context.Context, inst *model.TestInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst.ID = r.nextID
	r.nextID++
	cp := *inst
	r.instances[inst.TestID] = &cp
	return nil
}

func (r *fakeTestRepo) FindByTestID(_ context.Context, testID string) (*model.TestInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.instances[testID]; ok {
		cp := *inst
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeTestRepo) FindIncomplete(_ context.Context, childID string, role model.RespondentRole, email string) (*model.TestInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inst := range r.instances {
		if inst.ChildID == childID && inst.RespondentRole == role && inst.RespondentEmail == email && !inst.Submitted {
			cp := *inst
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTestRepo) ListByChildID(_ context.Context, childID string) ([]model.TestInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.TestInstance
	for _, inst := range r.instances {
		if inst.ChildID == childID {
			out = append(out, *inst)
		}
	}
	return out, nil
}

func (r *fakeTestRepo) SetPosition(_ context.Context, testID string, position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[testID]
	if !ok {
		return fmt.Errorf("test %s not found", testID)
	}
	inst.Position = position
	return nil
}

func (r *fakeTestRepo) SetPendingSuggestion(_ context.Context, testID string, suggestion model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[testID]
	if !ok {
		return fmt.Errorf("test %s not found", testID)
	}
	inst.PendingSuggestion = suggestion
	return nil
}

func (r *fakeTestRepo) ConfirmAnswer(_ context.Context, inst *model.TestInstance, rec *model.AnswerRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.instances[inst.TestID]
	if !ok {
		return fmt.Errorf("test %s not found", inst.TestID)
	}
	if stored.Position != rec.QuestionIndex {
		return repository.ErrStalePosition
	}
	r.answers[stored.ID] = append(r.answers[stored.ID], *rec)
	stored.Position = rec.QuestionIndex + 1
	stored.PendingSuggestion = model.CategoryUnresolved
	return nil
}

func (r *fakeTestRepo) MarkSubmitted(_ context.Context, testID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[testID]
	if !ok {
		return false, nil
	}
	if inst.Submitted {
		return false, nil
	}
	inst.Submitted = true
	return true, nil
}

func (r *fakeTestRepo) SaveScores(_ context.Context, testID string, scores *model.ScoreReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.instances[testID]; ok {
		inst.Scores = scores
	}
	return nil
}

func (r *fakeTestRepo) ListByTestInstanceID(_ context.Context, testInstanceID uint) ([]model.AnswerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.AnswerRecord(nil), r.answers[testInstanceID]...), nil
}

type fakeFingerprintRepo struct {
	mu  sync.Mutex
	fps map[uint][]model.UtteranceFingerprint
}

func newFakeFingerprintRepo() *fakeFingerprintRepo {
	return &fakeFingerprintRepo{fps: make(map[uint][]model.UtteranceFingerprint)}
}

func (r *fakeFingerprintRepo) Create(_ context.Context, fp *model.UtteranceFingerprint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fps[fp.TestInstanceID] = append(r.fps[fp.TestInstanceID], *fp)
	return nil
}

func (r *fakeFingerprintRepo) ListByTestInstanceID(_ context.Context, testInstanceID uint) ([]model.UtteranceFingerprint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.UtteranceFingerprint(nil), r.fps[testInstanceID]...), nil
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]*model.ReviewAggregate
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string]*model.ReviewAggregate)}
}

func (r *fakeReviewRepo) CreateIfAbsent(_ context.Context, review *model.ReviewAggregate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.reviews[review.ChildID]; exists {
		return false, nil
	}
	cp := *review
	r.reviews[review.ChildID] = &cp
	return true, nil
}

func (r *fakeReviewRepo) FindByChildID(_ context.Context, childID string) (*model.ReviewAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if review, ok := r.reviews[childID]; ok {
		cp := *review
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeReviewRepo) RefreshPending(_ context.Context, review *model.ReviewAggregate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.reviews[review.ChildID]
	if !ok || stored.Status != model.ReviewStatusPending {
		return false, nil
	}
	stored.Scores = review.Scores
	stored.GeneratedSummary = review.GeneratedSummary
	stored.ChildTestID = review.ChildTestID
	stored.ParentTestID = review.ParentTestID
	stored.TeacherTestID = review.TeacherTestID
	return true, nil
}

func (r *fakeReviewRepo) MarkReviewed(_ context.Context, childID, reviewerID, verdict string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.reviews[childID]
	if !ok || stored.Status != model.ReviewStatusPending {
		return false, nil
	}
	stored.Status = model.ReviewStatusReviewed
	stored.PsychologistReview = verdict
	stored.ReviewedBy = &reviewerID
	return true, nil
}

func (r *fakeReviewRepo) ListByStatus(_ context.Context, status model.ReviewStatus) ([]model.ReviewAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ReviewAggregate
	for _, review := range r.reviews {
		if review.Status == status {
			out = append(out, *review)
		}
	}
	return out, nil
}

// fakeLLM scripts the text-understanding collaborator. Setting failing makes
// every call error, exercising the degraded paths. onClassify, when set, runs
// inside ClassifyIntent so tests can hold concurrent turns at the point where
// both have already hydrated the instance.
type fakeLLM struct {
	mu           sync.Mutex
	failing      bool
	intent       model.Intent
	reply        string
	suggestion   model.Category
	explainText  string
	summaryText  string
	summarizeErr bool
	onClassify   func()
}

func (f *fakeLLM) ClassifyIntent(context.Context, []dto.ChatTurn) (model.Intent, error) {
	f.mu.Lock()
	failing, intent, hook := f.failing, f.intent, f.onClassify
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if failing {
		return model.IntentUnclear, fmt.Errorf("classifier unavailable")
	}
	return intent, nil
}

func (f *fakeLLM) Interpret(context.Context, string, []dto.ChatTurn) (string, model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return "", model.CategoryUnresolved, fmt.Errorf("interpreter unavailable")
	}
	return f.reply, f.suggestion, nil
}

func (f *fakeLLM) Explain(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return "", fmt.Errorf("explainer unavailable")
	}
	return f.explainText, nil
}

func (f *fakeLLM) Summarize(context.Context, *model.Child, []model.TestInstance, map[string][]model.AnswerRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing || f.summarizeErr {
		return "", fmt.Errorf("summarizer unavailable")
	}
	return f.summaryText, nil
}

func (f *fakeLLM) Embed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("embedding unavailable")
}

// fakeFingerprints records synchronously so tests can assert on it.
type fakeFingerprints struct {
	mu      sync.Mutex
	entries []string
}

func (f *fakeFingerprints) Record(_ uint, questionIndex int, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, fmt.Sprintf("%d:%s", questionIndex, text))
}
