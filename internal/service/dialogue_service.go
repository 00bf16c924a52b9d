package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/haimtran/sdq-assistant/internal/dto"
	"github.com/haimtran/sdq-assistant/internal/model"
	"github.com/haimtran/sdq-assistant/internal/normalize"
	"github.com/haimtran/sdq-assistant/internal/questionbank"
	"github.com/haimtran/sdq-assistant/internal/repository"
	"github.com/rs/zerolog/log"
)

// DialogueService drives one respondent's conversation through the question
// sequence. It is stateless between requests: the machine is re-hydrated from
// the persisted TestInstance on every turn, and the position only advances
// when an answer is confirmed into the ledger.
type DialogueService interface {
	Start(ctx context.Context, req dto.StartChatRequest) (*dto.StartChatResponse, error)
	Respond(ctx context.Context, req dto.RespondRequest) (*dto.DialogueTurn, error)
	Confirm(ctx context.Context, req dto.ConfirmOptionRequest) (*dto.DialogueTurn, error)
}

type dialogueService struct {
	childRepo    repository.ChildRepository
	testRepo     repository.TestInstanceRepository
	llm          GeminiLLMService
	fingerprints FingerprintService
}

func NewDialogueService(
	childRepo repository.ChildRepository,
	testRepo repository.TestInstanceRepository,
	llm GeminiLLMService,
	fingerprints FingerprintService,
) DialogueService {
	return &dialogueService{
		childRepo:    childRepo,
		testRepo:     testRepo,
		llm:          llm,
		fingerprints: fingerprints,
	}
}

var startPhrases = []string{"yes", "start", "go", "ready", "begin", "lets"}

func wantsToStart(msg string) bool {
	lower := strings.ToLower(msg)
	for _, phrase := range startPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Start creates a new test instance or resumes the respondent's unsubmitted
// one. The request requires role and email up front; the child is located
// either directly (self-report) or through the sharing code.
func (s *dialogueService) Start(ctx context.Context, req dto.StartChatRequest) (*dto.StartChatResponse, error) {
	if !req.RespondentRole.Valid() {
		return nil, fmt.Errorf("invalid respondent role %q: must be child, parent or teacher", req.RespondentRole)
	}

	var child *model.Child
	var err error
	switch {
	case req.ChildCode != "":
		child, err = s.childRepo.FindByCode(ctx, req.ChildCode)
		if err != nil {
			return nil, fmt.Errorf("failed to look up child by code: %w", err)
		}
		if child == nil {
			return nil, fmt.Errorf("invalid child code, please verify the code")
		}
	case req.ChildID != "":
		child, err = s.childRepo.FindByChildID(ctx, req.ChildID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up child: %w", err)
		}
		if child == nil {
			return nil, fmt.Errorf("child %s not found", req.ChildID)
		}
	default:
		return nil, fmt.Errorf("either child_id or child_code is required")
	}

	if _, err := questionbank.ForAge(child.Age); err != nil {
		return nil, err
	}

	inst, err := s.testRepo.FindIncomplete(ctx, child.ChildID, req.RespondentRole, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check for an existing test: %w", err)
	}
	resumed := inst != nil
	if inst == nil {
		inst = &model.TestInstance{
			TestID:          uuid.NewString(),
			ChildID:         child.ChildID,
			RespondentRole:  req.RespondentRole,
			RespondentEmail: req.Email,
			Age:             child.Age,
			ChildName:       child.Name,
			Position:        model.PositionNotStarted,
		}
		if err := s.testRepo.Create(ctx, inst); err != nil {
			return nil, fmt.Errorf("failed to create test instance: %w", err)
		}
		log.Info().Str("testID", inst.TestID).Str("childID", child.ChildID).Str("role", string(req.RespondentRole)).Msg("Created new test instance")
	} else {
		log.Info().Str("testID", inst.TestID).Int("position", inst.Position).Msg("Resuming existing test instance")
	}

	about := child.Name
	if req.RespondentRole == model.RoleChild {
		about = "yourself"
	}
	return &dto.StartChatResponse{
		TestID:         inst.TestID,
		ChildID:        child.ChildID,
		ChildName:      child.Name,
		Age:            child.Age,
		RespondentRole: req.RespondentRole,
		Message:        fmt.Sprintf("Hello! I'm here to guide you through a short behavioral questionnaire about %s. Shall we begin? Type 'yes' to start.", about),
		QuestionIndex:  inst.Position,
		Resumed:        resumed,
	}, nil
}

// Respond processes one respondent turn. Outcomes are always reported through
// the same tagged DialogueTurn shape.
func (s *dialogueService) Respond(ctx context.Context, req dto.RespondRequest) (*dto.DialogueTurn, error) {
	inst, err := s.testRepo.FindByTestID(ctx, req.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load test %s: %w", req.TestID, err)
	}
	if inst == nil {
		return nil, fmt.Errorf("test %s not found", req.TestID)
	}
	if inst.Submitted {
		return &dto.DialogueTurn{
			TestID:        inst.TestID,
			Message:       "This test has already been submitted. Thank you for your answers!",
			QuestionIndex: inst.Position,
			Completed:     true,
		}, nil
	}

	bank, err := questionbank.ForAge(inst.Age)
	if err != nil {
		return nil, err
	}

	userMsg := ""
	for i := len(req.ChatHistory) - 1; i >= 0; i-- {
		if req.ChatHistory[i].Role == "user" {
			userMsg = strings.TrimSpace(req.ChatHistory[i].Content)
			break
		}
	}
	if userMsg == "" {
		return s.reprompt(inst, bank)
	}

	// NotStarted: only an affirmation moves us to the first question.
	if inst.Position < 0 {
		if !wantsToStart(userMsg) {
			return &dto.DialogueTurn{
				TestID:        inst.TestID,
				Message:       "Whenever you're ready, just say 'yes' and we'll begin.",
				QuestionIndex: inst.Position,
			}, nil
		}
		if err := s.testRepo.SetPosition(ctx, inst.TestID, 0); err != nil {
			return nil, fmt.Errorf("failed to start test: %w", err)
		}
		first, _ := bank.Question(0)
		return &dto.DialogueTurn{
			TestID:        inst.TestID,
			Message:       questionbank.Prompt(questionbank.Format(first, inst.ChildName, inst.RespondentRole)),
			QuestionIndex: 0,
		}, nil
	}

	// AllAnswered: input no longer advances anything; submit is a separate
	// explicit action.
	if inst.Position >= bank.Len() {
		return &dto.DialogueTurn{
			TestID:        inst.TestID,
			Message:       "You've answered every question. When you're ready, submit the test to finish.",
			QuestionIndex: bank.Len(),
			Completed:     true,
		}, nil
	}

	idx := inst.Position
	rawQuestion, err := bank.Question(idx)
	if err != nil {
		return nil, err
	}
	question := questionbank.Format(rawQuestion, inst.ChildName, inst.RespondentRole)

	intent, intentErr := s.llm.ClassifyIntent(ctx, req.ChatHistory)
	if intentErr != nil {
		// Degraded mode: the dialogue survives on direct matching alone.
		log.Warn().Err(intentErr).Str("testID", inst.TestID).Msg("Intent classifier unavailable, degrading to direct matching")
	}

	if intentErr == nil && (intent == model.IntentConfused || intent == model.IntentAskingQuestion) {
		explanation, explErr := s.llm.Explain(ctx, question)
		if explErr != nil {
			log.Warn().Err(explErr).Str("testID", inst.TestID).Msg("Explanation generation failed, restating question")
			explanation = "Let's take it again slowly: " + question
		}
		return &dto.DialogueTurn{
			TestID:          inst.TestID,
			Message:         fmt.Sprintf("No problem! %s\n\nSo, how would you answer: Not True, Somewhat True, or Certainly True?", explanation),
			QuestionIndex:   idx,
			SuggestedOption: string(inst.PendingSuggestion),
		}, nil
	}

	// A direct option in the raw text always wins, even over an active
	// suggestion: the respondent's own words take precedence.
	if option := normalize.Option(userMsg); option != model.CategoryUnresolved {
		s.fingerprints.Record(inst.ID, idx, userMsg)
		return s.confirmAndAdvance(ctx, inst, bank, idx, rawQuestion, option)
	}

	if intentErr == nil && intent == model.IntentConfirmation && inst.PendingSuggestion.Valid() {
		s.fingerprints.Record(inst.ID, idx, userMsg)
		return s.confirmAndAdvance(ctx, inst, bank, idx, rawQuestion, inst.PendingSuggestion)
	}

	if intentErr == nil && intent == model.IntentCorrection && inst.PendingSuggestion.Valid() {
		// The respondent rejected the proposal; drop it and re-interpret.
		if err := s.testRepo.SetPendingSuggestion(ctx, inst.TestID, model.CategoryUnresolved); err != nil {
			return nil, fmt.Errorf("failed to discard suggestion: %w", err)
		}
		inst.PendingSuggestion = model.CategoryUnresolved
	}

	if intentErr == nil {
		reply, suggestion, interpErr := s.llm.Interpret(ctx, question, req.ChatHistory)
		if interpErr == nil && suggestion.Valid() {
			if err := s.testRepo.SetPendingSuggestion(ctx, inst.TestID, suggestion); err != nil {
				return nil, fmt.Errorf("failed to store suggestion: %w", err)
			}
			s.fingerprints.Record(inst.ID, idx, userMsg)
			return &dto.DialogueTurn{
				TestID:          inst.TestID,
				Message:         reply,
				QuestionIndex:   idx,
				SuggestedOption: string(suggestion),
			}, nil
		}
		if interpErr != nil {
			log.Warn().Err(interpErr).Str("testID", inst.TestID).Msg("Interpretation failed, re-prompting")
		}
	}

	return s.reprompt(inst, bank)
}

// Confirm records an explicitly selected option for the current question.
func (s *dialogueService) Confirm(ctx context.Context, req dto.ConfirmOptionRequest) (*dto.DialogueTurn, error) {
	inst, err := s.testRepo.FindByTestID(ctx, req.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load test %s: %w", req.TestID, err)
	}
	if inst == nil {
		return nil, fmt.Errorf("test %s not found", req.TestID)
	}
	if inst.Submitted {
		return &dto.DialogueTurn{
			TestID:        inst.TestID,
			Message:       "This test has already been submitted. Thank you for your answers!",
			QuestionIndex: inst.Position,
			Completed:     true,
		}, nil
	}

	bank, err := questionbank.ForAge(inst.Age)
	if err != nil {
		return nil, err
	}
	if inst.Position < 0 || inst.Position >= bank.Len() {
		return nil, fmt.Errorf("test %s is not awaiting an answer (position %d)", inst.TestID, inst.Position)
	}
	if req.QuestionIndex != inst.Position {
		return nil, fmt.Errorf("confirmation targets question %d but the test is at question %d", req.QuestionIndex, inst.Position)
	}
	option := model.ParseCategory(req.SelectedOption)
	if !option.Valid() {
		return nil, fmt.Errorf("invalid option %q: expected Not True, Somewhat True or Certainly True", req.SelectedOption)
	}

	rawQuestion, err := bank.Question(inst.Position)
	if err != nil {
		return nil, err
	}
	return s.confirmAndAdvance(ctx, inst, bank, inst.Position, rawQuestion, option)
}

// confirmAndAdvance writes the ledger entry and moves to the next question,
// or to the all-answered state.
func (s *dialogueService) confirmAndAdvance(ctx context.Context, inst *model.TestInstance, bank *questionbank.Bank, idx int, rawQuestion string, option model.Category) (*dto.DialogueTurn, error) {
	rec := &model.AnswerRecord{
		TestInstanceID: inst.ID,
		QuestionIndex:  idx,
		QuestionText:   rawQuestion,
		SelectedOption: option,
	}
	if err := s.testRepo.ConfirmAnswer(ctx, inst, rec); err != nil {
		if errors.Is(err, repository.ErrStalePosition) {
			return nil, fmt.Errorf("question %d was already answered in another turn: %w", idx, err)
		}
		return nil, fmt.Errorf("failed to record answer for question %d: %w", idx, err)
	}
	log.Info().Str("testID", inst.TestID).Int("questionIndex", idx).Str("option", string(option)).Msg("Answer confirmed")

	next := idx + 1
	if next >= bank.Len() {
		return &dto.DialogueTurn{
			TestID:        inst.TestID,
			Message:       "Perfect! Thank you for completing the questionnaire. When you're ready, submit the test to finish.",
			QuestionIndex: next,
			Completed:     true,
		}, nil
	}
	nextQuestion, err := bank.Question(next)
	if err != nil {
		return nil, err
	}
	return &dto.DialogueTurn{
		TestID:        inst.TestID,
		Message:       "Got it! Next question:\n\n" + questionbank.Prompt(questionbank.Format(nextQuestion, inst.ChildName, inst.RespondentRole)),
		QuestionIndex: next,
	}, nil
}

func (s *dialogueService) reprompt(inst *model.TestInstance, bank *questionbank.Bank) (*dto.DialogueTurn, error) {
	if inst.Position < 0 {
		return &dto.DialogueTurn{
			TestID:        inst.TestID,
			Message:       "Whenever you're ready, just say 'yes' and we'll begin.",
			QuestionIndex: inst.Position,
		}, nil
	}
	if inst.Position >= bank.Len() {
		return &dto.DialogueTurn{
			TestID:        inst.TestID,
			Message:       "You've answered every question. When you're ready, submit the test to finish.",
			QuestionIndex: bank.Len(),
			Completed:     true,
		}, nil
	}
	rawQuestion, err := bank.Question(inst.Position)
	if err != nil {
		return nil, err
	}
	return &dto.DialogueTurn{
		TestID:        inst.TestID,
		Message:       "I didn't quite catch that. " + questionbank.Prompt(questionbank.Format(rawQuestion, inst.ChildName, inst.RespondentRole)),
		QuestionIndex: inst.Position,
	}, nil
}
