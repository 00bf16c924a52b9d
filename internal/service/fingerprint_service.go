package service

import (
	"context"
	"time"

	"github.com/haimtran/sdq-assistant/internal/model"
	"github.com/haimtran/sdq-assistant/internal/repository"
	"github.com/rs/zerolog/log"
)

// FingerprintService records what the respondent actually typed, with an
// embedding when the LLM is reachable. Recording is fire-and-forget: it must
// never gate or delay a dialogue transition, so failures are only logged.
type FingerprintService interface {
	Record(testInstanceID uint, questionIndex int, text string)
}

type fingerprintService struct {
	fingerprintRepo repository.FingerprintRepository
	llm             GeminiLLMService
}

func NewFingerprintService(fingerprintRepo repository.FingerprintRepository, llm GeminiLLMService) FingerprintService {
	return &fingerprintService{fingerprintRepo: fingerprintRepo, llm: llm}
}

func (s *fingerprintService) Record(testInstanceID uint, questionIndex int, text string) {
	if text == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		fp := &model.UtteranceFingerprint{
			TestInstanceID: testInstanceID,
			QuestionIndex:  questionIndex,
			Text:           text,
		}
		embedding, err := s.llm.Embed(ctx, text)
		if err != nil {
			// Text alone is still a useful audit record.
			log.Warn().Err(err).Uint("testInstanceID", testInstanceID).Int("questionIndex", questionIndex).Msg("Fingerprint embedding failed, storing text only")
		} else {
			fp.Embedding = embedding
		}

		if err := s.fingerprintRepo.Create(ctx, fp); err != nil {
			log.Error().Err(err).Uint("testInstanceID", testInstanceID).Int("questionIndex", questionIndex).Msg("Failed to store utterance fingerprint")
		}
	}()
}
