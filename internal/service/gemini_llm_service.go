package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/haimtran/sdq-assistant/config"
	"github.com/haimtran/sdq-assistant/internal/dto"
	"github.com/haimtran/sdq-assistant/internal/model"
	"github.com/haimtran/sdq-assistant/internal/normalize"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// historyWindow is how many recent turns the classifier and interpreter see.
const historyWindow = 4

// GeminiLLMService is the text-understanding collaborator. Every method is
// best-effort: callers own the deterministic fallback when a call errors.
type GeminiLLMService interface {
	ClassifyIntent(ctx context.Context, history []dto.ChatTurn) (model.Intent, error)
	Interpret(ctx context.Context, question string, history []dto.ChatTurn) (reply string, suggestion model.Category, err error)
	Explain(ctx context.Context, question string) (string, error)
	Summarize(ctx context.Context, child *model.Child, tests []model.TestInstance, answers map[string][]model.AnswerRecord) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

type geminiLLMService struct {
	chat      *genai.GenerativeModel
	embedding *genai.EmbeddingModel
	cfg       *config.Config
}

func NewGeminiLLMService(cfg *config.Config) (GeminiLLMService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. GeminiLLMService will be non-functional and dialogue will degrade to direct matching.")
		return &geminiLLMService{cfg: cfg}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiLLMService{
		chat:      client.GenerativeModel("gemini-1.5-flash"),
		embedding: client.EmbeddingModel("text-embedding-004"),
		cfg:       cfg,
	}, nil
}

func (s *geminiLLMService) generate(ctx context.Context, prompt string) (string, error) {
	if s.chat == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}
	resp, err := s.chat.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return out, nil
}

func formatHistory(history []dto.ChatTurn) string {
	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	var sb strings.Builder
	for _, turn := range history[start:] {
		sb.WriteString(capitalize(turn.Role))
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// capitalize uppercases the first letter of an ASCII role label.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lastUserMessage(history []dto.ChatTurn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			return history[i].Content
		}
	}
	return ""
}

// ClassifyIntent labels the respondent's latest message against the fixed
// intent set. The raw reply is scanned for a known label; anything else maps
// to unclear rather than failing the turn.
func (s *geminiLLMService) ClassifyIntent(ctx context.Context, history []dto.ChatTurn) (model.Intent, error) {
	var sb strings.Builder
	sb.WriteString("You are an intent classification expert.\n\n")
	sb.WriteString("Analyze the user's latest message in the context of their conversation with the assistant and classify their intent as one of:\n")
	sb.WriteString("- direct_answer: a clear choice like \"Not True\", \"Somewhat True\", or \"Certainly True\"\n")
	sb.WriteString("- confirmation: the user agrees with the assistant's suggestion or confirms a choice\n")
	sb.WriteString("- correction: the user pushes back, suggests a different answer, or clarifies they disagree\n")
	sb.WriteString("- confused: the user asks for clarification or expresses uncertainty\n")
	sb.WriteString("- asking_question: the user asks something about the question itself\n")
	sb.WriteString("- sharing_experience: the user shares a real-life story, behavior, or context\n")
	sb.WriteString("- unclear: the intent is ambiguous\n\n")
	sb.WriteString("Do not assume the user agrees unless they clearly confirm. If the user adds new information or pushes back slightly (e.g. says \"but\", \"actually\", or offers more context), label it as correction.\n\n")
	sb.WriteString("Here is the conversation:\n")
	sb.WriteString(formatHistory(history))
	sb.WriteString(fmt.Sprintf("\nUser's latest message: %q\n\n", lastUserMessage(history)))
	sb.WriteString("What is the user's intent? Reply with just the label (e.g., correction).")

	raw, err := s.generate(ctx, sb.String())
	if err != nil {
		return model.IntentUnclear, err
	}
	lower := strings.ToLower(raw)
	for _, label := range model.Intents {
		if strings.Contains(lower, string(label)) {
			return label, nil
		}
	}
	return model.IntentUnclear, nil
}

// Interpret turns a descriptive answer into a warm prose reply plus a
// proposed option. The suggestion is recovered deterministically from the
// reply text; if it cannot be pinned down the caller re-prompts.
func (s *geminiLLMService) Interpret(ctx context.Context, question string, history []dto.ChatTurn) (string, model.Category, error) {
	var sb strings.Builder
	sb.WriteString("You are conducting a behavioral questionnaire (SDQ) through a warm, natural conversation.\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- NEVER write 'User:' or 'Assistant:' or simulate users.\n")
	sb.WriteString("- NEVER assume what the user says next or answer on their behalf.\n\n")
	sb.WriteString("Response style:\n")
	sb.WriteString("- Respond in 1-2 sentences in a natural, warm tone.\n")
	sb.WriteString("- Interpret the user's last answer and suggest exactly one of: Not True / Somewhat True / Certainly True.\n")
	sb.WriteString("- End every message with: \"Does that sound right?\" and wait for confirmation.\n\n")
	sb.WriteString("Mapping rules:\n")
	sb.WriteString("- 'Never', 'rarely', 'hardly ever' -> Not True\n")
	sb.WriteString("- 'Sometimes', 'occasionally', 'now and then' -> Somewhat True\n")
	sb.WriteString("- 'Always', 'very often', 'frequently' -> Certainly True\n\n")
	sb.WriteString(fmt.Sprintf("The current question is: %q\n\n", question))
	sb.WriteString(formatHistory(history))
	sb.WriteString("\nNow based on the user's last response, what would you say? Give a brief explanation and end with: \"Does that sound right?\"")

	reply, err := s.generate(ctx, sb.String())
	if err != nil {
		return "", model.CategoryUnresolved, err
	}
	// No silent default here: an unplaceable reply surfaces as Unresolved
	// and the dialogue re-prompts.
	return reply, normalize.Option(reply), nil
}

// Explain rephrases a question a respondent did not understand.
func (s *geminiLLMService) Explain(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(
		"A respondent didn't understand this questionnaire item: %q\n"+
			"Explain in 1-2 friendly sentences what this behavior would look like in real life. "+
			"Use concrete, everyday examples. Avoid repeating the question directly.",
		question)
	return s.generate(ctx, prompt)
}

// Summarize produces the psychologist-style narrative over all three
// respondents' results. Callers fall back to a deterministic summary on error.
func (s *geminiLLMService) Summarize(ctx context.Context, child *model.Child, tests []model.TestInstance, answers map[string][]model.AnswerRecord) (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are a psychologist analyzing SDQ test results for %s, a %d-year-old child.\n\n", child.Name, child.Age))
	for _, test := range tests {
		sb.WriteString(fmt.Sprintf("%s's interpretation:\n", capitalize(string(test.RespondentRole))))
		if test.Scores != nil {
			sb.WriteString(fmt.Sprintf("- SDQ Score: %d/%d\n", test.Scores.TotalScore, test.Scores.MaxPossibleScore))
		}
		recs := answers[test.TestID]
		if len(recs) > 5 {
			recs = recs[:5]
		}
		for _, rec := range recs {
			sb.WriteString(fmt.Sprintf("- %s -> %s\n", rec.QuestionText, rec.SelectedOption))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Now generate a professional psychologist-style summary capturing insights, behavioral patterns, and emotional well-being.\n")
	sb.WriteString("Keep it formal, insightful, and actionable.")
	return s.generate(ctx, sb.String())
}

// Embed returns an embedding vector for the raw utterance, used only for the
// best-effort fingerprint trail.
func (s *geminiLLMService) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.embedding == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}
	res, err := s.embedding.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding error: %w", err)
	}
	if res.Embedding == nil {
		return nil, fmt.Errorf("gemini returned no embedding")
	}
	return res.Embedding.Values, nil
}
