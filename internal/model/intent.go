package model

// Intent labels what the respondent is doing in their latest message, as
// judged by the LLM classifier over the recent conversation.
type Intent string

const (
	IntentDirectAnswer      Intent = "direct_answer"
	IntentConfirmation      Intent = "confirmation"
	IntentCorrection        Intent = "correction"
	IntentConfused          Intent = "confused"
	IntentAskingQuestion    Intent = "asking_question"
	IntentSharingExperience Intent = "sharing_experience"
	IntentUnclear           Intent = "unclear"
)

// Intents is the fixed label set, in the order the classifier prompt lists
// them. The parser scans the raw LLM reply against these labels.
var Intents = []Intent{
	IntentDirectAnswer,
	IntentConfirmation,
	IntentCorrection,
	IntentConfused,
	IntentAskingQuestion,
	IntentSharingExperience,
	IntentUnclear,
}
