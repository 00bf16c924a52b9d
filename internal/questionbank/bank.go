// Package questionbank holds the immutable, age-banded SDQ item sets plus the
// per-item scoring metadata (reverse flags, subscale membership). Lookups are
// pure; nothing here touches storage or the network.
package questionbank

import (
	"fmt"
	"strings"

	"github.com/haimtran/sdq-assistant/internal/model"
)

const questionsPerBand = 25

var questions2to4 = []string{
	"Considerate of other people's feelings",
	"Restless, overactive, cannot stay still for long",
	"Often complains of headaches, stomach-aches or sickness",
	"Shares readily with other children, for example toys, treats, pencils",
	"Often loses temper",
	"Rather solitary, prefers to play alone",
	"Generally well behaved, usually does what adults request",
	"Many worries or often seems worried",
	"Helpful if someone is hurt, upset or feeling ill",
	"Constantly fidgeting or squirming",
	"Has at least one good friend",
	"Often fights with other children or bullies them",
	"Often unhappy, depressed or tearful",
	"Generally liked by other children",
	"Easily distracted, concentration wanders",
	"Nervous or clingy in new situations, easily loses confidence",
	"Kind to younger children",
	"Often argumentative with adults",
	"Picked on or bullied by other children",
	"Often offers to help others (parents, teachers, other children)",
	"Can stop and think things out before acting",
	"Can be spiteful to others",
	"Gets along better with adults than with other children",
	"Many fears, easily scared",
	"Good attention span, sees work through to the end",
}

var questions5to10 = []string{
	"Considerate of other people's feelings",
	"Restless, overactive, cannot stay still for long",
	"Often complains of headaches, stomach-aches or sickness",
	"Shares readily with other children, for example toys, treats, pencils",
	"Often loses temper",
	"Rather solitary, prefers to play alone",
	"Generally well behaved, usually does what adults request",
	"Many worries or often seems worried",
	"Helpful if someone is hurt, upset or feeling ill",
	"Constantly fidgeting or squirming",
	"Has at least one good friend",
	"Often fights with other children or bullies them",
	"Often unhappy, depressed or tearful",
	"Generally liked by other children",
	"Easily distracted, concentration wanders",
	"Nervous or clingy in new situations, easily loses confidence",
	"Kind to younger children",
	"Often lies or cheats",
	"Picked on or bullied by other children",
	"Often offers to help others (parents, teachers, other children)",
	"Thinks things out before acting",
	"Steals from home, school or elsewhere",
	"Gets along better with adults than with other children",
	"Many fears, easily scared",
	"Good attention span, sees work through to the end",
}

var questions11to17 = []string{
	"Considerate of other people's feelings",
	"Restless, overactive, cannot stay still for long",
	"Often complains of headaches, stomach-aches or sickness",
	"Shares readily with other youth, for example books, games, food",
	"Often loses temper",
	"Would rather be alone than with other youth",
	"Generally well behaved, usually does what adults request",
	"Many worries or often seems worried",
	"Helpful if someone is hurt, upset or feeling ill",
	"Constantly fidgeting or squirming",
	"Has at least one good friend",
	"Often fights with other youth or bullies them",
	"Often unhappy, depressed or tearful",
	"Generally liked by other youth",
	"Easily distracted, concentration wanders",
	"Nervous in new situations, easily loses confidence",
	"Kind to younger children",
	"Often lies or cheats",
	"Picked on or bullied by other youth",
	"Often offers to help others (parents, teachers, children)",
	"Thinks things out before acting",
	"Steals from home, school or elsewhere",
	"Gets along better with adults than with other youth",
	"Many fears, easily scared",
	"Good attention span, sees work through to the end",
}

// reverseIndices are the positively-worded items whose option-to-score
// mapping is inverted (Not True scores 2, Certainly True scores 0).
var reverseIndices = map[int]bool{6: true, 13: true, 19: true, 20: true, 24: true}

// Subscales maps each SDQ subscale to the 0-based item indices it sums over.
var Subscales = map[string][]int{
	"emotional":     {2, 7, 12, 15, 23},
	"conduct":       {4, 6, 11, 17, 21},
	"hyperactivity": {1, 9, 14, 20, 24},
	"peer":          {5, 10, 13, 18, 23},
	"prosocial":     {0, 3, 8, 16, 19},
}

// Bank is the ordered question set for one age band.
type Bank struct {
	questions []string
}

// ForAge selects the question band covering the given age.
func ForAge(age int) (*Bank, error) {
	switch {
	case age >= 2 && age <= 4:
		return &Bank{questions: questions2to4}, nil
	case age >= 5 && age <= 10:
		return &Bank{questions: questions5to10}, nil
	case age >= 11 && age <= 17:
		return &Bank{questions: questions11to17}, nil
	default:
		return nil, fmt.Errorf("unsupported age %d: questionnaire covers ages 2-17", age)
	}
}

func (b *Bank) Len() int { return len(b.questions) }

// Question returns the raw item text at the given 0-based index.
func (b *Bank) Question(i int) (string, error) {
	if i < 0 || i >= len(b.questions) {
		return "", fmt.Errorf("question index %d out of range [0, %d)", i, len(b.questions))
	}
	return b.questions[i], nil
}

// IsReversed reports whether the item at index i is reverse-scored.
func IsReversed(i int) bool { return reverseIndices[i] }

// MaxScore is the highest total a fully answered band can reach.
func (b *Bank) MaxScore() int { return 2 * len(b.questions) }

// Format turns a raw item into the question actually asked, phrased in first
// person for the child's own test and in third person otherwise.
func Format(question, childName string, role model.RespondentRole) string {
	if role == model.RoleChild {
		return "How often " + toFirstPerson(question)
	}
	lower := strings.ToLower(question)
	switch {
	case strings.HasPrefix(question, "Often "):
		return fmt.Sprintf("How often does %s %s?", childName, lower[6:])
	case strings.HasPrefix(question, "Has "):
		return fmt.Sprintf("Does %s have %s?", childName, lower[4:])
	case strings.HasPrefix(question, "Gets "):
		return fmt.Sprintf("Does %s get %s?", childName, lower[5:])
	case strings.HasPrefix(question, "Steals "):
		return fmt.Sprintf("Does %s steal %s?", childName, lower[7:])
	case strings.HasPrefix(question, "Shares "):
		return fmt.Sprintf("Does %s share %s?", childName, lower[7:])
	default:
		return fmt.Sprintf("Is %s %s?", childName, lower)
	}
}

func toFirstPerson(question string) string {
	lower := strings.ToLower(question)
	switch {
	case strings.HasPrefix(lower, "often "):
		return "do you " + lower[6:] + "?"
	case strings.HasPrefix(lower, "has "):
		return "do you have " + lower[4:] + "?"
	case strings.HasPrefix(lower, "gets "):
		return "do you get " + lower[5:] + "?"
	case strings.HasPrefix(lower, "steals "):
		return "do you steal " + lower[7:] + "?"
	case strings.HasPrefix(lower, "shares "):
		return "do you share " + lower[7:] + "?"
	default:
		return "are you " + lower + "?"
	}
}

// Prompt appends the options line to a formatted question.
func Prompt(formattedQuestion string) string {
	return formattedQuestion + "\nOptions: Not True / Somewhat True / Certainly True"
}
