package questionbank

import (
	"testing"

	"github.com/haimtran/sdq-assistant/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForAgeBandSelection(t *testing.T) {
	young, err := ForAge(3)
	require.NoError(t, err)
	middle, err := ForAge(7)
	require.NoError(t, err)
	teen, err := ForAge(14)
	require.NoError(t, err)

	q17young, _ := young.Question(17)
	q17middle, _ := middle.Question(17)
	q17teen, _ := teen.Question(17)
	assert.Equal(t, "Often argumentative with adults", q17young)
	assert.Equal(t, "Often lies or cheats", q17middle)
	assert.Equal(t, "Often lies or cheats", q17teen)

	q3teen, _ := teen.Question(3)
	assert.Contains(t, q3teen, "youth")
}

func TestForAgeBoundaries(t *testing.T) {
	for _, age := range []int{2, 4, 5, 10, 11, 17} {
		_, err := ForAge(age)
		assert.NoError(t, err, "age %d", age)
	}
	for _, age := range []int{0, 1, 18, 42} {
		_, err := ForAge(age)
		assert.Error(t, err, "age %d", age)
	}
}

func TestEveryBandHas25Questions(t *testing.T) {
	for _, age := range []int{3, 8, 15} {
		bank, err := ForAge(age)
		require.NoError(t, err)
		assert.Equal(t, 25, bank.Len())
		assert.Equal(t, 50, bank.MaxScore())
	}
}

func TestQuestionIndexOutOfRange(t *testing.T) {
	bank, err := ForAge(8)
	require.NoError(t, err)
	_, err = bank.Question(-1)
	assert.Error(t, err)
	_, err = bank.Question(25)
	assert.Error(t, err)
}

func TestReversedItems(t *testing.T) {
	for _, idx := range []int{6, 13, 19, 20, 24} {
		assert.True(t, IsReversed(idx), "index %d", idx)
	}
	for _, idx := range []int{0, 1, 5, 12, 23} {
		assert.False(t, IsReversed(idx), "index %d", idx)
	}
}

func TestSubscalesCoverFiveItemsEach(t *testing.T) {
	require.Len(t, Subscales, 5)
	for name, indices := range Subscales {
		assert.Len(t, indices, 5, "subscale %s", name)
		for _, idx := range indices {
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, 25)
		}
	}
}

func TestFormatThirdPerson(t *testing.T) {
	assert.Equal(t, "Is Anna considerate of other people's feelings?",
		Format("Considerate of other people's feelings", "Anna", model.RoleParent))
	assert.Equal(t, "How often does Anna loses temper?",
		Format("Often loses temper", "Anna", model.RoleTeacher))
	assert.Equal(t, "Does Anna have at least one good friend?",
		Format("Has at least one good friend", "Anna", model.RoleParent))
	assert.Equal(t, "Does Anna steal from home, school or elsewhere?",
		Format("Steals from home, school or elsewhere", "Anna", model.RoleTeacher))
}

func TestFormatFirstPerson(t *testing.T) {
	assert.Equal(t, "How often are you considerate of other people's feelings?",
		Format("Considerate of other people's feelings", "Anna", model.RoleChild))
	assert.Equal(t, "How often do you have at least one good friend?",
		Format("Has at least one good friend", "Anna", model.RoleChild))
}

func TestPromptAppendsOptions(t *testing.T) {
	out := Prompt("Is Anna kind to younger children?")
	assert.Contains(t, out, "Is Anna kind to younger children?")
	assert.Contains(t, out, "Not True / Somewhat True / Certainly True")
}
