package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitIngredients(t *testing.T) {
	assert.Equal(t, []string{"eggs", "milk", "tomato", "番茄", "雞蛋"}, SplitIngredients("eggs, milk，tomato\n 番茄、雞蛋 , "))
	assert.Empty(t, SplitIngredients(" , ,\n"))
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID(GenerateUUID()))
	assert.False(t, IsUUID("not-a-session"))
	assert.False(t, IsUUID(""))
}
