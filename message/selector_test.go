package message_test

import (
	"testing"

	"github.com/marcelsud/webhook-recorder/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector(t *testing.T) {
	valid := map[string]message.Selector{
		"":     message.Latest(),
		"1":    message.Index(1),
		" 7 ":  message.Index(7),
		"all":  message.All(),
		"A":    message.All(),
		"old":  message.Old(),
		"o":    message.Old(),
		"2-3":  message.Range(2, 3),
		"4-4":  message.Range(4, 4),
		"1-50": message.Range(1, 50),
	}
	for input, want := range valid {
		t.Run("success - "+input, func(t *testing.T) {
			got, err := message.ParseSelector(input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	invalidIndex := []string{"0", "x", "1.5"}
	for _, input := range invalidIndex {
		t.Run("error - index "+input, func(t *testing.T) {
			_, err := message.ParseSelector(input)
			assert.ErrorIs(t, err, message.ErrInvalidIndex)
		})
	}

	invalidRange := []string{"3-2", "0-2", "a-b", "-3", "2-", "1-2-3"}
	for _, input := range invalidRange {
		t.Run("error - range "+input, func(t *testing.T) {
			_, err := message.ParseSelector(input)
			assert.ErrorIs(t, err, message.ErrInvalidRange)
		})
	}
}

func TestSelector_IsLatest(t *testing.T) {
	assert.True(t, message.Latest().IsLatest())
	assert.False(t, message.Index(2).IsLatest())
	assert.False(t, message.Range(1, 1).IsLatest())
	assert.False(t, message.All().IsLatest())
}

func TestSelector_String(t *testing.T) {
	assert.Equal(t, "3", message.Index(3).String())
	assert.Equal(t, "2-5", message.Range(2, 5).String())
	assert.Equal(t, "all", message.All().String())
	assert.Equal(t, "old", message.Old().String())
}
