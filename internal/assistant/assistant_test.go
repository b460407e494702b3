package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespond(t *testing.T) {
	tests := []struct {
		message string
		want    Topic
	}{
		{"How should I set my goals?", TopicGoals},
		{"I have too many tasks", TopicTasks},
		{"I'm feeling anxious about tomorrow", TopicStress},
		{"So much STRESS at work", TopicStress},
		{"I lack motivation", TopicMotivation},
		{"Nothing motivates me lately", TopicMotivation},
		{"Can you help me journal?", TopicReflection},
		{"What does a mentor do?", TopicMentor},
		{"hi there", TopicGreeting},
		{"Hello!", TopicGreeting},
		{"this is something else", TopicGeneral},
		{"what's the weather", TopicGeneral},
		// goal rule comes first
		{"stressed about my goal", TopicGoals},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			reply, err := Respond(tt.message)
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply.Topic)
			assert.NotEmpty(t, reply.Message)
			assert.NotEmpty(t, reply.Suggestions)
		})
	}
}

func TestRespond_Empty(t *testing.T) {
	_, err := Respond("   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}
