// Package assistant answers chat messages with canned coaching replies
// chosen by keyword.
package assistant

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrEmptyMessage = errors.New("message is required")

const MaxMessageLength = 2000

type Topic string

const (
	TopicGoals      Topic = "goals"
	TopicTasks      Topic = "tasks"
	TopicStress     Topic = "stress"
	TopicMotivation Topic = "motivation"
	TopicReflection Topic = "reflection"
	TopicMentor     Topic = "mentor"
	TopicGreeting   Topic = "greeting"
	TopicGeneral    Topic = "general"
)

type Reply struct {
	Topic       Topic    `json:"topic"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

type rule struct {
	topic    Topic
	keywords []string
	reply    Reply
}

// Rules are checked in order; the first keyword hit wins.
var rules = []rule{
	{
		topic:    TopicGoals,
		keywords: []string{"goal"},
		reply: Reply{
			Message: "Clear goals make progress visible. Try breaking your goal into smaller milestones you can finish this week.",
			Suggestions: []string{
				"Write down one goal you want to reach this month",
				"Split it into three concrete steps",
				"Set a target date for the first step",
			},
		},
	},
	{
		topic:    TopicTasks,
		keywords: []string{"task", "todo", "to-do"},
		reply: Reply{
			Message: "Start with the task that unblocks the most other work, and keep today's list short.",
			Suggestions: []string{
				"Pick your top three tasks for today",
				"Link each task to one of your goals",
				"Mark finished tasks complete to track momentum",
			},
		},
	},
	{
		topic:    TopicStress,
		keywords: []string{"stress", "anxious", "anxiety", "overwhelm"},
		reply: Reply{
			Message: "It sounds like a lot is on your plate. Pause for a moment and take a few slow breaths before deciding what comes next.",
			Suggestions: []string{
				"Log how you feel today in your daily log",
				"Move one non-urgent task to later this week",
				"Talk it through with your mentor",
			},
		},
	},
	{
		topic:    TopicMotivation,
		keywords: []string{"motivat"},
		reply: Reply{
			Message: "Motivation follows action. Finishing one small step is often enough to get moving again.",
			Suggestions: []string{
				"Choose a task that takes under ten minutes",
				"Review the goals you have already completed",
			},
		},
	},
	{
		topic:    TopicReflection,
		keywords: []string{"reflect", "journal"},
		reply: Reply{
			Message: "Reflection turns experience into insight. Write about what went well and what you would change.",
			Suggestions: []string{
				"What was the best part of your week?",
				"What is one thing you learned about yourself?",
			},
		},
	},
	{
		topic:    TopicMentor,
		keywords: []string{"mentor", "coach"},
		reply: Reply{
			Message: "A mentor can offer perspective and accountability. You control exactly which of your data they can see.",
			Suggestions: []string{
				"Check your pending mentor invitations",
				"Review what data you share with your mentor",
			},
		},
	},
	{
		topic:    TopicGreeting,
		keywords: []string{"hello", "hi", "hey", "good morning", "good evening"},
		reply: Reply{
			Message: "Hi! I'm your COM:PASS assistant. Ask me about your goals, tasks, stress, motivation or reflections.",
			Suggestions: []string{
				"How do I set a good goal?",
				"I feel stressed about work",
			},
		},
	},
}

var fallback = Reply{
	Topic:   TopicGeneral,
	Message: "I'm here to help you stay on course. Tell me about a goal, a task, or how you are feeling today.",
	Suggestions: []string{
		"Help me plan my week",
		"I need some motivation",
		"How do I reflect on my progress?",
	},
}

var repliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "compass_assistant_replies_total",
	Help: "Assistant chat replies by matched topic",
}, []string{"topic"})

// Respond picks the canned reply for message.
func Respond(message string) (Reply, error) {
	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}

	words := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r == '-')
	})

	reply := fallback
	for _, rl := range rules {
		if matches(text, words, rl.keywords) {
			reply = rl.reply
			reply.Topic = rl.topic
			break
		}
	}

	repliesTotal.WithLabelValues(string(reply.Topic)).Inc()
	return reply, nil
}

// matches treats short keywords as whole words so "hi" does not match
// "this"; longer keywords match as substrings to catch word stems.
func matches(text string, words []string, keywords []string) bool {
	for _, kw := range keywords {
		if len(kw) <= 3 {
			for _, w := range words {
				if w == kw {
					return true
				}
			}
			continue
		}
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
