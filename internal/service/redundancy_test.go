package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"physique-coach/internal/domain"
	"physique-coach/internal/llm"
)

var testFamilies = []domain.ExerciseFamily{
	{Name: "leg raises", Exercises: []string{"Hanging Leg Lifts", "Hanging Toes-To-Bar Leg Lifts"}},
	{Name: "push-ups", Exercises: []string{"Standard Push-Ups", "One-Arm Push-Ups"}},
	{Name: "pull-ups", Exercises: []string{"Pull-Ups", "Chin-Ups", "Assisted One-Arm Pull-Ups"}},
}

// answerFor contesta "Yes" solo para los ejercicios indicados.
func answerFor(present ...string) func(int, llm.Request) (string, error) {
	return func(_ int, req llm.Request) (string, error) {
		for _, p := range present {
			if strings.Contains(req.Prompt, "workout below: "+p+"?") {
				return "Yes, it is included.", nil
			}
		}
		return "No.", nil
	}
}

func TestIsAffirmative(t *testing.T) {
	assert.True(t, IsAffirmative("Yes"))
	assert.True(t, IsAffirmative("well, yes"))
	assert.True(t, IsAffirmative("Affirmative."))
	assert.True(t, IsAffirmative("I was there yesterday"))
	assert.False(t, IsAffirmative("No"))
	assert.False(t, IsAffirmative("Yep"))
	assert.False(t, IsAffirmative("YES"))
}

func TestDetectFlagsWholeFamilyOnSingleMatch(t *testing.T) {
	mock := &llm.MockClient{Respond: answerFor("Chin-Ups")}
	d := NewRedundancyDetector(mock, zap.NewNop())

	got, err := d.Detect(context.Background(), "plan text", testFamilies)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Pull-Ups", "Chin-Ups", "Assisted One-Arm Pull-Ups"}, got)
	// Sin cortocircuito: se consultan los siete ejercicios.
	assert.Equal(t, 7, mock.CallCount())
}

func TestDetectChecksFamiliesIndependently(t *testing.T) {
	mock := &llm.MockClient{Respond: answerFor("Hanging Leg Lifts", "One-Arm Push-Ups")}
	d := NewRedundancyDetector(mock, zap.NewNop())

	got, err := d.Detect(context.Background(), "plan", testFamilies)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hanging Leg Lifts", "Hanging Toes-To-Bar Leg Lifts", "Standard Push-Ups", "One-Arm Push-Ups"}, got)
}

func TestDetectNoneFound(t *testing.T) {
	mock := &llm.MockClient{Response: "No, it is not."}
	d := NewRedundancyDetector(mock, zap.NewNop())

	got, err := d.Detect(context.Background(), "plan", testFamilies)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetectQuestionFormat(t *testing.T) {
	mock := &llm.MockClient{Response: "No"}
	d := NewRedundancyDetector(mock, zap.NewNop())
	_, err := d.Detect(context.Background(), "Day 1: squats", testFamilies[:1])
	require.NoError(t, err)

	reqs := mock.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "Is the following exercise already in the workout below: Hanging Leg Lifts?  Please answer yes or no.\n\nDay 1: squats", reqs[0].Prompt)
	assert.Nil(t, reqs[0].Image)
}

func TestDetectDeduplicatesSharedNames(t *testing.T) {
	families := []domain.ExerciseFamily{
		{Name: "a", Exercises: []string{"Dips", "Pull-Ups"}},
		{Name: "b", Exercises: []string{"Pull-Ups", "Rows"}},
	}
	mock := &llm.MockClient{Response: "yes"}
	got, err := NewRedundancyDetector(mock, zap.NewNop()).Detect(context.Background(), "plan", families)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dips", "Pull-Ups", "Rows"}, got)
}

func TestDetectPropagatesErrors(t *testing.T) {
	mock := &llm.MockClient{Err: llm.ErrAgentUnavailable}
	_, err := NewRedundancyDetector(mock, zap.NewNop()).Detect(context.Background(), "plan", testFamilies)
	assert.ErrorIs(t, err, llm.ErrAgentUnavailable)
}

func TestRewriteSkippedWithoutRedundancy(t *testing.T) {
	mock := &llm.MockClient{Response: "rewritten"}
	out, rewritten, err := NewPlanRewriter(mock, zap.NewNop()).Rewrite(context.Background(), "draft", nil)
	require.NoError(t, err)
	assert.False(t, rewritten)
	assert.Equal(t, "draft", out)
	assert.Equal(t, 0, mock.CallCount())
}

func TestRewriteUsesWriterAgent(t *testing.T) {
	mock := &llm.MockClient{Response: "rewritten"}
	out, rewritten, err := NewPlanRewriter(mock, zap.NewNop()).Rewrite(context.Background(), "draft plan", []string{"Pull-Ups", "Chin-Ups"})
	require.NoError(t, err)
	assert.True(t, rewritten)
	assert.Equal(t, "rewritten", out)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, llm.AgentWriter, reqs[0].Agent)
	assert.True(t, strings.HasPrefix(reqs[0].Prompt, "The athlete is already doing the following exercises: Pull-Ups, Chin-Ups."))
	assert.True(t, strings.HasSuffix(reqs[0].Prompt, "Replace exercises in the following workout:\n\ndraft plan"))
}

func TestRewriteError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := NewPlanRewriter(&llm.MockClient{Err: boom}, zap.NewNop()).Rewrite(context.Background(), "d", []string{"x"})
	assert.ErrorIs(t, err, boom)
}
