package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"physique-coach/internal/domain"
	"physique-coach/internal/llm"
)

const draftWithLegLifts = "Day 1: Hanging Leg Lifts 3x10, Goblet Squats 3x12"

// scriptedAggregation responde segun el tipo de prompt recibido.
func scriptedAggregation(draft string, present ...string) func(int, llm.Request) (string, error) {
	answers := answerFor(present...)
	return func(call int, req llm.Request) (string, error) {
		switch {
		case strings.HasPrefix(req.Prompt, "summarize the four categories"):
			return "1. calves 3/10\n2. neck 4/10\n3. biceps 4/10\n4. posture 5/10", nil
		case strings.HasPrefix(req.Prompt, "generate a set of positive affirmations"):
			return "I am getting stronger every day.", nil
		case strings.HasPrefix(req.Prompt, "generate a set of customized workouts"):
			return draft, nil
		case strings.HasPrefix(req.Prompt, "Is the following exercise"):
			return answers(call, req)
		case strings.HasPrefix(req.Prompt, "The athlete is already doing"):
			return "Day 1: Ice-Cream Makers 3x5, Goblet Squats 3x12", nil
		}
		return "", nil
	}
}

func newTestAggregator(mock llm.LLMClient) *Aggregator {
	return NewAggregator(mock, NewRedundancyDetector(mock, zap.NewNop()), NewPlanRewriter(mock, zap.NewNop()), testFamilies, zap.NewNop())
}

func sampleTranscript() *domain.Transcript {
	tr := domain.NewTranscript()
	tr.Append(domain.TranscriptEntry{CategoryID: "calves", Label: "calves", Summary: "3/10"})
	tr.Append(domain.TranscriptEntry{CategoryID: "neck_and_traps", Label: "neck", Summary: "4/10"})
	return tr
}

func TestAggregateRewritesWhenFamilyPresent(t *testing.T) {
	mock := &llm.MockClient{Respond: scriptedAggregation(draftWithLegLifts, "Hanging Leg Lifts")}
	res, err := newTestAggregator(mock).Aggregate(context.Background(), sampleTranscript())
	require.NoError(t, err)

	assert.True(t, res.Rewritten)
	assert.Equal(t, draftWithLegLifts, res.DraftPlan)
	assert.NotEqual(t, res.DraftPlan, res.FinalPlan)
	assert.Equal(t, "Day 1: Ice-Cream Makers 3x5, Goblet Squats 3x12", res.FinalPlan)
	assert.ElementsMatch(t, []string{"Hanging Leg Lifts", "Hanging Toes-To-Bar Leg Lifts"}, res.RedundantExercises)
	assert.Equal(t, "I am getting stronger every day.", res.Affirmations)
}

func TestAggregateKeepsDraftWhenNothingRedundant(t *testing.T) {
	draft := "Day 1: Nordic Curls 3x6\nDay 2: Farmer Carries"
	mock := &llm.MockClient{Respond: scriptedAggregation(draft)}
	res, err := newTestAggregator(mock).Aggregate(context.Background(), sampleTranscript())
	require.NoError(t, err)

	assert.False(t, res.Rewritten)
	assert.Empty(t, res.RedundantExercises)
	assert.Equal(t, draft, res.FinalPlan)
}

func TestAggregateCallOrderAndAgents(t *testing.T) {
	mock := &llm.MockClient{Respond: scriptedAggregation("plan")}
	_, err := newTestAggregator(mock).Aggregate(context.Background(), sampleTranscript())
	require.NoError(t, err)

	reqs := mock.Requests()
	require.Len(t, reqs, 3+7)
	assert.Equal(t, llm.AgentVision, reqs[0].Agent)
	assert.True(t, strings.HasSuffix(reqs[0].Prompt, "\n\ncalves : \n\n3/10\n\nneck : \n\n4/10"))
	assert.Equal(t, llm.AgentWriter, reqs[1].Agent)
	assert.Contains(t, reqs[1].Prompt, "1. calves 3/10")
	assert.Equal(t, llm.AgentWriter, reqs[2].Agent)
	assert.True(t, strings.HasPrefix(reqs[2].Prompt, "generate a set of customized workouts"))
}

func TestAggregateRequiresTranscript(t *testing.T) {
	mock := &llm.MockClient{Response: "x"}
	_, err := newTestAggregator(mock).Aggregate(context.Background(), domain.NewTranscript())
	assert.ErrorIs(t, err, ErrEmptyTranscript)
	assert.Equal(t, 0, mock.CallCount())
}

func TestAggregateStopsOnTransportFailure(t *testing.T) {
	mock := &llm.MockClient{Respond: func(call int, req llm.Request) (string, error) {
		if call == 3 {
			return "", llm.ErrAgentUnavailable
		}
		return "text", nil
	}}
	_, err := newTestAggregator(mock).Aggregate(context.Background(), sampleTranscript())
	assert.ErrorIs(t, err, llm.ErrAgentUnavailable)
	assert.Equal(t, 3, mock.CallCount())
}
