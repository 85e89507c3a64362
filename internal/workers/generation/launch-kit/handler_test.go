package launchkit

import (
	"context"
	"fmt"
	"testing"

	"coach-generation/internal/common/camunda/camundatest"
	svcerrors "coach-generation/internal/common/errors"
	"coach-generation/internal/common/logger"
	"coach-generation/internal/llm"
	"coach-generation/internal/llm/providertest"
	"coach-generation/internal/llm/replay"
	"coach-generation/internal/store"
	"coach-generation/internal/workers/generation"
	"coach-generation/internal/workers/generation/generationtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kit(dayNumbers ...int) map[string]interface{} {
	days := make([]interface{}, 0, len(dayNumbers))
	for _, n := range dayNumbers {
		days = append(days, map[string]interface{}{
			"day_no":           n,
			"theme":            fmt.Sprintf("第%d天主题", n),
			"draft_or_outline": "开篇：痛点场景\n主体：3个要点\n结尾：下期预告",
			"opening_text":     "很多人问我是怎么...",
		})
	}
	return map[string]interface{}{
		"days":                days,
		"sustainable_columns": []interface{}{"深度干货类", "观点解读类", "互动话题类"},
		"growth_experiment_suggestion": []interface{}{map[string]interface{}{
			"name":           "发布时间测试",
			"hypothesis":     "不同发布时间对互动率有显著影响",
			"variables":      []interface{}{"发布时间", "内容类型"},
			"duration":       "7天",
			"success_metric": "互动率提升30%",
		}},
	}
}

func week() map[string]interface{} { return kit(1, 2, 3, 4, 5, 6, 7) }

func newHandler(t *testing.T, h *generationtest.Harness) *Handler {
	t.Helper()
	handler, err := NewHandler(HandlerOptions{
		HandlerOptions: generation.HandlerOptions{Engine: h.Engine, Logger: logger.NewTestLogger(t)},
	})
	require.NoError(t, err)
	return handler
}

func TestExecute_FreshPlan(t *testing.T) {
	h := generationtest.New(t, providertest.Respond(week()))

	output, err := newHandler(t, h).Execute(context.Background(), &Input{
		UserID:         "user-1",
		ConstitutionID: "constitution-2",
		Context: &generation.Context{
			Identity:     &generation.IdentityContext{ID: "identity-1", ContentPillars: []string{"职场成长"}},
			Constitution: &generation.ConstitutionContext{ID: "constitution-1", NarrativeMainline: "长期主义"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, output.Result.Days, 7)
	assert.Equal(t, "互动率提升30%", output.Result.GrowthExperimentSuggestion[0].SuccessMetric)

	payload := h.Provider.Calls()[0].PayloadObject()
	assert.Equal(t, "identity-1", payload["identity_model_id"])
	assert.Equal(t, "constitution-2", payload["constitution_id"], "explicit id wins over context")
	assert.Equal(t, map[string]interface{}{}, payload["hints"])
	assert.Equal(t, []interface{}{}, payload["preferred_columns"])
}

func TestExecute_ShuffledDaysAreAccepted(t *testing.T) {
	h := generationtest.New(t, providertest.Respond(kit(7, 6, 5, 4, 3, 2, 1)))
	output, err := newHandler(t, h).Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, 7, output.Result.Days[0].DayNo)
}

func TestExecute_WrongDayCountFailsLoudly(t *testing.T) {
	h := generationtest.New(t,
		providertest.Respond(kit(1, 2, 3, 4, 5, 6)),
		providertest.Respond(kit(1, 2, 3, 4, 5, 6)),
		providertest.Respond(kit(1, 2, 3, 4, 5, 6)),
	)

	_, err := newHandler(t, h).Execute(context.Background(), &Input{UserID: "user-1"})
	require.Error(t, err)

	svcErr, ok := svcerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, svcerrors.ErrCodeSchemaValidationFailed, svcErr.Code)
	assert.Contains(t, svcErr.Message, "days")
	assert.Equal(t, 3, h.Provider.CallCount())
	assert.Empty(t, h.Store.ReplayRecords())

	entries := h.Store.CallLogEntries()
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, store.CodeOK, e.Code, "provider calls themselves succeeded")
	}
}

func TestExecute_DuplicateDayNumberIsRepaired(t *testing.T) {
	h := generationtest.New(t,
		providertest.Respond(kit(1, 2, 3, 4, 5, 6, 6)),
		providertest.Respond(week()),
	)
	output, err := newHandler(t, h).Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, output.SchemaRepairAttempts)

	calls := h.Provider.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, SystemPrompt, calls[0].SystemPrompt())
	assert.Equal(t, RepairPrompt, calls[1].SystemPrompt())
	assert.Contains(t, calls[1].SystemPrompt(), "exactly 7 entries")
}

func TestExecute_ForcedReplayServesStoredPlan(t *testing.T) {
	h := generationtest.NewWithReplay(t, replay.Options{Force: true})
	record, err := store.NewReplayRecord("user-1", mustRequest(t), week())
	require.NoError(t, err)
	require.NoError(t, h.Store.InsertReplayRecord(context.Background(), record))

	output, err := newHandler(t, h).Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)
	assert.True(t, output.Degraded)
	assert.Equal(t, llm.DegradeReplayForced, output.DegradeReason)
	assert.Equal(t, 0, h.Provider.CallCount())
}

func TestHandle_ForcedReplayMissThrowsBPMNError(t *testing.T) {
	h := generationtest.NewWithReplay(t, replay.Options{Force: true})
	client := camundatest.NewJobClient(t)

	newHandler(t, h).Handle(client, camundatest.NewJob(t, TaskType, 3, map[string]interface{}{"userId": "user-1"}))

	thrown := client.Thrown()
	require.Len(t, thrown, 1)
	assert.Equal(t, string(svcerrors.ErrCodeReplayNotFound), thrown[0].GetErrorCode())
	assert.Equal(t, "Replay is forced but no replay payload was found.", thrown[0].GetErrorMessage())
	vars := client.Variables(thrown[0].GetVariables())
	detail := vars["generationError"].(map[string]interface{})
	assert.Equal(t, "generate_launch_kit", detail["operation"])
	assert.Equal(t, "CACHE", vars["errorCategory"])
}

func mustRequest(t *testing.T) llm.Request {
	t.Helper()
	req, err := spec.NewRequest(map[string]interface{}{"user_id": "user-1"})
	require.NoError(t, err)
	return req
}
