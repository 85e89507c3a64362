package identitymodels

import (
	"context"
	"fmt"
	"testing"
	"time"

	"coach-generation/internal/common/camunda/camundatest"
	"coach-generation/internal/common/config"
	svcerrors "coach-generation/internal/common/errors"
	"coach-generation/internal/common/logger"
	"coach-generation/internal/llm"
	"coach-generation/internal/llm/providertest"
	"coach-generation/internal/llm/replay"
	"coach-generation/internal/workers/generation"
	"coach-generation/internal/workers/generation/generationtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":                         title,
		"target_audience_pain":          "职场新人不知道如何规划成长",
		"content_pillars":               []interface{}{"职场成长", "效率方法", "个人品牌"},
		"tone_keywords":                 []interface{}{"真诚", "务实"},
		"tone_examples":                 []interface{}{"一", "二", "三", "四", "五"},
		"long_term_views":               []interface{}{"a", "b", "c", "d", "e"},
		"differentiation":               "用真实案例讲方法",
		"growth_path_0_3m":              "建立固定栏目",
		"growth_path_3_12m":             "开发付费产品",
		"monetization_validation_order": []interface{}{"咨询"},
		"risk_boundary":                 []interface{}{"不承诺收益"},
	}
}

func models(cards ...map[string]interface{}) map[string]interface{} {
	items := make([]interface{}, 0, len(cards))
	for _, c := range cards {
		items = append(items, c)
	}
	return map[string]interface{}{"models": items}
}

func newHandler(t *testing.T, h *generationtest.Harness) *Handler {
	t.Helper()
	handler, err := NewHandler(HandlerOptions{
		HandlerOptions: generation.HandlerOptions{Engine: h.Engine, Logger: logger.NewTestLogger(t)},
	})
	require.NoError(t, err)
	return handler
}

func TestExecute_GeneratesOneCardPerCall(t *testing.T) {
	h := generationtest.New(t,
		providertest.Respond(models(card("职场成长教练"))),
		providertest.Respond(models(card("效率工具测评"))),
	)
	handler := newHandler(t, h)

	output, err := handler.Execute(context.Background(), &Input{
		UserID:            "user-1",
		Count:             2,
		CapabilityProfile: map[string]interface{}{"skills": []interface{}{"写作"}},
	})
	require.NoError(t, err)

	require.Len(t, output.Result.Models, 2)
	assert.Equal(t, "职场成长教练", output.Result.Models[0].Title)
	assert.Equal(t, "效率工具测评", output.Result.Models[1].Title)
	assert.False(t, output.Degraded)
	assert.Equal(t, llm.DegradeNone, output.DegradeReason)
	assert.NotEmpty(t, output.GenerationID)

	calls := h.Provider.Calls()
	require.Len(t, calls, 2)
	for _, call := range calls {
		assert.Equal(t, llm.OpGenerateIdentityModels, call.Operation())
		payload := call.PayloadObject()
		assert.Equal(t, float64(1), payload["count"])
		assert.Nil(t, payload["session_id"])
		assert.Equal(t, "user-1", payload["user_id"])
	}
	assert.Len(t, h.Store.CallLogEntries(), 2)
	assert.Len(t, h.Store.ReplayRecords(), 2)
	h.Provider.AssertDrained()
}

func TestExecute_DefaultCount(t *testing.T) {
	h := generationtest.New(t,
		providertest.Respond(models(card("a"))),
		providertest.Respond(models(card("b"))),
		providertest.Respond(models(card("c"))),
	)
	output, err := newHandler(t, h).Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, output.Result.Models, 3)
	assert.Equal(t, map[string]interface{}{}, h.Provider.Calls()[0].PayloadObject()["capability_profile"])
}

func TestExecute_CountMismatchIsRepaired(t *testing.T) {
	h := generationtest.New(t,
		providertest.Respond(models(card("a"), card("b"))),
		providertest.Respond(models(card("a"))),
	)
	output, err := newHandler(t, h).Execute(context.Background(), &Input{UserID: "user-1", Count: 1})
	require.NoError(t, err)

	assert.Len(t, output.Result.Models, 1)
	assert.Equal(t, 1, output.SchemaRepairAttempts)
	assert.False(t, output.Degraded)
}

func TestExecute_BareStringRiskBoundaryFailsWithoutPlaceholder(t *testing.T) {
	bad := card("a")
	bad["risk_boundary"] = "不承诺收益"
	h := generationtest.New(t,
		providertest.Respond(models(bad)),
		providertest.Respond(models(bad)),
		providertest.Respond(models(bad)),
	)
	_, err := newHandler(t, h).Execute(context.Background(), &Input{UserID: "user-1", Count: 1})
	require.Error(t, err)
	assert.True(t, svcerrors.HasCode(err, svcerrors.ErrCodeSchemaValidationFailed))
	assert.Equal(t, 3, h.Provider.CallCount())
}

func TestExecute_FallbackSubstitutesSingleCard(t *testing.T) {
	unavailable := svcerrors.NewUpstreamUnavailableError(string(llm.OpGenerateIdentityModels), "", fmt.Errorf("connection refused"))
	h := generationtest.NewWithReplay(t, replay.Options{FallbackEnabled: true},
		providertest.Respond(models(card("第一张"))),
		providertest.Fail(unavailable),
	)
	output, err := newHandler(t, h).Execute(context.Background(), &Input{UserID: "user-1", Count: 2})
	require.NoError(t, err)

	require.Len(t, output.Result.Models, 2)
	assert.Equal(t, "第一张", output.Result.Models[0].Title)
	assert.Equal(t, "第一张", output.Result.Models[1].Title)
	assert.True(t, output.Degraded)
	assert.Equal(t, llm.DegradeReplayFallback, output.DegradeReason)
	assert.Len(t, h.Store.ReplayRecords(), 1)
}

func TestExecute_RejectsCountOutOfRange(t *testing.T) {
	h := generationtest.New(t)
	_, err := newHandler(t, h).Execute(context.Background(), &Input{UserID: "user-1", Count: 9})
	require.Error(t, err)
	assert.True(t, svcerrors.HasCode(err, svcerrors.ErrCodeClientError))
	assert.Equal(t, 0, h.Provider.CallCount())
}

func TestHandle_CompletesJobWithOutcomeVariables(t *testing.T) {
	h := generationtest.New(t, providertest.Respond(models(card("职场成长教练"))))
	client := camundatest.NewJobClient(t)

	job := camundatest.NewJob(t, TaskType, 3, map[string]interface{}{
		"userId":            "user-1",
		"count":             1,
		"capabilityProfile": map[string]interface{}{"skills": []string{"写作"}},
		"processStartedBy":  "onboarding",
	})
	newHandler(t, h).Handle(client, job)

	completed := client.Completed()
	require.Len(t, completed, 1)
	vars := completed[0]
	assert.Equal(t, false, vars["degraded"])
	assert.Nil(t, vars["degradeReason"])
	assert.Equal(t, float64(0), vars["schemaRepairAttempts"])
	assert.NotEmpty(t, vars["generationId"])
	result := vars["result"].(map[string]interface{})
	assert.Len(t, result["models"], 1)
	assert.Empty(t, client.Thrown())
	assert.Empty(t, client.Failed())
}

func TestHandle_InvalidInputThrowsClientError(t *testing.T) {
	h := generationtest.New(t)
	client := camundatest.NewJobClient(t)

	job := camundatest.NewJob(t, TaskType, 3, map[string]interface{}{"count": 1})
	newHandler(t, h).Handle(client, job)

	thrown := client.Thrown()
	require.Len(t, thrown, 1)
	assert.Equal(t, string(svcerrors.ErrCodeClientError), thrown[0].GetErrorCode())
	assert.Equal(t, 0, h.Provider.CallCount())
	assert.Empty(t, client.Completed())
}

func TestHandle_TransientFailureFailsJobWithRetries(t *testing.T) {
	unavailable := svcerrors.NewUpstreamUnavailableError(string(llm.OpGenerateIdentityModels), "", fmt.Errorf("connection refused"))
	h := generationtest.New(t, providertest.Fail(unavailable))
	client := camundatest.NewJobClient(t)

	job := camundatest.NewJob(t, TaskType, 3, map[string]interface{}{
		"userId":            "user-1",
		"count":             1,
		"capabilityProfile": map[string]interface{}{},
	})
	newHandler(t, h).Handle(client, job)

	failed := client.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, int32(2), failed[0].GetRetries())
	vars := client.Variables(failed[0].GetVariables())
	assert.Equal(t, string(svcerrors.ErrCodeUpstreamUnavailable), vars["errorCode"])
	assert.Empty(t, client.Thrown())
}

func TestNewHandler_RequiresEngine(t *testing.T) {
	_, err := NewHandler(HandlerOptions{HandlerOptions: generation.HandlerOptions{Logger: logger.NewTestLogger(t)}})
	require.Error(t, err)

	_, err = NewHandler(HandlerOptions{
		HandlerOptions: generation.HandlerOptions{Engine: generationtest.New(t).Engine},
		CustomConfig:   &Config{Config: generation.DefaultConfig(), DefaultCount: 7},
	})
	require.Error(t, err)
}

func TestHandler_Metadata(t *testing.T) {
	handler := newHandler(t, generationtest.New(t))
	assert.Equal(t, "generation.identity-models.generate", handler.GetTaskType())
	assert.True(t, handler.IsEnabled())
	assert.NoError(t, handler.HealthCheck(context.Background()))
	assert.Error(t, handler.Register(), "an enabled worker needs a broker client")
	handler.Close()
}

func TestCreateConfigFromAppConfig_TimeoutCoversEveryCard(t *testing.T) {
	appConfig := &config.Config{LLM: config.LLMConfig{TimeoutSeconds: 10, MaxRetries: 0, SchemaRepairRetries: 0}}
	single := generation.ConfigFromApp(appConfig, ConfigKey)

	cfg := createConfigFromAppConfig(appConfig, nil)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15*time.Second, single.Timeout)
	assert.Equal(t, 55*time.Second, cfg.Timeout)

	appConfig.Workers = map[string]config.WorkerConfig{ConfigKey: {Enabled: true, Timeout: 20000}}
	assert.Equal(t, 20*time.Second, createConfigFromAppConfig(appConfig, nil).Timeout)
}
