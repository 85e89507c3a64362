package contentmatrix

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
	"coach-generation/internal/workers/generation"
	"coach-generation/internal/workers/generation/generationtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pillar(name string, topics int) map[string]interface{} {
	items := make([]interface{}, 0, topics)
	for i := 1; i <= topics; i++ {
		items = append(items, fmt.Sprintf("%s选题%d", name, i))
	}
	return map[string]interface{}{
		"pillar": name,
		"topics": items,
		"platform_rewrites": map[string]interface{}{
			"xiaohongshu":   []interface{}{"小红书版本"},
			"wechat":        []interface{}{"公众号版本"},
			"video_channel": []interface{}{"视频号脚本"},
		},
	}
}

func matrix(pillars ...map[string]interface{}) map[string]interface{} {
	items := make([]interface{}, 0, len(pillars))
	for _, p := range pillars {
		items = append(items, p)
	}
	return map[string]interface{}{"pillars": items}
}

func validMatrix() map[string]interface{} {
	return matrix(pillar("职场成长", 20), pillar("效率方法", 25), pillar("个人品牌", 50))
}

func newHandler(t *testing.T, h *generationtest.Harness) *Handler {
	t.Helper()
	handler, err := NewHandler(HandlerOptions{
		HandlerOptions: generation.HandlerOptions{Engine: h.Engine, Logger: logger.NewTestLogger(t)},
	})
	require.NoError(t, err)
	return handler
}

func TestExecute_FreshMatrix(t *testing.T) {
	h := generationtest.New(t, providertest.Respond(validMatrix()))

	output, err := newHandler(t, h).Execute(context.Background(), &Input{
		UserID: "user-1",
		Hints:  map[string]interface{}{"focus": "新手"},
	})
	require.NoError(t, err)
	require.Len(t, output.Result.Pillars, 3)
	assert.Len(t, output.Result.Pillars[2].Topics, 50)
	assert.Equal(t, []string{"公众号版本"}, output.Result.Pillars[0].PlatformRewrites["wechat"])

	payload := h.Provider.Calls()[0].PayloadObject()
	assert.Equal(t, map[string]interface{}{"focus": "新手"}, payload["hints"])
	assert.Nil(t, payload["identity_model_id"])
	assert.Equal(t, map[string]interface{}{"identity": nil, "constitution": nil}, payload["context"])
}

func TestExecute_BusinessRules(t *testing.T) {
	blankTopics := pillar("空白", 25)
	topics := blankTopics["topics"].([]interface{})
	for i := 0; i < 6; i++ {
		topics[i] = " "
	}

	twoPlatforms := pillar("平台", 20)
	delete(twoPlatforms["platform_rewrites"].(map[string]interface{}), "wechat")

	emptyRewrite := pillar("改写", 20)
	emptyRewrite["platform_rewrites"].(map[string]interface{})["wechat"] = []interface{}{""}

	tests := []struct {
		name     string
		response map[string]interface{}
	}{
		{"too few pillars", matrix(pillar("a", 20), pillar("b", 20))},
		{"too few topics", matrix(pillar("a", 19), pillar("b", 20), pillar("c", 20))},
		{"too many topics", matrix(pillar("a", 51), pillar("b", 20), pillar("c", 20))},
		{"blank topics do not count", matrix(blankTopics, pillar("b", 20), pillar("c", 20))},
		{"two platforms", matrix(twoPlatforms, pillar("b", 20), pillar("c", 20))},
		{"empty rewrite list", matrix(emptyRewrite, pillar("b", 20), pillar("c", 20))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := responseSchema.Validate(tt.response)
			require.Error(t, err)
			assert.True(t, svcerrors.HasCode(err, svcerrors.ErrCodeSchemaValidationFailed))
		})
	}

	_, err := responseSchema.Validate(validMatrix())
	assert.NoError(t, err)
}

func TestExecute_FallbackOnRetryableProviderError(t *testing.T) {
	h := generationtest.NewWithReplay(t, replay.Options{FallbackEnabled: true},
		providertest.Respond(validMatrix()),
		providertest.Fail(svcerrors.NewUpstreamHTTPError(string(llm.OpGenerateContentMatrix), 503, "req-9", "busy")),
	)
	handler := newHandler(t, h)

	_, err := handler.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), &Input{UserID: "user-1", Hints: map[string]interface{}{"other": true}})
	require.NoError(t, err)
	assert.True(t, output.Degraded)
	assert.Equal(t, llm.DegradeReplayFallback, output.DegradeReason)
	assert.Len(t, output.Result.Pillars, 3)

	entries := h.Store.CallLogEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, string(svcerrors.ErrCodeUpstreamHTTPError), entries[1].Code)
	require.NotNil(t, entries[1].ProviderStatus)
	assert.Equal(t, 503, *entries[1].ProviderStatus)
}

func TestExecute_NonRetryableProviderErrorDoesNotFallBack(t *testing.T) {
	h := generationtest.NewWithReplay(t, replay.Options{FallbackEnabled: true},
		providertest.Respond(validMatrix()),
		providertest.Fail(svcerrors.NewUpstreamHTTPError(string(llm.OpGenerateContentMatrix), 401, "", "unauthorized")),
	)
	handler := newHandler(t, h)

	_, err := handler.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)

	_, err = handler.Execute(context.Background(), &Input{UserID: "user-1"})
	require.Error(t, err)
	assert.True(t, svcerrors.HasCode(err, svcerrors.ErrCodeUpstreamHTTPError))
}

func TestHandle_CompletesJob(t *testing.T) {
	h := generationtest.New(t, providertest.Respond(validMatrix()))
	client := camundatest.NewJobClient(t)

	newHandler(t, h).Handle(client, camundatest.NewJob(t, TaskType, 3, map[string]interface{}{
		"userId":  "user-1",
		"context": map[string]interface{}{"identity": map[string]interface{}{"id": "identity-1", "title": "职场成长教练"}},
	}))

	completed := client.Completed()
	require.Len(t, completed, 1)
	assert.Len(t, completed[0]["result"].(map[string]interface{})["pillars"], 3)
	assert.Equal(t, "identity-1", h.Provider.Calls()[0].PayloadObject()["identity_model_id"])
}
