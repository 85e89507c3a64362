package consistencycheck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var longDraft = strings.Repeat("我最近在整理自己的职场复盘，", 5)

func TestKeywordCheck(t *testing.T) {
	tests := []struct {
		name          string
		draft         string
		forbidden     []string
		wantItems     []string
		wantRisk      bool
		wantWarning   string
		wantNoWarning bool
	}{
		{
			name:          "clean draft",
			draft:         longDraft,
			wantItems:     []string{"未检测到明显偏离"},
			wantNoWarning: true,
		},
		{
			name:        "exaggeration alone sets its own warning",
			draft:       longDraft + "这个方法一定有用",
			wantItems:   []string{"使用了禁用词汇"},
			wantRisk:    true,
			wantWarning: "检测到可能夸大效果的词汇: 一定",
		},
		{
			name:      "short second person draft",
			draft:     "你应该试试",
			wantItems: []string{"内容过短", "缺少第一人称表达"},
		},
		{
			name:        "marketing words",
			draft:       longDraft + "扫码加微信",
			wantItems:   []string{"未检测到明显偏离"},
			wantRisk:    true,
			wantWarning: "检测到可能违反平台规则的营销词汇: 加微信, 扫码",
		},
		{
			name:        "promised returns",
			draft:       longDraft + "稳赚不赔",
			wantItems:   []string{"未检测到明显偏离"},
			wantRisk:    true,
			wantWarning: "检测到可能涉及违规宣传的词汇: 稳赚，建议修改",
		},
		{
			name:          "persona forbidden words",
			draft:         longDraft + "躺平",
			forbidden:     []string{"躺平", "一定"},
			wantItems:     []string{"使用了人设禁用词"},
			wantNoWarning: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := KeywordCheck(tt.draft, tt.forbidden, 50)

			assert.Equal(t, tt.wantItems, r.DeviationItems)
			require.Len(t, r.DeviationReasons, len(r.DeviationItems))
			require.Len(t, r.Suggestions, len(r.DeviationItems))
			assert.Equal(t, tt.wantRisk, r.RiskTriggered)
			if tt.wantWarning != "" {
				assert.Equal(t, tt.wantWarning, r.RiskWarning)
			}
			if tt.wantNoWarning {
				assert.Empty(t, r.RiskWarning)
			}
			assert.NoError(t, riskWarning(r))
			assert.NoError(t, alignedLists(r))
		})
	}
}

func TestKeywordCheck_JoinsWarnings(t *testing.T) {
	r := KeywordCheck(longDraft+"扫码领取，稳赚", nil, 50)
	assert.True(t, r.RiskTriggered)
	assert.Equal(t, "检测到可能违反平台规则的营销词汇: 扫码；检测到可能涉及违规宣传的词汇: 稳赚，建议修改", r.RiskWarning)
}
