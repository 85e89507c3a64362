package consistencycheck

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	exaggerationWords = []string{"绝对", "一定", "必须", "保证", "没问题", "轻松", "简单"}
	marketingWords    = []string{"加微信", "扫码", "免费领", "点击下方", "立即报名"}
	promiseWords      = []string{"保证收益", "稳赚", "必赚", "收益率"}
)

// KeywordCheck is the deterministic report used when the provider cannot
// produce a valid one. It flags exaggeration, short drafts, second person
// without first person, platform-rule marketing, promised returns and the
// persona's own forbidden words.
func KeywordCheck(draft string, forbiddenWords []string, minRunes int) Report {
	var r Report
	add := func(item, reason, suggestion string) {
		r.DeviationItems = append(r.DeviationItems, item)
		r.DeviationReasons = append(r.DeviationReasons, reason)
		r.Suggestions = append(r.Suggestions, suggestion)
	}
	var warnings []string

	exaggerated := found(draft, exaggerationWords)
	if len(exaggerated) > 0 {
		add("使用了禁用词汇",
			"检测到可能夸大效果的词汇: "+strings.Join(exaggerated, ", "),
			"建议使用更保守的表达方式")
		r.RiskTriggered = true
	}

	if persona := found(draft, without(forbiddenWords, exaggerationWords)); len(persona) > 0 {
		add("使用了人设禁用词",
			"检测到人设宪法中的禁用词: "+strings.Join(persona, ", "),
			"建议替换为人设常用表达")
	}

	if utf8.RuneCountInString(draft) < minRunes {
		add("内容过短",
			fmt.Sprintf("内容长度不足%d字，可能无法传达足够信息", minRunes),
			"建议补充更多内容细节")
	}

	if strings.Contains(draft, "你") && !strings.Contains(draft, "我") {
		add("缺少第一人称表达",
			"内容以第二人称为主，缺少个人经验分享",
			"建议加入第一人称视角的分享")
	}

	if marketing := found(draft, marketingWords); len(marketing) > 0 {
		r.RiskTriggered = true
		warnings = append(warnings, "检测到可能违反平台规则的营销词汇: "+strings.Join(marketing, ", "))
	}

	if promises := found(draft, promiseWords); len(promises) > 0 {
		r.RiskTriggered = true
		warnings = append(warnings, "检测到可能涉及违规宣传的词汇: "+strings.Join(promises, ", ")+"，建议修改")
	}

	if r.RiskTriggered && len(warnings) == 0 {
		warnings = append(warnings, "检测到可能夸大效果的词汇: "+strings.Join(exaggerated, ", "))
	}
	r.RiskWarning = strings.Join(warnings, "；")

	if len(r.DeviationItems) == 0 {
		add("未检测到明显偏离", "内容符合基本规范", "继续保持")
	}
	return r
}

func found(text string, words []string) []string {
	var hits []string
	for _, w := range words {
		if w != "" && strings.Contains(text, w) {
			hits = append(hits, w)
		}
	}
	return hits
}

func without(words, exclude []string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, w := range exclude {
		skip[w] = true
	}
	var out []string
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w != "" && !skip[w] {
			out = append(out, w)
		}
	}
	return out
}
