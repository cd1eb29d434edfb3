package importer

import (
	"strings"

	"github.com/hatlonely/skux/entity"
)

// Identify 按表头识别目标实体：候选实体的识别标题必须全部出现在表头中，
// 多个候选时取识别集合最大（最具体）的一个，无候选返回 nil。
func Identify(entities []*entity.Entity, headers []string) *entity.Entity {
	headerSet := make(map[string]bool, len(headers))
	for _, h := range headers {
		if h = strings.TrimSpace(h); h != "" {
			headerSet[h] = true
		}
	}

	var best *entity.Entity
	bestSize := 0
	for _, ent := range entities {
		required := ent.RequiredTitles()
		if len(required) == 0 {
			continue
		}
		matched := true
		for _, title := range required {
			if !headerSet[title] {
				matched = false
				break
			}
		}
		if matched && len(required) > bestSize {
			best, bestSize = ent, len(required)
		}
	}
	return best
}
