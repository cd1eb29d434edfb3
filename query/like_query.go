package query

import (
	"regexp"
	"strings"

	"github.com/hatlonely/skux/entity"
)

// LikeQuery SQL LIKE 查询，% 匹配任意字符，_ 匹配单个字符，不区分大小写
type LikeQuery struct {
	Pattern string

	re *regexp.Regexp
}

func Like(pattern string) *LikeQuery {
	return &LikeQuery{Pattern: pattern}
}

func (q *LikeQuery) Type() QueryType {
	return QueryTypeLike
}

func (q *LikeQuery) Match(value any) bool {
	if q.re == nil {
		// 将 LIKE 模式翻译为正则
		// % -> .*（匹配任意数量字符）
		// _ -> .（匹配单个字符）
		pattern := regexp.QuoteMeta(q.Pattern)
		pattern = strings.ReplaceAll(pattern, "%", ".*")
		pattern = strings.ReplaceAll(pattern, "_", ".")
		q.re = regexp.MustCompile("(?is)^" + pattern + "$")
	}
	return q.re.MatchString(entity.AsString(value))
}
