package document

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BohuTANG/gpt-translate-refine/pkg/translation"
)

// extSetPattern 匹配形如 {md,json} 的扩展名列表
var extSetPattern = regexp.MustCompile(`\{([A-Za-z0-9]+(?:,[A-Za-z0-9]+)*)\}`)

// NormalizeLang 把目标语言转成适合做路径的形式：小写、空格换连字符
func NormalizeLang(lang string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(lang)), " ", "-")
}

// HasWildcard 判断模式中是否含有随输入变化的通配记号
func HasWildcard(pattern string) bool {
	return strings.Contains(pattern, "*") ||
		strings.Contains(pattern, "{name}") ||
		strings.Contains(pattern, "{ext}")
}

// ValidatePattern 在发起任何网络调用之前检查输出模式：
// 没有通配记号的模式只能对应单个输入，多个输入的产物会彼此覆盖
func ValidatePattern(pattern string, inputCount int) error {
	if pattern == "" {
		return translation.NewConfigError("output pattern is required")
	}
	if inputCount > 1 && !HasWildcard(pattern) {
		return translation.NewConfigError(
			"output pattern %q has no wildcard but %d input files resolved, outputs would collide",
			pattern, inputCount)
	}
	return nil
}

// Map 把输入路径按输出模式映射为具体输出路径。
// 纯函数：相同的 (输入, 模式, 语言) 三元组永远得到相同结果。
// 同一记号的所有出现只计算一次替换文本，不会出现分歧展开。
func Map(inputPath, pattern, lang string) (string, error) {
	if pattern == "" {
		return "", translation.NewConfigError("output pattern is required")
	}

	input := filepath.ToSlash(inputPath)
	out := filepath.ToSlash(pattern)

	stem := strings.TrimSuffix(path.Base(input), path.Ext(input))
	ext := strings.TrimPrefix(path.Ext(input), ".")

	out = strings.ReplaceAll(out, "{lang}", NormalizeLang(lang))
	out = strings.ReplaceAll(out, "{name}", stem)
	out = strings.ReplaceAll(out, "{ext}", ext)

	// 扩展名列表：有与输入一致的成员就选它，否则取第一个
	out = extSetPattern.ReplaceAllStringFunc(out, func(m string) string {
		members := strings.Split(m[1:len(m)-1], ",")
		for _, cand := range members {
			if cand == ext {
				return cand
			}
		}
		return members[0]
	})

	if strings.Count(out, "**") > 1 {
		return "", translation.NewConfigError("output pattern %q has more than one '**' segment", pattern)
	}
	if strings.Contains(out, "**") {
		return expandDoubleStar(input, out, stem), nil
	}

	return strings.ReplaceAll(out, "*", stem), nil
}

// expandDoubleStar 展开 ** 记号并保留输入的目录结构：
// 跳过输入路径与模式基目录重合的前缀，再跳过一层分叉目录（通常是语言目录），
// 把剩余的中间目录原样挂到基目录之下
func expandDoubleStar(input, out, stem string) string {
	idx := strings.Index(out, "**")
	baseDir := strings.TrimSuffix(out[:idx], "/")
	tail := strings.TrimPrefix(out[idx+2:], "/")

	inputParts := strings.Split(input, "/")
	baseParts := strings.Split(baseDir, "/")

	common := 0
	for common < len(baseParts) && common < len(inputParts) && inputParts[common] == baseParts[common] {
		common++
	}
	skip := common + 1
	if skip > len(inputParts)-1 {
		skip = len(inputParts) - 1
	}
	if skip < 0 {
		skip = 0
	}

	parts := make([]string, 0, len(inputParts))
	if baseDir != "" {
		parts = append(parts, baseDir)
	}
	parts = append(parts, inputParts[skip:len(inputParts)-1]...)
	if tail == "" {
		parts = append(parts, path.Base(input))
	} else {
		parts = append(parts, strings.ReplaceAll(tail, "*", stem))
	}

	return path.Join(parts...)
}
