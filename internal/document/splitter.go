package document

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// 前置元数据块的分隔线
const frontMatterDelimiter = "---"

// Document 拆分后的文档：可选的前置元数据块与正文
type Document struct {
	// FrontMatter 按字节原样保留的前置元数据块（含两条分隔线），没有时为空串
	FrontMatter string
	// Body 送去翻译的正文
	Body string
}

// Split 从原始文本中拆出前置元数据块与正文。
// 只有第一行恰好是分隔线、且后续存在第二条分隔线时才视为有前置块；
// 前置块按字节原样保留，翻译永远不触碰它。
// 不变式：FrontMatter + Body == raw。
func Split(raw string) Document {
	nl := strings.IndexByte(raw, '\n')
	if nl < 0 || !isDelimiterLine(raw[:nl]) {
		return Document{Body: raw}
	}

	// 跳过开头的分隔线，逐行寻找第二条
	offset := nl + 1
	rest := raw[offset:]
	for {
		nl = strings.IndexByte(rest, '\n')
		if nl < 0 {
			// 前置块没有闭合，整个文本按正文处理
			return Document{Body: raw}
		}
		line := rest[:nl]
		rest = rest[nl+1:]
		offset += nl + 1
		if isDelimiterLine(line) {
			return Document{FrontMatter: raw[:offset], Body: raw[offset:]}
		}
	}
}

// Join 用翻译后的正文重组文档；前置块原样回写，
// 正文未变时结果与原始输入逐字节一致
func (d Document) Join(body string) string {
	return d.FrontMatter + body
}

// HasFrontMatter 判断是否带前置元数据块
func (d Document) HasFrontMatter() bool {
	return d.FrontMatter != ""
}

// Meta 解析前置块内部的 YAML，仅用于日志观察；
// 重组输出永远使用原始字节，解析失败不影响翻译流程
func (d Document) Meta() (map[string]any, error) {
	if d.FrontMatter == "" {
		return nil, nil
	}

	// 去掉首尾两条分隔线，留下中间的 YAML 文本
	first := strings.IndexByte(d.FrontMatter, '\n')
	inner := strings.TrimSuffix(d.FrontMatter[first+1:], "\n")
	if last := strings.LastIndexByte(inner, '\n'); last >= 0 {
		inner = inner[:last+1]
	} else {
		inner = ""
	}

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(inner), &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// isDelimiterLine 判断一行是否是分隔线，允许行尾空白
func isDelimiterLine(line string) bool {
	return strings.TrimRight(line, " \t\r") == frontMatterDelimiter
}
