package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	t.Run("Front Matter Round Trip", func(t *testing.T) {
		raw := "---\ntitle: 指南\ndraft: false\n---\n\n# Hello\n\nbody text\n"
		doc := Split(raw)

		require.True(t, doc.HasFrontMatter())
		assert.Equal(t, "---\ntitle: 指南\ndraft: false\n---\n", doc.FrontMatter)
		assert.Equal(t, "\n# Hello\n\nbody text\n", doc.Body)

		// 正文未变时重组结果逐字节一致
		assert.Equal(t, raw, doc.Join(doc.Body))
	})

	t.Run("No Delimiter Means Whole Body", func(t *testing.T) {
		raw := "# Hello\n\nno front matter here\n"
		doc := Split(raw)

		assert.False(t, doc.HasFrontMatter())
		assert.Equal(t, raw, doc.Body)
		assert.Equal(t, raw, doc.Join(doc.Body))
	})

	t.Run("Delimiter Not On First Line", func(t *testing.T) {
		raw := "intro\n---\nkey: value\n---\nbody\n"
		doc := Split(raw)

		assert.False(t, doc.HasFrontMatter())
		assert.Equal(t, raw, doc.Body)
	})

	t.Run("Unclosed Front Matter", func(t *testing.T) {
		raw := "---\ntitle: dangling\nno closing line\n"
		doc := Split(raw)

		assert.False(t, doc.HasFrontMatter())
		assert.Equal(t, raw, doc.Body)
	})

	t.Run("Delimiter With Trailing Whitespace", func(t *testing.T) {
		raw := "--- \ntitle: x\n---\t\nbody\n"
		doc := Split(raw)

		require.True(t, doc.HasFrontMatter())
		// 原始字节不被整理，包括行尾空白
		assert.Equal(t, "--- \ntitle: x\n---\t\n", doc.FrontMatter)
		assert.Equal(t, raw, doc.Join(doc.Body))
	})

	t.Run("Translated Body Keeps Front Matter Bytes", func(t *testing.T) {
		raw := "---\ntitle: guide\n---\nOriginal body\n"
		doc := Split(raw)

		out := doc.Join("翻译后的正文\n")
		assert.Equal(t, "---\ntitle: guide\n---\n翻译后的正文\n", out)
	})

	t.Run("Empty Input", func(t *testing.T) {
		doc := Split("")
		assert.False(t, doc.HasFrontMatter())
		assert.Equal(t, "", doc.Body)
	})
}

func TestMeta(t *testing.T) {
	t.Run("Parses YAML Keys", func(t *testing.T) {
		doc := Split("---\ntitle: guide\ntags:\n  - go\n  - ci\n---\nbody\n")

		meta, err := doc.Meta()
		require.NoError(t, err)
		assert.Equal(t, "guide", meta["title"])
		assert.Len(t, meta["tags"], 2)
	})

	t.Run("No Front Matter", func(t *testing.T) {
		doc := Split("plain body\n")
		meta, err := doc.Meta()
		require.NoError(t, err)
		assert.Nil(t, meta)
	})

	t.Run("Invalid YAML Reported But Bytes Kept", func(t *testing.T) {
		raw := "---\n\t: broken [\n---\nbody\n"
		doc := Split(raw)
		require.True(t, doc.HasFrontMatter())

		_, err := doc.Meta()
		assert.Error(t, err)
		// 解析失败也不影响重组
		assert.Equal(t, raw, doc.Join(doc.Body))
	})
}
