package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"contractview/internal/contract"
)

func TestClassify(t *testing.T) {
	var nilText *contract.TextNode
	var nilBlock *contract.BlockNode
	tests := []struct {
		name string
		node contract.Node
		want Kind
	}{
		{"text", &contract.TextNode{Text: "x"}, KindText},
		{"mention", &contract.MentionNode{ID: "a"}, KindMention},
		{"clause", &contract.BlockNode{Type: contract.TypeClause}, KindClause},
		{"paragraph", &contract.BlockNode{Type: contract.TypeParagraph}, KindBlock},
		{"heading", &contract.BlockNode{Type: contract.TypeHeading3}, KindBlock},
		{"unrecognized discriminator", &contract.BlockNode{Type: "foo"}, KindBlock},
		{"malformed", &contract.MalformedNode{Raw: []byte(`{}`)}, KindUnknown},
		{"nil interface", nil, KindUnknown},
		{"nil text pointer", nilText, KindUnknown},
		{"nil block pointer", nilBlock, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.node))
		})
	}
}

func TestMergeIsLogicalOr(t *testing.T) {
	all := []bool{false, true}
	for _, ownBold := range all {
		for _, inhBold := range all {
			for _, ownItalic := range all {
				for _, inhItalic := range all {
					for _, ownUnder := range all {
						for _, inhUnder := range all {
							own := contract.Marks{Bold: ownBold, Italic: ownItalic, Underline: ownUnder}
							inherited := contract.Marks{Bold: inhBold, Italic: inhItalic, Underline: inhUnder}
							got := Merge(own, inherited)
							assert.Equal(t, ownBold || inhBold, got.Bold)
							assert.Equal(t, ownItalic || inhItalic, got.Italic)
							assert.Equal(t, ownUnder || inhUnder, got.Underline)
						}
					}
				}
			}
		}
	}
}

func TestClauseCounter(t *testing.T) {
	var c ClauseCounter
	assert.Equal(t, 0, c.Current())
	assert.Equal(t, 1, c.Next())
	assert.Equal(t, 2, c.Next())
	assert.Equal(t, 3, c.Next())
	assert.Equal(t, 3, c.Current())
	c.Reset()
	assert.Equal(t, 0, c.Current())
	assert.Equal(t, 1, c.Next())
}

func TestSubItemLabel(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{-1, ""},
		{0, "a"},
		{1, "b"},
		{2, "c"},
		{25, "z"},
		{26, "aa"},
		{27, "ab"},
		{51, "az"},
		{52, "ba"},
		{701, "zz"},
		{702, "aaa"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SubItemLabel(tt.index), "index %d", tt.index)
	}
}

func TestSubItemLabelsAreUnique(t *testing.T) {
	seen := make(map[string]int)
	for i := 0; i < 2000; i++ {
		label := SubItemLabel(i)
		if prev, ok := seen[label]; ok {
			t.Fatalf("label %q repeated at %d and %d", label, prev, i)
		}
		seen[label] = i
	}
}

func TestResolve(t *testing.T) {
	table := Table{"X": "V", "empty": ""}

	assert.Equal(t, "V", Resolve("X", "default", table))
	assert.Equal(t, "default", Resolve("missing", "default", table))
	assert.Equal(t, "", Resolve("empty", "default", table))
	assert.Equal(t, "default", Resolve("X", "default", nil))

	table.Update("missing", "now present")
	assert.Equal(t, "now present", Resolve("missing", "default", table))
}

func TestHasBlockChildren(t *testing.T) {
	paragraphWith := func(children ...contract.Node) *contract.BlockNode {
		return &contract.BlockNode{Type: contract.TypeParagraph, Children: children}
	}
	tests := []struct {
		name  string
		block *contract.BlockNode
		want  bool
	}{
		{"only text", paragraphWith(&contract.TextNode{Text: "a"}, &contract.MentionNode{ID: "m"}), false},
		{"list child", paragraphWith(&contract.BlockNode{Type: contract.TypeUnorderedList}), true},
		{"ordered list child", paragraphWith(&contract.BlockNode{Type: contract.TypeOrderedList}), true},
		{"heading child", paragraphWith(&contract.BlockNode{Type: contract.TypeHeading5}), true},
		{"clause child", paragraphWith(&contract.BlockNode{Type: contract.TypeClause}), true},
		{"nested paragraph", paragraphWith(&contract.BlockNode{Type: contract.TypeParagraph}), true},
		{"text-carrying paragraph", paragraphWith(&contract.BlockNode{Type: contract.TypeParagraph, Text: "x", HasText: true}), true},
		{"generic block", paragraphWith(&contract.BlockNode{Type: contract.TypeBlock}), true},
		{"unrecognized", paragraphWith(&contract.BlockNode{Type: "table"}), true},
		{"list item content", paragraphWith(&contract.BlockNode{Type: contract.TypeListItemContent}), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasBlockChildren(tt.block))
		})
	}
}

func TestIsDegenerateParagraph(t *testing.T) {
	assert.True(t, IsDegenerateParagraph(&contract.BlockNode{Type: contract.TypeParagraph, Text: "x", HasText: true}))
	assert.True(t, IsDegenerateParagraph(&contract.BlockNode{Type: contract.TypeParagraph, HasText: true}))
	assert.False(t, IsDegenerateParagraph(&contract.BlockNode{Type: contract.TypeParagraph}))
	assert.False(t, IsDegenerateParagraph(&contract.BlockNode{Type: contract.TypeHeading1, Text: "x", HasText: true}))
	assert.False(t, IsDegenerateParagraph(&contract.TextNode{Text: "x"}))
}
