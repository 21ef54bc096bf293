package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMentionsInFirstAppearanceOrder(t *testing.T) {
	data, err := Parse([]byte(`[
		{"type":"block","children":[
			{"type":"p","children":[
				{"type":"mention","id":"party","title":"Party","value":"ACME","variableType":"text","children":[]},
				{"text":" and "},
				{"type":"mention","id":"date","title":"Date","value":"1 May","children":[]}
			]},
			{"type":"clause","children":[
				{"type":"mention","id":"party","title":"ignored","value":"ignored","children":[]}
			]}
		]},
		{"type":"block","children":[
			{"type":"mention","id":"","value":"no id"},
			{"type":"mention","id":"fee","value":"10","children":[{"text":"custom"}]}
		]}
	]`))
	require.NoError(t, err)

	got := data.Mentions()

	assert.Equal(t, []MentionInfo{
		{ID: "party", Title: "Party", DefaultValue: "ACME", VariableType: "text", Occurrences: 2},
		{ID: "date", Title: "Date", DefaultValue: "1 May", Occurrences: 1},
		{ID: "fee", DefaultValue: "10", Occurrences: 1},
	}, got)
}

func TestWalkCanSkipSubtrees(t *testing.T) {
	data := Data{{Children: []Node{
		&BlockNode{Type: TypeClause, Children: []Node{&TextNode{Text: "hidden"}}},
		&TextNode{Text: "visible"},
	}}}

	var texts []string
	data.Walk(func(node Node) bool {
		if b, ok := node.(*BlockNode); ok && b.Type == TypeClause {
			return false
		}
		if tn, ok := node.(*TextNode); ok {
			texts = append(texts, tn.Text)
		}
		return true
	})

	assert.Equal(t, []string{"visible"}, texts)
}

func TestMentionsOfEmptyBundle(t *testing.T) {
	assert.Empty(t, Data{}.Mentions())
}
