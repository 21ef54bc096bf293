package contract

// MentionInfo describes one variable of a bundle, as a host would list it in a
// value editing form.
type MentionInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	DefaultValue string `json:"defaultValue"`
	VariableType string `json:"variableType,omitempty"`
	Occurrences  int    `json:"occurrences"`
}

// Walk visits every node of the bundle depth first. Returning false from fn skips
// the node's children.
func (d Data) Walk(fn func(Node) bool) {
	for _, doc := range d {
		walkNodes(doc.Children, fn)
	}
}

func walkNodes(nodes []Node, fn func(Node) bool) {
	for _, node := range nodes {
		if node == nil || !fn(node) {
			continue
		}
		switch n := node.(type) {
		case *MentionNode:
			if n != nil {
				walkNodes(n.Children, fn)
			}
		case *BlockNode:
			if n != nil {
				walkNodes(n.Children, fn)
			}
		}
	}
}

// Mentions lists the distinct mention ids of the bundle in order of first
// appearance. Title, default and variable type come from the first occurrence.
func (d Data) Mentions() []MentionInfo {
	index := make(map[string]int)
	out := make([]MentionInfo, 0)
	d.Walk(func(node Node) bool {
		m, ok := node.(*MentionNode)
		if !ok || m == nil || m.ID == "" {
			return true
		}
		if i, seen := index[m.ID]; seen {
			out[i].Occurrences++
			return true
		}
		index[m.ID] = len(out)
		out = append(out, MentionInfo{
			ID:           m.ID,
			Title:        m.Title,
			DefaultValue: m.DefaultValue,
			VariableType: m.VariableType,
			Occurrences:  1,
		})
		return true
	})
	return out
}
