package render

import (
	"strconv"
	"strings"

	"contractview/internal/contract"
)

// clause renders a clause node. Top-level clauses take the next number before any
// descendant is visited, so numbers follow pre-order. Clause children of a
// definitions clause are lettered instead and never consume a number.
func (s *session) clause(n *contract.BlockNode, f frame, subItem int) *Element {
	marks := Merge(n.Marks, f.marks)
	el := &Element{
		Tag:    TagClause,
		Source: n.Type,
		Style:  styleOf(marks),
		Color:  n.Color,
		Title:  n.Title,
	}
	childFrame := frame{marks: marks, parent: n, nested: true, path: f.path}

	if f.nested && s.isDefinitions(f.parent) && subItem >= 0 {
		s.stats.SubItems++
		el.Layout = LayoutSubItem
		el.Label = "(" + SubItemLabel(subItem) + ")"
		el.Children = s.withOwnText(n, marks, s.clauseChildren(n, childFrame))
		return el
	}

	if !f.nested {
		s.stats.Clauses++
		el.Number = s.counter.Next()
		el.Label = strconv.Itoa(el.Number) + "."
	}
	el.Layout = LayoutInline
	if startsWithHeading(n) {
		el.Layout = LayoutHeading
	}
	el.Children = s.withOwnText(n, marks, s.clauseChildren(n, childFrame))
	return el
}

// clauseChildren gives each clause-typed child the next 0-based sub-item index.
// Other children do not consume an index.
func (s *session) clauseChildren(n *contract.BlockNode, f frame) []*Element {
	if len(n.Children) == 0 {
		return nil
	}
	out := make([]*Element, 0, len(n.Children))
	index := 0
	for i, child := range n.Children {
		childFrame := f
		childFrame.path = f.path + "/children/" + strconv.Itoa(i)
		subItem := noSubItem
		if Classify(child) == KindClause {
			subItem = index
			index++
		}
		if el := s.node(child, childFrame, subItem); el != nil {
			out = append(out, el)
		}
	}
	return out
}

func (s *session) isDefinitions(parent *contract.BlockNode) bool {
	if parent == nil || parent.Type != contract.TypeClause {
		return false
	}
	return strings.Contains(strings.ToLower(parent.Title), s.definitionMarker)
}

func startsWithHeading(n *contract.BlockNode) bool {
	if len(n.Children) == 0 {
		return false
	}
	first, ok := n.Children[0].(*contract.BlockNode)
	return ok && first != nil && contract.IsHeading(first.Type)
}
