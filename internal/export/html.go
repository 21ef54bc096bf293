package export

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"contractview/internal/render"
)

// DefaultMentionColor is the highlight used for mentions that carry no color.
const DefaultMentionColor = "rgb(20, 170, 245)"

// HTML renders a presentation tree as an HTML fragment.
func HTML(root *render.Element) string {
	if root == nil {
		return ""
	}
	var buf bytes.Buffer
	for _, node := range htmlNodes(root) {
		if err := html.Render(&buf, node); err != nil {
			return ""
		}
	}
	return buf.String()
}

func htmlNodes(e *render.Element) []*html.Node {
	switch e.Tag {
	case render.TagText:
		return textNodes(e)
	case render.TagMention:
		return []*html.Node{mentionNode(e)}
	case render.TagClause:
		return []*html.Node{clauseNode(e)}
	}

	var node *html.Node
	switch e.Tag {
	case render.TagBundle:
		node = element(atom.Div, "class", "contract-bundle")
	case render.TagDocument:
		node = element(atom.Section, "class", "contract-document")
		if e.Title != "" {
			node.Attr = append(node.Attr, html.Attribute{Key: "data-title", Val: e.Title})
		}
	case render.TagParagraph:
		node = element(atom.P)
	case render.TagHeading:
		node = element(headingAtom(e.Level))
	case render.TagList:
		node = element(atom.Ul)
	case render.TagOrderedList:
		node = element(atom.Ol)
	case render.TagListItem:
		node = element(atom.Li)
	case render.TagInline:
		node = element(atom.Span, "class", "list-item-content")
	default:
		node = element(atom.Div)
		if e.Source != "" && e.Source != "block" {
			node.Attr = append(node.Attr, html.Attribute{Key: "data-type", Val: e.Source})
		}
	}
	if e.Color != "" {
		node.Attr = append(node.Attr, html.Attribute{Key: "style", Val: "color: " + e.Color})
	}
	appendChildren(node, e.Children)
	return []*html.Node{node}
}

func clauseNode(e *render.Element) *html.Node {
	node := element(atom.Div, "class", "clause clause-"+string(e.Layout))
	if e.Number > 0 {
		node.Attr = append(node.Attr, html.Attribute{Key: "data-number", Val: strings.TrimSuffix(e.Label, ".")})
	}
	if e.Label != "" {
		class := "clause-number"
		if e.Layout == render.LayoutSubItem {
			class = "clause-letter"
		}
		label := element(atom.Span, "class", class)
		label.AppendChild(&html.Node{Type: html.TextNode, Data: e.Label})
		node.AppendChild(label)
	}
	body := element(atom.Div, "class", "clause-body")
	appendChildren(body, e.Children)
	node.AppendChild(body)
	return node
}

func mentionNode(e *render.Element) *html.Node {
	color := e.Color
	if color == "" {
		color = DefaultMentionColor
	}
	node := element(atom.Span, "class", "mention", "style", "background-color: "+color)
	if e.MentionID != "" {
		node.Attr = append(node.Attr, html.Attribute{Key: "data-mention-id", Val: e.MentionID})
	}
	if e.Title != "" {
		node.Attr = append(node.Attr, html.Attribute{Key: "title", Val: e.Title})
	}
	if len(e.Children) > 0 {
		appendChildren(node, e.Children)
		return node
	}
	node.AppendChild(styled(e.Style, "", &html.Node{Type: html.TextNode, Data: e.Value}))
	return node
}

// textNodes joins the lines with <br> and wraps them in the element's marks.
func textNodes(e *render.Element) []*html.Node {
	holder := &html.Node{Type: html.DocumentNode}
	for i, line := range e.Lines {
		if i > 0 {
			holder.AppendChild(element(atom.Br))
		}
		if line != "" {
			holder.AppendChild(&html.Node{Type: html.TextNode, Data: line})
		}
	}
	var inner []*html.Node
	for child := holder.FirstChild; child != nil; {
		next := child.NextSibling
		holder.RemoveChild(child)
		inner = append(inner, child)
		child = next
	}
	if e.Style == (render.Style{}) && e.Color == "" {
		return inner
	}
	return []*html.Node{styled(e.Style, e.Color, inner...)}
}

func styled(style render.Style, color string, inner ...*html.Node) *html.Node {
	wrappers := make([]*html.Node, 0, 4)
	if color != "" {
		wrappers = append(wrappers, element(atom.Span, "style", "color: "+color))
	}
	if style.Bold {
		wrappers = append(wrappers, element(atom.Strong))
	}
	if style.Italic {
		wrappers = append(wrappers, element(atom.Em))
	}
	if style.Underline {
		wrappers = append(wrappers, element(atom.U))
	}
	if len(wrappers) == 0 {
		if len(inner) == 1 {
			return inner[0]
		}
		wrappers = append(wrappers, element(atom.Span))
	}
	for i := 1; i < len(wrappers); i++ {
		wrappers[i-1].AppendChild(wrappers[i])
	}
	innermost := wrappers[len(wrappers)-1]
	for _, node := range inner {
		innermost.AppendChild(node)
	}
	return wrappers[0]
}

func appendChildren(node *html.Node, children []*render.Element) {
	for _, child := range children {
		if child == nil {
			continue
		}
		for _, rendered := range htmlNodes(child) {
			node.AppendChild(rendered)
		}
	}
}

func element(a atom.Atom, attrs ...string) *html.Node {
	node := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		node.Attr = append(node.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return node
}

func headingAtom(level int) atom.Atom {
	switch level {
	case 1:
		return atom.H1
	case 2:
		return atom.H2
	case 3:
		return atom.H3
	case 4:
		return atom.H4
	case 5:
		return atom.H5
	default:
		return atom.H6
	}
}
