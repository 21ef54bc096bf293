package render

import "strings"

// PlainText flattens a presentation tree to text: clause labels ahead of their
// content, mention values inline, one line per block.
func PlainText(e *Element) string {
	var b strings.Builder
	writePlain(&b, e)

	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func writePlain(b *strings.Builder, e *Element) {
	if e == nil {
		return
	}
	switch e.Tag {
	case TagText:
		b.WriteString(strings.Join(e.Lines, "\n"))
		return
	case TagMention:
		if len(e.Children) == 0 {
			b.WriteString(e.Value)
			return
		}
	case TagClause:
		if e.Label != "" {
			b.WriteString(e.Label)
			b.WriteByte(' ')
		}
	}
	for _, child := range e.Children {
		writePlain(b, child)
	}
	if isBlockTag(e.Tag) {
		b.WriteByte('\n')
	}
}

func isBlockTag(tag Tag) bool {
	switch tag {
	case TagText, TagMention, TagInline:
		return false
	}
	return true
}
