package render

import "contractview/internal/contract"

// Merge combines a node's own marks with the marks it inherits. Marks only
// accumulate: neither side can switch the other off.
func Merge(own, inherited contract.Marks) contract.Marks {
	return contract.Marks{
		Bold:      own.Bold || inherited.Bold,
		Italic:    own.Italic || inherited.Italic,
		Underline: own.Underline || inherited.Underline,
	}
}

func styleOf(marks contract.Marks) Style {
	return Style{Bold: marks.Bold, Italic: marks.Italic, Underline: marks.Underline}
}
