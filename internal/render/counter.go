package render

// ClauseCounter hands out top-level clause numbers for one render session.
// The zero value is ready to use and starts at 1.
type ClauseCounter struct {
	n int
}

// Next advances the counter and returns the new number.
func (c *ClauseCounter) Next() int {
	c.n++
	return c.n
}

// Reset starts numbering over.
func (c *ClauseCounter) Reset() {
	c.n = 0
}

// Current is the last number handed out, 0 if none.
func (c *ClauseCounter) Current() int {
	return c.n
}

// SubItemLabel converts a 0-based sub-item index to its letter label:
// a..z, then aa..az, ba..zz, aaa and so on. Negative indices have no label.
func SubItemLabel(index int) string {
	if index < 0 {
		return ""
	}
	var buf []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		buf = append(buf, byte('a'+(n-1)%26))
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
