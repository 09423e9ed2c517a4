package mdast

import "strconv"

// SourceRange is the half-open byte range [StartOffset, EndOffset) of a
// document.
type SourceRange struct {
	StartOffset int
	EndOffset   int
}

// Len returns the number of bytes in r.
func (r SourceRange) Len() int {
	return r.EndOffset - r.StartOffset
}

// Slice returns the bytes of content covered by r, or nil when r lies
// outside content.
func (r SourceRange) Slice(content []byte) []byte {
	if r.StartOffset < 0 || r.EndOffset > len(content) || r.StartOffset > r.EndOffset {
		return nil
	}
	return content[r.StartOffset:r.EndOffset]
}

// String formats r as "start:end".
func (r SourceRange) String() string {
	return strconv.Itoa(r.StartOffset) + ":" + strconv.Itoa(r.EndOffset)
}
