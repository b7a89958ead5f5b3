package rest

import "bytes"

// Magic is the line the server puts in front of every JSON body so the
// response cannot be evaluated as a script.
const Magic = ")]}'"

// Unframe returns the content strictly after the first line that consists of
// Magic. ok is false when no such line exists.
func Unframe(raw []byte) (payload []byte, ok bool) {
	remaining := raw
	for len(remaining) > 0 {
		line := remaining
		next := []byte(nil)
		if i := bytes.IndexByte(remaining, '\n'); i >= 0 {
			line = remaining[:i]
			next = remaining[i+1:]
		}
		if string(bytes.TrimRight(line, "\r")) == Magic {
			if next == nil {
				return []byte{}, true
			}
			return next, true
		}
		if next == nil {
			break
		}
		remaining = next
	}
	return nil, false
}
