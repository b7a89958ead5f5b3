package regex

import "regexp"

var (
	// Review branch names
	NonWord = regexp.MustCompile(`\W+`)

	// Label votes in the short form, e.g. Code-Review+2 or Verified-1
	LabelVoteShort = regexp.MustCompile(`^(.+?)([+-]\d+)$`)
)
