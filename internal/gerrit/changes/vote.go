package changes

import (
	"strconv"
	"strings"

	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/thomas-vilte/matereview/internal/regex"
)

// ParseLabelVote reads a vote written as "Label=+1", "Label=-2" or the
// short form "Label+1". A bare label votes +1.
func ParseLabelVote(s string) (LabelVote, error) {
	s = strings.TrimSpace(s)
	invalid := domainErrors.ErrInvalidArgument.
		WithContext("field", "vote").
		WithContext("value", s).
		WithSuggestion("Write the vote as Label=+1, for example Code-Review=+2")

	label, value := s, "+1"
	if i := strings.Index(s, "="); i >= 0 {
		label, value = s[:i], s[i+1:]
	} else if m := regex.LabelVoteShort.FindStringSubmatch(s); m != nil {
		label, value = m[1], m[2]
	}

	label = strings.TrimSpace(label)
	if label == "" {
		return LabelVote{}, invalid
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return LabelVote{}, invalid.WithError(err)
	}
	return LabelVote{Label: label, Value: n}, nil
}
