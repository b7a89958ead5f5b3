package changes

import (
	"net/url"
	"strconv"
	"strings"

	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/thomas-vilte/matereview/internal/models"
)

// ChangeID addresses a change in a request path. It is either a change
// number or "project~branch~Change-Id" with the project escaped.
type ChangeID string

// NumberID returns the identifier for change number n.
func NumberID(n int) ChangeID {
	return ChangeID(strconv.Itoa(n))
}

// TripletID builds the triplet form from an unescaped project name.
func TripletID(project, branch, changeID string) ChangeID {
	return ChangeID(EscapeProject(project) + "~" + branch + "~" + changeID)
}

// FromChange converts a decoded change into the triplet identifier used for
// follow-up calls.
func FromChange(c *models.ChangeInfo) ChangeID {
	return TripletID(c.Project, c.Branch, c.ChangeID)
}

// ParseID accepts a change number, a bare Change-Id or a triplet whose
// project may be escaped or not.
func ParseID(s string) (ChangeID, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return "", domainErrors.ErrInvalidChangeID.WithContext("id", s)
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return "", domainErrors.ErrInvalidChangeID.WithContext("id", s)
		}
		return NumberID(n), nil
	}

	parts := strings.Split(s, "~")
	switch len(parts) {
	case 1:
		return ChangeID(s), nil
	case 3:
		project, err := UnescapeProject(parts[0])
		if err != nil || project == "" || parts[1] == "" || parts[2] == "" {
			return "", domainErrors.ErrInvalidChangeID.WithContext("id", s)
		}
		return TripletID(project, parts[1], parts[2]), nil
	default:
		return "", domainErrors.ErrInvalidChangeID.WithContext("id", s)
	}
}

func (id ChangeID) String() string {
	return string(id)
}

func (id ChangeID) path(suffix string) string {
	return "/changes/" + string(id) + suffix
}

// EscapeProject percent-encodes a project name for use as one path
// segment, so "a/b/c" becomes "a%2Fb%2Fc".
func EscapeProject(project string) string {
	return url.PathEscape(project)
}

// UnescapeProject reverses EscapeProject.
func UnescapeProject(escaped string) (string, error) {
	return url.PathUnescape(escaped)
}
