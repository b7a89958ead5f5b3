package changes

import (
	"net/url"
	"strconv"
	"strings"

	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
)

// QueryOption selects extra fields in change responses.
type QueryOption string

const (
	DownloadCommands QueryOption = "DOWNLOAD_COMMANDS"
	CurrentRevision  QueryOption = "CURRENT_REVISION"
	CurrentCommit    QueryOption = "CURRENT_COMMIT"
	DetailedLabels   QueryOption = "DETAILED_LABELS"
	DetailedAccounts QueryOption = "DETAILED_ACCOUNTS"
	Labels           QueryOption = "LABELS"
	Messages         QueryOption = "MESSAGES"
	AllRevisions     QueryOption = "ALL_REVISIONS"
)

// optionOrder is the order options are sent in, whatever order the caller
// passed them.
var optionOrder = []QueryOption{
	DownloadCommands,
	CurrentRevision,
	CurrentCommit,
	DetailedLabels,
	DetailedAccounts,
	Labels,
	Messages,
	AllRevisions,
}

// TopicOptions is the option set used for topic listings.
var TopicOptions = []QueryOption{
	DownloadCommands,
	CurrentRevision,
	CurrentCommit,
	DetailedLabels,
	DetailedAccounts,
}

// Canonical returns opts deduplicated and sorted into the fixed order.
// Unknown options are rejected.
func Canonical(opts ...QueryOption) ([]QueryOption, error) {
	seen := make(map[QueryOption]bool, len(opts))
	for _, o := range opts {
		if !known(o) {
			return nil, domainErrors.ErrInvalidArgument.
				WithContext("option", string(o)).
				WithSuggestion("Valid options: " + joinOptions(optionOrder))
		}
		seen[o] = true
	}

	out := make([]QueryOption, 0, len(seen))
	for _, o := range optionOrder {
		if seen[o] {
			out = append(out, o)
		}
	}
	return out, nil
}

// ParseOption maps a user-supplied name, in any case, to an option.
func ParseOption(s string) (QueryOption, error) {
	o := QueryOption(strings.ToUpper(strings.TrimSpace(s)))
	if !known(o) {
		return "", domainErrors.ErrInvalidArgument.
			WithContext("option", s).
			WithSuggestion("Valid options: " + joinOptions(optionOrder))
	}
	return o, nil
}

func known(o QueryOption) bool {
	for _, k := range optionOrder {
		if k == o {
			return true
		}
	}
	return false
}

func joinOptions(opts []QueryOption) string {
	names := make([]string, len(opts))
	for i, o := range opts {
		names[i] = string(o)
	}
	return strings.Join(names, ", ")
}

// queryString encodes q, then every option as a repeated o=, then n. Keys
// are written by hand because url.Values sorts them.
func queryString(query string, opts []QueryOption, limit int) string {
	var parts []string
	if query != "" {
		parts = append(parts, "q="+url.QueryEscape(query))
	}
	for _, o := range opts {
		parts = append(parts, "o="+string(o))
	}
	if limit > 0 {
		parts = append(parts, "n="+strconv.Itoa(limit))
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}
