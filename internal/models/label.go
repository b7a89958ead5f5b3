package models

// LabelInfo holds information about a label on a change, always
// corresponding to the current patch set.
type LabelInfo struct {
	Optional     bool              `json:"optional,omitempty"`
	Approved     *AccountInfo      `json:"approved,omitempty"`
	Rejected     *AccountInfo      `json:"rejected,omitempty"`
	Recommended  *AccountInfo      `json:"recommended,omitempty"`
	Disliked     *AccountInfo      `json:"disliked,omitempty"`
	Blocking     bool              `json:"blocking,omitempty"`
	Value        int               `json:"value,omitempty"`
	DefaultValue int               `json:"default_value,omitempty"`
	All          []ApprovalInfo    `json:"all,omitempty"`
	Values       map[string]string `json:"values,omitempty"`
}

// ApprovalInfo is one account's vote on a label.
type ApprovalInfo struct {
	AccountInfo
	// nil means the account may vote but has not; 0 is an explicit vote.
	Value                *int             `json:"value,omitempty"`
	PermittedVotingRange *VotingRangeInfo `json:"permitted_voting_range,omitempty"`
	Date                 TimeStamp        `json:"date,omitempty"`
}

// VotingRangeInfo describes the continuous voting range from Min to Max.
type VotingRangeInfo struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// LabelSet maps label names to their state on the current patch set.
type LabelSet map[string]LabelInfo

// Votes returns the non-nil votes cast on label, keyed by account label.
func (s LabelSet) Votes(label string) map[string]int {
	info, ok := s[label]
	if !ok {
		return nil
	}
	votes := make(map[string]int)
	for _, a := range info.All {
		if a.Value == nil {
			continue
		}
		acct := a.AccountInfo
		votes[acct.Label()] = *a.Value
	}
	return votes
}
