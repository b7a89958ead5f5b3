package models

// Gerrit REST entities. Only the fields this client reads are declared;
// JSON null and missing keys both decode to the zero value, so anything
// where absent and false/zero differ is a pointer.

// ChangeInfo is the information recorded for a change.
type ChangeInfo struct {
	// <project>~<number>
	ID string `json:"id,omitempty"`
	// <project>~<branch>~<number>
	TripletID string `json:"triplet_id,omitempty"`

	Project string `json:"project" validate:"required"`
	// Target branch without the refs/heads/ prefix.
	Branch   string `json:"branch" validate:"required"`
	Topic    string `json:"topic,omitempty"`
	ChangeID string `json:"change_id" validate:"required"`
	Subject  string `json:"subject"`
	// NEW, MERGED or ABANDONED.
	Status         string    `json:"status"`
	Created        TimeStamp `json:"created"`
	Updated        TimeStamp `json:"updated"`
	WorkInProgress bool      `json:"work_in_progress,omitempty"`
	Insertions     int       `json:"insertions"`
	Deletions      int       `json:"deletions"`

	Number   int          `json:"_number" validate:"required,gt=0"`
	Owner    *AccountInfo `json:"owner" validate:"required"`
	Assignee *AccountInfo `json:"assignee,omitempty"`

	Labels    map[string]LabelInfo      `json:"labels,omitempty"`
	Reviewers map[string][]*AccountInfo `json:"reviewers,omitempty"`
	Messages  []ChangeMessageInfo       `json:"messages,omitempty"`

	CurrentRevision string                  `json:"current_revision,omitempty"`
	Revisions       map[string]RevisionInfo `json:"revisions,omitempty"`

	// Set on the last element of a query result when more results exist.
	MoreChanges bool `json:"_more_changes,omitempty"`
}

// CurrentRevisionInfo returns the entry of Revisions keyed by CurrentRevision.
func (c *ChangeInfo) CurrentRevisionInfo() (RevisionInfo, bool) {
	if c.CurrentRevision == "" {
		return RevisionInfo{}, false
	}
	rev, ok := c.Revisions[c.CurrentRevision]
	return rev, ok
}

// RevisionInfo contains information about a patch set.
type RevisionInfo struct {
	Kind     string               `json:"kind,omitempty"`
	Number   int                  `json:"_number"`
	Created  TimeStamp            `json:"created"`
	Uploader *AccountInfo         `json:"uploader,omitempty"`
	Ref      string               `json:"ref"`
	Fetch    map[string]FetchInfo `json:"fetch,omitempty"`
	Commit   *CommitInfo          `json:"commit,omitempty"`
}

// FetchInfo describes one download scheme for a patch set.
type FetchInfo struct {
	URL      string            `json:"url"`
	Ref      string            `json:"ref"`
	Commands map[string]string `json:"commands,omitempty"`
}

// CommitInfo holds information about a commit.
type CommitInfo struct {
	Commit    string         `json:"commit,omitempty"`
	Parents   []CommitInfo   `json:"parents,omitempty"`
	Author    *GitPersonInfo `json:"author,omitempty"`
	Committer *GitPersonInfo `json:"committer,omitempty"`
	Subject   string         `json:"subject"`
	Message   string         `json:"message,omitempty"`
}

// GitPersonInfo contains information about the author/committer of a commit.
type GitPersonInfo struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  TimeStamp `json:"date"`
	TZ    int       `json:"tz"`
}

// ChangeMessageInfo contains information about a message attached to a change.
type ChangeMessageInfo struct {
	ID             string       `json:"id"`
	Author         *AccountInfo `json:"author,omitempty"`
	RealAuthor     *AccountInfo `json:"real_author,omitempty"`
	Date           TimeStamp    `json:"date"`
	Message        string       `json:"message"`
	Tag            string       `json:"tag,omitempty"`
	RevisionNumber int          `json:"_revision_number,omitempty"`
}

// CommentInfo holds information about an inline comment.
type CommentInfo struct {
	PatchSet  int           `json:"patch_set,omitempty"`
	ID        string        `json:"id"`
	Path      string        `json:"path,omitempty"`
	Side      string        `json:"side,omitempty"`
	Line      int           `json:"line,omitempty"`
	Range     *CommentRange `json:"range,omitempty"`
	InReplyTo string        `json:"in_reply_to,omitempty"`
	Message   string        `json:"message,omitempty"`
	Updated   TimeStamp     `json:"updated"`
	Author    *AccountInfo  `json:"author,omitempty"`
	// nil when the server did not say; false is an explicit "resolved".
	Unresolved *bool  `json:"unresolved,omitempty"`
	CommitID   string `json:"commit_id,omitempty"`
}

// CommentRange is a range from (StartLine, StartCharacter) inclusive to
// (EndLine, EndCharacter) exclusive.
type CommentRange struct {
	StartLine      int `json:"start_line"`
	StartCharacter int `json:"start_character"`
	EndLine        int `json:"end_line"`
	EndCharacter   int `json:"end_character"`
}
