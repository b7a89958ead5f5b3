package models

// Request bodies. Each carries exactly the fields the endpoint documents.

type AssigneeInput struct {
	Assignee string `json:"assignee"`
}

type ReviewerInput struct {
	Reviewer string `json:"reviewer"`
}

type TopicInput struct {
	Topic string `json:"topic"`
}

// ReviewInput is posted to /revisions/current/review. Labels is omitted
// for a plain comment.
type ReviewInput struct {
	Message string         `json:"message"`
	Labels  map[string]int `json:"labels,omitempty"`
}

// WorkInProgressInput is the body of both /wip and /ready.
type WorkInProgressInput struct {
	Message string `json:"message"`
}
