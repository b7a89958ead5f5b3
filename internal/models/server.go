package models

// ServerInfo is the subset of /config/server/info this client shows.
type ServerInfo struct {
	Accounts AccountsConfigInfo `json:"accounts"`
	Auth     AuthInfo           `json:"auth"`
	Change   ChangeConfigInfo   `json:"change"`
	Download DownloadInfo       `json:"download"`
	Gerrit   GerritInfo         `json:"gerrit"`
}

type AccountsConfigInfo struct {
	Visibility         string `json:"visibility"`
	DefaultDisplayName string `json:"default_display_name,omitempty"`
}

type AuthInfo struct {
	AuthType                 string   `json:"auth_type"`
	UseContributorAgreements bool     `json:"use_contributor_agreements,omitempty"`
	EditableAccountFields    []string `json:"editable_account_fields,omitempty"`
}

type ChangeConfigInfo struct {
	AllowBlame            bool `json:"allow_blame,omitempty"`
	UpdateDelay           int  `json:"update_delay"`
	SubmitWholeTopic      bool `json:"submit_whole_topic,omitempty"`
	DisablePrivateChanges bool `json:"disable_private_changes,omitempty"`
}

type DownloadInfo struct {
	Schemes  map[string]DownloadSchemeInfo `json:"schemes"`
	Archives []string                      `json:"archives,omitempty"`
}

type DownloadSchemeInfo struct {
	URL             string            `json:"url"`
	IsAuthRequired  bool              `json:"is_auth_required,omitempty"`
	IsAuthSupported bool              `json:"is_auth_supported,omitempty"`
	Commands        map[string]string `json:"commands,omitempty"`
}

type GerritInfo struct {
	AllProjects string `json:"all_projects"`
	AllUsers    string `json:"all_users"`
	DocURL      string `json:"doc_url,omitempty"`
}
