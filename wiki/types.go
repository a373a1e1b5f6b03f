package wiki

// Constants for response limits
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// categoryPrefix is the category namespace prefix recognized by Purge
const categoryPrefix = "Category:"

// ========== Identity ==========

// Identity describes the user the session is authenticated as. It is
// cached opportunistically after login/logout and is advisory only;
// no operation consults it to gate behavior.
type Identity struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Anonymous bool     `json:"anonymous"`
	Groups    []string `json:"groups,omitempty"`
	Rights    []string `json:"rights,omitempty"`
	EditCount int      `json:"edit_count"`
}

func anonymousIdentity() Identity {
	return Identity{Anonymous: true}
}

// ========== Edit Types ==========

type EditPageArgs struct {
	Title   string `json:"title" jsonschema:"required,description=Page title to edit or create"`
	Content string `json:"content" jsonschema:"required,description=New page content in wikitext format"`
	Summary string `json:"summary,omitempty" jsonschema:"description=Edit summary explaining the change"`
	Minor   *bool  `json:"minor,omitempty" jsonschema:"description=Mark as minor edit (default true)"`
	Bot     bool   `json:"bot,omitempty" jsonschema:"description=Mark as bot edit (requires bot flag)"`
	Section string `json:"section,omitempty" jsonschema:"description=Section to edit ('new' for new section, number for existing)"`
}

type PrependArgs struct {
	Title   string `json:"title" jsonschema:"required,description=Page title"`
	Text    string `json:"text" jsonschema:"required,description=Wikitext to insert at the top of the page"`
	Summary string `json:"summary,omitempty" jsonschema:"description=Edit summary"`
	Minor   *bool  `json:"minor,omitempty" jsonschema:"description=Mark as minor edit (default true)"`
}

type AppendArgs struct {
	Title   string `json:"title" jsonschema:"required,description=Page title"`
	Text    string `json:"text" jsonschema:"required,description=Wikitext to insert at the bottom of the page"`
	Summary string `json:"summary,omitempty" jsonschema:"description=Edit summary"`
	Minor   *bool  `json:"minor,omitempty" jsonschema:"description=Mark as minor edit (default true)"`
}

type UndoArgs struct {
	Title      string `json:"title" jsonschema:"required,description=Page title"`
	RevisionID int    `json:"revision_id" jsonschema:"required,description=Revision to undo"`
	Summary    string `json:"summary,omitempty" jsonschema:"description=Edit summary"`
}

type EditResult struct {
	Success    bool   `json:"success"`
	Title      string `json:"title"`
	PageID     int    `json:"page_id"`
	RevisionID int    `json:"revision_id"`
	NewPage    bool   `json:"new_page"`
	Message    string `json:"message"`
}

// ========== Page Lifecycle Types ==========

type DeletePageArgs struct {
	Title  string `json:"title" jsonschema:"required,description=Page title to delete"`
	Reason string `json:"reason,omitempty" jsonschema:"description=Deletion reason shown in the log"`
}

type DeleteResult struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
	LogID  int    `json:"log_id"`
}

type UndeleteArgs struct {
	Title  string `json:"title" jsonschema:"required,description=Page title to restore"`
	Reason string `json:"reason,omitempty" jsonschema:"description=Restoration reason shown in the log"`
}

type UndeleteResult struct {
	Title     string `json:"title"`
	Revisions int    `json:"revisions"`
}

type ProtectArgs struct {
	Title string `json:"title" jsonschema:"required,description=Page title to protect"`
	// Protections maps a restricted action to the group allowed to
	// perform it (e.g., edit -> sysop).
	Protections map[string]string `json:"protections" jsonschema:"required,description=Mapping of action to required group (e.g., {\"edit\": \"sysop\"})"`
	Expiry      string            `json:"expiry,omitempty" jsonschema:"description=Expiry timestamp or 'infinite'"`
	Cascade     bool              `json:"cascade,omitempty" jsonschema:"description=Apply protection to transcluded pages"`
	Reason      string            `json:"reason,omitempty" jsonschema:"description=Protection reason shown in the log"`
}

type ProtectResult struct {
	Title       string   `json:"title"`
	Protections []string `json:"protections"`
}

type MoveArgs struct {
	From       string `json:"from" jsonschema:"required,description=Current page title"`
	To         string `json:"to" jsonschema:"required,description=New page title"`
	Reason     string `json:"reason,omitempty" jsonschema:"description=Move reason shown in the log"`
	MoveTalk   bool   `json:"move_talk,omitempty" jsonschema:"description=Move the associated talk page too"`
	NoRedirect bool   `json:"no_redirect,omitempty" jsonschema:"description=Suppress the redirect from the old title"`
}

type MoveResult struct {
	From            string `json:"from"`
	To              string `json:"to"`
	RedirectCreated bool   `json:"redirect_created"`
	TalkMoved       bool   `json:"talk_moved"`
}

type PurgeArgs struct {
	// Titles to purge. A single title with the Category: prefix purges
	// every member of that category instead.
	Titles  []string `json:"titles,omitempty" jsonschema:"description=Page titles to purge. A single 'Category:...' entry purges all category members."`
	PageIDs []int    `json:"page_ids,omitempty" jsonschema:"description=Page IDs to purge (used instead of titles)"`
}

type PurgeResult struct {
	Purged []PurgedPage `json:"purged"`
}

type PurgedPage struct {
	Title  string `json:"title"`
	Purged bool   `json:"purged"`
}

// ========== User Administration Types ==========

type BlockArgs struct {
	User          string `json:"user" jsonschema:"required,description=Username or IP to block"`
	Expiry        string `json:"expiry,omitempty" jsonschema:"description=Block duration (e.g., '2 weeks', 'infinite')"`
	Reason        string `json:"reason,omitempty" jsonschema:"description=Block reason shown in the log"`
	NoCreate      bool   `json:"no_create,omitempty" jsonschema:"description=Prevent account creation from the blocked address"`
	AutoBlock     bool   `json:"auto_block,omitempty" jsonschema:"description=Automatically block the last used IP"`
	NoEmail       bool   `json:"no_email,omitempty" jsonschema:"description=Prevent the user from sending email"`
	AllowUserTalk bool   `json:"allow_user_talk,omitempty" jsonschema:"description=Let the user edit their own talk page"`
}

type BlockResult struct {
	User   string `json:"user"`
	Expiry string `json:"expiry"`
	ID     int    `json:"id"`
}

type UnblockArgs struct {
	User   string `json:"user" jsonschema:"required,description=Username or IP to unblock"`
	Reason string `json:"reason,omitempty" jsonschema:"description=Unblock reason shown in the log"`
}

type UnblockResult struct {
	User string `json:"user"`
	ID   int    `json:"id"`
}

type EmailArgs struct {
	Target  string `json:"target" jsonschema:"required,description=Username to email"`
	Subject string `json:"subject" jsonschema:"required,description=Email subject"`
	Text    string `json:"text" jsonschema:"required,description=Email body"`
	CCMe    bool   `json:"cc_me,omitempty" jsonschema:"description=Send a copy to the sender"`
}

type EmailResult struct {
	Result string `json:"result"`
}

type CreateAccountArgs struct {
	Username string `json:"username" jsonschema:"required,description=Username for the new account"`
	Password string `json:"password" jsonschema:"required,description=Password for the new account"`
	Email    string `json:"email,omitempty" jsonschema:"description=Email address for the new account"`
	Reason   string `json:"reason,omitempty" jsonschema:"description=Reason shown in the account creation log"`
}

type CreateAccountResult struct {
	Status   string `json:"status"`
	Username string `json:"username"`
	Message  string `json:"message,omitempty"`
}

// ========== Search Types ==========

type SearchArgs struct {
	Query  string `json:"query" jsonschema:"required,description=Search query text"`
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Maximum results to return (default 20, max 500)"`
	Offset int    `json:"offset,omitempty" jsonschema:"description=Offset for pagination"`
}

type SearchResult struct {
	Query      string      `json:"query"`
	TotalHits  int         `json:"total_hits"`
	Results    []SearchHit `json:"results"`
	HasMore    bool        `json:"has_more"`
	NextOffset int         `json:"next_offset,omitempty"`
}

type SearchHit struct {
	PageID  int    `json:"page_id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Size    int    `json:"size"`
}

// ========== Page Content Types ==========

type GetPageArgs struct {
	Title string `json:"title" jsonschema:"required,description=Page title to retrieve"`
}

type PageContent struct {
	Title     string `json:"title"`
	PageID    int    `json:"page_id"`
	Content   string `json:"content"`
	Revision  int    `json:"revision_id"`
	Timestamp string `json:"timestamp"`
	Missing   bool   `json:"missing,omitempty"`
}

// ========== Category Types ==========

type CategoryMembersArgs struct {
	Category     string `json:"category" jsonschema:"required,description=Category name (with or without 'Category:' prefix)"`
	Limit        int    `json:"limit,omitempty" jsonschema:"description=Maximum members to return (default 50, max 500)"`
	ContinueFrom string `json:"continue_from,omitempty" jsonschema:"description=Continue token for pagination"`
}

type CategoryMembersResult struct {
	Category     string        `json:"category"`
	Members      []PageSummary `json:"members"`
	HasMore      bool          `json:"has_more"`
	ContinueFrom string        `json:"continue_from,omitempty"`
}

type PageSummary struct {
	PageID int    `json:"page_id"`
	Title  string `json:"title"`
}

// ========== Contribution History Types ==========

type UserContributionsArgs struct {
	User         string `json:"user" jsonschema:"required,description=Username whose contributions to list"`
	Limit        int    `json:"limit,omitempty" jsonschema:"description=Maximum contributions to return (default 50, max 500)"`
	ContinueFrom string `json:"continue_from,omitempty" jsonschema:"description=Continue token for pagination"`
}

type UserContributionsResult struct {
	User          string         `json:"user"`
	Contributions []Contribution `json:"contributions"`
	HasMore       bool           `json:"has_more"`
	ContinueFrom  string         `json:"continue_from,omitempty"`
}

type Contribution struct {
	Title      string `json:"title"`
	PageID     int    `json:"page_id"`
	RevisionID int    `json:"revision_id"`
	Timestamp  string `json:"timestamp"`
	Comment    string `json:"comment"`
	Minor      bool   `json:"minor"`
	SizeDiff   int    `json:"size_diff"`
}

// ========== Link Enumeration Types ==========

type BacklinksArgs struct {
	Title string `json:"title" jsonschema:"required,description=Page whose incoming links to list"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Maximum backlinks to return (default 50, max 500)"`
}

type BacklinksResult struct {
	Title     string        `json:"title"`
	Backlinks []PageSummary `json:"backlinks"`
}

type ImagesArgs struct {
	Title string `json:"title" jsonschema:"required,description=Page whose embedded images to list"`
}

type ImagesResult struct {
	Title  string   `json:"title"`
	Images []string `json:"images"`
}

type ExternalLinksArgs struct {
	Title string `json:"title" jsonschema:"required,description=Page whose external links to list"`
}

type ExternalLinksResult struct {
	Title string   `json:"title"`
	Links []string `json:"links"`
}
