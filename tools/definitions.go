package tools

// WikiReadTools defines the read-only wiki tools.
// These require no authentication and never consume an edit token.
var WikiReadTools = []ToolSpec{
	{
		Name:   "fandom_search",
		Method: "Search",
		Description: "Search wiki pages by text query. Returns matching page titles with " +
			"snippets, sizes and timestamps. Supports offset-based pagination via the " +
			"HasMore/NextOffset fields in the result.",
		Title:      "Search Wiki",
		Category:   "read",
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:   "fandom_get_page",
		Method: "GetPage",
		Description: "Fetch the wikitext content of a page by title. The result includes " +
			"the page ID and a Missing flag when the page does not exist.",
		Title:      "Get Page",
		Category:   "read",
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:   "fandom_get_category_members",
		Method: "GetCategoryMembers",
		Description: "List the pages in a category. Accepts the category name with or " +
			"without the 'Category:' prefix and paginates with a continuation token.",
		Title:      "Get Category Members",
		Category:   "read",
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:   "fandom_get_user_contributions",
		Method: "GetUserContributions",
		Description: "List recent edits made by a user: page titles, timestamps, edit " +
			"summaries and size deltas.",
		Title:      "Get User Contributions",
		Category:   "read",
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:   "fandom_get_backlinks",
		Method: "GetBacklinks",
		Description: "List the pages that link to a given page. Useful for checking what " +
			"would break before deleting or moving a page.",
		Title:      "Get Backlinks",
		Category:   "read",
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:   "fandom_get_images",
		Method: "GetImages",
		Description: "List the image files used on a page.",
		Title:      "Get Page Images",
		Category:   "read",
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:   "fandom_get_external_links",
		Method: "GetExternalLinks",
		Description: "List the external URLs referenced by a page.",
		Title:      "Get External Links",
		Category:   "read",
		ReadOnly:   true,
		Idempotent: true,
	},
}

// WikiWriteTools defines the wiki tools that modify content.
// Each consumes a CSRF token; the client fetches and refreshes tokens
// automatically, so callers never manage tokens themselves.
var WikiWriteTools = []ToolSpec{
	{
		Name:   "fandom_edit_page",
		Method: "EditPage",
		Description: "Create or replace the content of a wiki page. Overwrites the entire " +
			"page (or a single section when Section is set). Edits are minor by default; " +
			"set Minor to false for substantive changes.",
		Title:       "Edit Page",
		Category:    "write",
		Destructive: true,
	},
	{
		Name:   "fandom_prepend",
		Method: "Prepend",
		Description: "Insert text at the top of a page, before the existing content. The " +
			"rest of the page is left untouched.",
		Title:    "Prepend To Page",
		Category: "write",
	},
	{
		Name:   "fandom_append",
		Method: "Append",
		Description: "Add text at the bottom of a page, after the existing content. The " +
			"rest of the page is left untouched.",
		Title:    "Append To Page",
		Category: "write",
	},
	{
		Name:   "fandom_undo",
		Method: "Undo",
		Description: "Revert a specific revision of a page by revision ID, like the undo " +
			"link in page history.",
		Title:    "Undo Revision",
		Category: "write",
	},
	{
		Name:   "fandom_purge",
		Method: "Purge",
		Description: "Invalidate the server-side render cache for pages so they are " +
			"re-rendered on next view. Accepts explicit titles, page IDs, or a single " +
			"'Category:' title to purge every member of that category. Does not change " +
			"any content.",
		Title:      "Purge Pages",
		Category:   "write",
		Idempotent: true,
	},
}

// WikiAdminTools defines the tools that require elevated wiki rights
// (delete, protect, block and the like). They fail with a permission
// error from the API when the configured account lacks the right.
var WikiAdminTools = []ToolSpec{
	{
		Name:   "fandom_delete_page",
		Method: "DeletePage",
		Description: "Delete a wiki page with an optional reason for the deletion log. " +
			"Requires administrator rights. Deleted pages can be restored with " +
			"fandom_undelete_page.",
		Title:       "Delete Page",
		Category:    "admin",
		Destructive: true,
	},
	{
		Name:   "fandom_undelete_page",
		Method: "Undelete",
		Description: "Restore a previously deleted page, including its revision history. " +
			"Requires administrator rights.",
		Title:    "Undelete Page",
		Category: "admin",
	},
	{
		Name:   "fandom_protect_page",
		Method: "Protect",
		Description: "Change the protection settings of a page. Protections maps an " +
			"action (edit, move) to the group required (autoconfirmed, sysop). An empty " +
			"expiry means the protection never expires.",
		Title:      "Protect Page",
		Category:   "admin",
		Idempotent: true,
	},
	{
		Name:   "fandom_move_page",
		Method: "Move",
		Description: "Rename a page by moving it to a new title. Leaves a redirect behind " +
			"unless NoRedirect is set; moves the talk page along unless MoveTalk is false.",
		Title:    "Move Page",
		Category: "admin",
	},
	{
		Name:   "fandom_block_user",
		Method: "Block",
		Description: "Block a user from editing. Expiry accepts relative values like " +
			"'2 weeks' or 'never'. Requires block rights.",
		Title:       "Block User",
		Category:    "admin",
		Destructive: true,
	},
	{
		Name:   "fandom_unblock_user",
		Method: "Unblock",
		Description: "Lift an active block on a user. Requires block rights.",
		Title:      "Unblock User",
		Category:   "admin",
		Idempotent: true,
	},
	{
		Name:   "fandom_email_user",
		Method: "EmailUser",
		Description: "Send an email to a registered user through the wiki's email relay. " +
			"Only works when the target user has email enabled.",
		Title:    "Email User",
		Category: "admin",
	},
	{
		Name:   "fandom_create_account",
		Method: "CreateAccount",
		Description: "Register a new wiki account with the given username and password.",
		Title:    "Create Account",
		Category: "admin",
	},
}

// DiscussionTools defines the tools for the Fandom discussion service.
// Discussions live outside the wiki API and authenticate separately, so
// these are only registered when a discussion site ID is configured.
var DiscussionTools = []ToolSpec{
	{
		Name:   "fandom_create_thread",
		Method: "CreatePost",
		Description: "Start a new discussion thread in a forum. Content is plain text; " +
			"the client converts it to the rich-text document the service expects.",
		Title:    "Create Discussion Thread",
		Category: "discussion",
	},
	{
		Name:   "fandom_delete_thread",
		Method: "DeletePost",
		Description: "Delete a discussion thread by ID. Requires moderator rights on the " +
			"discussion site. Deleted threads can be restored with fandom_undelete_thread.",
		Title:       "Delete Discussion Thread",
		Category:    "discussion",
		Destructive: true,
	},
	{
		Name:   "fandom_undelete_thread",
		Method: "UndeletePost",
		Description: "Restore a deleted discussion thread by ID.",
		Title:    "Undelete Discussion Thread",
		Category: "discussion",
	},
	{
		Name:   "fandom_lock_thread",
		Method: "LockPost",
		Description: "Lock a discussion thread so no further replies can be posted.",
		Title:      "Lock Discussion Thread",
		Category:   "discussion",
		Idempotent: true,
	},
	{
		Name:   "fandom_unlock_thread",
		Method: "UnlockPost",
		Description: "Unlock a previously locked discussion thread, reopening it for replies.",
		Title:      "Unlock Discussion Thread",
		Category:   "discussion",
		Idempotent: true,
	},
}

// AllWikiTools returns every wiki tool spec in registration order.
func AllWikiTools() []ToolSpec {
	all := make([]ToolSpec, 0, len(WikiReadTools)+len(WikiWriteTools)+len(WikiAdminTools))
	all = append(all, WikiReadTools...)
	all = append(all, WikiWriteTools...)
	all = append(all, WikiAdminTools...)
	return all
}
