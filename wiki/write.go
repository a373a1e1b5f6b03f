package wiki

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// setMinorFlag applies the minor-edit default: edits are minor unless
// the caller explicitly opts out.
func setMinorFlag(params url.Values, minor *bool) {
	if minor == nil || *minor {
		params.Set("minor", "1")
	} else {
		params.Set("notminor", "1")
	}
}

// applyEdit is the single primitive behind EditPage, Prepend, Append and
// Undo; they differ only in which content parameter is populated.
func (c *Client) applyEdit(ctx context.Context, params url.Values) (EditResult, error) {
	resp, err := c.doAction(ctx, actionRequest{action: "edit", params: params, needsToken: true})
	if err != nil {
		return EditResult{}, err
	}

	edit := getObject(resp, "edit")
	if edit == nil {
		return EditResult{}, fmt.Errorf("unexpected edit response format")
	}

	result := getString(edit, "result")
	title := getString(edit, "title")
	if result != "Success" {
		return EditResult{
			Success: false,
			Title:   title,
			Message: fmt.Sprintf("Edit failed: %s", result),
		}, nil
	}

	editResult := EditResult{
		Success:    true,
		Title:      title,
		PageID:     getInt(edit, "pageid"),
		RevisionID: getInt(edit, "newrevid"),
		NewPage:    edit["new"] != nil,
		Message:    "Page edited successfully",
	}
	if editResult.NewPage {
		editResult.Message = "Page created successfully"
	}

	c.logger.Info("Edit applied",
		"title", editResult.Title,
		"revision", editResult.RevisionID,
		"new_page", editResult.NewPage)

	return editResult, nil
}

// EditPage creates a page or replaces its content
func (c *Client) EditPage(ctx context.Context, args EditPageArgs) (EditResult, error) {
	if args.Title == "" {
		return EditResult{}, fmt.Errorf("title is required")
	}
	if args.Content == "" {
		return EditResult{}, fmt.Errorf("content is required")
	}

	params := url.Values{}
	params.Set("title", args.Title)
	params.Set("text", args.Content)
	if args.Summary != "" {
		params.Set("summary", args.Summary)
	}
	if args.Bot {
		params.Set("bot", "1")
	}
	if args.Section != "" {
		params.Set("section", args.Section)
	}
	setMinorFlag(params, args.Minor)

	return c.applyEdit(ctx, params)
}

// Prepend inserts wikitext at the top of a page
func (c *Client) Prepend(ctx context.Context, args PrependArgs) (EditResult, error) {
	if args.Title == "" {
		return EditResult{}, fmt.Errorf("title is required")
	}
	if args.Text == "" {
		return EditResult{}, fmt.Errorf("text is required")
	}

	params := url.Values{}
	params.Set("title", args.Title)
	params.Set("prependtext", args.Text)
	if args.Summary != "" {
		params.Set("summary", args.Summary)
	}
	setMinorFlag(params, args.Minor)

	return c.applyEdit(ctx, params)
}

// Append inserts wikitext at the bottom of a page
func (c *Client) Append(ctx context.Context, args AppendArgs) (EditResult, error) {
	if args.Title == "" {
		return EditResult{}, fmt.Errorf("title is required")
	}
	if args.Text == "" {
		return EditResult{}, fmt.Errorf("text is required")
	}

	params := url.Values{}
	params.Set("title", args.Title)
	params.Set("appendtext", args.Text)
	if args.Summary != "" {
		params.Set("summary", args.Summary)
	}
	setMinorFlag(params, args.Minor)

	return c.applyEdit(ctx, params)
}

// Undo reverts a single revision of a page
func (c *Client) Undo(ctx context.Context, args UndoArgs) (EditResult, error) {
	if args.Title == "" {
		return EditResult{}, fmt.Errorf("title is required")
	}
	if args.RevisionID <= 0 {
		return EditResult{}, fmt.Errorf("revision_id is required")
	}

	params := url.Values{}
	params.Set("title", args.Title)
	params.Set("undo", strconv.Itoa(args.RevisionID))
	if args.Summary != "" {
		params.Set("summary", args.Summary)
	}

	return c.applyEdit(ctx, params)
}

// DeletePage deletes a page
func (c *Client) DeletePage(ctx context.Context, args DeletePageArgs) (DeleteResult, error) {
	if args.Title == "" {
		return DeleteResult{}, fmt.Errorf("title is required")
	}

	params := url.Values{}
	params.Set("title", args.Title)
	if args.Reason != "" {
		params.Set("reason", args.Reason)
	}

	resp, err := c.doAction(ctx, actionRequest{action: "delete", params: params, needsToken: true})
	if err != nil {
		return DeleteResult{}, err
	}

	del := getObject(resp, "delete")
	if del == nil {
		return DeleteResult{}, fmt.Errorf("unexpected delete response format")
	}

	return DeleteResult{
		Title:  getString(del, "title"),
		Reason: getString(del, "reason"),
		LogID:  getInt(del, "logid"),
	}, nil
}

// Undelete restores a previously deleted page
func (c *Client) Undelete(ctx context.Context, args UndeleteArgs) (UndeleteResult, error) {
	if args.Title == "" {
		return UndeleteResult{}, fmt.Errorf("title is required")
	}

	params := url.Values{}
	params.Set("title", args.Title)
	if args.Reason != "" {
		params.Set("reason", args.Reason)
	}

	resp, err := c.doAction(ctx, actionRequest{action: "undelete", params: params, needsToken: true})
	if err != nil {
		return UndeleteResult{}, err
	}

	und := getObject(resp, "undelete")
	if und == nil {
		return UndeleteResult{}, fmt.Errorf("unexpected undelete response format")
	}

	return UndeleteResult{
		Title:     getString(und, "title"),
		Revisions: getInt(und, "revisions"),
	}, nil
}

// serializeProtections joins the protections mapping into the API's
// pipe-separated action=level form, in sorted key order so the output
// is deterministic.
func serializeProtections(protections map[string]string) string {
	actions := make([]string, 0, len(protections))
	for action := range protections {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	pairs := make([]string, 0, len(actions))
	for _, action := range actions {
		pairs = append(pairs, action+"="+protections[action])
	}
	return strings.Join(pairs, "|")
}

// Protect changes the protection level of a page
func (c *Client) Protect(ctx context.Context, args ProtectArgs) (ProtectResult, error) {
	if args.Title == "" {
		return ProtectResult{}, fmt.Errorf("title is required")
	}
	if len(args.Protections) == 0 {
		return ProtectResult{}, fmt.Errorf("protections mapping is required")
	}

	params := url.Values{}
	params.Set("title", args.Title)
	params.Set("protections", serializeProtections(args.Protections))
	if args.Expiry != "" {
		params.Set("expiry", args.Expiry)
	}
	if args.Cascade {
		params.Set("cascade", "1")
	}
	if args.Reason != "" {
		params.Set("reason", args.Reason)
	}

	resp, err := c.doAction(ctx, actionRequest{action: "protect", params: params, needsToken: true})
	if err != nil {
		return ProtectResult{}, err
	}

	prot := getObject(resp, "protect")
	if prot == nil {
		return ProtectResult{}, fmt.Errorf("unexpected protect response format")
	}

	result := ProtectResult{Title: getString(prot, "title")}
	if applied, ok := prot["protections"].([]interface{}); ok {
		for _, p := range applied {
			entry, ok := p.(map[string]interface{})
			if !ok {
				continue
			}
			for action, level := range entry {
				if action == "expiry" {
					continue
				}
				if levelStr, ok := level.(string); ok {
					result.Protections = append(result.Protections, action+"="+levelStr)
				}
			}
		}
	}
	sort.Strings(result.Protections)

	return result, nil
}

// Block blocks a user or IP address
func (c *Client) Block(ctx context.Context, args BlockArgs) (BlockResult, error) {
	if args.User == "" {
		return BlockResult{}, fmt.Errorf("user is required")
	}

	params := url.Values{}
	params.Set("user", args.User)
	if args.Expiry != "" {
		params.Set("expiry", args.Expiry)
	}
	if args.Reason != "" {
		params.Set("reason", args.Reason)
	}
	if args.NoCreate {
		params.Set("nocreate", "1")
	}
	if args.AutoBlock {
		params.Set("autoblock", "1")
	}
	if args.NoEmail {
		params.Set("noemail", "1")
	}
	if args.AllowUserTalk {
		params.Set("allowusertalk", "1")
	}

	resp, err := c.doAction(ctx, actionRequest{action: "block", params: params, needsToken: true})
	if err != nil {
		return BlockResult{}, err
	}

	block := getObject(resp, "block")
	if block == nil {
		return BlockResult{}, fmt.Errorf("unexpected block response format")
	}

	return BlockResult{
		User:   getString(block, "user"),
		Expiry: getString(block, "expiry"),
		ID:     getInt(block, "id"),
	}, nil
}

// Unblock lifts a block on a user or IP address
func (c *Client) Unblock(ctx context.Context, args UnblockArgs) (UnblockResult, error) {
	if args.User == "" {
		return UnblockResult{}, fmt.Errorf("user is required")
	}

	params := url.Values{}
	params.Set("user", args.User)
	if args.Reason != "" {
		params.Set("reason", args.Reason)
	}

	resp, err := c.doAction(ctx, actionRequest{action: "unblock", params: params, needsToken: true})
	if err != nil {
		return UnblockResult{}, err
	}

	unblock := getObject(resp, "unblock")
	if unblock == nil {
		return UnblockResult{}, fmt.Errorf("unexpected unblock response format")
	}

	return UnblockResult{
		User: getString(unblock, "user"),
		ID:   getInt(unblock, "id"),
	}, nil
}

// Move renames a page
func (c *Client) Move(ctx context.Context, args MoveArgs) (MoveResult, error) {
	if args.From == "" {
		return MoveResult{}, fmt.Errorf("from is required")
	}
	if args.To == "" {
		return MoveResult{}, fmt.Errorf("to is required")
	}

	params := url.Values{}
	params.Set("from", args.From)
	params.Set("to", args.To)
	if args.Reason != "" {
		params.Set("reason", args.Reason)
	}
	if args.MoveTalk {
		params.Set("movetalk", "1")
	}
	if args.NoRedirect {
		params.Set("noredirect", "1")
	}

	resp, err := c.doAction(ctx, actionRequest{action: "move", params: params, needsToken: true})
	if err != nil {
		return MoveResult{}, err
	}

	move := getObject(resp, "move")
	if move == nil {
		return MoveResult{}, fmt.Errorf("unexpected move response format")
	}

	return MoveResult{
		From:            getString(move, "from"),
		To:              getString(move, "to"),
		RedirectCreated: move["redirectcreated"] != nil,
		TalkMoved:       move["talkfrom"] != nil,
	}, nil
}

// buildPurgeParams translates PurgeArgs into protocol parameters:
// page IDs when given, a category-member generator for a single
// Category: title, plain joined titles otherwise.
func buildPurgeParams(args PurgeArgs) (url.Values, error) {
	params := url.Values{}

	switch {
	case len(args.PageIDs) > 0:
		ids := make([]string, len(args.PageIDs))
		for i, id := range args.PageIDs {
			ids[i] = strconv.Itoa(id)
		}
		params.Set("pageids", strings.Join(ids, "|"))

	case len(args.Titles) == 1 && strings.HasPrefix(args.Titles[0], categoryPrefix):
		params.Set("generator", "categorymembers")
		params.Set("gcmtitle", args.Titles[0])

	case len(args.Titles) > 0:
		params.Set("titles", strings.Join(args.Titles, "|"))

	default:
		return nil, fmt.Errorf("nothing to purge: provide titles or page_ids")
	}

	return params, nil
}

// Purge invalidates the server-side cache for pages. Purging requires
// no token.
func (c *Client) Purge(ctx context.Context, args PurgeArgs) (PurgeResult, error) {
	params, err := buildPurgeParams(args)
	if err != nil {
		return PurgeResult{}, err
	}

	resp, err := c.doAction(ctx, actionRequest{action: "purge", params: params})
	if err != nil {
		return PurgeResult{}, err
	}

	result := PurgeResult{}
	if purged, ok := resp["purge"].([]interface{}); ok {
		for _, p := range purged {
			page, ok := p.(map[string]interface{})
			if !ok {
				continue
			}
			_, wasPurged := page["purged"]
			result.Purged = append(result.Purged, PurgedPage{
				Title:  getString(page, "title"),
				Purged: wasPurged,
			})
		}
	}

	return result, nil
}

// EmailUser sends an email to a wiki user through the wiki
func (c *Client) EmailUser(ctx context.Context, args EmailArgs) (EmailResult, error) {
	if args.Target == "" {
		return EmailResult{}, fmt.Errorf("target is required")
	}
	if args.Subject == "" {
		return EmailResult{}, fmt.Errorf("subject is required")
	}
	if args.Text == "" {
		return EmailResult{}, fmt.Errorf("text is required")
	}

	params := url.Values{}
	params.Set("target", args.Target)
	params.Set("subject", args.Subject)
	params.Set("text", args.Text)
	if args.CCMe {
		params.Set("ccme", "1")
	}

	resp, err := c.doAction(ctx, actionRequest{action: "emailuser", params: params, needsToken: true})
	if err != nil {
		return EmailResult{}, err
	}

	email := getObject(resp, "emailuser")
	if email == nil {
		return EmailResult{}, fmt.Errorf("unexpected emailuser response format")
	}

	return EmailResult{Result: getString(email, "result")}, nil
}

// CreateAccount registers a new wiki account. Account creation uses its
// own token type, fetched per call rather than from the CSRF cache.
func (c *Client) CreateAccount(ctx context.Context, args CreateAccountArgs) (CreateAccountResult, error) {
	if args.Username == "" {
		return CreateAccountResult{}, fmt.Errorf("username is required")
	}
	if args.Password == "" {
		return CreateAccountResult{}, fmt.Errorf("password is required")
	}

	token, err := c.fetchTokenOfType(ctx, "createaccount")
	if err != nil {
		return CreateAccountResult{}, err
	}

	params := url.Values{}
	params.Set("action", "createaccount")
	params.Set("username", args.Username)
	params.Set("password", args.Password)
	params.Set("retype", args.Password)
	params.Set("createtoken", token)
	params.Set("createreturnurl", c.config.Server)
	if args.Email != "" {
		params.Set("email", args.Email)
	}
	if args.Reason != "" {
		params.Set("reason", args.Reason)
	}

	resp, err := c.post(ctx, params)
	if err != nil {
		return CreateAccountResult{}, err
	}

	created := getObject(resp, "createaccount")
	if created == nil {
		return CreateAccountResult{}, fmt.Errorf("unexpected createaccount response format")
	}

	return CreateAccountResult{
		Status:   getString(created, "status"),
		Username: getString(created, "username"),
		Message:  getString(created, "message"),
	}, nil
}

// fetchTokenOfType retrieves a non-CSRF token (login, createaccount)
// without touching the CSRF cache.
func (c *Client) fetchTokenOfType(ctx context.Context, tokenType string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "tokens")
	params.Set("type", tokenType)

	resp, err := c.get(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to get %s token: %w", tokenType, err)
	}

	tokens := getObject(getObject(resp, "query"), "tokens")
	if tokens == nil {
		return "", &TokenError{Reason: fmt.Sprintf("no tokens in %s token response", tokenType)}
	}
	token := getString(tokens, tokenType+"token")
	if token == "" {
		return "", &TokenError{Reason: fmt.Sprintf("no %s token in response", tokenType)}
	}
	return token, nil
}
