package wiki

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// normalizeLimit ensures limit is within bounds
func normalizeLimit(limit, defaultVal, maxVal int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit > maxVal {
		return maxVal
	}
	return limit
}

// normalizeCategoryName ensures category name has proper prefix
func normalizeCategoryName(name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasPrefix(name, categoryPrefix) {
		name = categoryPrefix + name
	}
	return name
}

var htmlTagRegex = regexp.MustCompile(`<[^>]+>`)

// stripHTMLTags removes the highlight markup the search backend embeds
// in snippets
func stripHTMLTags(s string) string {
	return htmlTagRegex.ReplaceAllString(s, "")
}

// Search searches for pages matching the query
func (c *Client) Search(ctx context.Context, args SearchArgs) (SearchResult, error) {
	if args.Query == "" {
		return SearchResult{}, fmt.Errorf("query is required")
	}

	limit := normalizeLimit(args.Limit, 20, MaxLimit)

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", args.Query)
	params.Set("srlimit", strconv.Itoa(limit))
	params.Set("srprop", "snippet|size")

	if args.Offset > 0 {
		params.Set("sroffset", strconv.Itoa(args.Offset))
	}

	resp, err := c.get(ctx, params)
	if err != nil {
		return SearchResult{}, err
	}

	query := getObject(resp, "query")
	if query == nil {
		return SearchResult{}, fmt.Errorf("unexpected search response format")
	}

	totalHits := 0
	if searchInfo := getObject(query, "searchinfo"); searchInfo != nil {
		totalHits = getInt(searchInfo, "totalhits")
	}

	searchResults, _ := query["search"].([]interface{})
	results := make([]SearchHit, 0, len(searchResults))
	for _, sr := range searchResults {
		item, ok := sr.(map[string]interface{})
		if !ok {
			continue
		}
		results = append(results, SearchHit{
			PageID:  getInt(item, "pageid"),
			Title:   getString(item, "title"),
			Snippet: stripHTMLTags(getString(item, "snippet")),
			Size:    getInt(item, "size"),
		})
	}

	result := SearchResult{
		Query:     args.Query,
		TotalHits: totalHits,
		Results:   results,
		HasMore:   args.Offset+len(results) < totalHits,
	}
	if result.HasMore {
		result.NextOffset = args.Offset + len(results)
	}

	return result, nil
}

// GetPage retrieves the current wikitext of a page
func (c *Client) GetPage(ctx context.Context, args GetPageArgs) (PageContent, error) {
	if args.Title == "" {
		return PageContent{}, fmt.Errorf("title is required")
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "revisions")
	params.Set("rvprop", "content|ids|timestamp")
	params.Set("rvslots", "main")
	params.Set("titles", args.Title)
	params.Set("formatversion", "2")

	resp, err := c.get(ctx, params)
	if err != nil {
		return PageContent{}, err
	}

	pages, _ := getObject(resp, "query")["pages"].([]interface{})
	if len(pages) == 0 {
		return PageContent{}, fmt.Errorf("unexpected page response format")
	}
	page, ok := pages[0].(map[string]interface{})
	if !ok {
		return PageContent{}, fmt.Errorf("unexpected page response format")
	}

	content := PageContent{
		Title:  getString(page, "title"),
		PageID: getInt(page, "pageid"),
	}
	if _, missing := page["missing"]; missing {
		content.Missing = true
		return content, nil
	}

	revisions, _ := page["revisions"].([]interface{})
	if len(revisions) == 0 {
		return PageContent{}, fmt.Errorf("no revisions in page response")
	}
	rev, ok := revisions[0].(map[string]interface{})
	if !ok {
		return PageContent{}, fmt.Errorf("unexpected revision format")
	}

	content.Revision = getInt(rev, "revid")
	content.Timestamp = getString(rev, "timestamp")
	if slots := getObject(rev, "slots"); slots != nil {
		if main := getObject(slots, "main"); main != nil {
			content.Content = getString(main, "content")
		}
	}

	return content, nil
}

// GetCategoryMembers lists the pages in a category
func (c *Client) GetCategoryMembers(ctx context.Context, args CategoryMembersArgs) (CategoryMembersResult, error) {
	if args.Category == "" {
		return CategoryMembersResult{}, fmt.Errorf("category is required")
	}

	category := normalizeCategoryName(args.Category)
	limit := normalizeLimit(args.Limit, DefaultLimit, MaxLimit)

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "categorymembers")
	params.Set("cmtitle", category)
	params.Set("cmlimit", strconv.Itoa(limit))

	if args.ContinueFrom != "" {
		params.Set("cmcontinue", args.ContinueFrom)
	}

	resp, err := c.get(ctx, params)
	if err != nil {
		return CategoryMembersResult{}, err
	}

	query := getObject(resp, "query")
	members, _ := query["categorymembers"].([]interface{})

	result := CategoryMembersResult{Category: category}
	for _, m := range members {
		item, ok := m.(map[string]interface{})
		if !ok {
			continue
		}
		result.Members = append(result.Members, PageSummary{
			PageID: getInt(item, "pageid"),
			Title:  getString(item, "title"),
		})
	}

	if cont := getObject(resp, "continue"); cont != nil {
		if from := getString(cont, "cmcontinue"); from != "" {
			result.HasMore = true
			result.ContinueFrom = from
		}
	}

	return result, nil
}

// GetUserContributions lists a user's recent edits
func (c *Client) GetUserContributions(ctx context.Context, args UserContributionsArgs) (UserContributionsResult, error) {
	if args.User == "" {
		return UserContributionsResult{}, fmt.Errorf("user is required")
	}

	limit := normalizeLimit(args.Limit, DefaultLimit, MaxLimit)

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "usercontribs")
	params.Set("ucuser", args.User)
	params.Set("uclimit", strconv.Itoa(limit))
	params.Set("ucprop", "ids|title|timestamp|comment|flags|sizediff")

	if args.ContinueFrom != "" {
		params.Set("uccontinue", args.ContinueFrom)
	}

	resp, err := c.get(ctx, params)
	if err != nil {
		return UserContributionsResult{}, err
	}

	query := getObject(resp, "query")
	contribs, _ := query["usercontribs"].([]interface{})

	result := UserContributionsResult{User: args.User}
	for _, uc := range contribs {
		item, ok := uc.(map[string]interface{})
		if !ok {
			continue
		}
		_, minor := item["minor"]
		result.Contributions = append(result.Contributions, Contribution{
			Title:      getString(item, "title"),
			PageID:     getInt(item, "pageid"),
			RevisionID: getInt(item, "revid"),
			Timestamp:  getString(item, "timestamp"),
			Comment:    getString(item, "comment"),
			Minor:      minor,
			SizeDiff:   getInt(item, "sizediff"),
		})
	}

	if cont := getObject(resp, "continue"); cont != nil {
		if from := getString(cont, "uccontinue"); from != "" {
			result.HasMore = true
			result.ContinueFrom = from
		}
	}

	return result, nil
}

// GetBacklinks lists pages linking to a page ("What links here")
func (c *Client) GetBacklinks(ctx context.Context, args BacklinksArgs) (BacklinksResult, error) {
	if args.Title == "" {
		return BacklinksResult{}, fmt.Errorf("title is required")
	}

	limit := normalizeLimit(args.Limit, DefaultLimit, MaxLimit)

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "backlinks")
	params.Set("bltitle", args.Title)
	params.Set("bllimit", strconv.Itoa(limit))

	resp, err := c.get(ctx, params)
	if err != nil {
		return BacklinksResult{}, err
	}

	query := getObject(resp, "query")
	backlinks, _ := query["backlinks"].([]interface{})

	result := BacklinksResult{Title: args.Title}
	for _, bl := range backlinks {
		item, ok := bl.(map[string]interface{})
		if !ok {
			continue
		}
		result.Backlinks = append(result.Backlinks, PageSummary{
			PageID: getInt(item, "pageid"),
			Title:  getString(item, "title"),
		})
	}

	return result, nil
}

// GetImages lists the images embedded in a page
func (c *Client) GetImages(ctx context.Context, args ImagesArgs) (ImagesResult, error) {
	if args.Title == "" {
		return ImagesResult{}, fmt.Errorf("title is required")
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "images")
	params.Set("titles", args.Title)
	params.Set("imlimit", strconv.Itoa(MaxLimit))

	resp, err := c.get(ctx, params)
	if err != nil {
		return ImagesResult{}, err
	}

	result := ImagesResult{Title: args.Title}
	pages := getObject(getObject(resp, "query"), "pages")
	for _, p := range pages {
		page, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		images, _ := page["images"].([]interface{})
		for _, img := range images {
			item, ok := img.(map[string]interface{})
			if !ok {
				continue
			}
			result.Images = append(result.Images, getString(item, "title"))
		}
	}

	return result, nil
}

// GetExternalLinks lists the external URLs referenced by a page
func (c *Client) GetExternalLinks(ctx context.Context, args ExternalLinksArgs) (ExternalLinksResult, error) {
	if args.Title == "" {
		return ExternalLinksResult{}, fmt.Errorf("title is required")
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extlinks")
	params.Set("titles", args.Title)
	params.Set("ellimit", strconv.Itoa(MaxLimit))

	resp, err := c.get(ctx, params)
	if err != nil {
		return ExternalLinksResult{}, err
	}

	result := ExternalLinksResult{Title: args.Title}
	pages := getObject(getObject(resp, "query"), "pages")
	for _, p := range pages {
		page, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		extlinks, _ := page["extlinks"].([]interface{})
		for _, el := range extlinks {
			item, ok := el.(map[string]interface{})
			if !ok {
				continue
			}
			if link := getString(item, "*"); link != "" {
				result.Links = append(result.Links, link)
			}
		}
	}

	return result, nil
}
