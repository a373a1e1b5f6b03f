package discussions

import "fmt"

// ========== Thread Operation Types ==========

type CreatePostArgs struct {
	ForumID string `json:"forum_id" jsonschema:"required,description=Forum (category) ID to post the thread in"`
	Title   string `json:"title" jsonschema:"required,description=Thread title"`
	Content string `json:"content" jsonschema:"required,description=Plain-text thread body"`
}

type ThreadArgs struct {
	ThreadID string `json:"thread_id" jsonschema:"required,description=Thread ID"`
}

// ThreadResponse carries the service's reply. The discussion service
// does not wrap responses in the action API's envelope: when the body
// parses as JSON the fields are exposed, otherwise the raw text passes
// through unchanged.
type ThreadResponse struct {
	Raw    string                 `json:"raw,omitempty"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// ThreadID returns the id field of a parsed response, if present
func (r ThreadResponse) ThreadID() string {
	if r.Fields == nil {
		return ""
	}
	id, _ := r.Fields["id"].(string)
	return id
}

// ========== Errors ==========

// AuthError indicates the credential exchange with /auth/token failed
type AuthError struct {
	Status int
	Reason string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("discussion auth failed (status %d): %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("discussion auth failed: %s", e.Reason)
}

// ServiceError is an error reported by the discussion service itself
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("discussion service error (status %d): %s", e.Status, e.Message)
}

// ========== Wire Format ==========

// jsonModel is the rich-text document the thread creation endpoint
// expects; plain text is wrapped in a single paragraph node.
type jsonModel struct {
	Type    string          `json:"type"`
	Content []jsonModelNode `json:"content"`
}

type jsonModelNode struct {
	Type    string          `json:"type"`
	Content []jsonModelText `json:"content,omitempty"`
}

type jsonModelText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func textDocument(content string) jsonModel {
	return jsonModel{
		Type: "doc",
		Content: []jsonModelNode{{
			Type: "paragraph",
			Content: []jsonModelText{{
				Type: "text",
				Text: content,
			}},
		}},
	}
}

// attachments is the empty attachments block sent with every new thread
type attachments struct {
	ContentImages []interface{} `json:"contentImages"`
	OpenGraphs    []interface{} `json:"openGraphs"`
	AtMentions    []interface{} `json:"atMentions"`
}

// createThreadBody is the JSON payload for POST /forums/{forum}/threads
type createThreadBody struct {
	Body        string      `json:"body"`
	JSONModel   string      `json:"jsonModel"`
	Attachments attachments `json:"attachments"`
	ForumID     string      `json:"forumId"`
	SiteID      string      `json:"siteId"`
	Title       string      `json:"title"`
	Source      string      `json:"source"`
	Funnel      string      `json:"funnel"`
	ArticleIDs  []string    `json:"articleIds"`
}
