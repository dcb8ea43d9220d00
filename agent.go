package scenario

import "time"

// Agent is a reusable conversational agent definition. Scenario nodes point
// at agents through NodeRef; the agent row itself is owned by one user but
// may be shared read-only via IsPublic.
type Agent struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Instructions string    `json:"instructions"`
	Avatar       string    `json:"avatar,omitempty"`
	IsPublic     bool      `json:"is_public"`
	Owner        string    `json:"owner"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Tool is a callable HTTP action an agent can invoke mid-conversation.
type Tool struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Method      string    `json:"method"`
	URL         string    `json:"url"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
