package model

const (
	ServiceVersion = "1.0.0"
	StatusHealthy  = "healthy"
)

// AgentCard is served on /.well-known/agent-card for service discovery.
type AgentCard struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Description  string            `json:"description"`
	Endpoints    map[string]string `json:"endpoints"`
	Capabilities []string          `json:"capabilities"`
	Port         int               `json:"port"`
	Streams      bool              `json:"streams"`
	Auth         string            `json:"auth"`
}

type Health struct {
	Agent        string            `json:"agent"`
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Capabilities []string          `json:"capabilities,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}
