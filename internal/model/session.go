package model

import (
	"time"

	"google.golang.org/genai"
)

// Session is the conversation state of one chat, stored between turns.
type Session struct {
	ID        string           `json:"id"`
	History   []*genai.Content `json:"history"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Agent     string `json:"agent"`
	Cached    bool   `json:"cached,omitempty"`
}

type AgentStatus struct {
	Name   string `json:"name"`
	Url    string `json:"url"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
