package store

import (
	"encoding/json"
	"time"
)

// Contract is an imported bundle. Content is the raw bundle JSON as imported.
type Contract struct {
	Name       string
	Title      string
	Content    json.RawMessage
	Documents  int
	Revision   string
	SearchText string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type ContractSummary struct {
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Documents int       `json:"documents"`
	Revision  string    `json:"revision"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Mention struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	DefaultValue string `json:"defaultValue"`
	VariableType string `json:"variableType,omitempty"`
	Occurrences  int    `json:"occurrences"`
}
