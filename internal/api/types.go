// Copyright 2025 Skillbridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Trigger types accepted by the skills API.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
	TriggerWebhook   = "webhook"
)

// Execution statuses reported by the skills API.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Envelope is the uniform response wrapper the skills API uses for every
// endpoint. Data is kept raw so each operation can decode its own payload.
// Success may be false on a 2xx response; that is an application-level
// failure, not a transport error.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Meta    *Meta           `json:"meta,omitempty"`
}

// Meta carries pagination metadata on list responses.
type Meta struct {
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
	HasMore    bool   `json:"hasMore"`
	SortBy     string `json:"sortBy,omitempty"`
	SortOrder  string `json:"sortOrder,omitempty"`
}

// Skill is a stored automation workflow definition. Timestamps are kept as
// the remote service's RFC3339 strings; the adapter never interprets them.
type Skill struct {
	ID            string          `json:"id"`
	TemplateID    string          `json:"templateId,omitempty"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	TriggerType   string          `json:"triggerType"`
	TriggerConfig json.RawMessage `json:"triggerConfig,omitempty"`
	Steps         []SkillStep     `json:"steps"`
	Connections   []string        `json:"connections,omitempty"`
	IsSystem      bool            `json:"isSystem"`
	IsActive      bool            `json:"isActive"`
	RunCount      int             `json:"runCount"`
	LastRunAt     string          `json:"lastRunAt,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
}

// SkillStep is one step of a skill. Step order is execution order and is
// preserved end-to-end.
type SkillStep struct {
	ID          int      `json:"id"`
	Prompt      string   `json:"prompt"`
	Guidance    string   `json:"guidance,omitempty"`
	Tools       []string `json:"tools,omitempty"`
	Connections []string `json:"connections,omitempty"`
}

// Connection holds stored credentials/configuration for one external
// integration. Config is opaque to the adapter; its structure varies per type.
type Connection struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Config     json.RawMessage `json:"config,omitempty"`
	Tools      []string        `json:"tools,omitempty"`
	IsActive   bool            `json:"isActive"`
	AuthStatus string          `json:"authStatus,omitempty"`
	Source     string          `json:"source,omitempty"`
	CreatedAt  string          `json:"createdAt,omitempty"`
	UpdatedAt  string          `json:"updatedAt,omitempty"`
}

// Execution is one historical run record of a skill.
type Execution struct {
	ID             string          `json:"id"`
	SkillID        string          `json:"skillId"`
	Status         string          `json:"status"`
	Trigger        string          `json:"trigger,omitempty"`
	Input          json.RawMessage `json:"input,omitempty"`
	Output         json.RawMessage `json:"output,omitempty"`
	Trace          json.RawMessage `json:"trace,omitempty"`
	Error          string          `json:"error,omitempty"`
	StartedAt      string          `json:"startedAt,omitempty"`
	CompletedAt    string          `json:"completedAt,omitempty"`
	DurationMs     int64           `json:"durationMs,omitempty"`
	TokenCount     int             `json:"tokenCount,omitempty"`
	CostUSD        string          `json:"costUsd,omitempty"`
	ReportedToCore bool            `json:"reportedToCore"`
}

// ExecutionStats is the aggregate execution overview with per-skill and
// per-day breakdowns.
type ExecutionStats struct {
	Overview ExecutionOverview `json:"overview"`
	BySkill  []SkillStatsRow   `json:"bySkill,omitempty"`
	ByDay    []DailyStatsRow   `json:"byDay,omitempty"`
}

// ExecutionOverview aggregates totals across the queried window.
type ExecutionOverview struct {
	TotalExecutions int     `json:"totalExecutions"`
	Completed       int     `json:"completed"`
	Failed          int     `json:"failed"`
	Running         int     `json:"running"`
	SuccessRate     float64 `json:"successRate"`
	TotalCostUSD    string  `json:"totalCostUsd,omitempty"`
	AvgDurationMs   float64 `json:"avgDurationMs,omitempty"`
}

// SkillStatsRow is the per-skill breakdown of execution stats.
type SkillStatsRow struct {
	SkillID      string  `json:"skillId"`
	SkillName    string  `json:"skillName,omitempty"`
	Executions   int     `json:"executions"`
	SuccessRate  float64 `json:"successRate"`
	TotalCostUSD string  `json:"totalCostUsd,omitempty"`
}

// DailyStatsRow is the per-calendar-day breakdown of execution stats.
type DailyStatsRow struct {
	Date         string `json:"date"`
	Executions   int    `json:"executions"`
	Completed    int    `json:"completed"`
	Failed       int    `json:"failed"`
	TotalCostUSD string `json:"totalCostUsd,omitempty"`
}

// APIKey is the non-secret view of an API key. KeyPrefix is the partial,
// displayable fragment; the full secret never appears here.
type APIKey struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	KeyPrefix   string `json:"keyPrefix"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
	LastUsedAt  string `json:"lastUsedAt,omitempty"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// CreateAPIKeyResponse is the creation payload. Key holds the full secret
// value; the remote service returns it exactly once and the adapter must not
// cache or re-display it.
type CreateAPIKeyResponse struct {
	APIKey
	Key string `json:"key"`
}

// SkillStepInput is the caller-supplied shape of one skill step.
type SkillStepInput struct {
	ID          int      `json:"id"`
	Prompt      string   `json:"prompt"`
	Guidance    string   `json:"guidance,omitempty"`
	Tools       []string `json:"tools,omitempty"`
	Connections []string `json:"connections,omitempty"`
}

// CreateSkillRequest is the POST /skills body.
type CreateSkillRequest struct {
	TemplateID    string           `json:"templateId,omitempty"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	TriggerType   string           `json:"triggerType"`
	TriggerConfig map[string]any   `json:"triggerConfig,omitempty"`
	Steps         []SkillStepInput `json:"steps"`
	Connections   []string         `json:"connections,omitempty"`
	IsActive      bool             `json:"isActive"`
}

// UpdateSkillRequest is the PUT /skills/{id} body. It is a full replacement:
// every field is sent, with omitted optionals collapsed to their defaults.
type UpdateSkillRequest struct {
	TemplateID    string           `json:"templateId,omitempty"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	TriggerType   string           `json:"triggerType"`
	TriggerConfig map[string]any   `json:"triggerConfig,omitempty"`
	Steps         []SkillStepInput `json:"steps"`
	Connections   []string         `json:"connections,omitempty"`
	IsActive      bool             `json:"isActive"`
}

// CreateConnectionRequest is the POST /connections body.
type CreateConnectionRequest struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Config   map[string]any `json:"config"`
	Tools    []string       `json:"tools,omitempty"`
	IsActive bool           `json:"isActive"`
}

// UpdateConnectionRequest is the PUT /connections/{id} body (full replacement).
type UpdateConnectionRequest struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Config   map[string]any `json:"config"`
	Tools    []string       `json:"tools,omitempty"`
	IsActive bool           `json:"isActive"`
}

// CreateAPIKeyRequest is the POST /auth/keys body.
type CreateAPIKeyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
}

// SkillListOptions filters GET /skills. Pointer fields distinguish "not
// supplied" from a supplied zero value; unset fields are omitted from the
// query string entirely.
type SkillListOptions struct {
	Limit       int
	Offset      int
	IsActive    *bool
	TriggerType string
	Search      string
}

func (o SkillListOptions) query() url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(o.Limit))
	q.Set("offset", strconv.Itoa(o.Offset))
	if o.IsActive != nil {
		q.Set("isActive", strconv.FormatBool(*o.IsActive))
	}
	if o.TriggerType != "" {
		q.Set("triggerType", o.TriggerType)
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	return q
}

// ConnectionListOptions filters GET /connections.
type ConnectionListOptions struct {
	Limit    int
	Offset   int
	IsActive *bool
	Type     string
	Search   string
}

func (o ConnectionListOptions) query() url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(o.Limit))
	q.Set("offset", strconv.Itoa(o.Offset))
	if o.IsActive != nil {
		q.Set("isActive", strconv.FormatBool(*o.IsActive))
	}
	if o.Type != "" {
		q.Set("type", o.Type)
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	return q
}

// ExecutionListOptions filters GET /executions.
type ExecutionListOptions struct {
	Limit   int
	Offset  int
	SkillID string
	Status  string
}

func (o ExecutionListOptions) query() url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(o.Limit))
	q.Set("offset", strconv.Itoa(o.Offset))
	if o.SkillID != "" {
		q.Set("skillId", o.SkillID)
	}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	return q
}

// ExecutionStatsOptions filters GET /executions/stats. Zero values are
// omitted so the remote service applies its own defaults.
type ExecutionStatsOptions struct {
	SkillID string
	Days    int
}

func (o ExecutionStatsOptions) query() url.Values {
	q := url.Values{}
	if o.SkillID != "" {
		q.Set("skillId", o.SkillID)
	}
	if o.Days > 0 {
		q.Set("days", strconv.Itoa(o.Days))
	}
	return q
}
