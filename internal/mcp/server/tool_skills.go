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

package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skillbridge/skillbridge/internal/api"
)

// skillListPayload is the result of list_skills.
type skillListPayload struct {
	Success    bool        `json:"success"`
	Skills     []api.Skill `json:"skills"`
	Pagination *api.Meta   `json:"pagination,omitempty"`
}

// skillPayload is the result of single-skill operations.
type skillPayload struct {
	Success bool      `json:"success"`
	Skill   api.Skill `json:"skill"`
}

// skillDeletedPayload carries the identity of the removed skill so the
// caller can confirm what was deleted.
type skillDeletedPayload struct {
	Success bool      `json:"success"`
	Deleted api.Skill `json:"deleted"`
}

var stepSchema = map[string]interface{}{
	"type":        "object",
	"description": "One skill step; array order is execution order",
	"properties": map[string]interface{}{
		"id": map[string]interface{}{
			"type":        "integer",
			"description": "Step id, unique within the skill",
		},
		"prompt": map[string]interface{}{
			"type":        "string",
			"description": "Instruction prompt for the step (non-empty)",
		},
		"guidance": map[string]interface{}{
			"type":        "string",
			"description": "Additional guidance text",
		},
		"tools": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Tool names the step may use, in allowed order",
		},
		"connections": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Connection names scoped to this step",
		},
	},
	"required": []string{"id", "prompt"},
}

// registerSkillTools registers the six skill tools.
func (s *Server) registerSkillTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_skills",
		Description: "List skills (automation workflows) with optional filters. Defaults: limit=50, offset=0.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum results to return (1-100, default 50)",
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Number of results to skip (default 0)",
				},
				"isActive": map[string]interface{}{
					"type":        "boolean",
					"description": "Filter by active state",
				},
				"triggerType": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"manual", "scheduled", "webhook"},
					"description": "Filter by trigger type",
				},
				"search": map[string]interface{}{
					"type":        "string",
					"description": "Free-text search over skill names and descriptions",
				},
			},
		},
	}, s.handleListSkills)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_skill",
		Description: "Get one skill by id, including its steps and connections.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Skill id",
				},
			},
			Required: []string{"id"},
		},
	}, s.handleGetSkill)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "create_skill",
		Description: "Create a new skill. isActive defaults to true when omitted.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Skill name (1-200 characters)",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Human-readable description",
				},
				"templateId": map[string]interface{}{
					"type":        "string",
					"description": "Template this skill was created from",
				},
				"triggerType": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"manual", "scheduled", "webhook"},
					"description": "How the skill is triggered",
				},
				"triggerConfig": map[string]interface{}{
					"type":        "object",
					"description": "Trigger configuration (opaque, passed through)",
				},
				"steps":       map[string]interface{}{"type": "array", "items": stepSchema, "description": "Ordered steps; order is execution order"},
				"connections": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Connection names the skill uses"},
				"isActive": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the skill is active (default: true)",
					"default":     true,
				},
			},
			Required: []string{"name", "triggerType", "steps"},
		},
	}, s.handleCreateSkill)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "update_skill",
		Description: "Replace a skill in full. Omitted optional fields reset to their defaults; use patch_skill to change individual fields.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Skill id",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Skill name (1-200 characters)",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Human-readable description",
				},
				"templateId": map[string]interface{}{
					"type":        "string",
					"description": "Template this skill was created from",
				},
				"triggerType": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"manual", "scheduled", "webhook"},
					"description": "How the skill is triggered",
				},
				"triggerConfig": map[string]interface{}{
					"type":        "object",
					"description": "Trigger configuration (opaque, passed through)",
				},
				"steps":       map[string]interface{}{"type": "array", "items": stepSchema, "description": "Ordered steps; order is execution order"},
				"connections": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Connection names the skill uses"},
				"isActive": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the skill is active (default: true)",
					"default":     true,
				},
			},
			Required: []string{"id", "name", "triggerType", "steps"},
		},
	}, s.handleUpdateSkill)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "patch_skill",
		Description: "Partially update a skill. Only the supplied fields change; everything else is left untouched.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Skill id",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "New skill name (1-200 characters)",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "New description",
				},
				"templateId": map[string]interface{}{
					"type":        "string",
					"description": "New template id",
				},
				"triggerType": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"manual", "scheduled", "webhook"},
					"description": "New trigger type",
				},
				"triggerConfig": map[string]interface{}{
					"type":        "object",
					"description": "New trigger configuration",
				},
				"steps":       map[string]interface{}{"type": "array", "items": stepSchema, "description": "Replacement step sequence"},
				"connections": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Replacement connection names"},
				"isActive": map[string]interface{}{
					"type":        "boolean",
					"description": "New active state",
				},
			},
			Required: []string{"id"},
		},
	}, s.handlePatchSkill)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_skill",
		Description: "Delete a skill. Set force=true to delete even when the skill has dependent state.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Skill id",
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "Force deletion (default: false)",
					"default":     false,
				},
			},
			Required: []string{"id"},
		},
	}, s.handleDeleteSkill)
}

// handleListSkills implements the list_skills tool.
func (s *Server) handleListSkills(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, offset, errRes := listWindow(request)
	if errRes != nil {
		return errRes, nil
	}

	opts := api.SkillListOptions{Limit: limit, Offset: offset}
	args := request.GetArguments()

	if raw, ok := args["isActive"]; ok {
		active, errRes := toBool("isActive", raw)
		if errRes != nil {
			return errRes, nil
		}
		opts.IsActive = &active
	}
	if triggerType := request.GetString("triggerType", ""); triggerType != "" {
		if !validTriggerType(triggerType) {
			return validationError("triggerType", "must be one of manual, scheduled, webhook"), nil
		}
		opts.TriggerType = triggerType
	}
	opts.Search = request.GetString("search", "")

	skills, meta, err := s.api.ListSkills(ctx, opts)
	if err != nil {
		return toolError(err), nil
	}
	if skills == nil {
		skills = []api.Skill{}
	}

	return jsonResponse(skillListPayload{Success: true, Skills: skills, Pagination: meta}), nil
}

// handleGetSkill implements the get_skill tool.
func (s *Server) handleGetSkill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(request, "id")
	if errRes != nil {
		return errRes, nil
	}

	skill, err := s.api.GetSkill(ctx, id)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(skillPayload{Success: true, Skill: *skill}), nil
}

// skillRequestFromArgs assembles the shared create/update body. Validation
// happens before any network call; isActive defaults to true when omitted.
func (s *Server) skillRequestFromArgs(request mcp.CallToolRequest) (*api.CreateSkillRequest, *mcp.CallToolResult) {
	name, err := request.RequireString("name")
	if err != nil {
		return nil, errorResponse("Missing or invalid 'name' argument")
	}
	if errRes := validateName(name); errRes != nil {
		return nil, errRes
	}

	triggerType, err := request.RequireString("triggerType")
	if err != nil {
		return nil, errorResponse("Missing or invalid 'triggerType' argument")
	}
	if !validTriggerType(triggerType) {
		return nil, validationError("triggerType", "must be one of manual, scheduled, webhook")
	}

	args := request.GetArguments()

	rawSteps, ok := args["steps"]
	if !ok {
		return nil, errorResponse("Missing or invalid 'steps' argument")
	}
	steps, errRes := parseSteps(rawSteps)
	if errRes != nil {
		return nil, errRes
	}

	req := &api.CreateSkillRequest{
		Name:        name,
		TriggerType: triggerType,
		Steps:       steps,
		Description: request.GetString("description", ""),
		TemplateID:  request.GetString("templateId", ""),
		IsActive:    request.GetBool("isActive", true),
	}

	if raw, ok := args["triggerConfig"]; ok {
		cfg, errRes := toObject("triggerConfig", raw)
		if errRes != nil {
			return nil, errRes
		}
		req.TriggerConfig = cfg
	}
	if raw, ok := args["connections"]; ok {
		conns, errRes := toStringSlice("connections", raw)
		if errRes != nil {
			return nil, errRes
		}
		req.Connections = conns
	}

	return req, nil
}

// handleCreateSkill implements the create_skill tool.
func (s *Server) handleCreateSkill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, errRes := s.skillRequestFromArgs(request)
	if errRes != nil {
		return errRes, nil
	}

	skill, err := s.api.CreateSkill(ctx, *req)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(skillPayload{Success: true, Skill: *skill}), nil
}

// handleUpdateSkill implements the update_skill tool. The outbound payload
// is always the full declared shape (full replacement semantics).
func (s *Server) handleUpdateSkill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(request, "id")
	if errRes != nil {
		return errRes, nil
	}

	req, errRes := s.skillRequestFromArgs(request)
	if errRes != nil {
		return errRes, nil
	}

	skill, err := s.api.UpdateSkill(ctx, id, api.UpdateSkillRequest(*req))
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(skillPayload{Success: true, Skill: *skill}), nil
}

// handlePatchSkill implements the patch_skill tool. The outbound payload
// contains exactly the caller-supplied fields, nothing else.
func (s *Server) handlePatchSkill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(request, "id")
	if errRes != nil {
		return errRes, nil
	}

	args := request.GetArguments()
	patch := make(map[string]any)

	if raw, ok := args["name"]; ok {
		name, errRes := toString("name", raw)
		if errRes != nil {
			return errRes, nil
		}
		if errRes := validateName(name); errRes != nil {
			return errRes, nil
		}
		patch["name"] = name
	}
	if raw, ok := args["description"]; ok {
		description, errRes := toString("description", raw)
		if errRes != nil {
			return errRes, nil
		}
		patch["description"] = description
	}
	if raw, ok := args["templateId"]; ok {
		templateID, errRes := toString("templateId", raw)
		if errRes != nil {
			return errRes, nil
		}
		patch["templateId"] = templateID
	}
	if raw, ok := args["triggerType"]; ok {
		triggerType, errRes := toString("triggerType", raw)
		if errRes != nil {
			return errRes, nil
		}
		if !validTriggerType(triggerType) {
			return validationError("triggerType", "must be one of manual, scheduled, webhook"), nil
		}
		patch["triggerType"] = triggerType
	}
	if raw, ok := args["triggerConfig"]; ok {
		cfg, errRes := toObject("triggerConfig", raw)
		if errRes != nil {
			return errRes, nil
		}
		patch["triggerConfig"] = cfg
	}
	if raw, ok := args["steps"]; ok {
		steps, errRes := parseSteps(raw)
		if errRes != nil {
			return errRes, nil
		}
		patch["steps"] = steps
	}
	if raw, ok := args["connections"]; ok {
		conns, errRes := toStringSlice("connections", raw)
		if errRes != nil {
			return errRes, nil
		}
		patch["connections"] = conns
	}
	if raw, ok := args["isActive"]; ok {
		active, errRes := toBool("isActive", raw)
		if errRes != nil {
			return errRes, nil
		}
		patch["isActive"] = active
	}

	if len(patch) == 0 {
		return validationError("", "no fields supplied to patch"), nil
	}

	skill, err := s.api.PatchSkill(ctx, id, patch)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(skillPayload{Success: true, Skill: *skill}), nil
}

// handleDeleteSkill implements the delete_skill tool.
func (s *Server) handleDeleteSkill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(request, "id")
	if errRes != nil {
		return errRes, nil
	}
	force := request.GetBool("force", false)

	skill, err := s.api.DeleteSkill(ctx, id, force)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(skillDeletedPayload{Success: true, Deleted: *skill}), nil
}
