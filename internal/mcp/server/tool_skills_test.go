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
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSkills_DefaultsLimitAndOffset(t *testing.T) {
	stub := newStubAPI(t)
	stub.respond("GET /skills", http.StatusOK, `{"success":true,"data":[]}`)
	srv := newTestServer(t, stub)

	result, err := srv.handleListSkills(context.Background(), makeCallToolRequest(map[string]any{}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	req := stub.lastRequest(t)
	assert.Equal(t, "50", req.Query["limit"][0])
	assert.Equal(t, "0", req.Query["offset"][0])
}

func TestListSkills_ActiveFilterScenario(t *testing.T) {
	stub := newStubAPI(t)
	stub.respond("GET /skills", http.StatusOK, `{
		"success": true,
		"data": [
			{"id":"s1","name":"a","triggerType":"manual","steps":[],"isActive":true},
			{"id":"s2","name":"b","triggerType":"webhook","steps":[],"isActive":true},
			{"id":"s3","name":"c","triggerType":"scheduled","steps":[],"isActive":true}
		],
		"meta": {"total":3,"page":1,"limit":10,"totalPages":1,"hasMore":false}
	}`)
	srv := newTestServer(t, stub)

	result, err := srv.handleListSkills(context.Background(), makeCallToolRequest(map[string]any{
		"isActive": true,
		"limit":    float64(10), // JSON numbers arrive as float64
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	req := stub.lastRequest(t)
	assert.Equal(t, "true", req.Query["isActive"][0])
	assert.Equal(t, "10", req.Query["limit"][0])

	var payload skillListPayload
	decodeResult(t, result, &payload)
	assert.True(t, payload.Success)
	assert.Len(t, payload.Skills, 3)
	require.NotNil(t, payload.Pagination)
	assert.Equal(t, 3, payload.Pagination.Total)
}

func TestListSkills_UnsetFiltersOmitted(t *testing.T) {
	stub := newStubAPI(t)
	stub.respond("GET /skills", http.StatusOK, `{"success":true,"data":[]}`)
	srv := newTestServer(t, stub)

	_, err := srv.handleListSkills(context.Background(), makeCallToolRequest(map[string]any{}))
	require.NoError(t, err)

	req := stub.lastRequest(t)
	assert.NotContains(t, req.Query, "isActive")
	assert.NotContains(t, req.Query, "triggerType")
	assert.NotContains(t, req.Query, "search")
}

func TestListSkills_RejectsBadLimitBeforeNetwork(t *testing.T) {
	stub := newStubAPI(t)
	srv := newTestServer(t, stub)

	result, err := srv.handleListSkills(context.Background(), makeCallToolRequest(map[string]any{
		"limit": float64(500),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(t, result), "limit")
	assert.Equal(t, 0, stub.requestCount(), "validation failures must not reach the network")
}

func TestListSkills_RejectsBadTriggerType(t *testing.T) {
	stub := newStubAPI(t)
	srv := newTestServer(t, stub)

	result, err := srv.handleListSkills(context.Background(), makeCallToolRequest(map[string]any{
		"triggerType": "cron",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(t, result), "triggerType")
	assert.Equal(t, 0, stub.requestCount())
}

func TestGetSkill_Success(t *testing.T) {
	stub := newStubAPI(t)
	stub.respond("GET /skills/s1", http.StatusOK, `{"success":true,"data":{"id":"s1","name":"deploy","triggerType":"manual","steps":[{"id":1,"prompt":"do"}],"isActive":true}}`)
	srv := newTestServer(t, stub)

	result, err := srv.handleGetSkill(context.Background(), makeCallToolRequest(map[string]any{"id": "s1"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var payload skillPayload
	decodeResult(t, result, &payload)
	assert.Equal(t, "s1", payload.Skill.ID)
	assert.Equal(t, "deploy", payload.Skill.Name)
	require.Len(t, payload.Skill.Steps, 1)
}

func TestGetSkill_MissingID(t *testing.T) {
	stub := newStubAPI(t)
	srv := newTestServer(t, stub)

	result, err := srv.handleGetSkill(context.Background(), makeCallToolRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, 0, stub.requestCount())
}

func TestCreateSkill_DefaultsIsActiveTrue(t *testing.T) {
	stub := newStubAPI(t)
	stub.respond("POST /skills", http.StatusOK, `{"success":true,"data":{"id":"s9","name":"n","triggerType":"manual","steps":[],"isActive":true}}`)
	srv := newTestServer(t, stub)

	result, err := srv.handleCreateSkill(context.Background(), makeCallToolRequest(map[string]any{
		"name":        "n",
		"triggerType": "manual",
		"steps":       []any{map[string]any{"id": float64(1), "prompt": "do the thing"}},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractText(t, result))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(stub.lastRequest(t).Body, &sent))
	assert.Equal(t, true, sent["isActive"], "omitted isActive must resolve to true in the payload")
}

func TestCreateSkill_StepValidation(t *testing.T) {
	tests := []struct {
		name  string
		steps any
		want  string
	}{
		{"not an array", "steps", "steps"},
		{"empty array", []any{}, "at least one step"},
		{"missing prompt", []any{map[string]any{"id": float64(1), "prompt": "  "}}, "prompt"},
		{"non-positive id", []any{map[string]any{"id": float64(0), "prompt": "p"}}, "positive integer"},
		{
			"duplicate ids",
			[]any{
				map[string]any{"id": float64(1), "prompt": "a"},
				map[string]any{"id": float64(1), "prompt": "b"},
			},
			"duplicated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStubAPI(t)
			srv := newTestServer(t, stub)

			result, err := srv.handleCreateSkill(context.Background(), makeCallToolRequest(map[string]any{
				"name":        "n",
				"triggerType": "manual",
				"steps":       tt.steps,
			}))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, extractText(t, result), tt.want)
			assert.Equal(t, 0, stub.requestCount())
		})
	}
}

func TestCreateSkill_PreservesStepOrder(t *testing.T) {
	stub := newStubAPI(t)
	stub.respond("POST /skills", http.StatusOK, `{"success":true,"data":{"id":"s9","name":"n","triggerType":"manual","steps":[],"isActive":true}}`)
	srv := newTestServer(t, stub)

	_, err := srv.handleCreateSkill(context.Background(), makeCallToolRequest(map[string]any{
		"name":        "n",
		"triggerType": "manual",
		"steps": []any{
			map[string]any{"id": float64(3), "prompt": "third"},
			map[string]any{"id": float64(1), "prompt": "first"},
			map[string]any{"id": float64(2), "prompt": "second"},
		},
	}))
	require.NoError(t, err)

	var sent struct {
		Steps []struct {
			ID int `json:"id"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(stub.lastRequest(t).Body, &sent))
	require.Len(t, sent.Steps, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{sent.Steps[0].ID, sent.Steps[1].ID, sent.Steps[2].ID},
		"step order is execution order and must be preserved as supplied")
}

func TestUpdateSkill_SendsFullShape(t *testing.T) {
	stub := newStubAPI(t)
	stub.respond("PUT /skills/s1", http.StatusOK, `{"success":true,"data":{"id":"s1","name":"n","triggerType":"manual","steps":[],"isActive":true}}`)
	srv := newTestServer(t, stub)

	result, err := srv.handleUpdateSkill(context.Background(), makeCallToolRequest(map[string]any{
		"id":          "s1",
		"name":        "n",
		"triggerType": "manual",
		"steps":       []any{map[string]any{"id": float64(1), "prompt": "p"}},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractText(t, result))

	req := stub.lastRequest(t)
	assert.Equal(t, http.MethodPut, req.Method)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &sent))
	assert.Equal(t, true, sent["isActive"], "update is a full replacement; isActive collapses to its default")
	assert.Contains(t, sent, "steps")
	assert.Contains(t, sent, "name")
}

func TestPatchSkill_SendsOnlySuppliedFields(t *testing.T) {
	stub := newStubAPI(t)
	stub.respond("PATCH /skills/s1", http.StatusOK, `{"success":true,"data":{"id":"s1","name":"renamed","triggerType":"manual","steps":[],"isActive":true}}`)
	srv := newTestServer(t, stub)

	result, err := srv.handlePatchSkill(context.Background(), makeCallToolRequest(map[string]any{
		"id":   "s1",
		"name": "renamed",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractText(t, result))

	req := stub.lastRequest(t)
	assert.Equal(t, http.MethodPatch, req.Method)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &sent))
	assert.Equal(t, map[string]any{"name": "renamed"}, sent,
		"patch must not send steps, isActive, or any other unsupplied field")
}

func TestPatchSkill_NoFieldsRejected(t *testing.T) {
	stub := newStubAPI(t)
	srv := newTestServer(t, stub)

	result, err := srv.handlePatchSkill(context.Background(), makeCallToolRequest(map[string]any{"id": "s1"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(t, result), "no fields")
	assert.Equal(t, 0, stub.requestCount())
}

func TestDeleteSkill_BlockedByRemote(t *testing.T) {
	stub := newStubAPI(t)
	stub.respond("DELETE /skills/abc", http.StatusOK, `{"success":false,"error":"has active executions"}`)
	srv := newTestServer(t, stub)

	result, err := srv.handleDeleteSkill(context.Background(), makeCallToolRequest(map[string]any{
		"id":    "abc",
		"force": false,
	}))
	require.NoError(t, err, "remote failures must surface in the result, not as handler errors")
	assert.True(t, result.IsError)
	assert.Equal(t, "has active executions", extractText(t, result))

	req := stub.lastRequest(t)
	assert.NotContains(t, req.Query, "force")
}

func TestDeleteSkill_ForceAndConfirmation(t *testing.T) {
	stub := newStubAPI(t)
	stub.respond("DELETE /skills/abc", http.StatusOK, `{"success":true,"data":{"id":"abc","name":"old skill","triggerType":"manual","steps":[]}}`)
	srv := newTestServer(t, stub)

	result, err := srv.handleDeleteSkill(context.Background(), makeCallToolRequest(map[string]any{
		"id":    "abc",
		"force": true,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	req := stub.lastRequest(t)
	assert.Equal(t, "true", req.Query["force"][0])

	var payload skillDeletedPayload
	decodeResult(t, result, &payload)
	assert.Equal(t, "abc", payload.Deleted.ID)
	assert.Equal(t, "old skill", payload.Deleted.Name)
}

func TestSkillHandlers_IDConstraints(t *testing.T) {
	stub := newStubAPI(t)
	srv := newTestServer(t, stub)

	for _, id := range []string{"", "has space", strings.Repeat("x", 200)} {
		result, err := srv.handleGetSkill(context.Background(), makeCallToolRequest(map[string]any{"id": id}))
		require.NoError(t, err)
		assert.True(t, result.IsError, "id %q should be rejected", id)
	}
	assert.Equal(t, 0, stub.requestCount())
}
