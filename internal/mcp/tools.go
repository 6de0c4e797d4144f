package mcp

import (
	mcp "github.com/fredcamaral/gomcp-sdk"
)

// registerTools registers the four tools exposed to agent clients
func (s *SteveServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"create_task",
		"Create a new task in the Steve backend. The task is validated and persisted by the backend so notifications and audit run; pass the product_id from list_user_products.",
		mcp.ObjectSchema("Task creation parameters", map[string]interface{}{
			"task_input": map[string]interface{}{
				"type":        "object",
				"description": "The task to create",
				"properties": map[string]interface{}{
					"product_id": map[string]interface{}{
						"type":        "string",
						"description": "ID of the product the task belongs to",
					},
					"parent_task_id": map[string]interface{}{
						"type":        "string",
						"description": "Optional parent task for subtasks",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Task title",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "Task description",
					},
					"assigned_to": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "User IDs to assign",
					},
					"status": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"To do", "In progress", "In review", "Completed"},
						"default":     "To do",
						"description": "Initial status",
					},
					"priority": map[string]interface{}{
						"type":        "string",
						"description": "Task priority",
					},
					"type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"active", "backlog"},
						"default":     "active",
						"description": "Whether the task is active or parked in the backlog",
					},
					"tags": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Free-form tags",
					},
					"is_simple_subtask": map[string]interface{}{
						"type":        "boolean",
						"default":     false,
						"description": "Marks a lightweight checklist-style subtask",
					},
					"start_date": map[string]interface{}{
						"type":        "string",
						"format":      "date-time",
						"description": "Start date (RFC 3339)",
					},
					"due_date": map[string]interface{}{
						"type":        "string",
						"format":      "date-time",
						"description": "Due date (RFC 3339)",
					},
					"created_with": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"ai", "manual"},
						"default":     "ai",
						"description": "Provenance of the task",
					},
				},
				"required": []string{"product_id", "name"},
			},
		}, []string{"task_input"}),
	), mcp.ToolHandlerFunc(s.withRecovery("create_task", s.handleCreateTask)))

	s.mcpServer.AddTool(mcp.NewTool(
		"check_authentication",
		"Check whether the current authentication token is valid and return the caller's user profile including the active workspace.",
		mcp.ObjectSchema("No parameters", map[string]interface{}{}, []string{}),
	), mcp.ToolHandlerFunc(s.withRecovery("check_authentication", s.handleCheckAuthentication)))

	s.mcpServer.AddTool(mcp.NewTool(
		"list_user_products",
		"List all products in the user's current workspace. Served from the local mirror when it has data, otherwise from the backend API.",
		mcp.ObjectSchema("No parameters", map[string]interface{}{}, []string{}),
	), mcp.ToolHandlerFunc(s.withRecovery("list_user_products", s.handleListUserProducts)))

	s.mcpServer.AddTool(mcp.NewTool(
		"get_user_tasks",
		"Get tasks for the user. Filters by product name, status, priority and time frame, with pagination. Defaults to the first product in the workspace when no product_name is given.",
		mcp.ObjectSchema("Task listing parameters", map[string]interface{}{
			"product_name": map[string]interface{}{
				"type":        "string",
				"description": "Name of the product to list tasks for (first product if omitted)",
			},
			"status": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"To do", "In progress", "In review", "Completed"},
				"description": "Filter by status",
			},
			"priority": map[string]interface{}{
				"type":        "string",
				"description": "Filter by priority",
			},
			"time_frame": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"upcoming", "overdue", "all"},
				"default":     "upcoming",
				"description": "Filter by due date relative to now",
			},
			"page": map[string]interface{}{
				"type":        "integer",
				"default":     1,
				"description": "Page number",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"default":     10,
				"description": "Tasks per page",
			},
		}, []string{}),
	), mcp.ToolHandlerFunc(s.withRecovery("get_user_tasks", s.handleGetUserTasks)))
}
