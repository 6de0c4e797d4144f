package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"steve-mcp/internal/logging"
	"steve-mcp/internal/steveapi"
)

// Error messages surfaced to tool callers. Authentication failures are
// user-visible and never retried.
const (
	errAuthRequiredCreateTask = "Authentication required to create a task."
	errAuthRequiredProducts   = "Authentication required to list products."
	errAuthRequiredTasks      = "Authentication required to fetch tasks."
	errNoToken                = "No authentication token found."
	errTokenExpired           = "Authentication failed. Your token may be expired."
	errTokenInvalid           = "Authentication failed. Please check your token."
	errNoWorkspace            = "No current workspace found. Please select a workspace first."
	errNoProducts             = "No products found in the current workspace."
	errUserProfile            = "Failed to get user profile."
)

// descriptionDisplayLimit is the truncation point for task descriptions in
// list output
const descriptionDisplayLimit = 100

// failure wraps an error message in the uniform tool envelope
func failure(msg string) map[string]interface{} {
	return map[string]interface{}{"success": false, "error": msg}
}

// success wraps a payload in the uniform tool envelope
func success(payload map[string]interface{}) map[string]interface{} {
	result := map[string]interface{}{"success": true}
	for k, v := range payload {
		result[k] = v
	}
	return result
}

// withRecovery converts a tool handler into the SDK handler shape. Panics
// in the handler body become structured failures so the RPC layer never
// sees an uncaught fault.
func (s *SteveServer) withRecovery(toolName string, fn func(context.Context, map[string]interface{}) map[string]interface{}) func(context.Context, map[string]interface{}) (interface{}, error) {
	return func(ctx context.Context, params map[string]interface{}) (result interface{}, err error) {
		ctx = logging.WithTraceID(ctx, logging.GetTraceID(ctx))
		defer func() {
			if r := recover(); r != nil {
				s.logger.ErrorContext(ctx, "tool handler panicked", "tool", toolName, "panic", r)
				result = failure(fmt.Sprintf("Error in %s: %v", toolName, r))
				err = nil
			}
		}()

		s.logger.InfoContext(ctx, "tool called", "tool", toolName)
		return fn(ctx, params), nil
	}
}

// handleCreateTask creates a task through the backend API. Writes never
// touch the mirror.
func (s *SteveServer) handleCreateTask(ctx context.Context, params map[string]interface{}) map[string]interface{} {
	authHeader, ok := s.resolver.Authorization(ctx)
	if !ok {
		return failure(errAuthRequiredCreateTask)
	}

	input, err := parseTaskInput(params)
	if err != nil {
		return failure(err.Error())
	}

	task, err := s.api.CreateTask(ctx, authHeader, input)
	if err != nil {
		if steveapi.StatusOf(err) == 401 {
			return failure(errTokenInvalid)
		}
		if apiErr, ok := err.(*steveapi.APIError); ok {
			return failure("Error creating task: " + apiErr.Body)
		}
		return failure(fmt.Sprintf("Error creating task: %v", err))
	}

	return success(map[string]interface{}{
		"task_id": task.ID,
		"name":    task.Name,
		"status":  task.Status,
		"message": "Task created successfully",
	})
}

// parseTaskInput decodes and validates the task_input parameter
func parseTaskInput(params map[string]interface{}) (*steveapi.TaskCreateInput, error) {
	raw, ok := params["task_input"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("task_input parameter is required and must be an object")
	}

	// Round-trip through JSON so nested fields and RFC 3339 dates decode
	// into the typed input at the boundary
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid task_input: %w", err)
	}
	var input steveapi.TaskCreateInput
	if err := json.Unmarshal(encoded, &input); err != nil {
		return nil, fmt.Errorf("invalid task_input: %w", err)
	}

	if input.ProductID == "" {
		return nil, fmt.Errorf("task_input.product_id is required")
	}
	if input.Name == "" {
		return nil, fmt.Errorf("task_input.name is required")
	}

	if input.Status == "" {
		input.Status = steveapi.StatusToDo
	}
	if input.Type == "" {
		input.Type = steveapi.TaskTypeActive
	}
	if input.CreatedWith == "" {
		input.CreatedWith = steveapi.CreatedWithAI
	}
	return &input, nil
}

// handleCheckAuthentication validates the caller's token against /users/me
func (s *SteveServer) handleCheckAuthentication(ctx context.Context, _ map[string]interface{}) map[string]interface{} {
	authHeader, ok := s.resolver.Authorization(ctx)
	if !ok {
		return failure(errNoToken)
	}

	user, err := s.api.GetCurrentUser(ctx, authHeader)
	if err != nil {
		if steveapi.StatusOf(err) == 401 {
			return failure(errTokenExpired)
		}
		if apiErr, ok := err.(*steveapi.APIError); ok {
			return failure("Error checking authentication: " + apiErr.Body)
		}
		return failure(fmt.Sprintf("Error checking authentication: %v", err))
	}

	return success(map[string]interface{}{
		"user": map[string]interface{}{
			"id":                user.ID,
			"email":             user.Email,
			"name":              user.FullName,
			"current_workspace": user.CurrentWorkspace,
		},
	})
}

// handleListUserProducts lists products in the caller's current workspace
// through the dual-path reader.
func (s *SteveServer) handleListUserProducts(ctx context.Context, _ map[string]interface{}) map[string]interface{} {
	authHeader, ok := s.resolver.Authorization(ctx)
	if !ok {
		return failure(errAuthRequiredProducts)
	}

	user, errResult := s.resolveIdentity(ctx, authHeader)
	if errResult != nil {
		return errResult
	}

	products, err := s.products.Products(ctx, authHeader, user.CurrentWorkspace, defaultProductLimit)
	if err != nil {
		if steveapi.StatusOf(err) == 401 {
			return failure(errTokenInvalid)
		}
		if apiErr, ok := err.(*steveapi.APIError); ok {
			return failure("Error fetching products: " + apiErr.Body)
		}
		return failure(fmt.Sprintf("Error listing products: %v", err))
	}

	formatted := make([]map[string]interface{}, 0, len(products))
	for i := range products {
		formatted = append(formatted, map[string]interface{}{
			"id":          products[i].ID,
			"name":        products[i].Name,
			"description": products[i].Description,
			"created_at":  products[i].CreatedAt,
		})
	}

	return success(map[string]interface{}{"products": formatted})
}

// handleGetUserTasks lists tasks with user-friendly filters. Filters are
// forwarded to the backend; results are not re-filtered client-side.
func (s *SteveServer) handleGetUserTasks(ctx context.Context, params map[string]interface{}) map[string]interface{} {
	authHeader, ok := s.resolver.Authorization(ctx)
	if !ok {
		return failure(errAuthRequiredTasks)
	}

	user, errResult := s.resolveIdentity(ctx, authHeader)
	if errResult != nil {
		return errResult
	}

	products, err := s.products.Products(ctx, authHeader, user.CurrentWorkspace, defaultProductLimit)
	if err != nil {
		if apiErr, ok := err.(*steveapi.APIError); ok {
			return failure("Error fetching products: " + apiErr.Body)
		}
		return failure(fmt.Sprintf("Error fetching products: %v", err))
	}
	if len(products) == 0 {
		return failure(errNoProducts)
	}

	product, errResult := pickProduct(products, stringParam(params, "product_name"))
	if errResult != nil {
		return errResult
	}

	query := &steveapi.TaskQuery{
		Page:     intParam(params, "page", 1),
		Limit:    intParam(params, "limit", 10),
		Type:     steveapi.TaskTypeActive,
		Status:   stringParam(params, "status"),
		Priority: stringParam(params, "priority"),
	}

	timeFrame := stringParam(params, "time_frame")
	if timeFrame == "" {
		timeFrame = "upcoming"
	}
	now := s.now().UTC()
	switch timeFrame {
	case "upcoming":
		query.DueAfter = &now
	case "overdue":
		query.DueBefore = &now
	}

	tasks, err := s.api.ListProductTasks(ctx, authHeader, product.ID, query)
	if err != nil {
		if apiErr, ok := err.(*steveapi.APIError); ok {
			return failure("Error fetching tasks: " + apiErr.Body)
		}
		return failure(fmt.Sprintf("Error fetching tasks: %v", err))
	}

	formatted := make([]map[string]interface{}, 0, len(tasks))
	for i := range tasks {
		formatted = append(formatted, formatTask(&tasks[i]))
	}

	return success(map[string]interface{}{
		"product_name": product.Name,
		"tasks":        formatted,
		"page":         query.Page,
		"limit":        query.Limit,
		"total":        len(formatted),
	})
}

// resolveIdentity fetches the caller's profile and requires an active
// workspace. Returns a failure envelope when either step fails.
func (s *SteveServer) resolveIdentity(ctx context.Context, authHeader string) (*steveapi.User, map[string]interface{}) {
	user, err := s.api.GetCurrentUser(ctx, authHeader)
	if err != nil {
		if steveapi.StatusOf(err) == 401 {
			return nil, failure(errTokenExpired)
		}
		s.logger.WarnContext(ctx, "identity resolution failed", "error", err)
		return nil, failure(errUserProfile)
	}
	if user.CurrentWorkspace == "" {
		return nil, failure(errNoWorkspace)
	}
	return user, nil
}

// pickProduct selects the named product (case-insensitive) or defaults to
// the first one. An unknown name fails with the available alternatives.
func pickProduct(products []steveapi.Product, name string) (*steveapi.Product, map[string]interface{}) {
	if name == "" {
		return &products[0], nil
	}
	for i := range products {
		if strings.EqualFold(products[i].Name, name) {
			return &products[i], nil
		}
	}

	available := make([]string, 0, len(products))
	for i := range products {
		available = append(available, products[i].Name)
	}
	return nil, failure(fmt.Sprintf("Product '%s' not found. Available products: %s",
		name, strings.Join(available, ", ")))
}

// formatTask reshapes a task for display-sized output
func formatTask(task *steveapi.Task) map[string]interface{} {
	var dueDate interface{}
	if task.DueDate != nil {
		dueDate = task.DueDate.UTC().Format(time.RFC3339)
	}
	return map[string]interface{}{
		"id":          task.ID,
		"name":        task.Name,
		"status":      task.Status,
		"priority":    task.Priority,
		"type":        task.Type,
		"due_date":    dueDate,
		"description": truncate(task.Description, descriptionDisplayLimit),
	}
}

// truncate shortens s to limit runes with an ellipsis marker
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// stringParam extracts an optional string parameter
func stringParam(params map[string]interface{}, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

// intParam extracts an optional integer parameter. JSON numbers arrive as
// float64 through the protocol layer.
func intParam(params map[string]interface{}, key string, def int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}
