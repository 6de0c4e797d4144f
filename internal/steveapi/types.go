package steveapi

import "time"

// User represents the identity document returned by GET /users/me
type User struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	FullName         string `json:"full_name"`
	CurrentWorkspace string `json:"current_workspace"`
}

// Product represents a product in a workspace
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// Task statuses accepted by the backend
const (
	StatusToDo       = "To do"
	StatusInProgress = "In progress"
	StatusInReview   = "In review"
	StatusCompleted  = "Completed"
)

// Task types
const (
	TaskTypeActive  = "active"
	TaskTypeBacklog = "backlog"
)

// Task creation provenance
const (
	CreatedWithAI     = "ai"
	CreatedWithManual = "manual"
)

// AssignedUser is a user reference embedded in a task
type AssignedUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Task represents a task document returned by the backend
type Task struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Status          string         `json:"status"`
	Priority        string         `json:"priority"`
	Type            string         `json:"type"`
	AssignedTo      []AssignedUser `json:"assigned_to"`
	Tags            []string       `json:"tags"`
	StartDate       *time.Time     `json:"start_date,omitempty"`
	DueDate         *time.Time     `json:"due_date,omitempty"`
	CreatedAt       *time.Time     `json:"created_at,omitempty"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty"`
	CreatedWith     string         `json:"created_with"`
	ParentTaskID    string         `json:"parent_task_id,omitempty"`
	IsSimpleSubtask bool           `json:"is_simple_subtask"`
}

// TaskCreateInput is the body for POST /tasks/. Optional fields are omitted
// from the request so the backend applies its own defaults and validation.
type TaskCreateInput struct {
	ProductID       string     `json:"product_id"`
	ParentTaskID    string     `json:"parent_task_id,omitempty"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	AssignedTo      []string   `json:"assigned_to,omitempty"`
	Status          string     `json:"status,omitempty"`
	Priority        string     `json:"priority,omitempty"`
	Type            string     `json:"type,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	IsSimpleSubtask bool       `json:"is_simple_subtask,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	CreatedWith     string     `json:"created_with,omitempty"`
}

// TaskQuery holds the filters for GET /tasks/product/{id}. Filters are
// forwarded to the backend verbatim; the adapter never re-filters results
// client-side.
type TaskQuery struct {
	Page      int
	Limit     int
	Type      string
	Status    string
	Priority  string
	DueAfter  *time.Time
	DueBefore *time.Time
}
