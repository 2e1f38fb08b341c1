package models

import "time"

type TodoItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// TodoCreate is the body of POST /api/todos. Title is a pointer so that a
// missing or null title can be told apart from an empty one.
type TodoCreate struct {
	Title *string `json:"title"`
}

// TodoUpdate is a partial update. Nil fields are left untouched.
type TodoUpdate struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// Empty reports whether the update carries no fields at all.
func (u TodoUpdate) Empty() bool {
	return u.Title == nil && u.Completed == nil
}

// Apply merges the supplied fields into todo. The id is never changed.
func (u TodoUpdate) Apply(todo *TodoItem) {
	if u.Title != nil {
		todo.Title = *u.Title
	}
	if u.Completed != nil {
		todo.Completed = *u.Completed
	}
}

// Event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TodoEvent describes a mutation of the todo collection.
type TodoEvent struct {
	Action string    `json:"action"`
	Todo   TodoItem  `json:"todo"`
	Time   time.Time `json:"time"`
}
