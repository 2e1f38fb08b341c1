package repositories

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/kalpovskii/todo/internal/app/models"
)

var ErrNotFound = errors.New("todo not found")

type TodoRepository interface {
	List() []models.TodoItem
	Create(todo *models.TodoItem) error
	Get(id string) (models.TodoItem, error)
	Update(id string, patch models.TodoUpdate) (models.TodoItem, error)
	Delete(id string) (models.TodoItem, error)
}

// MemoryTodoRepo keeps todos in insertion order for the life of the process.
// Lookups are linear scans by id.
type MemoryTodoRepo struct {
	mu    sync.RWMutex
	todos []models.TodoItem
	newID func() string
}

func NewMemoryTodoRepo() *MemoryTodoRepo {
	return &MemoryTodoRepo{
		todos: []models.TodoItem{},
		newID: uuid.NewString,
	}
}

func (r *MemoryTodoRepo) List() []models.TodoItem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.TodoItem, len(r.todos))
	copy(out, r.todos)
	return out
}

// Create assigns a fresh id, resets completed and appends the todo.
func (r *MemoryTodoRepo) Create(todo *models.TodoItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo.ID = r.newID()
	todo.Completed = false
	r.todos = append(r.todos, *todo)
	return nil
}

func (r *MemoryTodoRepo) Get(id string) (models.TodoItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.TodoItem{}, ErrNotFound
	}
	return r.todos[i], nil
}

func (r *MemoryTodoRepo) Update(id string, patch models.TodoUpdate) (models.TodoItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.TodoItem{}, ErrNotFound
	}
	patch.Apply(&r.todos[i])
	return r.todos[i], nil
}

// Delete removes the todo and returns it. Remaining todos keep their order.
func (r *MemoryTodoRepo) Delete(id string) (models.TodoItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.TodoItem{}, ErrNotFound
	}
	removed := r.todos[i]
	r.todos = append(r.todos[:i], r.todos[i+1:]...)
	return removed, nil
}

// indexOf must be called with mu held.
func (r *MemoryTodoRepo) indexOf(id string) int {
	for i := range r.todos {
		if r.todos[i].ID == id {
			return i
		}
	}
	return -1
}
