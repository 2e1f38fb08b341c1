package services

import (
	"time"

	"github.com/kalpovskii/todo/internal/app/models"
	"github.com/kalpovskii/todo/internal/app/repositories"
)

// EventSender receives a notification after every successful mutation.
// Implementations must not block the caller.
type EventSender interface {
	SendEvent(event models.TodoEvent)
}

type noopSender struct{}

func (noopSender) SendEvent(models.TodoEvent) {}

type TodoService struct {
	repo   repositories.TodoRepository
	events EventSender
	now    func() time.Time
}

func NewTodoService(repo repositories.TodoRepository, events EventSender) *TodoService {
	if events == nil {
		events = noopSender{}
	}
	return &TodoService{
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

func (s *TodoService) List() []models.TodoItem {
	return s.repo.List()
}

func (s *TodoService) Create(title string) (*models.TodoItem, error) {
	todo := &models.TodoItem{
		Title: title,
	}

	if err := s.repo.Create(todo); err != nil {
		return nil, err
	}

	s.send(models.ActionCreated, *todo)

	return todo, nil
}

func (s *TodoService) Get(id string) (*models.TodoItem, error) {
	todo, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (s *TodoService) Update(id string, patch models.TodoUpdate) (*models.TodoItem, error) {
	todo, err := s.repo.Update(id, patch)
	if err != nil {
		return nil, err
	}

	if !patch.Empty() {
		s.send(models.ActionUpdated, todo)
	}

	return &todo, nil
}

func (s *TodoService) Delete(id string) error {
	todo, err := s.repo.Delete(id)
	if err != nil {
		return err
	}

	s.send(models.ActionDeleted, todo)

	return nil
}

func (s *TodoService) send(action string, todo models.TodoItem) {
	s.events.SendEvent(models.TodoEvent{
		Action: action,
		Todo:   todo,
		Time:   s.now().UTC(),
	})
}
