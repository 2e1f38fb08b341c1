package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalpovskii/todo/internal/app/models"
	"github.com/kalpovskii/todo/internal/app/repositories"
	"github.com/kalpovskii/todo/internal/app/services"
)

const (
	msgNotFound = "Todo not found"
	msgDeleted  = "Todo deleted successfully"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TodoHandler struct {
	service *services.TodoService
}

func NewTodoHandler(service *services.TodoService) *TodoHandler {
	return &TodoHandler{service: service}
}

// Register mounts the todo routes on r, normally the /api group.
func (h *TodoHandler) Register(r gin.IRouter) {
	r.GET("/todos", h.list)
	r.POST("/todos", h.create)
	r.GET("/todos/:id", h.get)
	r.PUT("/todos/:id", h.update)
	r.DELETE("/todos/:id", h.delete)
}

func (h *TodoHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.List())
}

func (h *TodoHandler) create(c *gin.Context) {
	var req models.TodoCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, "invalid body: "+err.Error())
		return
	}
	if req.Title == nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, "title is required")
		return
	}

	todo, err := h.service.Create(*req.Title)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) get(c *gin.Context) {
	todo, err := h.service.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) update(c *gin.Context) {
	var patch models.TodoUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, "invalid body: "+err.Error())
		return
	}

	todo, err := h.service.Update(c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: msgDeleted})
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		abortWithDetail(c, http.StatusNotFound, msgNotFound)
		return
	}
	_ = c.Error(err)
	abortWithDetail(c, http.StatusInternalServerError, err.Error())
}

func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: detail})
}

// NotFound answers unmatched API routes.
func NotFound(c *gin.Context) {
	abortWithDetail(c, http.StatusNotFound, "Not Found")
}

// MethodNotAllowed answers known paths hit with an unsupported method.
func MethodNotAllowed(c *gin.Context) {
	abortWithDetail(c, http.StatusMethodNotAllowed, "Method Not Allowed")
}
