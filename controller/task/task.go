package task

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"taskboard/dto"
	"taskboard/model"
	"taskboard/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func TaskController(router *gin.RouterGroup, svc *services.TaskService, logger *slog.Logger) {
	routes := router.Group("/tasks")
	{
		routes.GET("", func(c *gin.Context) {
			ListTasks(c, svc)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetTask(c, svc)
		})
		routes.POST("", func(c *gin.Context) {
			CreateTask(c, svc, logger)
		})
		routes.PATCH("/:id", func(c *gin.Context) {
			UpdateTask(c, svc, logger)
		})
	}
}

func ListTasks(c *gin.Context, svc *services.TaskService) {
	tasks, err := svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func GetTask(c *gin.Context, svc *services.TaskService) {
	task, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func CreateTask(c *gin.Context, svc *services.TaskService, logger *slog.Logger) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debug("rejected create request", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: bindError(err)})
		return
	}

	task, err := svc.Create(c.Request.Context(), model.CreateInput{Title: req.Title, Status: req.Status})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func UpdateTask(c *gin.Context, svc *services.TaskService, logger *slog.Logger) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debug("rejected update request", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: bindError(err)})
		return
	}

	task, err := svc.Update(c.Request.Context(), c.Param("id"), model.TaskUpdate{Title: req.Title, Status: req.Status})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// writeError maps service errors onto status codes. Upstream causes were
// logged by the service and are not sent to the client.
func writeError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError
	var upstreamErr *services.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: validationErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: notFoundErr.Error()})
	case errors.As(err, &upstreamErr):
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: upstreamErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
	}
}

func bindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			if field == "title" {
				msgs = append(msgs, "Title is required and must be a non-empty string")
				continue
			}
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}
