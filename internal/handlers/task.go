package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/authz"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
	"github.com/taskflow-dev/taskflow/internal/utils"
)

type CreateTaskRequest struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	Status      types.TaskStatus   `json:"status"`
	Priority    types.TaskPriority `json:"priority"`
	ProjectID   uint               `json:"project_id" binding:"required"`
	AssigneeID  *uint              `json:"assignee_id"`
	DueDate     *time.Time         `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Status      *types.TaskStatus   `json:"status"`
	Priority    *types.TaskPriority `json:"priority"`
	AssigneeID  *uint               `json:"assignee_id"`
	DueDate     *time.Time          `json:"due_date"`
}

type UpdateTaskStatusRequest struct {
	Status types.TaskStatus `json:"status" binding:"required"`
}

type TaskResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      types.TaskStatus   `json:"status"`
	Priority    types.TaskPriority `json:"priority"`
	ProjectID   uint               `json:"project_id"`
	AssigneeID  *uint              `json:"assignee_id"`
	ReporterID  uint               `json:"reporter_id"`
	DueDate     *time.Time         `json:"due_date"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Assignee    *types.UserSummary `json:"assignee,omitempty"`
	Reporter    *types.UserSummary `json:"reporter,omitempty"`
}

func buildTaskResponse(task models.Task) TaskResponse {
	response := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		ProjectID:   task.ProjectID,
		AssigneeID:  task.AssigneeID,
		ReporterID:  task.ReporterID,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.Assignee != nil {
		response.Assignee = &types.UserSummary{
			ID:     task.Assignee.ID,
			Name:   task.Assignee.Name,
			Email:  task.Assignee.Email,
			Avatar: task.Assignee.Avatar,
		}
	}

	if task.Reporter.ID != 0 {
		response.Reporter = &types.UserSummary{
			ID:    task.Reporter.ID,
			Name:  task.Reporter.Name,
			Email: task.Reporter.Email,
		}
	}

	return response
}

func ListProjectTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetParamID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := authz.CheckProject(db.DB, projectID, userID)

	if err != nil {
		log.Printf("Failed to authorize task list: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if outcome != authz.Permitted {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found or access denied"})
		return
	}

	var tasks []models.Task

	err = db.DB.Where("project_id = ?", projectID).
		Preload("Assignee").
		Preload("Reporter").
		Order("created_at DESC").
		Find(&tasks).Error

	if err != nil {
		log.Printf("Failed to retrieve tasks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := []TaskResponse{}
	for _, task := range tasks {
		response = append(response, buildTaskResponse(task))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Status and priority are validated before anything touches storage.
	if body.Status == "" {
		body.Status = types.DefaultStatus
	} else if !body.Status.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	if body.Priority == "" {
		body.Priority = types.DefaultPriority
	} else if !body.Priority.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	outcome, err := authz.CheckProject(db.DB, body.ProjectID, userID)

	if err != nil {
		log.Printf("Failed to authorize task create: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if outcome != authz.Permitted {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Project not found or access denied"})
		return
	}

	task := models.Task{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		ProjectID:   body.ProjectID,
		AssigneeID:  body.AssigneeID,
		ReporterID:  userID,
		DueDate:     body.DueDate,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		log.Printf("Failed to create task: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create task"})
		return
	}

	if err := db.DB.Preload("Assignee").Preload("Reporter").First(&task, task.ID).Error; err != nil {
		log.Printf("Failed to reload task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, buildTaskResponse(task))
}

// checkTaskAccess runs the shared authorization for single-task operations
// and writes the response for denied outcomes: 404 when the task does not
// exist, 403 when the caller is not a member of its project.
func checkTaskAccess(ctx *gin.Context, taskID uint, userID uint) (*models.Task, bool) {
	task, outcome, err := authz.CheckTask(db.DB, taskID, userID)

	if err != nil {
		log.Printf("Failed to authorize task access: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}

	switch outcome {
	case authz.DeniedNotFound:
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return nil, false
	case authz.DeniedForbidden:
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return nil, false
	}

	return task, true
}

func UpdateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetParamID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.Status != nil && !body.Status.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	if body.Priority != nil && !body.Priority.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	task, ok := checkTaskAccess(ctx, taskID, userID)

	if !ok {
		return
	}

	updates := make(map[string]interface{})

	if body.Title != nil {
		updates["title"] = *body.Title
	}

	if body.Description != nil {
		updates["description"] = *body.Description
	}

	if body.Status != nil {
		updates["status"] = *body.Status
	}

	if body.Priority != nil {
		updates["priority"] = *body.Priority
	}

	if body.AssigneeID != nil {
		updates["assignee_id"] = *body.AssigneeID
	}

	if body.DueDate != nil {
		updates["due_date"] = *body.DueDate
	}

	if len(updates) > 0 {
		if err := db.DB.Model(task).Updates(updates).Error; err != nil {
			log.Printf("Failed to update task: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
			return
		}
	}

	if err := db.DB.Preload("Assignee").Preload("Reporter").First(task, task.ID).Error; err != nil {
		log.Printf("Failed to reload task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, buildTaskResponse(*task))
}

// UpdateTaskStatus is the restricted form of UpdateTask behind the
// drag-and-drop PATCH. Authorization runs fresh on every call; nothing is
// assumed from earlier reads.
func UpdateTaskStatus(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetParamID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateTaskStatusRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !body.Status.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	task, ok := checkTaskAccess(ctx, taskID, userID)

	if !ok {
		return
	}

	if err := db.DB.Model(task).Update("status", body.Status).Error; err != nil {
		log.Printf("Failed to update task status: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	if err := db.DB.Preload("Assignee").Preload("Reporter").First(task, task.ID).Error; err != nil {
		log.Printf("Failed to reload task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, buildTaskResponse(*task))
}

func DeleteTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetParamID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, ok := checkTaskAccess(ctx, taskID, userID)

	if !ok {
		return
	}

	if err := db.DB.Delete(task).Error; err != nil {
		log.Printf("Failed to delete task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
