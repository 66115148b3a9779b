package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/authz"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
	"github.com/taskflow-dev/taskflow/internal/utils"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	MemberEmails []string `json:"member_emails"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type ProjectMemberResponse struct {
	types.UserSummary
	Role string `json:"role"`
}

type ProjectResponse struct {
	ID          uint                    `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Owner       types.UserResponse      `json:"owner"`
	Members     []ProjectMemberResponse `json:"members"`
	TaskCount   int64                   `json:"task_count"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

type ProjectDetailResponse struct {
	ProjectResponse
	Tasks []TaskResponse `json:"tasks"`
}

func buildProjectResponse(project models.Project, taskCount int64) ProjectResponse {
	members := []ProjectMemberResponse{}

	for _, membership := range project.ProjectMemberships {
		members = append(members, ProjectMemberResponse{
			UserSummary: types.UserSummary{
				ID:     membership.User.ID,
				Name:   membership.User.Name,
				Email:  membership.User.Email,
				Avatar: membership.User.Avatar,
			},
			Role: membership.Role,
		})
	}

	return ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Owner: types.UserResponse{
			ID:    project.Owner.ID,
			Name:  project.Owner.Name,
			Email: project.Owner.Email,
		},
		Members:   members,
		TaskCount: taskCount,
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
	}
}

func CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project := models.Project{
		Name:        body.Name,
		Description: body.Description,
		OwnerID:     userID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		memberships := []models.ProjectMembership{
			{UserID: userID, ProjectID: project.ID, Role: models.RoleOwner},
		}

		// Unknown emails are skipped rather than rejected; the owner is
		// never duplicated as a MEMBER.
		if len(body.MemberEmails) > 0 {
			emails := make([]string, 0, len(body.MemberEmails))
			for _, email := range body.MemberEmails {
				emails = append(emails, strings.ToLower(strings.TrimSpace(email)))
			}

			var users []models.User
			if err := tx.Where("email IN ? AND id != ?", emails, userID).Find(&users).Error; err != nil {
				return err
			}

			for _, user := range users {
				memberships = append(memberships, models.ProjectMembership{
					UserID:    user.ID,
					ProjectID: project.ID,
					Role:      models.RoleMember,
				})
			}
		}

		return tx.Create(&memberships).Error
	})

	if err != nil {
		log.Printf("Failed to create project: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create project"})
		return
	}

	if err := db.DB.Preload("Owner").Preload("ProjectMemberships.User").First(&project, project.ID).Error; err != nil {
		log.Printf("Failed to reload project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, buildProjectResponse(project, 0))
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ids, err := authz.MemberProjectIDs(db.DB, userID)

	if err != nil {
		log.Printf("Failed to resolve member projects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := []ProjectResponse{}

	if len(ids) == 0 {
		ctx.JSON(http.StatusOK, response)
		return
	}

	var projects []models.Project

	err = db.DB.Where("id IN ?", ids).
		Preload("Owner").
		Preload("ProjectMemberships.User").
		Order("updated_at DESC").
		Find(&projects).Error

	if err != nil {
		log.Printf("Failed to retrieve projects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	// One grouped count instead of a query per project.
	type taskCount struct {
		ProjectID uint
		Count     int64
	}

	var counts []taskCount

	err = db.DB.Model(&models.Task{}).
		Select("project_id, COUNT(*) AS count").
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(&counts).Error

	if err != nil {
		log.Printf("Failed to count tasks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	countByProject := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countByProject[c.ProjectID] = c.Count
	}

	for _, project := range projects {
		response = append(response, buildProjectResponse(project, countByProject[project.ID]))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
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
		log.Printf("Failed to authorize project read: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Missing and forbidden are collapsed into one answer on reads.
	if outcome != authz.Permitted {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found or access denied"})
		return
	}

	var project models.Project

	err = db.DB.Preload("Owner").
		Preload("ProjectMemberships.User").
		Preload("Tasks", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("tasks.updated_at DESC").Preload("Assignee").Preload("Reporter")
		}).
		First(&project, projectID).Error

	if err != nil {
		log.Printf("Failed to retrieve project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	tasks := []TaskResponse{}
	for _, task := range project.Tasks {
		tasks = append(tasks, buildTaskResponse(task))
	}

	ctx.JSON(http.StatusOK, ProjectDetailResponse{
		ProjectResponse: buildProjectResponse(project, int64(len(project.Tasks))),
		Tasks:           tasks,
	})
}

func UpdateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	projectID, err := utils.GetParamID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := authz.CheckProjectOwner(db.DB, projectID, userID)

	if err != nil {
		log.Printf("Failed to authorize project update: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Same response whether the project is missing or owned by someone
	// else; non-owners learn nothing about existence.
	if outcome != authz.Permitted {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found or not authorized"})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		log.Printf("Failed to retrieve project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	project.Name = body.Name
	project.Description = body.Description

	if err := db.DB.Save(&project).Error; err != nil {
		log.Printf("Failed to update project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	if err := db.DB.Preload("Owner").Preload("ProjectMemberships.User").First(&project, project.ID).Error; err != nil {
		log.Printf("Failed to reload project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var taskCount int64
	db.DB.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&taskCount)

	ctx.JSON(http.StatusOK, buildProjectResponse(project, taskCount))
}

func DeleteProject(ctx *gin.Context) {
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

	outcome, err := authz.CheckProjectOwner(db.DB, projectID, userID)

	if err != nil {
		log.Printf("Failed to authorize project delete: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if outcome != authz.Permitted {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found or not authorized"})
		return
	}

	// Tasks and memberships go with the project.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, projectID).Error
	})

	if err != nil {
		log.Printf("Failed to delete project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
