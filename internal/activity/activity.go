// Package activity builds the dashboard's derived read models: the stats
// counters and the merged recent-activity feed. Nothing here is persisted;
// both views are computed from the caller's member project set on demand.
package activity

import (
	"fmt"
	"sort"
	"time"

	"github.com/taskflow-dev/taskflow/internal/authz"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
	"gorm.io/gorm"
)

const (
	TypeTaskCreated    = "task_created"
	TypeProjectCreated = "project_created"
)

// Record is one entry in the activity feed. The ID is a composite of the
// record kind and the source row ID ("task-7", "project-3") so entries stay
// unique across both sources.
type Record struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	ProjectID   uint      `json:"project_id"`
	TaskID      uint      `json:"task_id,omitempty"`
}

type Stats struct {
	TotalProjects  int64 `json:"total_projects"`
	TotalTasks     int64 `json:"total_tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
	PendingTasks   int64 `json:"pending_tasks"`
	AssignedToMe   int64 `json:"assigned_to_me"`
}

// UserStats counts projects and tasks across the user's member project set.
// Pending is defined as total minus completed, so the two always sum back
// to the total.
func UserStats(db *gorm.DB, userID uint) (Stats, error) {
	ids, err := authz.MemberProjectIDs(db, userID)

	if err != nil {
		return Stats{}, err
	}

	stats := Stats{TotalProjects: int64(len(ids))}

	if len(ids) == 0 {
		return stats, nil
	}

	tasks := db.Model(&models.Task{}).Where("project_id IN ?", ids).Session(&gorm.Session{})

	if err := tasks.Count(&stats.TotalTasks).Error; err != nil {
		return Stats{}, err
	}

	if err := tasks.Where("status = ?", types.StatusDone).Count(&stats.CompletedTasks).Error; err != nil {
		return Stats{}, err
	}

	if err := tasks.Where("assignee_id = ?", userID).Count(&stats.AssignedToMe).Error; err != nil {
		return Stats{}, err
	}

	stats.PendingTasks = stats.TotalTasks - stats.CompletedTasks

	return stats, nil
}

// Recent merges the newest tasks and newest projects visible to the user
// into one reverse-chronological feed of at most limit records. The merge
// is a stable sort, so records with identical timestamps keep their fetch
// order (tasks before projects) and the result is deterministic.
func Recent(db *gorm.DB, userID uint, limit int) ([]Record, error) {
	ids, err := authz.MemberProjectIDs(db, userID)

	if err != nil {
		return nil, err
	}

	records := []Record{}

	if len(ids) == 0 {
		return records, nil
	}

	var tasks []models.Task

	err = db.Where("project_id IN ?", ids).
		Preload("Project").
		Preload("Assignee").
		Order("created_at DESC").
		Limit(limit).
		Find(&tasks).Error

	if err != nil {
		return nil, err
	}

	var projects []models.Project

	err = db.Where("id IN ?", ids).
		Preload("Owner").
		Order("created_at DESC").
		Limit(limit).
		Find(&projects).Error

	if err != nil {
		return nil, err
	}

	for _, task := range tasks {
		description := fmt.Sprintf("%q unassigned", task.Title)
		if task.Assignee != nil {
			description = fmt.Sprintf("%q assigned to %s", task.Title, task.Assignee.Name)
		}

		records = append(records, Record{
			ID:          fmt.Sprintf("task-%d", task.ID),
			Type:        TypeTaskCreated,
			Title:       fmt.Sprintf("New task in %s", task.Project.Name),
			Description: description,
			Timestamp:   task.CreatedAt,
			ProjectID:   task.ProjectID,
			TaskID:      task.ID,
		})
	}

	for _, project := range projects {
		records = append(records, Record{
			ID:          fmt.Sprintf("project-%d", project.ID),
			Type:        TypeProjectCreated,
			Title:       "New project",
			Description: fmt.Sprintf("%q created by %s", project.Name, project.Owner.Name),
			Timestamp:   project.CreatedAt,
			ProjectID:   project.ID,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})

	if len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}
