// Package authz decides whether a principal may read or mutate a project or
// task. Membership is the only unit of authorization: a user is a member of
// a project iff they own it or hold a membership row, and every task
// operation is authorized against the task's owning project.
package authz

import (
	"errors"

	"github.com/taskflow-dev/taskflow/internal/models"
	"gorm.io/gorm"
)

// Outcome classifies an authorization decision. Handlers decide how much of
// the distinction to surface; project mutation collapses DeniedForbidden
// into DeniedNotFound externally so non-owners cannot probe for existence.
type Outcome int

const (
	Permitted Outcome = iota
	DeniedNotFound
	DeniedForbidden
)

func memberProjects(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&models.ProjectMembership{}).
		Select("project_id").
		Where("user_id = ?", userID)
}

// IsMember reports whether the user owns the project or holds a membership
// row for it. It queries at call time; results are never cached.
func IsMember(db *gorm.DB, projectID uint, userID uint) (bool, error) {
	var count int64

	err := db.Model(&models.Project{}).
		Where("id = ? AND (owner_id = ? OR id IN (?))", projectID, userID, memberProjects(db, userID)).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// MemberProjectIDs returns every project the user can see, owned or joined.
func MemberProjectIDs(db *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint

	err := db.Model(&models.Project{}).
		Where("owner_id = ? OR id IN (?)", userID, memberProjects(db, userID)).
		Pluck("id", &ids).Error

	if err != nil {
		return nil, err
	}

	return ids, nil
}

// CheckProject authorizes read-level access: any member passes. A missing
// project and a foreign project yield distinct outcomes; read handlers
// collapse both into one 404 response.
func CheckProject(db *gorm.DB, projectID uint, userID uint) (Outcome, error) {
	var project models.Project

	if err := db.Select("id").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DeniedNotFound, nil
		}
		return DeniedNotFound, err
	}

	member, err := IsMember(db, projectID, userID)

	if err != nil {
		return DeniedForbidden, err
	}

	if !member {
		return DeniedForbidden, nil
	}

	return Permitted, nil
}

// CheckProjectOwner authorizes project mutation, which is owner-only. It
// never distinguishes "exists but not yours" from "does not exist": both
// come back DeniedNotFound, so the response leaks nothing to non-owners.
func CheckProjectOwner(db *gorm.DB, projectID uint, userID uint) (Outcome, error) {
	var project models.Project

	err := db.Select("id").Where("id = ? AND owner_id = ?", projectID, userID).First(&project).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DeniedNotFound, nil
		}
		return DeniedNotFound, err
	}

	return Permitted, nil
}

// CheckTask authorizes any task operation for the given user. Membership in
// the owning project is all that matters; the task's assignee and reporter
// are irrelevant. The loaded task is returned so handlers do not refetch.
func CheckTask(db *gorm.DB, taskID uint, userID uint) (*models.Task, Outcome, error) {
	var task models.Task

	if err := db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, DeniedNotFound, nil
		}
		return nil, DeniedNotFound, err
	}

	member, err := IsMember(db, task.ProjectID, userID)

	if err != nil {
		return nil, DeniedForbidden, err
	}

	if !member {
		return nil, DeniedForbidden, nil
	}

	return &task, Permitted, nil
}
