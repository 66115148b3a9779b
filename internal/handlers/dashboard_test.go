package handlers_test

import (
	"net/http"
	"testing"
	"time"
)

func TestDashboardStats(t *testing.T) {
	r := setupServer(t)

	owner := createTestUser(t, "owner@example.com")
	other := createTestUser(t, "other@example.com")
	token := tokenFor(t, owner)

	projectID := createProjectVia(t, r, token, map[string]interface{}{"name": "Work"})
	createProjectVia(t, r, tokenFor(t, other), map[string]interface{}{"name": "Elsewhere"})

	createTaskVia(t, r, token, map[string]interface{}{
		"title": "done one", "project_id": projectID, "status": "DONE",
	})
	createTaskVia(t, r, token, map[string]interface{}{
		"title": "open one", "project_id": projectID,
	})
	createTaskVia(t, r, token, map[string]interface{}{
		"title": "mine", "project_id": projectID, "assignee_id": owner.ID,
	})

	w := doRequest(t, r, http.MethodGet, "/api/dashboard/stats", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d, body %s", w.Code, w.Body.String())
	}

	var stats struct {
		TotalProjects  int64 `json:"total_projects"`
		TotalTasks     int64 `json:"total_tasks"`
		CompletedTasks int64 `json:"completed_tasks"`
		PendingTasks   int64 `json:"pending_tasks"`
		AssignedToMe   int64 `json:"assigned_to_me"`
	}
	decodeBody(t, w, &stats)

	if stats.TotalProjects != 1 {
		t.Errorf("total_projects = %d, want 1", stats.TotalProjects)
	}
	if stats.TotalTasks != 3 {
		t.Errorf("total_tasks = %d, want 3", stats.TotalTasks)
	}
	if stats.CompletedTasks != 1 {
		t.Errorf("completed_tasks = %d, want 1", stats.CompletedTasks)
	}
	if stats.AssignedToMe != 1 {
		t.Errorf("assigned_to_me = %d, want 1", stats.AssignedToMe)
	}
	if stats.CompletedTasks+stats.PendingTasks != stats.TotalTasks {
		t.Errorf("completed (%d) + pending (%d) != total (%d)",
			stats.CompletedTasks, stats.PendingTasks, stats.TotalTasks)
	}
}

func TestDashboardActivity(t *testing.T) {
	r := setupServer(t)

	owner := createTestUser(t, "owner@example.com")
	token := tokenFor(t, owner)

	projectID := createProjectVia(t, r, token, map[string]interface{}{"name": "Feed"})

	for i := 0; i < 5; i++ {
		createTaskVia(t, r, token, map[string]interface{}{
			"title": "task", "project_id": projectID,
		})
	}

	w := doRequest(t, r, http.MethodGet, "/api/dashboard/activity?limit=3", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("activity status = %d, body %s", w.Code, w.Body.String())
	}

	var records []struct {
		ID        string    `json:"id"`
		Type      string    `json:"type"`
		Timestamp time.Time `json:"timestamp"`
	}
	decodeBody(t, w, &records)

	if len(records) > 3 {
		t.Fatalf("got %d records, limit is 3", len(records))
	}

	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.After(records[i-1].Timestamp) {
			t.Errorf("record %d newer than record %d; feed must be descending", i, i-1)
		}
	}

	// A bad limit falls back to the default rather than failing.
	w = doRequest(t, r, http.MethodGet, "/api/dashboard/activity?limit=bogus", token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("activity with bad limit status = %d, want 200", w.Code)
	}
}
