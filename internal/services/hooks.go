package services

import "github.com/taskdeck/taskdeck/internal/models"

// Hooks run after a change has been committed. Nil fields are skipped.
type Hooks struct {
	ProjectChanged  func(projectID uint)
	ProjectAssigned func(project models.Project, assignee models.User)
}

func (h Hooks) changed(projectID uint) {
	if h.ProjectChanged != nil {
		h.ProjectChanged(projectID)
	}
}

func (h Hooks) assigned(project models.Project, assignee models.User) {
	if h.ProjectAssigned != nil {
		h.ProjectAssigned(project, assignee)
	}
}
