package models

// DefaultProjectName names the implicit project of instances without project support.
const DefaultProjectName = "default"

// Project is an n8n project. Instances without project support use DefaultProject.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// DefaultProject is the synthetic project used when the instance has no projects.
func DefaultProject() Project {
	return Project{Name: DefaultProjectName}
}

// IsDefault reports whether the project is the synthetic one.
func (p Project) IsDefault() bool {
	return p.ID == ""
}

// ProjectList is the body of GET /projects.
type ProjectList struct {
	Data       []Project `json:"data"`
	NextCursor *string   `json:"nextCursor"`
}
