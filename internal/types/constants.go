package types

const ContextUserKey = "user"

const SessionCookieName = "token"

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusClosed     = "Closed"

	// StatusDone is only accepted when a project is created.
	StatusDone = "Done"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var (
	// Values accepted by the project and task status endpoints.
	StatusValues = []string{StatusOpen, StatusInProgress, StatusClosed}

	// Values accepted when a project is created.
	ProjectCreateStatusValues = []string{StatusOpen, StatusInProgress, StatusClosed, StatusDone}

	PriorityValues = []string{PriorityLow, PriorityMedium, PriorityHigh}
)

func IsStatus(s string) bool {
	return contains(StatusValues, s)
}

func IsProjectCreateStatus(s string) bool {
	return contains(ProjectCreateStatusValues, s)
}

func IsPriority(p string) bool {
	return contains(PriorityValues, p)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
