package domain

// SubjectType differentiates the kinds of actors driving a change.
type SubjectType string

const (
	SubjectTypeUser   SubjectType = "USER"
	SubjectTypeStaff  SubjectType = "STAFF"
	SubjectTypeSystem SubjectType = "SYSTEM"
)

// Actor is the explicit identity passed into every entry point. Nothing in
// the engine reads ambient session state.
type Actor struct {
	Type SubjectType
	ID   string
}

// SystemActor identifies background jobs such as the auto-close worker.
func SystemActor() Actor {
	return Actor{Type: SubjectTypeSystem, ID: "system"}
}
