package screen

// Severity of a transient notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is the outcome of a submit, shown briefly by the renderer.
type Notification struct {
	Severity Severity
	Message  string
	// Navigate is the route to move to, or "" to stay.
	Navigate string
}
