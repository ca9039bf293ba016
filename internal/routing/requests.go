package routing

// CompilationRequest is a single source paired with the targets it should be
// compiled into.
type CompilationRequest struct {
	Source  string   `json:"source"`
	Targets []string `json:"targets"`
}
