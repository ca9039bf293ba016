package routing

type CompilationResult struct {
	Target string `json:"target"`
	Output string `json:"output"`
}

// CodeCompilation groups the results of one CompilationRequest in the order
// the targets were requested.
type CodeCompilation struct {
	Source  string              `json:"source"`
	Results []CompilationResult `json:"results"`
}
