package trip

// QueryRequest is a tourism query. The LLM key is optional and owned by the
// caller; the service never stores it.
type QueryRequest struct {
	Query     string `json:"query" validate:"required,min=1,max=500"`
	LLMAPIKey string `json:"llm_api_key,omitempty"`
}

// SubroutineResult is the uniform outcome shape shared by the weather and
// places subroutines.
type SubroutineResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SubResults holds the per-subroutine outcomes. A nil entry means that
// subroutine was not requested.
type SubResults struct {
	Weather *SubroutineResult `json:"weather"`
	Places  *SubroutineResult `json:"places"`
}

// Result is the merged orchestration outcome. On total failure Success is
// false and Error carries a human-readable message; Location still echoes
// the text that was attempted, when there is any.
type Result struct {
	Success  bool        `json:"success"`
	Location string      `json:"location"`
	Message  string      `json:"message,omitempty"`
	Error    string      `json:"error,omitempty"`
	Results  *SubResults `json:"results,omitempty"`
}
