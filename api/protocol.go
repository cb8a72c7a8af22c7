package api

// Write request bodies are capped; the admin dashboard never sends more.
const (
	reorderMaxSize = 64 * 1024  // 64 KiB
	writeMaxSize   = 256 * 1024 // 256 KiB
)

// response is the uniform envelope returned by every route.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(data any) response {
	return response{Success: true, Data: data}
}

func okMessage(msg string) response {
	return response{Success: true, Message: msg}
}

func fail(msg string) response {
	return response{Success: false, Message: msg}
}
