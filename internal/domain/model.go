package domain

// AutoModel is the user-facing label for "no model constraint".
const AutoModel = "auto"

// Model is a chat model reported by the provider.
type Model struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
}

// NormalizeModelID maps the "auto" label and blank input to the empty (unconstrained) id.
func NormalizeModelID(id string) string {
	if id == AutoModel {
		return ""
	}
	return id
}

// ChatStream is a streamed chat response. Recv returns io.EOF after the last chunk.
type ChatStream interface {
	Recv() (string, error)
	Close() error
}
