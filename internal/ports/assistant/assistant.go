package assistant

import "context"

// Message es un turno de la conversación con el asistente.
type Message struct {
	Role    string `json:"role"` // user | assistant
	Content string `json:"content"`
}

// Assistant responde la conversación del chatbot de soporte de medicación.
// La implementación real vive en adapters (gateway a un modelo hospedado).
type Assistant interface {
	Reply(ctx context.Context, messages []Message) (string, error)
}
