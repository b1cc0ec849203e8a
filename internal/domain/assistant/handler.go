package assistant

import (
	"encoding/json"
	"net/http"
	"strings"

	"medical-calendar/internal/middleware"
	port "medical-calendar/internal/ports/assistant"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta el chatbot de soporte. Con gateway nil el endpoint
// responde 503 (el resto del servicio funciona igual sin asistente).
func RegisterRoutes(r chi.Router, gw port.Assistant) {
	r.Post("/chat", chatHandler(gw))
}

type chatRequest struct {
	Messages []port.Message `json:"messages"`
}

type chatResponse struct {
	Success bool   `json:"success"`
	Reply   string `json:"reply"`
}

// chatHandler godoc
// @Summary Chat con el asistente de medicación
// @Description Reenvía la conversación al modelo hospedado con el prompt de MediCal Assistant. Requiere identidad autenticada. Respuesta JSON completa, sin streaming.
// @Tags assistant
// @Accept json
// @Produce json
// @Param payload body chatRequest true "Historial de mensajes (roles user/assistant)"
// @Success 200 {object} chatResponse
// @Failure 400 {string} string "invalid json / sin mensajes"
// @Failure 401 {string} string "unauthorized"
// @Failure 503 {string} string "asistente no configurado"
// @Router /chat [post]
func chatHandler(gw port.Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if gw == nil {
			http.Error(w, "assistant not configured", http.StatusServiceUnavailable)
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if len(req.Messages) == 0 {
			http.Error(w, "messages required", http.StatusBadRequest)
			return
		}

		reply, err := gw.Reply(r.Context(), req.Messages)
		if err != nil {
			http.Error(w, "assistant unavailable", http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, chatResponse{Success: true, Reply: reply})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
