package patients

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"medical-calendar/internal/domain/doctors"
	"medical-calendar/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// PrescriptionStats es lo que el listado de pacientes necesita saber del
// módulo de recetas, sin importarlo (la dependencia va en el otro sentido).
type PrescriptionStats struct {
	ActiveCount      int
	LastPrescribedAt *time.Time
}

// StatsProvider lo implementa un adapter sobre el servicio de recetas; se
// cablea en el router.
type StatsProvider interface {
	PatientStats(ctx context.Context, patientID string) (PrescriptionStats, error)
}

func RegisterRoutes(r chi.Router, svc *Service, doctorsSvc *doctors.Service, stats StatsProvider) {
	r.Route("/patients", func(pr chi.Router) {
		pr.Get("/", listPatientsHandler(svc, doctorsSvc, stats))
		pr.Post("/", createPatientHandler(svc, doctorsSvc))
	})
}

type createPatientRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"` // YYYY-MM-DD opcional
	Notes       string `json:"notes"`
	ExternalID  string `json:"externalId"` // opcional, se genera si falta
}

// patientResponse usa fechas como strings YYYY-MM-DD, igual que el portal.
type patientResponse struct {
	ID          string `json:"id"`
	ExternalID  string `json:"externalId"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

type patientListItem struct {
	patientResponse
	LastVisit           string `json:"lastVisit,omitempty"`
	ActivePrescriptions int    `json:"activePrescriptions"`
}

// listPatientsHandler godoc
// @Summary Listar pacientes del doctor autenticado
// @Description Lista los pacientes asignados al doctor (materializado desde la identidad autenticada), con el conteo de recetas activas y la fecha de la última receta como "última visita".
// @Tags patients
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {string} string "unauthorized"
// @Router /patients [get]
func listPatientsHandler(svc *Service, doctorsSvc *doctors.Service, stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		doctor, err := doctorsSvc.UpsertByStaffID(r.Context(), claims.UserID, claims.Name, claims.Email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch patients")
			return
		}

		items, err := svc.ListByDoctor(r.Context(), doctor.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch patients")
			return
		}

		out := make([]patientListItem, 0, len(items))
		for _, p := range items {
			item := patientListItem{patientResponse: toPatientResponse(p)}

			if stats != nil {
				if st, err := stats.PatientStats(r.Context(), p.ID); err == nil {
					item.ActivePrescriptions = st.ActiveCount
					if st.LastPrescribedAt != nil {
						item.LastVisit = st.LastPrescribedAt.UTC().Format("2006-01-02")
					}
				}
			}

			out = append(out, item)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"patients": out,
		})
	}
}

// createPatientHandler godoc
// @Summary Crear paciente
// @Description Da de alta un paciente para el doctor autenticado. Si no se envía externalId se genera uno con formato PAT-YYYY-MMDD-XXX; si el propuesto ya existe, se regenera.
// @Tags patients
// @Accept json
// @Produce json
// @Param payload body createPatientRequest true "Datos del paciente; dateOfBirth en YYYY-MM-DD"
// @Success 200 {object} map[string]any
// @Failure 400 {string} string "nombre requerido / fecha inválida"
// @Failure 401 {string} string "unauthorized"
// @Router /patients [post]
func createPatientHandler(svc *Service, doctorsSvc *doctors.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		doctor, err := doctorsSvc.UpsertByStaffID(r.Context(), claims.UserID, claims.Name, claims.Email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create patient")
			return
		}

		var req createPatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "Patient name is required")
			return
		}

		var dob *time.Time
		if strings.TrimSpace(req.DateOfBirth) != "" {
			t, err := time.Parse("2006-01-02", strings.TrimSpace(req.DateOfBirth))
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid date of birth")
				return
			}
			dob = &t
		}

		p, err := svc.Create(r.Context(), doctor.ID, CreateInput{
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			DateOfBirth: dob,
			Notes:       req.Notes,
			ExternalID:  req.ExternalID,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Patient created successfully",
			"patient": toPatientResponse(p),
		})
	}
}

func toPatientResponse(p Patient) patientResponse {
	resp := patientResponse{
		ID:         p.ID,
		ExternalID: p.ExternalID,
		Name:       p.Name,
		Email:      p.Email,
		Phone:      p.Phone,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt.UTC().Format("2006-01-02"),
	}
	if p.DateOfBirth != nil {
		resp.DateOfBirth = p.DateOfBirth.UTC().Format("2006-01-02")
	}
	return resp
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}
