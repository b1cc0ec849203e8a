package admin

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"medical-calendar/internal/domain/doctors"
	"medical-calendar/internal/domain/patients"
	"medical-calendar/internal/domain/prescriptions"
	"medical-calendar/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta la consola admin: gestión de doctores y pacientes.
// Todos los endpoints exigen rol admin en los claims.
func RegisterRoutes(r chi.Router, doctorsSvc *doctors.Service, patientsSvc *patients.Service, rxSvc *prescriptions.Service) {
	r.Route("/admin", func(ar chi.Router) {
		ar.Route("/doctors", func(dr chi.Router) {
			dr.Get("/", listDoctorsHandler(doctorsSvc, patientsSvc))
			dr.Post("/", createDoctorHandler(doctorsSvc))
			dr.Put("/{doctorID}", updateDoctorHandler(doctorsSvc))
			dr.Delete("/{doctorID}", deleteDoctorHandler(doctorsSvc, patientsSvc))
		})

		ar.Route("/patients", func(pr chi.Router) {
			pr.Get("/", listAllPatientsHandler(patientsSvc, doctorsSvc))
			pr.Put("/{patientID}", updatePatientHandler(patientsSvc))
			pr.Delete("/{patientID}", deletePatientHandler(patientsSvc, rxSvc))
		})
	})
}

type doctorResponse struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staffId"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Patients  int       `json:"patients"`
	CreatedAt time.Time `json:"createdAt"`
}

type adminPatientResponse struct {
	ID          string `json:"id"`
	ExternalID  string `json:"externalId"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Notes       string `json:"notes,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Doctor      struct {
		StaffID string `json:"staffId"`
		Name    string `json:"name"`
	} `json:"doctor"`
	CreatedAt time.Time `json:"createdAt"`
}

// requireAdmin corta con 401 si los claims no traen rol admin, replicando el
// comportamiento que espera la consola admin (401, no 403).
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || !claims.IsAdmin() {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	return true
}

// listDoctorsHandler godoc
// @Summary [admin] Listar doctores
// @Description Lista todos los doctores con su cantidad de pacientes asignados.
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {string} string "unauthorized"
// @Router /admin/doctors [get]
func listDoctorsHandler(doctorsSvc *doctors.Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		items, err := doctorsSvc.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch doctors")
			return
		}

		out := make([]doctorResponse, 0, len(items))
		for _, d := range items {
			n, _ := patientsSvc.CountByDoctor(r.Context(), d.ID)
			out = append(out, toDoctorResponse(d, n))
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"doctors": out,
		})
	}
}

type createDoctorRequest struct {
	Name    string `json:"name"`
	StaffID string `json:"staffId"`
	Email   string `json:"email"`
}

// createDoctorHandler godoc
// @Summary [admin] Crear doctor
// @Description Alta explícita de un doctor. El staff ID se normaliza a mayúsculas y debe ser único.
// @Tags admin
// @Accept json
// @Produce json
// @Param payload body createDoctorRequest true "Datos del doctor"
// @Success 200 {object} map[string]any
// @Failure 400 {string} string "campos faltantes / staff ID duplicado"
// @Failure 401 {string} string "unauthorized"
// @Router /admin/doctors [post]
func createDoctorHandler(doctorsSvc *doctors.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		var req createDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.StaffID) == "" {
			writeError(w, http.StatusBadRequest, "Missing required fields")
			return
		}

		d, err := doctorsSvc.Create(r.Context(), doctors.CreateInput{
			StaffID: req.StaffID,
			Name:    req.Name,
			Email:   req.Email,
		})
		if err != nil {
			if err == doctors.ErrStaffIDTaken {
				writeError(w, http.StatusBadRequest, "Doctor ID already exists")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"doctor":  toDoctorResponse(d, 0),
		})
	}
}

type updateDoctorRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// updateDoctorHandler godoc
// @Summary [admin] Actualizar doctor
// @Tags admin
// @Accept json
// @Produce json
// @Param doctorID path string true "ID del doctor"
// @Param payload body updateDoctorRequest true "Campos a actualizar (nil = no tocar)"
// @Success 200 {object} map[string]any
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "doctor not found"
// @Router /admin/doctors/{doctorID} [put]
func updateDoctorHandler(doctorsSvc *doctors.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		var req updateDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		d, err := doctorsSvc.Update(r.Context(), chi.URLParam(r, "doctorID"), doctors.UpdateInput{
			Name:  req.Name,
			Email: req.Email,
		})
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "not found") {
				writeError(w, http.StatusNotFound, "Doctor not found")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"doctor":  toDoctorResponse(d, 0),
		})
	}
}

// deleteDoctorHandler godoc
// @Summary [admin] Eliminar doctor
// @Description Rechaza el borrado mientras el doctor tenga pacientes asignados: hay que reasignarlos primero.
// @Tags admin
// @Produce json
// @Param doctorID path string true "ID del doctor"
// @Success 200 {object} map[string]any
// @Failure 400 {string} string "doctor con pacientes asignados"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "doctor not found"
// @Router /admin/doctors/{doctorID} [delete]
func deleteDoctorHandler(doctorsSvc *doctors.Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		doctorID := chi.URLParam(r, "doctorID")

		n, err := patientsSvc.CountByDoctor(r.Context(), doctorID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to delete doctor")
			return
		}
		if n > 0 {
			writeError(w, http.StatusBadRequest, "Cannot delete doctor with assigned patients. Reassign them first.")
			return
		}

		if err := doctorsSvc.Delete(r.Context(), doctorID); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "not found") {
				writeError(w, http.StatusNotFound, "Doctor not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to delete doctor")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Doctor deleted successfully",
		})
	}
}

// listAllPatientsHandler godoc
// @Summary [admin] Listar todos los pacientes
// @Description Lista todos los pacientes del sistema con el nombre y staff ID de su doctor.
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {string} string "unauthorized"
// @Router /admin/patients [get]
func listAllPatientsHandler(patientsSvc *patients.Service, doctorsSvc *doctors.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		items, err := patientsSvc.ListAll(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch patients")
			return
		}

		doctorByID := map[string]doctors.Doctor{}

		out := make([]adminPatientResponse, 0, len(items))
		for _, p := range items {
			resp := adminPatientResponse{
				ID:         p.ID,
				ExternalID: p.ExternalID,
				Name:       p.Name,
				Email:      p.Email,
				Phone:      p.Phone,
				Notes:      p.Notes,
				CreatedAt:  p.CreatedAt,
			}
			if p.DateOfBirth != nil {
				resp.DateOfBirth = p.DateOfBirth.UTC().Format("2006-01-02")
			}

			doc, ok := doctorByID[p.DoctorID]
			if !ok {
				if d, err := doctorsSvc.GetByID(r.Context(), p.DoctorID); err == nil {
					doc = d
				}
				doctorByID[p.DoctorID] = doc
			}
			resp.Doctor.StaffID = doc.StaffID
			resp.Doctor.Name = doc.Name

			out = append(out, resp)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"patients": out,
		})
	}
}

type updatePatientRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

// updatePatientHandler godoc
// @Summary [admin] Actualizar paciente
// @Tags admin
// @Accept json
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param payload body updatePatientRequest true "Campos a actualizar (nil = no tocar)"
// @Success 200 {object} map[string]any
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "patient not found"
// @Router /admin/patients/{patientID} [put]
func updatePatientHandler(patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		var req updatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := patientsSvc.Update(r.Context(), chi.URLParam(r, "patientID"), patients.UpdateInput{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
			Notes: req.Notes,
		})
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "not found") {
				writeError(w, http.StatusNotFound, "Patient not found")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"patient": map[string]any{
				"id":         p.ID,
				"externalId": p.ExternalID,
				"name":       p.Name,
				"email":      p.Email,
				"phone":      p.Phone,
				"notes":      p.Notes,
			},
		})
	}
}

// deletePatientHandler godoc
// @Summary [admin] Eliminar paciente
// @Description Borra primero las recetas y dose events del paciente (cascada) y después al paciente.
// @Tags admin
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {object} map[string]any
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "patient not found"
// @Router /admin/patients/{patientID} [delete]
func deletePatientHandler(patientsSvc *patients.Service, rxSvc *prescriptions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		patientID := chi.URLParam(r, "patientID")

		// El paciente debe existir antes de tocar sus recetas.
		if _, err := patientsSvc.GetByID(r.Context(), patientID); err != nil {
			writeError(w, http.StatusNotFound, "Patient not found")
			return
		}

		if err := rxSvc.DeleteByPatient(r.Context(), patientID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to delete patient")
			return
		}
		if err := patientsSvc.Delete(r.Context(), patientID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to delete patient")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Patient deleted successfully",
		})
	}
}

func toDoctorResponse(d doctors.Doctor, patientCount int) doctorResponse {
	return doctorResponse{
		ID:        d.ID,
		StaffID:   d.StaffID,
		Name:      d.Name,
		Email:     d.Email,
		Patients:  patientCount,
		CreatedAt: d.CreatedAt,
	}
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
