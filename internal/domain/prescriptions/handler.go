package prescriptions

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"medical-calendar/internal/domain/doctors"
	"medical-calendar/internal/domain/patients"
	"medical-calendar/internal/domain/prescriptions/schedule"
	"medical-calendar/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, patientsSvc *patients.Service, doctorsSvc *doctors.Service) {
	r.Route("/prescriptions", func(pr chi.Router) {
		pr.Post("/", createPrescriptionHandler(svc, patientsSvc, doctorsSvc))
		pr.Get("/", listPrescriptionsHandler(svc, patientsSvc, doctorsSvc))

		// Vista calendario para el cliente del paciente (web y móvil)
		pr.Get("/calendar", calendarHandler(svc, patientsSvc))

		// Toggle tomado/pendiente de una dosis
		pr.Put("/schedule/{entryID}", setEventTakenHandler(svc))
	})
}

// createPrescriptionRequest replica el contrato del portal de doctores.
type createPrescriptionRequest struct {
	Patient struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"patient"`
	Prescription struct {
		Medication struct {
			Name   string `json:"name"`
			Dosage string `json:"dosage"`
			Type   string `json:"type"`
		} `json:"medication"`
		Schedule struct {
			Frequency string `json:"frequency"`
			StartDate string `json:"startDate"` // YYYY-MM-DD o RFC3339
			Duration  string `json:"duration"`
		} `json:"schedule"`
		Instructions string `json:"instructions"`
	} `json:"prescription"`
}

type createPrescriptionResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	PrescriptionID string `json:"prescriptionId"`
	ScheduleCount  int    `json:"scheduleCount"`
}

type doctorSummary struct {
	ID   string `json:"id"` // staff ID, no la clave interna
	Name string `json:"name"`
}

type doseEventResponse struct {
	ID             string     `json:"id"`
	PrescriptionID string     `json:"prescriptionId"`
	ScheduledAt    time.Time  `json:"scheduledAt"`
	Taken          bool       `json:"taken"`
	TakenAt        *time.Time `json:"takenAt,omitempty"`
}

type prescriptionResponse struct {
	ID              string              `json:"id"`
	MedicationName  string              `json:"medicationName"`
	Dosage          string              `json:"dosage"`
	Type            string              `json:"type"`
	Frequency       string              `json:"frequency"`
	Duration        string              `json:"duration"`
	StartDate       time.Time           `json:"startDate"`
	Instructions    string              `json:"instructions,omitempty"`
	Status          Status              `json:"status"`
	Doctor          doctorSummary       `json:"doctor"`
	ScheduleEntries []doseEventResponse `json:"scheduleEntries"`
}

// createPrescriptionHandler godoc
// @Summary Crear receta
// @Description Registra una receta para un paciente y expande su calendario de dosis en el momento. El doctor se materializa desde la identidad autenticada; el paciente se busca por su ID externo y se crea si no existe. Una duración no parseable produce scheduleCount=0, no un error.
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param payload body createPrescriptionRequest true "Datos de la receta; startDate en YYYY-MM-DD o RFC3339"
// @Success 200 {object} createPrescriptionResponse
// @Failure 400 {string} string "invalid json / paciente faltante / fecha inválida"
// @Failure 401 {string} string "unauthorized"
// @Router /prescriptions [post]
func createPrescriptionHandler(svc *Service, patientsSvc *patients.Service, doctorsSvc *doctors.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req createPrescriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(req.Patient.ID) == "" {
			writeError(w, http.StatusBadRequest, "Patient information missing")
			return
		}

		startDate, err := parseStartDate(req.Prescription.Schedule.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date")
			return
		}

		doctor, err := doctorsSvc.UpsertByStaffID(r.Context(), claims.UserID, claims.Name, claims.Email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create prescription")
			return
		}

		patient, err := findOrCreatePatient(r, patientsSvc, doctor.ID, req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		p, count, err := svc.Create(r.Context(), doctor.ID, patient.ID, CreateInput{
			MedicationName: req.Prescription.Medication.Name,
			Dosage:         req.Prescription.Medication.Dosage,
			Type:           req.Prescription.Medication.Type,
			Frequency:      req.Prescription.Schedule.Frequency,
			Duration:       req.Prescription.Schedule.Duration,
			StartDate:      startDate,
			Instructions:   req.Prescription.Instructions,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, createPrescriptionResponse{
			Success:        true,
			Message:        "Prescription created successfully",
			PrescriptionID: p.ID,
			ScheduleCount:  count,
		})
	}
}

func findOrCreatePatient(r *http.Request, patientsSvc *patients.Service, doctorID string, req createPrescriptionRequest) (patients.Patient, error) {
	p, err := patientsSvc.GetByExternalID(r.Context(), req.Patient.ID)
	if err == nil {
		return p, nil
	}

	name := strings.TrimSpace(req.Patient.Name)
	if name == "" {
		name = req.Patient.ID
	}

	return patientsSvc.Create(r.Context(), doctorID, patients.CreateInput{
		ExternalID: req.Patient.ID,
		Name:       name,
		Email:      req.Patient.Email,
		Phone:      req.Patient.Phone,
	})
}

// listPrescriptionsHandler godoc
// @Summary Listar recetas de un paciente
// @Description Devuelve las recetas del paciente (por ID externo) con sus dose events persistidos, más reciente primero. Paciente desconocido devuelve lista vacía, no 404.
// @Tags prescriptions
// @Produce json
// @Param patientId query string true "ID externo del paciente"
// @Success 200 {object} map[string]any
// @Failure 400 {string} string "patientId requerido"
// @Router /prescriptions [get]
func listPrescriptionsHandler(svc *Service, patientsSvc *patients.Service, doctorsSvc *doctors.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		externalID := strings.TrimSpace(r.URL.Query().Get("patientId"))
		if externalID == "" {
			writeError(w, http.StatusBadRequest, "Patient ID is required")
			return
		}

		patient, err := patientsSvc.GetByExternalID(r.Context(), externalID)
		if err != nil {
			// Paciente desconocido: lista vacía, no 404.
			writeJSON(w, http.StatusOK, map[string]any{
				"success":       true,
				"prescriptions": []prescriptionResponse{},
			})
			return
		}

		items, err := svc.ListByPatient(r.Context(), patient.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch prescriptions")
			return
		}

		// Cache local de doctores para no repetir lookups por receta.
		doctorByID := map[string]doctors.Doctor{}

		out := make([]prescriptionResponse, 0, len(items))
		for _, it := range items {
			doc, ok := doctorByID[it.DoctorID]
			if !ok {
				if d, err := doctorsSvc.GetByID(r.Context(), it.DoctorID); err == nil {
					doc = d
				}
				doctorByID[it.DoctorID] = doc
			}

			entries := make([]doseEventResponse, 0, len(it.Events))
			for _, ev := range it.Events {
				entries = append(entries, toDoseEventResponse(ev))
			}

			out = append(out, prescriptionResponse{
				ID:              it.ID,
				MedicationName:  it.MedicationName,
				Dosage:          it.Dosage,
				Type:            it.Type,
				Frequency:       it.Frequency,
				Duration:        it.Duration,
				StartDate:       it.StartDate,
				Instructions:    it.Instructions,
				Status:          it.Status,
				Doctor:          doctorSummary{ID: doc.StaffID, Name: doc.Name},
				ScheduleEntries: entries,
			})
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":       true,
			"prescriptions": out,
		})
	}
}

// calendarHandler godoc
// @Summary Calendario de medicación de un paciente
// @Description Proyección por fecha (YYYY-MM-DD, UTC) de los dose events persistidos del paciente. No recalcula el calendario: solo reagrupa lo ya materializado.
// @Tags prescriptions
// @Produce json
// @Param patientId query string true "ID externo del paciente"
// @Success 200 {object} map[string]any
// @Failure 400 {string} string "patientId requerido"
// @Router /prescriptions/calendar [get]
func calendarHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		externalID := strings.TrimSpace(r.URL.Query().Get("patientId"))
		if externalID == "" {
			writeError(w, http.StatusBadRequest, "Patient ID is required")
			return
		}

		calendar := map[string][]schedule.CalendarEntry{}

		patient, err := patientsSvc.GetByExternalID(r.Context(), externalID)
		if err == nil {
			calendar, err = svc.Calendar(r.Context(), patient.ID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to generate calendar")
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"calendar": calendar,
		})
	}
}

type setTakenRequest struct {
	Taken *bool `json:"taken"`
}

// setEventTakenHandler godoc
// @Summary Marcar dosis tomada/pendiente
// @Description Actualiza el flag taken de una dosis del calendario. takenAt se fija al marcar y se limpia al desmarcar.
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param entryID path string true "ID del dose event"
// @Param payload body setTakenRequest true "Nuevo estado"
// @Success 200 {object} map[string]any
// @Failure 400 {string} string "invalid status"
// @Failure 404 {string} string "schedule entry not found"
// @Router /prescriptions/schedule/{entryID} [put]
func setEventTakenHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID := chi.URLParam(r, "entryID")

		var req setTakenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Taken == nil {
			writeError(w, http.StatusBadRequest, "Invalid status")
			return
		}

		ev, err := svc.SetEventTaken(r.Context(), entryID, *req.Taken)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "not found") {
				writeError(w, http.StatusNotFound, "Schedule entry not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to update schedule")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":       true,
			"scheduleEntry": toDoseEventResponse(ev),
		})
	}
}

func parseStartDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func toDoseEventResponse(ev DoseEvent) doseEventResponse {
	return doseEventResponse{
		ID:             ev.ID,
		PrescriptionID: ev.PrescriptionID,
		ScheduledAt:    ev.ScheduledAt,
		Taken:          ev.Taken,
		TakenAt:        ev.TakenAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError responde el envelope {success:false, message} que esperan los
// clientes web y móvil.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}
