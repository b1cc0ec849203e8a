package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	mem "medical-calendar/internal/adapters/storage/memory"
	pg "medical-calendar/internal/adapters/storage/postgres"
	"medical-calendar/internal/domain/admin"
	"medical-calendar/internal/domain/assistant"
	"medical-calendar/internal/domain/doctors"
	"medical-calendar/internal/domain/patients"
	"medical-calendar/internal/domain/prescriptions"
	"medical-calendar/internal/middleware"
	assistantport "medical-calendar/internal/ports/assistant"
	"medical-calendar/internal/ports/auth"

	_ "medical-calendar/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: gateway del asistente. Nil = /chat responde 503.
	Assistant assistantport.Assistant

	Logger zerolog.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	var (
		doctorRepo  doctors.Repository
		patientRepo patients.Repository
		rxRepo      prescriptions.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		doctorRepo = pg.NewDoctorsRepo(db)
		patientRepo = pg.NewPatientsRepo(db)
		rxRepo = pg.NewPrescriptionsRepo(db)
	} else {
		doctorRepo = mem.NewDoctorRepo()
		patientRepo = mem.NewPatientRepo()
		rxRepo = mem.NewPrescriptionRepo()
	}

	// Services por módulo
	doctorsSvc := doctors.NewService(doctorRepo)
	patientsSvc := patients.NewService(patientRepo)
	rxSvc := prescriptions.NewService(rxRepo)

	// Rutas por módulo
	patients.RegisterRoutes(r, patientsSvc, doctorsSvc, rxStats{svc: rxSvc})
	prescriptions.RegisterRoutes(r, rxSvc, patientsSvc, doctorsSvc)
	admin.RegisterRoutes(r, doctorsSvc, patientsSvc, rxSvc)
	assistant.RegisterRoutes(r, opts.Assistant)

	return r
}

// rxStats adapta el servicio de recetas al puerto de stats que consume el
// listado de pacientes, manteniendo la dependencia en un solo sentido.
type rxStats struct {
	svc *prescriptions.Service
}

func (a rxStats) PatientStats(ctx context.Context, patientID string) (patients.PrescriptionStats, error) {
	stats, err := a.svc.StatsByPatient(ctx, patientID)
	if err != nil {
		return patients.PrescriptionStats{}, err
	}
	return patients.PrescriptionStats{
		ActiveCount:      stats.ActiveCount,
		LastPrescribedAt: stats.LastPrescribedAt,
	}, nil
}
