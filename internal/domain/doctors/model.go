package doctors

import "time"

// Doctor representa a un médico del staff. Las filas se materializan de dos
// formas: desde la consola admin, o automáticamente la primera vez que un
// staff ID autenticado crea pacientes o recetas.
type Doctor struct {
	ID      string
	StaffID string // siempre en mayúsculas, único
	Name    string
	Email   string

	CreatedAt time.Time
	UpdatedAt time.Time
}
