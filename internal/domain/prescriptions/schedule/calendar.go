package schedule

import "time"

// PrescriptionSchedule es la entrada del agregador: una receta ya persistida
// junto con sus dose events materializados. El agregador no vuelve a llamar
// al generador; solo reordena lo que ya existe.
type PrescriptionSchedule struct {
	PrescriptionID string
	Name           string
	Dosage         string
	Type           string
	Instructions   string
	Events         []DoseEvent
}

// DoseEvent es una dosis concreta (timestamp + estado tomado/pendiente).
type DoseEvent struct {
	ID          string
	ScheduledAt time.Time
	Taken       bool
}

// CalendarEntry es el resumen de una dosis tal como lo consume el cliente
// (web y móvil). Los nombres JSON son parte del contrato con esos clientes.
type CalendarEntry struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Taken          bool   `json:"taken"`
	Type           string `json:"type"`
	Name           string `json:"name"`
	Dosage         string `json:"dosage"`
	Instructions   string `json:"instructions"`
	PrescriptionID string `json:"prescriptionId"`
}

// BuildCalendar agrupa los dose events de todas las recetas por fecha UTC
// ("YYYY-MM-DD"). Dentro de cada fecha el orden es: recetas en el orden de
// entrada, y dentro de cada receta sus events en el orden de entrada. No hay
// deduplicación: dos recetas con dosis a la misma hora aparecen ambas.
//
// Es una función pura: sin reloj, sin estado, misma entrada => misma salida.
func BuildCalendar(items []PrescriptionSchedule) map[string][]CalendarEntry {
	out := make(map[string][]CalendarEntry)

	for _, p := range items {
		typ := p.Type
		if typ == "" {
			typ = "pill"
		}

		for _, ev := range p.Events {
			at := ev.ScheduledAt.UTC()
			dateKey := at.Format("2006-01-02")

			out[dateKey] = append(out[dateKey], CalendarEntry{
				ID:             ev.ID,
				Date:           dateKey,
				Time:           at.Format("15:04"),
				Taken:          ev.Taken,
				Type:           typ,
				Name:           p.Name,
				Dosage:         p.Dosage,
				Instructions:   p.Instructions,
				PrescriptionID: p.PrescriptionID,
			})
		}
	}

	return out
}
