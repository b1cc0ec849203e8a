package schedule

import "strings"

// defaultSlots es el horario que se usa cuando la frecuencia no se reconoce:
// preferimos un recordatorio diario a ninguno.
func defaultSlots() []string {
	return []string{"08:00"}
}

// TimeSlots mapea una etiqueta de frecuencia (texto libre, case-insensitive)
// a la lista ordenada de horarios "HH:MM" en que toca cada dosis.
//
// El orden de cada lista es el orden de emisión del generador, incluso cuando
// no es cronológico: en "every 8 hours" el slot 00:00 va al final porque
// representa la dosis de madrugada del día siguiente, atribuida al lote del
// día en curso. Ver nota en DESIGN.md antes de "corregir" ese orden.
func TimeSlots(label string) []string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "once daily":
		return []string{"08:00"}
	case "twice daily":
		return []string{"08:00", "20:00"}
	case "three times daily":
		return []string{"08:00", "14:00", "20:00"}
	case "four times daily":
		return []string{"08:00", "12:00", "16:00", "20:00"}
	case "every 8 hours":
		return []string{"08:00", "16:00", "00:00"}
	case "every 12 hours":
		return []string{"08:00", "20:00"}
	case "as needed":
		return []string{"08:00"}
	default:
		return defaultSlots()
	}
}
