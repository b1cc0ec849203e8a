package schedule

import (
	"strconv"
	"strings"
	"time"
)

// Generate expande una receta en la lista de timestamps (UTC) de cada dosis.
//
// Reglas:
//   - la fecha de inicio se trunca a medianoche UTC;
//   - la fecha final es inclusiva: day => start+(v-1)d, week => start+(v*7-1)d,
//     month => start corrido v meses calendario (con la normalización estándar
//     de AddDate, ej. 31 de enero + 1 mes desborda a marzo) menos 1 día;
//   - por cada día entre start y end se emite un timestamp por slot, en el
//     orden de la tabla de frecuencias, con segundos en cero.
//
// Entrada inválida (duración no parseable o start zero) devuelve lista vacía,
// nunca error: cero dosis es un resultado legítimo, el caller decide.
func Generate(start time.Time, durationText, frequencyLabel string) []time.Time {
	d, ok := ParseDuration(durationText)
	if !ok {
		return nil
	}
	if start.IsZero() {
		return nil
	}

	slots := TimeSlots(frequencyLabel)
	if len(slots) == 0 {
		return nil
	}

	start = start.UTC()
	cursor := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	var end time.Time
	switch d.Unit {
	case UnitDay:
		end = cursor.AddDate(0, 0, d.Value-1)
	case UnitWeek:
		end = cursor.AddDate(0, 0, d.Value*7-1)
	case UnitMonth:
		end = cursor.AddDate(0, d.Value, 0).AddDate(0, 0, -1)
	default:
		return nil
	}

	out := make([]time.Time, 0)
	for ; !cursor.After(end); cursor = cursor.AddDate(0, 0, 1) {
		for _, slot := range slots {
			hh, mm := parseSlot(slot)
			out = append(out, time.Date(cursor.Year(), cursor.Month(), cursor.Day(), hh, mm, 0, 0, time.UTC))
		}
	}

	return out
}

// parseSlot lee "HH:MM"; un slot malformado cae al default 08:00.
func parseSlot(slot string) (hh, mm int) {
	hh, mm = 8, 0

	parts := strings.SplitN(slot, ":", 2)
	if len(parts) != 2 {
		return hh, mm
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return hh, mm
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return h, 0
	}
	return h, m
}
