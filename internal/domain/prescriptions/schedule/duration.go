package schedule

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit es la unidad de duración de un tratamiento.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
)

// Duration es el resultado de parsear el texto libre de duración
// de una receta ("30 days", "2 weeks", "1 month").
type Duration struct {
	Value int
	Unit  Unit
}

// Acepta plural opcional y texto extra alrededor; solo importa el primer match.
var durationRe = regexp.MustCompile(`(?i)(\d+)\s*(day|week|month)s?`)

// ParseDuration extrae la primera pareja número+unidad del texto.
// Si no hay match (o el número no entra en un int), devuelve ok=false:
// el caller lo trata como "no se genera calendario", nunca como error fatal.
func ParseDuration(text string) (Duration, bool) {
	m := durationRe.FindStringSubmatch(text)
	if m == nil {
		return Duration{}, false
	}

	value, err := strconv.Atoi(m[1])
	if err != nil {
		return Duration{}, false
	}

	return Duration{
		Value: value,
		Unit:  Unit(strings.ToLower(m[2])),
	}, true
}
