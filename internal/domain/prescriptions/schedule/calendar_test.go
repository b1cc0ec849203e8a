package schedule

import (
	"reflect"
	"testing"
	"time"
)

func TestBuildCalendar_GroupsByUTCDate(t *testing.T) {
	items := []PrescriptionSchedule{
		{
			PrescriptionID: "rx-1",
			Name:           "Amoxicilina",
			Dosage:         "500mg",
			Type:           "capsule",
			Instructions:   "con comida",
			Events: []DoseEvent{
				{ID: "e1", ScheduledAt: utc(2024, time.January, 1, 8, 0)},
				{ID: "e2", ScheduledAt: utc(2024, time.January, 1, 20, 0), Taken: true},
				{ID: "e3", ScheduledAt: utc(2024, time.January, 2, 8, 0)},
			},
		},
	}

	cal := BuildCalendar(items)

	if len(cal) != 2 {
		t.Fatalf("expected 2 dates, got %d", len(cal))
	}

	day1 := cal["2024-01-01"]
	if len(day1) != 2 {
		t.Fatalf("expected 2 entries on 2024-01-01, got %d", len(day1))
	}
	if day1[0].ID != "e1" || day1[0].Time != "08:00" || day1[0].Taken {
		t.Fatalf("unexpected first entry: %+v", day1[0])
	}
	if day1[1].ID != "e2" || day1[1].Time != "20:00" || !day1[1].Taken {
		t.Fatalf("unexpected second entry: %+v", day1[1])
	}
	if day1[0].Name != "Amoxicilina" || day1[0].Dosage != "500mg" || day1[0].Type != "capsule" ||
		day1[0].Instructions != "con comida" || day1[0].PrescriptionID != "rx-1" {
		t.Fatalf("entry missing prescription metadata: %+v", day1[0])
	}
	if day1[0].Date != "2024-01-01" {
		t.Fatalf("expected date key copied into entry, got %q", day1[0].Date)
	}
}

func TestBuildCalendar_SameDate_NoDeduplication_InputOrder(t *testing.T) {
	items := []PrescriptionSchedule{
		{
			PrescriptionID: "rx-1",
			Name:           "Ibuprofeno",
			Dosage:         "200mg",
			Events: []DoseEvent{
				{ID: "a1", ScheduledAt: utc(2024, time.January, 2, 8, 0)},
			},
		},
		{
			PrescriptionID: "rx-2",
			Name:           "Paracetamol",
			Dosage:         "500mg",
			Events: []DoseEvent{
				{ID: "b1", ScheduledAt: utc(2024, time.January, 2, 8, 0)},
				{ID: "b2", ScheduledAt: utc(2024, time.January, 2, 20, 0)},
			},
		},
	}

	cal := BuildCalendar(items)

	day := cal["2024-01-02"]
	if len(day) != 3 {
		t.Fatalf("expected 3 entries (no dedup), got %d", len(day))
	}
	// Orden: receta 1 primero, luego los events de la receta 2 en su orden.
	if day[0].ID != "a1" || day[1].ID != "b1" || day[2].ID != "b2" {
		t.Fatalf("unexpected order: %s, %s, %s", day[0].ID, day[1].ID, day[2].ID)
	}
}

func TestBuildCalendar_DefaultsTypeToPill(t *testing.T) {
	cal := BuildCalendar([]PrescriptionSchedule{
		{
			PrescriptionID: "rx-1",
			Name:           "Jarabe",
			Events: []DoseEvent{
				{ID: "e1", ScheduledAt: utc(2024, time.May, 5, 8, 0)},
			},
		},
	})

	if got := cal["2024-05-05"][0].Type; got != "pill" {
		t.Fatalf("expected type fallback \"pill\", got %q", got)
	}
}

func TestBuildCalendar_UsesUTCForDateAndTimeKeys(t *testing.T) {
	lima := time.FixedZone("America/Lima", -5*3600)

	cal := BuildCalendar([]PrescriptionSchedule{
		{
			PrescriptionID: "rx-1",
			Name:           "Losartán",
			Events: []DoseEvent{
				// 2024-03-09 21:00 en Lima = 2024-03-10 02:00 UTC
				{ID: "e1", ScheduledAt: time.Date(2024, time.March, 9, 21, 0, 0, 0, lima)},
			},
		},
	})

	day, ok := cal["2024-03-10"]
	if !ok || len(day) != 1 {
		t.Fatalf("expected entry keyed by UTC date 2024-03-10, got %v", cal)
	}
	if day[0].Time != "02:00" {
		t.Fatalf("expected UTC time 02:00, got %q", day[0].Time)
	}
}

func TestBuildCalendar_Idempotent(t *testing.T) {
	items := []PrescriptionSchedule{
		{
			PrescriptionID: "rx-1",
			Name:           "Metformina",
			Dosage:         "850mg",
			Events: []DoseEvent{
				{ID: "e1", ScheduledAt: utc(2024, time.February, 1, 8, 0)},
				{ID: "e2", ScheduledAt: utc(2024, time.February, 1, 20, 0)},
			},
		},
	}

	first := BuildCalendar(items)
	second := BuildCalendar(items)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical output on repeated calls:\n%v\n%v", first, second)
	}
}

func TestBuildCalendar_EmptyInput(t *testing.T) {
	if cal := BuildCalendar(nil); len(cal) != 0 {
		t.Fatalf("expected empty calendar, got %v", cal)
	}
}
