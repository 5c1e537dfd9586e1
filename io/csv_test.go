package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hydrobricks/hydrobricks"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestCSVForcingsSourceSeries(t *testing.T) {
	path := writeTempFile(t, "forcings.csv", `date,hru_id,precipitation,temperature
2020-01-01,1,0.0,1.0
2020-01-01,2,0.0,2.0
2020-01-02,1,5.0,1.5
2020-01-02,2,4.0,2.5
`)

	source, err := NewCSVForcingsSource(path)
	if err != nil {
		t.Fatalf("NewCSVForcingsSource: %v", err)
	}
	if len(source.TimeAxis()) != 2 {
		t.Fatalf("expected 2 dates on the time axis, got %d", len(source.TimeAxis()))
	}

	precip, ok := source.Series(hydrobricks.VarPrecipitation, 1)
	if !ok {
		t.Fatal("expected a precipitation series for HRU 1")
	}
	if precip[0] != 0.0 || precip[1] != 5.0 {
		t.Fatalf("unexpected precipitation series for HRU 1: %v", precip)
	}

	if _, ok := source.Series(hydrobricks.VarPET, 1); ok {
		t.Fatal("expected no PET series when the column is absent")
	}
}

func TestReadHydroUnitsCSV(t *testing.T) {
	path := writeTempFile(t, "hydro_units.csv", `id,area,elevation,aspect,slope,ground,glacier
1,1000000,1500,180,10,0.7,0.3
2,2000000,2200,90,25,1.0,0.0
`)
	landCovers := []hydrobricks.LandCoverType{
		{Name: "ground", Kind: hydrobricks.BrickGenericSurface},
		{Name: "glacier", Kind: hydrobricks.BrickGlacier},
	}

	hu, err := ReadHydroUnitsCSV(path, landCovers)
	if err != nil {
		t.Fatalf("ReadHydroUnitsCSV: %v", err)
	}
	if len(hu.Units) != 2 {
		t.Fatalf("expected 2 HRU rows, got %d", len(hu.Units))
	}
	if hu.Units[0].Fractions["glacier"] != 0.3 {
		t.Fatalf("expected HRU 1 glacier fraction 0.3, got %v", hu.Units[0].Fractions["glacier"])
	}
	if err := hu.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestReadHydroUnitsCSVRejectsBadArea(t *testing.T) {
	path := writeTempFile(t, "hydro_units.csv", `id,area,elevation,ground
1,not-a-number,1500,1.0
`)
	_, err := ReadHydroUnitsCSV(path, []hydrobricks.LandCoverType{{Name: "ground"}})
	if err == nil {
		t.Fatal("expected an error for a non-numeric area column")
	}
}

func TestCSVResultsSinkWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	sink, err := NewCSVResultsSink(path, nil)
	if err != nil {
		t.Fatalf("NewCSVResultsSink: %v", err)
	}

	rec := hydrobricks.StepRecord{
		Date:        hydrobricks.MJD(58849),
		Basin:       map[string]float64{"storage:content": 12.5},
		OutletTotal: 3.25,
	}
	if err := sink.Record(rec); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	content := string(data)
	if content == "" {
		t.Fatal("expected a non-empty results file")
	}
}
