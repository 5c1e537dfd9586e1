package io

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ctessum/unit"

	"github.com/hydrobricks/hydrobricks"
)

var csvVariableColumns = map[string]hydrobricks.Variable{
	"precipitation": hydrobricks.VarPrecipitation,
	"temperature":   hydrobricks.VarTemperature,
	"pet":           hydrobricks.VarPET,
	"custom1":       hydrobricks.VarCustom1,
	"custom2":       hydrobricks.VarCustom2,
	"custom3":       hydrobricks.VarCustom3,
}

// CSVForcingsSource is a ForcingsSource backed by a single CSV with
// "date,hru_id,<variable columns...>" rows, grounded on the teacher's
// legacy getEmissionsCSV header-then-rows reading (inmap.go).
type CSVForcingsSource struct {
	timeAxis []hydrobricks.MJD
	series   map[hydrobricks.Variable]map[int][]float64
}

// NewCSVForcingsSource reads a forcings CSV file in full.
func NewCSVForcingsSource(path string) (*CSVForcingsSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	dateCol, ok := col["date"]
	if !ok {
		return nil, csvErr("csv:forcings", "missing date column")
	}
	hruCol, ok := col["hru_id"]
	if !ok {
		return nil, csvErr("csv:forcings", "missing hru_id column")
	}
	varCols := make(map[hydrobricks.Variable]int)
	for name, v := range csvVariableColumns {
		if i, ok := col[name]; ok {
			varCols[v] = i
		}
	}

	type row struct {
		date hydrobricks.MJD
		hru  int
		vals map[hydrobricks.Variable]float64
	}
	var rows []row
	dateSeen := make(map[hydrobricks.MJD]bool)

	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		date, err := hydrobricks.ParseISODate(strings.TrimSpace(rec[dateCol]))
		if err != nil {
			return nil, err
		}
		hruID, err := strconv.Atoi(strings.TrimSpace(rec[hruCol]))
		if err != nil {
			return nil, err
		}
		vals := make(map[hydrobricks.Variable]float64, len(varCols))
		for v, i := range varCols {
			f, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				return nil, err
			}
			vals[v] = f
		}
		dateSeen[date] = true
		rows = append(rows, row{date: date, hru: hruID, vals: vals})
	}

	dates := make([]hydrobricks.MJD, 0, len(dateSeen))
	for d := range dateSeen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	dateIdx := make(map[hydrobricks.MJD]int, len(dates))
	for i, d := range dates {
		dateIdx[d] = i
	}

	series := make(map[hydrobricks.Variable]map[int][]float64)
	for v := range varCols {
		series[v] = make(map[int][]float64)
	}
	for _, rw := range rows {
		for v, val := range rw.vals {
			s, ok := series[v][rw.hru]
			if !ok {
				s = make([]float64, len(dates))
			}
			s[dateIdx[rw.date]] = val
			series[v][rw.hru] = s
		}
	}

	return &CSVForcingsSource{timeAxis: dates, series: series}, nil
}

func (s *CSVForcingsSource) TimeAxis() []hydrobricks.MJD { return s.timeAxis }

func (s *CSVForcingsSource) Series(variable hydrobricks.Variable, hruID int) ([]float64, bool) {
	byHRU, ok := s.series[variable]
	if !ok {
		return nil, false
	}
	v, ok := byHRU[hruID]
	return v, ok
}

// ReadHydroUnitsCSV parses a hydro-units table: fixed columns
// id,area,elevation,aspect,slope plus one fractional column per
// declared land cover name. Area and elevation are dimension-checked
// against meters/square-meters, mirroring the teacher's unit.Dimensions
// checks in io.go's FromAEP.
func ReadHydroUnitsCSV(path string, landCovers []hydrobricks.LandCoverType) (*hydrobricks.HydroUnits, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}

	hu := &hydrobricks.HydroUnits{LandCovers: landCovers}
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		id, err := strconv.Atoi(rec[col["id"]])
		if err != nil {
			return nil, err
		}
		area, err := strconv.ParseFloat(rec[col["area"]], 64)
		if err != nil {
			return nil, err
		}
		if err := unit.New(area, unit.Meter2).Check(unit.Meter2); err != nil {
			return nil, csvErr("csv:hydro_units", "HRU area is not in square meters: "+err.Error())
		}
		elevation, err := strconv.ParseFloat(rec[col["elevation"]], 64)
		if err != nil {
			return nil, err
		}
		if err := unit.New(elevation, unit.Meter).Check(unit.Meter); err != nil {
			return nil, csvErr("csv:hydro_units", "HRU elevation is not in meters: "+err.Error())
		}
		aspect, slope := 0.0, 0.0
		if i, ok := col["aspect"]; ok {
			aspect, _ = strconv.ParseFloat(rec[i], 64)
		}
		if i, ok := col["slope"]; ok {
			slope, _ = strconv.ParseFloat(rec[i], 64)
		}
		fractions := make(map[string]float64, len(landCovers))
		for _, lc := range landCovers {
			i, ok := col[strings.ToLower(lc.Name)]
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				return nil, err
			}
			fractions[lc.Name] = v
		}
		hu.Units = append(hu.Units, hydrobricks.HRUUnit{
			ID: id, Area: area, Elevation: elevation,
			Fractions: fractions, Aspect: aspect, Slope: slope,
		})
	}
	return hu, nil
}

// CSVResultsSink writes one row per step to a CSV file: date, every
// basin channel, the outlet total, and one column per derived channel
// name. The sink does not evaluate derived channels; their cells are
// written empty.
type CSVResultsSink struct {
	w       *csv.Writer
	f       *os.File
	labels  []string
	derived []string
	wrote   bool
}

// NewCSVResultsSink opens path for writing; the header row is written
// lazily on the first Record call once the channel set is known.
func NewCSVResultsSink(path string, derivedLabels []string) (*CSVResultsSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &CSVResultsSink{w: csv.NewWriter(f), f: f, derived: derivedLabels}, nil
}

func (s *CSVResultsSink) Record(rec hydrobricks.StepRecord) error {
	if !s.wrote {
		s.labels = sortedKeys(rec.Basin)
		header := append([]string{"date"}, s.labels...)
		header = append(header, "outlet")
		header = append(header, s.derived...)
		if err := s.w.Write(header); err != nil {
			return err
		}
		s.wrote = true
	}

	row := make([]string, 0, len(s.labels)+2+len(s.derived))
	y, m, d := rec.Date.Date()
	row = append(row, formatISODate(y, int(m), d))
	for _, l := range s.labels {
		row = append(row, strconv.FormatFloat(rec.Basin[l], 'g', -1, 64))
	}
	row = append(row, strconv.FormatFloat(rec.OutletTotal, 'g', -1, 64))
	for range s.derived {
		row = append(row, "") // derived channels are not evaluated by this sink
	}
	return s.w.Write(row)
}

func (s *CSVResultsSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return err
	}
	return s.f.Close()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatISODate(y, m, d int) string {
	return strconv.Itoa(y) + "-" + pad2(m) + "-" + pad2(d)
}

func pad2(v int) string {
	s := strconv.Itoa(v)
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

// csvErr wraps a parse/validation failure as an EngineError so callers
// can branch on hydrobricks.KindInvalidArgument the same way they do
// for every other outer-surface parse failure.
func csvErr(op, msg string) error {
	return &hydrobricks.EngineError{Kind: hydrobricks.KindInvalidArgument, Op: op, Message: msg}
}
