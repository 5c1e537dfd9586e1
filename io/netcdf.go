package io

import (
	"os"

	"github.com/ctessum/cdf"

	"github.com/hydrobricks/hydrobricks"
)

// NetCDFForcingsSource reads a forcings file with a "time" dimension
// and one variable per forcing series, each shaped [time, hru],
// grounded on sr/srreader.go's get (typed Reader.Zero/Read by name).
type NetCDFForcingsSource struct {
	f        *cdf.File
	ff       *os.File
	timeAxis []hydrobricks.MJD
	hruIndex map[int]int
	varNames map[hydrobricks.Variable]string
}

var netcdfVariableNames = map[hydrobricks.Variable]string{
	hydrobricks.VarPrecipitation: "precipitation",
	hydrobricks.VarTemperature:   "temperature",
	hydrobricks.VarPET:           "pet",
	hydrobricks.VarCustom1:       "custom1",
	hydrobricks.VarCustom2:       "custom2",
	hydrobricks.VarCustom3:       "custom3",
}

// OpenNetCDFForcingsSource opens path and reads the "time" and "hru_id"
// coordinate variables, mirroring srreader.go's createOrOpenOutputFile
// open-for-read branch (cdf.Open then Reader-by-name).
func OpenNetCDFForcingsSource(path string) (*NetCDFForcingsSource, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	f, err := cdf.Open(ff)
	if err != nil {
		ff.Close()
		return nil, err
	}

	h := f.Header
	nTime := h.Lengths("time")[0]
	raw := make([]float64, nTime)
	r := f.Reader("time", []int{0}, []int{nTime})
	buf := r.Zero(nTime)
	if _, err := r.Read(buf); err != nil {
		ff.Close()
		return nil, err
	}
	copy(raw, buf.([]float64))

	timeAxis := make([]hydrobricks.MJD, nTime)
	for i, v := range raw {
		timeAxis[i] = hydrobricks.MJD(v)
	}

	nHRU := h.Lengths("hru_id")[0]
	hr := f.Reader("hru_id", []int{0}, []int{nHRU})
	hbuf := hr.Zero(nHRU)
	if _, err := hr.Read(hbuf); err != nil {
		ff.Close()
		return nil, err
	}
	ids := hbuf.([]int32)
	hruIndex := make(map[int]int, nHRU)
	for i, id := range ids {
		hruIndex[int(id)] = i
	}

	return &NetCDFForcingsSource{
		f: f, ff: ff, timeAxis: timeAxis, hruIndex: hruIndex,
		varNames: netcdfVariableNames,
	}, nil
}

func (s *NetCDFForcingsSource) TimeAxis() []hydrobricks.MJD { return s.timeAxis }

// Series reads the full [time] column for hruID out of variable's
// [time, hru] matrix.
func (s *NetCDFForcingsSource) Series(variable hydrobricks.Variable, hruID int) ([]float64, bool) {
	name, ok := s.varNames[variable]
	if !ok {
		return nil, false
	}
	col, ok := s.hruIndex[hruID]
	if !ok {
		return nil, false
	}
	nTime := len(s.timeAxis)
	out := make([]float64, nTime)
	for t := 0; t < nTime; t++ {
		r := s.f.Reader(name, []int{t, col}, []int{t + 1, col + 1})
		buf := r.Zero(1)
		if _, err := r.Read(buf); err != nil {
			return nil, false
		}
		out[t] = buf.([]float64)[0]
	}
	return out, true
}

func (s *NetCDFForcingsSource) Close() error { return s.ff.Close() }

// NetCDFResultsSink writes one [time] variable per basin channel plus
// an "outlet" [time] variable per run, attaching "units"/"description" attributes per channel
// (supplement #4), grounded on sr/sr.go's createOrOpenOutputFile.
type NetCDFResultsSink struct {
	ff      *os.File
	f       *cdf.File
	labels  []string
	step    int
	closed  bool
	outlet  []float64
	records []map[string]float64
	units   map[string]string
	descs   map[string]string
}

// NetCDFChannelMeta names the units/description attributes attached to
// a basin log channel, looked up by label.
type NetCDFChannelMeta struct {
	Units       string
	Description string
}

// NewNetCDFResultsSink defers header definition until Close, once the
// full channel set and step count are known — the teacher's sr.go
// defines its header only after every emitted variable name is known.
func NewNetCDFResultsSink(path string, meta map[string]NetCDFChannelMeta) (*NetCDFResultsSink, error) {
	ff, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	units := make(map[string]string, len(meta))
	descs := make(map[string]string, len(meta))
	for l, m := range meta {
		units[l] = m.Units
		descs[l] = m.Description
	}
	return &NetCDFResultsSink{ff: ff, units: units, descs: descs}, nil
}

func (s *NetCDFResultsSink) Record(rec hydrobricks.StepRecord) error {
	if s.labels == nil {
		s.labels = sortedKeys(rec.Basin)
	}
	s.outlet = append(s.outlet, rec.OutletTotal)
	s.records = append(s.records, rec.Basin)
	return nil
}

// Close defines the header from the accumulated channel set and writes
// every sample, following sr.go's define-then-write-in-one-pass shape
// since cdf.Header must be fully declared before the file is created.
func (s *NetCDFResultsSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.ff.Close()

	nTime := len(s.records)
	h := cdf.NewHeader([]string{"time", "channel"}, []int{nTime, 1})
	h.AddVariable("outlet", []string{"time"}, []float64{0})
	h.AddAttribute("outlet", "description", "total outflow at the basin outlet")
	for _, l := range s.labels {
		h.AddVariable(l, []string{"time"}, []float64{0})
		if u, ok := s.units[l]; ok {
			h.AddAttribute(l, "units", u)
		}
		if d, ok := s.descs[l]; ok {
			h.AddAttribute(l, "description", d)
		}
	}
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return errs[0]
	}

	f, err := cdf.Create(s.ff, h)
	if err != nil {
		return err
	}

	w := f.Writer("outlet", []int{0}, []int{nTime})
	if _, err := w.Write(s.outlet); err != nil {
		return err
	}
	for _, l := range s.labels {
		col := make([]float64, nTime)
		for i, rec := range s.records {
			col[i] = rec[l]
		}
		w := f.Writer(l, []int{0}, []int{nTime})
		if _, err := w.Write(col); err != nil {
			return err
		}
	}
	return cdf.UpdateNumRecs(s.ff)
}
