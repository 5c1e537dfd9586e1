package hydrobricks

import (
	"reflect"
	"strings"
)

// logPointer is a resolved recordable sample: a zero-argument getter
// bound to the brick/process/splitter field the model spec asked to be
// logged, plus the units string carried on the container's struct tag
// where available.
type logPointer struct {
	Label string
	Units string
	Get   func() float64
}

// LogSet is the resolved set of recordable pointers built by the graph
// builder's step 5 (§4.8): every brick/process/splitter log
// declaration becomes one entry keyed by a "brick:item" or
// "brick:process:item" label.
type LogSet struct {
	pointers []logPointer
	byLabel  map[string]int
}

func newLogSet() *LogSet {
	return &LogSet{byLabel: make(map[string]int)}
}

// Register adds a recordable pointer under label, overwriting any
// prior registration with the same label.
func (l *LogSet) Register(label, units string, get func() float64) {
	if i, ok := l.byLabel[label]; ok {
		l.pointers[i] = logPointer{Label: label, Units: units, Get: get}
		return
	}
	l.byLabel[label] = len(l.pointers)
	l.pointers = append(l.pointers, logPointer{Label: label, Units: units, Get: get})
}

// Labels returns every registered label, in registration order.
func (l *LogSet) Labels() []string {
	out := make([]string, len(l.pointers))
	for i, p := range l.pointers {
		out[i] = p.Label
	}
	return out
}

// Sample reads every registered pointer's current value, in
// registration order. Called once per step after Finalize, per the
// "Logger pointers are read-only samples taken after finalize()"
// mutation-discipline rule (§5).
func (l *LogSet) Sample() []float64 {
	out := make([]float64, len(l.pointers))
	for i, p := range l.pointers {
		out[i] = p.Get()
	}
	return out
}

// Units returns the unit string registered for label, if any.
func (l *LogSet) Units(label string) (string, bool) {
	i, ok := l.byLabel[label]
	if !ok {
		return "", false
	}
	return l.pointers[i].Units, true
}

// brickWaterLabel builds the "brick:item" label for a brick's named
// container (e.g. "glacier_1:ice").
func brickWaterLabel(brickName, containerSuffix string) string {
	if containerSuffix == "" {
		return brickName + ":content"
	}
	return brickName + ":" + containerSuffix
}

// processFluxLabel builds the "brick:process:item" label for a
// process's named output flux.
func processFluxLabel(brickName, processName, fluxName string) string {
	return brickName + ":" + processName + ":" + fluxName
}

// fieldByTagName mirrors the teacher's reflection-based getValue/
// getUnits lookup (framework.go): it is the fallback used when the log
// declaration names a struct field directly rather than a known
// container/flux item, so model-spec authors can log arbitrary numeric
// brick fields without the builder needing a case for every one.
func fieldByTagName(v interface{}, name string) (float64, string, bool) {
	val := reflect.Indirect(reflect.ValueOf(v))
	if val.Kind() != reflect.Struct {
		return 0, "", false
	}
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !strings.EqualFold(f.Name, name) {
			continue
		}
		fv := val.Field(i)
		if fv.Kind() != reflect.Float64 {
			return 0, "", false
		}
		return fv.Float(), f.Tag.Get("units"), true
	}
	return 0, "", false
}
