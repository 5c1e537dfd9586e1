package hydrobricks

// LandCoverType names one of the basin's declared land-cover types
// (e.g. "ground", "glacier") independent of any particular HRU's
// brick instance.
type LandCoverType struct {
	Name string
	Kind BrickKind
}

// HRUUnit is one row of the hydro-units source (§6): an HRU's id,
// area, elevation, and the fractional area it assigns to each of the
// basin's declared land covers (must sum to 1, checked by the builder).
type HRUUnit struct {
	ID        int
	Area      float64 // m^2
	Elevation float64
	Fractions map[string]float64 // land-cover name -> fraction
	Aspect    float64
	Slope     float64
}

// HydroUnits is the parsed hydro-units source: the basin's declared
// land-cover types plus one HRUUnit row per HRU.
type HydroUnits struct {
	LandCovers []LandCoverType
	Units      []HRUUnit
}

// Validate checks every HRU row's fractions sum to 1 within the
// land-cover fraction closure tolerance (§8.5, §9).
func (h *HydroUnits) Validate() error {
	for _, u := range h.Units {
		sum := 0.0
		for _, f := range u.Fractions {
			sum += f
		}
		if sum-1 > landCoverFractionTolerance || 1-sum > landCoverFractionTolerance {
			return newErr(KindInvalidArgument, "hydro_units:validate",
				"HRU fractions do not sum to 1")
		}
	}
	return nil
}
