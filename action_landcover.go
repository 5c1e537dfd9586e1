package hydrobricks

// LandCoverChange sets a named land cover's physical area within one
// HRU on its trigger date, renormalising every sibling land cover so
// the fraction sum stays 1 (§8 invariant 5). Re-applying the same
// change twice is a no-op, since RenormalizeLandCoverFractions is
// idempotent in the target fraction (E8).
type LandCoverChange struct {
	HRUID     int
	LandCover string
	NewArea   float64 // m^2
}

// NewLandCoverChange builds a land-cover-change action for one HRU.
func NewLandCoverChange(hruID int, landCover string, newArea float64) *LandCoverChange {
	return &LandCoverChange{HRUID: hruID, LandCover: landCover, NewArea: newArea}
}

func (a *LandCoverChange) Apply(g *Graph, date MJD) error {
	hru, ok := g.SubBasin.HRU(a.HRUID)
	if !ok {
		return newErr(KindNotFound, "action:land_cover_change", "HRU not found: unknown id")
	}
	lc := findLandCover(hru, a.LandCover)
	if lc == nil {
		return newErr(KindNotFound, "action:land_cover_change", "land cover not found: "+a.LandCover)
	}
	if hru.Area <= 0 {
		return newErr(KindInvalidArgument, "action:land_cover_change", "HRU has zero area")
	}
	return hru.RenormalizeLandCoverFractions(lc, a.NewArea/hru.Area)
}
