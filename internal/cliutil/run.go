package cliutil

import (
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hydrobricks/hydrobricks"
	hio "github.com/hydrobricks/hydrobricks/io"
)

// logger is the package-wide structured logger, configured the same
// way the teacher's cmd/inmapweb/main.go configures logrus.
var logger = logrus.StandardLogger()

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// RunValidate parses the model specification, hydro-units source, and
// forcings source named in cfg and reports the first error found,
// without running the model.
func RunValidate(cfg *Cfg, args []string) error {
	specPath := cfg.GetString("spec")
	if len(args) > 0 {
		specPath = args[0]
	}
	logger.WithField("spec", specPath).Info("validating model specification")

	spec, basin, _, _, err := load(cfg, specPath)
	if err != nil {
		return err
	}
	if err := basin.Validate(); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"land_covers": len(spec.LandCovers),
		"bricks":      len(spec.Bricks),
		"hrus":        len(basin.Units),
	}).Info("model specification is valid")
	return nil
}

// RunModel parses the model specification named by args[0] plus the
// hydro-units/forcings/output sources named in cfg, builds the graph,
// and runs it to completion.
func RunModel(cfg *Cfg, args []string) error {
	specPath := args[0]
	logger.WithField("spec", specPath).Info("starting run")

	spec, basin, source, timer, err := load(cfg, specPath)
	if err != nil {
		return err
	}

	solverKind, err := hydrobricks.ParseSolverKind(spec.Solver)
	if err != nil {
		return err
	}
	solver := hydrobricks.NewSolver(solverKind)

	params := hydrobricks.NewParameterSet()
	g, err := hydrobricks.BuildGraph(spec, basin, source, params, timer)
	if err != nil {
		return err
	}

	sink, err := buildSink(cfg, spec)
	if err != nil {
		return err
	}

	model := hydrobricks.NewModelHydro(g, timer, solver, hydrobricks.NewActionsManager(), sink)
	if err := model.Run(); err != nil {
		logger.WithError(err).Error("run failed")
		return err
	}
	if err := sink.Close(); err != nil {
		return err
	}
	logger.Info("run complete")
	return nil
}

func load(cfg *Cfg, specPath string) (*hydrobricks.ModelSpec, *hydrobricks.HydroUnits, hydrobricks.ForcingsSource, *hydrobricks.Timer, error) {
	spec, err := hio.ParseModelSpecFile(specPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	landCovers := make([]hydrobricks.LandCoverType, 0, len(spec.LandCovers))
	for _, lc := range spec.LandCovers {
		kind, err := parseBrickKind(lc.Kind)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		landCovers = append(landCovers, hydrobricks.LandCoverType{Name: lc.Name, Kind: kind})
	}

	basin, err := hio.ReadHydroUnitsCSV(cfg.GetString("hydro-units"), landCovers)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	forcingsPath := cfg.GetString("forcings")
	var source hydrobricks.ForcingsSource
	if isNetCDF(forcingsPath) {
		source, err = hio.OpenNetCDFForcingsSource(forcingsPath)
	} else {
		source, err = hio.NewCSVForcingsSource(forcingsPath)
	}
	if err != nil {
		return nil, nil, nil, nil, err
	}

	timer, err := hio.BuildTimer(spec.Timer)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return spec, basin, source, timer, nil
}

func buildSink(cfg *Cfg, spec *hydrobricks.ModelSpec) (hydrobricks.ResultsSink, error) {
	outPath := cfg.GetString("output")
	distributed := cfg.GetBool("distributed") || spec.Logging.IncludeDistributed

	if outPath == "" {
		return hydrobricks.NewMemorySink(distributed, nil), nil
	}
	if isNetCDF(outPath) {
		return hio.NewNetCDFResultsSink(outPath, nil)
	}
	return hio.NewCSVResultsSink(outPath, nil)
}

func isNetCDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".nc")
}

func parseBrickKind(s string) (hydrobricks.BrickKind, error) {
	switch strings.ToLower(s) {
	case "ground", "generic_surface":
		return hydrobricks.BrickGenericSurface, nil
	case "glacier":
		return hydrobricks.BrickGlacier, nil
	case "vegetation":
		return hydrobricks.BrickVegetation, nil
	case "urban":
		return hydrobricks.BrickUrban, nil
	default:
		return 0, &hydrobricks.EngineError{
			Kind: hydrobricks.KindInvalidArgument, Op: "cliutil:parse_brick_kind",
			Message: "unknown land cover kind " + s,
		}
	}
}
