// Command goa3c trains a recurrent A3C worker on Cartpole, saves the
// score of each episode, and plots the running average score.
package main

import (
	"flag"
	"fmt"

	"github.com/aunum/log"
	env "github.com/samuelfneumann/goa3c/environment"
	"github.com/samuelfneumann/goa3c/environment/cartpole"
	"github.com/samuelfneumann/goa3c/experiment"
	"github.com/samuelfneumann/goa3c/experiment/trackers"
	"github.com/samuelfneumann/goa3c/solver"
	"github.com/samuelfneumann/goa3c/utils/plotutils"
	"gonum.org/v1/gonum/spatial/r1"
)

func main() {
	configFile := flag.String("config", "", "configuration file (YAML, "+
		"JSON, or TOML); defaults are used if empty")
	writeConfig := flag.String("write-config", "", "write the "+
		"configuration in use to this YAML file and exit")
	flag.Parse()

	c := experiment.DefaultConfig()
	if *configFile != "" {
		var err error
		if c, err = experiment.LoadConfig(*configFile); err != nil {
			log.Fatalf("could not load configuration: %v", err)
		}
	}

	if *writeConfig != "" {
		if err := c.Save(*writeConfig); err != nil {
			log.Fatalf("could not write configuration: %v", err)
		}
		log.Infof("configuration written to %v", *writeConfig)
		return
	}

	if err := run(c); err != nil {
		log.Fatal(err)
	}
}

// run trains a single worker as described by c
func run(c experiment.Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	log.Infof("configuration: %+v", c)

	// Create the environment
	bounds := make([]r1.Interval, cartpole.ObservationDims)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: -0.05, Max: 0.05}
	}
	s := env.NewUniformStarter(bounds, c.Seed)
	task, err := cartpole.NewBalance(s, c.EpisodeSteps, cartpole.FailAngle)
	if err != nil {
		return err
	}
	e, _, err := cartpole.New(task, experiment.DefaultDiscount)
	if err != nil {
		return err
	}

	// Create the model and its solver
	model, err := c.NewModel()
	if err != nil {
		return err
	}
	defer model.Close()
	log.Infof("model has %d parameter tensors", len(model.Learnables()))

	sol, err := solver.FromSpec(c.Solver)
	if err != nil {
		return err
	}

	scores := trackers.NewReturn(c.ScoresFile)
	w, err := experiment.NewWorker(e, model, sol.Solver, c.SegmentLength,
		c.Beta, scores)
	if err != nil {
		return err
	}

	if err := w.Run(c.Episodes); err != nil {
		return err
	}
	if err := w.Save(); err != nil {
		return err
	}
	log.Successf("trained for %d episodes, scores saved to %v",
		w.Episodes(), c.ScoresFile)

	data := scores.Data()
	x := make([]float64, len(data))
	for i := range x {
		x[i] = float64(i + 1)
	}
	if err := plotutils.PlotPortfolio(x, data, c.FigureFile); err != nil {
		return fmt.Errorf("could not plot scores: %v", err)
	}
	log.Infof("running average plotted to %v", c.FigureFile)

	return nil
}
