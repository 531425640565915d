// Package plotutils implements plotting of experiment results
package plotutils

import (
	"fmt"

	"github.com/samuelfneumann/goa3c/utils/intutils"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Window is the number of trailing games averaged by PlotPortfolio
const Window = 100

// Figure dimensions of saved plots
const (
	FigureWidth  = 6 * vg.Inch
	FigureHeight = 4 * vg.Inch
)

// RunningAverage returns the trailing running average of scores. Index
// i of the result is the mean of the last min(window, i+1) scores up
// to and including scores[i].
func RunningAverage(scores []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("runningAverage: window must be positive, "+
			"have(%v)", window)
	}

	avg := make([]float64, len(scores))
	for i := range scores {
		start := intutils.Max(0, i+1-window)
		avg[i] = stat.Mean(scores[start:i+1], nil)
	}
	return avg, nil
}

// PlotPortfolio plots the running average of scores over the last
// Window games against x and saves the figure to figureFile,
// overwriting any existing file. The image format is determined by the
// file extension, for example .png or .svg.
func PlotPortfolio(x, scores []float64, figureFile string) error {
	if len(x) != len(scores) {
		return fmt.Errorf("plotPortfolio: x and scores must have the "+
			"same length \n\twant(%v)\n\thave(%v)", len(scores), len(x))
	}

	runningAvg, err := RunningAverage(scores, Window)
	if err != nil {
		return fmt.Errorf("plotPortfolio: %v", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Running average of %d games", Window)
	p.X.Label.Text = "Game"
	p.Y.Label.Text = "Score"

	pts := make(plotter.XYs, len(runningAvg))
	for i := range runningAvg {
		pts[i].X = x[i]
		pts[i].Y = runningAvg[i]
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("plotPortfolio: could not create line: %v", err)
	}
	p.Add(line)

	if err := p.Save(FigureWidth, FigureHeight, figureFile); err != nil {
		return fmt.Errorf("plotPortfolio: could not save figure: %v", err)
	}
	return nil
}
