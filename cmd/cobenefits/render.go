package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/stwalsh4118/cobenefits/internal/analytics"
	"github.com/stwalsh4118/cobenefits/internal/render"
)

var renderFlags selectionFlags

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write dashboard charts as PNG files",
	Long: `Builds the dashboard for one selection and writes each chart to
<out>/<chart>.png. Charts with nothing to draw are skipped and reported
as unavailable.

Charts: trend, ranking, ranking-per-capita, correlation, scatter,
head-to-head, breakdown, comparison.`,
	RunE: runRender,
}

func init() {
	renderFlags.register(renderCmd)
	f := renderCmd.Flags()
	f.String("out", "charts", "output directory")
	f.StringSlice("chart", nil, "chart to render (repeatable; default: all)")
	f.Int("width", render.DefaultSize.Width, "image width in pixels")
	f.Int("height", render.DefaultSize.Height, "image height in pixels")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	outDir, _ := cmd.Flags().GetString("out")
	names, _ := cmd.Flags().GetStringSlice("chart")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")

	charts := render.Charts
	if len(names) > 0 {
		charts = make([]render.Chart, 0, len(names))
		for _, n := range names {
			c, err := render.ParseChart(n)
			if err != nil {
				return err
			}
			charts = append(charts, c)
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return eris.Wrapf(err, "create %s", outDir)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.service.Dashboard(cmd.Context(), renderFlags.query(cmd), renderFlags.a, renderFlags.b)
	if err != nil {
		return eris.Wrap(err, "build dashboard")
	}

	size := render.Size{Width: width, Height: height}
	written := 0
	for _, c := range charts {
		path := filepath.Join(outDir, string(c)+".png")
		ok, err := writeChart(path, c, d, size)
		if err != nil {
			return err
		}
		if !ok {
			log.Info("Chart unavailable for selection", map[string]interface{}{"chart": c})
			continue
		}
		written++
		log.Debug("Chart written", map[string]interface{}{"chart": c, "path": path})
	}

	log.Info("Charts rendered", map[string]interface{}{
		"dir":     outDir,
		"written": written,
		"skipped": len(charts) - written,
	})
	return nil
}

// writeChart renders one chart to path. It reports false, and leaves no
// file behind, when the chart has nothing to draw.
func writeChart(path string, c render.Chart, d *analytics.Dashboard, size render.Size) (bool, error) {
	f, err := os.Create(path)
	if err != nil {
		return false, eris.Wrapf(err, "create %s", path)
	}

	renderErr := render.Dashboard(f, c, d, size)
	closeErr := f.Close()

	if errors.Is(renderErr, render.ErrNoData) {
		_ = os.Remove(path)
		return false, nil
	}
	if renderErr != nil {
		_ = os.Remove(path)
		return false, eris.Wrapf(renderErr, "render %s", c)
	}
	if closeErr != nil {
		return false, eris.Wrapf(closeErr, "write %s", path)
	}
	return true, nil
}
