package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/cobenefits/internal/analytics"
	"github.com/stwalsh4118/cobenefits/internal/config"
	"github.com/stwalsh4118/cobenefits/internal/database"
	"github.com/stwalsh4118/cobenefits/internal/dataset"
	"github.com/stwalsh4118/cobenefits/internal/repository"
	"github.com/stwalsh4118/cobenefits/internal/services"
)

// app holds the wired dashboard. db is nil for the file data source.
type app struct {
	store   *dataset.Store
	service services.DashboardService
	db      *database.Database
}

func (a *app) Close() {
	a.db.Close()
}

func newApp(ctx context.Context) (*app, error) {
	a := &app{}

	var repo repository.TableRepository
	switch cfg.Data.Source {
	case config.SourcePostgres:
		db, err := database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			log.Error("Failed to connect to database", err, map[string]interface{}{
				"host": cfg.Database.Host,
				"port": cfg.Database.Port,
				"name": cfg.Database.Name,
			})
			return nil, err
		}
		log.Info("Database connection established", map[string]interface{}{
			"host":     cfg.Database.Host,
			"database": cfg.Database.Name,
			"pool_min": cfg.Database.PoolMin,
			"pool_max": cfg.Database.PoolMax,
		})
		a.db = db
		repo = repository.NewPostgresRepository(db.Pool, cfg.Database)
	default:
		repo = repository.NewFileRepository(cfg.Data)
	}

	catalogue, err := analytics.LoadCatalogue(cfg.Dashboard.InsightsFile)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load insight catalogue: %w", err)
	}

	a.store = dataset.NewStore(dataset.NewLoader(repo, log))
	a.service = services.NewDashboardService(a.store, cfg.Dashboard, catalogue, log)
	return a, nil
}

// selectionFlags are the dashboard selection flags shared by report and
// render.
type selectionFlags struct {
	nations []string
	benefit string
	a, b    string
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVar(&s.nations, "nation", nil, "nation to include (repeatable; default: the all-UK aggregate)")
	f.StringVar(&s.benefit, "benefit", "", "benefit category (default: physical_activity)")
	f.StringVar(&s.a, "a", "", "first local authority for the head-to-head")
	f.StringVar(&s.b, "b", "", "second local authority for the head-to-head")
}

// query keeps nations nil unless the flag was given, so an explicit
// --nation="" is reported as an empty selection.
func (s *selectionFlags) query(cmd *cobra.Command) services.Query {
	q := services.Query{Benefit: s.benefit}
	if cmd.Flags().Changed("nation") {
		q.Nations = append([]string{}, s.nations...)
	}
	return q
}
