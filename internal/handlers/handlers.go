package handlers

import (
	"github.com/blue-code/FlexPlay/internal/artifacts"
	"github.com/blue-code/FlexPlay/internal/editor"
	"github.com/blue-code/FlexPlay/internal/history"
	"github.com/blue-code/FlexPlay/internal/library"
	"github.com/blue-code/FlexPlay/internal/sweeper"
	"github.com/blue-code/FlexPlay/internal/thumbs"
)

// Handlers holds all HTTP handler dependencies.
type Handlers struct {
	lib      *library.Library
	store    *artifacts.Store
	sched    *thumbs.Scheduler
	pipeline *editor.Pipeline
	sweep    *sweeper.Sweeper
	hist     *history.Store
}

// New creates a new Handlers instance with all dependencies.
func New(lib *library.Library, store *artifacts.Store, sched *thumbs.Scheduler, pipeline *editor.Pipeline, sweep *sweeper.Sweeper, hist *history.Store) *Handlers {
	return &Handlers{
		lib:      lib,
		store:    store,
		sched:    sched,
		pipeline: pipeline,
		sweep:    sweep,
		hist:     hist,
	}
}
