// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// worker.go - per-VP execution context.
//
// A Worker belongs to exactly one goroutine for the duration of a run. It
// owns three reusable generators so that nested stream use never clobbers
// a stream still in use:
//   - unit: the structural draws of the current target or source,
//   - edge: synapse parameter draws of the current edge,
//   - aux:  third-factor decisions and the parameters of mediator edges.

package connect

import (
	"fmt"
	"math/rand/v2"

	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/rng"
	"github.com/katalvlaran/lvconnect/synapse"
)

// Worker is the execution context of one virtual process.
type Worker struct {
	vp  int
	env Env

	unitSrc, edgeSrc, auxSrc rand.PCG
	unit, edge, aux          *rand.Rand

	stats Stats
}

func newWorker(vp int, env Env) *Worker {
	w := &Worker{vp: vp, env: env}
	w.unit = rand.New(&w.unitSrc)
	w.edge = rand.New(&w.edgeSrc)
	w.aux = rand.New(&w.auxSrc)

	return w
}

// VP returns the virtual process this worker runs.
func (w *Worker) VP() int { return w.vp }

// Layout returns the process/thread grid of the run.
func (w *Worker) Layout() nodes.Layout { return w.env.Layout }

// Streams returns the stream factory of the run.
func (w *Worker) Streams() rng.Streams { return w.env.Streams }

// Aux reseeds and returns the worker's auxiliary generator. The result is
// valid until the next Aux call on the same worker.
func (w *Worker) Aux(role rng.Role, keys ...uint64) *rand.Rand {
	w.env.Streams.Reseed(&w.auxSrc, role, keys...)
	return w.aux
}

func (w *Worker) unitStream(role rng.Role, keys ...uint64) *rand.Rand {
	w.env.Streams.Reseed(&w.unitSrc, role, keys...)
	return w.unit
}

func (w *Worker) edgeStream(keys ...uint64) *rand.Rand {
	w.env.Streams.Reseed(&w.edgeSrc, rng.RoleEdge, keys...)
	return w.edge
}

// Install resolves spec for the edge source -> target and hands the
// connection to the installer under the VP owning target. r supplies
// random parameter draws and idx indexes array parameters.
func (w *Worker) Install(source, target uint64, channel int, spec synapse.Spec, idx int, r *rand.Rand) error {
	res, err := spec.Resolve(r, idx)
	if err != nil {
		return fmt.Errorf("edge %d->%d: %w", source, target, err)
	}
	c := synapse.Connection{
		Source:   source,
		Target:   target,
		Channel:  channel,
		Model:    res.Model,
		Weight:   res.Weight,
		Delay:    res.Delay,
		Receptor: res.Receptor,
		Params:   res.Params,
	}
	if err = w.env.Installer.Install(w.env.Layout.VPOf(target), c); err != nil {
		return fmt.Errorf("edge %d->%d: %w", source, target, err)
	}
	w.stats.Installed++

	return nil
}
