// SPDX-License-Identifier: MIT
// Package: lvconnect/nodes
//
// layout.go - mapping of nodes onto virtual processes (VPs).
//
// A run uses NumProcesses ranks with ThreadsPerProcess threads each; every
// (rank, thread) pair is one virtual process. Nodes are assigned round-robin:
//
//	vp(id)     = id mod NumVPs
//	rank(vp)   = vp mod NumProcesses
//	thread(vp) = vp div NumProcesses

package nodes

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// layoutValidate checks Layout struct tags.
var layoutValidate = validator.New()

// Layout describes the worker grid and which rank this process is.
type Layout struct {
	NumProcesses      int `validate:"min=1" yaml:"processes"`
	ThreadsPerProcess int `validate:"min=1" yaml:"threads"`
	Rank              int `validate:"min=0,ltfield=NumProcesses" yaml:"rank"`
}

// SingleLayout is one process with one thread.
var SingleLayout = Layout{NumProcesses: 1, ThreadsPerProcess: 1}

// Validate reports a descriptive error for an unusable layout.
func (l Layout) Validate() error {
	if err := layoutValidate.Struct(l); err != nil {
		return fmt.Errorf("layout %+v: %w", l, err)
	}

	return nil
}

// NumVPs returns the total number of virtual processes.
func (l Layout) NumVPs() int { return l.NumProcesses * l.ThreadsPerProcess }

// VPOf returns the virtual process owning node id.
func (l Layout) VPOf(id uint64) int { return int(id % uint64(l.NumVPs())) }

// RankOfVP returns the rank hosting vp.
func (l Layout) RankOfVP(vp int) int { return vp % l.NumProcesses }

// ThreadOfVP returns the thread index of vp within its rank.
func (l Layout) ThreadOfVP(vp int) int { return vp / l.NumProcesses }

// VPOfThread returns the vp of a local thread on this rank.
func (l Layout) VPOfThread(thread int) int { return thread*l.NumProcesses + l.Rank }

// IsLocal reports whether vp runs on this rank.
func (l Layout) IsLocal(vp int) bool { return l.RankOfVP(vp) == l.Rank }

// LocalVPs returns the virtual processes of this rank in thread order.
func (l Layout) LocalVPs() []int {
	vps := make([]int, l.ThreadsPerProcess)
	for t := range vps {
		vps[t] = l.VPOfThread(t)
	}

	return vps
}

// WithRank returns a copy of l describing another rank of the same grid.
func (l Layout) WithRank(rank int) Layout {
	l.Rank = rank
	return l
}
