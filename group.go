// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Group runs related calls concurrently.  The first call to return a
// non-nil error cancels the group's context, and Wait returns that error.
//
// A Group is a thin wrapper around errgroup that hands each task the
// group's context, which is the natural shape for Consumer.Do and for
// functions produced by Consumer.Bind.
type Group struct {
	eg  *errgroup.Group
	ctx context.Context
}

// NewGroup creates a Group derived from the given parent context.
func NewGroup(parent context.Context) *Group {
	eg, ctx := errgroup.WithContext(parent)
	return &Group{
		eg:  eg,
		ctx: ctx,
	}
}

// Limit caps the number of tasks running simultaneously.  It must be
// called before any Go.  A negative limit means no cap.
func (g *Group) Limit(n int) *Group {
	g.eg.SetLimit(n)
	return g
}

// Go submits a task.  The supplied context is canceled when any task in
// the group fails or when the parent context is canceled.
func (g *Group) Go(task func(context.Context) error) {
	g.eg.Go(func() error {
		return task(g.ctx)
	})
}

// Wait blocks until all submitted tasks complete, returning the first
// error, if any.
func (g *Group) Wait() error {
	return g.eg.Wait()
}
