// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"
)

type GroupSuite struct {
	suite.Suite
}

func (suite *GroupSuite) TestAllSucceed() {
	var calls int32
	g := NewGroup(context.Background())
	for i := 0; i < 3; i++ {
		g.Go(func(context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}

	suite.NoError(g.Wait())
	suite.Equal(int32(3), atomic.LoadInt32(&calls))
}

func (suite *GroupSuite) TestFirstErrorWins() {
	expected := errors.New("expected")
	g := NewGroup(context.Background())
	g.Go(func(context.Context) error {
		return expected
	})

	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	suite.Same(expected, g.Wait())
}

func (suite *GroupSuite) TestCancellationPropagates() {
	parent, cancel := context.WithCancel(context.Background())
	g := NewGroup(parent)
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	cancel()
	suite.NoError(g.Wait())
}

func (suite *GroupSuite) TestLimit() {
	var (
		current int32
		peak    int32
	)

	g := NewGroup(context.Background()).Limit(2)
	for i := 0; i < 8; i++ {
		g.Go(func(context.Context) error {
			n := atomic.AddInt32(&current, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}

			atomic.AddInt32(&current, -1)
			return nil
		})
	}

	suite.NoError(g.Wait())
	suite.LessOrEqual(atomic.LoadInt32(&peak), int32(2))
}

func TestGroup(t *testing.T) {
	suite.Run(t, new(GroupSuite))
}
