package cache //nolint:testpackage // drives the unexported clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type InMemoryClockSuite struct {
	suite.Suite
}

func TestInMemoryClockSuite(t *testing.T) {
	suite.Run(t, new(InMemoryClockSuite))
}

func (s *InMemoryClockSuite) TestRefreshDuringExpiryIsKept() {
	ctx := context.Background()
	c, ok := NewInMemoryCache().(*InMemoryCache)
	s.Require().True(ok)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := start
	var onTick func()
	c.now = func() time.Time {
		if hook := onTick; hook != nil {
			onTick = nil
			hook()
		}
		return clock
	}

	s.Require().NoError(c.Set(ctx, "locale", []byte("de"), time.Second))
	clock = start.Add(2 * time.Second)

	// the writer lands between the expired read and the delete
	onTick = func() {
		s.Require().NoError(c.Set(ctx, "locale", []byte("en"), 0))
	}

	_, found, err := c.Get(ctx, "locale")
	s.Require().NoError(err)
	s.False(found)

	got, found, err := c.Get(ctx, "locale")
	s.Require().NoError(err)
	s.True(found)
	s.Equal([]byte("en"), got)
}
