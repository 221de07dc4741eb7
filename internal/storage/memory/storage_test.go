package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/boardgametracker/internal/dependencies/mocks"
	"github.com/mcoot/boardgametracker/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	clock   *mocks.Clock
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.clock = mocks.NewClock()
	s.storage = NewWithClock(s.clock)
	s.ctx = context.Background()
}

func (s *StorageSuite) TestSetAndGet() {
	s.Require().NoError(s.storage.Set(s.ctx, "bgt:game:1", []byte(`{"id":1}`), time.Minute))

	value, err := s.storage.Get(s.ctx, "bgt:game:1")
	s.Require().NoError(err)
	s.Equal(`{"id":1}`, string(value))
}

func (s *StorageSuite) TestGetMissing() {
	_, err := s.storage.Get(s.ctx, "bgt:game:404")
	s.ErrorIs(err, storage.ErrMiss)
}

func (s *StorageSuite) TestReturnedValueIsACopy() {
	s.Require().NoError(s.storage.Set(s.ctx, "k", []byte("abc"), 0))

	value, _ := s.storage.Get(s.ctx, "k")
	value[0] = 'z'

	again, _ := s.storage.Get(s.ctx, "k")
	s.Equal("abc", string(again))
}

func (s *StorageSuite) TestExpiry() {
	s.Require().NoError(s.storage.Set(s.ctx, "short", []byte("x"), time.Minute))
	s.Require().NoError(s.storage.Set(s.ctx, "forever", []byte("y"), 0))

	s.clock.Advance(59 * time.Second)
	_, err := s.storage.Get(s.ctx, "short")
	s.NoError(err)

	s.clock.Advance(time.Second)
	_, err = s.storage.Get(s.ctx, "short")
	s.ErrorIs(err, storage.ErrMiss)

	_, err = s.storage.Get(s.ctx, "forever")
	s.NoError(err)

	s.Equal(1, s.storage.Len())
	s.Equal(1, s.storage.Sweep())
}

func (s *StorageSuite) TestDelete() {
	_ = s.storage.Set(s.ctx, "a", []byte("1"), 0)
	_ = s.storage.Set(s.ctx, "b", []byte("2"), 0)

	s.Require().NoError(s.storage.Delete(s.ctx, "a", "b", "missing"))
	s.Equal(0, s.storage.Len())
}

func (s *StorageSuite) TestDeletePrefix() {
	_ = s.storage.Set(s.ctx, "bgt:game:1:stats", []byte("1"), 0)
	_ = s.storage.Set(s.ctx, "bgt:game:1:plays:abc", []byte("2"), 0)
	_ = s.storage.Set(s.ctx, "bgt:game:10:stats", []byte("3"), 0)
	_ = s.storage.Set(s.ctx, "bgt:player:1", []byte("4"), 0)

	removed, err := s.storage.DeletePrefix(s.ctx, "bgt:game:1:")
	s.Require().NoError(err)
	s.Equal(2, removed)

	_, err = s.storage.Get(s.ctx, "bgt:game:10:stats")
	s.NoError(err)
	_, err = s.storage.Get(s.ctx, "bgt:player:1")
	s.NoError(err)
}
