package kvstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/fpomarket/base/ctx"
)

type StoreTestSuite struct {
	suite.Suite
	store *Store
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	s.store = NewMemory()
}

func (s *StoreTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *StoreTestSuite) put(c ctx.Ctx, k, v string) {
	s.Require().NoError(s.store.RunInTx(c, func(c ctx.Ctx) error {
		return s.store.Bucket(c, []byte("b:")).Put([]byte(k), []byte(v))
	}))
}

func (s *StoreTestSuite) TestCommit() {
	c := ctx.Background()
	s.put(c, "k1", "v1")

	got, err := s.store.Bucket(c, []byte("b:")).Get([]byte("k1"))
	s.Require().NoError(err)
	s.Equal("v1", string(got))

	_, err = s.store.Bucket(c, []byte("other:")).Get([]byte("k1"))
	s.Equal(ErrNotFound, err)
}

func (s *StoreTestSuite) TestRollback() {
	c := ctx.Background()
	s.put(c, "k1", "v1")
	before := s.store.StorageUsage(c)

	errBoom := errors.New("boom")
	err := s.store.RunInTx(c, func(c ctx.Ctx) error {
		b := s.store.Bucket(c, []byte("b:"))
		s.Require().NoError(b.Put([]byte("k1"), []byte("changed")))
		s.Require().NoError(b.Put([]byte("k2"), []byte("v2")))
		got, err := b.Get([]byte("k1"))
		s.Require().NoError(err)
		s.Equal("changed", string(got))
		return errBoom
	})
	s.Equal(errBoom, err)

	b := s.store.Bucket(c, []byte("b:"))
	got, err := b.Get([]byte("k1"))
	s.Require().NoError(err)
	s.Equal("v1", string(got))
	has, err := b.Has([]byte("k2"))
	s.Require().NoError(err)
	s.False(has)
	s.Equal(before, s.store.StorageUsage(c))
}

func (s *StoreTestSuite) TestWriteOutsideTx() {
	err := s.store.Bucket(ctx.Background(), []byte("b:")).Put([]byte("k"), []byte("v"))
	s.Equal(ErrNoTx, err)
}

func (s *StoreTestSuite) TestStorageUsage() {
	c := ctx.Background()
	s.Equal(int64(0), s.store.StorageUsage(c))

	s.put(c, "k1", "v1")
	s.Equal(int64(len("b:k1")+len("v1")), s.store.StorageUsage(c))

	s.put(c, "k1", "longer")
	s.Equal(int64(len("b:k1")+len("longer")), s.store.StorageUsage(c))

	s.Require().NoError(s.store.RunInTx(c, func(c ctx.Ctx) error {
		b := s.store.Bucket(c, []byte("b:"))
		s.Require().NoError(b.Put([]byte("k2"), []byte("v2")))
		s.Equal(int64(len("b:k1")+len("longer")+len("b:k2")+len("v2")), s.store.StorageUsage(c))
		s.Require().NoError(b.Delete([]byte("k1")))
		return b.Delete([]byte("missing"))
	}))
	s.Equal(int64(len("b:k2")+len("v2")), s.store.StorageUsage(c))
}

func (s *StoreTestSuite) TestIterate() {
	c := ctx.Background()
	s.put(c, "a:2", "two")
	s.put(c, "a:1", "one")
	s.put(c, "b:1", "other")

	s.Require().NoError(s.store.RunInTx(c, func(c ctx.Ctx) error {
		b := s.store.Bucket(c, []byte("b:"))
		s.Require().NoError(b.Delete([]byte("a:2")))
		s.Require().NoError(b.Put([]byte("a:3"), []byte("three")))

		keys := []string{}
		err := b.Iterate([]byte("a:"), func(k, v []byte) (bool, error) {
			keys = append(keys, string(k)+"="+string(v))
			return true, nil
		})
		s.Require().NoError(err)
		s.Equal([]string{"a:1=one", "a:3=three"}, keys)
		return nil
	}))

	keys := []string{}
	err := s.store.Bucket(c, []byte("b:")).Iterate([]byte("a:"), func(k, v []byte) (bool, error) {
		keys = append(keys, string(k))
		return len(keys) < 1, nil
	})
	s.Require().NoError(err)
	s.Equal([]string{"a:1"}, keys)
}

func (s *StoreTestSuite) TestNestedAndHooks() {
	c := ctx.Background()
	calls := []string{}

	s.Require().NoError(s.store.RunInTx(c, func(c ctx.Ctx) error {
		s.store.AfterCommit(c, func() { calls = append(calls, "outer") })
		return s.store.RunInTx(c, func(c ctx.Ctx) error {
			s.store.AfterCommit(c, func() { calls = append(calls, "inner") })
			calls = append(calls, "body")
			return nil
		})
	}))
	s.Equal([]string{"body", "outer", "inner"}, calls)

	calls = nil
	_ = s.store.RunInTx(c, func(c ctx.Ctx) error {
		s.store.AfterCommit(c, func() { calls = append(calls, "dropped") })
		return errors.New("fail")
	})
	s.Empty(calls)
}

func (s *StoreTestSuite) TestDetachedAfterCommit() {
	c := ctx.Background()
	var detached ctx.Ctx
	s.Require().NoError(s.store.RunInTx(c, func(c ctx.Ctx) error {
		detached = ctx.Detach(c)
		return nil
	}))

	// the detached context opens its own transaction instead of joining the finished one
	s.Require().NoError(s.store.RunInTx(detached, func(c ctx.Ctx) error {
		return s.store.Bucket(c, []byte("b:")).Put([]byte("k"), []byte("v"))
	}))
	got, err := s.store.Bucket(c, []byte("b:")).Get([]byte("k"))
	s.Require().NoError(err)
	s.Equal("v", string(got))
	s.ErrorIs(s.store.Bucket(detached, []byte("b:")).Put([]byte("k"), []byte("w")), ErrNoTx)
}

func (s *StoreTestSuite) TestPartition() {
	c := ctx.Background()
	part := s.store.Partition([]byte("token:"))

	s.Require().NoError(s.store.RunInTx(c, func(c ctx.Ctx) error {
		// independent lock, so this does not deadlock
		return part.RunInTx(c, func(c ctx.Ctx) error {
			return part.Bucket(c, []byte("b:")).Put([]byte("k"), []byte("v"))
		})
	}))
	got, err := part.Bucket(c, []byte("b:")).Get([]byte("k"))
	s.Require().NoError(err)
	s.Equal("v", string(got))
	s.Equal(int64(0), s.store.StorageUsage(c))
	s.Equal(int64(len("b:k")+len("v")), part.StorageUsage(c))
}

func (s *StoreTestSuite) TestCancelledWhileWaiting() {
	c := ctx.Background()
	s.Require().NoError(s.store.RunInTx(c, func(inner ctx.Ctx) error {
		cc, cancel := ctx.WithCancel(ctx.Background())
		cancel()
		err := s.store.RunInTx(cc, func(ctx.Ctx) error { return nil })
		s.Error(err)
		return nil
	}))
}

func (s *StoreTestSuite) TestUnmeteredBucket() {
	c := ctx.Background()
	s.Require().NoError(s.store.RunInTx(c, func(c ctx.Ctx) error {
		return s.store.UnmeteredBucket(c, []byte("bl:")).Put([]byte("alice"), []byte("100"))
	}))
	s.Equal(int64(0), s.store.StorageUsage(c))

	got, err := s.store.Bucket(c, []byte("bl:")).Get([]byte("alice"))
	s.Require().NoError(err)
	s.Equal("100", string(got))
}
