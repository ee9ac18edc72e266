package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// storeSuite runs the same contract against every Storage implementation
type storeSuite struct {
	suite.Suite
	newStore func(t *testing.T) Storage
	store    Storage
	ctx      context.Context
}

func (s *storeSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore(s.T())
}

func (s *storeSuite) TestPutOpenDelete() {
	key := ClientKey(uuid.New(), uuid.New(), "Acta Constitutiva.pdf")
	s.True(strings.HasSuffix(key, "-Acta_Constitutiva.pdf"))

	n, err := s.store.Put(s.ctx, key, strings.NewReader("%PDF-1.4"))
	s.Require().NoError(err)
	s.EqualValues(8, n)

	rc, err := s.store.Open(s.ctx, key)
	s.Require().NoError(err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	s.Equal("%PDF-1.4", string(data))

	s.Require().NoError(s.store.Delete(s.ctx, key))
	_, err = s.store.Open(s.ctx, key)
	s.ErrorIs(err, ErrNotFound)
	s.NoError(s.store.Delete(s.ctx, key), "deleting a missing key is not an error")
}

func (s *storeSuite) TestPutReplaces() {
	key := ContractKey(uuid.New(), uuid.New())
	_, err := s.store.Put(s.ctx, key, strings.NewReader("v1"))
	s.Require().NoError(err)
	_, err = s.store.Put(s.ctx, key, strings.NewReader("v2"))
	s.Require().NoError(err)

	rc, err := s.store.Open(s.ctx, key)
	s.Require().NoError(err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	s.Equal("v2", string(data))
}

func (s *storeSuite) TestRejectsInvalidKeys() {
	for _, key := range []string{"", "/", "../../etc/passwd", "tenants/../../x"} {
		_, err := s.store.Put(s.ctx, key, strings.NewReader("x"))
		s.ErrorIs(err, ErrInvalidKey, key)
		_, err = s.store.Open(s.ctx, key)
		s.ErrorIs(err, ErrInvalidKey, key)
	}
}

func TestLocalStore(t *testing.T) {
	suite.Run(t, &storeSuite{newStore: func(t *testing.T) Storage {
		s, err := NewLocal(t.TempDir(), "http://files.test/media/")
		require.NoError(t, err)
		return s
	}})
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &storeSuite{newStore: func(*testing.T) Storage { return NewMemory() }})
}

func TestLocal_URL(t *testing.T) {
	s, err := NewLocal(t.TempDir(), "http://files.test/media/")
	require.NoError(t, err)
	key := InvoiceKey(uuid.New(), "F-0001", "xml")
	assert.Equal(t, "http://files.test/media/"+key, s.URL(key))
	assert.Empty(t, s.URL(""))
}

func TestNew(t *testing.T) {
	s, err := New("memory", "", "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = New("", t.TempDir(), "")
	require.NoError(t, err)
	assert.IsType(t, &Local{}, s)

	_, err = New("s3", "", "")
	assert.Error(t, err)
}
