package pages

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/pagemigrate/pkg/naming"
	"gitlab.com/tozd/go/errors"
)

// 🔧 MockSession is a mock implementation of PageSession
type MockSession struct {
	mock.Mock
}

func (m *MockSession) PageExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockSession) GotoSpaceRoot(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockSession) GotoPage(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockSession) CreatePage(ctx context.Context, title, body string) error {
	return m.Called(ctx, title, body).Error(0)
}

func newCreator(t *testing.T, root string, s PageSession) *Creator {
	t.Helper()
	c, err := NewCreator(s, nil, naming.NewResolver(root, nil))
	require.NoError(t, err)
	return c
}

func TestCache(t *testing.T) {
	c := NewCache()
	assert.False(t, c.Has("/Import/A"))
	c.Add("/Import/A/")
	assert.True(t, c.Has("/Import/A"))
	c.Add("/Import/A")
	assert.Equal(t, 1, c.Len())
}

func TestNewCreatorValidation(t *testing.T) {
	_, err := NewCreator(nil, nil, naming.NewResolver("/", nil))
	assert.Error(t, err)

	_, err = NewCreator(&MockSession{}, nil, nil)
	assert.Error(t, err)
}

func TestEnsureParentPagesCreatesChainInOrder(t *testing.T) {
	root := filepath.Join("/", "Import")
	ctx := context.Background()
	s := &MockSession{}

	var order []string
	record := func(args mock.Arguments) {
		order = append(order, args.String(1))
	}

	s.On("PageExists", mock.Anything, "A").Return(false, nil).Once()
	s.On("PageExists", mock.Anything, "B").Return(false, nil).Once()
	s.On("GotoSpaceRoot", mock.Anything).Return(nil).Once()
	s.On("CreatePage", mock.Anything, "A", "").Run(record).Return(nil).Once()
	s.On("GotoPage", mock.Anything, "A").Return(nil).Once()
	s.On("CreatePage", mock.Anything, "B", "").Run(record).Return(nil).Once()
	s.On("GotoPage", mock.Anything, "B").Return(nil).Once()

	c := newCreator(t, root, s)
	require.NoError(t, c.EnsureParentPages(ctx, filepath.Join(root, "A", "B")))

	assert.Equal(t, []string{"A", "B"}, order)
	s.AssertExpectations(t)
	assert.True(t, c.Cache().Has(filepath.Join(root, "A", "B")))
}

func TestEnsureParentPagesCacheHitDoesNoChecks(t *testing.T) {
	root := filepath.Join("/", "Import")
	ctx := context.Background()
	s := &MockSession{}

	s.On("PageExists", mock.Anything, mock.Anything).Return(true, nil)
	s.On("GotoPage", mock.Anything, "Q1").Return(nil)

	c := newCreator(t, root, s)
	dir := filepath.Join(root, "Finance", "Q1")
	require.NoError(t, c.EnsureParentPages(ctx, dir))
	s.AssertNumberOfCalls(t, "PageExists", 2)

	require.NoError(t, c.EnsureParentPages(ctx, dir))
	s.AssertNumberOfCalls(t, "PageExists", 2)
	s.AssertNumberOfCalls(t, "GotoPage", 2)
	s.AssertNotCalled(t, "CreatePage", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureParentPagesOnlyCreatesMissing(t *testing.T) {
	root := filepath.Join("/", "Import")
	s := &MockSession{}

	s.On("PageExists", mock.Anything, "Finance").Return(true, nil)
	s.On("PageExists", mock.Anything, "R and D").Return(false, nil)
	s.On("GotoPage", mock.Anything, "Finance").Return(nil)
	s.On("CreatePage", mock.Anything, "R and D", "").Return(nil)
	s.On("GotoPage", mock.Anything, "R and D").Return(nil)

	c := newCreator(t, root, s)
	require.NoError(t, c.EnsureParentPages(context.Background(), filepath.Join(root, "Finance", "R&D")))

	s.AssertExpectations(t)
	s.AssertNotCalled(t, "GotoSpaceRoot", mock.Anything)
}

func TestEnsureParentPagesRootDir(t *testing.T) {
	root := filepath.Join("/", "Import")
	s := &MockSession{}
	s.On("GotoSpaceRoot", mock.Anything).Return(nil).Twice()

	c := newCreator(t, root, s)
	require.NoError(t, c.EnsureParentPages(context.Background(), root))
	require.NoError(t, c.EnsureParentPages(context.Background(), root))

	s.AssertExpectations(t)
	s.AssertNotCalled(t, "PageExists", mock.Anything, mock.Anything)
}

func TestEnsureParentPagesFailureIsNotCached(t *testing.T) {
	root := filepath.Join("/", "Import")
	s := &MockSession{}
	s.On("PageExists", mock.Anything, "A").Return(false, nil)
	s.On("GotoSpaceRoot", mock.Anything).Return(nil)
	s.On("CreatePage", mock.Anything, "A", "").Return(errors.New("publish never confirmed"))

	c := newCreator(t, root, s)
	dir := filepath.Join(root, "A")
	err := c.EnsureParentPages(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `creating page "A"`)
	assert.False(t, c.Cache().Has(dir))
}
