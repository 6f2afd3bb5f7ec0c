package naming

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

// 🔧 MockChecker is a mock implementation of PageChecker
type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) PageExists(ctx context.Context, name string) (bool, error) {
	result := m.Called(ctx, name)
	return result.Bool(0), result.Error(1)
}

func TestNormalizePageName(t *testing.T) {
	tests := []struct {
		in   string
		want PageName
	}{
		{"A + B (note)", "A and B note"},
		{"R&D", "R and D"},
		{"Sales & Marketing", "Sales and Marketing"},
		{"C++", "C and and"},
		{"  Budget   (draft)  ", "Budget draft"},
		{"Plain", "Plain"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizePageName(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizePageName(got.String()), "normalization should be a fixed point")
		})
	}
}

func TestPageNameEqual(t *testing.T) {
	assert.True(t, PageName("Report").Equal("report"))
	assert.False(t, PageName("Report").Equal("Reports"))
}

func TestSegments(t *testing.T) {
	root := filepath.Join("/", "Import")
	r := NewResolver(root, nil)

	assert.Equal(t, []PageName{"Finance", "Q1"}, r.Segments(context.Background(), filepath.Join(root, "Finance", "Q1")))
	assert.Equal(t, []PageName{"R and D"}, r.Segments(context.Background(), filepath.Join(root, "R&D")))
	assert.Empty(t, r.Segments(context.Background(), root))
	assert.Empty(t, r.Segments(context.Background(), filepath.Join("/", "elsewhere")))
}

func TestNormalizeLogsEachRenameOnce(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	root := filepath.Join("/", "Import")
	r := NewResolver(root, nil)
	dir := filepath.Join(root, "R&D", "Plain")
	for i := 0; i < 3; i++ {
		assert.Equal(t, []PageName{"R and D", "Plain"}, r.Segments(ctx, dir))
	}

	assert.Equal(t, 1, strings.Count(buf.String(), "normalized page name"))
	assert.Contains(t, buf.String(), `"page":"R and D"`)
}

func TestResolveTargetPageName(t *testing.T) {
	root := filepath.Join("/", "Import")

	t.Run("free_name", func(t *testing.T) {
		checker := &MockChecker{}
		checker.On("PageExists", mock.Anything, "report").Return(false, nil).Once()

		r := NewResolver(root, checker)
		got := r.ResolveTargetPageName(context.Background(), filepath.Join(root, "Finance", "report.pdf"))
		assert.Equal(t, PageName("report"), got)
		checker.AssertExpectations(t)
	})

	t.Run("existing_page_gets_unique_conflict_name", func(t *testing.T) {
		checker := &MockChecker{}
		checker.On("PageExists", mock.Anything, "Report").Return(true, nil)

		r := NewResolver(root, checker)
		path := filepath.Join(root, "Finance", "Report.pdf")
		first := r.ResolveTargetPageName(context.Background(), path)
		second := r.ResolveTargetPageName(context.Background(), path)

		assert.NotEqual(t, PageName("Report"), first)
		assert.True(t, strings.HasPrefix(first.String(), "Conflict page Report.pdf "))
		assert.NotEqual(t, first, second, "conflict names must be unique across invocations")
	})

	t.Run("ancestor_collision_skips_remote_check", func(t *testing.T) {
		checker := &MockChecker{}
		r := NewResolver(root, checker).WithTokenSource(func() string { return "fixed" })

		got := r.ResolveTargetPageName(context.Background(), filepath.Join(root, "Budget", "2024", "budget.xlsx"))
		assert.Equal(t, PageName("Conflict page budget.xlsx fixed"), got)
		checker.AssertNotCalled(t, "PageExists", mock.Anything, mock.Anything)
	})

	t.Run("normalized_before_checking", func(t *testing.T) {
		checker := &MockChecker{}
		checker.On("PageExists", mock.Anything, "Plan and Budget v2").Return(false, nil)

		r := NewResolver(root, checker)
		got := r.ResolveTargetPageName(context.Background(), filepath.Join(root, "Plan & Budget (v2).docx"))
		assert.Equal(t, PageName("Plan and Budget v2"), got)
	})

	t.Run("check_error_keeps_name", func(t *testing.T) {
		checker := &MockChecker{}
		checker.On("PageExists", mock.Anything, "notes").Return(false, errors.New("title never rendered"))

		r := NewResolver(root, checker)
		got := r.ResolveTargetPageName(context.Background(), filepath.Join(root, "notes.txt"))
		require.Equal(t, PageName("notes"), got)
	})
}
