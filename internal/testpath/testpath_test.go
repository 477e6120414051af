package testpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/refscope/internal/model"
)

func TestIsTestPath(t *testing.T) {
	t.Parallel()

	m := Default()
	tests := []struct {
		path string
		want bool
	}{
		{"src/test/java/com/example/UserTest.java", true},
		{"module/src/test/java/Foo.java", true},
		{"src/main/java/com/example/UserServiceTest.java", true},
		{"tests/test_processor.py", true},
		{"demo/test_processor.py", true},
		{"demo/processor_test.py", true},
		{"src/main/java/com/example/User.java", false},
		{"demo/data_processor.py", false},
		{"src/main/java/com/example/Contest.java", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, m.IsTestPath(tt.path))
		})
	}
}

func TestIsLibraryPath(t *testing.T) {
	t.Parallel()

	m := Default()
	assert.True(t, m.IsLibraryPath(".venv/lib/python3.12/site-packages/requests/api.py"))
	assert.True(t, m.IsLibraryPath("vendor/acme/Widget.java"))
	assert.False(t, m.IsLibraryPath("src/main/java/com/example/User.java"))
}

func TestIsTestCallable(t *testing.T) {
	t.Parallel()

	m := Default()
	tests := []struct {
		name string
		sym  *model.Symbol
		want bool
	}{
		{"nil", nil, false},
		{"junit marker", &model.Symbol{Name: "createsUser", Markers: []string{"Test"}}, true},
		{"qualified marker", &model.Symbol{Name: "createsUser", Markers: []string{"org.junit.Test"}}, true},
		{"test prefix", &model.Symbol{Name: "testCreate"}, true},
		{"pytest prefix", &model.Symbol{Name: "test_create"}, true},
		{"plain", &model.Symbol{Name: "create", Markers: []string{"Override"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, m.IsTestCallable(tt.sym))
		})
	}
}

func TestNewRejectsBadPattern(t *testing.T) {
	t.Parallel()

	_, err := New([]string{"src/[test"}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test patterns")
}
