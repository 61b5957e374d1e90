package version

import (
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// semverRegex validates semantic versioning format
var semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func TestVersionIsSemver(t *testing.T) {
	assert.Regexp(t, semverRegex, Version)
}

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, Name, info.Name)
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfo_String(t *testing.T) {
	tests := []struct {
		name   string
		info   Info
		prefix string
	}{
		{"without commit", Info{Name: "termcore", Version: "1.0.0", GoVersion: "go1.24", Platform: "linux/amd64"}, "termcore 1.0.0 go1.24"},
		{"with commit", Info{Name: "termcore", Version: "1.0.0", Commit: "abc1234", GoVersion: "go1.24", Platform: "linux/amd64"}, "termcore 1.0.0 (abc1234)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.info.String()
			assert.True(t, strings.HasPrefix(s, tt.prefix), s)
			assert.True(t, strings.HasSuffix(s, "linux/amd64"), s)
		})
	}
}
