package fileio

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTempName(t *testing.T) {
	name, err := TempName(".tar.gz")
	assert.NoError(t, err)
	defer os.Remove(name)

	assert.True(t, strings.HasSuffix(name, ".tar.gz"))
	finfo, err := os.Stat(name)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), finfo.Size())
}
