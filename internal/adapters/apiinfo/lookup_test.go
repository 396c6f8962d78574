package apiinfo_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/droidnet/internal/adapters/apiinfo"
	"go.trai.ch/droidnet/internal/core/domain"
)

const testRoot = "testdata/MonoAndroid"

func TestParse(t *testing.T) {
	info, err := apiinfo.Parse(filepath.Join(testRoot, "v11.0", apiinfo.DescriptorFileName))
	require.NoError(t, err)
	assert.Equal(t, domain.APIInfo{Level: 30, Version: "v11.0"}, info)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing level", "<AndroidApiInfo><Version>v11.0</Version></AndroidApiInfo>"},
		{"missing version", "<AndroidApiInfo><Level>30</Level></AndroidApiInfo>"},
		{"empty version", "<AndroidApiInfo><Level>30</Level><Version> </Version></AndroidApiInfo>"},
		{"non numeric level", "<AndroidApiInfo><Level>R</Level><Version>v11.0</Version></AndroidApiInfo>"},
		{"wrong root", "<ApiInfo><Level>30</Level><Version>v11.0</Version></ApiInfo>"},
		{"not xml", "Level=30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), apiinfo.DescriptorFileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), domain.FilePerm))

			_, err := apiinfo.Parse(path)
			require.ErrorIs(t, err, domain.ErrDescriptorMalformed)
			assert.True(t, domain.IsConfigurationError(err))
		})
	}
}

func TestLookup_Find(t *testing.T) {
	info, err := apiinfo.NewLookup().Find(testRoot, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, info.Level)
	assert.Equal(t, "v11.0", info.Version)

	info, err = apiinfo.NewLookup().Find(testRoot, 28)
	require.NoError(t, err)
	assert.Equal(t, "v9.0", info.Version)
}

func TestLookup_Find_NotFound(t *testing.T) {
	_, err := apiinfo.NewLookup().Find(testRoot, 99)
	require.ErrorIs(t, err, domain.ErrAPILevelNotFound)
	assert.Contains(t, err.Error(), "no descriptor for api level 99 in "+testRoot+"; found levels [28 29 30]")
}

func TestLookup_Find_RootMissing(t *testing.T) {
	_, err := apiinfo.NewLookup().Find(filepath.Join(t.TempDir(), "missing"), 30)
	require.ErrorIs(t, err, domain.ErrDescriptorRootMissing)
}

func TestLookup_Find_MalformedDescriptorAborts(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "v11.0")
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, apiinfo.DescriptorFileName),
		[]byte("<AndroidApiInfo><Level>30</Level></AndroidApiInfo>"), domain.FilePerm))

	_, err := apiinfo.NewLookup().Find(root, 30)
	require.ErrorIs(t, err, domain.ErrDescriptorMalformed)
}
