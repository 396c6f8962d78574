package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/droidnet/internal/adapters/manifest"
	"go.trai.ch/droidnet/internal/core/domain"
)

func TestReader_PackageName(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr error
	}{
		{
			name: "package attribute",
			content: `<?xml version="1.0" encoding="utf-8"?>
<manifest xmlns:android="http://schemas.android.com/apk/res/android" android:versionCode="1" package="com.roy.dotnetlibrary">
  <uses-sdk android:minSdkVersion="21" android:targetSdkVersion="30" />
  <application android:label="DotNetLibrary" />
</manifest>`,
			want: "com.roy.dotnetlibrary",
		},
		{
			name:    "missing attribute",
			content: `<manifest><application /></manifest>`,
			wantErr: domain.ErrManifestPackageMissing,
		},
		{
			name:    "empty attribute",
			content: `<manifest package=" "></manifest>`,
			wantErr: domain.ErrManifestPackageMissing,
		},
		{
			name:    "wrong root element",
			content: `<application package="com.example"/>`,
			wantErr: domain.ErrManifestParseFailed,
		},
		{
			name:    "truncated",
			content: `<manifest package="com.example">`,
			wantErr: domain.ErrManifestParseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "AndroidManifest.xml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), domain.FilePerm))

			got, err := manifest.NewReader().PackageName(path)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, domain.IsConfigurationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReader_PackageName_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Properties", "AndroidManifest.xml")

	_, err := manifest.NewReader().PackageName(path)
	require.ErrorIs(t, err, domain.ErrManifestMissing)
	assert.Contains(t, err.Error(), "manifest is required but does not exist")
}
