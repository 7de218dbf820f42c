package io

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputTo(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	src := filepath.Join(t.TempDir(), "minecraft.env")
	require.NoError(os.WriteFile(src, []byte("EULA=TRUE\n"), 0o644))

	dest := t.TempDir()
	require.NoError(os.WriteFile(filepath.Join(dest, "GameServers.template.json"), []byte("a much longer previous template"), 0o644))

	files := []File{
		&RawFile{FPath: "GameServers.template.json", Content: []byte(`{}`)},
		&RawFile{FPath: "assets/nested/Minecraft.template.json", Content: []byte(`{"Resources":{}}`)},
		&FileRef{FPath: "assets/minecraft.env", SourcePath: src},
	}
	require.NoError(OutputTo(context.Background(), files, dest))

	for path, want := range map[string]string{
		"GameServers.template.json":             `{}`,
		"assets/nested/Minecraft.template.json": `{"Resources":{}}`,
		"assets/minecraft.env":                  "EULA=TRUE\n",
	} {
		got, err := os.ReadFile(filepath.Join(dest, path))
		if assert.NoError(err, path) {
			assert.Equal(want, string(got), path)
		}
	}
}

func TestOutputTo_Errors(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{name: "missing source", file: &FileRef{FPath: "missing.env", SourcePath: filepath.Join(t.TempDir(), "missing.env")}},
		{name: "absolute path", file: &RawFile{FPath: "/etc/passwd"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, OutputTo(context.Background(), []File{tt.file}, t.TempDir()))
		})
	}
}
