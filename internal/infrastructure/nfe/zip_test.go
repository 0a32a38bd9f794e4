package nfe_test

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/nfe"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		fw, err := zw.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestZipSources(t *testing.T) {
	data := buildZip(t, map[string]string{
		"2024/b.XML":  buildNFe("", det("1", "1102", "VW GOL", "100.00", "")+closeDet("")),
		"2024/a.xml":  buildNFe("", det("1", "5102", "VW GOL", "200.00", "")+closeDet("")),
		"leiame.txt":  "ignorar",
		"2024/vazio/": "",
	})

	sources, err := nfe.ZipSources("lote.zip", data)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "lote.zip:2024/a.xml", sources[0].Name)
	assert.Equal(t, "lote.zip:2024/b.XML", sources[1].Name)

	b, err := newExtractor(t).ExtractAll(context.Background(), sources, 2)
	require.NoError(t, err)
	require.Empty(t, b.Errors)
	require.Len(t, b.Documents, 2)
	assert.Equal(t, "5102", b.Documents[0].CFOP)
	assert.Equal(t, "lote.zip:2024/a.xml", b.Documents[0].SourcePath)
}

func TestZipSources_Invalido(t *testing.T) {
	_, err := nfe.ZipSources("roto.zip", []byte("no es zip"))
	assert.Error(t, err)
}

func TestZipFileSources(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "lote.zip")
	require.NoError(t, os.WriteFile(p, buildZip(t, map[string]string{"n.xml": "<x/>"}), 0o600))

	sources, err := nfe.ZipFileSources(p)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.True(t, nfe.IsZip(p))
	assert.False(t, nfe.IsZip("nota.xml"))

	_, err = nfe.ZipFileSources(filepath.Join(dir, "falta.zip"))
	assert.Error(t, err)
}
