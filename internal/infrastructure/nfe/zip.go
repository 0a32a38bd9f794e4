package nfe

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
)

// ZipSources abre un ZIP en memoria y devuelve una fuente por cada .xml que contenga,
// ordenadas por nombre. Los nombres quedan como "lote.zip:carpeta/nota.xml".
func ZipSources(name string, data []byte) ([]Source, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zip: abrir %s: %w", name, err)
	}

	files := make([]*zip.File, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ".xml") {
			continue
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	out := make([]Source, 0, len(files))
	for _, f := range files {
		out = append(out, Source{
			Name: name + ":" + f.Name,
			Open: func() (io.ReadCloser, error) { return f.Open() },
		})
	}
	return out, nil
}

// ZipFileSources como ZipSources para un archivo en disco.
func ZipFileSources(p string) ([]Source, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("zip: leer %s: %w", p, err)
	}
	return ZipSources(p, data)
}

// IsZip indica si el nombre corresponde a un lote comprimido.
func IsZip(name string) bool {
	return strings.EqualFold(path.Ext(name), ".zip")
}
