package nfe

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
)

// Source un XML a procesar: nombre para los reportes y cómo abrirlo.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileSource fuente respaldada por un archivo en disco.
func FileSource(path string) Source {
	return Source{
		Name: path,
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// Batch resultado de la extracción de un lote, en el orden de las fuentes.
type Batch struct {
	Documents []*entity.FiscalDocument
	Errors    []*domain.DocumentError
	Files     int
}

// ExtractAll procesa las fuentes en un pool acotado (workers <= 0 usa GOMAXPROCS).
// Los documentos vuelven en el orden de entrada y reciben su Sequence global.
// Los errores por documento no detienen el lote; solo la cancelación del contexto lo aborta.
func (x *Extractor) ExtractAll(ctx context.Context, sources []Source, workers int) (*Batch, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	type result struct {
		docs []*entity.FiscalDocument
		errs []*domain.DocumentError
	}
	results := make([]result, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs, errs := x.extractSource(src)
			results[i] = result{docs: docs, errs: errs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("nfe: lote cancelado: %w", err)
	}

	b := &Batch{Files: len(sources)}
	for _, r := range results {
		for _, d := range r.docs {
			d.Sequence = len(b.Documents)
			b.Documents = append(b.Documents, d)
		}
		b.Errors = append(b.Errors, r.errs...)
	}
	return b, nil
}

func (x *Extractor) extractSource(src Source) ([]*entity.FiscalDocument, []*domain.DocumentError) {
	rc, err := src.Open()
	if err != nil {
		return nil, docError(src.Name, 0, "", fmt.Errorf("%w: %v", domain.ErrParse, err))
	}
	defer rc.Close()
	return x.Extract(src.Name, rc)
}

// ExpandPaths resuelve archivos y directorios (recursivo) a la lista ordenada de .xml.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".xml") {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}
