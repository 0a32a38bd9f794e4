package http

import (
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/application/apuracao"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/application/dto"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/fiscal"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/nfe"
)

// formField campo multipart con los XML del lote.
const formField = "arquivos"

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

// ApuracaoHandler maneja las peticiones HTTP de apuração.
type ApuracaoHandler struct {
	uc *apuracao.UseCase
}

// NewApuracaoHandler construye el handler inyectando el caso de uso.
func NewApuracaoHandler(uc *apuracao.UseCase) *ApuracaoHandler {
	return &ApuracaoHandler{uc: uc}
}

// Create godoc
// @Summary      Procesar lote de NFe
// @Tags         apuracoes
// @Accept       multipart/form-data
// @Produce      json
// @Param        arquivos  formData  file  true  "XML de NFe o ZIP con XML (uno o más)"
// @Success      201  {object}  dto.ApuracaoResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/apuracoes [post]
func (h *ApuracaoHandler) Create(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "se espera multipart/form-data"})
	}
	var sources []nfe.Source
	for _, fh := range form.File[formField] {
		switch {
		case nfe.IsZip(fh.Filename):
			zipped, err := zipSources(fh)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ZIP", Message: err.Error()})
			}
			sources = append(sources, zipped...)
		case strings.EqualFold(filepath.Ext(fh.Filename), ".xml"):
			sources = append(sources, nfe.Source{
				Name: fh.Filename,
				Open: func() (io.ReadCloser, error) { return fh.Open() },
			})
		}
	}
	if len(sources) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ningún archivo .xml o .zip en el campo " + formField})
	}

	a, err := h.uc.Run(c.UserContext(), sources)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ToApuracaoResponse(apuracao.BuildReport(a, fiscal.Period{}, h.uc.ReportSettings()))
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar apurações
// @Tags         apuracoes
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.ApuracaoListResponse
// @Router       /api/apuracoes [get]
func (h *ApuracaoHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	list, err := h.uc.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.ApuracaoSummaryResponse, 0, len(list))
	for _, s := range list {
		items = append(items, dto.ToApuracaoSummaryResponse(s))
	}
	return c.JSON(dto.ApuracaoListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// GetByID godoc
// @Summary      Obtener apuração (opcionalmente filtrada por período)
// @Tags         apuracoes
// @Produce      json
// @Param        id   path   string  true   "ID de la apuração"
// @Param        ano  query  int     false  "Año"
// @Param        mes  query  int     false  "Mes (1-12)"
// @Success      200  {object}  dto.ApuracaoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/apuracoes/{id} [get]
func (h *ApuracaoHandler) GetByID(c *fiber.Ctx) error {
	r, err := h.uc.Report(c.UserContext(), c.Params("id"), period(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToApuracaoResponse(r))
}

// ExportXLSX descarga la planilla fiscal.
// GET /api/apuracoes/:id/xlsx
func (h *ApuracaoHandler) ExportXLSX(c *fiber.Ctx) error {
	b, name, err := h.uc.ExportXLSX(c.UserContext(), c.Params("id"), period(c))
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, b, name, mimeXLSX)
}

// ExportPDF descarga el relatório trimestral.
// GET /api/apuracoes/:id/pdf
func (h *ApuracaoHandler) ExportPDF(c *fiber.Ctx) error {
	b, name, err := h.uc.ExportPDF(c.UserContext(), c.Params("id"), period(c))
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, b, name, mimePDF)
}

// zipSources lee el ZIP subido y devuelve sus XML como fuentes del lote.
func zipSources(fh *multipart.FileHeader) ([]nfe.Source, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return nfe.ZipSources(fh.Filename, data)
}

func period(c *fiber.Ctx) fiscal.Period {
	return fiscal.Period{Year: c.QueryInt("ano", 0), Month: time.Month(c.QueryInt("mes", 0))}
}

func sendFile(c *fiber.Ctx, b []byte, name, mime string) error {
	c.Set(fiber.HeaderContentType, mime)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(b)
}

// writeError traduce los errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "apuração no encontrada"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
