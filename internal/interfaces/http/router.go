package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/application/apuracao"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ApuracaoUC *apuracao.UseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Apurações: lote de XML -> estoque fiscal, auditoría y tributos
	apuracoes := api.Group("/apuracoes")
	h := NewApuracaoHandler(deps.ApuracaoUC)
	apuracoes.Post("/", h.Create)
	apuracoes.Get("/", h.List)
	apuracoes.Get("/:id", h.GetByID)
	apuracoes.Get("/:id/xlsx", h.ExportXLSX)
	apuracoes.Get("/:id/pdf", h.ExportPDF)
}
