// apurar procesa un lote de XML de NFe desde la línea de comandos y escribe la planilla fiscal.
//
// Uso: go run ./cmd/apurar [-config ./config] [-saida apuracao.xlsx] [-pdf relatorio.pdf]
//
//	[-ano 2024] [-mes 3] [-workers 8] <xml|zip|directorio>...
//
// Los directorios se recorren buscando archivos .xml; los .zip se abren en memoria. Las alícuotas se leen de FISCAL_* igual
// que en la API. El resumen va a stdout y el log a stderr.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/application/apuracao"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/fiscal"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/excel"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/nfe"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/pdf"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/config"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/logger"
)

func main() {
	rulesDir := flag.String("config", "", "directorio de reglas (por defecto FISCAL_CONFIG_DIR)")
	out := flag.String("saida", "apuracao.xlsx", "planilla de salida")
	pdfOut := flag.String("pdf", "", "relatório PDF opcional")
	year := flag.Int("ano", 0, "filtrar por año")
	month := flag.Int("mes", 0, "filtrar por mes (1-12)")
	workers := flag.Int("workers", 0, "tamaño del pool de extracción (0 = FISCAL_WORKERS)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "uso: apurar [opciones] <xml|zip|directorio>...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: "development", Level: cfg.App.LogLevel, Out: os.Stderr})

	if *rulesDir == "" {
		*rulesDir = cfg.Fiscal.RulesDir
	}
	if *workers == 0 {
		*workers = cfg.Fiscal.Workers
	}

	if err := run(log, cfg, *rulesDir, *out, *pdfOut, fiscal.Period{Year: *year, Month: time.Month(*month)}, *workers, flag.Args()); err != nil {
		log.Error().Err(err).Msg("apuração fallida")
		os.Exit(1)
	}
}

func run(log *logger.Logger, cfg *config.Config, rulesDir, out, pdfOut string, p fiscal.Period, workers int, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rules, err := config.LoadRules(rulesDir)
	if err != nil {
		return err
	}
	extractor, ruleSet, err := apuracao.NewEngine(rules, cfg.Fiscal)
	if err != nil {
		return err
	}

	var (
		sources []nfe.Source
		plain   []string
	)
	for _, arg := range args {
		if !nfe.IsZip(arg) {
			plain = append(plain, arg)
			continue
		}
		zipped, err := nfe.ZipFileSources(arg)
		if err != nil {
			return err
		}
		sources = append(sources, zipped...)
	}
	paths, err := nfe.ExpandPaths(plain)
	if err != nil {
		return err
	}
	for _, path := range paths {
		sources = append(sources, nfe.FileSource(path))
	}

	uc := apuracao.NewUseCase(extractor, ruleSet, memory.NewApuracaoRepository(0),
		excel.NewExporter(), pdf.NewMarotoReportGenerator(companyName(rules)), log, workers)

	a, err := uc.Run(ctx, sources)
	if err != nil {
		return err
	}

	b, _, err := uc.ExportXLSX(ctx, a.ID, p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return fmt.Errorf("escribir %s: %w", out, err)
	}
	if pdfOut != "" {
		b, _, err := uc.ExportPDF(ctx, a.ID, p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(pdfOut, b, 0o644); err != nil {
			return fmt.Errorf("escribir %s: %w", pdfOut, err)
		}
	}

	r := apuracao.BuildReport(a, p, uc.ReportSettings())
	fmt.Printf("Apuração %s: %d arquivo(s), %d documento(s)\n", a.ID, a.Files, a.Documents)
	fmt.Printf("  Vendidos: %d  Em estoque: %d  Erros: %d  Alertas: %d\n",
		r.KPIs.Sold, r.KPIs.InStock, r.KPIs.Errors, len(r.Alerts))
	for _, q := range r.Quarters {
		fmt.Printf("  %s  lucro %s  tributos %s  líquido %s\n",
			q.Quarter, q.Profit.StringFixed(2), q.TotalTaxes.StringFixed(2), q.NetProfit.StringFixed(2))
	}
	fmt.Printf("Planilha: %s\n", out)
	return nil
}

func companyName(r *config.Rules) string {
	if len(r.Companies) > 0 {
		return r.Companies[0].Name
	}
	return ""
}
