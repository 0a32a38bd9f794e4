package apuracao

import (
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/fiscal"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/veiculo"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/nfe"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/config"
)

// NewEngine compila las reglas leídas de FISCAL_CONFIG_DIR junto con las alícuotas y el
// límite de estoque parado. Las secciones ausentes usan los valores por defecto; cualquier
// regla inválida devuelve domain.ErrInvalidConfig.
func NewEngine(rules *config.Rules, fc config.FiscalConfig) (*nfe.Extractor, *fiscal.RuleSet, error) {
	rates := fc.Rates
	fm := nfe.DefaultFieldMap()
	if f := rules.Fields; f != nil {
		fm = nfe.FieldMap{
			Namespace: f.Namespace.URI,
			Prefix:    f.Namespace.Prefix,
			Item:      f.Item,
			Document:  f.Document,
			ItemPaths: f.ItemPath,
		}
	}

	rx := nfe.DefaultRegexMap()
	var patterns veiculo.Patterns
	if r := rules.Regex; r != nil {
		if len(r.Extraction) > 0 {
			rx = nfe.RegexMap(r.Extraction)
		}
		patterns = veiculo.Patterns{
			Chassi:        r.Validators.Chassi,
			PlacaAntiga:   r.Validators.PlacaAntiga,
			PlacaMercosul: r.Validators.PlacaMercosul,
			Renavam:       r.Validators.Renavam,
		}
	}

	extractor, err := nfe.NewExtractor(fm, rx)
	if err != nil {
		return nil, nil, err
	}

	companies := make([]fiscal.Company, 0, len(rules.Companies))
	for _, c := range rules.Companies {
		companies = append(companies, fiscal.Company{TaxID: c.CNPJ, Name: c.Name, TradeNames: c.TradeNames})
	}

	keywords, blacklist := rules.Classification.VehicleKeywords, rules.Classification.Blacklist
	if len(keywords) == 0 && len(blacklist) == 0 {
		keywords, blacklist = veiculo.DefaultVehicleKeywords, veiculo.DefaultBlacklist
	}

	rs, err := fiscal.NewRuleSet(fiscal.RuleSetConfig{
		Patterns:        patterns,
		Companies:       companies,
		VehicleKeywords: keywords,
		Blacklist:       blacklist,
		Rates: fiscal.TaxRates{
			ICMS:                rates.ICMS,
			PISCOFINS:           rates.PISCOFINS,
			PresumedProfit:      rates.PresumedProfit,
			IRPJ:                rates.IRPJ,
			IRPJSurtax:          rates.IRPJSurtax,
			IRPJSurtaxThreshold: rates.IRPJSurtaxThreshold,
			CSLL:                rates.CSLL,
		},
		StaleStockDays: fc.StaleStockDays,
	})
	if err != nil {
		return nil, nil, err
	}
	return extractor, rs, nil
}
