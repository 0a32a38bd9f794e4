package nfe

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain"
)

// Campos de cabecera (rutas relativas a la raíz del XML).
const (
	FieldNumber        = "numero"
	FieldSeries        = "serie"
	FieldIssuedAt      = "data_emissao"
	FieldNoteType      = "tipo_nota"
	FieldTotalValue    = "valor_total"
	FieldIssuerCNPJ    = "emitente_cnpj"
	FieldIssuerCPF     = "emitente_cpf"
	FieldIssuerName    = "emitente_nome"
	FieldRecipientCNPJ = "destinatario_cnpj"
	FieldRecipientCPF  = "destinatario_cpf"
	FieldRecipientName = "destinatario_nome"
	FieldDocumentNotes = "observacoes"
)

// Campos del ítem (rutas relativas al det).
const (
	FieldCFOP          = "cfop"
	FieldProduct       = "produto"
	FieldItemValue     = "valor_item"
	FieldItemNotes     = "info_adicional"
	FieldChassi        = "chassi"
	FieldPlaca         = "placa"
	FieldRenavam       = "renavam"
	FieldAnoModelo     = "ano_modelo"
	FieldAnoFabricacao = "ano_fabricacao"
	FieldCor           = "cor"
	FieldQuilometragem = "quilometragem"
)

var (
	documentFields = []string{
		FieldNumber, FieldSeries, FieldIssuedAt, FieldNoteType, FieldTotalValue,
		FieldIssuerCNPJ, FieldIssuerCPF, FieldIssuerName,
		FieldRecipientCNPJ, FieldRecipientCPF, FieldRecipientName, FieldDocumentNotes,
	}
	itemFields = []string{
		FieldCFOP, FieldProduct, FieldItemValue, FieldItemNotes,
		FieldChassi, FieldPlaca, FieldRenavam, FieldAnoModelo, FieldAnoFabricacao, FieldCor, FieldQuilometragem,
	}
	// atributos del vehículo, en el orden en que se resuelven
	vehicleFields = []string{
		FieldChassi, FieldPlaca, FieldRenavam, FieldAnoModelo, FieldAnoFabricacao, FieldCor, FieldQuilometragem,
	}
)

// FieldMap mapa de campos calificado por namespace, tal como se lee de campos_nfe.json.
type FieldMap struct {
	Namespace string            // URI esperado en la raíz; vacío = no se verifica
	Prefix    string            // prefijo usado en las rutas (ej. "nfe")
	Item      string            // ruta de los det, relativa a la raíz
	Document  map[string]string // campo de cabecera -> ruta
	ItemPaths map[string]string // campo del ítem -> ruta relativa al det
}

// RegexMap estrategias de extracción por atributo (lista ordenada, gana la primera que encuentra).
// Si el patrón tiene grupos, se usa el primer grupo no vacío; si no, el match completo.
// Los patrones corren sobre texto sin acentos y en mayúsculas.
type RegexMap map[string][]string

// DefaultFieldMap mapa para NFe 4.00 (procNFe o NFe). tpNF queda sin mapear a propósito:
// en las compras de terceros el emisor informa tpNF=1 y la nota se leería como venta.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		Namespace: "http://www.portalfiscal.inf.br/nfe",
		Prefix:    "nfe",
		Item:      ".//nfe:infNFe/nfe:det",
		Document: map[string]string{
			FieldNumber:        ".//nfe:ide/nfe:nNF",
			FieldSeries:        ".//nfe:ide/nfe:serie",
			FieldIssuedAt:      ".//nfe:ide/nfe:dhEmi",
			FieldTotalValue:    ".//nfe:total/nfe:ICMSTot/nfe:vNF",
			FieldIssuerCNPJ:    ".//nfe:emit/nfe:CNPJ",
			FieldIssuerCPF:     ".//nfe:emit/nfe:CPF",
			FieldIssuerName:    ".//nfe:emit/nfe:xNome",
			FieldRecipientCNPJ: ".//nfe:dest/nfe:CNPJ",
			FieldRecipientCPF:  ".//nfe:dest/nfe:CPF",
			FieldRecipientName: ".//nfe:dest/nfe:xNome",
			FieldDocumentNotes: ".//nfe:infAdic/nfe:infCpl",
		},
		ItemPaths: map[string]string{
			FieldCFOP:          "nfe:prod/nfe:CFOP",
			FieldProduct:       "nfe:prod/nfe:xProd",
			FieldItemValue:     "nfe:prod/nfe:vProd",
			FieldItemNotes:     "nfe:infAdProd",
			FieldChassi:        "nfe:prod/nfe:veicProd/nfe:chassi",
			FieldAnoModelo:     "nfe:prod/nfe:veicProd/nfe:anoMod",
			FieldAnoFabricacao: "nfe:prod/nfe:veicProd/nfe:anoFab",
			FieldCor:           "nfe:prod/nfe:veicProd/nfe:xCor",
		},
	}
}

// DefaultRegexMap estrategias por defecto sobre el texto libre del ítem y, después, infCpl.
func DefaultRegexMap() RegexMap {
	return RegexMap{
		FieldChassi: {
			`CHASSI[\s:.-]*([A-HJ-NPR-Z0-9]{17})`,
			`CHASSIS[\s:.-]*([A-HJ-NPR-Z0-9]{17})`,
			`\bVIN[\s:.-]*([A-HJ-NPR-Z0-9]{17})`,
		},
		FieldPlaca: {
			`PLACA[\s:.-]*([A-Z]{3}-?[0-9][A-Z0-9][0-9]{2})`,
		},
		FieldRenavam: {
			`RENAVAM[\s:.-]*([0-9]{9,11})`,
		},
		FieldAnoModelo: {
			`\bANO[\s/]*MODELO[\s:.-]*([0-9]{4})`,
			`\bANO[\s:.-]*[0-9]{4}\s*/\s*([0-9]{4})`,
		},
		FieldAnoFabricacao: {
			`\bANO[\s/]*FABRICACAO[\s:.-]*([0-9]{4})`,
			`\bANO[\s:.-]*([0-9]{4})\s*/\s*[0-9]{4}`,
		},
		FieldCor: {
			`\bCOR[\s:.-]+([A-Z]+)`,
		},
		FieldQuilometragem: {
			`\b(?:KM|QUILOMETRAGEM|HODOMETRO)[\s:.-]*([0-9][0-9.]*)`,
		},
	}
}

// bareChassi token aislado de 17 caracteres sin I/O/Q; solo se usa si ninguna estrategia
// nombrada de chassi encontró valor.
var bareChassi = regexp.MustCompile(`(?:^|[^A-Z0-9])([A-HJ-NPR-Z0-9]{17})(?:[^A-Z0-9]|$)`)

var requiredDocumentFields = []string{FieldIssuedAt, FieldTotalValue, FieldIssuerCNPJ}

// compiledFields rutas ya compiladas; solo contiene los campos mapeados.
type compiledFields struct {
	namespace string
	item      etree.Path
	document  map[string]etree.Path
	items     map[string]etree.Path
	patterns  map[string][]*regexp.Regexp
}

func compileFields(fm FieldMap, rx RegexMap) (*compiledFields, error) {
	c := &compiledFields{
		namespace: fm.Namespace,
		document:  make(map[string]etree.Path),
		items:     make(map[string]etree.Path),
		patterns:  make(map[string][]*regexp.Regexp),
	}

	var err error
	if strings.TrimSpace(fm.Item) == "" {
		return nil, fmt.Errorf("%w: mapa de campos sin ruta de ítem", domain.ErrInvalidConfig)
	}
	if c.item, err = compilePath(fm.Prefix, "item", fm.Item); err != nil {
		return nil, err
	}
	if err := compileGroup(fm.Prefix, fm.Document, documentFields, c.document); err != nil {
		return nil, err
	}
	if err := compileGroup(fm.Prefix, fm.ItemPaths, itemFields, c.items); err != nil {
		return nil, err
	}
	for _, f := range requiredDocumentFields {
		if _, ok := c.document[f]; !ok {
			return nil, fmt.Errorf("%w: campo obligatorio %q sin ruta", domain.ErrInvalidConfig, f)
		}
	}
	if _, ok := c.items[FieldCFOP]; !ok {
		return nil, fmt.Errorf("%w: campo obligatorio %q sin ruta", domain.ErrInvalidConfig, FieldCFOP)
	}

	for _, field := range sortedNames(rx) {
		if !slices.Contains(vehicleFields, field) {
			return nil, fmt.Errorf("%w: regex para campo desconocido %q", domain.ErrInvalidConfig, field)
		}
		for i, expr := range rx[field] {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("%w: regex %s[%d]: %v", domain.ErrInvalidConfig, field, i, err)
			}
			c.patterns[field] = append(c.patterns[field], re)
		}
	}
	return c, nil
}

func compileGroup(prefix string, paths map[string]string, known []string, dst map[string]etree.Path) error {
	for _, field := range sortedNames(paths) {
		if !slices.Contains(known, field) {
			return fmt.Errorf("%w: campo desconocido %q en el mapa", domain.ErrInvalidConfig, field)
		}
		raw := strings.TrimSpace(paths[field])
		if raw == "" {
			continue
		}
		p, err := compilePath(prefix, field, raw)
		if err != nil {
			return err
		}
		dst[field] = p
	}
	return nil
}

// compilePath quita el prefijo configurado (la verificación del namespace se hace en la raíz)
// y compila la ruta. Un prefijo distinto del configurado es un error de configuración.
func compilePath(prefix, field, raw string) (etree.Path, error) {
	path := raw
	if prefix != "" {
		path = strings.ReplaceAll(path, prefix+":", "")
	}
	if strings.Contains(path, ":") {
		return etree.Path{}, fmt.Errorf("%w: ruta %s=%q con prefijo no declarado", domain.ErrInvalidConfig, field, raw)
	}
	p, err := etree.CompilePath(path)
	if err != nil {
		return etree.Path{}, fmt.Errorf("%w: ruta %s=%q: %v", domain.ErrInvalidConfig, field, raw, err)
	}
	return p, nil
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
