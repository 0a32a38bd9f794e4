// Package nfe lee los XML de NFe (modelo 55) y los aplana en documentos fiscales por ítem.
package nfe

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/nfe"
)

// Extractor extrae un FiscalDocument por cada det de la NFe.
// Es seguro para uso concurrente: solo lee la configuración compilada.
type Extractor struct {
	fields *compiledFields
}

// NewExtractor compila el mapa de campos y las regex. Cualquier ruta o patrón inválido
// devuelve domain.ErrInvalidConfig.
func NewExtractor(fm FieldMap, rx RegexMap) (*Extractor, error) {
	c, err := compileFields(fm, rx)
	if err != nil {
		return nil, err
	}
	return &Extractor{fields: c}, nil
}

// Extract lee una NFe desde r. name identifica el documento en los errores.
// Un XML mal formado o de otro namespace descarta el documento completo (ErrParse);
// un campo obligatorio ausente descarta el documento o solo el ítem (ErrMissingRequiredField).
func (x *Extractor) Extract(name string, r io.Reader) ([]*entity.FiscalDocument, []*domain.DocumentError) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, docError(name, 0, "", fmt.Errorf("%w: %v", domain.ErrParse, err))
	}
	root := doc.Root()
	if root == nil {
		return nil, docError(name, 0, "", fmt.Errorf("%w: documento sin raíz", domain.ErrParse))
	}
	if ns := x.fields.namespace; ns != "" && root.NamespaceURI() != ns {
		return nil, docError(name, 0, "", fmt.Errorf("%w: namespace %q", domain.ErrParse, root.NamespaceURI()))
	}

	header, derr := x.header(name, root)
	if derr != nil {
		return nil, []*domain.DocumentError{derr}
	}

	items := root.FindElementsPath(x.fields.item)
	if len(items) == 0 {
		return nil, docError(name, 0, "det", domain.ErrMissingRequiredField)
	}

	var (
		docs []*entity.FiscalDocument
		errs []*domain.DocumentError
	)
	for i, item := range items {
		d, derr := x.item(name, i+1, item, header)
		if derr != nil {
			errs = append(errs, derr)
			continue
		}
		docs = append(docs, d)
	}
	return docs, errs
}

// header datos comunes a todos los ítems de la nota.
func (x *Extractor) header(name string, root *etree.Element) (*entity.FiscalDocument, *domain.DocumentError) {
	get := func(field string) string { return find(root, x.fields.document, field) }

	h := &entity.FiscalDocument{
		SourcePath:    name,
		Number:        get(FieldNumber),
		Series:        get(FieldSeries),
		NoteType:      get(FieldNoteType),
		IssuerName:    get(FieldIssuerName),
		RecipientName: get(FieldRecipientName),
	}

	rawDate := get(FieldIssuedAt)
	if rawDate == "" {
		return nil, &domain.DocumentError{Path: name, Field: FieldIssuedAt, Err: domain.ErrMissingRequiredField}
	}
	issued, err := parseIssuedAt(rawDate)
	if err != nil {
		return nil, &domain.DocumentError{Path: name, Field: FieldIssuedAt, Err: fmt.Errorf("%w: %v", domain.ErrParse, err)}
	}
	h.IssuedAt = issued

	rawTotal := get(FieldTotalValue)
	if rawTotal == "" {
		return nil, &domain.DocumentError{Path: name, Field: FieldTotalValue, Err: domain.ErrMissingRequiredField}
	}
	if h.TotalValue, err = decimal.NewFromString(rawTotal); err != nil {
		return nil, &domain.DocumentError{Path: name, Field: FieldTotalValue, Err: fmt.Errorf("%w: %v", domain.ErrParse, err)}
	}

	h.IssuerTaxID = nfe.OnlyDigits(firstNonEmpty(get(FieldIssuerCNPJ), get(FieldIssuerCPF)))
	if h.IssuerTaxID == "" {
		return nil, &domain.DocumentError{Path: name, Field: FieldIssuerCNPJ, Err: domain.ErrMissingRequiredField}
	}
	h.RecipientTaxID = nfe.OnlyDigits(firstNonEmpty(get(FieldRecipientCNPJ), get(FieldRecipientCPF)))
	h.Notes = get(FieldDocumentNotes)
	return h, nil
}

func (x *Extractor) item(name string, pos int, el *etree.Element, header *entity.FiscalDocument) (*entity.FiscalDocument, *domain.DocumentError) {
	get := func(field string) string { return find(el, x.fields.items, field) }

	nItem := pos
	if v, err := strconv.Atoi(el.SelectAttrValue("nItem", "")); err == nil && v > 0 {
		nItem = v
	}

	d := *header
	d.ItemNumber = nItem
	d.CFOP = get(FieldCFOP)
	if d.CFOP == "" {
		return nil, &domain.DocumentError{Path: name, Item: nItem, Field: FieldCFOP, Err: domain.ErrMissingRequiredField}
	}
	d.Product = get(FieldProduct)
	if raw := get(FieldItemValue); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, &domain.DocumentError{Path: name, Item: nItem, Field: FieldItemValue, Err: fmt.Errorf("%w: %v", domain.ErrParse, err)}
		}
		d.ItemValue = &v
	}

	d.ItemNotes = get(FieldItemNotes)
	d.Notes = joinNonEmpty(d.ItemNotes, header.Notes)

	itemText := nfe.Fold(d.ItemText())
	noteText := nfe.Fold(header.Notes)
	for _, field := range vehicleFields {
		val := get(field)
		if val == "" {
			val = x.match(field, itemText)
		}
		if val == "" {
			if val = x.match(field, noteText); val != "" {
				switch field {
				case FieldChassi:
					d.ChassiInherited = true
				case FieldPlaca:
					d.PlacaInherited = true
				}
			}
		}
		*attribute(&d.Vehicle, field) = val
	}
	// token aislado de 17 caracteres: primero en el ítem, después en infCpl
	if d.Vehicle.Chassi == "" {
		if m := bareChassi.FindStringSubmatch(itemText); m != nil {
			d.Vehicle.Chassi = m[1]
		} else if m := bareChassi.FindStringSubmatch(noteText); m != nil {
			d.Vehicle.Chassi = m[1]
			d.ChassiInherited = true
		}
	}
	return &d, nil
}

// match aplica las estrategias en orden; la primera con valor no vacío gana.
func (x *Extractor) match(field, text string) string {
	if text == "" {
		return ""
	}
	for _, re := range x.fields.patterns[field] {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) == 1 {
			if v := strings.TrimSpace(m[0]); v != "" {
				return v
			}
			continue
		}
		for _, g := range m[1:] {
			if v := strings.TrimSpace(g); v != "" {
				return v
			}
		}
	}
	return ""
}

func attribute(v *entity.VehicleAttributes, field string) *string {
	switch field {
	case FieldChassi:
		return &v.Chassi
	case FieldPlaca:
		return &v.Placa
	case FieldRenavam:
		return &v.Renavam
	case FieldAnoModelo:
		return &v.AnoModelo
	case FieldAnoFabricacao:
		return &v.AnoFabricacao
	case FieldCor:
		return &v.Cor
	case FieldQuilometragem:
		return &v.Quilometragem
	}
	panic("nfe: atributo de vehículo desconocido " + field)
}

func find(el *etree.Element, paths map[string]etree.Path, field string) string {
	p, ok := paths[field]
	if !ok {
		return ""
	}
	found := el.FindElementPath(p)
	if found == nil {
		return ""
	}
	return strings.TrimSpace(found.Text())
}

// parseIssuedAt acepta dhEmi (RFC 3339, layout 3.10+) y dEmi (solo fecha, layout 2.00).
func parseIssuedAt(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha de emisión %q", s)
}

// charsetReader decodifica XML declarados en Latin-1 (emisores antiguos).
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("charset no soportado: %s", label)
}

func docError(name string, item int, field string, err error) []*domain.DocumentError {
	return []*domain.DocumentError{{Path: name, Item: item, Field: field, Err: err}}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
