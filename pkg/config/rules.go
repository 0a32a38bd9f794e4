package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Archivos de reglas dentro de FISCAL_CONFIG_DIR.
const (
	FieldsFile         = "campos_nfe.json"
	RegexFile          = "regex_veiculos.json"
	CompaniesFile      = "empresas.json"
	ClassificationFile = "classificacao_produto.json"
)

// Rules reglas fiscales tal como vienen de los archivos JSON.
// Una sección nil indica que el archivo no existe y se usan los valores por defecto.
type Rules struct {
	Fields         *FieldsRules
	Regex          *RegexRules
	Companies      []CompanyRule
	Classification ClassificationRules
}

// FieldsRules mapa de campos calificado por namespace (campos_nfe.json).
type FieldsRules struct {
	Namespace struct {
		Prefix string `mapstructure:"prefixo"`
		URI    string `mapstructure:"uri"`
	} `mapstructure:"namespace"`
	Item     string            `mapstructure:"item"`
	Document map[string]string `mapstructure:"documento"`
	ItemPath map[string]string `mapstructure:"campos_item"`
}

// RegexRules estrategias de extracción y validadores (regex_veiculos.json).
type RegexRules struct {
	Extraction map[string][]string `mapstructure:"extracao"`
	Validators struct {
		Chassi        string `mapstructure:"chassi"`
		PlacaAntiga   string `mapstructure:"placa_antiga"`
		PlacaMercosul string `mapstructure:"placa_mercosul"`
		Renavam       string `mapstructure:"renavam"`
	} `mapstructure:"validadores"`
}

// CompanyRule empresa del grupo (empresas.json).
type CompanyRule struct {
	CNPJ       string   `mapstructure:"cnpj"`
	Name       string   `mapstructure:"nome"`
	TradeNames []string `mapstructure:"nomes_proprios"`
}

// ClassificationRules listas de la heurística de producto (classificacao_produto.json).
type ClassificationRules struct {
	VehicleKeywords []string `mapstructure:"veiculo_keywords"`
	Blacklist       []string `mapstructure:"blacklist"`
}

// LoadRules lee los cuatro archivos de reglas del directorio. Un archivo ausente no es
// error; un archivo ilegible o mal formado sí.
func LoadRules(dir string) (*Rules, error) {
	r := &Rules{}

	var fields FieldsRules
	ok, err := readJSON(dir, FieldsFile, &fields)
	if err != nil {
		return nil, err
	}
	if ok {
		r.Fields = &fields
	}

	var rx RegexRules
	if ok, err = readJSON(dir, RegexFile, &rx); err != nil {
		return nil, err
	}
	if ok {
		r.Regex = &rx
	}

	var companies struct {
		Companies []CompanyRule `mapstructure:"empresas"`
	}
	if _, err = readJSON(dir, CompaniesFile, &companies); err != nil {
		return nil, err
	}
	r.Companies = companies.Companies

	if _, err = readJSON(dir, ClassificationFile, &r.Classification); err != nil {
		return nil, err
	}
	return r, nil
}

func readJSON(dir, name string, out any) (bool, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("config: %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return false, fmt.Errorf("config: leer %s: %w", path, err)
	}
	if err := v.Unmarshal(out); err != nil {
		return false, fmt.Errorf("config: decodificar %s: %w", path, err)
	}
	return true, nil
}
