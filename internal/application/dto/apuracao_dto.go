package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApuracaoSummaryResponse item del listado de apurações.
type ApuracaoSummaryResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Files     int       `json:"arquivos"`
	Documents int       `json:"documentos"`
	InStock   int       `json:"em_estoque"`
	Sold      int       `json:"vendidos"`
	Errors    int       `json:"erros"`
	Alerts    int       `json:"alertas"`
	Pending   int       `json:"pendencias"`
}

// ApuracaoListResponse lista paginada de apurações.
type ApuracaoListResponse struct {
	Items []ApuracaoSummaryResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// VehicleResponse atributos del vehículo.
type VehicleResponse struct {
	Chassi        string `json:"chassi,omitempty"`
	Placa         string `json:"placa,omitempty"`
	Renavam       string `json:"renavam,omitempty"`
	AnoModelo     string `json:"ano_modelo,omitempty"`
	AnoFabricacao string `json:"ano_fabricacao,omitempty"`
	Cor           string `json:"cor,omitempty"`
	Quilometragem string `json:"quilometragem,omitempty"`
}

// DocumentResponse documento fiscal resumido.
type DocumentResponse struct {
	Arquivo          string          `json:"arquivo"`
	Item             int             `json:"item"`
	Numero           string          `json:"numero"`
	Serie            string          `json:"serie,omitempty"`
	DataEmissao      time.Time       `json:"data_emissao"`
	CFOP             string          `json:"cfop"`
	EmitenteCNPJ     string          `json:"emitente_cnpj,omitempty"`
	EmitenteNome     string          `json:"emitente_nome,omitempty"`
	DestinatarioCNPJ string          `json:"destinatario_cnpj,omitempty"`
	DestinatarioNome string          `json:"destinatario_nome,omitempty"`
	Produto          string          `json:"produto"`
	Valor            decimal.Decimal `json:"valor"`
	Sentido          string          `json:"sentido"`
	Veiculo          VehicleResponse `json:"veiculo"`
}

// LedgerEntryResponse línea del estoque fiscal.
type LedgerEntryResponse struct {
	Chave       string            `json:"chave"`
	Ciclo       int               `json:"ciclo"`
	Situacao    string            `json:"situacao"`
	Entrada     *DocumentResponse `json:"entrada,omitempty"`
	Saida       *DocumentResponse `json:"saida,omitempty"`
	ValorCompra *decimal.Decimal  `json:"valor_compra,omitempty"`
	ValorVenda  *decimal.Decimal  `json:"valor_venda,omitempty"`
	Lucro       *decimal.Decimal  `json:"lucro,omitempty"`
	DataEntrada *time.Time        `json:"data_entrada,omitempty"`
	DataSaida   *time.Time        `json:"data_saida,omitempty"`
	DiasEstoque *int              `json:"dias_em_estoque,omitempty"`
}

// AlertResponse alerta de auditoría.
type AlertResponse struct {
	Tipo        string    `json:"tipo"`
	Gravidade   string    `json:"gravidade"`
	Sentido     string    `json:"sentido"`
	NumeroNota  string    `json:"numero_nota"`
	Chave       string    `json:"chave"`
	DataEmissao time.Time `json:"data_emissao"`
	Excluido    bool      `json:"excluido"`
}

// QuarterResponse apuração de un trimestre (valores redondeados a 2 decimales).
type QuarterResponse struct {
	Trimestre        string          `json:"trimestre"`
	VeiculosVendidos int             `json:"veiculos_vendidos"`
	Lucro            decimal.Decimal `json:"lucro"`
	ICMS             decimal.Decimal `json:"icms"`
	PISCOFINS        decimal.Decimal `json:"pis_cofins"`
	BaseIRPJCSLL     decimal.Decimal `json:"base_irpj_csll"`
	IRPJ             decimal.Decimal `json:"irpj"`
	IRPJAdicional    decimal.Decimal `json:"irpj_adicional"`
	CSLL             decimal.Decimal `json:"csll"`
	TotalTributos    decimal.Decimal `json:"total_tributos"`
	LucroLiquido     decimal.Decimal `json:"lucro_liquido"`
}

// KPIResponse indicadores del estoque.
type KPIResponse struct {
	TotalVendido decimal.Decimal `json:"total_vendido"`
	LucroTotal   decimal.Decimal `json:"lucro_total"`
	ValorEstoque decimal.Decimal `json:"valor_estoque"`
	EmEstoque    int             `json:"em_estoque"`
	Vendidos     int             `json:"vendidos"`
	Erros        int             `json:"erros"`
}

// StaleVehicleResponse vehículo parado en estoque.
type StaleVehicleResponse struct {
	Chave       string `json:"chave"`
	NumeroNota  string `json:"numero_nota"`
	Produto     string `json:"produto"`
	DiasEstoque int    `json:"dias_em_estoque"`
}

// AgingResponse antigüedad del estoque a la fecha de referencia.
type AgingResponse struct {
	Referencia time.Time              `json:"referencia"`
	Limite     int                    `json:"limite_dias"`
	Veiculos   int                    `json:"veiculos"`
	MediaDias  decimal.Decimal        `json:"media_dias"`
	MaxDias    int                    `json:"max_dias"`
	MinDias    int                    `json:"min_dias"`
	Parados    []StaleVehicleResponse `json:"parados"`
}

// MonthlyResponse movimiento de un mes ("2024-03").
type MonthlyResponse struct {
	Mes       string          `json:"mes"`
	Veiculos  int             `json:"veiculos"`
	EmEstoque int             `json:"em_estoque"`
	Compras   decimal.Decimal `json:"compras"`
	Vendas    decimal.Decimal `json:"vendas"`
	Lucro     decimal.Decimal `json:"lucro"`
}

// IssueResponse XML o ítem descartado en la extracción.
type IssueResponse struct {
	Arquivo  string `json:"arquivo"`
	Item     int    `json:"item,omitempty"`
	Campo    string `json:"campo,omitempty"`
	Mensagem string `json:"mensagem"`
}

// PeriodResponse filtro aplicado (0 = sin filtro).
type PeriodResponse struct {
	Ano int `json:"ano"`
	Mes int `json:"mes"`
}

// ApuracaoResponse detalle de una apuração, opcionalmente filtrada por período.
type ApuracaoResponse struct {
	ID               string                `json:"id"`
	CreatedAt        time.Time             `json:"created_at"`
	Arquivos         int                   `json:"arquivos"`
	Documentos       int                   `json:"documentos"`
	Periodo          PeriodResponse        `json:"periodo"`
	AnosDisponiveis  []int                 `json:"anos_disponiveis"`
	MesesDisponiveis []int                 `json:"meses_disponiveis"`
	KPIs             KPIResponse           `json:"kpis"`
	IdadeEstoque     AgingResponse         `json:"idade_estoque"`
	Estoque          []LedgerEntryResponse `json:"estoque"`
	Alertas          []AlertResponse       `json:"alertas"`
	Trimestres       []QuarterResponse     `json:"trimestres"`
	ResumoMensal     []MonthlyResponse     `json:"resumo_mensal"`
	Indeterminados   []DocumentResponse    `json:"indeterminados"`
	SemIdentificacao []DocumentResponse    `json:"sem_identificacao"`
	Descartados      []IssueResponse       `json:"descartados"`
	CamposAnulados   int                   `json:"campos_anulados"`
}
