package core

import "time"

// Derived entities. They are recomputed per request and never persisted.

// KPISnapshot holds the top-level dashboard summary metrics
type KPISnapshot struct {
	TotalSalesAllTime  float64 `json:"ventasTotales"`
	Avg30DayDailySales float64 `json:"promedioMensual"`
	CurrentMonthSales  float64 `json:"ventasMesActual"`
	PreviousMonthSales float64 `json:"ventasMesAnterior"`
	MoMPercentChange   float64 `json:"comparativa"`
	TransactionCount   int64   `json:"totalTransacciones"`
	BranchCount        int64   `json:"totalSucursales"`
	ProductCount       int64   `json:"totalProductos"`
}

// Tier is the traffic-light classification of a branch's share of sales
type Tier string

const (
	TierExcellent Tier = "Excelente"
	TierGood      Tier = "Bueno"
	TierLow       Tier = "Bajo"
)

// TierColor is the color shown next to a Tier
type TierColor string

const (
	TierColorGreen  TierColor = "verde"
	TierColorYellow TierColor = "amarillo"
	TierColorRed    TierColor = "rojo"
)

// RankedBranch is a branch positioned in the sales ranking
type RankedBranch struct {
	ID             int64     `json:"id"`
	Name           string    `json:"nombre"`
	Location       string    `json:"ubicacion"`
	TotalSales     float64   `json:"ventasTotales"`
	SaleCount      int64     `json:"numeroCompras"`
	AvgTicket      float64   `json:"ticketPromedio"`
	SalesTarget    float64   `json:"metaVentas"`
	Rank           int       `json:"ranking"`
	PercentOfTotal float64   `json:"porcentajeDelTotal"`
	Tier           Tier      `json:"estado"`
	TierColor      TierColor `json:"color"`
}

// CategorySales aggregates line items per product category
type CategorySales struct {
	Category  string  `json:"categoria"`
	SaleCount int64   `json:"numeroVentas"`
	UnitsSold int64   `json:"unidadesVendidas"`
	Revenue   float64 `json:"ingresoTotal"`
}

// ProductSales aggregates line items per product
type ProductSales struct {
	ID               int64   `json:"id"`
	Name             string  `json:"nombre"`
	Category         string  `json:"categoria"`
	UnitPrice        float64 `json:"precioUnitario"`
	UnitsSold        int64   `json:"unidadesVendidas"`
	Revenue          float64 `json:"ingresoTotal"`
	TransactionCount int64   `json:"numeroTransacciones"`
}

// PeriodBucket is one point of a sales time series
type PeriodBucket struct {
	PeriodKey        string  `json:"fecha"`
	TotalSales       float64 `json:"totalVentas"`
	TransactionCount int64   `json:"numeroTransacciones"`
	AvgTicket        float64 `json:"ticketPromedio"`
}

// SellerDetail composes the seller record with their activity inside a window
type SellerDetail struct {
	Seller   Seller          `json:"vendedor"`
	Stats    SellerStats     `json:"stats"`
	Products []SellerProduct `json:"productos"`
}

// SellerStats are the scalar aggregates of a seller's activity
type SellerStats struct {
	SaleCount        int64      `json:"numeroVentas"`
	TotalSales       float64    `json:"ventasTotales"`
	AvgTicket        float64    `json:"ticketPromedio"`
	DistinctProducts int64      `json:"productosDistintos"`
	UnitsSold        int64      `json:"unidadesVendidas"`
	FirstSale        *time.Time `json:"primeraVenta"`
	LastSale         *time.Time `json:"ultimaVenta"`
	BranchSales      float64    `json:"ventasSucursal"`
	BranchShare      float64    `json:"participacionSucursal"`
}

// SellerProduct is one entry of a seller's product breakdown
type SellerProduct struct {
	ID        int64   `json:"id"`
	Name      string  `json:"nombre"`
	Category  string  `json:"categoria"`
	UnitsSold int64   `json:"unidadesVendidas"`
	Revenue   float64 `json:"ingresoTotal"`
}

// BranchShare is a branch's slice of total sales in the statistics rollup
type BranchShare struct {
	ID            int64   `json:"id"`
	Name          string  `json:"nombre"`
	SellerCount   int64   `json:"numeroVendedores"`
	StockTotal    int64   `json:"stockTotal"`
	ProductCount  int64   `json:"numeroProductos"`
	TotalSales    float64 `json:"ventasTotales"`
	SaleCount     int64   `json:"numeroVentas"`
	Participation float64 `json:"porcentajeParticipacion"`
}

// MonthlySales is one month of the branch statistics trend
type MonthlySales struct {
	Period     string  `json:"periodo"`
	Label      string  `json:"etiqueta"`
	TotalSales float64 `json:"totalVentas"`
	SaleCount  int64   `json:"numeroVentas"`
}

// BranchStats is the branch-level statistics rollup
type BranchStats struct {
	BranchCount          int64          `json:"totalSucursales"`
	BranchesWithSales    int64          `json:"sucursalesConVentas"`
	BranchesWithoutSales int64          `json:"sucursalesSinVentas"`
	SellerCount          int64          `json:"totalVendedores"`
	StockTotal           int64          `json:"totalProductosEnStock"`
	TotalSales           float64        `json:"ventasTotales"`
	LastMonthSales       float64        `json:"ventasUltimoMes"`
	AvgSalesPerBranch    float64        `json:"promedioVentasSucursal"`
	LastMonthAvgTicket   float64        `json:"ticketPromedioUltimoMes"`
	LastMonthSaleCount   int64          `json:"transaccionesUltimoMes"`
	BestBranch           *BranchShare   `json:"mejorSucursal"`
	WorstBranch          *BranchShare   `json:"sucursalConMenorVentas"`
	SalesByBranch        []BranchShare  `json:"ventasPorSucursal"`
	MonthlySales         []MonthlySales `json:"ventasMensuales"`
}

// DomainShare is one email domain in the user statistics rollup
type DomainShare struct {
	Domain  string  `json:"dominio"`
	Count   int64   `json:"cantidad"`
	Percent float64 `json:"porcentaje"`
}

// UserStats is the user statistics rollup
type UserStats struct {
	TotalUsers        int64         `json:"totalUsuarios"`
	NewLastWeek       int64         `json:"nuevosUltimaSemana"`
	NewLastMonth      int64         `json:"nuevosUltimoMes"`
	NewPreviousMonth  int64         `json:"nuevosMesAnterior"`
	MonthlyGrowth     float64       `json:"crecimientoMensual"`
	AvgAccountAgeDays float64       `json:"promedioAntiguedadDias"`
	UsersWithoutEmail int64         `json:"usuariosSinEmail"`
	Newest            *User         `json:"usuarioMasReciente"`
	Oldest            *User         `json:"usuarioMasAntiguo"`
	TopDomains        []DomainShare `json:"dominiosPrincipales"`
}
