package dto

import "github.com/shopspring/decimal"

// ── Peticiones ────────────────────────────────────────────────────────────────

// CountRequest cuerpo de POST /api/analytics/:kind/count.
type CountRequest struct {
	Field   string            `json:"field" validate:"required,max=63"`
	Value   string            `json:"value" validate:"required"`
	Filters map[string]string `json:"filters" validate:"omitempty,max=20"`
}

// BucketsRequest cuerpo de POST /api/analytics/:kind/buckets.
type BucketsRequest struct {
	DateField   string            `json:"date_field" validate:"required,max=63"`
	Granularity string            `json:"granularity" validate:"required"` // MONTH | YEAR
	MetricField string            `json:"metric_field" validate:"omitempty,max=63"`
	Fn          string            `json:"fn" validate:"required"` // COUNT | SUM
	From        string            `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To          string            `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Filters     map[string]string `json:"filters" validate:"omitempty,max=20"`
}

// RankingRequest cuerpo de POST /api/analytics/:kind/ranking.
type RankingRequest struct {
	GroupField  string            `json:"group_field" validate:"required,max=63"`
	MetricField string            `json:"metric_field" validate:"omitempty,max=63"`
	Fn          string            `json:"fn" validate:"required"`
	TopN        int               `json:"top_n" validate:"omitempty,min=1,max=100"` // 0 = todos
	Filters     map[string]string `json:"filters" validate:"omitempty,max=20"`
}

// UrgentRequest cuerpo de POST /api/analytics/:kind/urgent.
// Sin Fields se usan los campos de vencimiento declarados para la colección.
type UrgentRequest struct {
	Fields     []string          `json:"fields" validate:"omitempty,max=5,dive,required,max=63"`
	WindowDays *int              `json:"window_days" validate:"omitempty,min=0,max=365"`
	Filters    map[string]string `json:"filters" validate:"omitempty,max=20"`
}

// ── Respuestas ────────────────────────────────────────────────────────────────

// CountResponse número de filas del ámbito con field = value.
type CountResponse struct {
	Kind    string `json:"kind"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Count   int    `json:"count"`
	Scanned int    `json:"scanned"` // filas visibles evaluadas
	Empty   bool   `json:"empty"`
}

// BucketDTO valor de un periodo (YYYY-MM o YYYY).
type BucketDTO struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
}

// BucketsResponse serie temporal ordenada por periodo.
type BucketsResponse struct {
	Kind        string          `json:"kind"`
	Granularity string          `json:"granularity"`
	Fn          string          `json:"fn"`
	Buckets     []BucketDTO     `json:"buckets"`
	Total       decimal.Decimal `json:"total"`
	Empty       bool            `json:"empty"`
}

// RankedDTO posición de un grupo en el ranking.
type RankedDTO struct {
	Rank  int             `json:"rank"` // 1 = mayor valor
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
}

// RankingResponse grupos ordenados de mayor a menor.
type RankingResponse struct {
	Kind    string      `json:"kind"`
	Fn      string      `json:"fn"`
	Ranking []RankedDTO `json:"ranking"`
	Empty   bool        `json:"empty"`
}

// UrgentItemDTO registro con un vencimiento dentro de la ventana.
type UrgentItemDTO struct {
	Record   map[string]any `json:"record"`
	Field    string         `json:"field"`
	Deadline string         `json:"deadline"` // YYYY-MM-DD
	DaysLeft int            `json:"days_left"`
}

// UrgentResponse vencimientos próximos en [today, today+window_days].
type UrgentResponse struct {
	Kind       string          `json:"kind"`
	Today      string          `json:"today"`
	WindowDays int             `json:"window_days"`
	Items      []UrgentItemDTO `json:"items"`
	Empty      bool            `json:"empty"`
}
