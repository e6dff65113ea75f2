package dto

import "github.com/shopspring/decimal"

// CountByDTO número de registros con un valor concreto de un campo.
type CountByDTO struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FormacionSummaryDTO respuesta de GET /api/dashboard/formacion.
type FormacionSummaryDTO struct {
	Participants         int             `json:"participants"`
	ParticipantsByStatus []CountByDTO    `json:"participants_by_status"`
	GroupsByMonth        []BucketDTO     `json:"groups_by_month"` // grupos por fecha_inicio
	ActionsByYear        []BucketDTO     `json:"actions_by_year"` // acciones formativas por fecha_alta
	GroupsAmount         decimal.Decimal `json:"groups_amount"`   // suma de importe de grupos
	UrgentGroups         []UrgentItemDTO `json:"urgent_groups"`   // fecha_fin, fecha_justificacion
	DateLabel            string          `json:"date_label"`      // ej: "Octubre 2026"
	Empty                bool            `json:"empty"`
}

// CRMSummaryDTO respuesta de GET /api/dashboard/crm.
type CRMSummaryDTO struct {
	OpenOpportunities int             `json:"open_opportunities"`
	WonByMonth        []BucketDTO     `json:"won_by_month"` // importe ganado por fecha_cierre
	WonAmount         decimal.Decimal `json:"won_amount"`
	AgentRanking      []RankedDTO     `json:"agent_ranking"` // importe por comercial_id
	UrgentTasks       []UrgentItemDTO `json:"urgent_tasks"`
	DateLabel         string          `json:"date_label"`
	Empty             bool            `json:"empty"`
}

// CalidadSummaryDTO respuesta de GET /api/dashboard/calidad (módulo ISO).
type CalidadSummaryDTO struct {
	OpenNonConformities int             `json:"open_non_conformities"`
	NonConformByMonth   []BucketDTO     `json:"non_conformities_by_month"`
	UrgentNonConform    []UrgentItemDTO `json:"urgent_non_conformities"`
	UrgentAudits        []UrgentItemDTO `json:"urgent_audits"`
	DateLabel           string          `json:"date_label"`
	Empty               bool            `json:"empty"`
}

// RGPDSummaryDTO respuesta de GET /api/dashboard/rgpd.
type RGPDSummaryDTO struct {
	PendingRequests int             `json:"pending_requests"`
	RequestsByMonth []BucketDTO     `json:"requests_by_month"`
	RequestsByType  []RankedDTO     `json:"requests_by_type"`
	NearDeadline    []UrgentItemDTO `json:"near_deadline"`
	DateLabel       string          `json:"date_label"`
	Empty           bool            `json:"empty"`
}
