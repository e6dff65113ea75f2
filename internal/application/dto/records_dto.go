package dto

// RecordListResponse respuesta de GET /api/records/:kind.
type RecordListResponse struct {
	Kind  string           `json:"kind"`
	Items []map[string]any `json:"items"`
	Page  PageResponse     `json:"page"`
	Empty bool             `json:"empty"`
}

// RecordResponse respuesta de lectura o alta de un registro.
type RecordResponse struct {
	Kind string         `json:"kind"`
	Item map[string]any `json:"item"`
}
