// Package analytics contiene los casos de uso de agregación: consultas ad-hoc sobre una
// colección y los paneles por área. Los datos llegan siempre por records.UseCase, de modo
// que el alcance del principal se aplica antes de agregar.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/records"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/access"
	"github.com/jhoicas/Gestion-api/internal/domain/aggregation"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// Options parámetros comunes de los casos de uso de agregación.
type Options struct {
	Location   *time.Location   // zona en la que se calcula "hoy"; nil = UTC
	WindowDays int              // ventana de urgencia; <= 0 usa aggregation.DefaultWindowDays
	Now        func() time.Time // nil = time.Now
	MaxRows    int              // filas máximas por colección agregada; <= 0 sin tope
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o Options) today() time.Time {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	loc := o.location()
	return entity.CalendarDay(now().In(loc), loc)
}

func (o Options) window() int {
	if o.WindowDays <= 0 {
		return aggregation.DefaultWindowDays
	}
	return o.WindowDays
}

// fetchRows lee las filas visibles a agregar. Con MaxRows pide una fila de más para
// detectar el exceso y rechaza la consulta en lugar de agregar un resultado truncado.
func fetchRows(ctx context.Context, rec *records.UseCase, o Options, p entity.Principal, kind string, filters []repository.Filter) ([]entity.Record, error) {
	params := records.FetchParams{Filters: filters}
	if o.MaxRows > 0 {
		params.Limit = o.MaxRows + 1
	}
	rows, err := rec.Fetch(ctx, p, kind, params)
	if err != nil {
		return nil, err
	}
	if o.MaxRows > 0 && len(rows) > o.MaxRows {
		return nil, fmt.Errorf("%w: %s supera %d filas; acote la consulta con filtros", domain.ErrAggregationInput, kind, o.MaxRows)
	}
	return rows, nil
}

// UseCase agregaciones ad-hoc sobre una colección.
type UseCase struct {
	records *records.UseCase
	opts    Options
}

// NewUseCase construye el caso de uso.
func NewUseCase(rec *records.UseCase, opts Options) *UseCase {
	return &UseCase{records: rec, opts: opts}
}

// Count cuenta los registros visibles con field = value.
func (uc *UseCase) Count(ctx context.Context, p entity.Principal, kind string, req dto.CountRequest) (*dto.CountResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	k, err := uc.kind(kind, req.Field)
	if err != nil {
		return nil, err
	}
	rows, err := fetchRows(ctx, uc.records, uc.opts, p, k.Name, eqFilters(req.Filters))
	if err != nil {
		return nil, err
	}
	n := aggregation.CountBy(rows, req.Field, req.Value)
	return &dto.CountResponse{
		Kind:    k.Name,
		Field:   req.Field,
		Value:   req.Value,
		Count:   n,
		Scanned: len(rows),
		Empty:   len(rows) == 0,
	}, nil
}

// Buckets serie por mes o año sobre date_field. from/to acotan el rango (inclusivo).
func (uc *UseCase) Buckets(ctx context.Context, p entity.Principal, kind string, req dto.BucketsRequest) (*dto.BucketsResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	g, err := aggregation.ParseGranularity(req.Granularity)
	if err != nil {
		return nil, err
	}
	fn, err := aggregation.ParseMetricFn(req.Fn)
	if err != nil {
		return nil, err
	}
	k, err := uc.kind(kind, req.DateField, req.MetricField)
	if err != nil {
		return nil, err
	}

	filters := eqFilters(req.Filters)
	if req.From != "" {
		filters = append(filters, repository.Filter{Field: req.DateField, Op: repository.OpGte, Value: req.From})
	}
	if req.To != "" {
		filters = append(filters, repository.Filter{Field: req.DateField, Op: repository.OpLte, Value: req.To})
	}
	rows, err := fetchRows(ctx, uc.records, uc.opts, p, k.Name, filters)
	if err != nil {
		return nil, err
	}

	buckets, err := aggregation.BucketByTime(rows, req.DateField, g, req.MetricField, fn, uc.opts.location())
	if err != nil {
		return nil, err
	}
	total, err := aggregation.Total(rows, req.MetricField, fn)
	if err != nil {
		return nil, err
	}
	return &dto.BucketsResponse{
		Kind:        k.Name,
		Granularity: string(g),
		Fn:          string(fn),
		Buckets:     toBucketDTOs(buckets),
		Total:       total,
		Empty:       len(buckets) == 0,
	}, nil
}

// Ranking agrupa por group_field y ordena de mayor a menor. top_n recorta la salida.
func (uc *UseCase) Ranking(ctx context.Context, p entity.Principal, kind string, req dto.RankingRequest) (*dto.RankingResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	fn, err := aggregation.ParseMetricFn(req.Fn)
	if err != nil {
		return nil, err
	}
	k, err := uc.kind(kind, req.GroupField, req.MetricField)
	if err != nil {
		return nil, err
	}
	rows, err := fetchRows(ctx, uc.records, uc.opts, p, k.Name, eqFilters(req.Filters))
	if err != nil {
		return nil, err
	}
	ranked, err := aggregation.RankBy(rows, req.GroupField, req.MetricField, fn)
	if err != nil {
		return nil, err
	}
	return &dto.RankingResponse{
		Kind:    k.Name,
		Fn:      string(fn),
		Ranking: toRankedDTOs(ranked, req.TopN),
		Empty:   len(ranked) == 0,
	}, nil
}

// Urgent registros con algún vencimiento en [hoy, hoy+ventana].
func (uc *UseCase) Urgent(ctx context.Context, p entity.Principal, kind string, req dto.UrgentRequest) (*dto.UrgentResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	k, err := uc.kind(kind, req.Fields...)
	if err != nil {
		return nil, err
	}
	fields := req.Fields
	if len(fields) == 0 {
		fields = k.DeadlineFields
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s no declara campos de vencimiento", domain.ErrAggregationInput, k.Name)
	}
	window := uc.opts.window()
	if req.WindowDays != nil {
		window = *req.WindowDays
	}

	rows, err := fetchRows(ctx, uc.records, uc.opts, p, k.Name, eqFilters(req.Filters))
	if err != nil {
		return nil, err
	}
	today := uc.opts.today()
	items := toUrgentDTOs(aggregation.FindUrgent(rows, fields, today, window))
	return &dto.UrgentResponse{
		Kind:       k.Name,
		Today:      today.Format(dateLayout),
		WindowDays: window,
		Items:      items,
		Empty:      len(items) == 0,
	}, nil
}

// kind busca la colección y comprueba que los campos nombrados estén declarados.
// Una colección desconocida se trata igual que en el resolvedor: sin alcance.
func (uc *UseCase) kind(name string, fields ...string) (*access.Kind, error) {
	k := uc.records.Kind(name)
	if k == nil {
		return nil, fmt.Errorf("%w: colección %q sin alcance definido", domain.ErrUnauthorized, name)
	}
	for _, f := range fields {
		if f != "" && !k.HasColumn(f) {
			return nil, fmt.Errorf("%w: columna desconocida %q en %s", domain.ErrAggregationInput, f, k.Name)
		}
	}
	return k, nil
}

// eqFilters igualdades en orden de clave para que la consulta sea determinista.
func eqFilters(m map[string]string) []repository.Filter {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]repository.Filter, 0, len(keys))
	for _, k := range keys {
		out = append(out, repository.Eq(k, m[k]))
	}
	return out
}
