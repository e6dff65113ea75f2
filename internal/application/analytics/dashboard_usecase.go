package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/records"
	"github.com/jhoicas/Gestion-api/internal/domain/aggregation"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

const dashboardTopAgents = 10 // comerciales en el ranking del panel CRM

// Estados de participante que muestra el panel de formación, en este orden.
var participantStates = []string{"inscrito", "activo", "finalizado", "baja"}

// DashboardUseCase genera los paneles por área (formación, CRM, calidad, RGPD).
//
// Cada panel lee sus colecciones en paralelo a través de records.UseCase y agrega en
// memoria con el motor de agregación. Si falla una lectura, falla el panel completo.
type DashboardUseCase struct {
	records *records.UseCase
	opts    Options
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(rec *records.UseCase, opts Options) *DashboardUseCase {
	return &DashboardUseCase{records: rec, opts: opts}
}

// Formacion panel de formación bonificada.
func (uc *DashboardUseCase) Formacion(ctx context.Context, p entity.Principal) (*dto.FormacionSummaryDTO, error) {
	data, err := uc.fetchAll(ctx, p, "participantes", "grupos", "acciones_formativas")
	if err != nil {
		return nil, err
	}
	participantes, grupos, acciones := data[0], data[1], data[2]
	today := uc.opts.today()

	byStatus := make([]dto.CountByDTO, 0, len(participantStates))
	for _, s := range participantStates {
		byStatus = append(byStatus, dto.CountByDTO{Value: s, Count: aggregation.CountBy(participantes, "estado", s)})
	}
	groupsByMonth, err := aggregation.BucketByTime(grupos, "fecha_inicio", aggregation.Month, "", aggregation.Count, uc.opts.location())
	if err != nil {
		return nil, err
	}
	actionsByYear, err := aggregation.BucketByTime(acciones, "fecha_alta", aggregation.Year, "", aggregation.Count, uc.opts.location())
	if err != nil {
		return nil, err
	}
	amount, err := aggregation.Total(grupos, "importe", aggregation.Sum)
	if err != nil {
		return nil, err
	}

	return &dto.FormacionSummaryDTO{
		Participants:         len(participantes),
		ParticipantsByStatus: byStatus,
		GroupsByMonth:        toBucketDTOs(groupsByMonth),
		ActionsByYear:        toBucketDTOs(actionsByYear),
		GroupsAmount:         amount.Round(2),
		UrgentGroups:         toUrgentDTOs(uc.urgent(grupos, "grupos", today)),
		DateLabel:            monthLabel(today),
		Empty:                len(participantes)+len(grupos)+len(acciones) == 0,
	}, nil
}

// CRM panel comercial. Un comercial solo ve sus oportunidades y tareas.
func (uc *DashboardUseCase) CRM(ctx context.Context, p entity.Principal) (*dto.CRMSummaryDTO, error) {
	data, err := uc.fetchAll(ctx, p, "oportunidades", "tareas")
	if err != nil {
		return nil, err
	}
	oportunidades, tareas := data[0], data[1]
	today := uc.opts.today()

	won := where(oportunidades, "estado", "ganada")
	wonByMonth, err := aggregation.BucketByTime(won, "fecha_cierre", aggregation.Month, "importe", aggregation.Sum, uc.opts.location())
	if err != nil {
		return nil, err
	}
	wonAmount, err := aggregation.Total(won, "importe", aggregation.Sum)
	if err != nil {
		return nil, err
	}
	ranking, err := aggregation.RankBy(oportunidades, "comercial_id", "importe", aggregation.Sum)
	if err != nil {
		return nil, err
	}

	return &dto.CRMSummaryDTO{
		OpenOpportunities: aggregation.CountBy(oportunidades, "estado", "abierta"),
		WonByMonth:        toBucketDTOs(wonByMonth),
		WonAmount:         wonAmount.Round(2),
		AgentRanking:      toRankedDTOs(ranking, dashboardTopAgents),
		UrgentTasks:       toUrgentDTOs(uc.urgent(whereNot(tareas, "estado", "completada"), "tareas", today)),
		DateLabel:         monthLabel(today),
		Empty:             len(oportunidades)+len(tareas) == 0,
	}, nil
}

// Calidad panel ISO. Requiere el módulo iso vigente para la empresa.
func (uc *DashboardUseCase) Calidad(ctx context.Context, p entity.Principal) (*dto.CalidadSummaryDTO, error) {
	data, err := uc.fetchAll(ctx, p, "no_conformidades", "auditorias")
	if err != nil {
		return nil, err
	}
	ncs, auditorias := data[0], data[1]
	today := uc.opts.today()

	byMonth, err := aggregation.BucketByTime(ncs, "fecha_deteccion", aggregation.Month, "", aggregation.Count, uc.opts.location())
	if err != nil {
		return nil, err
	}

	return &dto.CalidadSummaryDTO{
		OpenNonConformities: aggregation.CountBy(ncs, "estado", "abierta"),
		NonConformByMonth:   toBucketDTOs(byMonth),
		UrgentNonConform:    toUrgentDTOs(uc.urgent(where(ncs, "estado", "abierta"), "no_conformidades", today)),
		UrgentAudits:        toUrgentDTOs(uc.urgent(whereNot(auditorias, "estado", "realizada"), "auditorias", today)),
		DateLabel:           monthLabel(today),
		Empty:               len(ncs)+len(auditorias) == 0,
	}, nil
}

// RGPD panel de solicitudes de derechos (acceso, rectificación, supresión...).
func (uc *DashboardUseCase) RGPD(ctx context.Context, p entity.Principal) (*dto.RGPDSummaryDTO, error) {
	data, err := uc.fetchAll(ctx, p, "solicitudes_rgpd")
	if err != nil {
		return nil, err
	}
	solicitudes := data[0]
	today := uc.opts.today()

	byMonth, err := aggregation.BucketByTime(solicitudes, "fecha_solicitud", aggregation.Month, "", aggregation.Count, uc.opts.location())
	if err != nil {
		return nil, err
	}
	byType, err := aggregation.RankBy(solicitudes, "tipo", "", aggregation.Count)
	if err != nil {
		return nil, err
	}

	return &dto.RGPDSummaryDTO{
		PendingRequests: aggregation.CountBy(solicitudes, "estado", "pendiente"),
		RequestsByMonth: toBucketDTOs(byMonth),
		RequestsByType:  toRankedDTOs(byType, 0),
		NearDeadline:    toUrgentDTOs(uc.urgent(where(solicitudes, "estado", "pendiente"), "solicitudes_rgpd", today)),
		DateLabel:       monthLabel(today),
		Empty:           len(solicitudes) == 0,
	}, nil
}

func (uc *DashboardUseCase) urgent(rows []entity.Record, kind string, today time.Time) []aggregation.Urgency {
	k := uc.records.Kind(kind)
	if k == nil {
		return []aggregation.Urgency{}
	}
	return aggregation.FindUrgent(rows, k.DeadlineFields, today, uc.opts.window())
}

// fetchAll lee las colecciones en paralelo y devuelve las filas en el mismo orden.
func (uc *DashboardUseCase) fetchAll(ctx context.Context, p entity.Principal, kinds ...string) ([][]entity.Record, error) {
	type fetchResult struct {
		rows []entity.Record
		err  error
	}

	chans := make([]chan fetchResult, len(kinds))
	for i, kind := range kinds {
		ch := make(chan fetchResult, 1)
		chans[i] = ch
		go func(kind string) {
			rows, err := fetchRows(ctx, uc.records, uc.opts, p, kind, nil)
			ch <- fetchResult{rows, err}
		}(kind)
	}

	out := make([][]entity.Record, len(kinds))
	var firstErr error
	for i, ch := range chans {
		res := <-ch
		if res.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("dashboard: %s: %w", kinds[i], res.err)
		}
		out[i] = res.rows
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
