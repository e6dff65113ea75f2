package entity

import "time"

// Company representa una organización/tenant del sistema (tabla empresas).
type Company struct {
	ID        string
	Name      string
	CIF       string // identificación fiscal
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Módulos SaaS disponibles (deben coincidir con el CHECK de la tabla company_modules).
const (
	ModuleFormacion = "formacion"
	ModuleISO       = "iso"
	ModuleCRM       = "crm"
	ModuleRGPD      = "rgpd"
)

// ValidModule informa si el nombre corresponde a un módulo conocido.
func ValidModule(name string) bool {
	switch name {
	case ModuleFormacion, ModuleISO, ModuleCRM, ModuleRGPD:
		return true
	}
	return false
}

// CompanyModule representa la activación de un módulo SaaS en una empresa.
// La vigencia es [ActivatedOn, ExpiresOn] con ambos extremos incluidos, en días naturales.
type CompanyModule struct {
	CompanyID   string
	ModuleName  string
	IsActive    bool
	ActivatedOn *time.Time // nil = vigente desde siempre
	ExpiresOn   *time.Time // nil = sin vencimiento
	UpdatedAt   time.Time
}

// ActiveOn informa si el módulo está activo en el día indicado.
func (m *CompanyModule) ActiveOn(day time.Time) bool {
	if m == nil || !m.IsActive {
		return false
	}
	loc := day.Location()
	d := CalendarDay(day, loc)
	if m.ActivatedOn != nil && d.Before(CalendarDay(*m.ActivatedOn, loc)) {
		return false
	}
	if m.ExpiresOn != nil && d.After(CalendarDay(*m.ExpiresOn, loc)) {
		return false
	}
	return true
}

// CalendarDay devuelve la medianoche en loc del día natural de t (según su propia zona).
// Una columna DATE llega como medianoche UTC; convertirla con In() podría cambiar el día.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
