package testutil

import (
	"context"
	"sync"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var (
	_ repository.CompanyRepository = (*CompanyRepo)(nil)
	_ repository.UserRepository    = (*UserRepo)(nil)
)

// CompanyRepo empresas y módulos en memoria.
type CompanyRepo struct {
	mu        sync.Mutex
	Companies map[string]*entity.Company
	Modules   map[string]*entity.CompanyModule // clave empresa/módulo
	Err       error
	Lookups   int // llamadas a GetModule
}

// NewCompanyRepo construye el repositorio con las empresas dadas.
func NewCompanyRepo(companies ...*entity.Company) *CompanyRepo {
	r := &CompanyRepo{
		Companies: make(map[string]*entity.Company),
		Modules:   make(map[string]*entity.CompanyModule),
	}
	for _, c := range companies {
		r.Companies[c.ID] = c
	}
	return r
}

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Companies[id], nil
}

func (r *CompanyRepo) GetModule(_ context.Context, companyID, moduleName string) (*entity.CompanyModule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lookups++
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Modules[companyID+"/"+moduleName], nil
}

func (r *CompanyRepo) ListModules(_ context.Context, companyID string) ([]*entity.CompanyModule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*entity.CompanyModule, 0)
	for _, name := range []string{entity.ModuleCRM, entity.ModuleFormacion, entity.ModuleISO, entity.ModuleRGPD} {
		if m, ok := r.Modules[companyID+"/"+name]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *CompanyRepo) UpsertModule(_ context.Context, m *entity.CompanyModule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	cp := *m
	r.Modules[m.CompanyID+"/"+m.ModuleName] = &cp
	return nil
}

// UserRepo usuarios en memoria indexados por ID.
type UserRepo struct {
	mu    sync.Mutex
	Users map[string]*entity.User
	Err   error
}

// NewUserRepo construye el repositorio con los usuarios dados.
func NewUserRepo(users ...*entity.User) *UserRepo {
	r := &UserRepo{Users: make(map[string]*entity.User)}
	for _, u := range users {
		r.Users[u.ID] = u
	}
	return r
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	cp := *u
	r.Users[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Users[id], nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
