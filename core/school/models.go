package school

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/juku/core"
)

var ErrNotFound = errors.New("school not found")

type (
	// School is a tutoring school; students and staff belong to one.
	School struct {
		ID        string    `db:"id" json:"id"`
		Name      string    `db:"name" json:"name"`
		CreatedAt time.Time `db:"created_at" json:"created_at"`
		UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	}

	NewSchool struct {
		Name string `json:"name" validate:"required"`
	}

	Repository interface {
		QueryAllSchools(ctx context.Context) ([]School, error)
		GetSchool(ctx context.Context, id string, exec ...core.DBExecutor) (School, error)
		CreateSchool(ctx context.Context, sch School, exec ...core.DBExecutor) (School, error)
		UpdateSchool(ctx context.Context, sch School, exec ...core.DBExecutor) (School, error)
	}

	Service struct {
		repo Repository
	}
)

func (ns *NewSchool) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	return core.TranslateValidatorErrors(core.Validate.Struct(ns))
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) QueryAll(ctx context.Context) ([]School, error) {
	return svc.repo.QueryAllSchools(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchool(ctx, id)
}

func (svc *Service) Create(ctx context.Context, ns NewSchool) (School, error) {
	if err := ns.Validate(); err != nil {
		return School{}, err
	}
	return svc.repo.CreateSchool(ctx, School{Name: ns.Name})
}

func (svc *Service) Rename(ctx context.Context, id, name string) (School, error) {
	ns := NewSchool{Name: name}
	if err := ns.Validate(); err != nil {
		return School{}, err
	}
	sch, err := svc.repo.GetSchool(ctx, id)
	if err != nil {
		return School{}, err
	}
	sch.Name = ns.Name
	return svc.repo.UpdateSchool(ctx, sch)
}
