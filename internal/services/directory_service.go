package services

import (
	"context"

	"avtosotuv/internal/domain"
	"avtosotuv/internal/repos"
	"avtosotuv/internal/validate"
)

type DirectoryService struct {
	Services *repos.ServiceRepo
}

func NewDirectoryService(r *repos.ServiceRepo) *DirectoryService {
	return &DirectoryService{Services: r}
}

func (s *DirectoryService) List(ctx context.Context, typ, city, search string) ([]domain.Service, error) {
	return s.Services.List(ctx, validate.Search(typ), validate.Search(city), validate.Search(search))
}

func (s *DirectoryService) Get(ctx context.Context, id int64) (*domain.Service, error) {
	return s.Services.Get(ctx, id)
}
