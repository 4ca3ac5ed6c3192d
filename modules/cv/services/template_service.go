package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/template"
	"github.com/vitaworks/vitaworks/pkg/eventbus"
)

type TemplateService struct {
	repo      template.Repository
	publisher eventbus.EventBus
}

func NewTemplateService(repo template.Repository, publisher eventbus.EventBus) *TemplateService {
	return &TemplateService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *TemplateService) GetAll(ctx context.Context) ([]*template.Template, error) {
	return s.repo.GetAll(ctx)
}

func (s *TemplateService) GetByID(ctx context.Context, id uuid.UUID) (*template.Template, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TemplateService) Save(ctx context.Context, tpl *template.Template) error {
	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	if err := s.repo.Save(ctx, tpl); err != nil {
		return err
	}
	s.publisher.Publish("template.updated", tpl)
	return nil
}

func (s *TemplateService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish("template.deleted", id)
	return nil
}
