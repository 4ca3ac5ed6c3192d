package cv

import (
	"embed"

	"github.com/vitaworks/vitaworks/modules/cv/infrastructure/persistence"
	"github.com/vitaworks/vitaworks/modules/cv/infrastructure/query"
	"github.com/vitaworks/vitaworks/modules/cv/presentation/controllers"
	"github.com/vitaworks/vitaworks/modules/cv/services"
	"github.com/vitaworks/vitaworks/pkg/application"
	"github.com/vitaworks/vitaworks/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/cv-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.RegisterSchema(&MigrationFiles)

	pool := app.DB()
	conf := configuration.Use()
	templates := persistence.NewTemplateRepository(pool)

	app.RegisterServices(
		services.NewCVService(
			persistence.NewSectionRepository(pool),
			persistence.NewRecordRepository(pool),
			templates,
			persistence.NewProfileRepository(pool),
			query.NewExprExecutor(),
			app.EventPublisher(),
			conf.Compilation.AsOfYear,
		),
		services.NewTemplateService(templates, app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewCVController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "cv"
}
