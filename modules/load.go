package modules

import (
	"github.com/vitaworks/vitaworks/modules/cv"
	"github.com/vitaworks/vitaworks/pkg/application"
)

var BuiltInModules = []application.Module{
	cv.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
