package container

import (
	app "roof-measure/internal/application"
	"roof-measure/internal/domain/port"
)

type Container struct {
	UserService        *app.UserService
	MeasurementService *app.MeasurementService
}

func New(userRepo port.UserRepository, measurer port.RoofMeasurer, opts app.MeasurementOptions) *Container {
	userService := app.NewUserService(userRepo)
	measurementService := app.NewMeasurementService(userService, measurer, opts)

	return &Container{
		UserService:        userService,
		MeasurementService: measurementService,
	}
}
