package main

import (
	"propmedia/pkg/config"
	app "propmedia/services/web/internal/app"

	_ "propmedia/services/web/docs" // Swagger docs
)

// @title           PropMedia Web API
// @version         1.0
// @description     JSON and event stream endpoints of the PropMedia web front end

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	if err := application.Run(); err != nil {
		panic(err)
	}

	application.Wait()

	if err := application.Shutdown(); err != nil {
		panic(err)
	}
}
