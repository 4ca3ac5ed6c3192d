package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"os"
	"path"
	"runtime/debug"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitaworks/vitaworks/internal/server"
	"github.com/vitaworks/vitaworks/modules"
	"github.com/vitaworks/vitaworks/pkg/application"
	"github.com/vitaworks/vitaworks/pkg/configuration"
	"github.com/vitaworks/vitaworks/pkg/eventbus"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	if err := applySchema(ctx, pool, app.SchemaFiles()); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	options := &server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
	}
	serverInstance, err := server.Default(options)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	log.Printf("Listening on: %s\n", conf.Origin)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func applySchema(ctx context.Context, pool *pgxpool.Pool, schemaFiles []*embed.FS) error {
	for _, schemaFS := range schemaFiles {
		err := fs.WalkDir(schemaFS, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || path.Ext(p) != ".sql" {
				return nil
			}
			sql, err := fs.ReadFile(schemaFS, p)
			if err != nil {
				return err
			}
			_, err = pool.Exec(ctx, string(sql))
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}
