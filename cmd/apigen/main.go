// apigen synthesizes CRUD handler procedures from a normalized schema
// document and renders them as Go source.
//
// Run: apigen -schema schema.yaml -config apigen.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/syssam/apigen/compiler/gen"
	"github.com/syssam/apigen/compiler/gen/emit"
	"github.com/syssam/apigen/compiler/load"
)

func main() {
	var (
		schemaPath = flag.String("schema", "schema.yaml", "path to the schema document")
		configPath = flag.String("config", "", "path to the generation config (optional)")
		target     = flag.String("target", "", "output directory (overrides config)")
		pkg        = flag.String("package", "", "output package import path (overrides config)")
		client     = flag.String("client", "", "data-access client package (overrides config)")
		watch      = flag.Bool("watch", false, "re-generate on schema document changes")
	)
	flag.Parse()

	cfg, err := buildConfig(*configPath, *target, *pkg, *client)
	if err != nil {
		fail(err)
	}

	if *watch {
		watchLoop(cfg, *schemaPath)
		return
	}

	schemas, err := load.ReadDocument(*schemaPath)
	if err != nil {
		fail(err)
	}
	if err := run(cfg, schemas); err != nil {
		fail(err)
	}
}

func buildConfig(configPath, target, pkg, client string) (*gen.Config, error) {
	lc := &load.Config{SoftDelete: true, Envelope: true}
	if configPath != "" {
		var err error
		lc, err = load.ReadConfig(configPath)
		if err != nil {
			return nil, err
		}
	}
	cfg, err := gen.ConfigFromLoad(lc)
	if err != nil {
		return nil, err
	}
	if target != "" {
		cfg.Target = target
	}
	if pkg != "" {
		cfg.Package = pkg
	}
	if client != "" {
		cfg.ClientPackage = client
	}
	return cfg, nil
}

func run(cfg *gen.Config, schemas []*load.Schema) error {
	arts, err := gen.Generate(cfg, schemas...)
	if err != nil {
		return err
	}
	if err := emit.Emit(context.Background(), cfg, arts); err != nil {
		return err
	}
	fmt.Printf("generated %d procedures for %d entities in %s\n",
		len(arts.Procedures), len(arts.Bundles), cfg.Target)
	return nil
}

func watchLoop(cfg *gen.Config, schemaPath string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("watching %s\n", schemaPath)
	err := load.Watch(ctx, schemaPath, func(schemas []*load.Schema, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			return
		}
		if err := run(cfg, schemas); err != nil {
			fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		}
	})
	if err != nil && ctx.Err() == nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "apigen: %v\n", err)
	os.Exit(1)
}
