// Package emit renders synthesized artifacts into Go source files.
// It is a thin consumer: every identifier, route, and shape comes from
// the artifacts, never from the renderer.
package emit

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/apigen"
	"github.com/syssam/apigen/compiler/gen"
)

const (
	runtimePkg    = "github.com/syssam/apigen"
	permissionPkg = "github.com/syssam/apigen/permission"
	httpPkg       = "net/http"
)

// Emitter renders artifacts with parallel, streaming writes. Synthesis
// has fully completed before an Emitter exists; the fan-out never
// observes partial state.
type Emitter struct {
	cfg     *gen.Config
	arts    *gen.Artifacts
	workers int
	outDir  string
	pkg     string
}

// New creates an Emitter for the given configuration and verified
// artifacts.
func New(cfg *gen.Config, arts *gen.Artifacts) *Emitter {
	pkg := cfg.Package
	if pkg == "" {
		pkg = cfg.Target
	}
	return &Emitter{
		cfg:     cfg,
		arts:    arts,
		workers: runtime.GOMAXPROCS(0),
		outDir:  cfg.Target,
		pkg:     path.Base(pkg),
	}
}

// WithWorkers sets the number of parallel workers.
func (e *Emitter) WithWorkers(n int) *Emitter {
	if n > 0 {
		e.workers = n
	}
	return e
}

// WithPackage sets the output package name.
func (e *Emitter) WithPackage(pkg string) *Emitter {
	if pkg != "" {
		e.pkg = pkg
	}
	return e
}

// Emit writes all files. With the snapshot feature enabled, an
// unchanged fingerprint skips emission entirely.
func (e *Emitter) Emit(ctx context.Context) error {
	if e.outDir == "" {
		return gen.NewConfigError("Target", nil, "missing target directory in config")
	}
	snapshotting, _ := e.cfg.FeatureEnabled(gen.FeatureSnapshot.Name)
	if snapshotting {
		prev, err := gen.ReadSnapshot(filepath.Join(e.outDir, "internal"))
		if err != nil {
			return err
		}
		if prev.Unchanged(e.arts) {
			return nil
		}
	}
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return err
	}

	errg, _ := errgroup.WithContext(ctx)
	errg.SetLimit(e.workers)

	for _, b := range e.arts.Bundles {
		b := b
		procs := e.arts.ByEntity[b.Key]
		errg.Go(func() error {
			return e.writeFile(e.genHandlers(b, procs), b.File)
		})
	}

	errg.Go(func() error {
		return e.writeFile(e.genRouter(), "router.go")
	})

	errg.Go(func() error {
		f, err := e.genPolicy()
		if err != nil {
			return err
		}
		return e.writeFile(f, "policy.go")
	})

	if enabled, _ := e.cfg.FeatureEnabled(gen.FeatureDocScaffold.Name); enabled {
		errg.Go(func() error {
			return os.WriteFile(filepath.Join(e.outDir, "procedures.md"), e.genDoc(), 0o644)
		})
	}

	if enabled, _ := e.cfg.FeatureEnabled(gen.FeatureTestScaffold.Name); enabled {
		for _, b := range e.arts.Bundles {
			b := b
			errg.Go(func() error {
				name := strings.TrimSuffix(b.File, ".go") + "_test.go"
				return e.writeFile(e.genTestScaffold(b), name)
			})
		}
	}

	if err := errg.Wait(); err != nil {
		return err
	}

	if snapshotting {
		snap, err := e.arts.Snapshot()
		if err != nil {
			return err
		}
		return snap.WriteSnapshot(filepath.Join(e.outDir, "internal"))
	}
	return nil
}

// genHandlers renders one entity bundle: the exported shape table and
// the mount function registering each procedure handler.
func (e *Emitter) genHandlers(b *gen.Bundle, procs []*gen.Procedure) *jen.File {
	f := e.newFile()

	f.Commentf("%s maps the procedure names of %s to their data-access call shapes.", b.Export, b.Entity)
	f.Var().Id(b.Export).Op("=").Map(jen.String()).Qual(runtimePkg, "CallShape").Values(jen.DictFunc(func(d jen.Dict) {
		for _, p := range procs {
			d[jen.Lit(p.Name)] = shapeLiteral(p.Call)
		}
	}))

	f.Commentf("Mount%s registers the %s procedures on mux, delegating to c.", b.Entity, b.Entity)
	f.Func().Id("Mount"+b.Entity).Params(
		jen.Id("mux").Op("*").Qual(httpPkg, "ServeMux"),
		jen.Id("c").Qual(runtimePkg, "Client"),
		jen.Id("rules").Qual(permissionPkg, "Table"),
	).BlockFunc(func(g *jen.Group) {
		for _, p := range procs {
			g.Id("mux").Dot("Handle").Call(
				jen.Lit(p.Route),
				jen.Qual(runtimePkg, "NewHandler").Call(
					jen.Lit(p.Entity),
					jen.Lit(b.Key),
					jen.Lit(p.Name),
					jen.Lit(p.Write),
					jen.Id(b.Export).Index(jen.Lit(p.Name)),
					jen.Id("rules"),
					jen.Lit(p.Envelope),
					jen.Id("c"),
				),
			)
		}
	})
	return f
}

// genRouter renders the top-level mount function and the route list.
func (e *Emitter) genRouter() *jen.File {
	f := e.newFile()

	f.Comment("Routes lists every mounted procedure route.")
	f.Var().Id("Routes").Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
		for _, b := range e.arts.Bundles {
			for _, p := range e.arts.ByEntity[b.Key] {
				g.Lit(p.Route)
			}
		}
	})

	f.Comment("Mount registers every entity bundle on mux.")
	f.Func().Id("Mount").Params(
		jen.Id("mux").Op("*").Qual(httpPkg, "ServeMux"),
		jen.Id("c").Qual(runtimePkg, "Client"),
	).BlockFunc(func(g *jen.Group) {
		for _, b := range e.arts.Bundles {
			g.Id("Mount" + b.Entity).Call(jen.Id("mux"), jen.Id("c"), jen.Id("Permissions"))
		}
	})
	return f
}

// genPolicy renders the authorization artifact: either the synthesized
// rule table or a re-export of the custom policy module.
func (e *Emitter) genPolicy() (*jen.File, error) {
	f := e.newFile()
	if imp := e.arts.Policy; imp != nil {
		source, err := e.policyImportPath(imp)
		if err != nil {
			return nil, err
		}
		f.Commentf("Permissions re-exports the hand-written policy module.")
		f.Var().Id(gen.PolicyExport).Op("=").Qual(source, imp.Export)
		return f, nil
	}

	f.Comment("Permissions is the synthesized authorization rule table.")
	f.Var().Id(gen.PolicyExport).Op("=").Qual(permissionPkg, "Table").Values(jen.DictFunc(func(d jen.Dict) {
		for _, b := range e.arts.Bundles {
			rules := e.arts.Rules[b.Key]
			d[jen.Lit(b.Key)] = jen.Values(jen.DictFunc(func(inner jen.Dict) {
				for _, p := range e.arts.ByEntity[b.Key] {
					inner[jen.Lit(p.Name)] = ruleLiteral(rules[p.Name])
				}
			}))
		}
	}))
	return f, nil
}

// policyImportPath maps a policy source to a Go import path. Relative
// sources resolve against the output package; absolute filesystem
// paths have no import path and fail.
func (e *Emitter) policyImportPath(imp *gen.PolicyImport) (string, error) {
	switch imp.Kind {
	case gen.ImportBare:
		return imp.Source, nil
	case gen.ImportRelative:
		if e.cfg.Package == "" {
			return "", gen.NewConfigError("PolicySource", imp.Source,
				"relative policy source needs the output package import path")
		}
		return path.Join(e.cfg.Package, imp.Source), nil
	default:
		return "", gen.NewConfigError("PolicySource", imp.Source,
			"absolute policy source has no import path; use a module or relative path")
	}
}

// genDoc renders the markdown procedure reference.
func (e *Emitter) genDoc() []byte {
	var b strings.Builder
	b.WriteString("# Procedures\n")
	for _, bundle := range e.arts.Bundles {
		b.WriteString("\n## ")
		b.WriteString(bundle.Entity)
		b.WriteString("\n\n")
		b.WriteString("| Procedure | Route | Method | Output |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, p := range e.arts.ByEntity[bundle.Key] {
			b.WriteString("| ")
			b.WriteString(p.Name)
			b.WriteString(" | ")
			b.WriteString(p.Route)
			b.WriteString(" | ")
			b.WriteString(p.Call.Method)
			b.WriteString(" | ")
			b.WriteString(p.Output)
			b.WriteString(" |\n")
		}
	}
	return []byte(b.String())
}

// genTestScaffold renders a skeleton test exercising the bundle mount.
func (e *Emitter) genTestScaffold(b *gen.Bundle) *jen.File {
	f := jen.NewFile(e.pkg)
	f.HeaderComment("Code generated by apigen. DO NOT EDIT.")
	f.Func().Id("TestMount"+b.Entity).Params(jen.Id("t").Op("*").Qual("testing", "T")).Block(
		jen.Id("mux").Op(":=").Qual(httpPkg, "NewServeMux").Call(),
		jen.Id("Mount"+b.Entity).Call(jen.Id("mux"), jen.Nil(), jen.Nil()),
		jen.If(jen.Id("mux").Op("==").Nil()).Block(
			jen.Id("t").Dot("Fatal").Call(jen.Lit("nil mux")),
		),
	)
	return f
}

// shapeLiteral renders a CallShape composite literal, omitting zero
// fields so the emitted source stays close to handwritten code.
func shapeLiteral(s apigen.CallShape) *jen.Statement {
	return jen.Values(jen.DictFunc(func(d jen.Dict) {
		d[jen.Id("Method")] = jen.Lit(s.Method)
		if s.Marker != "" {
			d[jen.Id("Marker")] = jen.Lit(s.Marker)
		}
		if s.FilterDeleted {
			d[jen.Id("FilterDeleted")] = jen.True()
		}
		if s.SetMarker {
			d[jen.Id("SetMarker")] = jen.True()
		}
		if s.CheckMarker {
			d[jen.Id("CheckMarker")] = jen.True()
		}
		if s.ThrowOnNull {
			d[jen.Id("ThrowOnNull")] = jen.True()
		}
		if len(s.DefaultBy) > 0 {
			d[jen.Id("DefaultBy")] = jen.Index().String().ValuesFunc(func(g *jen.Group) {
				for _, name := range s.DefaultBy {
					g.Lit(name)
				}
			})
		}
		if len(s.DefaultOrder) > 0 {
			d[jen.Id("DefaultOrder")] = jen.Index().Qual(runtimePkg, "Order").ValuesFunc(func(g *jen.Group) {
				for _, o := range s.DefaultOrder {
					g.Values(jen.Dict{
						jen.Id("Field"):     jen.Lit(o.Field),
						jen.Id("Direction"): jen.Qual(runtimePkg, directionName(o.Direction)),
					})
				}
			})
		}
		if s.CountFallback {
			d[jen.Id("CountFallback")] = jen.True()
		}
		if s.CountShaped {
			d[jen.Id("CountShaped")] = jen.True()
		}
	}))
}

func directionName(d apigen.Direction) string {
	if d == apigen.Desc {
		return "Desc"
	}
	return "Asc"
}

// ruleLiteral maps a synthesized rule to its runtime constructor.
func ruleLiteral(r gen.Rule) *jen.Statement {
	switch r {
	case gen.RuleAllow:
		return jen.Qual(permissionPkg, "AlwaysAllowRule").Call()
	case gen.RuleAuthenticated:
		return jen.Qual(permissionPkg, "AuthenticatedRule").Call()
	default:
		return jen.Qual(permissionPkg, "AlwaysDenyRule").Call()
	}
}

// newFile creates a new Jennifer file with the header comment.
func (e *Emitter) newFile() *jen.File {
	f := jen.NewFile(e.pkg)
	f.HeaderComment("Code generated by apigen. DO NOT EDIT.")
	return f
}

// writeFile writes a jennifer file directly to disk.
func (e *Emitter) writeFile(f *jen.File, filename string) error {
	out, err := os.Create(filepath.Join(e.outDir, filename))
	if err != nil {
		return err
	}
	defer out.Close()
	return f.Render(out)
}

// Emit is a convenience wrapper running a default Emitter.
func Emit(ctx context.Context, cfg *gen.Config, arts *gen.Artifacts) error {
	return New(cfg, arts).Emit(ctx)
}
