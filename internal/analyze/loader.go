package analyze

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"path/filepath"
	"reflect"

	"github.com/rs/zerolog"
	"golang.org/x/tools/go/packages"

	"entity-schema/descriptor"
	"entity-schema/primitive"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedTypes |
	packages.NeedImports |
	packages.NeedDeps

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string              // Import path
	Name  string              // Package name
	Dir   string              // Directory of the first Go file
	Types []descriptor.TypeID // Exported struct types, sorted by name
}

// Analyzer loads Go packages into a descriptor registry. It is not safe for
// concurrent use.
type Analyzer struct {
	registry *descriptor.Registry
	dir      string
	logger   zerolog.Logger
	packages map[string]*PackageInfo
	visited  map[types.Type]descriptor.TypeID // handles recursive types

	// promoting holds the structs whose fields are being collected.
	promoting map[*types.Struct]bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDir sets the directory package patterns are resolved from.
func WithDir(dir string) Option {
	return func(a *Analyzer) {
		a.dir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// NewAnalyzer creates an Analyzer adding descriptors to registry.
func NewAnalyzer(registry *descriptor.Registry, opts ...Option) *Analyzer {
	a := &Analyzer{
		registry:  registry,
		logger:    zerolog.Nop(),
		packages:  make(map[string]*PackageInfo),
		visited:   make(map[types.Type]descriptor.TypeID),
		promoting: make(map[*types.Struct]bool),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// LoadPackages loads the packages matching patterns (e.g., "./examples/shop",
// "entity-schema/examples/shop") and registers their struct types.
func (a *Analyzer) LoadPackages(ctx context.Context, patterns ...string) ([]*PackageInfo, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	infos := make([]*PackageInfo, 0, len(pkgs))
	for _, pkg := range pkgs {
		info := a.processPackage(pkg)
		infos = append(infos, info)

		a.logger.Debug().
			Str("package", pkg.PkgPath).
			Int("structs", len(info.Types)).
			Msg("package analyzed")
	}

	return infos, nil
}

// Package returns a previously loaded package.
func (a *Analyzer) Package(path string) (*PackageInfo, bool) {
	info, ok := a.packages[path]
	return info, ok
}

// processPackage registers the exported struct types of a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) *PackageInfo {
	info := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
	}

	if len(pkg.GoFiles) > 0 {
		info.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !typeName.Exported() || typeName.IsAlias() {
			continue
		}

		named, ok := typeName.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}

		if _, ok := named.Underlying().(*types.Struct); !ok {
			continue
		}

		if a.registry.IsDecimal(namedID(named)) {
			continue
		}

		info.Types = append(info.Types, a.structID(named))
	}

	a.packages[pkg.PkgPath] = info

	return info
}

func namedID(named *types.Named) descriptor.TypeID {
	obj := named.Obj()
	if obj.Pkg() == nil {
		return descriptor.TypeID{Name: obj.Name()}
	}

	return descriptor.TypeID{PkgPath: obj.Pkg().Path(), Name: obj.Name()}
}

// qualifier renders package-qualified names the way reflect does.
func qualifier(p *types.Package) string {
	return p.Name()
}

// structID registers a struct type (once) and returns its id. t is a
// *types.Named or an anonymous *types.Struct.
func (a *Analyzer) structID(t types.Type) descriptor.TypeID {
	if id, ok := a.visited[t]; ok {
		return id
	}

	var id descriptor.TypeID
	if named, ok := t.(*types.Named); ok {
		id = namedID(named)
	} else {
		id = descriptor.TypeID{Name: types.TypeString(t, qualifier)}
	}

	a.visited[t] = id

	if _, ok := a.registry.Lookup(id); ok {
		return id
	}

	desc := &descriptor.TypeDescriptor{ID: id}
	// Pre-store so recursive references resolve to the same descriptor.
	a.registry.Add(desc)

	st := t.Underlying().(*types.Struct)
	a.promoting[st] = true
	a.collectFields(st, id, desc, false)
	delete(a.promoting, st)

	return id
}

// collectFields appends the fields of st to desc, promoting embedded struct
// fields in place. Fields promoted through an embedded pointer are boxed. A
// struct already being promoted stays an ordinary field.
func (a *Analyzer) collectFields(st *types.Struct, owner descriptor.TypeID, desc *descriptor.TypeDescriptor, boxed bool) {
	for i := range st.NumFields() {
		field := st.Field(i)

		if field.Embedded() {
			et := field.Type()

			ptr, viaPointer := et.(*types.Pointer)
			if viaPointer {
				et = ptr.Elem()
			}

			if embedded, ok := et.Underlying().(*types.Struct); ok && !a.promoting[embedded] {
				embeddedID := a.embeddedID(et)
				if embedded.NumFields() == 0 {
					desc.Markers = append(desc.Markers, embeddedID)
					continue
				}

				a.promoting[embedded] = true
				a.collectFields(embedded, embeddedID, desc, boxed || viaPointer)
				delete(a.promoting, embedded)

				continue
			}
		}

		if !field.Exported() {
			continue
		}

		ref := a.ref(field.Type())
		ref.Boxed = ref.Boxed || boxed

		desc.Fields = append(desc.Fields, descriptor.FieldDescriptor{
			Name:  field.Name(),
			Owner: owner,
			Type:  ref,
			Tag:   reflect.StructTag(st.Tag(i)),
		})
	}
}

func (a *Analyzer) embeddedID(t types.Type) descriptor.TypeID {
	if named, ok := t.(*types.Named); ok {
		return namedID(named)
	}

	return descriptor.TypeID{Name: types.TypeString(t, qualifier)}
}

// ref classifies a declared type.
func (a *Analyzer) ref(t types.Type) *descriptor.TypeRef {
	out := &descriptor.TypeRef{GoType: types.TypeString(t, qualifier)}

	for {
		ptr, ok := t.(*types.Pointer)
		if !ok {
			break
		}

		out.Boxed = true
		t = ptr.Elem()
	}

	named, isNamed := t.(*types.Named)
	if isNamed {
		out.ID = namedID(named)
	}

	if kind := primitive.FromGoType(t); kind != 0 {
		out.Kind = descriptor.KindScalar
		out.Scalar = kind

		return out
	}

	if isNamed && a.registry.IsDecimal(out.ID) {
		out.Kind = descriptor.KindDecimal
		return out
	}

	switch ut := t.Underlying().(type) {
	case *types.Slice:
		out.Kind = descriptor.KindCollection
		out.Args = []*descriptor.TypeRef{a.ref(ut.Elem())}

	case *types.Map:
		out.Kind = descriptor.KindMap
		out.Args = []*descriptor.TypeRef{a.ref(ut.Key()), a.ref(ut.Elem())}

	case *types.Array:
		out.Kind = descriptor.KindArray
		out.Elem = a.ref(ut.Elem())
		out.Len = int(ut.Len())

	case *types.Struct:
		out.Kind = descriptor.KindStruct
		out.ID = a.structID(t)

	default:
		out.Kind = descriptor.KindUnsupported
	}

	return out
}
