// Command varlinkgen reads a .varlink interface definition and emits a Go
// source file with request/reply/error types, a Backend interface, a
// generated Client proxy, and a generated Handler. It is not part of the
// core's runtime behavior: a hand-written type satisfying zlink.Service is
// an equally valid input to the core.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/zeenix/zlink/varlinkdef"
)

func main() {
	in := flag.String("i", "", "path to a .varlink interface definition")
	out := flag.String("o", "", "output .go file (default: alongside -i, named after the interface)")
	pkg := flag.String("package", "", "Go package name (default: derived from the interface name)")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: varlinkgen -i FILE.varlink [-o FILE.go] [-package NAME]")
		os.Exit(2)
	}

	f, err := os.Open(*in)
	if err != nil {
		fatal(err)
	}
	defer f.Close()

	iface, err := varlinkdef.Read(f)
	if err != nil {
		fatal(fmt.Errorf("parsing %s: %w", *in, err))
	}

	pkgName := *pkg
	if pkgName == "" {
		pkgName = defaultPackageName(iface.Name)
	}

	src := generate(pkgName, iface)

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(*in), pkgName+"_varlink.go")
	}
	if err := src.Save(outPath); err != nil {
		fatal(err)
	}
}

func defaultPackageName(ifaceName string) string {
	parts := strings.Split(ifaceName, ".")
	name := parts[len(parts)-1]
	return strings.ToLower(name) + "api"
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "varlinkgen:", err)
	os.Exit(1)
}

const zlinkImport = "github.com/zeenix/zlink"

// generate builds the Go source file for iface.
func generate(pkgName string, iface *varlinkdef.Interface) *jen.File {
	f := jen.NewFile(pkgName)
	f.HeaderComment("Code generated by varlinkgen from " + iface.Name + ". DO NOT EDIT.")

	d := iface.Descriptor()

	for _, t := range d.Types {
		emitNamedType(f, t)
	}

	for _, m := range d.Methods {
		emitStruct(f, exportedName(m.Name)+"In", m.Params)
		emitStruct(f, exportedName(m.Name)+"Out", m.Reply)
	}

	for _, name := range d.Errors {
		emitErrorType(f, iface.Name, name, iface.Errors[name])
	}

	emitBackend(f, iface.Name, d)
	emitClient(f, iface.Name, d)
	emitHandler(f, iface.Name, d)

	return f
}

func exportedName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func emitStruct(f *jen.File, name string, fields []varlinkdef.FieldDescriptor) {
	var stmts []jen.Code
	for _, field := range fields {
		stmts = append(stmts, jen.Id(exportedName(field.Name)).Add(goType(field.Type)).Tag(map[string]string{"json": field.Name}))
	}
	f.Type().Id(name).Struct(stmts...)
}

func emitNamedType(f *jen.File, t varlinkdef.TypeDescriptor) {
	switch t.Kind {
	case varlinkdef.KindEnum:
		f.Type().Id(t.Name).String()
		// Enum variants are plain string constants carrying the wire
		// value, since varlink enums serialize as their member name.
		var consts []jen.Code
		for _, v := range t.Enum {
			constName := t.Name + exportedName(v)
			consts = append(consts, jen.Id(constName).Id(t.Name).Op("=").Lit(v))
		}
		f.Const().Defs(consts...)
	default:
		emitStruct(f, t.Name, t.Fields)
	}
}

func emitErrorType(f *jen.File, ifaceName, name string, fields varlinkdef.Struct) {
	var stmts []jen.Code
	for fname, ftype := range fields {
		stmts = append(stmts, jen.Id(exportedName(fname)).Add(goType(ftype)).Tag(map[string]string{"json": fname}))
	}
	typeName := name + "Error"
	f.Type().Id(typeName).Struct(stmts...)
	f.Func().Params(jen.Id("err").Op("*").Id(typeName)).Id("Error").Params().String().Block(
		jen.Return(jen.Lit("varlink: call failed: " + ifaceName + "." + name)),
	)
	f.Func().Params(jen.Id("err").Op("*").Id(typeName)).Id("VarlinkErrorName").Params().String().Block(
		jen.Return(jen.Lit(ifaceName + "." + name)),
	)
}

// goType maps a varlinkdef.Type to a jennifer Go type expression. References
// to named types (KindName) resolve to a sibling generated type in the same
// package.
func goType(t varlinkdef.Type) *jen.Statement {
	var stmt *jen.Statement
	switch t.Kind {
	case varlinkdef.KindBool:
		stmt = jen.Bool()
	case varlinkdef.KindInt:
		stmt = jen.Int64()
	case varlinkdef.KindFloat:
		stmt = jen.Float64()
	case varlinkdef.KindString:
		stmt = jen.String()
	case varlinkdef.KindObject:
		stmt = jen.Qual("encoding/json", "RawMessage")
	case varlinkdef.KindArray:
		stmt = jen.Index().Add(goType(*t.Inner))
	case varlinkdef.KindMap:
		stmt = jen.Map(jen.String()).Add(goType(*t.Inner))
	case varlinkdef.KindName:
		stmt = jen.Id(t.Name)
	case varlinkdef.KindStruct:
		var fields []jen.Code
		for name, ft := range t.Struct {
			fields = append(fields, jen.Id(exportedName(name)).Add(goType(ft)).Tag(map[string]string{"json": name}))
		}
		stmt = jen.Struct(fields...)
	case varlinkdef.KindEnum:
		stmt = jen.String()
	default:
		stmt = jen.Any()
	}
	if t.Nullable {
		return jen.Op("*").Add(stmt)
	}
	return stmt
}

func emitBackend(f *jen.File, ifaceName string, d varlinkdef.Descriptor) {
	var methods []jen.Code
	for _, m := range d.Methods {
		methods = append(methods, jen.Id(exportedName(m.Name)).Params(jen.Op("*").Id(exportedName(m.Name)+"In")).Params(jen.Op("*").Id(exportedName(m.Name)+"Out"), jen.Error()))
	}
	f.Type().Id("Backend").Interface(methods...)
}

func emitClient(f *jen.File, ifaceName string, d varlinkdef.Descriptor) {
	f.Type().Id("Client").Struct(jen.Op("*").Qual(zlinkImport, "Proxy"))

	for _, m := range d.Methods {
		inType := exportedName(m.Name) + "In"
		outType := exportedName(m.Name) + "Out"
		f.Func().Params(jen.Id("c").Id("Client")).Id(exportedName(m.Name)).
			Params(jen.Id("in").Op("*").Id(inType)).
			Params(jen.Op("*").Id(outType), jen.Error()).
			Block(
				jen.Id("out").Op(":=").New(jen.Id(outType)),
				jen.Id("err").Op(":=").Id("c").Dot("Proxy").Dot("Call").Call(
					jen.Lit(ifaceName+"."+m.Name), jen.Id("in"), jen.Id("out"), jen.Nil(),
				),
				jen.Return(jen.Id("out"), jen.Id("err")),
			)
	}
}

func emitHandler(f *jen.File, ifaceName string, d varlinkdef.Descriptor) {
	f.Type().Id("Handler").Struct(jen.Id("Backend").Id("Backend"))

	var cases []jen.Code
	for _, m := range d.Methods {
		inType := exportedName(m.Name) + "In"
		cases = append(cases, jen.Case(jen.Lit(ifaceName+"."+m.Name)).Block(
			jen.Var().Id("in").Id(inType),
			jen.Qual("encoding/json", "Unmarshal").Call(jen.Id("call").Dot("Parameters"), jen.Op("&").Id("in")),
			jen.List(jen.Id("out"), jen.Id("err")).Op(":=").Id("h").Dot("Backend").Dot(exportedName(m.Name)).Call(jen.Op("&").Id("in")),
			jen.If(jen.Id("err").Op("!=").Nil()).Block(
				jen.If(
					jen.List(jen.Id("named"), jen.Id("ok")).Op(":=").Id("err").Assert(jen.Qual(zlinkImport, "Named")),
					jen.Id("ok"),
				).Block(
					jen.Return(jen.Qual(zlinkImport, "ErrorReply").Call(jen.Id("named").Dot("VarlinkErrorName").Call(), jen.Id("err"))),
				),
				jen.Return(jen.Qual(zlinkImport, "ErrorReply").Call(jen.Lit(ifaceName+".Failed"), jen.Id("err").Dot("Error").Call())),
			),
			jen.Return(jen.Qual(zlinkImport, "SingleReply").Call(jen.Id("out"))),
		))
	}
	cases = append(cases, jen.Default().Block(
		jen.Return(jen.Qual(zlinkImport, "ErrorReply").Call(
			jen.Qual(zlinkImport, "ErrMethodNotFound"),
			jen.Qual(zlinkImport, "MethodNotFoundError").Values(jen.Dict{jen.Id("Method"): jen.Id("call").Dot("Method")}),
		)),
	))

	f.Func().Params(jen.Id("h").Id("Handler")).Id("Handle").Params(jen.Id("call").Op("*").Qual(zlinkImport, "Call")).Qual(zlinkImport, "MethodReply").Block(
		jen.Switch(jen.Id("call").Dot("Method")).Block(cases...),
	)

	f.Func().Params(jen.Id("h").Id("Handler")).Id("Interfaces").Params().Index().String().Block(
		jen.Return(jen.Index().String().Values(jen.Lit(ifaceName))),
	)

	f.Func().Params(jen.Id("h").Id("Handler")).Id("InterfaceDescription").Params(jen.Id("name").String()).Params(jen.String(), jen.Bool()).Block(
		jen.Return(jen.Lit(""), jen.False()),
	)
}
