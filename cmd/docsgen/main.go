// Генерация документации об ошибках API LeadRadar в формате Markdown.
// Разбирает файл с определениями DefinedError и строит таблицу: код, HTTP код, сообщение и перевод.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	md "github.com/nao1215/markdown"
)

// Пример запуска: go run ./cmd/docsgen --out docs/api_errors.md
func main() {
	errorsFile := flag.String("src", "internal/leadradar/apierrors/apierrors.go", "Path of apierrors.go")
	outputMd := flag.String("out", "api_errors.md", "Path to output md")
	flag.Parse()

	slog.Info("Generate api errors docs", "src", *errorsFile, "out", *outputMd)

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, *errorsFile, nil, 0)
	if err != nil {
		slog.Error("Parse errors file", "err", err)
		os.Exit(1)
	}

	out, err := os.Create(*outputMd)
	if err != nil {
		slog.Error("Create output", "err", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeDocs(out, getRows(f)); err != nil {
		slog.Error("Generate docs fail", "err", err)
		os.Exit(1)
	}
	slog.Info("Docs generated")
}

func writeDocs(w io.Writer, rows [][]string) error {
	return md.NewMarkdown(w).
		H1("Перечень кодов ошибок").
		PlainText("Ошибки API возвращаются в конверте {ok:false, error:{code, message, ruMessage, correlationId}}. Сообщение можно показывать пользователю как есть.").
		CustomTable(md.TableSet{
			Header: []string{"Код", "HTTP код", "Сообщение", "Сообщение на русском"},
			Rows:   rows,
		}, md.TableOptions{
			AutoWrapText: false,
		}).Build()
}

// getRows собирает строки таблицы из всех композитных литералов DefinedError{...} в файле.
func getRows(f *ast.File) [][]string {
	var rows [][]string
	for _, d := range f.Decls {
		decl, ok := d.(*ast.GenDecl)
		if !ok || decl.Tok != token.VAR {
			continue
		}
		for _, spec := range decl.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, v := range vs.Values {
				lit, ok := v.(*ast.CompositeLit)
				if !ok || fmt.Sprint(lit.Type) != "DefinedError" {
					continue
				}
				rows = append(rows, definedErrorRow(lit))
			}
		}
	}
	return rows
}

func definedErrorRow(lit *ast.CompositeLit) []string {
	row := make([]string, 4)
	status := "StatusBadRequest"
	for _, el := range lit.Elts {
		param, ok := el.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		switch fmt.Sprint(param.Key) {
		case "Code":
			if b, ok := param.Value.(*ast.BasicLit); ok {
				row[0] = md.Bold(b.Value)
			}
		case "StatusCode":
			if sel, ok := param.Value.(*ast.SelectorExpr); ok {
				status = sel.Sel.Name
			}
		case "Err":
			row[2] = md.Code(stringValue(param.Value))
		case "RuErr":
			row[3] = md.Code(stringValue(param.Value))
		}
	}
	row[1] = fmt.Sprintf("%s %s", getStatusCode(status), md.Italic(status))
	return row
}

func stringValue(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if s, err := strconv.Unquote(e.Value); err == nil {
			return s
		}
		return e.Value
	case *ast.BinaryExpr:
		return stringValue(e.X) + stringValue(e.Y)
	}
	return ""
}

// getStatusCode переводит имя константы net/http (StatusConflict) в числовой код.
func getStatusCode(name string) string {
	for code := 100; code < 600; code++ {
		text := http.StatusText(code)
		if text != "" && "Status"+strings.NewReplacer(" ", "", "-", "", "'", "").Replace(text) == name {
			return strconv.Itoa(code)
		}
	}
	return "?"
}
