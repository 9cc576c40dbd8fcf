// Package frontend parses C++ source into the ast with tree-sitter.
//
// Only the teaching subset is converted. Anything else is reported as
// ErrUnsupported at its location and dropped, so one pass reports every
// problem in a file.
package frontend

import (
	"context"
	"errors"
	"os"
	"runtime"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jamesjuett/lobster-sub011/ast"
)

// Parser converts source files. A Parser is safe for concurrent use;
// each parse gets its own tree-sitter parser.
type Parser struct {
	Logger *zap.Logger
}

func (p *Parser) logger() *zap.Logger {
	if p == nil || p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Parse converts the source of file. The unit is returned even when
// errors are, holding everything that could be converted.
func (p *Parser) Parse(ctx context.Context, file string, src []byte) (unit *ast.TranslationUnit, err error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(cpp.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return
	}
	defer tree.Close()

	c := &converter{file: file, src: src}
	root := tree.RootNode()
	if root.HasError() {
		c.syntaxErrors(root)
	}

	unit = &ast.TranslationUnit{File: file, Decls: c.decls(root)}

	p.logger().Debug("parsed",
		zap.String("file", file),
		zap.Int("bytes", len(src)),
		zap.Int("decls", len(unit.Decls)),
		zap.Int("errors", len(c.errs)),
	)

	err = errors.Join(c.errs...)
	return
}

// ParseFiles reads and parses every path concurrently. Units are
// returned in path order.
func (p *Parser) ParseFiles(ctx context.Context, paths ...string) (units []*ast.TranslationUnit, err error) {
	units = make([]*ast.TranslationUnit, len(paths))
	errs := make([]error, len(paths))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for n, path := range paths {
		eg.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			units[n], errs[n] = p.Parse(egCtx, path, src)
			return nil
		})
	}

	if err = eg.Wait(); err != nil {
		return nil, err
	}

	err = errors.Join(errs...)
	return
}

// syntaxErrors reports every ERROR and MISSING node under n.
func (c *converter) syntaxErrors(n *sitter.Node) {
	switch {
	case n.IsMissing():
		c.fail(n, ErrSyntax, f("missing %v", n.Type()))
		return
	case n.IsError():
		c.fail(n, ErrSyntax, c.text(n))
		return
	}
	for i := range int(n.ChildCount()) {
		if child := n.Child(i); child.HasError() || child.IsMissing() {
			c.syntaxErrors(child)
		}
	}
}
