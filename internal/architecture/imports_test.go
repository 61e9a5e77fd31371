package architecture

import (
	"bufio"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
)

func TestImportBoundaries(t *testing.T) {
	root, err := findModuleRoot()
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}

	var violations []string
	err = walkGoFiles(filepath.Join(root, "internal"), func(path string, file *ast.File) {
		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)
		layer := layerFor(rel)
		if layer == "" {
			return
		}
		for _, imp := range file.Imports {
			importPath, err := strconv.Unquote(imp.Path.Value)
			if err != nil || !strings.HasPrefix(importPath, modulePath+"/") {
				continue
			}
			target := strings.TrimPrefix(importPath, modulePath+"/")
			for _, banned := range disallowedImports(layer) {
				if target == banned || strings.HasPrefix(target, banned+"/") {
					violations = append(violations, fmt.Sprintf("%s (%s) imports %s", rel, layer, target))
				}
			}
		}
	}, token.NewFileSet(), parser.ImportsOnly)
	if err != nil {
		t.Fatalf("scan imports: %v", err)
	}
	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("import boundary violations:\n%s", strings.Join(violations, "\n"))
	}
}

// Repo methods that take row locks or mutate counters. Only the aggregates
// package may call them; everything else goes through an aggregate.
var guardedRepoWrites = map[string]map[string]bool{
	"CartRepo": {
		"LockByID":     true,
		"UpdateTotals": true,
	},
	"CartEntryRepo": {
		"Create":          true,
		"LockByID":        true,
		"LockByCartID":    true,
		"LockByProductID": true,
		"UpdateQuantity":  true,
		"DeleteByID":      true,
	},
	"ProductRepo": {
		"LockByID":          true,
		"LockByIDs":         true,
		"KeyShareByID":      true,
		"LockForDeleteByID": true,
		"UpdateInventory":   true,
		"DeleteByID":        true,
	},
}

func TestGuardedRepoWritesStayInAggregates(t *testing.T) {
	root, err := findModuleRoot()
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}

	var violations []string
	for _, dir := range []string{"internal/services", "internal/http", "internal/app", "internal/events", "cmd"} {
		abs := filepath.Join(root, filepath.FromSlash(dir))
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		fset := token.NewFileSet()
		err := walkGoFiles(abs, func(path string, file *ast.File) {
			rel, _ := filepath.Rel(root, path)
			for _, v := range auditRepoWrites(fset, file) {
				violations = append(violations, filepath.ToSlash(rel)+":"+v)
			}
		}, fset, parser.SkipObjectResolution)
		if err != nil {
			t.Fatalf("scan %s: %v", dir, err)
		}
	}
	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("guarded repo writes outside aggregates:\n%s", strings.Join(violations, "\n"))
	}
}

func TestAuditRepoWritesFlagsDirectMutation(t *testing.T) {
	src := `package services

import "github.com/yungbote/marketplace-backend/internal/data/repos"

type cartService struct {
	carts   repos.CartRepo
	entries repos.CartEntryRepo
}

func (s *cartService) Bad() {
	_ = s.carts.UpdateTotals(nil, id, 0, zero)
	_, _ = s.entries.ListByCartID(nil, id)
	_, _ = s.entries.DeleteByID(nil, id)
}
`
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "bad.go", src, parser.SkipObjectResolution)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := auditRepoWrites(fset, file)
	if len(got) != 2 {
		t.Fatalf("violations: want=2 got=%d (%v)", len(got), got)
	}
	if !strings.Contains(got[0], "CartRepo.UpdateTotals") {
		t.Fatalf("first violation: got=%s", got[0])
	}
	if !strings.Contains(got[1], "CartEntryRepo.DeleteByID") {
		t.Fatalf("second violation: got=%s", got[1])
	}
}

// auditRepoWrites reports calls of the form recv.field.Method(...) where field
// is a struct field typed as a guarded repos interface.
func auditRepoWrites(fset *token.FileSet, file *ast.File) []string {
	repoFields := map[string]string{}
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			for _, field := range st.Fields.List {
				repoType := reposTypeName(field.Type)
				if _, guarded := guardedRepoWrites[repoType]; !guarded {
					continue
				}
				for _, name := range field.Names {
					repoFields[name.Name] = repoType
				}
			}
		}
	}
	if len(repoFields) == 0 {
		return nil
	}

	var out []string
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		method, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		field, ok := method.X.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		repoType, ok := repoFields[field.Sel.Name]
		if !ok || !guardedRepoWrites[repoType][method.Sel.Name] {
			return true
		}
		pos := fset.Position(call.Pos())
		out = append(out, fmt.Sprintf("%d %s.%s", pos.Line, repoType, method.Sel.Name))
		return true
	})
	return out
}

func reposTypeName(expr ast.Expr) string {
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok {
		return ""
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != "repos" {
		return ""
	}
	return sel.Sel.Name
}

func walkGoFiles(dir string, fn func(path string, file *ast.File), fset *token.FileSet, mode parser.Mode) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "_") || d.Name() == "testdata" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		file, err := parser.ParseFile(fset, path, nil, mode)
		if err != nil {
			return err
		}
		fn(path, file)
		return nil
	})
}

func layerFor(rel string) string {
	switch {
	case strings.HasPrefix(rel, "internal/platform/"):
		return "platform"
	case strings.HasPrefix(rel, "internal/domain/"):
		return "domain"
	case strings.HasPrefix(rel, "internal/data/"):
		return "data"
	case strings.HasPrefix(rel, "internal/events/"):
		return "events"
	case strings.HasPrefix(rel, "internal/services/"):
		return "services"
	case strings.HasPrefix(rel, "internal/observability/"):
		return "observability"
	default:
		return ""
	}
}

func disallowedImports(layer string) []string {
	switch layer {
	case "platform":
		return []string{"internal/domain", "internal/data", "internal/events", "internal/services", "internal/http", "internal/app"}
	case "domain":
		return []string{"internal/data", "internal/events", "internal/services", "internal/http", "internal/app"}
	case "data":
		return []string{"internal/events", "internal/services", "internal/http", "internal/app"}
	case "events":
		return []string{"internal/services", "internal/http", "internal/app"}
	case "services":
		return []string{"internal/http", "internal/app"}
	case "observability":
		return []string{"internal/data", "internal/services", "internal/http", "internal/app"}
	default:
		return nil
	}
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		mp := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if mp == "" {
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
		return mp, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
