package pyknots

import (
	"os"
	"sync"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots/catalog"
	"github.com/2x3systems/goknots/libknots/codes"
	"github.com/2x3systems/goknots/libknots/poly"
	"github.com/2x3systems/goknots/libknots/skein"
	"github.com/go-python/gpython/py"
)

var (
	pyDiagramType   = py.NewType("Diagram", "a knot or link diagram held as a signed Gauss code")
	pyCatalogType   = py.NewType("Catalog", "a persistent store of evaluated invariants")
	pyWorkspaceType = py.NewType("Workspace", "collects open catalogs so they close with the script")
)

const (
	READ_ONLY = 0x01

	kWorkspaceAttr = "_Workspace"
)

type pyDiagram struct {
	codes.SGCode
}

func (D pyDiagram) Type() *py.Type {
	return pyDiagramType
}

func (D pyDiagram) M__str__() (py.Object, error) {
	return py.String(D.String()), nil
}

func (D pyDiagram) M__repr__() (py.Object, error) {
	return py.String("Diagram(\"" + D.String() + "\")"), nil
}

// loadDiagram accepts a Diagram or PD / signed Gauss code text.
func loadDiagram(obj py.Object) (codes.SGCode, error) {
	switch arg := obj.(type) {
	case pyDiagram:
		return arg.SGCode, nil
	case py.String:
		D, err := codes.ParseDiagram(string(arg))
		if err != nil {
			return codes.SGCode{}, py.ExceptionNewf(py.ValueError, "%v", err)
		}
		return D, nil
	}
	return codes.SGCode{}, py.ExceptionNewf(py.TypeError, "expected Diagram or str (got %v)", obj.Type().Name)
}

func diagramArg(args py.Tuple) (codes.SGCode, error) {
	if len(args) != 1 {
		return codes.SGCode{}, py.ExceptionNewf(py.TypeError, "expected 1 argument (got %d)", len(args))
	}
	return loadDiagram(args[0])
}

func py_NewDiagram(module py.Object, args py.Tuple) (py.Object, error) {
	D, err := diagramArg(args)
	if err != nil {
		return nil, err
	}
	if err = D.Validate(); err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return pyDiagram{D}, nil
}

func evaluate(family goknots.Family, D codes.SGCode) (py.Object, error) {
	var (
		P   poly.Poly
		err error
	)
	switch family {
	case goknots.Family_Kauffman:
		P, err = skein.KauffmanPolynomial(D)
	case goknots.Family_FPoly:
		P, err = skein.FPolynomial(D)
	case goknots.Family_Homfly:
		P, err = skein.HomflyPolynomial(D)
	}
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.String(P.String()), nil
}

func familyMethod(family goknots.Family) func(py.Object, py.Tuple) (py.Object, error) {
	return func(self py.Object, args py.Tuple) (py.Object, error) {
		var D codes.SGCode
		if X, isDiagram := self.(pyDiagram); isDiagram {
			D = X.SGCode
		} else {
			var err error
			if D, err = diagramArg(args); err != nil {
				return nil, err
			}
		}
		return evaluate(family, D)
	}
}

func py_Diagram_Writhe(self py.Object, args py.Tuple) (py.Object, error) {
	D := self.(pyDiagram)
	return py.Int(D.Writhe()), nil
}

func py_Diagram_NumComponents(self py.Object, args py.Tuple) (py.Object, error) {
	D := self.(pyDiagram)
	return py.Int(D.NumComponents()), nil
}

func py_Diagram_NumCrossings(self py.Object, args py.Tuple) (py.Object, error) {
	D := self.(pyDiagram)
	return py.Int(D.NumCrossings()), nil
}

func py_Diagram_Mirror(self py.Object, args py.Tuple) (py.Object, error) {
	D := self.(pyDiagram)
	return pyDiagram{D.Mirror()}, nil
}

func py_Diagram_Canonical(self py.Object, args py.Tuple) (py.Object, error) {
	D := self.(pyDiagram)
	return pyDiagram{D.Canonical()}, nil
}

func py_Diagram_Switch(self py.Object, args py.Tuple) (py.Object, error) {
	D := self.(pyDiagram)
	var id int32
	if err := py.LoadTuple(args, []interface{}{&id}); err != nil {
		return nil, err
	}
	S, err := D.SwitchCrossing(codes.CrossingID(id))
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return pyDiagram{S}, nil
}

func py_Writhe(module py.Object, args py.Tuple) (py.Object, error) {
	D, err := diagramArg(args)
	if err != nil {
		return nil, err
	}
	return py.Int(D.Writhe()), nil
}

type Workspace struct {
	mu       sync.Mutex
	catalogs []*catalog.Catalog
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func (ws *Workspace) Close() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for _, cat := range ws.catalogs {
		cat.Close()
	}
	ws.catalogs = nil
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		wsObj = &Workspace{}
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj, nil
}

func py_Workspace_CatalogExists(self py.Object, args py.Tuple) (py.Object, error) {
	var pathname string
	if err := py.LoadTuple(args, []interface{}{&pathname}); err != nil {
		return nil, err
	}
	if _, err := os.Stat(pathname); os.IsNotExist(err) {
		return py.False, nil
	}
	return py.True, nil
}

func py_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)

	var pathname string
	var flags int32
	if err := py.LoadTuple(args, []interface{}{&pathname, &flags}); err != nil {
		return nil, err
	}

	cat, err := catalog.OpenCatalog(goknots.CatalogOpts{
		DbPathName: pathname,
		ReadOnly:   (flags & READ_ONLY) != 0,
	})
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}

	tiered := skein.NewTieredCache(cat)
	pyCat := &pyCatalog{
		Catalog:    cat,
		evaluators: make(map[goknots.Family]*skein.Evaluator),
	}
	for _, rule := range []skein.Rule{skein.Kauffman(), skein.Homfly()} {
		ev, err := skein.NewEvaluator(rule, skein.WithCache(tiered))
		if err != nil {
			cat.Close()
			return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
		}
		pyCat.evaluators[rule.Family] = ev
	}
	pyCat.evaluators[goknots.Family_FPoly] = pyCat.evaluators[goknots.Family_Kauffman]

	ws.mu.Lock()
	ws.catalogs = append(ws.catalogs, cat)
	ws.mu.Unlock()
	return pyCat, nil
}

type pyCatalog struct {
	*catalog.Catalog
	evaluators map[goknots.Family]*skein.Evaluator
}

func (cat *pyCatalog) Type() *py.Type {
	return pyCatalogType
}

func catalogMethod(family goknots.Family) func(py.Object, py.Tuple) (py.Object, error) {
	return func(self py.Object, args py.Tuple) (py.Object, error) {
		cat := self.(*pyCatalog)
		if cat.IsClosed() {
			return nil, py.ExceptionNewf(py.RuntimeError, "%v", goknots.ErrCatalogClosed)
		}
		D, err := diagramArg(args)
		if err != nil {
			return nil, err
		}
		P, err := skein.Compute(cat.evaluators[family], family, D)
		if err != nil {
			return nil, py.ExceptionNewf(py.ValueError, "%v", err)
		}
		return py.String(P.String()), nil
	}
}

func py_Catalog_NumEntries(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(*pyCatalog)
	var name string
	if err := py.LoadTuple(args, []interface{}{&name}); err != nil {
		return nil, err
	}
	family, ok := goknots.ParseFamily(name)
	if !ok {
		return nil, py.ExceptionNewf(py.ValueError, "unknown invariant family %q", name)
	}
	if cat.IsClosed() {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", goknots.ErrCatalogClosed)
	}
	return py.Int(cat.NumEntries(family)), nil
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(*pyCatalog)
	if err := cat.Close(); err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.None, nil
}

func init() {

	/////////////////////////////////
	// Diagram
	{
		pyDiagramType.Dict["Writhe"] = py.MustNewMethod("Writhe", py_Diagram_Writhe, 0, "sum of crossing signs")
		pyDiagramType.Dict["NumComponents"] = py.MustNewMethod("NumComponents", py_Diagram_NumComponents, 0, "")
		pyDiagramType.Dict["NumCrossings"] = py.MustNewMethod("NumCrossings", py_Diagram_NumCrossings, 0, "")
		pyDiagramType.Dict["Mirror"] = py.MustNewMethod("Mirror", py_Diagram_Mirror, 0, "")
		pyDiagramType.Dict["Canonical"] = py.MustNewMethod("Canonical", py_Diagram_Canonical, 0, "")
		pyDiagramType.Dict["Switch"] = py.MustNewMethod("Switch", py_Diagram_Switch, 0, "switches the given crossing")
		pyDiagramType.Dict["Kauffman"] = py.MustNewMethod("Kauffman", familyMethod(goknots.Family_Kauffman), 0, "")
		pyDiagramType.Dict["FPoly"] = py.MustNewMethod("FPoly", familyMethod(goknots.Family_FPoly), 0, "")
		pyDiagramType.Dict["Homfly"] = py.MustNewMethod("Homfly", familyMethod(goknots.Family_Homfly), 0, "")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["Kauffman"] = py.MustNewMethod("Kauffman", catalogMethod(goknots.Family_Kauffman), 0, "")
		pyCatalogType.Dict["FPoly"] = py.MustNewMethod("FPoly", catalogMethod(goknots.Family_FPoly), 0, "")
		pyCatalogType.Dict["Homfly"] = py.MustNewMethod("Homfly", catalogMethod(goknots.Family_Homfly), 0, "")
		pyCatalogType.Dict["NumEntries"] = py.MustNewMethod("NumEntries", py_Catalog_NumEntries, 0, "")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["OpenCatalog"] = py.MustNewMethod("OpenCatalog", py_Workspace_OpenCatalog, 0, "")
		pyWorkspaceType.Dict["CatalogExists"] = py.MustNewMethod("CatalogExists", py_Workspace_CatalogExists, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("Diagram", py_NewDiagram, 0, "reads a PD or signed Gauss code"),
			py.MustNewMethod("kauffman", familyMethod(goknots.Family_Kauffman), 0, "Kauffman L polynomial in a, z"),
			py.MustNewMethod("fpoly", familyMethod(goknots.Family_FPoly), 0, "writhe-normalized Kauffman polynomial"),
			py.MustNewMethod("homfly", familyMethod(goknots.Family_Homfly), 0, "HOMFLY-P polynomial in v, z"),
			py.MustNewMethod("writhe", py_Writhe, 0, ""),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(goknots.LIB_VERSION),
			"READ_ONLY":   py.Int(READ_ONLY),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pyknots",
				Doc:  "knot and link polynomial invariants",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}
