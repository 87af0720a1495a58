package goknots

const (
	LIB_VERSION = "v1.2026.1"

	// DefaultCacheShards is the shard count of an in-memory memo cache when none is given.
	DefaultCacheShards = 64
)

// Family names a polynomial invariant family and doubles as its catalog key prefix.
type Family byte

const (
	Family_Kauffman Family = 'L' // Kauffman L polynomial, variables a, z
	Family_FPoly    Family = 'F' // writhe-normalized Kauffman polynomial
	Family_Homfly   Family = 'P' // HOMFLY-P polynomial, variables v, z
)

func (f Family) String() string {
	switch f {
	case Family_Kauffman:
		return "kauffman"
	case Family_FPoly:
		return "fpoly"
	case Family_Homfly:
		return "homfly"
	}
	return "unknown"
}

// ParseFamily maps a family letter or name to a Family.
func ParseFamily(name string) (Family, bool) {
	switch name {
	case "L", "l", "kauffman":
		return Family_Kauffman, true
	case "F", "f", "fpoly":
		return Family_FPoly, true
	case "P", "p", "H", "h", "homfly":
		return Family_Homfly, true
	}
	return 0, false
}

// CatalogOpts configures a persistent invariant catalog.
type CatalogOpts struct {
	DbPathName string // empty means an in-memory catalog
	ReadOnly   bool
}

// Stats reports evaluator activity counters.
type Stats struct {
	Evaluations int64 // calls into the memoized evaluation
	CacheHits   int64
	SkeinSteps  int64
	Factorings  int64 // decompositions into more than one group
}
