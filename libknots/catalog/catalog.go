package catalog

import (
	"runtime"
	"sync"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots/poly"
	"github.com/dgraph-io/badger/v3"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey                          => catalogState (varints)

	Family (byte), CanonicalDiagramKey        => poly.Poly (MarshalBinary)
	...

Diagram keys are formed by the skein evaluator (family prefix followed by the canonical
signed Gauss code encoding), so every family occupies its own key range and entries for a
family can be walked with a one byte prefix.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const (
	kMajorVers = 2026
	kMinorVers = 1
)

type catalogState struct {
	MajorVers uint64
	MinorVers uint64
	NumStored uint64
}

func (state *catalogState) Marshal() []byte {
	buf := proto.NewBuffer(make([]byte, 0, 16))
	buf.EncodeVarint(state.MajorVers)
	buf.EncodeVarint(state.MinorVers)
	buf.EncodeVarint(state.NumStored)
	return buf.Bytes()
}

func (state *catalogState) Unmarshal(val []byte) error {
	buf := proto.NewBuffer(val)
	for _, field := range []*uint64{&state.MajorVers, &state.MinorVers, &state.NumStored} {
		v, err := buf.DecodeVarint()
		if err != nil {
			return errors.Wrap(goknots.ErrUnmarshal, err.Error())
		}
		*field = v
	}
	return nil
}

// Catalog is a badger db of evaluated invariants that can back a skein.Evaluator as its cache.
type Catalog struct {
	readOnly bool
	db       *badger.DB

	mu         sync.Mutex
	state      catalogState
	stateDirty bool
}

// OpenCatalog opens (or creates) the catalog at opts.DbPathName, or an in-memory catalog if no path is given.
func OpenCatalog(opts goknots.CatalogOpts) (*Catalog, error) {
	cat := &Catalog{
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // entries are write-once
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(goknots.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = !cat.readOnly
		cat.state.MajorVers = kMajorVers
		cat.state.MinorVers = kMinorVers
	}
	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = errors.Wrapf(goknots.ErrCatalogVersion, "found v%d.%d", cat.state.MajorVers, cat.state.MinorVers)
	}

	if err != nil {
		cat.Close()
		return nil, err
	}
	return cat, nil
}

func (cat *Catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cat.state.Unmarshal(val)
		})
	})
}

func (cat *Catalog) flushState() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if !cat.stateDirty || cat.readOnly {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gCatalogStateKey, cat.state.Marshal())
	})
	if err == nil {
		cat.stateDirty = false
	}
	return err
}

// Close flushes the catalog state and closes the db.
func (cat *Catalog) Close() error {
	if cat.db == nil {
		return nil
	}
	err := cat.flushState()
	if closeErr := cat.db.Close(); err == nil {
		err = closeErr
	}
	cat.db = nil
	return err
}

func (cat *Catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *Catalog) IsClosed() bool {
	return cat.db == nil
}

// NumStored is the number of invariants this catalog has accumulated over its lifetime.
func (cat *Catalog) NumStored() int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return int64(cat.state.NumStored)
}

// Load returns the invariant stored under key.  Decode or I/O failures are logged and reported as a miss.
func (cat *Catalog) Load(key []byte) (poly.Poly, bool) {
	if cat.db == nil {
		return poly.Poly{}, false
	}
	var P poly.Poly
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(P.UnmarshalBinary)
	})
	if err == badger.ErrKeyNotFound {
		return poly.Poly{}, false
	}
	if err != nil {
		klog.Warningf("catalog load failed: %v", err)
		return poly.Poly{}, false
	}
	return P, true
}

// Store adds P under key if it is not already present.  Failures are logged since a catalog
// only ever saves recomputation.  A read-only catalog ignores stores.
func (cat *Catalog) Store(key []byte, P poly.Poly) {
	if cat.readOnly {
		return
	}
	if _, err := cat.TryAdd(key, P); err != nil {
		klog.Warningf("catalog store failed: %v", err)
	}
}

// TryAdd adds P under key, returning true if key was not present and P was added.
func (cat *Catalog) TryAdd(key []byte, P poly.Poly) (bool, error) {
	if cat.db == nil {
		return false, goknots.ErrCatalogClosed
	}
	if cat.readOnly {
		return false, goknots.ErrCatalogReadOnly
	}
	val, err := P.MarshalBinary()
	if err != nil {
		return false, err
	}

	added := false
	err = cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		added = true
		return txn.Set(append([]byte(nil), key...), val)
	})
	if err != nil {
		return false, err
	}

	if added {
		cat.mu.Lock()
		cat.state.NumStored++
		cat.stateDirty = true
		cat.mu.Unlock()
	}
	return added, nil
}

// NumEntries counts the invariants currently stored for the given family.
func (cat *Catalog) NumEntries(family goknots.Family) int64 {
	if cat.db == nil {
		return 0
	}
	prefix := []byte{byte(family)}

	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: false,
		Prefix:         prefix,
	})
	defer it.Close()

	n := int64(0)
	for it.Rewind(); it.Valid(); it.Next() {
		n++
	}
	return n
}

// Select calls onHit with each invariant stored for the given family, in key order, until onHit returns false.
//
// Warning: if onHit() retains the given key, then it must make a copy.
func (cat *Catalog) Select(family goknots.Family, onHit func(key []byte, P poly.Poly) bool) error {
	if cat.db == nil {
		return goknots.ErrCatalogClosed
	}
	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   100,
		Prefix:         []byte{byte(family)},
	})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		var P poly.Poly
		if err := item.Value(P.UnmarshalBinary); err != nil {
			return errors.Wrapf(err, "catalog entry %x", item.Key())
		}
		if !onHit(item.Key(), P) {
			break
		}
	}
	return nil
}
