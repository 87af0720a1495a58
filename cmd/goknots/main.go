package main

import (
	"flag"
	"os"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots/catalog"
	"github.com/2x3systems/goknots/libknots/skein"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	err := newRootCmd().Execute()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "goknots",
		Short:        "Kauffman and HOMFLY-P polynomials of knots and links",
		Version:      goknots.LIB_VERSION,
		SilenceUsage: true,
	}

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})
	fset.VisitAll(func(f *flag.Flag) {
		pf := pflag.PFlagFromGoFlag(f)
		if pf.Name == "v" {
			pf.Shorthand = "v"
		}
		root.PersistentFlags().AddFlag(pf)
	})

	root.AddCommand(
		newEvalCmd(),
		newBatchCmd(),
		newRunCmd(),
	)
	return root
}

// cacheFlags selects where evaluated invariants are kept.
type cacheFlags struct {
	catalogPath string
	readOnly    bool
}

func (cf *cacheFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&cf.catalogPath, "catalog", "", "badger catalog directory retaining evaluated invariants")
	flags.BoolVar(&cf.readOnly, "read-only", false, "open the catalog read-only")
}

// open returns the cache to evaluate with and a func releasing it.  A catalog is fronted by an
// in-memory cache so that a read-only catalog still memoizes.
func (cf *cacheFlags) open() (skein.Cache, func(), error) {
	if cf.catalogPath == "" {
		return skein.NewMemoCache(0), func() {}, nil
	}
	cat, err := catalog.OpenCatalog(goknots.CatalogOpts{
		DbPathName: cf.catalogPath,
		ReadOnly:   cf.readOnly,
	})
	if err != nil {
		return nil, nil, err
	}
	klog.V(1).Infof("opened catalog %q (%d entries stored)", cf.catalogPath, cat.NumStored())
	return skein.NewTieredCache(cat), func() {
		if err := cat.Close(); err != nil {
			klog.Warningf("closing catalog: %v", err)
		}
	}, nil
}
