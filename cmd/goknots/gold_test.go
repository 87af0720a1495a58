package main

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/go-python/gpython/py"
	"github.com/stretchr/testify/require"
)

// TestGold runs each script in learn/ and compares its output with learn/gold.
func TestGold(t *testing.T) {
	scriptDir := "learn/"
	files, err := os.ReadDir(scriptDir)
	require.NoError(t, err)

	goldDir := path.Join(scriptDir, "gold")
	outDir := t.TempDir()

	for _, fi := range files {
		pyFile := path.Join(scriptDir, fi.Name())
		ext := filepath.Ext(pyFile)
		if ext != ".py" {
			continue
		}
		base := fi.Name()[:len(fi.Name())-len(ext)] + ".txt"
		outputPathname := path.Join(outDir, base)
		{
			ctx := py.NewContext(py.DefaultContextOpts())
			redirect, err := RedirectToFile(outputPathname, ctx)
			require.NoError(t, err)

			_, err = py.RunFile(ctx, pyFile, py.CompileOpts{}, nil)
			if err != nil {
				py.TracebackDump(err)
			}
			require.NoError(t, err, pyFile)
			ctx.Close()
			<-ctx.Done()

			require.NoError(t, redirect.Close())
		}

		got, err := os.ReadFile(outputPathname)
		require.NoError(t, err)
		want, err := os.ReadFile(path.Join(goldDir, base))
		require.NoError(t, err)
		require.Equal(t, string(want), string(got), pyFile)
	}
}

type pyRedirect struct {
	file *os.File
}

func RedirectToFile(outputPathname string, ctx py.Context) (io.Closer, error) {
	ofile, err := os.OpenFile(outputPathname, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}

	sys := ctx.Store().MustGetModule("sys")
	sys.Globals["stdout"] = &py.File{
		File:     ofile,
		FileMode: py.FileWrite,
	}

	return &pyRedirect{file: ofile}, nil
}

func (redir *pyRedirect) Close() error {
	return redir.file.Close()
}
