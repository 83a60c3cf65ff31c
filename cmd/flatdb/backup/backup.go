// Package backup archives a database directory and restores archives
// into a data directory.  An archive is a tar stream of the
// database's table files, compressed with lz4.
package backup

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/flatdb-project/flatdb/cmd/flatdb/dberr"
	"github.com/flatdb-project/flatdb/cmd/flatdb/log"
	"github.com/flatdb-project/flatdb/cmd/flatdb/util"
	"github.com/pierrec/lz4/v4"
)

// Backup writes an archive of a database directory to w.  Only table
// files are archived; other directory entries are skipped.
func Backup(dbdir string, w io.Writer) error {
	entries, err := os.ReadDir(dbdir)
	if err != nil {
		return dberr.Storage(err, "reading database directory %s", dbdir)
	}
	zw := lz4.NewWriter(w)
	tw := tar.NewWriter(zw)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if util.TableFileStem(e.Name()) == "" {
			continue
		}
		if err = addFile(tw, dbdir, e.Name()); err != nil {
			return err
		}
	}
	if err = tw.Close(); err != nil {
		return fmt.Errorf("closing archive: %v", err)
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("closing compressed stream: %v", err)
	}
	return nil
}

func addFile(tw *tar.Writer, dbdir, name string) error {
	filename := filepath.Join(dbdir, name)
	info, err := os.Stat(filename)
	if err != nil {
		return dberr.Storage(err, "reading table file %s", filename)
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("archiving table file %s: %v", filename, err)
	}
	hdr.Name = name
	if err = tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("archiving table file %s: %v", filename, err)
	}
	f, err := os.Open(filename)
	if err != nil {
		return dberr.Storage(err, "reading table file %s", filename)
	}
	if _, err = io.Copy(tw, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("archiving table file %s: %v", filename, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("closing table file %s: %v", filename, err)
	}
	log.Debug("archived table file: %s", name)
	return nil
}

// Restore reads an archive from r and writes it as a new database
// under the data directory.  It fails if a database with the same
// name already exists.
func Restore(r io.Reader, datadir, name string) error {
	if !util.ValidName(name) {
		return dberr.Validation("invalid database name %q", name)
	}
	dir := util.DatabaseDirName(datadir, name)
	exists, err := util.FileExists(dir)
	if err != nil {
		return dberr.Storage(err, "checking database directory %s", dir)
	}
	if exists {
		return dberr.Validation("Database with name %q already exists.", name)
	}
	if err = os.Mkdir(dir, util.ModePermRWX); err != nil {
		return dberr.Storage(err, "creating database directory %s", dir)
	}
	tr := tar.NewReader(lz4.NewReader(r))
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading archive: %v", err)
		}
		if err = extractFile(tr, hdr, dir); err != nil {
			return err
		}
	}
	return nil
}

// extractFile writes one archive entry into the database directory.
// Entries must be regular files named like table files, with no path
// separators.
func extractFile(tr *tar.Reader, hdr *tar.Header, dir string) error {
	name := hdr.Name
	if hdr.Typeflag != tar.TypeReg {
		return fmt.Errorf("invalid archive entry %q: not a regular file", name)
	}
	if name != filepath.Base(name) || util.TableFileStem(name) == "" {
		return fmt.Errorf("invalid archive entry %q", name)
	}
	filename := filepath.Join(dir, name)
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, util.ModePermRW)
	if err != nil {
		return dberr.Storage(err, "creating table file %s", filename)
	}
	if _, err = io.Copy(f, tr); err != nil {
		_ = f.Close()
		return fmt.Errorf("extracting table file %s: %v", filename, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("closing table file %s: %v", filename, err)
	}
	log.Debug("restored table file: %s", name)
	return nil
}
