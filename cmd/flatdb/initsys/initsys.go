package initsys

import (
	"fmt"
	"os"

	"github.com/flatdb-project/flatdb/cmd/flatdb/conf"
	"github.com/flatdb-project/flatdb/cmd/flatdb/option"
	"github.com/flatdb-project/flatdb/cmd/flatdb/util"
	"github.com/flatdb-project/flatdb/cmd/internal/eout"
)

// InitSys creates and initializes a new data directory.
func InitSys(opt *option.Init) error {
	var err error
	// Check for required options.
	if opt.Datadir == "" {
		return fmt.Errorf("data directory not specified")
	}
	// Require that the data directory not already exist.
	var exists bool
	if exists, err = util.FileExists(opt.Datadir); err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s already exists", opt.Datadir)
	}
	eout.Info("initializing")

	// Create the data directory.
	eout.Verbose("creating data directory")
	eout.Trace("mkdir: %s", opt.Datadir)
	err = os.MkdirAll(opt.Datadir, util.ModePermRWX)
	if err != nil {
		return err
	}

	eout.Verbose("writing configuration file")
	if err = conf.WriteConf(opt.Datadir); err != nil {
		return err
	}

	eout.Info("initialization completed")
	return nil
}
