// Package conf reads and writes flatdb configuration: the data
// directory configuration file written at initialization, and the
// optional per-user configuration file that supplies a default data
// directory.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/flatdb-project/flatdb/cmd/flatdb/util"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// WriteConf writes a new configuration file into a data directory.
func WriteConf(datadir string) error {
	f, err := os.Create(util.ConfigFileName(datadir))
	if err != nil {
		return fmt.Errorf("creating configuration file: %v", err)
	}
	var s = "[main]\n" +
		"datadir_version = " + strconv.FormatInt(util.DatadirVersion, 10) + "\n"
	if _, err = f.WriteString(s); err != nil {
		return fmt.Errorf("writing configuration file: %v", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("closing configuration file: %v", err)
	}
	return nil
}

// ReadVersion reads the data directory version from the configuration
// file.
func ReadVersion(datadir string) (int64, error) {
	cfg, err := ini.Load(util.ConfigFileName(datadir))
	if err != nil {
		return 0, fmt.Errorf("reading configuration file: %v", err)
	}
	v, err := cfg.Section("main").Key("datadir_version").Int64()
	if err != nil {
		return 0, fmt.Errorf("reading data directory version: %v", err)
	}
	return v, nil
}

// Check verifies that a data directory exists and was initialized
// with a compatible layout version.
func Check(datadir string) error {
	if datadir == "" {
		return fmt.Errorf("data directory not specified")
	}
	exists, err := util.FileExists(util.ConfigFileName(datadir))
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("data directory not found: %s", datadir)
	}
	v, err := ReadVersion(datadir)
	if err != nil {
		return err
	}
	if v != util.DatadirVersion {
		return fmt.Errorf("data directory version %d not compatible with flatdb %s",
			v, util.FlatdbVersion)
	}
	return nil
}

// DefaultDatadir returns the data directory to use when none is given
// on the command line: the FLATDB_DATADIR environment variable if
// set, otherwise the "datadir" setting in ~/.flatdb.json.  It returns
// "" if neither is configured.
func DefaultDatadir() (string, error) {
	if dir := os.Getenv("FLATDB_DATADIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	userconf := filepath.Join(home, ".flatdb.json")
	exists, err := util.FileExists(userconf)
	if err != nil || !exists {
		return "", nil
	}
	viper.SetConfigFile(userconf)
	viper.SetConfigType("json")
	if err = viper.ReadInConfig(); err != nil {
		return "", fmt.Errorf("error reading file: %s: %s", userconf, err)
	}
	return viper.GetString("datadir"), nil
}
