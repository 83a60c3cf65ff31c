package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/flatdb-project/flatdb/cmd/flatdb/backup"
	"github.com/flatdb-project/flatdb/cmd/flatdb/conf"
	"github.com/flatdb-project/flatdb/cmd/flatdb/database"
	"github.com/flatdb-project/flatdb/cmd/flatdb/dberr"
	"github.com/flatdb-project/flatdb/cmd/flatdb/dbx"
	"github.com/flatdb-project/flatdb/cmd/flatdb/export"
	"github.com/flatdb-project/flatdb/cmd/flatdb/initsys"
	"github.com/flatdb-project/flatdb/cmd/flatdb/log"
	"github.com/flatdb-project/flatdb/cmd/flatdb/option"
	"github.com/flatdb-project/flatdb/cmd/flatdb/record"
	"github.com/flatdb-project/flatdb/cmd/flatdb/table"
	"github.com/flatdb-project/flatdb/cmd/flatdb/types"
	"github.com/flatdb-project/flatdb/cmd/flatdb/util"
	"github.com/flatdb-project/flatdb/cmd/internal/color"
	"github.com/flatdb-project/flatdb/cmd/internal/eout"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var program = "flatdb"

var colorMode string
var devMode bool

var colorInitialized bool

func main() {
	colorMode = os.Getenv("FLATDB_COLOR")
	devMode = (os.Getenv("FLATDB_DEV") == "on")
	flatdbMain()
}

func flatdbMain() {
	// Initialize error output
	eout.Init(program)
	// Run
	var err error
	if err = run(os.Args); err != nil {
		if !colorInitialized {
			color.NeverColor()
		}
		eout.Error("%s", err)
		os.Exit(1)
	}
}

func run(args []string) error {

	var globalOpt = option.Global{}
	var initOpt = option.Init{}
	var createDBOpt = option.CreateDB{}
	var createTableOpt = option.CreateTable{}
	var tablesOpt = option.Tables{}
	var insertOpt = option.Insert{}
	var queryOpt = option.Query{}
	var countOpt = option.Count{}
	var describeOpt = option.Describe{}
	var exportOpt = option.Export{}
	var backupOpt = option.Backup{}
	var restoreOpt = option.Restore{}

	var logfile, csvlogfile string
	var debug, trace bool
	var passwordFile string
	var passwordPrompt bool

	var cmdInit = &cobra.Command{
		Use: "init",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if err = initColor(); err != nil {
				return err
			}
			if initOpt.Datadir == "" {
				if initOpt.Datadir, err = conf.DefaultDatadir(); err != nil {
					return err
				}
			}
			if err = initsys.InitSys(&initOpt); err != nil {
				return err
			}
			return nil
		},
	}
	cmdInit.SetHelpFunc(help)
	_ = dirFlag(cmdInit, &initOpt.Datadir)
	_ = verboseFlag(cmdInit, &eout.EnableVerbose)
	_ = traceFlag(cmdInit, &eout.EnableTrace)

	var cmdCreateDB = &cobra.Command{
		Use:  "createdb",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if err = initColor(); err != nil {
				return err
			}
			if _, _, err = setupLog(logfile, csvlogfile, debug, trace); err != nil {
				return err
			}
			if err = resolveDatadir(&globalOpt); err != nil {
				return err
			}
			createDBOpt.Global = globalOpt
			createDBOpt.Name = args[0]
			if err = runCreateDB(&createDBOpt); err != nil {
				return err
			}
			return nil
		},
	}
	cmdCreateDB.SetHelpFunc(help)
	_ = dirFlag(cmdCreateDB, &globalOpt.Datadir)
	_ = verboseFlag(cmdCreateDB, &eout.EnableVerbose)
	_ = debugFlag(cmdCreateDB, &debug)
	_ = traceLogFlag(cmdCreateDB, &trace)

	var cmdCreateTable = &cobra.Command{
		Use:  "createtable",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if err = initColor(); err != nil {
				return err
			}
			if _, _, err = setupLog(logfile, csvlogfile, debug, trace); err != nil {
				return err
			}
			if err = resolveDatadir(&globalOpt); err != nil {
				return err
			}
			createTableOpt.Global = globalOpt
			createTableOpt.Table = args[0]
			createTableOpt.Columns = args[1:]
			if err = runCreateTable(&createTableOpt); err != nil {
				return err
			}
			return nil
		},
	}
	cmdCreateTable.SetHelpFunc(help)
	_ = databaseFlag(cmdCreateTable, &createTableOpt.DBName)
	_ = cmdCreateTable.MarkFlagRequired("database")
	_ = dirFlag(cmdCreateTable, &globalOpt.Datadir)
	_ = verboseFlag(cmdCreateTable, &eout.EnableVerbose)
	_ = debugFlag(cmdCreateTable, &debug)
	_ = traceLogFlag(cmdCreateTable, &trace)

	var cmdTables = &cobra.Command{
		Use: "tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if err = initColor(); err != nil {
				return err
			}
			if _, _, err = setupLog(logfile, csvlogfile, debug, trace); err != nil {
				return err
			}
			if err = resolveDatadir(&globalOpt); err != nil {
				return err
			}
			tablesOpt.Global = globalOpt
			if err = runTables(&tablesOpt); err != nil {
				return err
			}
			return nil
		},
	}
	cmdTables.SetHelpFunc(help)
	_ = databaseFlag(cmdTables, &tablesOpt.DBName)
	_ = cmdTables.MarkFlagRequired("database")
	_ = dirFlag(cmdTables, &globalOpt.Datadir)
	_ = verboseFlag(cmdTables, &eout.EnableVerbose)
	_ = debugFlag(cmdTables, &debug)
	_ = traceLogFlag(cmdTables, &trace)

	var cmdInsert = &cobra.Command{
		Use:  "insert",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if err = initColor(); err != nil {
				return err
			}
			if _, _, err = setupLog(logfile, csvlogfile, debug, trace); err != nil {
				return err
			}
			if err = resolveDatadir(&globalOpt); err != nil {
				return err
			}
			insertOpt.Global = globalOpt
			insertOpt.Table = args[0]
			insertOpt.Values = args[1:]
			if err = runInsert(&insertOpt); err != nil {
				return err
			}
			return nil
		},
	}
	cmdInsert.SetHelpFunc(help)
	_ = databaseFlag(cmdInsert, &insertOpt.DBName)
	_ = cmdInsert.MarkFlagRequired("database")
	_ = dirFlag(cmdInsert, &globalOpt.Datadir)
	_ = verboseFlag(cmdInsert, &eout.EnableVerbose)
	_ = debugFlag(cmdInsert, &debug)
	_ = traceLogFlag(cmdInsert, &trace)

	var cmdQuery = &cobra.Command{
		Use:  "query",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if err = initColor(); err != nil {
				return err
			}
			if _, _, err = setupLog(logfile, csvlogfile, debug, trace); err != nil {
				return err
			}
			if err = resolveDatadir(&globalOpt); err != nil {
				return err
			}
			queryOpt.Global = globalOpt
			queryOpt.Table = args[0]
			queryOpt.Filters = args[1:]
			if err = runQuery(&queryOpt); err != nil {
				return err
			}
			return nil
		},
	}
	cmdQuery.SetHelpFunc(help)
	_ = databaseFlag(cmdQuery, &queryOpt.DBName)
	_ = cmdQuery.MarkFlagRequired("database")
	_ = dirFlag(cmdQuery, &globalOpt.Datadir)
	_ = verboseFlag(cmdQuery, &eout.EnableVerbose)
	_ = debugFlag(cmdQuery, &debug)
	_ = traceLogFlag(cmdQuery, &trace)

	var cmdCount = &cobra.Command{
		Use:  "count",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if err = initColor(); err != nil {
				return err
			}
			if _, _, err = setupLog(logfile, csvlogfile, debug, trace); err != nil {
				return err
			}
			if err = resolveDatadir(&globalOpt); err != nil {
				return err
			}
			countOpt.Global = globalOpt
			countOpt.Table = args[0]
			if err = runCount(&countOpt); err != nil {
				return err
			}
			return nil
		},
	}
	cmdCount.SetHelpFunc(help)
	_ = databaseFlag(cmdCount, &countOpt.DBName)
	_ = cmdCount.MarkFlagRequired("database")
	_ = dirFlag(cmdCount, &globalOpt.Datadir)
	_ = verboseFlag(cmdCount, &eout.EnableVerbose)
	_ = debugFlag(cmdCount, &debug)
	_ = traceLogFlag(cmdCount, &trace)

	var cmdDescribe = &cobra.Command{
		Use:  "describe",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if err = initColor(); err != nil {
				return err
			}
			if _, _, err = setupLog(logfile, csvlogfile, debug, trace); err != nil {
				return err
			}
			if err = resolveDatadir(&globalOpt); err != nil {
				return err
			}
			describeOpt.Global = globalOpt
			describeOpt.Table = args[0]
			if err = runDescribe(&describeOpt); err != nil {
				return err
			}
			return nil
		},
	}
	cmdDescribe.SetHelpFunc(help)
	_ = databaseFlag(cmdDescribe, &describeOpt.DBName)
	_ = cmdDescribe.MarkFlagRequired("database")
	_ = dirFlag(cmdDescribe, &globalOpt.Datadir)
	_ = verboseFlag(cmdDescribe, &eout.EnableVerbose)
	_ = debugFlag(cmdDescribe, &debug)
	_ = traceLogFlag(cmdDescribe, &trace)

	var cmdExport = &cobra.Command{
		Use: "export",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if err = initColor(); err != nil {
				return err
			}
			if _, _, err = setupLog(logfile, csvlogfile, debug, trace); err != nil {
				return err
			}
			if err = resolveDatadir(&globalOpt); err != nil {
				return err
			}
			exportOpt.Global = globalOpt
			if passwordFile != "" && passwordPrompt {
				return fmt.Errorf("password file and prompt cannot be used together")
			}
			if passwordFile != "" {
				if exportOpt.Password, err = ReadPasswordFile(passwordFile); err != nil {
					return err
				}
			}
			if passwordPrompt {
				if exportOpt.Password, err = inputPassword("Database password: ", false); err != nil {
					return err
				}
			}
			if err = runExport(&exportOpt); err != nil {
				return err
			}
			return nil
		},
	}
	cmdExport.SetHelpFunc(help)
	_ = databaseFlag(cmdExport, &exportOpt.DBName)
	_ = cmdExport.MarkFlagRequired("database")
	_ = dburiFlag(cmdExport, &exportOpt.DatabaseURI)
	_ = cmdExport.MarkFlagRequired("dburi")
	_ = pwpromptFlag(cmdExport, &passwordPrompt)
	_ = pwfileFlag(cmdExport, &passwordFile)
	_ = schemaFlag(cmdExport, &exportOpt.Schema)
	_ = dirFlag(cmdExport, &globalOpt.Datadir)
	_ = logFlag(cmdExport, &logfile)
	_ = csvlogFlag(cmdExport, &csvlogfile)
	_ = verboseFlag(cmdExport, &eout.EnableVerbose)
	_ = debugFlag(cmdExport, &debug)
	_ = traceLogFlag(cmdExport, &trace)

	var cmdBackup = &cobra.Command{
		Use: "backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if err = initColor(); err != nil {
				return err
			}
			if _, _, err = setupLog(logfile, csvlogfile, debug, trace); err != nil {
				return err
			}
			if err = resolveDatadir(&globalOpt); err != nil {
				return err
			}
			backupOpt.Global = globalOpt
			if err = runBackup(&backupOpt); err != nil {
				return err
			}
			return nil
		},
	}
	cmdBackup.SetHelpFunc(help)
	_ = databaseFlag(cmdBackup, &backupOpt.DBName)
	_ = cmdBackup.MarkFlagRequired("database")
	_ = outputFlag(cmdBackup, &backupOpt.Output)
	_ = dirFlag(cmdBackup, &globalOpt.Datadir)
	_ = logFlag(cmdBackup, &logfile)
	_ = csvlogFlag(cmdBackup, &csvlogfile)
	_ = verboseFlag(cmdBackup, &eout.EnableVerbose)
	_ = debugFlag(cmdBackup, &debug)
	_ = traceLogFlag(cmdBackup, &trace)

	var cmdRestore = &cobra.Command{
		Use:  "restore",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if err = initColor(); err != nil {
				return err
			}
			if _, _, err = setupLog(logfile, csvlogfile, debug, trace); err != nil {
				return err
			}
			if err = resolveDatadir(&globalOpt); err != nil {
				return err
			}
			restoreOpt.Global = globalOpt
			restoreOpt.Archive = args[0]
			if err = runRestore(&restoreOpt); err != nil {
				return err
			}
			return nil
		},
	}
	cmdRestore.SetHelpFunc(help)
	_ = databaseFlag(cmdRestore, &restoreOpt.DBName)
	_ = cmdRestore.MarkFlagRequired("database")
	_ = dirFlag(cmdRestore, &globalOpt.Datadir)
	_ = logFlag(cmdRestore, &logfile)
	_ = csvlogFlag(cmdRestore, &csvlogfile)
	_ = verboseFlag(cmdRestore, &eout.EnableVerbose)
	_ = debugFlag(cmdRestore, &debug)
	_ = traceLogFlag(cmdRestore, &trace)

	var cmdVersion = &cobra.Command{
		Use: "version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("flatdb version %s\n", util.FlatdbVersion)
			return nil
		},
	}
	cmdVersion.SetHelpFunc(help)

	var cmdCompletion = &cobra.Command{
		Use:                   "completion",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.ExactValidArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			switch args[0] {
			case "bash":
				if err = cmd.Root().GenBashCompletion(os.Stdout); err != nil {
					return err
				}
			case "zsh":
				if err = cmd.Root().GenZshCompletion(os.Stdout); err != nil {
					return err
				}
			case "fish":
				if err = cmd.Root().GenFishCompletion(os.Stdout, true); err != nil {
					return err
				}
			case "powershell":
				if err = cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmdCompletion.SetHelpFunc(help)

	var rootCmd = &cobra.Command{
		Use:                "flatdb",
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableSuggestions: true,
	}
	rootCmd.SetHelpFunc(help)
	// Redefine help flag without -h; so we can use it for something else.
	var helpFlag bool
	rootCmd.PersistentFlags().BoolVarP(&helpFlag, "help", "", false, "Help for flatdb")
	// Add commands.
	rootCmd.AddCommand(cmdInit, cmdCreateDB, cmdCreateTable, cmdTables, cmdInsert, cmdQuery, cmdCount,
		cmdDescribe, cmdExport, cmdBackup, cmdRestore, cmdVersion, cmdCompletion)
	var err error
	if err = rootCmd.Execute(); err != nil {
		return err
	}

	return nil
}

var helpInit = "Initialize a new data directory\n"
var helpCreateDB = "Create a new database\n"
var helpCreateTable = "Create a new table\n"
var helpTables = "List the tables in a database\n"
var helpInsert = "Insert a record into a table\n"
var helpQuery = "Print records matching a filter\n"
var helpCount = "Print the number of records in a table\n"
var helpDescribe = "Print the schema of a table\n"
var helpExport = "Export a database to a PostgreSQL server\n"
var helpBackup = "Write a database backup archive\n"
var helpRestore = "Restore a database from a backup archive\n"
var helpVersion = "Print flatdb version\n"
var helpCompletion = "Generate command-line completion\n"

func help(cmd *cobra.Command, commandLine []string) {
	_ = commandLine
	switch cmd.Use {
	case "flatdb":
		fmt.Printf("" +
			"Flatdb database tool\n" +
			"\n" +
			"Usage:  flatdb <command> <arguments>\n" +
			"\n" +
			"Commands:\n" +
			"  init                        - " + helpInit +
			"  createdb                    - " + helpCreateDB +
			"  createtable                 - " + helpCreateTable +
			"  tables                      - " + helpTables +
			"  insert                      - " + helpInsert +
			"  query                       - " + helpQuery +
			"  count                       - " + helpCount +
			"  describe                    - " + helpDescribe +
			"  export                      - " + helpExport +
			"  backup                      - " + helpBackup +
			"  restore                     - " + helpRestore +
			"  version                     - " + helpVersion +
			"  completion                  - " + helpCompletion +
			"\n" +
			"Use \"flatdb help <command>\" for more information about a command.\n")
	case "init":
		fmt.Printf("" +
			helpInit +
			"\n" +
			"Usage:  flatdb init <options>\n" +
			"\n" +
			"Options:\n" +
			dirFlag(nil, nil) +
			verboseFlag(nil, nil) +
			traceFlag(nil, nil) +
			"")
	case "createdb":
		fmt.Printf("" +
			helpCreateDB +
			"\n" +
			"Usage:  flatdb createdb <options> <database>\n" +
			"\n" +
			"Options:\n" +
			dirFlag(nil, nil) +
			verboseFlag(nil, nil) +
			debugFlag(nil, nil) +
			traceLogFlag(nil, nil) +
			"")
	case "createtable":
		fmt.Printf("" +
			helpCreateTable +
			"\n" +
			"Usage:  flatdb createtable <options> <table> <column>...\n" +
			"\n" +
			"where each <column> has the form <name>:<type>, and <type> is one of:\n" +
			"string, integer, float, boolean, date, numeric, uuid\n" +
			"\n" +
			"Options:\n" +
			databaseFlag(nil, nil) +
			dirFlag(nil, nil) +
			verboseFlag(nil, nil) +
			debugFlag(nil, nil) +
			traceLogFlag(nil, nil) +
			"")
	case "tables":
		fmt.Printf("" +
			helpTables +
			"\n" +
			"Usage:  flatdb tables <options>\n" +
			"\n" +
			"Options:\n" +
			databaseFlag(nil, nil) +
			dirFlag(nil, nil) +
			verboseFlag(nil, nil) +
			debugFlag(nil, nil) +
			traceLogFlag(nil, nil) +
			"")
	case "insert":
		fmt.Printf("" +
			helpInsert +
			"\n" +
			"Usage:  flatdb insert <options> <table> <value>...\n" +
			"\n" +
			"where the values are listed in the same order as the table columns,\n" +
			"and date values have the form YYYY-MM-DD\n" +
			"\n" +
			"Options:\n" +
			databaseFlag(nil, nil) +
			dirFlag(nil, nil) +
			verboseFlag(nil, nil) +
			debugFlag(nil, nil) +
			traceLogFlag(nil, nil) +
			"")
	case "query":
		fmt.Printf("" +
			helpQuery +
			"\n" +
			"Usage:  flatdb query <options> <table> [<field>=<value>...]\n" +
			"\n" +
			"where a record is printed only if it matches all of the filters;\n" +
			"with no filters, every record is printed\n" +
			"\n" +
			"Options:\n" +
			databaseFlag(nil, nil) +
			dirFlag(nil, nil) +
			verboseFlag(nil, nil) +
			debugFlag(nil, nil) +
			traceLogFlag(nil, nil) +
			"")
	case "count":
		fmt.Printf("" +
			helpCount +
			"\n" +
			"Usage:  flatdb count <options> <table>\n" +
			"\n" +
			"Options:\n" +
			databaseFlag(nil, nil) +
			dirFlag(nil, nil) +
			verboseFlag(nil, nil) +
			debugFlag(nil, nil) +
			traceLogFlag(nil, nil) +
			"")
	case "describe":
		fmt.Printf("" +
			helpDescribe +
			"\n" +
			"Usage:  flatdb describe <options> <table>\n" +
			"\n" +
			"Options:\n" +
			databaseFlag(nil, nil) +
			dirFlag(nil, nil) +
			verboseFlag(nil, nil) +
			debugFlag(nil, nil) +
			traceLogFlag(nil, nil) +
			"")
	case "export":
		fmt.Printf("" +
			helpExport +
			"\n" +
			"Usage:  flatdb export <options>\n" +
			"\n" +
			"Options:\n" +
			databaseFlag(nil, nil) +
			dburiFlag(nil, nil) +
			pwpromptFlag(nil, nil) +
			pwfileFlag(nil, nil) +
			schemaFlag(nil, nil) +
			dirFlag(nil, nil) +
			logFlag(nil, nil) +
			csvlogFlag(nil, nil) +
			verboseFlag(nil, nil) +
			debugFlag(nil, nil) +
			traceLogFlag(nil, nil) +
			"")
	case "backup":
		fmt.Printf("" +
			helpBackup +
			"\n" +
			"Usage:  flatdb backup <options>\n" +
			"\n" +
			"Options:\n" +
			databaseFlag(nil, nil) +
			outputFlag(nil, nil) +
			dirFlag(nil, nil) +
			logFlag(nil, nil) +
			csvlogFlag(nil, nil) +
			verboseFlag(nil, nil) +
			debugFlag(nil, nil) +
			traceLogFlag(nil, nil) +
			"")
	case "restore":
		fmt.Printf("" +
			helpRestore +
			"\n" +
			"Usage:  flatdb restore <options> <archive>\n" +
			"\n" +
			"Options:\n" +
			databaseFlag(nil, nil) +
			dirFlag(nil, nil) +
			logFlag(nil, nil) +
			csvlogFlag(nil, nil) +
			verboseFlag(nil, nil) +
			debugFlag(nil, nil) +
			traceLogFlag(nil, nil) +
			"")
	case "version":
		fmt.Printf("" +
			helpVersion +
			"\n" +
			"Usage:  flatdb version\n")
	case "completion":
		fmt.Printf("" +
			helpCompletion +
			"\n" +
			"Usage:  flatdb completion <shell>\n" +
			"\n" +
			"Shells:\n" +
			"  bash\n" +
			"  zsh\n" +
			"  fish\n" +
			"  powershell\n")
	default:
	}
}

func verboseFlag(cmd *cobra.Command, verbose *bool) string {
	if cmd != nil {
		cmd.Flags().BoolVarP(verbose, "verbose", "v", false, "")
	}
	return "" +
		"  -v, --verbose               - Enable verbose output\n"
}

func debugFlag(cmd *cobra.Command, debug *bool) string {
	if cmd != nil {
		cmd.Flags().BoolVar(debug, "debug", false, "")
	}
	return "" +
		"      --debug                 - Enable detailed logging\n"
}

func traceFlag(cmd *cobra.Command, trace *bool) string {
	if devMode {
		if cmd != nil {
			cmd.Flags().BoolVar(trace, "trace", false, "")
		}
		return "" +
			"      --trace                 - Enable extremely verbose output\n"
	}
	return ""
}

func traceLogFlag(cmd *cobra.Command, trace *bool) string {
	if devMode {
		if cmd != nil {
			cmd.Flags().BoolVar(trace, "trace", false, "")
		}
		return "" +
			"      --trace                 - Enable extremely detailed logging\n"
	}
	return ""
}

func dirFlag(cmd *cobra.Command, datadir *string) string {
	if cmd != nil {
		cmd.Flags().StringVarP(datadir, "dir", "D", "", "")
	}
	return "" +
		"  -D, --dir <d>               - Data directory name\n"
}

func databaseFlag(cmd *cobra.Command, database *string) string {
	if cmd != nil {
		cmd.Flags().StringVarP(database, "database", "d", "", "")
	}
	return "" +
		"  -d, --database <d>          - Database name\n"
}

func dburiFlag(cmd *cobra.Command, dburi *string) string {
	if cmd != nil {
		cmd.Flags().StringVar(dburi, "dburi", "", "")
	}
	return "" +
		"      --dburi <u>             - PostgreSQL connection URI\n"
}

func schemaFlag(cmd *cobra.Command, schema *string) string {
	if cmd != nil {
		cmd.Flags().StringVar(schema, "schema", "", "")
	}
	return "" +
		"      --schema <s>            - Schema to write exported tables to (default:\n" +
		"                                the database name)\n"
}

func outputFlag(cmd *cobra.Command, output *string) string {
	if cmd != nil {
		cmd.Flags().StringVarP(output, "output", "o", "", "")
	}
	return "" +
		"  -o, --output <f>            - File name for the backup archive (default:\n" +
		"                                <database>.tar.lz4)\n"
}

func pwpromptFlag(cmd *cobra.Command, prompt *bool) string {
	if cmd != nil {
		cmd.Flags().BoolVar(prompt, "pwprompt", false, "")
	}
	return "" +
		"      --pwprompt              - Prompt for database password\n"
}

func pwfileFlag(cmd *cobra.Command, file *string) string {
	if cmd != nil {
		cmd.Flags().StringVar(file, "pwfile", "", "")
	}
	return "" +
		"      --pwfile <f>            - File to read database password from\n"
}

func logFlag(cmd *cobra.Command, logfile *string) string {
	if cmd != nil {
		cmd.Flags().StringVarP(logfile, "log", "l", "", "")
	}
	return "" +
		"  -l, --log <f>               - File name for log output\n"
}

func csvlogFlag(cmd *cobra.Command, logfile *string) string {
	if cmd != nil {
		cmd.Flags().StringVar(logfile, "csvlog", "", "")
	}
	return "" +
		"      --csvlog <f>            - File name for log CSV output\n"
}

func setupLog(logfile, csvlogfile string, debug bool, trace bool) (*os.File, *os.File, error) {
	var err error
	var logf, csvlogf *os.File
	if logfile != "" || csvlogfile != "" {
		log.DisableColor = true
		if logfile != "" {
			if logf, err = log.OpenLogFile(logfile); err != nil {
				return nil, nil, err
			}
		}
		if csvlogfile != "" {
			if csvlogf, err = log.OpenLogFile(csvlogfile); err != nil {
				return nil, nil, err
			}
		}
		log.Init(logf, csvlogf, debug, trace)
		return logf, csvlogf, nil
	}
	log.Init(os.Stderr, nil, debug, trace)
	return nil, nil, nil
}

// resolveDatadir fills in the default data directory if none was given
// on the command line, and checks that the directory is initialized.
func resolveDatadir(opt *option.Global) error {
	var err error
	if opt.Datadir == "" {
		if opt.Datadir, err = conf.DefaultDatadir(); err != nil {
			return err
		}
	}
	if err = conf.Check(opt.Datadir); err != nil {
		return err
	}
	return nil
}

func runCreateDB(opt *option.CreateDB) error {
	var err error
	if _, err = database.Create(opt.Datadir, opt.Name); err != nil {
		return err
	}
	eout.Verbose("created database %q", opt.Name)
	return nil
}

func runCreateTable(opt *option.CreateTable) error {
	var err error
	var schema record.Schema
	if schema, err = parseColumns(opt.Columns); err != nil {
		return err
	}
	var db *database.Database
	if db, err = database.Connect(opt.Datadir, opt.DBName); err != nil {
		return err
	}
	if _, err = db.CreateTable(opt.Table, schema); err != nil {
		return err
	}
	eout.Verbose("created table %q", opt.Table)
	return nil
}

func runTables(opt *option.Tables) error {
	var err error
	var db *database.Database
	if db, err = database.Connect(opt.Datadir, opt.DBName); err != nil {
		return err
	}
	for _, t := range db.ShowTables() {
		fmt.Println(t)
	}
	return nil
}

func runInsert(opt *option.Insert) error {
	var err error
	var db *database.Database
	if db, err = database.Connect(opt.Datadir, opt.DBName); err != nil {
		return err
	}
	var tbl *table.Table
	if tbl, err = db.Table(opt.Table); err != nil {
		return err
	}
	var values []any
	if values, err = parseValues(tbl.Describe(), opt.Values); err != nil {
		return err
	}
	if err = tbl.Insert(values...); err != nil {
		return err
	}
	eout.Verbose("inserted 1 record into %q", opt.Table)
	return nil
}

func runQuery(opt *option.Query) error {
	var err error
	var db *database.Database
	if db, err = database.Connect(opt.Datadir, opt.DBName); err != nil {
		return err
	}
	var tbl *table.Table
	if tbl, err = db.Table(opt.Table); err != nil {
		return err
	}
	var filters map[string]any
	if filters, err = parseFilters(tbl.Describe(), opt.Filters); err != nil {
		return err
	}
	var rows *table.Rows
	if rows, err = tbl.Query(filters); err != nil {
		return err
	}
	for rows.Next() {
		fmt.Println(formatRow(rows.Row()))
	}
	return nil
}

func runCount(opt *option.Count) error {
	var err error
	var db *database.Database
	if db, err = database.Connect(opt.Datadir, opt.DBName); err != nil {
		return err
	}
	var tbl *table.Table
	if tbl, err = db.Table(opt.Table); err != nil {
		return err
	}
	var n int
	if n, err = tbl.Count(); err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func runDescribe(opt *option.Describe) error {
	var err error
	var db *database.Database
	if db, err = database.Connect(opt.Datadir, opt.DBName); err != nil {
		return err
	}
	var tbl *table.Table
	if tbl, err = db.Table(opt.Table); err != nil {
		return err
	}
	for _, col := range tbl.Describe() {
		fmt.Printf("%s %s\n", col.Name, col.Type)
	}
	return nil
}

func runExport(opt *option.Export) error {
	var err error
	var db *dbx.DB
	if db, err = dbx.NewDB(opt.DatabaseURI); err != nil {
		return err
	}
	if opt.Password != "" {
		db.Password = opt.Password
	}
	var src *database.Database
	if src, err = database.Connect(opt.Datadir, opt.DBName); err != nil {
		return err
	}
	var schema = opt.Schema
	if schema == "" {
		schema = opt.DBName
	}
	eout.Info("exporting database %q to schema %q", opt.DBName, schema)
	if err = export.Export(db, src, schema); err != nil {
		return err
	}
	eout.Info("export completed")
	return nil
}

func runBackup(opt *option.Backup) error {
	var err error
	if opt.Output == "" {
		opt.Output = opt.DBName + ".tar.lz4"
	}
	var db *database.Database
	if db, err = database.Connect(opt.Datadir, opt.DBName); err != nil {
		return err
	}
	var f *os.File
	if f, err = os.OpenFile(opt.Output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, util.ModePermRW); err != nil {
		return fmt.Errorf("creating backup file: %v", err)
	}
	if err = backup.Backup(db.Dir(), f); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("closing backup file: %v", err)
	}
	eout.Info("backup completed: %s", opt.Output)
	return nil
}

func runRestore(opt *option.Restore) error {
	var err error
	var f *os.File
	if f, err = os.Open(opt.Archive); err != nil {
		return fmt.Errorf("opening archive: %v", err)
	}
	if err = backup.Restore(f, opt.Datadir, opt.DBName); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("closing archive: %v", err)
	}
	eout.Info("restored database %q", opt.DBName)
	return nil
}

// parseColumns converts command line column specifications of the form
// <name>:<type> into a schema.
func parseColumns(specs []string) (record.Schema, error) {
	var schema record.Schema
	for _, spec := range specs {
		name, typename, ok := strings.Cut(spec, ":")
		if !ok || name == "" || typename == "" {
			return nil, fmt.Errorf("invalid column %q: expected <name>:<type>", spec)
		}
		dtype, err := types.MakeDataType(typename)
		if err != nil {
			return nil, fmt.Errorf("invalid column %q: %v", spec, err)
		}
		schema = append(schema, record.Column{Name: name, Type: dtype})
	}
	return schema, nil
}

// parseValues converts positional command line values into typed values
// in schema order.
func parseValues(schema record.Schema, args []string) ([]any, error) {
	if len(args) != len(schema) {
		return nil, dberr.Validation("Invalid amount of field")
	}
	values := make([]any, 0, len(schema))
	for i, col := range schema {
		v, err := types.ParseValue(args[i], col.Type)
		if err != nil {
			return nil, dberr.Validation("invalid value for field %q: %v", col.Name, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// parseFilters converts command line filters of the form <field>=<value>
// into a query predicate.  A filter naming an unknown field is passed
// through as a string so that the query reports it.
func parseFilters(schema record.Schema, args []string) (map[string]any, error) {
	filters := make(map[string]any)
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid filter %q: expected <field>=<value>", arg)
		}
		col, found := schema.Column(name)
		if !found {
			filters[name] = value
			continue
		}
		v, err := types.ParseValue(value, col.Type)
		if err != nil {
			return nil, dberr.Validation("invalid value for field %q: %v", name, err)
		}
		filters[name] = v
	}
	return filters, nil
}

func printValue(v any) string {
	switch d := v.(type) {
	case time.Time:
		return d.Format(types.DateFormat)
	default:
		return fmt.Sprintf("%v", d)
	}
}

func formatRow(row record.Row) string {
	var b strings.Builder
	for i, f := range row {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(f.Name)
		b.WriteString("=")
		b.WriteString(printValue(f.Value))
	}
	return b.String()
}

func initColor() error {
	switch colorMode {
	case "always":
		color.AlwaysColor()
	case "auto":
		color.AutoColor()
	default:
		color.NeverColor()
	}
	colorInitialized = true
	return nil
}

func ReadPasswordFile(filename string) (string, error) {
	var err error
	var f *os.File
	if f, err = os.Open(filename); err != nil {
		return "", err
	}
	var scanner = bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	var ok bool
	if ok = scanner.Scan(); !ok {
		if scanner.Err() != nil {
			return "", err
		}
	}
	return scanner.Text(), nil
}

// inputPassword gets keyboard input from the user with terminal echo disabled.
// This function is intended for inputting passwords.  It prints a specified
// prompt before the input, and can optionally input the password a second time
// for confirmation.  The password is returned, or an error if there was a
// problem reading the input or (in the case of a confirmation input) if the
// two passwords did not match.  SIGINT is disabled during the input, to avoid
// leaving the terminal in a no-echo state.
func inputPassword(prompt string, confirm bool) (string, error) {
	// Ignore SIGINT, to avoid leaving terminal in no-echo state.
	signal.Ignore(os.Interrupt)
	defer signal.Reset(os.Interrupt)
	// Read the input.
	fmt.Print(prompt)
	p, err := term.ReadPassword(syscall.Stdin)
	fmt.Println("")
	if err != nil {
		return "", err
	}
	// Read the input again to confirm.
	if confirm {
		fmt.Print("(Confirming) " + prompt)
		q, err := term.ReadPassword(syscall.Stdin)
		fmt.Println("")
		if err != nil {
			return "", err
		}
		if string(p) != string(q) {
			return "", errors.New("passwords do not match")
		}
	}
	// Return password.
	return string(p), nil
}
