package option

type Global struct {
	Datadir string
}

type Init struct {
	Datadir string
}

type CreateDB struct {
	Global
	Name string
}

type CreateTable struct {
	Global
	DBName  string
	Table   string
	Columns []string
}

type Tables struct {
	Global
	DBName string
}

type Insert struct {
	Global
	DBName string
	Table  string
	Values []string
}

type Query struct {
	Global
	DBName  string
	Table   string
	Filters []string
}

type Count struct {
	Global
	DBName string
	Table  string
}

type Describe struct {
	Global
	DBName string
	Table  string
}

type Export struct {
	Global
	DBName      string
	DatabaseURI string
	Password    string
	Schema      string
}

type Backup struct {
	Global
	DBName string
	Output string
}

type Restore struct {
	Global
	DBName  string
	Archive string
}
