package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"github.com/alecthomas/kong"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"os"
	"searchdsl/compiler"
	"searchdsl/filter"
	ownIo "searchdsl/io"
	"searchdsl/model"
	"searchdsl/osm"
	"searchdsl/parser"
	"searchdsl/schema"
	"searchdsl/sqlquery"
	"searchdsl/suggest"
	"searchdsl/web"
	"strings"

	_ "modernc.org/sqlite"
)

const VERSION = "v0.1.0"

// sourceOptions select the data a command works on: either an entity model (optionally with an SQLite database) or an
// OSM file.
type sourceOptions struct {
	Model string `help:"YAML file describing the searchable entities." placeholder:"<model-file>" type:"existingfile" xor:"source"`
	Root  string `help:"Root entity of the schema, defaults to the root of the model." placeholder:"<entity>"`
	Db    string `help:"SQLite database file used for searching and suggestions." placeholder:"<db-file>" type:"existingfile"`
	Osm   string `help:"OSM file (.osm or .pbf) to search in." placeholder:"<osm-file>" type:"existingfile" xor:"source"`
}

var cli struct {
	Logging string      `help:"Logging verbosity." enum:"info,debug,trace" short:"l" default:"info"`
	Version VersionFlag `help:"Print version information and quit" name:"version" short:"v"`
	Tokens  struct {
		Query string `help:"The query string." placeholder:"<query>" arg:""`
	} `cmd:"" help:"Prints the tokens of the given query."`
	Parse struct {
		Query string `help:"The query string." placeholder:"<query>" arg:""`
	} `cmd:"" help:"Parses the given query and prints it in normalized form."`
	Compile struct {
		Query  string        `help:"The query string." placeholder:"<query>" arg:""`
		Source sourceOptions `embed:""`
	} `cmd:"" help:"Validates and compiles the given query and prints the result as JSON."`
	Introspect struct {
		Source sourceOptions `embed:""`
	} `cmd:"" help:"Prints the searchable fields of all entities as JSON."`
	Suggest struct {
		Field  string        `help:"Dotted path of the field." placeholder:"<field>" arg:""`
		Search string        `help:"Only values containing this text are suggested." placeholder:"<search>" arg:"" optional:""`
		Page   int           `help:"Page of suggestions, starting at 1." default:"1"`
		Source sourceOptions `embed:""`
	} `cmd:"" help:"Prints suggested values for a field."`
	Search struct {
		Query  string        `help:"The query string." placeholder:"<query>" arg:""`
		Limit  int           `help:"Maximum number of results, 0 for no limit." default:"0"`
		BBox   string        `help:"Only OSM records within this BBOX (minLon,minLat,maxLon,maxLat) are searched." placeholder:"<bbox>" name:"bbox"`
		Output string        `help:"GeoJSON file the results of an OSM search are written to." placeholder:"<output-file>" default:"output.geojson"`
		Source sourceOptions `embed:""`
	} `cmd:"" help:"Searches the data and prints or writes the results."`
	Serve struct {
		Port       string        `help:"The port of the HTTP server." default:"8080"`
		TlsCert    string        `help:"Certificate file for TLS." placeholder:"<cert-file>" type:"existingfile"`
		TlsKey     string        `help:"Key file for TLS." placeholder:"<key-file>" type:"existingfile"`
		MaxResults int           `help:"Maximum number of results of a search." default:"1000"`
		Source     sourceOptions `embed:""`
	} `cmd:"" help:"Starts the HTTP API."`
}

type VersionFlag string

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

func main() {
	ctx := kong.Parse(
		&cli,
		kong.Name("searchdsl"),
		kong.Description("Parses, validates and compiles search queries and runs them against SQL databases and OSM data."),
		kong.Vars{
			"version": VERSION,
		},
	)

	if strings.ToLower(cli.Logging) == "debug" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_DEBUG)
	} else if strings.ToLower(cli.Logging) == "trace" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	} else if strings.ToLower(cli.Logging) == "info" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_INFO)
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
	} else {
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
		sigolo.Fatalf("Unknown logging level '%s'", cli.Logging)
	}

	switch ctx.Command() {
	case "tokens <query>":
		tokens, err := parser.Tokenize(cli.Tokens.Query)
		sigolo.FatalCheck(err)
		for _, token := range tokens {
			fmt.Println(token.String())
		}
	case "parse <query>":
		q, err := parser.ParseQueryString(cli.Parse.Query)
		sigolo.FatalCheck(err)
		q.Print()
		fmt.Println(q.String())
	case "compile <query>":
		backend, err := loadBackend(context.Background(), cli.Compile.Source)
		sigolo.FatalCheck(err)

		result, err := compiler.CompileQueryString(cli.Compile.Query, backend.Schema)
		sigolo.FatalCheck(err)

		output := map[string]any{
			"filter": result.Filter,
			"order":  result.Order,
		}
		if backend.Mapping != nil {
			sqlString, args, err := backend.Mapping.ToSQL(result)
			sigolo.FatalCheck(err)
			output["sql"] = sqlString
			output["args"] = args
		}
		printJson(output)
	case "introspect":
		backend, err := loadBackend(context.Background(), cli.Introspect.Source)
		sigolo.FatalCheck(err)

		introspection, err := backend.Schema.Introspect("")
		sigolo.FatalCheck(err)
		printJson(introspection)
	case "suggest <field>", "suggest <field> <search>":
		backend, err := loadBackend(context.Background(), cli.Suggest.Source)
		sigolo.FatalCheck(err)

		page, err := suggest.Suggest(context.Background(), backend.Schema, cli.Suggest.Field, cli.Suggest.Search, cli.Suggest.Page, suggest.DefaultPageSize)
		sigolo.FatalCheck(err)
		printJson(page)
	case "search <query>":
		search(context.Background())
	case "serve":
		backend, err := loadBackend(context.Background(), cli.Serve.Source)
		sigolo.FatalCheck(err)
		backend.MaxResults = cli.Serve.MaxResults

		if cli.Serve.TlsCert != "" || cli.Serve.TlsKey != "" {
			web.StartServerTls(cli.Serve.Port, cli.Serve.TlsCert, cli.Serve.TlsKey, backend)
		} else {
			web.StartServer(cli.Serve.Port, backend)
		}
	default:
		sigolo.Errorf("Unknown command '%s'", ctx.Command())
	}
}

func search(ctx context.Context) {
	backend, err := loadBackend(ctx, cli.Search.Source)
	sigolo.FatalCheck(err)

	result, err := compiler.CompileQueryString(cli.Search.Query, backend.Schema)
	sigolo.FatalCheck(err)

	if backend.Dataset != nil {
		records := backend.Dataset.Records
		if cli.Search.BBox != "" {
			bound, err := osm.ParseBBox(cli.Search.BBox)
			sigolo.FatalCheck(err)
			records = backend.Dataset.Within(bound)
		}

		records, err = filter.Apply(records, result, cli.Search.Limit)
		sigolo.FatalCheck(err)

		sigolo.Infof("Found %d records, write them to %s", len(records), cli.Search.Output)
		err = ownIo.WriteRecordsAsGeoJsonFile(records, cli.Search.Output)
		sigolo.FatalCheck(err)
		return
	}

	if backend.DB == nil || backend.Mapping == nil {
		sigolo.Fatalf("Searching needs an OSM file or a model with tables and a database")
	}
	if cli.Search.BBox != "" {
		sigolo.Fatalf("A BBOX is only supported when searching OSM data")
	}

	rows, err := sqlquery.Execute(ctx, backend.DB, backend.Mapping, result, cli.Search.Limit)
	sigolo.FatalCheck(err)

	sigolo.Infof("Found %d rows", len(rows))
	printJson(rows)
}

// loadBackend reads the model or OSM file. Without any source, queries are only checked syntactically.
func loadBackend(ctx context.Context, source sourceOptions) (*web.Backend, error) {
	if source.Osm != "" {
		dataset, err := osm.Load(ctx, source.Osm)
		if err != nil {
			return nil, err
		}

		s, err := dataset.Schema()
		if err != nil {
			return nil, err
		}

		return &web.Backend{
			Schema:  s,
			Dataset: dataset,
		}, nil
	}

	if source.Model == "" {
		return nil, errors.New("Either a model or an OSM file must be specified")
	}

	m, err := model.Load(source.Model)
	if err != nil {
		return nil, err
	}

	backend := &web.Backend{}

	if source.Db != "" {
		backend.DB, err = sql.Open("sqlite", source.Db)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to open database %s", source.Db)
		}
	}

	var providers map[schema.FieldKey]schema.SuggestionProvider
	if backend.DB != nil {
		providers = sqlquery.SuggestionProviders(backend.DB, m)
	}

	backend.Schema, err = m.Schema(source.Root, providers)
	if err != nil {
		return nil, err
	}

	backend.Mapping, err = sqlquery.NewMapping(m, source.Root)
	if err != nil {
		sigolo.Debugf("No SQL mapping available: %s", err.Error())
		backend.Mapping = nil
	}

	return backend, nil
}

func printJson(value any) {
	output, err := json.MarshalIndent(value, "", "  ")
	sigolo.FatalCheck(err)

	_, err = fmt.Fprintln(os.Stdout, string(output))
	sigolo.FatalCheck(err)
}
