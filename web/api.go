package web

import (
	"bytes"
	"database/sql"
	"github.com/gorilla/mux"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"io"
	"net/http"
	"searchdsl/compiler"
	"searchdsl/filter"
	ownIo "searchdsl/io"
	"searchdsl/osm"
	"searchdsl/predicate"
	"searchdsl/schema"
	"searchdsl/sqlquery"
	"searchdsl/suggest"
	"strconv"
)

const (
	DefaultMaxResults = 1000

	maxLengthOfPrintedQuery = 10000
)

// Backend contains everything the API serves. Schema is required; Dataset or DB with Mapping enable searching.
type Backend struct {
	Schema *schema.Schema
	// Mapping enables the translation of compiled queries into SQL.
	Mapping *sqlquery.Mapping
	// DB is used to execute searches when a mapping is given.
	DB *sql.DB
	// Dataset is searched in memory and takes precedence over the DB.
	Dataset *osm.Dataset
	// SuggestionsURL is announced in the introspection, defaults to "/suggestions".
	SuggestionsURL string
	// MaxResults limits the number of results of a search, defaults to DefaultMaxResults.
	MaxResults int
}

type compileResponse struct {
	Filter predicate.Node      `json:"filter"`
	Order  []compiler.OrderKey `json:"order"`
	SQL    string              `json:"sql,omitempty"`
	Args   []any               `json:"args,omitempty"`
}

type rowsResponse struct {
	Rows []sqlquery.Row `json:"rows"`
}

func StartServer(port string, backend *Backend) {
	r := NewRouter(backend)
	sigolo.Infof("Start server without TLS support on port %s", port)
	err := http.ListenAndServe(":"+port, r)
	sigolo.FatalCheck(err)
}

func StartServerTls(port string, certFile string, keyFile string, backend *Backend) {
	r := NewRouter(backend)
	sigolo.Infof("Start server with TLS support on port %s", port)
	err := http.ListenAndServeTLS(":"+port, certFile, keyFile, r)
	sigolo.FatalCheck(err)
}

func NewRouter(backend *Backend) *mux.Router {
	if backend.SuggestionsURL == "" {
		backend.SuggestionsURL = "/suggestions"
	}
	if backend.MaxResults <= 0 {
		backend.MaxResults = DefaultMaxResults
	}

	r := mux.NewRouter()
	r.Use(metricsMiddleware)

	r.HandleFunc("/introspect", func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Access-Control-Allow-Origin", "*")

		introspection, err := backend.Schema.Introspect(backend.SuggestionsURL)
		if err != nil {
			writeError(writer, err)
			return
		}
		writeJson(writer, http.StatusOK, introspection)
	}).Methods(http.MethodGet)

	r.HandleFunc("/suggestions", func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Access-Control-Allow-Origin", "*")

		parameters := request.URL.Query()
		page := 1
		if pageParameter := parameters.Get("page"); pageParameter != "" {
			var err error
			page, err = strconv.Atoi(pageParameter)
			if err != nil {
				writeError(writer, suggest.NewRequestError("Page must be a number but was '%s'", pageParameter))
				return
			}
		}

		suggestions, err := suggest.Suggest(request.Context(), backend.Schema, parameters.Get("field"), parameters.Get("search"), page, suggest.DefaultPageSize)
		if err != nil {
			writeError(writer, err)
			return
		}
		writeJson(writer, http.StatusOK, suggestions)
	}).Methods(http.MethodGet)

	r.HandleFunc("/compile", func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Access-Control-Allow-Origin", "*")

		result, err := compileRequest(request, backend)
		if err != nil {
			writeError(writer, err)
			return
		}

		response := &compileResponse{
			Filter: result.Filter,
			Order:  result.Order,
		}
		if backend.Mapping != nil {
			response.SQL, response.Args, err = backend.Mapping.ToSQL(result)
			if err != nil {
				writeError(writer, err)
				return
			}
		}
		writeJson(writer, http.StatusOK, response)
	}).Methods(http.MethodPost)

	r.HandleFunc("/search", func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Access-Control-Allow-Origin", "*")

		result, err := compileRequest(request, backend)
		if err != nil {
			writeError(writer, err)
			return
		}

		bboxParameter := request.URL.Query().Get("bbox")

		if backend.Dataset != nil {
			records := backend.Dataset.Records
			if bboxParameter != "" {
				bound, err := osm.ParseBBox(bboxParameter)
				if err != nil {
					writeError(writer, suggest.NewRequestError("%s", err.Error()))
					return
				}
				records = backend.Dataset.Within(bound)
			}

			records, err = filter.Apply(records, result, backend.MaxResults)
			if err != nil {
				writeError(writer, err)
				return
			}
			searchResultsTotal.Add(float64(len(records)))

			buffer := &bytes.Buffer{}
			err = ownIo.WriteRecordsAsGeoJson(records, buffer)
			if err != nil {
				writeError(writer, err)
				return
			}

			writer.Header().Set("Content-Type", "application/geo+json")
			_, err = writer.Write(buffer.Bytes())
			if err != nil {
				sigolo.Errorf("Error writing search result: %+v", err)
			}
			return
		}

		if bboxParameter != "" {
			writeError(writer, suggest.NewRequestError("BBOX is only supported when searching OSM data"))
			return
		}

		if backend.DB != nil && backend.Mapping != nil {
			rows, err := sqlquery.Execute(request.Context(), backend.DB, backend.Mapping, result, backend.MaxResults)
			if err != nil {
				writeError(writer, err)
				return
			}
			searchResultsTotal.Add(float64(len(rows)))

			if rows == nil {
				rows = []sqlquery.Row{}
			}
			writeJson(writer, http.StatusOK, &rowsResponse{Rows: rows})
			return
		}

		writeError(writer, errors.New("No search backend configured"))
	}).Methods(http.MethodPost)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

// compileRequest reads the query from the request body and compiles it against the schema of the backend.
func compileRequest(request *http.Request, backend *Backend) (*compiler.Result, error) {
	queryBytes, err := io.ReadAll(request.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "Error reading HTTP body of request to '%s'", request.URL.Path)
	}

	queryString := string(queryBytes)

	trimmedQueryString := queryString
	queryRunes := []rune(queryString)
	if len(queryRunes) > maxLengthOfPrintedQuery {
		trimmedQueryString = string(queryRunes[:maxLengthOfPrintedQuery]) + "... [truncated]"
	}
	sigolo.Infof("Query: %s", trimmedQueryString)

	return compiler.CompileQueryString(queryString, backend.Schema)
}
