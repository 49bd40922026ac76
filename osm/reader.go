package osm

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"io"
	"os"
	"strings"
	"time"
)

// DataHandler gets all objects of an OSM file in the order of the file: nodes, ways and then relations.
type DataHandler interface {
	Name() string
	Init() error
	HandleNode(node *osm.Node) error
	HandleWay(way *osm.Way) error
	HandleRelation(relation *osm.Relation) error
	Done() error
}

type Format int

const (
	FormatXml Format = iota
	FormatPbf
)

// FormatOf determines the format by the file extension: ".osm" for XML and ".pbf" for protobuf files.
func FormatOf(filename string) (Format, error) {
	if strings.HasSuffix(filename, ".osm") {
		return FormatXml, nil
	} else if strings.HasSuffix(filename, ".pbf") {
		return FormatPbf, nil
	}
	return FormatXml, errors.Errorf("Input file %s must be an .osm or .pbf file", filename)
}

type Reader struct {
	firstWayHasBeenProcessed      bool
	firstRelationHasBeenProcessed bool
}

func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) ReadFile(ctx context.Context, filename string, handlers ...DataHandler) error {
	format, err := FormatOf(filename)
	if err != nil {
		return err
	}

	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "Unable to open OSM input file %s", filename)
	}
	defer file.Close()

	sigolo.Infof("Start processing OSM data file %s", filename)
	return r.Read(ctx, file, format, handlers...)
}

func (r *Reader) Read(ctx context.Context, reader io.Reader, format Format, handlers ...DataHandler) error {
	var scanner osm.Scanner
	if format == FormatPbf {
		scanner = osmpbf.New(ctx, reader, 1)
	} else {
		scanner = osmxml.New(ctx, reader)
	}

	importStartTime := time.Now()

	var err error
	for _, handler := range handlers {
		err = handler.Init()
		if err != nil {
			return errors.Wrapf(err, "Initializing OSM data handler '%s' failed", handler.Name())
		}
	}

	sigolo.Debug("Start processing nodes (1/3)")
	for scanner.Scan() {
		switch osmObj := scanner.Object().(type) {
		case *osm.Node:
			for _, handler := range handlers {
				err = handler.HandleNode(osmObj)
				if err != nil {
					return errors.Wrapf(err, "Handling node %d using handler '%s' failed", osmObj.ID, handler.Name())
				}
			}
		case *osm.Way:
			if !r.firstWayHasBeenProcessed {
				sigolo.Debug("Start processing ways (2/3)")
				r.firstWayHasBeenProcessed = true
			}

			for _, handler := range handlers {
				err = handler.HandleWay(osmObj)
				if err != nil {
					return errors.Wrapf(err, "Handling way %d using handler '%s' failed", osmObj.ID, handler.Name())
				}
			}
		case *osm.Relation:
			if !r.firstRelationHasBeenProcessed {
				sigolo.Debug("Start processing relations (3/3)")
				r.firstRelationHasBeenProcessed = true
			}

			for _, handler := range handlers {
				err = handler.HandleRelation(osmObj)
				if err != nil {
					return errors.Wrapf(err, "Handling relation %d using handler '%s' failed", osmObj.ID, handler.Name())
				}
			}
		}
	}

	err = scanner.Err()
	if err != nil {
		return errors.Wrap(err, "Error while scanning OSM data")
	}

	for _, handler := range handlers {
		err = handler.Done()
		if err != nil {
			return errors.Wrapf(err, "Calling done function on handler '%s' failed", handler.Name())
		}
	}

	err = scanner.Close()
	if err != nil {
		return errors.Wrapf(err, "Unable to close OSM scanner")
	}

	sigolo.Infof("Done processing OSM data in %s", time.Since(importStartTime))
	return nil
}
