package io

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"io"
	"os"
	"searchdsl/osm"
	"time"
)

// WriteRecordsAsGeoJsonFile writes the records into a new GeoJSON file, an existing file is overwritten.
func WriteRecordsAsGeoJsonFile(records []*osm.Record, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "Unable to create GeoJSON file %s", filename)
	}

	defer func() {
		closeErr := file.Close()
		if closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "Unable to close file handle for GeoJSON file %s", filename)
		}
	}()

	return WriteRecordsAsGeoJson(records, file)
}

// WriteRecordsAsGeoJson writes all records with geometry as feature collection. The tags become properties, the ID and
// type are added as "osm_id" and "osm_type".
func WriteRecordsAsGeoJson(records []*osm.Record, writer io.Writer) error {
	sigolo.Debugf("Write %d records to GeoJSON", len(records))
	writeStartTime := time.Now()

	featureCollection := ToFeatureCollection(records)

	geojsonBytes, err := featureCollection.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Unable to marshal feature collection")
	}

	_, err = writer.Write(geojsonBytes)
	if err != nil {
		return errors.Wrap(err, "Unable to write GeoJSON")
	}

	sigolo.Debugf("Finished writing %d features in %s", len(featureCollection.Features), time.Since(writeStartTime))
	return nil
}

// ToFeatureCollection creates one feature per record. Records without geometry are skipped.
func ToFeatureCollection(records []*osm.Record) *geojson.FeatureCollection {
	featureCollection := geojson.NewFeatureCollection()
	for _, record := range records {
		if record.Geometry == nil {
			sigolo.Tracef("Skip %s %d without geometry", record.Type.String(), record.ID)
			continue
		}

		feature := geojson.NewFeature(record.Geometry)
		for key, value := range record.Tags {
			feature.Properties[key] = value
		}
		feature.Properties["osm_id"] = record.ID
		feature.Properties["osm_type"] = record.Type.String()

		featureCollection.Features = append(featureCollection.Features, feature)
	}
	return featureCollection
}
