package osm

import (
	"context"
	"io"
	"searchdsl/schema"
)

// Dataset contains all tagged objects of an OSM file and the index of their tags.
type Dataset struct {
	Records []*Record
	Tags    *TagIndex
}

// Load reads the .osm or .pbf file.
func Load(ctx context.Context, filename string) (*Dataset, error) {
	return load(func(handlers ...DataHandler) error {
		return NewReader().ReadFile(ctx, filename, handlers...)
	})
}

func LoadFrom(ctx context.Context, reader io.Reader, format Format) (*Dataset, error) {
	return load(func(handlers ...DataHandler) error {
		return NewReader().Read(ctx, reader, format, handlers...)
	})
}

func load(read func(handlers ...DataHandler) error) (*Dataset, error) {
	collector := newRecordCollector()
	tagIndexBuilder := newTagIndexBuilder()

	err := read(collector, tagIndexBuilder)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		Records: collector.records,
		Tags:    tagIndexBuilder.index,
	}, nil
}

func (d *Dataset) Schema() (*schema.Schema, error) {
	return NewSchema(d.Tags)
}
