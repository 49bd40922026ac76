package osm

import (
	"github.com/hauke96/sigolo/v2"
	"searchdsl/parser"
	"searchdsl/schema"
	"strings"
)

const (
	FeatureEntity = "feature"
	TagsEntity    = "tags"
	TagsField     = "tags"
)

// NewCatalog describes OSM objects as entity "feature" with a relation "tags" to an entity having one string field
// per tag key of the index.
func NewCatalog(tagIndex *TagIndex) *schema.StaticCatalog {
	var typeNames []string
	for _, objectType := range AllObjectTypes {
		typeNames = append(typeNames, objectType.String())
	}

	featureEntity := &schema.EntityDescriptor{
		Label: FeatureEntity,
		Fields: []schema.FieldDescriptor{
			{Name: "id", Type: schema.TypeInt},
			{Name: "type", Type: schema.TypeStr, Options: typeNames},
			{Name: "version", Type: schema.TypeInt},
			{Name: "changeset", Type: schema.TypeInt},
			{Name: "user", Type: schema.TypeStr, Nullable: true},
			{Name: "uid", Type: schema.TypeInt},
			{Name: "timestamp", Type: schema.TypeDatetime, Nullable: true},
			{Name: TagsField, Type: schema.TypeRelation, Relation: TagsEntity, Nullable: true},
		},
	}

	tagsEntity := &schema.EntityDescriptor{
		Label: TagsEntity,
	}
	usedNames := map[string]bool{}
	for _, key := range tagIndex.Keys() {
		name := tagFieldName(key)
		if name == "" || usedNames[name] {
			sigolo.Debugf("Tag key '%s' can't be searched, the field name %s is already used", key, name)
			continue
		}
		usedNames[name] = true

		field := schema.FieldDescriptor{
			Name:     name,
			Type:     schema.TypeStr,
			Nullable: true,
		}
		if name != key {
			field.Lookup = key
		}
		tagsEntity.Fields = append(tagsEntity.Fields, field)
	}

	return schema.NewStaticCatalog(featureEntity, tagsEntity)
}

// NewSchema creates the schema for the features of a dataset. The values of each tag are offered as suggestions.
func NewSchema(tagIndex *TagIndex) (*schema.Schema, error) {
	catalog := NewCatalog(tagIndex)

	tagsEntity, err := catalog.Entity(TagsEntity)
	if err != nil {
		return nil, err
	}

	providers := map[schema.FieldKey]schema.SuggestionProvider{}
	for _, field := range tagsEntity.Fields {
		key := field.Lookup
		if key == "" {
			key = field.Name
		}
		providers[schema.FieldKey{Entity: TagsEntity, Field: field.Name}] = tagIndex.Suggestions(key)
	}

	return schema.NewSchema(FeatureEntity, catalog, schema.Config{
		SuggestionProviders: providers,
	})
}

// tagFieldName turns a tag key like "addr:street" into a valid field name like "addr_street". Reserved words get a
// trailing underscore.
func tagFieldName(key string) string {
	if parser.IsReservedWord(key) {
		return key + "_"
	}
	if parser.IsNameSegment(key) {
		return key
	}

	builder := strings.Builder{}
	for i, r := range key {
		switch {
		case r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z':
			builder.WriteRune(r)
		case '0' <= r && r <= '9':
			if i == 0 {
				builder.WriteRune('_')
			}
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}
	return builder.String()
}
