package schema

import "searchdsl/util"

// FieldKey addresses a field of a certain entity.
type FieldKey struct {
	Entity string
	Field  string
}

// Config restricts and extends what the schema offers. Only one of Include and Exclude may be set.
type Config struct {
	// Include lists the only entities that take part in the schema.
	Include []string
	// Exclude lists entities that don't take part in the schema. Relations to them are not searchable.
	Exclude []string
	// CustomFields are added to the entity with the given label. They come before all other fields and replace
	// fields of the entity with the same name.
	CustomFields map[string][]*FieldSpec
	// HiddenFields are removed from every entity. Defaults to "password" when nil.
	HiddenFields []string
	// SuggestionProviders attach suggestions to string fields, overriding static options of the catalog.
	SuggestionProviders map[FieldKey]SuggestionProvider
}

var defaultHiddenFields = []string{"password"}

// copyConfig creates a deep enough copy of the config, so that later changes by the caller don't affect the schema.
func copyConfig(config Config) Config {
	copied := Config{
		Include:             append([]string(nil), config.Include...),
		Exclude:             append([]string(nil), config.Exclude...),
		CustomFields:        map[string][]*FieldSpec{},
		HiddenFields:        defaultHiddenFields,
		SuggestionProviders: map[FieldKey]SuggestionProvider{},
	}

	if config.HiddenFields != nil {
		copied.HiddenFields = append([]string{}, config.HiddenFields...)
	}
	for label, fields := range config.CustomFields {
		for _, field := range fields {
			copied.CustomFields[label] = append(copied.CustomFields[label], copyField(field))
		}
	}
	for key, provider := range config.SuggestionProviders {
		copied.SuggestionProviders[key] = provider
	}

	return copied
}

// isExcluded returns true for entities that must not take part in the schema.
func (c *Config) isExcluded(label string) bool {
	if len(c.Include) > 0 {
		return !util.Contains(c.Include, label)
	}
	return util.Contains(c.Exclude, label)
}

func (c *Config) isHidden(fieldName string) bool {
	return util.Contains(c.HiddenFields, fieldName)
}
