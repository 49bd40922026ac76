package osm

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/osm"
	"searchdsl/schema"
	"searchdsl/util"
	"sort"
)

// TagIndex knows all keys and their distinct values of a dataset.
type TagIndex struct {
	keys   []string
	values map[string][]string
}

func NewTagIndex(values map[string][]string) *TagIndex {
	index := &TagIndex{
		values: map[string][]string{},
	}

	for key, keyValues := range values {
		index.keys = append(index.keys, key)
		index.values[key] = util.SortNatural(keyValues)
	}
	sort.Strings(index.keys)

	return index
}

// Keys returns all keys in sorted order.
func (i *TagIndex) Keys() []string {
	return append([]string{}, i.keys...)
}

// Values returns the naturally sorted values of the key or nil if the key doesn't exist.
func (i *TagIndex) Values(key string) []string {
	return i.values[key]
}

func (i *TagIndex) HasKey(key string) bool {
	_, ok := i.values[key]
	return ok
}

// Suggestions creates a suggestion provider offering the values of the key.
func (i *TagIndex) Suggestions(key string) schema.SuggestionProvider {
	return schema.NewStaticOptions(i.values[key]...)
}

func (i *TagIndex) Print() {
	if !sigolo.ShouldLogTrace() {
		return
	}

	sigolo.Tracef("TagIndex:")
	for _, key := range i.keys {
		sigolo.Tracef("  %s = %v", key, i.values[key])
	}
}

// tagIndexBuilder collects the tags of all nodes, ways and relations.
type tagIndexBuilder struct {
	values map[string]map[string]bool
	index  *TagIndex
}

func newTagIndexBuilder() *tagIndexBuilder {
	return &tagIndexBuilder{}
}

func (b *tagIndexBuilder) Name() string {
	return "TagIndexBuilder"
}

func (b *tagIndexBuilder) Init() error {
	b.values = map[string]map[string]bool{}
	return nil
}

func (b *tagIndexBuilder) addTags(tags osm.Tags) {
	for _, tag := range tags {
		if _, ok := b.values[tag.Key]; !ok {
			b.values[tag.Key] = map[string]bool{}
		}
		b.values[tag.Key][tag.Value] = true
	}
}

func (b *tagIndexBuilder) HandleNode(node *osm.Node) error {
	b.addTags(node.Tags)
	return nil
}

func (b *tagIndexBuilder) HandleWay(way *osm.Way) error {
	b.addTags(way.Tags)
	return nil
}

func (b *tagIndexBuilder) HandleRelation(relation *osm.Relation) error {
	b.addTags(relation.Tags)
	return nil
}

func (b *tagIndexBuilder) Done() error {
	values := map[string][]string{}
	for key, valueSet := range b.values {
		values[key] = util.SortedKeys(valueSet)
	}

	b.index = NewTagIndex(values)
	b.index.Print()
	return nil
}
