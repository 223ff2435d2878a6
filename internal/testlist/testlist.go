package testlist

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Entry is one compliance test as supplied by the host framework.
type Entry struct {
	// Name is the entry's key in the test-list document.
	Name           string   `yaml:"-"`
	TestPath       string   `yaml:"test_path"`
	WorkDir        string   `yaml:"work_dir"`
	ISA            string   `yaml:"isa"`
	Macros         []string `yaml:"macros"`
	CoverageLabels []string `yaml:"coverage_labels"`
}

// List holds test entries in document order. Build targets are named by
// position, so iteration order must match the order tests appear in the
// file; decoding goes through yaml.Node instead of a Go map to keep it.
type List []Entry

// Load reads a test-list YAML file.
func Load(path string) (List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read test list")
	}
	list, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "test list %s", path)
	}
	return list, nil
}

// Parse decodes a test-list document: a mapping from test identifier to
// entry. An empty document yields an empty list.
func Parse(data []byte) (List, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse test list")
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return List{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("test list root is not a mapping")
	}

	list := make(List, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		var entry Entry
		if err := value.Decode(&entry); err != nil {
			return nil, errors.Wrapf(err, "test %s", key.Value)
		}
		entry.Name = key.Value
		list = append(list, entry)
	}
	return list, nil
}

// Names returns the test identifiers in document order.
func (l List) Names() []string {
	names := make([]string, len(l))
	for i, e := range l {
		names[i] = e.Name
	}
	return names
}
