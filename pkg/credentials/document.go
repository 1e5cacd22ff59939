package credentials

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMalformedDocument is returned when the credential document cannot be
// decoded: invalid YAML, a non-mapping credentials section, or an entry
// with wrong field types. Administrative operations surface it loudly;
// the authentication gate maps it to a denial.
var ErrMalformedDocument = errors.New("malformed credential document")

const (
	docTypeKey     = "type"
	docTypeValue   = "credentials"
	credentialsKey = "credentials"
	passKey        = "pass"
	formatKey      = "type"
	emailKey       = "email"
	groupsKey      = "groups"
)

// Document is one decoded credential document: the directory of users plus
// the underlying YAML node tree. Top-level sections other than the
// credentials mapping are kept in the tree untouched, so repositories can
// co-locate their own settings in the same document and survive user
// management round-trips byte-for-byte.
type Document struct {
	root *yaml.Node
	dir  *Directory
}

// NewDocument creates an empty document with no users and no extra
// sections. Encoding it produces the canonical skeleton with a
// "type: credentials" header.
func NewDocument() *Document {
	return &Document{dir: NewDirectory()}
}

// Directory returns the mutable user directory backing this document.
func (d *Document) Directory() *Directory {
	return d.dir
}

// DecodeDocument parses a YAML credential document. Empty input and a
// document without a credentials section both decode to an empty
// directory. When a user name appears more than once the last occurrence
// wins.
func DecodeDocument(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	if root.Kind == 0 || len(root.Content) == 0 {
		return NewDocument(), nil
	}

	top := root.Content[0]
	if top.Kind == yaml.ScalarNode && top.Tag == "!!null" {
		return NewDocument(), nil
	}
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not a mapping", ErrMalformedDocument)
	}

	doc := &Document{root: &root, dir: NewDirectory()}

	section := mappingValue(top, credentialsKey)
	if section == nil || (section.Kind == yaml.ScalarNode && section.Tag == "!!null") {
		return doc, nil
	}
	if section.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: credentials section is not a mapping", ErrMalformedDocument)
	}

	for i := 0; i < len(section.Content); i += 2 {
		name := section.Content[i]
		entry := section.Content[i+1]
		if name.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: user name is not a scalar", ErrMalformedDocument)
		}
		user, cred, err := decodeEntry(name.Value, entry)
		if err != nil {
			return nil, err
		}
		doc.dir.Upsert(user, cred)
	}

	return doc, nil
}

func decodeEntry(name string, entry *yaml.Node) (User, Credential, error) {
	if entry.Kind != yaml.MappingNode {
		return User{}, Credential{}, fmt.Errorf("%w: entry for %q is not a mapping", ErrMalformedDocument, name)
	}

	user := User{Name: name}
	var cred Credential

	for i := 0; i < len(entry.Content); i += 2 {
		key := entry.Content[i]
		value := entry.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return User{}, Credential{}, fmt.Errorf("%w: field key for %q is not a scalar", ErrMalformedDocument, name)
		}

		switch key.Value {
		case passKey:
			if value.Kind != yaml.ScalarNode {
				return User{}, Credential{}, fmt.Errorf("%w: pass for %q is not a scalar", ErrMalformedDocument, name)
			}
			cred.Digest = value.Value
		case formatKey:
			if value.Kind != yaml.ScalarNode {
				return User{}, Credential{}, fmt.Errorf("%w: type for %q is not a scalar", ErrMalformedDocument, name)
			}
			cred.Format = PasswordFormat(value.Value)
		case emailKey:
			if value.Kind != yaml.ScalarNode {
				return User{}, Credential{}, fmt.Errorf("%w: email for %q is not a scalar", ErrMalformedDocument, name)
			}
			user.Email = value.Value
		case groupsKey:
			groups, err := decodeGroups(name, value)
			if err != nil {
				return User{}, Credential{}, err
			}
			user.Groups = groups
		}
	}

	return user, cred, nil
}

func decodeGroups(name string, value *yaml.Node) ([]string, error) {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil, nil
	}
	if value.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: groups for %q is not a sequence", ErrMalformedDocument, name)
	}
	groups := make([]string, 0, len(value.Content))
	for _, item := range value.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: group for %q is not a scalar", ErrMalformedDocument, name)
		}
		groups = append(groups, item.Value)
	}
	return groups, nil
}

// Encode serializes the document. The credentials section is rebuilt from
// the directory in insertion order, so a given directory always produces
// the same bytes; all other top-level sections pass through from the
// decoded tree unchanged.
func (d *Document) Encode() ([]byte, error) {
	top := d.topMapping()
	setMappingValue(top, credentialsKey, d.credentialsNode())

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("encoding credential document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding credential document: %w", err)
	}
	return buf.Bytes(), nil
}

// topMapping returns the top-level mapping node, building the canonical
// skeleton for documents that started out empty.
func (d *Document) topMapping() *yaml.Node {
	if d.root == nil {
		top := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		setMappingValue(top, docTypeKey, scalarNode(docTypeValue))
		d.root = &yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{top},
		}
	}
	return d.root.Content[0]
}

func (d *Document) credentialsNode() *yaml.Node {
	section := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, entry := range d.dir.entries {
		value := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		setMappingValue(value, passKey, scalarNode(entry.cred.Digest))
		setMappingValue(value, formatKey, scalarNode(string(entry.cred.Format)))
		if entry.user.Email != "" {
			setMappingValue(value, emailKey, scalarNode(entry.user.Email))
		}
		if len(entry.user.Groups) > 0 {
			groups := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for _, group := range entry.user.Groups {
				groups.Content = append(groups.Content, scalarNode(group))
			}
			setMappingValue(value, groupsKey, groups)
		}
		setMappingValue(section, entry.user.Name, value)
	}
	return section
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// mappingValue returns the value node for key in a mapping, or nil.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		k := mapping.Content[i]
		if k.Kind == yaml.ScalarNode && k.Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// setMappingValue replaces the value for key in a mapping, appending the
// pair when the key is absent.
func setMappingValue(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		k := mapping.Content[i]
		if k.Kind == yaml.ScalarNode && k.Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content, scalarNode(key), value)
}
