package neogm

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Labeler lets an entity type choose its node label instead of using the struct name.
type Labeler interface {
	NodeLabel() string
}

// entityMetadata is the parsed `crud` tag information of an entity struct type.
type entityMetadata struct {
	// Label is the node label, the struct name unless the type implements Labeler.
	Label string
	// PKField is the name of the struct field marked as the primary key.
	PKField string
	// PKProp is the property name of the primary key in the database.
	PKProp string
	// Mappings maps struct field names to their node property names.
	Mappings map[string]string
}

// parseTagsFromType inspects the `crud` tags of a struct type. Recognized components are
// "pk" and "property:<name>"; "-" skips the field. A tagged field without a property
// component maps to its name with the first letter lowercased.
func parseTagsFromType(typ reflect.Type) (*entityMetadata, error) {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("type %s is not a struct", typ.Name())
	}

	meta := &entityMetadata{
		Label:    typ.Name(),
		Mappings: make(map[string]string),
	}
	if l, ok := reflect.New(typ).Interface().(Labeler); ok && l.NodeLabel() != "" {
		meta.Label = l.NodeLabel()
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag, ok := field.Tag.Lookup("crud")
		if !ok || tag == "-" || !field.IsExported() {
			continue
		}

		isPK := false
		propName := ""
		for _, part := range strings.Split(tag, ",") {
			part = strings.TrimSpace(part)
			switch {
			case part == "pk":
				isPK = true
			case strings.HasPrefix(part, "property:"):
				propName = strings.TrimPrefix(part, "property:")
			case part == "":
			default:
				return nil, fmt.Errorf("field %s: unknown crud tag component %q", field.Name, part)
			}
		}
		if propName == "" {
			propName = lowerFirst(field.Name)
		}

		if isPK {
			if meta.PKField != "" {
				return nil, fmt.Errorf("struct %s declares more than one primary key", typ.Name())
			}
			meta.PKField = field.Name
			meta.PKProp = propName
		}
		meta.Mappings[field.Name] = propName
	}

	if meta.PKField == "" {
		return nil, fmt.Errorf("no primary key ('pk') tag defined for struct %s", typ.Name())
	}

	return meta, nil
}

func parseTags[T any]() (*entityMetadata, error) {
	return parseTagsFromType(reflect.TypeOf((*T)(nil)).Elem())
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
