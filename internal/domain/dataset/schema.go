package dataset

import "fmt"

// Field declares one column.
type Field struct {
	Name string
	Kind Kind
}

// Schema is the ordered list of columns of a dataset.
type Schema []Field

// Index returns the position of the named column, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

func (s Schema) validate() error {
	seen := make(map[string]struct{}, len(s))
	for _, f := range s {
		if f.Name == "" {
			return fmt.Errorf("%w: empty column name", ErrSchema)
		}
		if f.Kind == KindNull || f.Kind > KindObject {
			return fmt.Errorf("%w: column %q has no concrete kind", ErrSchema, f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrSchema, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// field returns the named column or an ErrSchema error.
func (s Schema) field(name string) (int, Field, error) {
	i := s.Index(name)
	if i < 0 {
		return -1, Field{}, fmt.Errorf("%w: unknown column %q", ErrSchema, name)
	}
	return i, s[i], nil
}
