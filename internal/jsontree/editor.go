package jsontree

// Editor holds a JSON value and reports every structural change as the
// entire new value.
type Editor struct {
	value    any
	readOnly bool
	onChange func(any)
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithOnChange registers the callback invoked after each mutation.
func WithOnChange(fn func(any)) EditorOption {
	return func(e *Editor) {
		e.onChange = fn
	}
}

// ReadOnly makes the editor reject mutations.
func ReadOnly() EditorOption {
	return func(e *Editor) {
		e.readOnly = true
	}
}

// NewEditor creates an editor over a copy of v.
func NewEditor(v any, opts ...EditorOption) *Editor {
	e := &Editor{value: Clone(v)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Value returns a copy of the current value.
func (e *Editor) Value() any {
	return Clone(e.value)
}

// ReadOnly reports whether mutations are rejected.
func (e *Editor) ReadOnly() bool {
	return e.readOnly
}

// SetValue replaces the value without invoking the change callback.
// Hosts use it to push state into the editor.
func (e *Editor) SetValue(v any) {
	e.value = Clone(v)
}

// Edit replaces the node at path.
func (e *Editor) Edit(path Path, value any) error {
	return e.apply(func(root any) (any, error) {
		return Set(root, path, value)
	})
}

// Add inserts a child into the container at path.
func (e *Editor) Add(path Path, key string, value any) error {
	return e.apply(func(root any) (any, error) {
		return Insert(root, path, key, value)
	})
}

// Remove deletes the node at path.
func (e *Editor) Remove(path Path) error {
	return e.apply(func(root any) (any, error) {
		return Delete(root, path)
	})
}

func (e *Editor) apply(fn func(any) (any, error)) error {
	if e.readOnly {
		return ErrReadOnly
	}
	updated, err := fn(e.value)
	if err != nil {
		return err
	}
	e.value = updated
	if e.onChange != nil {
		e.onChange(Clone(updated))
	}
	return nil
}
