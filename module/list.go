package module

// List is a collection of modules.
type List []*Module

// Get returns the module with the given name, or nil.
func (list List) Get(name string) *Module {
	for _, module := range list {
		if module.Name == name {
			return module
		}
	}
	return nil
}

// Copy returns a shallow copy of the list.
func (list List) Copy() List {
	result := make(List, len(list))
	copy(result, list)
	return result
}
