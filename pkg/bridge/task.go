package bridge

// Task is a named exercise and the modules that currently offer it.
type Task struct {
	Name    string       `json:"name"`
	Key     string       `json:"key"`
	Modules []ModuleCode `json:"modules"`
}
