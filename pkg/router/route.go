package router

// Route is a registered combination of method and pattern. It is not modified
// after registration.
type Route struct {
	Method  string
	Pattern string
	Target  any
}

// Param is a single path parameter extracted by Dispatch.
type Param struct {
	Key   string
	Value string
}

// Params keeps the path parameters in the order they appear in the pattern.
type Params []Param

// Get returns the value of the last parameter with the given key.
func (p Params) Get(key string) (string, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Key == key {
			return p[i].Value, true
		}
	}
	return "", false
}

// Map converts the parameters into a map. Later keys overwrite earlier ones.
func (p Params) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, param := range p {
		m[param.Key] = param.Value
	}
	return m
}
