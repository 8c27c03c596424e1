package app

import (
	"io"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SetConfig sets a config value. There is no schema; any value is accepted.
func (a *Application) SetConfig(key string, value any) *Application {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.config[key] = value
	return a
}

// Config returns the config value or def, if the key is not set.
func (a *Application) Config(key string, def any) any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	v, ok := a.config[key]
	if !ok {
		return def
	}
	return v
}

// LoadConfig merges the top level keys of a YAML document into the config.
func (a *Application) LoadConfig(r io.Reader) error {
	values := map[string]any{}
	err := yaml.NewDecoder(r).Decode(&values)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "decode config")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for k, v := range values {
		a.config[k] = v
	}
	return nil
}

// DecodeConfig decodes the config value into out, which usually is a pointer
// to a struct with mapstructure tags.
func (a *Application) DecodeConfig(key string, out any) error {
	a.mu.RLock()
	v, ok := a.config[key]
	a.mu.RUnlock()

	if !ok {
		return errors.Errorf("config key %q is not set", key)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.Wrapf(dec.Decode(v), "decode config key %q", key)
}
