package segmentation

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/utils"
)

// A RefinerConstructor builds a Refiner from its configured attributes.
type RefinerConstructor func(attributes utils.AttributeMap, logger logging.Logger) (Refiner, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]RefinerConstructor{}
)

// RegisterRefiner makes a refiner available under name. It panics on a duplicate name, so it is
// meant to be called from init.
func RegisterRefiner(name string, constructor RefinerConstructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[name]; ok {
		panic(errors.Errorf("trying to register two refiners with the same name %q", name))
	}
	registry[name] = constructor
}

// NewRefiner builds the refiner registered under name.
func NewRefiner(name string, attributes utils.AttributeMap, logger logging.Logger) (Refiner, error) {
	registryMu.RLock()
	constructor, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown refiner %q, registered refiners are %v", name, RegisteredRefiners())
	}
	return constructor(attributes, logger)
}

// RegisteredRefiners returns the sorted names of all refiners.
func RegisteredRefiners() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
