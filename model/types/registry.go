// Package types resolves item type constraints by name.
package types

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/viant/fluxmesh/errs"
	"github.com/viant/x"
)

// Registry maps type names to Go types. Names use either the full package
// path ("github.com/acme/app/task.Job") or the package alias ("task.Job").
type Registry struct {
	x.Registry
	mux     sync.RWMutex
	aliases map[string]string
}

// Register adds data types to the registry
func (r *Registry) Register(types ...reflect.Type) {
	for _, rType := range types {
		for rType.Kind() == reflect.Ptr {
			rType = rType.Elem()
		}
		dataType := x.NewType(rType)
		if dataType.PkgPath != "" {
			alias := dataType.PkgPath
			if idx := strings.LastIndex(alias, "/"); idx != -1 {
				alias = alias[idx+1:]
			}
			r.mux.Lock()
			r.aliases[alias] = dataType.PkgPath
			r.mux.Unlock()
		}
		r.Registry.Register(dataType)
	}
}

// Lookup returns a registered type; a leading "*" yields the pointer type.
func (r *Registry) Lookup(name string) (reflect.Type, error) {
	name = strings.TrimSpace(name)
	pointer := strings.HasPrefix(name, "*")
	dataType := strings.TrimPrefix(name, "*")
	if idx := strings.LastIndex(dataType, "."); idx != -1 {
		pkg, typeName := dataType[:idx], dataType[idx+1:]
		r.mux.RLock()
		if pkgPath, ok := r.aliases[pkg]; ok {
			pkg = pkgPath
		}
		r.mux.RUnlock()
		dataType = fmt.Sprintf("%s.%s", pkg, typeName)
	}
	ret := r.Registry.Lookup(dataType)
	if ret == nil || ret.Type == nil {
		return nil, errs.Configuration("type %v not registered", name)
	}
	if pointer {
		return reflect.PtrTo(ret.Type), nil
	}
	return ret.Type, nil
}

// Resolve looks up all names
func (r *Registry) Resolve(names ...string) ([]reflect.Type, error) {
	var ret []reflect.Type
	for _, name := range names {
		rType, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		ret = append(ret, rType)
	}
	return ret, nil
}

// NewRegistry creates a registry
func NewRegistry(types ...reflect.Type) *Registry {
	ret := &Registry{
		Registry: *x.NewRegistry(),
		aliases:  make(map[string]string),
	}
	ret.Register(types...)
	return ret
}
