package content

import (
	"strings"
	"sync"

	"github.com/nas-ai/filemanager/src/domain/files"
	"github.com/nas-ai/filemanager/src/drivers/storage"
)

// Registry maps storage names to filesystem backends. The first storage added
// is the default.
type Registry struct {
	mu     sync.RWMutex
	names  []string
	stores map[string]storage.Filesystem
}

func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]storage.Filesystem)}
}

// Add registers fsys under name. Names must be unique and usable as a
// "name://" qualifier.
func (r *Registry) Add(name string, fsys storage.Filesystem) error {
	if name == "" || strings.ContainsAny(name, ":/\\") {
		return files.Errorf(files.KindConfiguration, "invalid storage name %q", name)
	}
	if fsys == nil {
		return files.Errorf(files.KindConfiguration, "storage %q has no backend", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[name]; exists {
		return files.Errorf(files.KindConfiguration, "storage %q already registered", name)
	}
	r.stores[name] = fsys
	r.names = append(r.names, name)
	return nil
}

func (r *Registry) Get(name string) (storage.Filesystem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fsys, ok := r.stores[name]
	if !ok {
		return nil, files.Errorf(files.KindUnknownStorage, "unknown storage: %s", name)
	}
	return fsys, nil
}

// Default returns the first registered storage still present.
func (r *Registry) Default() (string, storage.Filesystem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.names) == 0 {
		return "", nil, files.Errorf(files.KindUnknownStorage, "no storages registered")
	}
	name := r.names[0]
	return name, r.stores[name], nil
}

// Names lists storages in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stores[name]; !ok {
		return
	}
	delete(r.stores, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
}
