// Package assets manages data-driven shader and material descriptions: it
// loads JSON description files, registers the parsed shaders with a renderer,
// instantiates declared materials, and optionally hot-reloads descriptions
// when their files change on disk.
package assets

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/penumbra3d/penumbra/engine/renderer"
	"github.com/penumbra3d/penumbra/engine/renderer/material"
	"github.com/penumbra3d/penumbra/engine/renderer/shader"
)

// library is the implementation of the Library interface.
type library struct {
	mu *sync.Mutex

	renderer renderer.Renderer
	logger   *log.Logger

	// shaders maps shader name to the currently registered shader.
	shaders map[string]shader.Shader

	// materials maps material name to its declaration.
	materials map[string]shader.MaterialDescription

	// sources maps a loaded description file path to the names it declared,
	// so a reload can replace exactly what the file contributed.
	sources map[string]*sourceRecord

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// sourceRecord remembers what one description file contributed.
type sourceRecord struct {
	shaderNames   []string
	materialNames []string
}

// Library is a registry of shader and material descriptions loaded from JSON
// files. Loaded shaders are registered with the renderer immediately;
// reloading a file replaces its shaders and their pipelines while other files'
// contributions stay untouched.
type Library interface {
	// Load parses a description file and registers its shaders with the
	// renderer. Loading the same path again replaces the file's previous
	// contribution.
	//
	// Parameters:
	//   - path: path to the JSON description file
	//
	// Returns:
	//   - error: a parse or shader registration error; on error the registry
	//     keeps the file's previous contribution
	Load(path string) error

	// Shader returns a registered shader by name.
	//
	// Parameters:
	//   - name: the shader name
	//
	// Returns:
	//   - shader.Shader: the shader
	//   - bool: false when no shader of that name is registered
	Shader(name string) (shader.Shader, bool)

	// CreateMaterial instantiates a declared material. The instance is
	// unbuilt; the caller sets properties and builds it.
	//
	// Parameters:
	//   - name: the declared material name
	//
	// Returns:
	//   - material.Material: a fresh instance of the declaration
	//   - error: when the name is undeclared or its shader is missing
	CreateMaterial(name string) (material.Material, error)

	// MaterialNames returns the names of every declared material.
	//
	// Returns:
	//   - []string: the declared material names
	MaterialNames() []string

	// Watch starts hot reload: whenever a loaded description file or a file
	// next to it changes, the description is reloaded. A reload that fails
	// is logged and the previous state kept.
	//
	// Returns:
	//   - error: a watcher creation error
	Watch() error

	// Close stops the watcher if one is running.
	Close()
}

var _ Library = &library{}

// NewLibrary creates an empty library bound to a renderer.
//
// Parameters:
//   - r: the renderer shaders are registered with
//   - options: functional options to configure the library
//
// Returns:
//   - Library: the library
func NewLibrary(r renderer.Renderer, options ...LibraryBuilderOption) Library {
	l := &library{
		mu:        &sync.Mutex{},
		renderer:  r,
		logger:    log.Default(),
		shaders:   make(map[string]shader.Shader),
		materials: make(map[string]shader.MaterialDescription),
		sources:   make(map[string]*sourceRecord),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *library) Load(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("assets: failed to resolve %s: %w", path, err)
	}

	shaders, materials, err := shader.ParseLibraryFile(absPath)
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Register the new generation first. A failure rolls the renderer back
	// to the previous generation so the registry and the pipeline cache
	// never disagree about which shader a name resolves to.
	registered := make([]shader.Shader, 0, len(shaders))
	for _, s := range shaders {
		if err := l.renderer.RegisterShader(s); err != nil {
			l.rollback(registered)
			s.Release()
			return fmt.Errorf("assets: failed to register shader %q from %s: %w", s.Name(), absPath, err)
		}
		registered = append(registered, s)
	}

	l.replaceSource(absPath, shaders, materials)

	if l.watcher != nil {
		if err := l.watcher.Add(filepath.Dir(absPath)); err != nil {
			l.logger.Warn("failed to watch description directory", "path", absPath, "error", err)
		}
	}

	l.logger.Info("loaded shader description", "path", absPath, "shaders", len(shaders), "materials", len(materials))
	return nil
}

// rollback undoes the registrations of an aborted load: every name the new
// generation already replaced is re-registered with its previous shader, and
// the discarded new shaders are freed.
func (l *library) rollback(registered []shader.Shader) {
	for _, s := range registered {
		if old, ok := l.shaders[s.Name()]; ok {
			if err := l.renderer.RegisterShader(old); err != nil {
				l.logger.Error("failed to restore shader after aborted load", "shader", s.Name(), "error", err)
				l.renderer.UnregisterShader(s.Name())
			}
		} else {
			l.renderer.UnregisterShader(s.Name())
		}
		s.Release()
	}
}

// replaceSource swaps a file's previous contribution for the newly registered
// one. Names the file no longer declares are dropped from the renderer;
// replaced shader objects are freed, their pipelines having already been
// recompiled by registration.
func (l *library) replaceSource(path string, shaders []shader.Shader, materials []shader.MaterialDescription) {
	redeclared := make(map[string]bool, len(shaders))
	for _, s := range shaders {
		redeclared[s.Name()] = true
	}

	if record, ok := l.sources[path]; ok {
		for _, name := range record.shaderNames {
			old, ok := l.shaders[name]
			if !ok {
				continue
			}
			if !redeclared[name] {
				l.renderer.UnregisterShader(name)
				delete(l.shaders, name)
			}
			old.Release()
		}
		for _, name := range record.materialNames {
			delete(l.materials, name)
		}
	}

	record := &sourceRecord{}
	for _, s := range shaders {
		l.shaders[s.Name()] = s
		record.shaderNames = append(record.shaderNames, s.Name())
	}
	for _, m := range materials {
		l.materials[m.Name] = m
		record.materialNames = append(record.materialNames, m.Name)
	}
	l.sources[path] = record
}

func (l *library) Shader(name string) (shader.Shader, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.shaders[name]
	return s, ok
}

func (l *library) CreateMaterial(name string) (material.Material, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	desc, ok := l.materials[name]
	if !ok {
		return nil, fmt.Errorf("assets: no material %q is declared", name)
	}
	s, ok := l.shaders[desc.Shader]
	if !ok {
		return nil, fmt.Errorf("assets: material %q references unknown shader %q", name, desc.Shader)
	}
	return material.NewMaterial(name, s), nil
}

func (l *library) MaterialNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.materials))
	for name := range l.materials {
		names = append(names, name)
	}
	return names
}

func (l *library) Watch() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("assets: failed to create watcher: %w", err)
	}
	l.watcher = watcher
	l.done = make(chan struct{})

	for path := range l.sources {
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			l.logger.Warn("failed to watch description directory", "path", path, "error", err)
		}
	}

	go l.watchLoop(watcher, l.done)
	return nil
}

// watchLoop reloads loaded descriptions when they or their neighbors change.
// A change to a shader source reloads every description in its directory,
// since sources are referenced relative to the description file.
func (l *library) watchLoop(watcher *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			for _, path := range l.affectedSources(event.Name) {
				l.logger.Info("description change detected", "changed", event.Name, "reloading", path)
				if err := l.Load(path); err != nil {
					l.logger.Error("hot reload failed, keeping previous shaders", "path", path, "error", err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn("watcher error", "error", err)
		}
	}
}

// affectedSources returns the loaded description files a changed file affects:
// the file itself if it is loaded, otherwise every loaded description sharing
// its directory.
func (l *library) affectedSources(changed string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.sources[changed]; ok {
		return []string{changed}
	}
	changedDir := filepath.Dir(changed)
	var affected []string
	for path := range l.sources {
		if filepath.Dir(path) == changedDir {
			affected = append(affected, path)
		}
	}
	return affected
}

func (l *library) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher == nil {
		return
	}
	close(l.done)
	if err := l.watcher.Close(); err != nil {
		l.logger.Warn("failed to close watcher", "error", err)
	}
	l.watcher = nil
	l.done = nil
}
