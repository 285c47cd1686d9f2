package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/nehe/engine/core"
)

type Kind int

const (
	KindNone Kind = iota
	KindImage
	KindFont
	KindShader
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindFont:
		return "font"
	case KindShader:
		return "shader"
	}
	return "none"
}

// KindOf classifies a resource by its file extension.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp", ".png", ".jpg", ".jpeg":
		return KindImage
	case ".fnt":
		return KindFont
	case ".spv", ".metallib", ".dxil", ".msl":
		return KindShader
	}
	return KindNone
}

type Entry struct {
	// Name is the path relative to the index root, slash separated.
	Name    string
	Kind    Kind
	Size    int64
	ModTime time.Time
}

/**
 * @brief Keeps an index of the resource files under a root directory. The
 * index is built by walking the tree and kept current by an fsnotify watcher,
 * so lessons resolve names without touching the filesystem per lookup.
 */
type Index struct {
	root    string
	entries map[string]Entry
	mutex   sync.RWMutex

	watcher  *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	isClosed bool
}

// NewIndex indexes root and starts watching it.
func NewIndex(root string) (*Index, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &core.IOError{Path: root, Err: err}
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, &core.IOError{Path: root, Err: err}
	}
	if !fi.IsDir() {
		return nil, &core.IOError{Path: root, Err: errors.New("not a directory")}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ix := &Index{
		root:    abs,
		entries: make(map[string]Entry),
		watcher: watcher,
		done:    make(chan struct{}),
	}
	if err := ix.watchRecursive(abs); err != nil {
		watcher.Close()
		return nil, err
	}

	ix.wg.Add(1)
	go ix.start()

	core.LogDebug("indexed %d resources under '%s'", ix.Len(), abs)
	return ix, nil
}

func (ix *Index) Root() string {
	return ix.root
}

func (ix *Index) Len() int {
	ix.mutex.RLock()
	defer ix.mutex.RUnlock()
	return len(ix.entries)
}

// Lookup returns the entry for a name relative to the root.
func (ix *Index) Lookup(name string) (Entry, bool) {
	ix.mutex.RLock()
	defer ix.mutex.RUnlock()
	e, ok := ix.entries[cleanName(name)]
	return e, ok
}

// Resolve returns the filesystem path of an indexed resource. Unknown names
// are reported as an IOError wrapping fs.ErrNotExist.
func (ix *Index) Resolve(name string) (string, error) {
	key := cleanName(name)
	ix.mutex.RLock()
	_, ok := ix.entries[key]
	ix.mutex.RUnlock()
	if !ok {
		return "", &core.IOError{Path: name, Err: fs.ErrNotExist}
	}
	return filepath.Join(ix.root, filepath.FromSlash(key)), nil
}

// Entries lists indexed resources of one kind sorted by name. KindNone lists
// everything.
func (ix *Index) Entries(kind Kind) []Entry {
	ix.mutex.RLock()
	out := make([]Entry, 0, len(ix.entries))
	for _, e := range ix.entries {
		if kind == KindNone || e.Kind == kind {
			out = append(out, e)
		}
	}
	ix.mutex.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close stops the watcher. The index keeps answering lookups from its last
// known state.
func (ix *Index) Close() error {
	ix.mutex.Lock()
	if ix.isClosed {
		ix.mutex.Unlock()
		return nil
	}
	ix.isClosed = true
	ix.mutex.Unlock()

	close(ix.done)
	ix.wg.Wait()
	return ix.watcher.Close()
}

func (ix *Index) start() {
	defer ix.wg.Done()
	for {
		select {
		case e, ok := <-ix.watcher.Events:
			if !ok {
				return
			}
			ix.handleEvent(e)

		case err, ok := <-ix.watcher.Errors:
			if !ok {
				return
			}
			core.LogError("resource watcher: %s", err)

		case <-ix.done:
			return
		}
	}
}

func (ix *Index) handleEvent(e fsnotify.Event) {
	switch {
	case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
		fi, err := os.Stat(e.Name)
		if err != nil {
			return
		}
		if fi.IsDir() {
			if e.Op&fsnotify.Create != 0 {
				if err := ix.watchRecursive(e.Name); err != nil {
					core.LogWarn("failed to watch '%s': %s", e.Name, err)
				}
			}
			return
		}
		ix.addFile(e.Name, fi)

	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// A removed path may have been a directory; drop everything below it.
		ix.removePrefix(e.Name)
	}
}

// watchRecursive adds path and every directory under it to the watch list
// and indexes the files it finds.
func (ix *Index) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return ix.watcher.Add(walkPath)
		}
		fi, err := d.Info()
		if err != nil {
			// Deleted between the directory read and the stat.
			return nil
		}
		ix.addFile(walkPath, fi)
		return nil
	})
}

func (ix *Index) addFile(path string, fi fs.FileInfo) {
	name, err := ix.relative(path)
	if err != nil {
		return
	}
	ix.mutex.Lock()
	defer ix.mutex.Unlock()
	ix.entries[name] = Entry{
		Name:    name,
		Kind:    KindOf(name),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}
}

func (ix *Index) removePrefix(path string) {
	name, err := ix.relative(path)
	if err != nil {
		return
	}
	ix.mutex.Lock()
	defer ix.mutex.Unlock()
	for key := range ix.entries {
		if key == name || strings.HasPrefix(key, name+"/") {
			delete(ix.entries, key)
		}
	}
}

func (ix *Index) relative(path string) (string, error) {
	rel, err := filepath.Rel(ix.root, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("'%s' is outside '%s'", path, ix.root)
	}
	return filepath.ToSlash(rel), nil
}

func cleanName(name string) string {
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(name)), "./")
}
