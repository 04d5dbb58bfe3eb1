// This file implements a file system watcher for the notes inbox. Markdown
// files dropped into the inbox directory become notes for the configured
// user and are moved into an "imported" subdirectory.

package inbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/jobs"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/models"
	"github.com/vrsandeep/homebase/internal/store"
	"github.com/vrsandeep/homebase/internal/util"
)

// ImportedDir is where processed files are moved, relative to the inbox.
const ImportedDir = "imported"

// InboxTag is added to every imported note.
const InboxTag = "inbox"

// WatcherService watches the inbox directory and imports markdown files.
type WatcherService struct {
	ctx           jobs.JobContext
	dir           string
	watcher       *fsnotify.Watcher
	changedPaths  map[string]bool
	mu            sync.Mutex
	importMu      sync.Mutex
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
}

// NewWatcherService creates a watcher for the configured inbox path.
func NewWatcherService(ctx jobs.JobContext) *WatcherService {
	return &WatcherService{
		ctx:           ctx,
		dir:           ctx.Config().Inbox.Path,
		changedPaths:  make(map[string]bool),
		debounceDelay: 2 * time.Second, // writers often save in several steps
		stopChan:      make(chan struct{}),
	}
}

// Start creates the inbox if needed, imports files already waiting in it
// and begins watching for new ones.
func (w *WatcherService) Start() error {
	if w.dir == "" {
		return errors.New("inbox path is not configured")
	}
	if err := util.EnsureWritableDir(filepath.Join(w.dir, ImportedDir)); err != nil {
		return fmt.Errorf("inbox: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return err
	}
	w.watcher = watcher

	if _, err := w.ImportPending(); err != nil {
		w.ctx.Logger().Warn("Inbox import failed", logger.Error(err))
	}

	w.ctx.Logger().Info("Inbox watcher started", logger.String("path", w.dir))
	go w.processEvents()
	return nil
}

// Stop stops the file watcher service.
func (w *WatcherService) Stop() error {
	close(w.stopChan)
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *WatcherService) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.ctx.Logger().Warn("Inbox watcher error", logger.Error(err))

		case <-w.stopChan:
			return
		}
	}
}

func (w *WatcherService) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !isMarkdown(event.Name) || filepath.Dir(event.Name) != filepath.Clean(w.dir) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.changedPaths[event.Name] = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.triggerImport)
}

func (w *WatcherService) triggerImport() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.changedPaths))
	for p := range w.changedPaths {
		paths = append(paths, p)
	}
	w.changedPaths = make(map[string]bool)
	w.mu.Unlock()

	if len(paths) == 0 {
		return
	}
	w.importFiles(paths)
}

// ImportPending imports every markdown file currently in the inbox.
func (w *WatcherService) ImportPending() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, err
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && isMarkdown(e.Name()) {
			paths = append(paths, filepath.Join(w.dir, e.Name()))
		}
	}
	return w.importFiles(paths), nil
}

func (w *WatcherService) importFiles(paths []string) int {
	w.importMu.Lock()
	defer w.importMu.Unlock()

	log := w.ctx.Logger()
	if len(paths) == 0 {
		return 0
	}
	sort.Slice(paths, func(i, j int) bool {
		return util.NaturalLess(filepath.Base(paths[i]), filepath.Base(paths[j]))
	})
	st := store.New(w.ctx.DB())
	username := w.ctx.Config().Inbox.User
	user, err := st.GetUserByUsername(username)
	if err != nil {
		log.Warn("Inbox user not found, leaving files in place",
			logger.String("user", username), logger.Error(err))
		return 0
	}

	imported := 0
	for _, path := range paths {
		if err := w.importFile(st, user.ID, path); err != nil {
			log.Warn("Failed to import inbox file", logger.String("path", path), logger.Error(err))
			continue
		}
		imported++
	}
	if imported > 0 {
		log.Info("Imported inbox notes", logger.Int("count", imported))
		w.ctx.Bus().Emit(events.NotesChanged, user.ID, map[string]int{"imported": imported})
	}
	return imported
}

func (w *WatcherService) importFile(st *store.Store, userID int64, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		// Already imported by an earlier batch.
		return nil
	}
	if err != nil {
		return err
	}
	content := strings.TrimSpace(string(data))
	if content != "" {
		if _, err := st.CreateNote(userID, &models.Note{Content: content, Tags: models.NewTags(InboxTag)}); err != nil {
			return err
		}
	}
	return os.Rename(path, w.importedPath(filepath.Base(path)))
}

// importedPath avoids overwriting an earlier file of the same name.
func (w *WatcherService) importedPath(name string) string {
	dest := filepath.Join(w.dir, ImportedDir, name)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return filepath.Join(w.dir, ImportedDir, fmt.Sprintf("%s-%d%s", base, time.Now().UnixNano(), ext))
}

func isMarkdown(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	return ext == ".md" || ext == ".markdown"
}
