package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Categories of the file registry.
const (
	CategoryUploaded = "uploaded"
	CategoryDisplay  = "display"
)

// tempPrefix marks partially written files; List skips them.
const tempPrefix = ".upload-"

var (
	ErrNotFound             = errors.New("file not found")
	ErrInvalidName          = errors.New("invalid file name")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrTooLarge             = errors.New("file too large")
	ErrUnknownCategory      = errors.New("unknown category")
)

// DefaultExtensions are the model formats the registry accepts.
var DefaultExtensions = []string{".glb", ".gltf", ".stl"}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// Object describes a stored file.
type Object struct {
	Name         string    `json:"filename"`
	OriginalName string    `json:"originalName,omitempty"`
	Category     string    `json:"category"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	ModTime      time.Time `json:"modTime"`
}

// Storage is the file registry's backend: two named sets, "uploaded" for staging and
// "display" for files the viewer may load.
type Storage interface {
	// Save stores a new file in the "uploaded" set under a sanitised name.
	//
	// Parameters:
	//   - ctx: cancels the write
	//   - originalName: the client-supplied file name
	//   - r: the file contents
	//
	// Returns:
	//   - Object: the stored file
	//   - error: ErrUnsupportedExtension, ErrInvalidName or ErrTooLarge for rejected files
	Save(ctx context.Context, originalName string, r io.Reader) (Object, error)

	// List returns the sorted file names of a category. A missing directory is an empty set.
	//
	// Parameters:
	//   - ctx: cancels the listing
	//   - category: CategoryUploaded or CategoryDisplay
	//
	// Returns:
	//   - []string: the file names, never nil on success
	//   - error: ErrUnknownCategory or an I/O error
	List(ctx context.Context, category string) ([]string, error)

	// Move transfers a file from "uploaded" to "display". The display set is untouched on failure.
	//
	// Parameters:
	//   - ctx: cancels the move
	//   - filename: a stored name as returned by Save
	//
	// Returns:
	//   - error: ErrNotFound if the file is not in "uploaded", ErrInvalidName for unsafe names
	Move(ctx context.Context, filename string) error

	// Open opens a stored file for reading. The caller closes the file.
	//
	// Parameters:
	//   - ctx: cancels the open
	//   - category: CategoryUploaded or CategoryDisplay
	//   - filename: a stored name
	//
	// Returns:
	//   - *os.File: the open file
	//   - Object: the file's description
	//   - error: ErrNotFound, ErrInvalidName or ErrUnknownCategory
	Open(ctx context.Context, category, filename string) (*os.File, Object, error)
}

// localStorage implements Storage on two local directories.
type localStorage struct {
	mu *sync.Mutex

	dirs        map[string]string
	extensions  []string
	uniqueNames bool
	maxSize     int64
}

var _ Storage = &localStorage{}

// NewLocalStorage creates a Storage backed by two directories, creating them if needed.
//
// Parameters:
//   - uploadsDir: directory of the "uploaded" set
//   - displayDir: directory of the "display" set
//   - options: a variadic list of StorageBuilderOption functions to configure the Storage
//
// Returns:
//   - Storage: the storage
//   - error: error if either directory cannot be created
func NewLocalStorage(uploadsDir, displayDir string, options ...StorageBuilderOption) (Storage, error) {
	s := &localStorage{
		mu:         &sync.Mutex{},
		dirs:       map[string]string{},
		extensions: DefaultExtensions,
	}
	for _, opt := range options {
		opt(s)
	}

	for category, dir := range map[string]string{CategoryUploaded: uploadsDir, CategoryDisplay: displayDir} {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve %s directory", category)
		}
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create %s directory", category)
		}
		s.dirs[category] = abs
	}
	return s, nil
}

// SanitizeName drops any directory part of name and replaces every character outside
// [a-zA-Z0-9.-] with an underscore.
//
// Parameters:
//   - name: a client-supplied file name
//
// Returns:
//   - string: the sanitised name
func SanitizeName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return unsafeChars.ReplaceAllString(name, "_")
}

// ValidateName rejects empty names, names with path separators and names containing "..".
//
// Parameters:
//   - name: a stored file name
//
// Returns:
//   - error: ErrInvalidName wrapped with the name, or nil
func ValidateName(name string) error {
	if name == "" || name == "." || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return nil
}

// IsClientError reports whether err was caused by the request rather than the server.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrUnsupportedExtension) ||
		errors.Is(err, ErrTooLarge) ||
		errors.Is(err, ErrUnknownCategory)
}

func (s *localStorage) dir(category string) (string, error) {
	dir, ok := s.dirs[category]
	if !ok {
		return "", errors.Wrapf(ErrUnknownCategory, "%q", category)
	}
	return dir, nil
}

func (s *localStorage) allowed(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range s.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (s *localStorage) Save(ctx context.Context, originalName string, r io.Reader) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	name := SanitizeName(originalName)
	if err := ValidateName(name); err != nil {
		return Object{}, err
	}
	if !s.allowed(name) {
		return Object{}, errors.Wrapf(ErrUnsupportedExtension, "%q", originalName)
	}
	if s.uniqueNames {
		name = uuid.NewString() + "-" + name
	}

	dir := s.dirs[CategoryUploaded]
	size, err := s.writeAtomic(dir, name, r)
	if err != nil {
		return Object{}, err
	}

	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return Object{}, errors.Wrap(err, "file not saved to disk")
	}
	return Object{
		Name:         name,
		OriginalName: originalName,
		Category:     CategoryUploaded,
		Path:         path,
		Size:         size,
		ModTime:      info.ModTime(),
	}, nil
}

// writeAtomic copies r into a temp file in dir and renames it to name once complete.
func (s *localStorage) writeAtomic(dir, name string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return 0, errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	n, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, errors.Wrapf(err, "write %s", name)
	}
	if s.maxSize > 0 && n > s.maxSize {
		return 0, errors.Wrapf(ErrTooLarge, "%q exceeds %d bytes", name, s.maxSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return 0, errors.Wrapf(err, "store %s", name)
	}
	return n, nil
}

func (s *localStorage) List(ctx context.Context, category string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.dir(category)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", category)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}

func (s *localStorage) Move(ctx context.Context, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateName(filename); err != nil {
		return err
	}

	src := filepath.Join(s.dirs[CategoryUploaded], filename)
	dst := filepath.Join(s.dirs[CategoryDisplay], filename)

	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(src)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
		return errors.Wrapf(ErrNotFound, "%q in %s", filename, CategoryUploaded)
	}
	if err != nil {
		return errors.Wrapf(err, "move %s", filename)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// Rename fails across file systems; fall back to copy and remove.
	if err := copyFile(src, dst); err != nil {
		return errors.Wrapf(err, "move %s", filename)
	}
	return errors.Wrapf(os.Remove(src), "remove %s after copy", filename)
}

// copyFile writes src to a temp file next to dst and renames it into place.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), tempPrefix+"*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, in)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func (s *localStorage) Open(ctx context.Context, category, filename string) (*os.File, Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, Object{}, err
	}
	dir, err := s.dir(category)
	if err != nil {
		return nil, Object{}, err
	}
	if err := ValidateName(filename); err != nil {
		return nil, Object{}, err
	}

	path := filepath.Join(dir, filename)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, Object{}, errors.Wrapf(ErrNotFound, "%q in %s", filename, category)
	}
	if err != nil {
		return nil, Object{}, errors.Wrapf(err, "open %s", filename)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Object{}, errors.Wrapf(err, "stat %s", filename)
	}
	if info.IsDir() {
		f.Close()
		return nil, Object{}, errors.Wrapf(ErrNotFound, "%q in %s", filename, category)
	}
	return f, Object{
		Name:     filename,
		Category: category,
		Path:     path,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
	}, nil
}
