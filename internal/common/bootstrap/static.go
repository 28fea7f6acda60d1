package bootstrap

import (
	"net/http"
	"os"
	"path"
)

// staticFS hides directories that have no index.html, so the file server
// never renders a listing.
type staticFS struct {
	fs http.FileSystem
}

func (s staticFS) Open(name string) (http.File, error) {
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if !info.IsDir() {
		return f, nil
	}

	index, err := s.fs.Open(path.Join(name, "index.html"))
	if err != nil {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	_ = index.Close()
	return f, nil
}

func staticHandler(dir string) http.Handler {
	return http.StripPrefix("/static/", http.FileServer(staticFS{fs: http.Dir(dir)}))
}
