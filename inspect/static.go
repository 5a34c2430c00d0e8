package inspect

import (
	"net/http"
	"os"
	"path"
	"strings"
)

// publicFS serves files from a directory without listings or dot-files.
type publicFS struct {
	root http.FileSystem
}

func (fs publicFS) Open(name string) (http.File, error) {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return nil, os.ErrNotExist
		}
	}

	f, err := fs.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := fs.root.Open(path.Join(name, "index.html"))
		if err != nil {
			f.Close()
			return nil, os.ErrNotExist
		}
		index.Close()
	}
	return f, nil
}

// StaticHandler serves the files under dir at matching paths.
func StaticHandler(dir string) http.Handler {
	return http.FileServer(publicFS{root: http.Dir(dir)})
}
