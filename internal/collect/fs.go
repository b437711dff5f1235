package collect

import (
	"os"
	"sort"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// FS is what the collector reads through. None of the methods may follow a
// symbolic link in the final path component. ReadDirNames must not stat the
// children, so one unreadable child can't hide its siblings.
type FS interface {
	Lstat(filename string) (os.FileInfo, error)
	ReadDirNames(path string) ([]string, error)
	Readlink(link string) (string, error)
}

// Billy adapts a billy filesystem whose ReadDir doesn't stat children, such as
// memfs.
func Billy(fs billy.Filesystem) FS {
	return billyFS{fs}
}

type billyFS struct {
	billy.Filesystem
}

func (b billyFS) ReadDirNames(path string) ([]string, error) {
	infos, err := b.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, nil
}

// OS returns the host filesystem rooted at volume ("/" or "C:\"). Listing uses
// Readdirnames directly; go-billy's osfs ReadDir lstats every child and fails
// the whole listing on the first error.
func OS(volume string) FS {
	return osFS{osfs.New(volume, osfs.WithBoundOS())}
}

type osFS struct {
	billy.Filesystem
}

func (o osFS) ReadDirNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
