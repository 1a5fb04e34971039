package domain

import (
	"io"
	"net/http"
	"os"
)

// Entry запись листинга директории. Ровно одно из двух: файл или директория,
// симлинки и прочие спецфайлы в листинг не попадают.
type Entry struct {
	Name   string `json:"name"`
	IsFile bool   `json:"is_file"`
}

// FileStorage для операций работы с файловым хранилищем.
// Все пути относительные и уже прошли проверку в usecase.
type FileStorage interface {
	ReadDirectory(relPath string) ([]os.DirEntry, error)
	Stat(relPath string) (os.FileInfo, error)
	WriteFile(relPath string, file io.Reader) error
	RemoveFile(relPath string) error
	RemoveAll(relPath string) error
	Move(oldRel, newRel string) error
	CreateDirectory(relPath string) error
	GetAbsolutePath(relPath string) string
	// CanonicalPath абсолютный путь с раскрытыми симлинками. Для ещё не
	// существующего пути раскрывается самый длинный существующий предок.
	CanonicalPath(relPath string) (string, error)
}

// FileManagement для сценариев управления файлами.
type FileManagement interface {
	List(path string) ([]Entry, error)
	UploadFile(path string, file io.Reader) error
	CreateFolder(path string) error
	DeleteFile(path string) error
	DeleteFolder(path string) error
	Rename(path, newName string) error
	Move(path, destination string) error
	ServeFile(w http.ResponseWriter, r *http.Request, path string) error
	ServeFolderAsZip(w http.ResponseWriter, path string) error
}
