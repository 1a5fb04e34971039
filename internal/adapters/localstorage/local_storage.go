package localstorage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"repo-manager/internal/domain"
)

// LocalStorageService примитивы файловой системы под корнем репозитория.
// Каждая операция - один системный вызов (или его эквивалент), без блокировок:
// конкурентные запросы к одному пути гоняются на уровне самой ФС.
type LocalStorageService struct {
	basePath string
	dirPerm  os.FileMode
	filePerm os.FileMode
}

func NewLocalStorageService(basePath string, dirPerm, filePerm os.FileMode) *LocalStorageService {
	return &LocalStorageService{
		basePath: basePath,
		dirPerm:  dirPerm,
		filePerm: filePerm,
	}
}

func (s *LocalStorageService) GetAbsolutePath(relPath string) string {
	return filepath.Join(s.basePath, relPath)
}

// CanonicalPath раскрывает симлинки на пути. Несуществующий хвост
// пристёгивается к раскрытому существующему предку как есть.
func (s *LocalStorageService) CanonicalPath(relPath string) (string, error) {
	current := s.GetAbsolutePath(relPath)
	var tail []string
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}

		// висячий симлинк: куда он ведёт, проверить нельзя.
		if _, lstatErr := os.Lstat(current); lstatErr == nil {
			return "", fmt.Errorf("dangling symlink %s: %w", current, fs.ErrNotExist)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		tail = append([]string{filepath.Base(current)}, tail...)
		current = parent
	}
}

// ReadDirectory возвращает записи в порядке файловой системы, без сортировки.
func (s *LocalStorageService) ReadDirectory(relPath string) ([]os.DirEntry, error) {
	dir, err := os.Open(s.GetAbsolutePath(relPath))
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := dir.Close(); closeErr != nil {
			logrus.Warnf("Failed to close directory %s: %v", relPath, closeErr)
		}
	}()

	return dir.ReadDir(-1)
}

// Stat не ходит по симлинкам.
func (s *LocalStorageService) Stat(relPath string) (os.FileInfo, error) {
	return os.Lstat(s.GetAbsolutePath(relPath))
}

// WriteFile пишет во временный файл рядом с целью и переименовывает его поверх,
// так что читатель видит либо старое содержимое, либо новое целиком.
// Родительская директория должна уже существовать.
func (s *LocalStorageService) WriteFile(relPath string, file io.Reader) error {
	fullPath := s.GetAbsolutePath(relPath)

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), domain.TempFilePattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err = io.Copy(tmp, file); err != nil {
		s.discard(tmp, tmpName)
		return err
	}
	if err = tmp.Chmod(s.filePerm); err != nil {
		s.discard(tmp, tmpName)
		return err
	}
	if err = tmp.Close(); err != nil {
		s.removeTemp(tmpName)
		return err
	}

	if err = os.Rename(tmpName, fullPath); err != nil {
		s.removeTemp(tmpName)
		return err
	}
	return nil
}

func (s *LocalStorageService) discard(tmp *os.File, tmpName string) {
	if closeErr := tmp.Close(); closeErr != nil {
		logrus.Warnf("Failed to close temp file %s: %v", tmpName, closeErr)
	}
	s.removeTemp(tmpName)
}

func (s *LocalStorageService) removeTemp(tmpName string) {
	if removeErr := os.Remove(tmpName); removeErr != nil && !os.IsNotExist(removeErr) {
		logrus.Warnf("Failed to remove temp file %s: %v", tmpName, removeErr)
	}
}

func (s *LocalStorageService) RemoveFile(relPath string) error {
	return os.Remove(s.GetAbsolutePath(relPath))
}

func (s *LocalStorageService) RemoveAll(relPath string) error {
	return os.RemoveAll(s.GetAbsolutePath(relPath))
}

// Move переименовывает файл или директорию внутри базового хранилища.
// пустой путь отклоняется, чтобы избежать случайную потерю данных.
func (s *LocalStorageService) Move(oldRel, newRel string) error {
	if newRel == domain.PathEmpty {
		return os.ErrInvalid
	}
	return os.Rename(s.GetAbsolutePath(oldRel), s.GetAbsolutePath(newRel))
}

func (s *LocalStorageService) CreateDirectory(relPath string) error {
	return os.MkdirAll(s.GetAbsolutePath(relPath), s.dirPerm)
}
