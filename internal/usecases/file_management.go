package usecases

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"repo-manager/internal/config"
	"repo-manager/internal/domain"
)

type FileManagementUseCase struct {
	storage   domain.FileStorage
	cfg       *config.Config
	validName *regexp.Regexp
}

func NewFileManagementUseCase(storage domain.FileStorage, cfg *config.Config) *FileManagementUseCase {
	regex := regexp.MustCompile(cfg.File.ValidNameRegex)
	return &FileManagementUseCase{
		storage:   storage,
		cfg:       cfg,
		validName: regex,
	}
}

func isSeparator(r rune) bool {
	return r == '/' || r == os.PathSeparator
}

// sanitizePath превращает клиентский путь в очищенный путь относительно корня репозитория.
// Любой сегмент ".." отклоняется сразу, ещё до filepath.Clean: иначе "a/../b" тихо
// превращается в "b" и клиент не узнаёт, что его путь был некорректным.
// Ведущие слэши срезаются - путь всегда считается от корня.
// Имя здесь не проверяется регуляркой: существующие записи доступны под любым именем.
func (uc *FileManagementUseCase) sanitizePath(path string) (string, error) {
	for _, segment := range strings.FieldsFunc(path, isSeparator) {
		if segment == domain.PathTraversalPrefix {
			return "", fmt.Errorf("path '%s' contains '..': %w", path, domain.ErrPathTraversal)
		}
	}

	clean := filepath.Clean(strings.TrimLeftFunc(path, isSeparator))

	// на windows после среза слэшей может остаться том вида "C:".
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != domain.PathEmpty {
		return "", fmt.Errorf("absolute paths are not allowed: %w", domain.ErrPathTraversal)
	}

	basePath := filepath.Clean(uc.storage.GetAbsolutePath(domain.PathEmpty))
	if !isWithin(basePath, filepath.Join(basePath, clean)) {
		return "", fmt.Errorf("path traversal detected: %w", domain.ErrPathTraversal)
	}

	if len(clean) > uc.cfg.File.MaxNameLength {
		return "", fmt.Errorf("path '%s' too long (%d > %d): %w",
			path, len(clean), uc.cfg.File.MaxNameLength, domain.ErrPathTooLong)
	}

	if err := uc.ensureContained(clean); err != nil {
		return "", err
	}

	return clean, nil
}

// ensureContained проверка вложенности после раскрытия симлинков: лексически
// "link/secret.txt" внутри корня, а на диске link может вести куда угодно.
func (uc *FileManagementUseCase) ensureContained(clean string) error {
	root, err := uc.storage.CanonicalPath(domain.PathCurrent)
	if err != nil {
		return fsError("could not resolve repository root", domain.PathCurrent, err)
	}
	resolved, err := uc.storage.CanonicalPath(clean)
	if err != nil {
		return fsError("could not resolve path", clean, err)
	}
	if !isWithin(root, resolved) {
		return fmt.Errorf("path '%s' resolves outside the repository: %w", clean, domain.ErrPathTraversal)
	}
	return nil
}

func isWithin(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != domain.PathTraversalPrefix &&
		!strings.HasPrefix(rel, domain.PathTraversalPrefix+string(filepath.Separator))
}

// sanitizeNewPath то же, что sanitizePath, плюс проверка имени создаваемой записи.
func (uc *FileManagementUseCase) sanitizeNewPath(path string) (string, error) {
	clean, err := uc.sanitizePath(path)
	if err != nil {
		return "", err
	}

	// валидация имени, чтобы не создавались записи с недопустимыми символами
	base := filepath.Base(clean)
	if base != domain.PathCurrent && !uc.validName.MatchString(base) {
		return "", fmt.Errorf("base name '%s' is invalid: %w", base, domain.ErrInvalidName)
	}
	return clean, nil
}

// validateBareName новое имя при переименовании - только имя, не путь.
func (uc *FileManagementUseCase) validateBareName(name string) error {
	switch {
	case name == domain.PathEmpty, name == domain.PathCurrent, name == domain.PathTraversalPrefix:
		return fmt.Errorf("name '%s' is not a file name: %w", name, domain.ErrInvalidName)
	case strings.IndexFunc(name, isSeparator) >= 0:
		return fmt.Errorf("name '%s' must not contain path separators: %w", name, domain.ErrInvalidName)
	case len(name) > uc.cfg.File.MaxNameLength:
		return fmt.Errorf("name '%s' too long (%d > %d): %w",
			name, len(name), uc.cfg.File.MaxNameLength, domain.ErrPathTooLong)
	case !uc.validName.MatchString(name):
		return fmt.Errorf("name '%s' is invalid: %w", name, domain.ErrInvalidName)
	}
	return nil
}

// fsError сводит ошибку файловой системы к доменной: отсутствие пути - ErrFileNotFound,
// всё остальное - ErrIO. Исходная ошибка остаётся только в тексте.
func fsError(action, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s '%s': %w", action, path, domain.ErrFileNotFound)
	}
	return fmt.Errorf("%s '%s': %w: %v", action, path, domain.ErrIO, err)
}

func ioError(action, path, reason string) error {
	return fmt.Errorf("%s '%s': %s: %w", action, path, reason, domain.ErrIO)
}

func (uc *FileManagementUseCase) stat(action, path string) (os.FileInfo, error) {
	info, err := uc.storage.Stat(path)
	if err != nil {
		return nil, fsError(action, path, err)
	}
	return info, nil
}

// ensureAbsent коллизия имён - ошибка ввода-вывода, os.Rename молча перезаписал бы файл.
func (uc *FileManagementUseCase) ensureAbsent(action, path string) error {
	_, err := uc.storage.Stat(path)
	switch {
	case err == nil:
		return fmt.Errorf("%s to '%s': %w: %w", action, path, domain.ErrIO, domain.ErrAlreadyExists)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fsError(action, path, err)
	}
}

// toEntry классифицирует запись каталога; всё, что не файл и не директория
// (симлинки, сокеты, устройства) или имеет битое имя, пропускается.
func toEntry(e os.DirEntry) (domain.Entry, bool) {
	name := e.Name()
	if name == domain.PathEmpty || !utf8.ValidString(name) {
		return domain.Entry{}, false
	}

	switch mode := e.Type(); {
	case mode.IsDir():
		return domain.Entry{Name: name, IsFile: false}, true
	case mode.IsRegular():
		return domain.Entry{Name: name, IsFile: true}, true
	default:
		return domain.Entry{}, false
	}
}

func (uc *FileManagementUseCase) List(path string) ([]domain.Entry, error) {
	sanitizedPath, err := uc.sanitizePath(path)
	if err != nil {
		return nil, err
	}

	entries, err := uc.storage.ReadDirectory(sanitizedPath)
	if err != nil {
		// отсутствующая и нечитаемая директория для клиента выглядят одинаково.
		logrus.Debugf("Failed to read directory %s: %v", sanitizedPath, err)
		return nil, fmt.Errorf("could not read directory '%s': %w", sanitizedPath, domain.ErrFileNotFound)
	}

	files := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		entry, ok := toEntry(e)
		if !ok {
			logrus.Debugf("Skipping unclassifiable entry %q in %s", e.Name(), sanitizedPath)
			continue
		}
		files = append(files, entry)
	}

	return files, nil
}

func (uc *FileManagementUseCase) CreateFolder(path string) error {
	sanitizedPath, err := uc.sanitizeNewPath(path)
	if err != nil {
		return err
	}
	if createErr := uc.storage.CreateDirectory(sanitizedPath); createErr != nil {
		return fmt.Errorf("could not create folder '%s': %w: %v", sanitizedPath, domain.ErrIO, createErr)
	}
	return nil
}

func (uc *FileManagementUseCase) DeleteFile(path string) error {
	sanitizedPath, err := uc.sanitizePath(path)
	if err != nil {
		return err
	}

	info, err := uc.stat("could not delete file", sanitizedPath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return ioError("could not delete file", sanitizedPath, "is a directory")
	}

	if removeErr := uc.storage.RemoveFile(sanitizedPath); removeErr != nil {
		return fsError("could not delete file", sanitizedPath, removeErr)
	}
	return nil
}

// DeleteFolder удаляет директорию рекурсивно. Если удаление упало на середине,
// уже удалённое не восстанавливается.
func (uc *FileManagementUseCase) DeleteFolder(path string) error {
	sanitizedPath, err := uc.sanitizePath(path)
	if err != nil {
		return err
	}
	if sanitizedPath == domain.PathCurrent {
		return fmt.Errorf("refusing to delete repository root: %w", domain.ErrUnsupportedOperation)
	}

	info, err := uc.stat("could not delete folder", sanitizedPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ioError("could not delete folder", sanitizedPath, "not a directory")
	}

	if removeErr := uc.storage.RemoveAll(sanitizedPath); removeErr != nil {
		return fmt.Errorf("could not delete folder '%s': %w: %v", sanitizedPath, domain.ErrIO, removeErr)
	}
	return nil
}

// Rename переименовывает запись внутри той же родительской директории.
func (uc *FileManagementUseCase) Rename(path, newName string) error {
	sanitizedPath, err := uc.sanitizePath(path)
	if err != nil {
		return err
	}
	if nameErr := uc.validateBareName(newName); nameErr != nil {
		return nameErr
	}
	if sanitizedPath == domain.PathCurrent {
		return ioError("could not rename", sanitizedPath, "path has no file name")
	}

	if _, statErr := uc.stat("could not rename", sanitizedPath); statErr != nil {
		return statErr
	}

	target := filepath.Join(filepath.Dir(sanitizedPath), newName)
	if target == sanitizedPath {
		return nil
	}
	if existsErr := uc.ensureAbsent("could not rename '"+sanitizedPath+"'", target); existsErr != nil {
		return existsErr
	}

	if moveErr := uc.storage.Move(sanitizedPath, target); moveErr != nil {
		return fsError("could not rename", sanitizedPath, moveErr)
	}
	return nil
}

// Move переносит запись в другую директорию, сохраняя имя.
// Отсутствующая директория назначения - NotFound, а не ошибка rename.
func (uc *FileManagementUseCase) Move(path, destination string) error {
	sanitizedPath, err := uc.sanitizePath(path)
	if err != nil {
		return err
	}
	sanitizedDest, err := uc.sanitizePath(destination)
	if err != nil {
		return err
	}
	if sanitizedPath == domain.PathCurrent {
		return ioError("could not move", sanitizedPath, "path has no file name")
	}

	if _, statErr := uc.stat("could not move", sanitizedPath); statErr != nil {
		return statErr
	}
	destInfo, err := uc.stat("could not move into", sanitizedDest)
	if err != nil {
		return err
	}
	if !destInfo.IsDir() {
		return ioError("could not move into", sanitizedDest, "not a directory")
	}

	if sanitizedDest == sanitizedPath ||
		strings.HasPrefix(sanitizedDest, sanitizedPath+string(filepath.Separator)) {
		return ioError("could not move", sanitizedPath, "destination is inside the source")
	}

	target := filepath.Join(sanitizedDest, filepath.Base(sanitizedPath))
	if target == sanitizedPath {
		return nil
	}
	if existsErr := uc.ensureAbsent("could not move '"+sanitizedPath+"'", target); existsErr != nil {
		return existsErr
	}

	if moveErr := uc.storage.Move(sanitizedPath, target); moveErr != nil {
		return fsError("could not move", sanitizedPath, moveErr)
	}
	return nil
}

// UploadFile записывает содержимое как есть, заменяя существующий файл.
// Родительская директория должна существовать.
func (uc *FileManagementUseCase) UploadFile(path string, file io.Reader) error {
	sanitizedPath, err := uc.sanitizePath(path)
	if err != nil {
		return err
	}
	if sanitizedPath == domain.PathCurrent {
		return ioError("failed to upload file to", sanitizedPath, "is a directory")
	}

	parent := filepath.Dir(sanitizedPath)
	parentInfo, err := uc.stat("failed to upload file into", parent)
	if err != nil {
		return err
	}
	if !parentInfo.IsDir() {
		return ioError("failed to upload file into", parent, "not a directory")
	}

	info, statErr := uc.storage.Stat(sanitizedPath)
	switch {
	case statErr == nil && info.IsDir():
		return ioError("failed to upload file to", sanitizedPath, "is a directory")
	case statErr != nil && !errors.Is(statErr, fs.ErrNotExist):
		return fsError("failed to upload file to", sanitizedPath, statErr)
	}

	if writeErr := uc.storage.WriteFile(sanitizedPath, file); writeErr != nil {
		return fmt.Errorf("failed to upload file to '%s': %w: %v", sanitizedPath, domain.ErrIO, writeErr)
	}
	return nil
}

func (uc *FileManagementUseCase) ServeFile(w http.ResponseWriter, r *http.Request, path string) error {
	sanitizedPath, err := uc.sanitizePath(path)
	if err != nil {
		return err
	}

	info, err := uc.stat("file not found at", sanitizedPath)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("'%s' is not a regular file: %w", sanitizedPath, domain.ErrFileNotFound)
	}

	fullPath := uc.storage.GetAbsolutePath(sanitizedPath)

	// MIME.
	// для корректного скачивания файлов.
	mimeType := mime.TypeByExtension(filepath.Ext(fullPath))
	if mimeType == domain.PathEmpty {
		mimeType = domain.MIMEOctetStream
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filepath.Base(fullPath)))
	http.ServeFile(w, r, fullPath)
	return nil
}

// shouldSkipFile исключить скрытые файлы из zip архива.
// заодно пропускаю всё, что не обычный файл: по симлинку можно уйти за пределы репозитория.
func (uc *FileManagementUseCase) shouldSkipFile(info os.FileInfo) bool {
	if strings.HasPrefix(info.Name(), domain.HiddenFilePrefix) {
		return true
	}
	return !info.IsDir() && !info.Mode().IsRegular()
}

// добавление файлов в zip архив
func (uc *FileManagementUseCase) addFileToZip(zipWriter *zip.Writer, fullPath, filePath string) error {
	rel, err := filepath.Rel(fullPath, filePath)
	if err != nil {
		return fmt.Errorf("failed to get relative path: %w", err)
	}

	dstFile, err := zipWriter.Create(filepath.ToSlash(rel))
	if err != nil {
		return fmt.Errorf("failed to create zip entry: %w", err)
	}

	srcFile, openErr := os.Open(filePath)
	if openErr != nil {
		return fmt.Errorf("failed to open file: %w", openErr)
	}
	defer func() {
		if closeErr := srcFile.Close(); closeErr != nil {
			logrus.Warnf("Failed to close file %s: %v", filePath, closeErr)
		}
	}()

	if _, copyErr := io.Copy(dstFile, srcFile); copyErr != nil {
		return fmt.Errorf("failed to copy file to zip: %w", copyErr)
	}

	return nil
}

// createZipArchive рекурсивно обхожу дерево директорий и добавляю все не скрытые файлы
func (uc *FileManagementUseCase) createZipArchive(zipWriter *zip.Writer, fullPath string) error {
	return filepath.Walk(fullPath, func(file string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if file != fullPath && uc.shouldSkipFile(info) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			return nil
		}

		return uc.addFileToZip(zipWriter, fullPath, file)
	})
}

func (uc *FileManagementUseCase) ServeFolderAsZip(w http.ResponseWriter, path string) error {
	sanitizedPath, err := uc.sanitizePath(path)
	if err != nil {
		return err
	}

	info, err := uc.stat("could not stat folder", sanitizedPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("'%s' is not a folder: %w", sanitizedPath, domain.ErrFileNotFound)
	}

	fullPath := uc.storage.GetAbsolutePath(sanitizedPath)
	zipName := filepath.Base(fullPath) + domain.ExtensionZip
	w.Header().Set("Content-Type", domain.MIMEZip)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", zipName))

	zipWriter := zip.NewWriter(w)
	defer func() {
		if closeErr := zipWriter.Close(); closeErr != nil {
			logrus.Errorf("Failed to close zip writer: %v", closeErr)
		}
	}()

	if archiveErr := uc.createZipArchive(zipWriter, fullPath); archiveErr != nil {
		return fmt.Errorf("failed to create zip for folder '%s': %w: %v", sanitizedPath, domain.ErrIO, archiveErr)
	}

	return nil
}
