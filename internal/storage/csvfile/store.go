// Package csvfile хранит таблицы в CSV-файлах: одна таблица — один файл <dir>/<name>.csv.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

const utf8BOM = "\ufeff"

// Store — TableStore поверх файловой системы afero.
type Store struct {
	fs     afero.Fs
	dir    string
	logger *log.Entry
}

// Option настраивает Store.
type Option func(*Store)

// WithLogger задаёт логгер хранилища.
func WithLogger(logger *log.Entry) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New создаёт хранилище в каталоге dir, создавая каталог при необходимости.
func New(fs afero.Fs, dir string, opts ...Option) (*Store, error) {
	if fs == nil {
		return nil, errors.New("filesystem is required")
	}
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("data directory is required")
	}
	s := &Store{
		fs:     fs,
		dir:    dir,
		logger: log.WithField("component", "csv-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	exists, err := afero.DirExists(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("stat data directory %s: %w", dir, err)
	}
	if !exists {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}
	return s, nil
}

// NewOnDisk создаёт хранилище на реальной файловой системе.
func NewOnDisk(dir string, opts ...Option) (*Store, error) {
	return New(afero.NewOsFs(), dir, opts...)
}

// Path возвращает путь к файлу таблицы.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".csv")
}

// ReadTable читает файл целиком. Пустой файл — пустая таблица без заголовка.
func (s *Store) ReadTable(ctx context.Context, name string) (domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return domain.Table{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	f, err := s.fs.Open(s.Path(name))
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: open %s: %v", domain.ErrStorageUnavailable, s.Path(name), err)
	}
	defer f.Close()

	table, err := decodeCSV(f)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: parse %s: %v", domain.ErrStorageUnavailable, s.Path(name), err)
	}
	return table, nil
}

// WriteTable кодирует таблицу в память и перезаписывает файл одним вызовом.
func (s *Store) WriteTable(ctx context.Context, name string, table domain.Table) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWriteFailed, err)
	}
	data, err := encodeCSV(table)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorageWriteFailed, name, err)
	}
	if err := afero.WriteFile(s.fs, s.Path(name), data, 0o644); err != nil {
		s.logger.WithError(err).WithField("table", name).Error("failed to write table")
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorageWriteFailed, s.Path(name), err)
	}
	return nil
}

// EnsureTable создаёт файл только с заголовком, если файла ещё нет.
func (s *Store) EnsureTable(ctx context.Context, name string, header []string) error {
	exists, err := afero.Exists(s.fs, s.Path(name))
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", domain.ErrStorageUnavailable, s.Path(name), err)
	}
	if exists {
		return nil
	}
	s.logger.WithField("table", name).Info("creating empty table")
	return s.WriteTable(ctx, name, domain.Table{Header: header})
}

// Ping проверяет, что каталог данных существует.
func (s *Store) Ping(context.Context) error {
	ok, err := afero.DirExists(s.fs, s.dir)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("%w: data directory %s is missing", domain.ErrStorageUnavailable, s.dir)
	}
	return nil
}

func decodeCSV(r io.Reader) (domain.Table, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return domain.Table{}, nil
	}
	if err != nil {
		return domain.Table{}, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := domain.Table{Header: header, Rows: [][]string{}}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, err
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func encodeCSV(table domain.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ domain.TableStore = (*Store)(nil)
