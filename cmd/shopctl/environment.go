package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/vladislavdragonenkov/costumeshop/internal/app"
	"github.com/vladislavdragonenkov/costumeshop/internal/service/catalog"
	"github.com/vladislavdragonenkov/costumeshop/internal/storage/csvfile"
)

// environment — общие для всех команд зависимости и значения глобальных флагов.
type environment struct {
	fs       afero.Fs
	dataDir  string
	grpcAddr string
	brokers  []string
	topic    string
	verbose  bool

	in  io.Reader
	out io.Writer
	err io.Writer
}

// newEnvironment берёт значения по умолчанию из COSTUMESHOP_* и .env, как сервис.
func newEnvironment() *environment {
	cfg, err := app.LoadConfig()
	if err != nil {
		cfg = app.DefaultConfig()
	}
	return &environment{
		fs:       afero.NewOsFs(),
		dataDir:  cfg.DataDir,
		grpcAddr: cfg.GRPCAddr,
		brokers:  cfg.KafkaBrokers,
		topic:    cfg.KafkaTopic,
		in:       os.Stdin,
		out:      os.Stdout,
		err:      os.Stderr,
	}
}

func (e *environment) logger() *log.Entry {
	logger := log.New()
	logger.SetOutput(e.err)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	logger.SetLevel(log.WarnLevel)
	if e.verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger.WithField("component", "shopctl")
}

// openCatalog открывает CSV-таблицы каталога данных и создаёт недостающие.
func (e *environment) openCatalog(ctx context.Context) (*catalog.Catalog, error) {
	logger := e.logger()
	store, err := csvfile.New(e.fs, e.dataDir, csvfile.WithLogger(logger.WithField("layer", "csv")))
	if err != nil {
		return nil, errors.Wrapf(err, "open data dir %s", e.dataDir)
	}
	cat := catalog.New(store, catalog.WithLogger(logger.WithField("layer", "catalog")), catalog.WithSerializedWrites(true))
	if err := cat.EnsureTables(ctx); err != nil {
		return nil, err
	}
	return cat, nil
}

// readDocument возвращает JSON-документ из аргумента; "-" читает stdin.
func (e *environment) readDocument(arg string) ([]byte, error) {
	if strings.TrimSpace(arg) != "-" {
		return []byte(arg), nil
	}
	body, err := io.ReadAll(e.in)
	if err != nil {
		return nil, errors.Wrap(err, "read stdin")
	}
	return body, nil
}

func (e *environment) print(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode output")
	}
	_, err = e.out.Write(append(b, '\n'))
	return err
}
