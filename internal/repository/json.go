package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/ghaggin/part11/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	errTableFileIsDir = errors.New("table file is dir")
)

type Data struct {
	Settings map[string]string `json:"settings"`
}

type jsonRepo struct {
	path string
	log  *zap.Logger

	mu   sync.Mutex
	data *Data
}

type jsonParams struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Log    *zap.Logger
}

func NewJSON(p jsonParams) (Repository, error) {
	r := newJSONRepo(p.Config.State.Path, p.Log)

	p.LC.Append(fx.Hook{
		OnStop: r.stop,
	})

	return r, nil
}

func newJSONRepo(path string, log *zap.Logger) *jsonRepo {
	r := &jsonRepo{
		path: path,
		log:  log,
		data: &Data{Settings: map[string]string{}},
	}

	err := r.readfile()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		// only log, data will be empty and will overwrite when
		// the service is stopped
		r.log.Warn("failed reading json repo data file", zap.Error(err))
	}
	if r.data.Settings == nil {
		r.data.Settings = map[string]string{}
	}

	return r
}

func (r *jsonRepo) stop(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writefile()
}

func (r *jsonRepo) readfile() error {
	finfo, err := os.Stat(r.path)
	if err != nil {
		return err
	}

	if finfo.IsDir() {
		return errTableFileIsDir
	}

	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(&r.data)
}

func (r *jsonRepo) writefile() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(r.path, b, 0o644)
}

func (r *jsonRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.data.Settings[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores the value and flushes immediately so a crash does not lose it.
func (r *jsonRepo) Set(_ context.Context, key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data.Settings[key] = value
	return r.writefile()
}

func (r *jsonRepo) GetAPIURL(ctx context.Context) (string, error) {
	return r.Get(ctx, APIURLKey)
}

func (r *jsonRepo) SetAPIURL(ctx context.Context, url string) error {
	return r.Set(ctx, APIURLKey, url)
}
