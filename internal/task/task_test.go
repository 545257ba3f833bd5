package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blues/nftsender/internal/config"
	"github.com/blues/nftsender/internal/database"
	"github.com/blues/nftsender/internal/logic"
	"github.com/blues/nftsender/internal/model"
	"github.com/blues/nftsender/internal/provider"
	"github.com/blues/nftsender/internal/validation"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeReader struct{}

func (fakeReader) GetCollection(ctx context.Context, apiKey, id string) (*provider.Collection, error) {
	if id == "missing" {
		return nil, errors.New("Collection not found")
	}
	return &provider.Collection{ID: id, Chain: "solana"}, nil
}

func (fakeReader) ListTemplates(ctx context.Context, apiKey, id string) ([]provider.Template, error) {
	return nil, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestProjectValidationJob_Execute(t *testing.T) {
	db := newTestDB(t)
	pl := logic.NewProjectLogic(db)
	ctx := context.Background()

	good := &model.ProjectModel{Name: "Good", ApiKey: "sk", TemplateId: "col-1", Blockchain: model.BlockchainSolana}
	bad := &model.ProjectModel{Name: "Bad", ApiKey: "sk", TemplateId: "missing"}
	for _, p := range []*model.ProjectModel{good, bad} {
		if err := pl.CreateProject(ctx, p); err != nil {
			t.Fatalf("CreateProject() error: %v", err)
		}
	}

	watcher := validation.NewWatcher(validation.NewValidator(fakeReader{}), time.Hour)
	defer watcher.Stop()
	cfg := &config.Config{Task: config.TaskConfig{ValidationInterval: 60}}

	job := NewProjectValidationJob(db, watcher, cfg)
	if job.GetName() != "project_validation" {
		t.Errorf("GetName() = %q", job.GetName())
	}
	job.Execute()

	if s := watcher.Get(good.Id); s.State != validation.StateValid || s.Template.Chain != model.BlockchainSolana {
		t.Errorf("good project status = %+v", s)
	}
	if s := watcher.Get(bad.Id); s.State != validation.StateInvalid {
		t.Errorf("bad project status = %+v", s)
	}
}

func TestManager_RegisterJobs(t *testing.T) {
	db := newTestDB(t)
	watcher := validation.NewWatcher(validation.NewValidator(fakeReader{}), time.Hour)
	defer watcher.Stop()

	tests := []struct {
		name     string
		interval int
		want     int
	}{
		{"enabled", 60, 1},
		{"disabled", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Task: config.TaskConfig{ValidationInterval: tt.interval}}
			m, err := NewManager(db, watcher, cfg)
			if err != nil {
				t.Fatalf("NewManager() error: %v", err)
			}
			defer m.Stop()

			m.RegisterJobs()
			if got := len(m.Jobs()); got != tt.want {
				t.Errorf("jobs = %d, want %d", got, tt.want)
			}
		})
	}
}
