package logic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blues/nftsender/internal/database"
	"github.com/blues/nftsender/internal/model"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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

func createProject(t *testing.T, l *ProjectLogic) *model.ProjectModel {
	t.Helper()
	p := &model.ProjectModel{Name: "Drop", ApiKey: "sk_test", TemplateId: "tpl-1"}
	if err := l.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("CreateProject() error: %v", err)
	}
	return p
}

func TestProjectLogic_CRUD(t *testing.T) {
	ctx := context.Background()
	l := NewProjectLogic(newTestDB(t))

	p := createProject(t, l)
	if p.Id == "" {
		t.Fatal("project id not assigned")
	}
	if p.CollectionId != "tpl-1" || p.Blockchain != model.BlockchainChiliz {
		t.Errorf("defaults not applied: collection=%s chain=%s", p.CollectionId, p.Blockchain)
	}

	updated, err := l.UpdateProject(ctx, p.Id, &model.ProjectModel{Blockchain: model.BlockchainSolana})
	if err != nil {
		t.Fatalf("UpdateProject() error: %v", err)
	}
	if updated.Blockchain != model.BlockchainSolana || updated.Name != "Drop" {
		t.Errorf("UpdateProject() = %+v", updated)
	}

	if _, err := l.UpdateProject(ctx, p.Id, &model.ProjectModel{Blockchain: "bitcoin"}); !errors.Is(err, ErrInvalidProject) {
		t.Errorf("UpdateProject(bitcoin) error = %v; want ErrInvalidProject", err)
	}

	latest, err := l.GetLatestProject(ctx)
	if err != nil || latest.Id != p.Id {
		t.Errorf("GetLatestProject() = %v, %v", latest, err)
	}

	if err := l.DeleteProject(ctx, p.Id); err != nil {
		t.Fatalf("DeleteProject() error: %v", err)
	}
	if _, err := l.GetProject(ctx, p.Id); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("GetProject() after delete error = %v; want ErrProjectNotFound", err)
	}
	if err := l.DeleteProject(ctx, p.Id); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("second DeleteProject() error = %v; want ErrProjectNotFound", err)
	}
}

func TestProjectLogic_CreateValidates(t *testing.T) {
	l := NewProjectLogic(newTestDB(t))
	err := l.CreateProject(context.Background(), &model.ProjectModel{Name: "x", TemplateId: "t"})
	if !errors.Is(err, ErrInvalidProject) {
		t.Errorf("CreateProject() without api key error = %v; want ErrInvalidProject", err)
	}
}

func TestMintRecordLogic_CreatePendingAndList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	project := createProject(t, NewProjectLogic(db))
	store := NewMintRecordLogic(db)

	records, failed := store.CreatePending(ctx, project, []string{"alice@x.io", "bob@y.io", "alice@x.io"})
	if failed != 0 {
		t.Fatalf("CreatePending() failed = %d; want 0", failed)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d; want 3", len(records))
	}
	for _, r := range records {
		if r.IsTemp() || r.Status != model.MintStatusPending || r.TemplateId != "tpl-1" {
			t.Errorf("record = %+v", r)
		}
	}

	listed, err := store.ListByProject(ctx, project.Id)
	if err != nil {
		t.Fatalf("ListByProject() error: %v", err)
	}
	if len(listed) != 3 {
		t.Errorf("len(ListByProject()) = %d; want 3", len(listed))
	}
}

func TestMintRecordLogic_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := NewMintRecordLogic(db)
	pid := "p1"
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, r := range []string{"old@x.io", "mid@x.io", "new@x.io"} {
		rec := model.MintRecordModel{Recipient: r, ProjectId: &pid, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := db.Create(&rec).Error; err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	listed, err := store.ListByProject(ctx, pid)
	if err != nil {
		t.Fatalf("ListByProject() error: %v", err)
	}
	if len(listed) != 3 || listed[0].Recipient != "new@x.io" || listed[2].Recipient != "old@x.io" {
		t.Errorf("ListByProject() order wrong: %+v", listed)
	}
}

func TestMintRecordLogic_CreatePendingFallsBackToTemp(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	if err := db.Migrator().DropTable(&model.MintRecordModel{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	store := NewMintRecordLogic(db)

	records, failed := store.CreatePending(ctx, &model.ProjectModel{Id: "p", TemplateId: "t"}, []string{"a@b.co"})
	if failed != 1 || len(records) != 1 {
		t.Fatalf("CreatePending() = %d records, %d failed; want 1, 1", len(records), failed)
	}
	if !records[0].IsTemp() {
		t.Errorf("record id = %s; want temp id", records[0].Id)
	}
}

func TestMintRecordLogic_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	project := createProject(t, NewProjectLogic(db))
	store := NewMintRecordLogic(db)
	records, _ := store.CreatePending(ctx, project, []string{"a@b.co"})
	id := records[0].Id

	if err := store.UpdateStatus(ctx, id, model.MintStatusFailed, "Invalid email"); err != nil {
		t.Fatalf("UpdateStatus(failed) error: %v", err)
	}
	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Status != model.MintStatusFailed || got.ErrorText() != "Invalid email" {
		t.Errorf("after failed: status=%s error=%q", got.Status, got.ErrorText())
	}

	if err := store.UpdateStatus(ctx, id, model.MintStatusPending, ""); err != nil {
		t.Fatalf("UpdateStatus(pending) error: %v", err)
	}
	got, _ = store.Get(ctx, id)
	if got.Status != model.MintStatusPending || got.ErrorMessage != nil {
		t.Errorf("after pending: status=%s error=%v", got.Status, got.ErrorMessage)
	}

	if err := store.UpdateStatus(ctx, "temp-abc", model.MintStatusMinted, ""); err != nil {
		t.Errorf("UpdateStatus(temp) error = %v; want nil", err)
	}
	if err := store.UpdateStatus(ctx, uuid.NewString(), model.MintStatusMinted, ""); !errors.Is(err, model.ErrRecordNotFound) {
		t.Errorf("UpdateStatus(missing) error = %v; want ErrRecordNotFound", err)
	}
}

func TestMintRecordLogic_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	project := createProject(t, NewProjectLogic(db))
	store := NewMintRecordLogic(db)
	records, _ := store.CreatePending(ctx, project, []string{"a@b.co", "c@d.co"})

	if err := store.Delete(ctx, []string{records[0].Id, "temp-x", uuid.NewString()}); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	listed, _ := store.ListByProject(ctx, project.Id)
	if len(listed) != 1 || listed[0].Id != records[1].Id {
		t.Errorf("remaining records = %+v", listed)
	}

	if err := store.Delete(ctx, []string{"temp-only"}); err != nil {
		t.Errorf("Delete(temp only) error = %v; want nil", err)
	}
}

func TestDeleteProject_KeepsRecords(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	projects := NewProjectLogic(db)
	project := createProject(t, projects)
	store := NewMintRecordLogic(db)
	store.CreatePending(ctx, project, []string{"a@b.co"})

	if err := projects.DeleteProject(ctx, project.Id); err != nil {
		t.Fatalf("DeleteProject() error: %v", err)
	}
	listed, _ := store.ListByProject(ctx, project.Id)
	if len(listed) != 1 {
		t.Errorf("orphan records = %d; want 1", len(listed))
	}
}
