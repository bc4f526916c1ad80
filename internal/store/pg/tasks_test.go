package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"taskdeck.org/internal/task"
)

func taskRows(tasks ...task.Task) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "category", "status", "position",
		"organization_id", "created_by", "created_at", "updated_at",
	})
	for _, t := range tasks {
		rows.AddRow(t.ID, t.Title, t.Description, t.Category, string(t.Status), t.Order,
			t.OrganizationID, t.CreatedBy, t.CreatedAt, t.UpdatedAt)
	}
	return rows
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	store := NewStore(db)

	now := time.Now().UTC()
	mock.ExpectQuery("insert into tasks").
		WithArgs(sqlmock.AnyArg(), "deploy", "", "ops", "Todo", 0, "org-a", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	tk := &task.Task{Title: "deploy", Category: "ops", Status: task.StatusTodo, OrganizationID: "org-a", CreatedBy: "user-1"}
	if err := store.Create(context.Background(), tk); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tk.ID == "" {
		t.Fatal("id not assigned")
	}
	if !tk.CreatedAt.Equal(now) || !tk.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps not populated: %v %v", tk.CreatedAt, tk.UpdatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateFindRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	store := NewStore(db)

	now := time.Now().UTC()
	mock.ExpectQuery("insert into tasks").
		WithArgs(sqlmock.AnyArg(), "deploy", "ship it", "ops", "InProgress", 2, "org-a", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	created := &task.Task{
		Title: "deploy", Description: "ship it", Category: "ops",
		Status: task.StatusInProgress, Order: 2,
		OrganizationID: "org-a", CreatedBy: "user-1",
	}
	if err := store.Create(context.Background(), created); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mock.ExpectQuery("select .* from tasks").WithArgs(created.ID).
		WillReturnRows(taskRows(*created))

	found, err := store.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if *found != *created {
		t.Fatalf("round trip mismatch:\n created %+v\n found   %+v", created, found)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	store := NewStore(db)

	mock.ExpectQuery("select .* from tasks").WithArgs("task-x").WillReturnRows(taskRows())

	if _, err := store.FindByID(context.Background(), "task-x"); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByOrgSetBuildsPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	store := NewStore(db)

	now := time.Now().UTC()
	rows := taskRows(
		task.Task{ID: "t1", Title: "a", Category: "ops", Status: task.StatusTodo, OrganizationID: "org-a", CreatedBy: "u", CreatedAt: now, UpdatedAt: now},
		task.Task{ID: "t2", Title: "b", Category: "ops", Status: task.StatusTodo, Order: 1, OrganizationID: "org-b", CreatedBy: "u", CreatedAt: now, UpdatedAt: now},
	)
	mock.ExpectQuery(`in \(\$1, \$2\) order by position asc, updated_at desc`).
		WithArgs("org-a", "org-b").WillReturnRows(rows)

	tasks, err := store.FindByOrgSet(context.Background(), []string{"org-a", "org-b"})
	if err != nil {
		t.Fatalf("FindByOrgSet: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "t1" || tasks[1].ID != "t2" {
		t.Fatalf("tasks = %+v", tasks)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByOrgSetEmptyScope(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	store := NewStore(db)

	tasks, err := store.FindByOrgSet(context.Background(), nil)
	if err != nil {
		t.Fatalf("FindByOrgSet: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("tasks = %v, want empty", tasks)
	}
}

func TestUpdateLocksRowAndSetsFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	store := NewStore(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("select 1 from tasks").WithArgs("task-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("update tasks set").
		WithArgs("renamed", 2, "task-1").
		WillReturnRows(taskRows(task.Task{
			ID: "task-1", Title: "renamed", Category: "ops", Status: task.StatusTodo, Order: 2,
			OrganizationID: "org-a", CreatedBy: "u", CreatedAt: now, UpdatedAt: now,
		}))
	mock.ExpectCommit()

	title := "renamed"
	order := 2
	updated, err := store.Update(context.Background(), "task-1", task.UpdateInput{Title: &title, Order: &order})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "renamed" || updated.Order != 2 {
		t.Fatalf("updated = %+v", updated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("select 1 from tasks").WithArgs("task-x").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	title := "ghost"
	if _, err := store.Update(context.Background(), "task-x", task.UpdateInput{Title: &title}); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	store := NewStore(db)

	mock.ExpectExec("delete from tasks").WithArgs("task-x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Delete(context.Background(), "task-x"); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	store := NewStore(db)

	mock.ExpectExec("delete from tasks").WithArgs("task-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Delete(context.Background(), "task-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestReindex(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	store := NewStore(db)

	mock.ExpectExec("with ranked as").WithArgs("org-a", "Todo").
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := store.Reindex(context.Background(), "org-a", task.StatusTodo); err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
