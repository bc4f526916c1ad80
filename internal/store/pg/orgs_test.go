package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"taskdeck.org/internal/directory"
)

func orgRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "parent_org_id", "created_at", "updated_at"})
}

func TestFindOrganization(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	store := NewStore(db)

	now := time.Now().UTC()
	mock.ExpectQuery("select .* from organizations").WithArgs("org-child").
		WillReturnRows(orgRows().AddRow("org-child", "ChildOrg", "org-parent", now, now))

	org, err := store.Find(context.Background(), "org-child")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if org.ParentOrgID == nil || *org.ParentOrgID != "org-parent" {
		t.Fatalf("parent = %v", org.ParentOrgID)
	}
}

func TestFindOrganizationNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	store := NewStore(db)

	mock.ExpectQuery("select .* from organizations").WithArgs("org-x").WillReturnRows(orgRows())

	if _, err := store.Find(context.Background(), "org-x"); !errors.Is(err, directory.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChildren(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	store := NewStore(db)

	now := time.Now().UTC()
	mock.ExpectQuery("select .* from organizations").WithArgs("org-parent").
		WillReturnRows(orgRows().
			AddRow("org-child-a", "A", "org-parent", now, now).
			AddRow("org-child-b", "B", "org-parent", now, now))

	children, err := store.Children(context.Background(), "org-parent")
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("children = %d, want 2", len(children))
	}
	if children[0].ParentOrgID == nil || *children[0].ParentOrgID != "org-parent" {
		t.Fatalf("child parent = %v", children[0].ParentOrgID)
	}
}

func TestChildrenNone(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	store := NewStore(db)

	mock.ExpectQuery("select .* from organizations").WithArgs("org-leaf").WillReturnRows(orgRows())

	children, err := store.Children(context.Background(), "org-leaf")
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if len(children) != 0 {
		t.Fatalf("children = %v, want none", children)
	}
}
