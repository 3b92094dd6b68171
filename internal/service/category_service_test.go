package service

import (
	"errors"
	"testing"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"

	"gorm.io/gorm"
)

func newCategoryServiceTest(t *testing.T) (*CategoryService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t)
	return NewCategoryService(repository.NewCategoryRepository(db)), db
}

func TestCategoryCreateAndSlugConflict(t *testing.T) {
	svc, _ := newCategoryServiceTest(t)

	category, err := svc.Create(SaveCategoryInput{Slug: " Electronics ", Name: "Electronics"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if category.Slug != "electronics" {
		t.Fatalf("slug should be normalized, got %q", category.Slug)
	}
	if !category.IsActive {
		t.Fatalf("category should default to active")
	}

	if _, err := svc.Create(SaveCategoryInput{Slug: "electronics", Name: "Dup"}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("duplicate slug want ErrSlugExists got %v", err)
	}
	if _, err := svc.Create(SaveCategoryInput{Slug: "", Name: "Blank"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank slug want ErrInvalidInput got %v", err)
	}
}

func TestCategoryParentValidation(t *testing.T) {
	svc, _ := newCategoryServiceTest(t)

	parent, err := svc.Create(SaveCategoryInput{Slug: "home", Name: "Home"})
	if err != nil {
		t.Fatalf("create parent failed: %v", err)
	}
	child, err := svc.Create(SaveCategoryInput{Slug: "kitchen", Name: "Kitchen", ParentID: &parent.ID})
	if err != nil {
		t.Fatalf("create child failed: %v", err)
	}
	if child.ParentID == nil || *child.ParentID != parent.ID {
		t.Fatalf("child parent mismatch: %+v", child.ParentID)
	}

	missing := uint(9999)
	if _, err := svc.Create(SaveCategoryInput{Slug: "orphan", Name: "Orphan", ParentID: &missing}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing parent want ErrNotFound got %v", err)
	}

	// 自己不能作为自己的父级
	if _, err := svc.Update(parent.ID, SaveCategoryInput{Slug: "home", Name: "Home", ParentID: &parent.ID}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("self parent want ErrInvalidInput got %v", err)
	}
}

func TestCategoryDeleteGuards(t *testing.T) {
	svc, db := newCategoryServiceTest(t)

	parent, err := svc.Create(SaveCategoryInput{Slug: "gear", Name: "Gear"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	child, err := svc.Create(SaveCategoryInput{Slug: "bags", Name: "Bags", ParentID: &parent.ID})
	if err != nil {
		t.Fatalf("create child failed: %v", err)
	}

	// 有子分类不可删
	if err := svc.Delete(parent.ID); !errors.Is(err, ErrCategoryNotEmpty) {
		t.Fatalf("parent with child want ErrCategoryNotEmpty got %v", err)
	}

	// 挂有商品不可删
	product := &models.Product{
		VendorID:   1,
		CategoryID: child.ID,
		Slug:       "duffel",
		Name:       "Duffel",
		Price:      moneyFromFloat(30.00),
		Status:     constants.ProductStatusActive,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := svc.Delete(child.ID); !errors.Is(err, ErrCategoryNotEmpty) {
		t.Fatalf("category with product want ErrCategoryNotEmpty got %v", err)
	}

	// 清空后可删
	if err := db.Delete(product).Error; err != nil {
		t.Fatalf("delete product failed: %v", err)
	}
	if err := svc.Delete(child.ID); err != nil {
		t.Fatalf("delete child failed: %v", err)
	}
	if err := svc.Delete(parent.ID); err != nil {
		t.Fatalf("delete parent failed: %v", err)
	}

	if err := svc.Delete(parent.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("repeat delete want ErrNotFound got %v", err)
	}
}
