package service

import (
	"strings"

	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// SaveCategoryInput 创建/更新分类输入
type SaveCategoryInput struct {
	Slug        string
	Name        string
	Description string
	Image       string
	ParentID    *uint
	Featured    bool
	IsActive    *bool
	SortOrder   int
}

// ListPublic 店面分类列表（仅启用）
func (s *CategoryService) ListPublic() ([]models.Category, error) {
	return s.repo.List(true)
}

// ListAdmin 管理端分类列表
func (s *CategoryService) ListAdmin() ([]models.Category, error) {
	return s.repo.List(false)
}

// GetBySlug 按 slug 获取分类
func (s *CategoryService) GetBySlug(slug string) (*models.Category, error) {
	category, err := s.repo.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

// Create 创建分类
func (s *CategoryService) Create(input SaveCategoryInput) (*models.Category, error) {
	if err := normalizeCategoryInput(&input); err != nil {
		return nil, err
	}
	count, err := s.repo.CountBySlug(input.Slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}
	if input.ParentID != nil {
		parent, err := s.repo.GetByID(*input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrNotFound
		}
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	category := &models.Category{
		Slug:        input.Slug,
		Name:        input.Name,
		Description: input.Description,
		Image:       input.Image,
		ParentID:    input.ParentID,
		Featured:    input.Featured,
		IsActive:    isActive,
		SortOrder:   input.SortOrder,
	}
	if err := s.repo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update 更新分类
func (s *CategoryService) Update(id uint, input SaveCategoryInput) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	if err := normalizeCategoryInput(&input); err != nil {
		return nil, err
	}

	count, err := s.repo.CountBySlug(input.Slug, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}
	if input.ParentID != nil {
		if *input.ParentID == id {
			return nil, ErrInvalidInput
		}
		parent, err := s.repo.GetByID(*input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrNotFound
		}
	}

	category.Slug = input.Slug
	category.Name = input.Name
	category.Description = input.Description
	category.Image = input.Image
	category.ParentID = input.ParentID
	category.Featured = input.Featured
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	category.SortOrder = input.SortOrder

	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete 删除分类。仍挂有商品或子分类的分类拒绝删除。
func (s *CategoryService) Delete(id uint) error {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrNotFound
	}

	productCount, err := s.repo.CountProducts(id)
	if err != nil {
		return err
	}
	childCount, err := s.repo.CountChildren(id)
	if err != nil {
		return err
	}
	if productCount > 0 || childCount > 0 {
		return ErrCategoryNotEmpty
	}
	return s.repo.Delete(id)
}

func normalizeCategoryInput(input *SaveCategoryInput) error {
	input.Slug = strings.TrimSpace(strings.ToLower(input.Slug))
	input.Name = strings.TrimSpace(input.Name)
	if input.Slug == "" || input.Name == "" {
		return ErrInvalidInput
	}
	return nil
}
