package service

import (
	"errors"
	"testing"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"

	"gorm.io/gorm"
)

func newVendorServiceTest(t *testing.T) (*VendorService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t)
	svc := NewVendorService(
		repository.NewVendorRepository(db),
		repository.NewUserRepository(db),
		NewNotificationService(repository.NewNotificationRepository(db), nil),
	)
	return svc, db
}

func createApplicant(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", Role: constants.RoleUser, Status: constants.UserStatusActive}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestVendorApply(t *testing.T) {
	svc, db := newVendorServiceTest(t)
	user := createApplicant(t, db, "applicant@example.com")

	vendor, err := svc.Apply(VendorApplyInput{
		UserID:        user.ID,
		BusinessName:  "  Maple Goods  ",
		BusinessEmail: "store@example.com",
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if vendor.Status != constants.VendorStatusPending {
		t.Fatalf("status want pending got %s", vendor.Status)
	}
	if vendor.BusinessName != "Maple Goods" {
		t.Fatalf("business name should be trimmed, got %q", vendor.BusinessName)
	}

	// 一人一份申请
	if _, err := svc.Apply(VendorApplyInput{UserID: user.ID, BusinessName: "Again", BusinessEmail: "again@example.com"}); !errors.Is(err, ErrVendorExists) {
		t.Fatalf("duplicate apply want ErrVendorExists got %v", err)
	}

	if _, err := svc.Apply(VendorApplyInput{UserID: 0, BusinessName: "X", BusinessEmail: "x@example.com"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero user want ErrInvalidInput got %v", err)
	}
}

func TestVendorApprovePromotesRole(t *testing.T) {
	svc, db := newVendorServiceTest(t)
	user := createApplicant(t, db, "promoted@example.com")
	vendor, err := svc.Apply(VendorApplyInput{UserID: user.ID, BusinessName: "Promoted", BusinessEmail: "p@example.com"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	approved, err := svc.Approve(vendor.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.VendorStatusApproved {
		t.Fatalf("status want approved got %s", approved.Status)
	}

	var reloaded models.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.Role != constants.RoleVendor {
		t.Fatalf("user role want vendor got %s", reloaded.Role)
	}

	// 重复审批幂等
	again, err := svc.Approve(vendor.ID)
	if err != nil {
		t.Fatalf("repeat approve failed: %v", err)
	}
	if again.Status != constants.VendorStatusApproved {
		t.Fatalf("repeat approve status want approved got %s", again.Status)
	}

	var notifyCount int64
	if err := db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&notifyCount).Error; err != nil {
		t.Fatalf("count notifications failed: %v", err)
	}
	if notifyCount != 1 {
		t.Fatalf("approval should notify once, got %d", notifyCount)
	}
}

func TestVendorRejectAndSuspendGuards(t *testing.T) {
	svc, db := newVendorServiceTest(t)
	user := createApplicant(t, db, "guards@example.com")
	vendor, err := svc.Apply(VendorApplyInput{UserID: user.ID, BusinessName: "Guards", BusinessEmail: "g@example.com"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	// 待审核的不能直接暂停
	if _, err := svc.Suspend(vendor.ID, "nope"); !errors.Is(err, ErrVendorStatusInvalid) {
		t.Fatalf("suspend pending want ErrVendorStatusInvalid got %v", err)
	}

	rejected, err := svc.Reject(vendor.ID, "incomplete paperwork")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.VendorStatusRejected {
		t.Fatalf("status want rejected got %s", rejected.Status)
	}

	// 已驳回的不能再驳回
	if _, err := svc.Reject(vendor.ID, "again"); !errors.Is(err, ErrVendorStatusInvalid) {
		t.Fatalf("repeat reject want ErrVendorStatusInvalid got %v", err)
	}
}

func TestVendorSuspendAndReinstate(t *testing.T) {
	svc, db := newVendorServiceTest(t)
	user := createApplicant(t, db, "cycle@example.com")
	vendor, err := svc.Apply(VendorApplyInput{UserID: user.ID, BusinessName: "Cycle", BusinessEmail: "c@example.com"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := svc.Approve(vendor.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	suspended, err := svc.Suspend(vendor.ID, "policy violation")
	if err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	if suspended.Status != constants.VendorStatusSuspended {
		t.Fatalf("status want suspended got %s", suspended.Status)
	}

	// 暂停后可以重新放行
	reinstated, err := svc.Approve(vendor.ID)
	if err != nil {
		t.Fatalf("reinstate failed: %v", err)
	}
	if reinstated.Status != constants.VendorStatusApproved {
		t.Fatalf("status want approved got %s", reinstated.Status)
	}
}

func TestVendorUpdateProfileKeepsStatus(t *testing.T) {
	svc, db := newVendorServiceTest(t)
	user := createApplicant(t, db, "profile@example.com")
	vendor, err := svc.Apply(VendorApplyInput{UserID: user.ID, BusinessName: "Profile", BusinessEmail: "pr@example.com"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := svc.Approve(vendor.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	updated, err := svc.UpdateProfile(user.ID, VendorProfileInput{
		BusinessName: "Profile Renamed",
		Description:  "hand crafted goods",
		Logo:         "https://cdn.example.com/logo.png",
	})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.BusinessName != "Profile Renamed" {
		t.Fatalf("business name want renamed got %s", updated.BusinessName)
	}
	if updated.Status != constants.VendorStatusApproved {
		t.Fatalf("profile edit must not touch status, got %s", updated.Status)
	}
}
