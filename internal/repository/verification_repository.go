package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"projecthub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationRepository stores registrations awaiting their email OTP and
// outstanding password reset codes.
type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// SavePending replaces any earlier pending registration for the same email.
func (r *VerificationRepository) SavePending(ctx context.Context, pending *model.PendingUser) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", pending.Email).Delete(&model.PendingUser{}).Error; err != nil {
			return err
		}
		return tx.Create(pending).Error
	})
}

func (r *VerificationRepository) FindPending(ctx context.Context, email string) (*model.PendingUser, error) {
	var pending model.PendingUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *VerificationRepository) RefreshPendingOTP(ctx context.Context, id uuid.UUID, otpHash string, expiresAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.PendingUser{}).
		Where("id = ?", id).
		Updates(map[string]any{"otp_hash": otpHash, "expires_at": expiresAt})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPendingNotFound
	}
	return nil
}

// Promote turns a pending registration into a user and drops the pending row.
func (r *VerificationRepository) Promote(ctx context.Context, pendingID uuid.UUID) (*model.User, error) {
	var user *model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending model.PendingUser
		if err := tx.First(&pending, "id = ?", pendingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPendingNotFound
			}
			return err
		}

		user = &model.User{
			Email:          pending.Email,
			Name:           pending.Name,
			HashedPassword: pending.HashedPassword,
		}
		if err := NewUserRepository(tx).Create(ctx, user); err != nil {
			if errors.Is(err, ErrUserExists) {
				return err
			}
			return fmt.Errorf("create user: %w", err)
		}
		return tx.Delete(&pending).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SaveReset keeps a single outstanding reset per user.
func (r *VerificationRepository) SaveReset(ctx context.Context, userID uuid.UUID, otpHash string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.PasswordReset{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.PasswordReset{
			UserID:    userID,
			OTPHash:   otpHash,
			ExpiresAt: expiresAt,
		}).Error
	})
}

func (r *VerificationRepository) FindReset(ctx context.Context, userID uuid.UUID) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&reset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reset, nil
}

// ConsumeReset sets the new password hash and deletes the reset row together.
func (r *VerificationRepository) ConsumeReset(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ?", userID).Delete(&model.PasswordReset{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrResetNotFound
		}
		result = tx.Model(&model.User{}).Where("id = ?", userID).Update("hashed_password", hashedPassword)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}
