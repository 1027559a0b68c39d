package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/models"
)

// SaveCredential replaces the stored sign-in with a new one
func SaveCredential(userID, email, token string) (*models.Credential, error) {
	if userID == "" || token == "" {
		return nil, fmt.Errorf("user id and token are required")
	}

	cred := models.Credential{
		UserID: userID,
		Email:  email,
		Token:  token,
	}

	err := DB.Transaction(func(tx *gorm.DB) error {
		// Only one sign-in at a time
		if err := tx.Unscoped().Where("1 = 1").Delete(&models.Credential{}).Error; err != nil {
			return err
		}
		return tx.Create(&cred).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save credential: %w", err)
	}

	return &cred, nil
}

// GetCredential returns the stored sign-in, if any
func GetCredential() (*models.Credential, error) {
	var cred models.Credential

	err := DB.Order("created_at DESC").First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Signed out is not an error
	}
	if err != nil {
		return nil, err
	}

	return &cred, nil
}

// DeleteCredential removes the stored sign-in. Returns false if there was none.
func DeleteCredential() (bool, error) {
	res := DB.Unscoped().Where("1 = 1").Delete(&models.Credential{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
