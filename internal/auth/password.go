package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/models"
)

// MinPasscodeLength is the shortest passcode accepted.
const MinPasscodeLength = 4

var (
	ErrInvalidCredentials = apperr.Unauthorized("incorrect passcode")
	ErrWeakPasscode       = apperr.InvalidArg(fmt.Sprintf("passcode must be at least %d characters", MinPasscodeLength))
	ErrNotConfigured      = apperr.FailedPrecondition("no passcode is set")
)

// SettingStorage is the part of the record store the passcode lives in.
type SettingStorage interface {
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	PutSetting(ctx context.Context, setting *models.Setting) error
	DeleteSetting(ctx context.Context, key string) error
}

// PasscodeAuthenticator keeps a bcrypt hash of the owner passcode in the
// ownerPasscode setting.
type PasscodeAuthenticator struct {
	storage SettingStorage
	cost    int
}

// NewPasscodeAuthenticator creates a passcode authenticator over storage.
func NewPasscodeAuthenticator(storage SettingStorage) *PasscodeAuthenticator {
	return &PasscodeAuthenticator{storage: storage, cost: bcrypt.DefaultCost}
}

// ValidateCredential checks if the passcode meets minimum requirements.
func (a *PasscodeAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasscodeLength {
		return ErrWeakPasscode
	}
	return nil
}

func (a *PasscodeAuthenticator) hash(ctx context.Context) ([]byte, error) {
	setting, err := a.storage.GetSetting(ctx, models.SettingOwnerPasscode)
	if err != nil {
		return nil, err
	}
	if setting == nil || len(setting.Value) == 0 {
		return nil, nil
	}
	return setting.Value, nil
}

// Configured reports whether a passcode is stored.
func (a *PasscodeAuthenticator) Configured(ctx context.Context) (bool, error) {
	hash, err := a.hash(ctx)
	if err != nil {
		return false, err
	}
	return hash != nil, nil
}

// SetCredential stores a new passcode hash.
func (a *PasscodeAuthenticator) SetCredential(ctx context.Context, current, credential string) error {
	if err := a.ValidateCredential(credential); err != nil {
		return err
	}

	hash, err := a.hash(ctx)
	if err != nil {
		return err
	}
	if hash != nil {
		if err := bcrypt.CompareHashAndPassword(hash, []byte(current)); err != nil {
			return ErrInvalidCredentials
		}
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return fmt.Errorf("failed to hash passcode: %w", err)
	}
	return a.storage.PutSetting(ctx, &models.Setting{Key: models.SettingOwnerPasscode, Value: newHash})
}

// ClearCredential removes the passcode after verifying current.
func (a *PasscodeAuthenticator) ClearCredential(ctx context.Context, current string) error {
	if err := a.Authenticate(ctx, current); err != nil {
		return err
	}
	return a.storage.DeleteSetting(ctx, models.SettingOwnerPasscode)
}

// Authenticate compares credential with the stored hash.
func (a *PasscodeAuthenticator) Authenticate(ctx context.Context, credential string) error {
	hash, err := a.hash(ctx)
	if err != nil {
		return err
	}
	if hash == nil {
		return ErrNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(credential)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
