// Package auth keeps access tokens in the system keyring, one entry per server user.
package auth

import (
	"errors"

	"github.com/jellytok/jellytok/constant"
	"github.com/zalando/go-keyring"
)

// ErrNotFound is returned when no token is stored for the user.
var ErrNotFound = keyring.ErrNotFound

// SetToken stores the access token of userID.
func SetToken(userID, token string) error {
	return keyring.Set(constant.App, userID, token)
}

// GetToken returns the access token of userID.
func GetToken(userID string) (string, error) {
	return keyring.Get(constant.App, userID)
}

// DeleteToken forgets the access token of userID. Deleting a missing token is not an error.
func DeleteToken(userID string) error {
	err := keyring.Delete(constant.App, userID)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
